package handler

import (
	"context"
	"net/http"
	"strings"

	"seatsnag/internal/auth"
	"seatsnag/internal/bookings/service"
	"seatsnag/internal/bookings/session"
	"seatsnag/internal/bookings/validator"
	apperrors "seatsnag/pkg/errors"
	httputil "seatsnag/pkg/http"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/middleware"
	"seatsnag/pkg/model"
	"seatsnag/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

// LocationFinder resolves the locations an employee may sign in to.
type LocationFinder interface {
	FindByAccessCode(ctx context.Context, code string) ([]*model.Location, error)
	ListByCompany(ctx context.Context, companyID string) ([]*model.Location, error)
}

// CompanyFinder maps an email domain to its tenant.
type CompanyFinder interface {
	FindByDomain(ctx context.Context, emailOrDomain string) (*model.Company, error)
}

type LocationSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Capacity int    `json:"capacity"`
}

// LoginResponse carries either a token for a started session or, when the
// credentials matched several locations, the choices to retry with.
type LoginResponse struct {
	Token     string            `json:"token,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	UserName  string            `json:"user_name,omitempty"`
	Location  *LocationSummary  `json:"location,omitempty"`
	Locations []LocationSummary `json:"locations,omitempty"`
}

type LoginHandler struct {
	bookings  service.BookingService
	locations LocationFinder
	companies CompanyFinder
	validator *validator.BookingValidator
	auth      *auth.Auth
	limit     func(httprouter.Handle) httprouter.Handle
	log       *logger.Logger
}

func NewLoginHandler(
	bookings service.BookingService,
	locations LocationFinder,
	companies CompanyFinder,
	validator *validator.BookingValidator,
	a *auth.Auth,
	limit func(httprouter.Handle) httprouter.Handle,
	log *logger.Logger,
) *LoginHandler {
	if limit == nil {
		limit = func(h httprouter.Handle) httprouter.Handle { return h }
	}
	return &LoginHandler{
		bookings:  bookings,
		locations: locations,
		companies: companies,
		validator: validator,
		auth:      a,
		limit:     limit,
		log:       log,
	}
}

func (h *LoginHandler) AccessCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validator.AccessCodeLogin
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.AccessCode = sanitizer.AccessCode(req.AccessCode)
	req.UserName = sanitizer.DisplayName(req.UserName)
	req.LocationID = strings.TrimSpace(req.LocationID)

	if err := h.validator.ValidateAccessCodeLogin(&req); err != nil {
		httputil.WriteError(w, apperrors.Validation("Invalid login request", map[string]any{
			"error": err.Error(),
		}))
		return
	}

	locs, err := h.locations.FindByAccessCode(r.Context(), req.AccessCode)
	if err != nil {
		h.log.Warn("Access code login failed",
			"client_ip", middleware.ClientIP(r),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.login(w, r, locs, req.LocationID, req.UserName, "")
}

func (h *LoginHandler) SSO(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validator.SSOLogin
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req.Email = sanitizer.Email(req.Email)
	req.UserName = sanitizer.DisplayName(req.UserName)
	req.LocationID = strings.TrimSpace(req.LocationID)

	if err := h.validator.ValidateSSOLogin(&req); err != nil {
		httputil.WriteError(w, apperrors.Validation("Invalid login request", map[string]any{
			"error": err.Error(),
		}))
		return
	}
	if req.UserName == "" {
		req.UserName = req.Email[:strings.Index(req.Email, "@")]
	}

	company, err := h.companies.FindByDomain(r.Context(), req.Email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	all, err := h.locations.ListByCompany(r.Context(), company.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	locs := make([]*model.Location, 0, len(all))
	for _, l := range all {
		if l.IsActive {
			locs = append(locs, l)
		}
	}
	if len(locs) == 0 {
		httputil.WriteError(w, apperrors.New(apperrors.CodeNotFound,
			"Your company has no active locations yet. Please contact your admin.", http.StatusNotFound))
		return
	}

	h.login(w, r, locs, req.LocationID, req.UserName, req.Email)
}

// login starts a session at the single matching location, or at the one
// named by locationID. Several matches without a choice return the options.
func (h *LoginHandler) login(w http.ResponseWriter, r *http.Request, locs []*model.Location, locationID, userName, email string) {
	var chosen *model.Location
	switch {
	case locationID != "":
		for _, l := range locs {
			if l.ID == locationID {
				chosen = l
				break
			}
		}
		if chosen == nil {
			httputil.WriteError(w, apperrors.NotFoundWithID("Location", locationID))
			return
		}
	case len(locs) == 1:
		chosen = locs[0]
	default:
		options := make([]LocationSummary, 0, len(locs))
		for _, l := range locs {
			options = append(options, summarize(l))
		}
		httputil.WriteSuccess(w, LoginResponse{Locations: options})
		return
	}

	identity := session.Identity{TenantID: chosen.CompanyID, DisplayName: userName}
	sess, err := h.bookings.StartSession(r.Context(), identity, email, chosen)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	token, err := h.auth.GenerateToken(auth.Claims{
		TenantID:   chosen.CompanyID,
		LocationID: chosen.ID,
		SessionID:  sess.ID,
		Name:       userName,
		Email:      email,
		Role:       auth.RoleEmployee.String(),
	})
	if err != nil {
		h.bookings.EndSession(r.Context(), sess.ID)
		h.log.Error("Failed to sign session token",
			"session_id", sess.ID,
			"error", err,
		)
		httputil.WriteError(w, apperrors.Internal("Failed to start session", err))
		return
	}

	loc := summarize(chosen)
	httputil.WriteCreated(w, LoginResponse{
		Token:     token,
		SessionID: sess.ID,
		UserName:  userName,
		Location:  &loc,
	})
}

func summarize(l *model.Location) LocationSummary {
	return LocationSummary{
		ID:       l.ID,
		Name:     l.Name,
		Address:  l.Address,
		Capacity: l.Capacity,
	}
}

func (h *LoginHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/access-code", h.limit(h.AccessCode))
	router.POST("/api/v1/auth/sso", h.limit(h.SSO))
}
