package handler

import (
	"context"
	"net/http"

	"seatsnag/internal/auth"
	"seatsnag/internal/locations/service"
	apperrors "seatsnag/pkg/errors"
	httputil "seatsnag/pkg/http"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type createLocationRequest struct {
	CompanyID  string                 `json:"company_id,omitempty"`
	Name       string                 `json:"name"`
	Address    string                 `json:"address,omitempty"`
	Capacity   int                    `json:"capacity"`
	AccessCode string                 `json:"access_code,omitempty"`
	PIN        string                 `json:"pin,omitempty"`
	Settings   model.LocationSettings `json:"settings"`
}

type LocationHandler struct {
	service service.LocationService
	auth    *auth.Auth
	log     *logger.Logger
}

func NewLocationHandler(service service.LocationService, a *auth.Auth, log *logger.Logger) *LocationHandler {
	return &LocationHandler{
		service: service,
		auth:    a,
		log:     log,
	}
}

func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := auth.GetClaims(r.Context())

	var req createLocationRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	companyID := claims.TenantID
	if claims.Role == auth.RoleSuperAdmin.String() && req.CompanyID != "" {
		companyID = req.CompanyID
	}
	if companyID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("company_id is required"))
		return
	}

	loc := &model.Location{
		CompanyID:  companyID,
		Name:       req.Name,
		Address:    req.Address,
		Capacity:   req.Capacity,
		AccessCode: req.AccessCode,
		PIN:        req.PIN,
		Settings:   req.Settings,
	}
	if err := h.service.Create(r.Context(), loc); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, loc)
}

// List returns the caller's own locations. Super admins may pass
// company_id, or page through every location without it.
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := auth.GetClaims(r.Context())

	companyID := claims.TenantID
	if claims.Role == auth.RoleSuperAdmin.String() {
		companyID = r.URL.Query().Get("company_id")
		if companyID == "" {
			limit, offset, err := httputil.ExtractLimitOffset(r)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			locs, total, err := h.service.GetAll(r.Context(), limit, offset)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			httputil.WritePaginated(w, locs, total, httputil.NormalizeLimit(limit), offset)
			return
		}
	}

	locs, err := h.service.ListByCompany(r.Context(), companyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, locs)
}

func (h *LocationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	loc, err := h.owned(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, loc)
}

func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.LocationUpdate
	if err := httputil.DecodeJSON(r, &updates); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.owned(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	loc, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, loc)
}

func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if _, err := h.owned(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *LocationHandler) GenerateAccessCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	code, err := h.service.GenerateAccessCode(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]string{"access_code": code})
}

// owned loads a location the caller may manage. Another tenant's location
// is reported as not found.
func (h *LocationHandler) owned(ctx context.Context, id string) (*model.Location, error) {
	loc, err := h.service.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	claims, _ := auth.GetClaims(ctx)
	if claims.Role != auth.RoleSuperAdmin.String() && loc.CompanyID != claims.TenantID {
		h.log.Warn("Cross-tenant location access refused",
			"location_id", id,
			"tenant_id", claims.TenantID,
		)
		return nil, apperrors.NotFoundWithID("Location", id)
	}
	return loc, nil
}

func (h *LocationHandler) RegisterRoutes(router *httprouter.Router) {
	admin := auth.Require(h.auth, auth.RoleCompanyAdmin, auth.RoleSuperAdmin)

	router.POST("/api/v1/locations", admin(h.Create))
	router.GET("/api/v1/locations", admin(h.List))
	router.POST("/api/v1/locations/access-code", admin(h.GenerateAccessCode))
	router.GET("/api/v1/locations/:id", admin(h.GetByID))
	router.PATCH("/api/v1/locations/:id", admin(h.Update))
	router.DELETE("/api/v1/locations/:id", admin(h.Delete))
}
