package handler

import (
	"net/http"

	"seatsnag/internal/auth"
	"seatsnag/internal/bookings/availability"
	"seatsnag/internal/bookings/service"
	"seatsnag/internal/bookings/session"
	"seatsnag/internal/bookings/validator"
	apperrors "seatsnag/pkg/errors"
	httputil "seatsnag/pkg/http"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/sanitizer"

	"github.com/julienschmidt/httprouter"
)

type sessionHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sess *session.Session)

type SessionResponse struct {
	SessionID string          `json:"session_id"`
	UserName  string          `json:"user_name"`
	Email     string          `json:"email,omitempty"`
	CompanyID string          `json:"company_id"`
	Location  LocationSummary `json:"location"`
	Selecting bool            `json:"selecting"`
	Selected  []string        `json:"selected,omitempty"`
}

type SelectionResponse struct {
	Date     string   `json:"date,omitempty"`
	Selected bool     `json:"selected"`
	Dates    []string `json:"dates"`
}

type BookingHandler struct {
	service   service.BookingService
	validator *validator.BookingValidator
	auth      *auth.Auth
	log       *logger.Logger
}

func NewBookingHandler(
	service service.BookingService,
	validator *validator.BookingValidator,
	a *auth.Auth,
	log *logger.Logger,
) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
		auth:      a,
		log:       log,
	}
}

// withSession authenticates an employee token and resolves the booking
// session it is bound to.
func (h *BookingHandler) withSession(next sessionHandle) httprouter.Handle {
	return auth.Require(h.auth, auth.RoleEmployee)(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, _ := auth.GetClaims(r.Context())
		if claims.SessionID == "" {
			httputil.WriteError(w, apperrors.Unauthorized("Token is not bound to a booking session"))
			return
		}

		sess, err := h.service.Session(r.Context(), claims.SessionID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if sess.Identity.TenantID != claims.TenantID {
			h.log.Warn("Session token tenant mismatch",
				"session_id", sess.ID,
				"token_tenant", claims.TenantID,
			)
			httputil.WriteError(w, apperrors.Unauthorized("Session expired, please log in again"))
			return
		}
		next(w, r, ps, sess)
	})
}

func (h *BookingHandler) GetSession(w http.ResponseWriter, _ *http.Request, _ httprouter.Params, sess *session.Session) {
	resp := SessionResponse{
		SessionID: sess.ID,
		UserName:  sess.Identity.DisplayName,
		Email:     sess.Email,
		CompanyID: sess.Identity.TenantID,
		Location:  summarize(sess.Location),
		Selecting: sess.Selecting(),
	}
	if resp.Selecting {
		resp.Selected = sess.Selected()
	}
	httputil.WriteSuccess(w, resp)
}

func (h *BookingHandler) EndSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sess *session.Session) {
	h.service.EndSession(r.Context(), sess.ID)
	h.log.Info("Booking session ended",
		"session_id", sess.ID,
		"location_id", sess.LocationID(),
	)
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sess *session.Session) {
	mode, ok := availability.ParseViewMode(r.URL.Query().Get("view"))
	if !ok {
		httputil.WriteError(w, apperrors.InvalidInput("view must be one of: week, month"))
		return
	}

	view, err := h.service.Availability(r.Context(), sess, mode)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, view)
}

func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sess *session.Session) {
	req, ok := h.decodeDate(w, r)
	if !ok {
		return
	}

	booking, err := h.service.BookDay(r.Context(), sess, req.Date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, booking)
}

// Cancel removes the caller's booking on :date. The optional user_name query
// parameter must equal the caller's display name exactly; any other name is
// refused with 403.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params, sess *session.Session) {
	date := ps.ByName("date")
	userName := sanitizer.DisplayName(r.URL.Query().Get("user_name"))

	if err := h.service.CancelDay(r.Context(), sess, date, userName); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) BeginSelect(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sess *session.Session) {
	selected, err := h.service.BeginSelect(r.Context(), sess)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, SelectionResponse{Selected: true, Dates: selected})
}

func (h *BookingHandler) Toggle(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sess *session.Session) {
	req, ok := h.decodeDate(w, r)
	if !ok {
		return
	}

	selected, err := h.service.ToggleDate(r.Context(), sess, req.Date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, SelectionResponse{
		Date:     req.Date,
		Selected: selected,
		Dates:    sess.Selected(),
	})
}

func (h *BookingHandler) Commit(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sess *session.Session) {
	result, err := h.service.CommitSelection(r.Context(), sess)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, result)
}

func (h *BookingHandler) CancelSelect(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sess *session.Session) {
	if err := h.service.CancelSelect(r.Context(), sess); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *BookingHandler) TrialStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params, sess *session.Session) {
	status, err := h.service.TrialStatus(r.Context(), sess)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, status)
}

func (h *BookingHandler) decodeDate(w http.ResponseWriter, r *http.Request) (*validator.DateRequest, bool) {
	var req validator.DateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return nil, false
	}
	if err := h.validator.ValidateDate(&req); err != nil {
		httputil.WriteError(w, apperrors.Validation("Invalid booking date", map[string]any{
			"error": err.Error(),
		}))
		return nil, false
	}
	return &req, true
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/session", h.withSession(h.GetSession))
	router.DELETE("/api/v1/session", h.withSession(h.EndSession))
	router.GET("/api/v1/availability", h.withSession(h.Availability))
	router.GET("/api/v1/trial", h.withSession(h.TrialStatus))

	router.POST("/api/v1/bookings", h.withSession(h.Book))
	router.DELETE("/api/v1/bookings/:date", h.withSession(h.Cancel))

	router.POST("/api/v1/selection/begin", h.withSession(h.BeginSelect))
	router.POST("/api/v1/selection/toggle", h.withSession(h.Toggle))
	router.POST("/api/v1/selection/commit", h.withSession(h.Commit))
	router.POST("/api/v1/selection/cancel", h.withSession(h.CancelSelect))
}
