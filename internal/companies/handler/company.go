package handler

import (
	"net/http"

	"seatsnag/internal/auth"
	"seatsnag/internal/companies/service"
	apperrors "seatsnag/pkg/errors"
	httputil "seatsnag/pkg/http"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type verifyRequest struct {
	Token string `json:"token"`
}

type extendRequest struct {
	Days int `json:"days"`
}

type CompanyHandler struct {
	service service.CompanyService
	auth    *auth.Auth
	limit   func(httprouter.Handle) httprouter.Handle
	log     *logger.Logger
}

// NewCompanyHandler wires the public signup and verify routes through
// limit; a nil limit leaves them unthrottled.
func NewCompanyHandler(
	service service.CompanyService,
	a *auth.Auth,
	limit func(httprouter.Handle) httprouter.Handle,
	log *logger.Logger,
) *CompanyHandler {
	if limit == nil {
		limit = func(h httprouter.Handle) httprouter.Handle { return h }
	}
	return &CompanyHandler{
		service: service,
		auth:    a,
		limit:   limit,
		log:     log,
	}
}

func (h *CompanyHandler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CompanySignup
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	company, err := h.service.Signup(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, company)
}

func (h *CompanyHandler) Verify(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req verifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	company, err := h.service.Verify(r.Context(), ps.ByName("id"), req.Token)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, company)
}

func (h *CompanyHandler) ExtendTrial(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req extendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	company, err := h.service.ExtendTrial(r.Context(), ps.ByName("id"), req.Days)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	claims, _ := auth.GetClaims(r.Context())
	h.log.Info("Trial extension requested",
		"company_id", company.ID,
		"days", req.Days,
		"by", claims.Email,
	)
	httputil.WriteSuccess(w, company)
}

func (h *CompanyHandler) TrialStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.scoped(w, r, ps)
	if !ok {
		return
	}

	status, err := h.service.TrialStatus(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, status)
}

func (h *CompanyHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := h.scoped(w, r, ps)
	if !ok {
		return
	}

	company, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, company)
}

func (h *CompanyHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	companies, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WritePaginated(w, companies, total, limit, offset)
}

// scoped returns the :id parameter when the caller may read that company.
func (h *CompanyHandler) scoped(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (string, bool) {
	id := ps.ByName("id")
	claims, _ := auth.GetClaims(r.Context())
	if claims.Role != auth.RoleSuperAdmin.String() && claims.TenantID != id {
		httputil.WriteError(w, apperrors.NotFoundWithID("Company", id))
		return "", false
	}
	return id, true
}

func (h *CompanyHandler) RegisterRoutes(router *httprouter.Router) {
	admin := auth.Require(h.auth, auth.RoleCompanyAdmin, auth.RoleSuperAdmin)
	super := auth.Require(h.auth, auth.RoleSuperAdmin)

	router.POST("/api/v1/signup", h.limit(h.Signup))
	router.POST("/api/v1/companies/:id/verify", h.limit(h.Verify))
	router.POST("/api/v1/companies/:id/extend", super(h.ExtendTrial))
	router.GET("/api/v1/companies", super(h.GetAll))
	router.GET("/api/v1/companies/:id", admin(h.GetByID))
	router.GET("/api/v1/companies/:id/trial", admin(h.TrialStatus))
}
