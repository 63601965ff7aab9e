package handler

import (
	"net/http"

	"seatsnag/internal/analytics"
	"seatsnag/internal/analytics/service"
	"seatsnag/internal/auth"
	apperrors "seatsnag/pkg/errors"
	httputil "seatsnag/pkg/http"
	"seatsnag/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
	auth    *auth.Auth
	log     *logger.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, a *auth.Auth, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		auth:    a,
		log:     log,
	}
}

// Report serves a company admin their own tenant. A super admin sees every
// location unless company_id narrows it. Any other token without a tenant
// is refused.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := auth.GetClaims(r.Context())
	query := r.URL.Query()

	companyID := claims.TenantID
	if claims.Role == auth.RoleSuperAdmin.String() {
		companyID = query.Get("company_id")
	} else if companyID == "" {
		httputil.WriteError(w, apperrors.Forbidden("token is not bound to a company"))
		return
	}

	report, err := h.service.Report(r.Context(), companyID, analytics.ParsePeriod(query.Get("period")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, report)
}

func (h *AnalyticsHandler) RegisterRoutes(router *httprouter.Router) {
	admin := auth.Require(h.auth, auth.RoleCompanyAdmin, auth.RoleSuperAdmin)
	router.GET("/api/v1/analytics", admin(h.Report))
}
