package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seatsnag/internal/analytics"
	"seatsnag/internal/analytics/service"
	"seatsnag/internal/auth"
	"seatsnag/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	companyID string
	period    analytics.Period
}

type mockAnalyticsService struct {
	calls []call
}

func (m *mockAnalyticsService) Report(_ context.Context, companyID string, period analytics.Period) (*service.Report, error) {
	m.calls = append(m.calls, call{companyID: companyID, period: period})
	return &service.Report{CompanyID: companyID, Period: period}, nil
}

func setup(t *testing.T) (*mockAnalyticsService, *auth.Auth, *httprouter.Router) {
	t.Helper()
	svc := &mockAnalyticsService{}
	a := auth.New(auth.Config{Secret: "test-secret", Issuer: "seatsnag", TTL: time.Hour})
	router := httprouter.New()
	NewAnalyticsHandler(svc, a, logger.Discard()).RegisterRoutes(router)
	return svc, a, router
}

func get(t *testing.T, a *auth.Auth, router *httprouter.Router, path string, claims auth.Claims) *httptest.ResponseRecorder {
	t.Helper()
	token, err := a.GenerateToken(claims)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestReport_Scoping(t *testing.T) {
	svc, a, router := setup(t)

	admin := auth.Claims{TenantID: "co-1", Role: auth.RoleCompanyAdmin.String()}
	rec := get(t, a, router, "/api/v1/analytics?period=3m&company_id=co-2", admin)
	require.Equal(t, http.StatusOK, rec.Code)

	super := auth.Claims{Role: auth.RoleSuperAdmin.String()}
	rec = get(t, a, router, "/api/v1/analytics", super)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, a, router, "/api/v1/analytics?period=1y&company_id=co-2", super)
	require.Equal(t, http.StatusOK, rec.Code)

	unbound := auth.Claims{Role: auth.RoleCompanyAdmin.String()}
	rec = get(t, a, router, "/api/v1/analytics?company_id=co-2", unbound)
	require.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, []call{
		{companyID: "co-1", period: analytics.PeriodQuarter},
		{companyID: "", period: analytics.PeriodWeek},
		{companyID: "co-2", period: analytics.PeriodYear},
	}, svc.calls)
}

func TestReport_EmployeeForbidden(t *testing.T) {
	svc, a, router := setup(t)

	rec := get(t, a, router, "/api/v1/analytics", auth.Claims{TenantID: "co-1", SessionID: "s", Role: auth.RoleEmployee.String()})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, svc.calls)
}
