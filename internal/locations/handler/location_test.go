package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seatsnag/internal/auth"
	apperrors "seatsnag/pkg/errors"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ────────────────────────────────────────────────
// Mock service
// ────────────────────────────────────────────────

type mockLocationService struct {
	locations map[string]*model.Location
	created   *model.Location
	deleted   []string
}

func newMockService(locs ...*model.Location) *mockLocationService {
	m := &mockLocationService{locations: map[string]*model.Location{}}
	for _, l := range locs {
		m.locations[l.ID] = l
	}
	return m
}

func (m *mockLocationService) Create(_ context.Context, loc *model.Location) error {
	loc.ID = "loc-new"
	loc.AccessCode = "ABC234"
	loc.IsActive = true
	m.created = loc
	return nil
}

func (m *mockLocationService) GetByID(_ context.Context, id string) (*model.Location, error) {
	if l, ok := m.locations[id]; ok {
		return l, nil
	}
	return nil, apperrors.NotFoundWithID("Location", id)
}

func (m *mockLocationService) GetByIDs(context.Context, []string) ([]*model.Location, error) {
	return nil, nil
}

func (m *mockLocationService) ListByCompany(_ context.Context, companyID string) ([]*model.Location, error) {
	out := []*model.Location{}
	for _, l := range m.locations {
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLocationService) GetAll(context.Context, int, int64) ([]*model.Location, int64, error) {
	out := []*model.Location{}
	for _, l := range m.locations {
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (m *mockLocationService) Update(_ context.Context, id string, u *model.LocationUpdate) (*model.Location, error) {
	l := m.locations[id]
	if u.Capacity != nil {
		l.Capacity = *u.Capacity
	}
	return l, nil
}

func (m *mockLocationService) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockLocationService) GenerateAccessCode(context.Context) (string, error) {
	return "XYZ789", nil
}

func (m *mockLocationService) FindByAccessCode(context.Context, string) ([]*model.Location, error) {
	return nil, nil
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

type fixture struct {
	svc    *mockLocationService
	auth   *auth.Auth
	router *httprouter.Router
}

func newFixture(t *testing.T, locs ...*model.Location) *fixture {
	t.Helper()
	f := &fixture{
		svc:    newMockService(locs...),
		auth:   auth.New(auth.Config{Secret: "test-secret", Issuer: "seatsnag", TTL: time.Hour}),
		router: httprouter.New(),
	}
	NewLocationHandler(f.svc, f.auth, logger.Discard()).RegisterRoutes(f.router)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, claims auth.Claims) *httptest.ResponseRecorder {
	t.Helper()
	token, err := f.auth.GenerateToken(claims)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func companyAdmin(tenant string) auth.Claims {
	return auth.Claims{TenantID: tenant, Role: auth.RoleCompanyAdmin.String()}
}

var superAdmin = auth.Claims{Role: auth.RoleSuperAdmin.String()}

func hq() *model.Location {
	return &model.Location{ID: "loc-1", CompanyID: "co-1", Name: "HQ", Capacity: 10, AccessCode: "HQ0001", IsActive: true}
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestCreate_CompanyAdminIsScopedToOwnTenant(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/locations",
		`{"company_id":"co-other","name":"Annex","capacity":12}`, companyAdmin("co-1"))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, f.svc.created)
	assert.Equal(t, "co-1", f.svc.created.CompanyID)
	assert.Equal(t, 12, f.svc.created.Capacity)
}

func TestCreate_SuperAdminNeedsCompany(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/locations", `{"name":"Annex","capacity":12}`, superAdmin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/locations", `{"company_id":"co-9","name":"Annex","capacity":12}`, superAdmin)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "co-9", f.svc.created.CompanyID)
}

func TestCreate_RejectsUnknownFields(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/locations", `{"name":"Annex","seats":12}`, companyAdmin("co-1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmployeeIsForbidden(t *testing.T) {
	f := newFixture(t, hq())

	rec := f.do(t, http.MethodGet, "/api/v1/locations", "", auth.Claims{TenantID: "co-1", Role: auth.RoleEmployee.String()})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMissingToken(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/locations", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetByID_OtherTenantLooksMissing(t *testing.T) {
	f := newFixture(t, hq())

	rec := f.do(t, http.MethodGet, "/api/v1/locations/loc-1", "", companyAdmin("co-2"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/locations/loc-1", "", companyAdmin("co-1"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/locations/loc-1", "", superAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, hq())

	rec := f.do(t, http.MethodPatch, "/api/v1/locations/loc-1", `{"capacity":25}`, companyAdmin("co-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data model.Location `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 25, resp.Data.Capacity)
}

func TestDelete_RefusesOtherTenant(t *testing.T) {
	f := newFixture(t, hq())

	rec := f.do(t, http.MethodDelete, "/api/v1/locations/loc-1", "", companyAdmin("co-2"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.svc.deleted)

	rec = f.do(t, http.MethodDelete, "/api/v1/locations/loc-1", "", companyAdmin("co-1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"loc-1"}, f.svc.deleted)
}

func TestList(t *testing.T) {
	other := &model.Location{ID: "loc-2", CompanyID: "co-2", Name: "Remote", Capacity: 4}
	f := newFixture(t, hq(), other)

	rec := f.do(t, http.MethodGet, "/api/v1/locations", "", companyAdmin("co-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var scoped struct {
		Data []model.Location `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scoped))
	require.Len(t, scoped.Data, 1)
	assert.Equal(t, "loc-1", scoped.Data[0].ID)

	rec = f.do(t, http.MethodGet, "/api/v1/locations?limit=5", "", superAdmin)
	require.Equal(t, http.StatusOK, rec.Code)
	var all struct {
		Data       []model.Location `json:"data"`
		TotalCount int64            `json:"total_count"`
		Limit      int              `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, int64(2), all.TotalCount)
	assert.Equal(t, 5, all.Limit)
}

func TestGenerateAccessCode(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/locations/access-code", "", companyAdmin("co-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "XYZ789")
}
