package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	companieserrors "seatsnag/internal/companies/errors"
	"seatsnag/internal/companies/validator"
	"seatsnag/pkg/config"
	apperrors "seatsnag/pkg/errors"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"
)

// ────────────────────────────────────────────────
// In-memory repository and mail recorder
// ────────────────────────────────────────────────

type memCompanyRepository struct {
	mu        sync.Mutex
	companies map[string]*model.Company
	nextID    int
	finds     int
	updateErr error
}

func newMemRepo() *memCompanyRepository {
	return &memCompanyRepository{companies: map[string]*model.Company{}}
}

func (r *memCompanyRepository) Create(_ context.Context, c *model.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = fmt.Sprintf("co-%d", r.nextID)
	cp := *c
	r.companies[c.ID] = &cp
	return nil
}

func (r *memCompanyRepository) FindByID(_ context.Context, id string) (*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	c, ok := r.companies[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", companieserrors.ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (r *memCompanyRepository) FindActiveByDomain(_ context.Context, domain string) (*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.companies {
		if c.Domain == domain && c.IsActive {
			cp := *c
			return &cp, nil
		}
	}
	return nil, companieserrors.ErrNotFound
}

func (r *memCompanyRepository) ExistsByDomainOrEmail(_ context.Context, domain, email string) (bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var d, e bool
	for _, c := range r.companies {
		d = d || c.Domain == domain
		e = e || c.AdminEmail == email
	}
	return d, e, nil
}

func (r *memCompanyRepository) FindAll(context.Context, int, int64) ([]*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Company
	for _, c := range r.companies {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memCompanyRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.companies)), nil
}

func (r *memCompanyRepository) Update(_ context.Context, id string, c *model.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.companies[id]; !ok {
		return companieserrors.ErrNotFound
	}
	cp := *c
	r.companies[id] = &cp
	return nil
}

type mailRecorder struct {
	mails []model.Mail
	err   error
}

func (m *mailRecorder) Enqueue(_ context.Context, mail model.Mail) error {
	if m.err != nil {
		return m.err
	}
	m.mails = append(m.mails, mail)
	return nil
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestService(repo *memCompanyRepository, mail *mailRecorder) *companyService {
	cfg := config.Defaults()
	cfg.Log = logger.Discard()
	svc := NewCompanyService(repo, validator.NewCompanyValidator(cfg.Log), mail, cfg).(*companyService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func signup(t *testing.T, svc *companyService) *model.Company {
	t.Helper()
	c, err := svc.Signup(context.Background(), &model.CompanySignup{
		CompanyName: "  Acme   Corp ",
		AdminName:   "Dana",
		AdminEmail:  " Dana@ACME.io ",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	return c
}

func verified(t *testing.T, svc *companyService) *model.Company {
	t.Helper()
	c := signup(t, svc)
	c, err := svc.Verify(context.Background(), c.ID, c.VerificationToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	return c
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperrors.HasCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

// ────────────────────────────────────────────────
// Tests
// ────────────────────────────────────────────────

func TestSignup_CreatesPendingCompany(t *testing.T) {
	mail := &mailRecorder{}
	svc := newTestService(newMemRepo(), mail)

	c := signup(t, svc)

	if c.Name != "Acme Corp" {
		t.Errorf("expected normalized name, got %q", c.Name)
	}
	if c.Domain != "acme.io" || c.AdminEmail != "dana@acme.io" {
		t.Errorf("unexpected domain/email: %s %s", c.Domain, c.AdminEmail)
	}
	if c.IsActive || c.EmailVerified || c.TrialStartDate != nil {
		t.Error("new company must be inactive and unverified")
	}
	if c.TrialStatus != model.TrialStatusPending {
		t.Errorf("expected pending, got %s", c.TrialStatus)
	}
	if c.VerificationToken == "" {
		t.Fatal("expected a verification token")
	}

	if len(mail.mails) != 1 {
		t.Fatalf("expected one verification mail, got %d", len(mail.mails))
	}
	html := mail.mails[0].Message.HTML
	if !strings.Contains(html, "token="+c.VerificationToken) || !strings.Contains(html, "company="+c.ID) {
		t.Errorf("verification link missing from mail: %s", html)
	}
}

func TestSignup_Conflicts(t *testing.T) {
	svc := newTestService(newMemRepo(), &mailRecorder{})
	signup(t, svc)

	_, err := svc.Signup(context.Background(), &model.CompanySignup{CompanyName: "Acme", AdminEmail: "dana@acme.io"})
	expectCode(t, err, apperrors.CodeConflict)

	_, err = svc.Signup(context.Background(), &model.CompanySignup{CompanyName: "Acme 2", AdminEmail: "other@acme.io"})
	expectCode(t, err, apperrors.CodeConflict)
}

func TestSignup_RejectsPersonalEmail(t *testing.T) {
	svc := newTestService(newMemRepo(), &mailRecorder{})

	_, err := svc.Signup(context.Background(), &model.CompanySignup{CompanyName: "Acme", AdminEmail: "dana@gmail.com"})
	expectCode(t, err, apperrors.CodeValidation)
}

func TestSignup_MailFailureIsNotFatal(t *testing.T) {
	svc := newTestService(newMemRepo(), &mailRecorder{err: errors.New("queue down")})

	if c := signup(t, svc); c.ID == "" {
		t.Fatal("expected company to be created")
	}
}

func TestVerify_StartsTrial(t *testing.T) {
	mail := &mailRecorder{}
	repo := newMemRepo()
	svc := newTestService(repo, mail)

	c := verified(t, svc)

	if !c.IsActive || !c.EmailVerified {
		t.Error("verified company must be active")
	}
	if c.VerificationToken != "" {
		t.Error("token must be cleared")
	}
	if !c.TrialStartDate.Equal(fixedNow) || !c.TrialEndDate.Equal(fixedNow.AddDate(0, 0, 14)) {
		t.Errorf("unexpected trial window %v - %v", c.TrialStartDate, c.TrialEndDate)
	}
	if c.TrialStatus != model.TrialStatusActive {
		t.Errorf("expected active, got %s", c.TrialStatus)
	}
	if stored := repo.companies[c.ID]; !stored.EmailVerified {
		t.Error("verification not persisted")
	}
	if len(mail.mails) != 2 || !strings.Contains(mail.mails[1].Message.Subject, "Trial is Active") {
		t.Errorf("expected welcome mail, got %+v", mail.mails)
	}

	_, err := svc.Verify(context.Background(), c.ID, "anything")
	expectCode(t, err, apperrors.CodeConflict)
}

func TestVerify_WrongToken(t *testing.T) {
	svc := newTestService(newMemRepo(), &mailRecorder{})
	c := signup(t, svc)

	_, err := svc.Verify(context.Background(), c.ID, "wrong")
	expectCode(t, err, apperrors.CodeForbidden)

	_, err = svc.Verify(context.Background(), "co-missing", "t")
	expectCode(t, err, apperrors.CodeNotFound)
}

func TestExtendTrial_Bounds(t *testing.T) {
	svc := newTestService(newMemRepo(), &mailRecorder{})
	c := verified(t, svc)

	for _, days := range []int{0, -3, 91} {
		_, err := svc.ExtendTrial(context.Background(), c.ID, days)
		expectCode(t, err, apperrors.CodeValidation)
	}

	pending := signup2(t, svc)
	_, err := svc.ExtendTrial(context.Background(), pending.ID, 7)
	expectCode(t, err, apperrors.CodeInvalidInput)
}

func signup2(t *testing.T, svc *companyService) *model.Company {
	t.Helper()
	c, err := svc.Signup(context.Background(), &model.CompanySignup{CompanyName: "Globex", AdminEmail: "hank@globex.io"})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	return c
}

func TestExtendTrial_RevivesExpiredTenant(t *testing.T) {
	svc := newTestService(newMemRepo(), &mailRecorder{})
	c := verified(t, svc)

	// 30 days later the 14-day trial and 7-day grace are both over.
	svc.now = func() time.Time { return fixedNow.AddDate(0, 0, 30) }
	status, err := svc.TrialStatus(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Locked {
		t.Fatalf("expected locked tenant, got %+v", status)
	}

	c, err = svc.ExtendTrial(context.Background(), c.ID, 30)
	if err != nil {
		t.Fatal(err)
	}
	if !c.TrialEndDate.Equal(fixedNow.AddDate(0, 0, 44)) {
		t.Errorf("expected end pushed from previous end, got %v", c.TrialEndDate)
	}
	if c.ExtensionDays != 30 || c.ExtendedAt == nil {
		t.Error("extension metadata not recorded")
	}

	status, err = svc.TrialStatus(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Locked || status.ReadOnly || status.DaysLeft != 14 {
		t.Errorf("extension must take effect immediately, got %+v", status)
	}
}

func TestTrialStatus_SeesExtensionFromAnotherInstance(t *testing.T) {
	repo := newMemRepo()
	admin := newTestService(repo, &mailRecorder{})
	bookings := newTestService(repo, &mailRecorder{})
	c := verified(t, admin)

	later := func() time.Time { return fixedNow.AddDate(0, 0, 30) }
	admin.now, bookings.now = later, later

	status, err := bookings.TrialStatus(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Locked {
		t.Fatalf("expected locked tenant, got %+v", status)
	}

	if _, err := admin.ExtendTrial(context.Background(), c.ID, 30); err != nil {
		t.Fatal(err)
	}

	status, err = bookings.TrialStatus(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Locked || status.ReadOnly {
		t.Errorf("extension must be visible without waiting for the cache, got %+v", status)
	}
}

func TestTrialStatus_UsesCache(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &mailRecorder{})
	c := verified(t, svc)
	before := repo.finds

	for range 3 {
		if _, err := svc.TrialStatus(context.Background(), c.ID); err != nil {
			t.Fatal(err)
		}
	}
	if got := repo.finds - before; got != 1 {
		t.Errorf("expected one repository read, got %d", got)
	}
}

func TestExtendTrial_StorageFailure(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &mailRecorder{})
	c := verified(t, svc)
	repo.updateErr = errors.New("write concern timeout")

	_, err := svc.ExtendTrial(context.Background(), c.ID, 7)
	expectCode(t, err, apperrors.CodeInternal)
}

func TestFindByDomain(t *testing.T) {
	svc := newTestService(newMemRepo(), &mailRecorder{})
	pending := signup(t, svc)

	_, err := svc.FindByDomain(context.Background(), "someone@acme.io")
	expectCode(t, err, apperrors.CodeNotFound)

	if _, err := svc.Verify(context.Background(), pending.ID, pending.VerificationToken); err != nil {
		t.Fatal(err)
	}

	c, err := svc.FindByDomain(context.Background(), "Someone@ACME.io")
	if err != nil {
		t.Fatalf("expected company, got %v", err)
	}
	if c.ID != pending.ID {
		t.Errorf("expected %s, got %s", pending.ID, c.ID)
	}
}

func TestGetAll_RecomputesStatus(t *testing.T) {
	svc := newTestService(newMemRepo(), &mailRecorder{})
	verified(t, svc)

	svc.now = func() time.Time { return fixedNow.AddDate(0, 0, 12) }
	companies, total, err := svc.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(companies) != 1 {
		t.Fatalf("unexpected result %d/%d", len(companies), total)
	}
	if companies[0].TrialStatus != model.TrialStatusExpiring {
		t.Errorf("expected expiring, got %s", companies[0].TrialStatus)
	}
}
