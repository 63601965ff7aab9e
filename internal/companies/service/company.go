package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	companieserrors "seatsnag/internal/companies/errors"
	"seatsnag/internal/companies/repository"
	"seatsnag/internal/companies/validator"
	"seatsnag/internal/mailqueue"
	"seatsnag/internal/trial"
	"seatsnag/pkg/config"
	apperrors "seatsnag/pkg/errors"
	httputil "seatsnag/pkg/http"
	"seatsnag/pkg/model"
	"seatsnag/pkg/sanitizer"

	"github.com/google/uuid"
	"github.com/viccon/sturdyc"
)

const (
	minExtensionDays = 1

	cacheCapacity           = 10000
	cacheShards             = 10
	cacheEvictionPercentage = 10
)

type CompanyService interface {
	Signup(ctx context.Context, req *model.CompanySignup) (*model.Company, error)
	Verify(ctx context.Context, id, token string) (*model.Company, error)
	ExtendTrial(ctx context.Context, id string, days int) (*model.Company, error)
	TrialStatus(ctx context.Context, id string) (trial.Status, error)
	GetByID(ctx context.Context, id string) (*model.Company, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Company, int64, error)
	FindByDomain(ctx context.Context, emailOrDomain string) (*model.Company, error)
}

type companyService struct {
	repo      repository.CompanyRepository
	validator *validator.CompanyValidator
	mail      mailqueue.Enqueuer
	cache     *sturdyc.Client[model.Company]
	policy    trial.Policy
	cfg       *config.Config
	now       func() time.Time
}

func NewCompanyService(
	repo repository.CompanyRepository,
	validator *validator.CompanyValidator,
	mail mailqueue.Enqueuer,
	cfg *config.Config,
) CompanyService {
	return &companyService{
		repo:      repo,
		validator: validator,
		mail:      mail,
		cache:     sturdyc.New[model.Company](cacheCapacity, cacheShards, cfg.CompanyCacheTTL, cacheEvictionPercentage),
		policy: trial.Policy{
			ExpiringThresholdDays: cfg.ExpiringThresholdDays,
			GraceDays:             cfg.GraceDays,
		},
		cfg: cfg,
		now: time.Now,
	}
}

func (s *companyService) Signup(ctx context.Context, req *model.CompanySignup) (*model.Company, error) {
	req.CompanyName = sanitizer.TrimAndNormalize(req.CompanyName)
	req.AdminName = sanitizer.DisplayName(req.AdminName)
	req.AdminEmail = sanitizer.Email(req.AdminEmail)

	if err := s.validator.ValidateSignup(req); err != nil {
		s.cfg.Log.Warn("Company signup validation failed",
			"company_name", req.CompanyName,
			"error", err,
		)
		return nil, apperrors.Validation("Company validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	company := &model.Company{
		Name:              req.CompanyName,
		Domain:            sanitizer.Domain(req.AdminEmail),
		AdminEmail:        req.AdminEmail,
		AdminName:         req.AdminName,
		TrialStatus:       model.TrialStatusPending,
		VerificationToken: uuid.New().String(),
	}
	if err := s.validator.Validate(company); err != nil {
		return nil, apperrors.Validation("Company validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	domainTaken, emailTaken, err := s.repo.ExistsByDomainOrEmail(ctx, company.Domain, company.AdminEmail)
	if err != nil {
		s.cfg.Log.Error("Failed to check company uniqueness", "domain", company.Domain, "error", err)
		return nil, apperrors.Internal("Failed to create company", err)
	}
	if emailTaken {
		return nil, apperrors.Conflict("An account with this email address already exists")
	}
	if domainTaken {
		return nil, apperrors.Conflict(fmt.Sprintf("A company with the domain %s is already registered", company.Domain))
	}

	if err := s.repo.Create(ctx, company); err != nil {
		if errors.Is(err, companieserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("An account with this email address already exists")
		}
		if errors.Is(err, companieserrors.ErrDuplicateDomain) {
			return nil, apperrors.Conflict(fmt.Sprintf("A company with the domain %s is already registered", company.Domain))
		}
		s.cfg.Log.Error("Failed to create company", "domain", company.Domain, "error", err)
		return nil, apperrors.Internal("Failed to create company", err)
	}

	s.cfg.Log.Info("Company signed up successfully",
		"company_id", company.ID,
		"domain", company.Domain,
	)

	mail, err := mailqueue.VerificationMail(company.AdminEmail, mailqueue.VerificationData{
		AdminName:   company.AdminName,
		CompanyName: company.Name,
		Email:       company.AdminEmail,
		Link:        s.verificationLink(company),
		TrialDays:   s.cfg.TrialLengthDays,
	})
	s.send(ctx, company.ID, mail, err)

	return company, nil
}

func (s *companyService) verificationLink(c *model.Company) string {
	q := url.Values{}
	q.Set("token", c.VerificationToken)
	q.Set("company", c.ID)
	return s.cfg.AppBaseURL + "/verify?" + q.Encode()
}

// send enqueues mail and swallows failures; a lost email never fails the
// lifecycle operation that triggered it.
func (s *companyService) send(ctx context.Context, companyID string, mail model.Mail, renderErr error) {
	if renderErr != nil {
		s.cfg.Log.Error("Failed to render mail", "company_id", companyID, "error", renderErr)
		return
	}
	if s.mail == nil {
		return
	}
	if err := s.mail.Enqueue(ctx, mail); err != nil {
		s.cfg.Log.Warn("Continuing without mail",
			"company_id", companyID,
			"subject", mail.Message.Subject,
			"error", err,
		)
	}
}

func (s *companyService) Verify(ctx context.Context, id, token string) (*model.Company, error) {
	if token == "" {
		return nil, apperrors.InvalidInput("Verification token is required")
	}

	company, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.EmailVerified {
		return nil, apperrors.Conflict("This email has already been verified")
	}
	if company.VerificationToken != token {
		s.cfg.Log.Warn("Verification token mismatch", "company_id", id)
		return nil, apperrors.Forbidden("Invalid verification token")
	}

	start, end := trial.Window(s.now().UTC(), s.cfg.TrialLengthDays)
	company.EmailVerified = true
	company.IsActive = true
	company.VerificationToken = ""
	company.TrialStartDate = &start
	company.TrialEndDate = &end
	company.TrialStatus = s.policy.Classify(start, &start, &end).Status

	if err := s.repo.Update(ctx, id, company); err != nil {
		return nil, s.translate(err, id, "Failed to verify company")
	}
	s.cache.Delete(id)

	s.cfg.Log.Info("Company verified successfully",
		"company_id", id,
		"trial_end_date", end,
	)

	mail, err := mailqueue.WelcomeMail(company.AdminEmail, mailqueue.WelcomeData{
		AdminName:    company.AdminName,
		CompanyName:  company.Name,
		Email:        company.AdminEmail,
		TrialDays:    s.cfg.TrialLengthDays,
		TrialEndDate: end,
	})
	s.send(ctx, id, mail, err)

	return company, nil
}

func (s *companyService) ExtendTrial(ctx context.Context, id string, days int) (*model.Company, error) {
	if days < minExtensionDays || days > s.cfg.MaxTrialExtensionDays {
		return nil, apperrors.Validation("Invalid trial extension", map[string]any{
			"error": fmt.Sprintf("days must be between %d and %d", minExtensionDays, s.cfg.MaxTrialExtensionDays),
		})
	}

	company, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.TrialStartDate == nil {
		return nil, apperrors.InvalidInput("Trial has not started, the company must verify its email first")
	}

	now := s.now().UTC()
	end := trial.Extend(now, company.TrialEndDate, days)
	company.TrialEndDate = &end
	company.ExtensionDays += days
	company.ExtendedAt = &now
	company.TrialStatus = s.policy.Classify(now, company.TrialStartDate, company.TrialEndDate).Status

	if err := s.repo.Update(ctx, id, company); err != nil {
		return nil, s.translate(err, id, "Failed to extend trial")
	}
	s.cache.Delete(id)

	s.cfg.Log.Info("Trial extended successfully",
		"company_id", id,
		"days", days,
		"trial_end_date", end,
		"trial_status", company.TrialStatus,
	)

	mail, err := mailqueue.TrialExtendedMail(company.AdminEmail, mailqueue.TrialExtendedData{
		CompanyName:  company.Name,
		Days:         days,
		TrialEndDate: end,
	})
	s.send(ctx, id, mail, err)

	return company, nil
}

// TrialStatus is recomputed from the trial dates on every call; the stored
// label is only a cache for listings. A cached company that would be denied
// writes is re-read from storage, since another service may have extended it.
func (s *companyService) TrialStatus(ctx context.Context, id string) (trial.Status, error) {
	company, err := s.GetByID(ctx, id)
	if err != nil {
		return trial.Status{}, err
	}
	status := s.policy.Classify(s.now(), company.TrialStartDate, company.TrialEndDate)
	if !status.ReadOnly {
		return status, nil
	}

	fresh, err := s.load(ctx, id)
	if err != nil {
		return trial.Status{}, err
	}
	if !sameTrial(company, fresh) {
		s.cache.Delete(id)
	}
	return s.policy.Classify(s.now(), fresh.TrialStartDate, fresh.TrialEndDate), nil
}

func sameTrial(a, b *model.Company) bool {
	return sameTime(a.TrialStartDate, b.TrialStartDate) && sameTime(a.TrialEndDate, b.TrialEndDate)
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (s *companyService) GetByID(ctx context.Context, id string) (*model.Company, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Company ID cannot be empty")
	}

	company, err := s.cache.GetOrFetch(ctx, id, func(ctx context.Context) (model.Company, error) {
		c, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return model.Company{}, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve company")
	}
	return &company, nil
}

// load bypasses the cache for read-modify-write paths.
func (s *companyService) load(ctx context.Context, id string) (*model.Company, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Company ID cannot be empty")
	}
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve company")
	}
	return company, nil
}

func (s *companyService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Company, int64, error) {
	limit = httputil.NormalizeLimit(limit)
	if offset < 0 {
		offset = 0
	}

	var count int64
	var companies []*model.Company
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count companies", "error", err)
			errCount = apperrors.Internal("Failed to count companies", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		companies, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all companies",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve companies", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	now := s.now()
	for _, c := range companies {
		c.TrialStatus = s.policy.Classify(now, c.TrialStartDate, c.TrialEndDate).Status
	}
	return companies, count, nil
}

// FindByDomain resolves the active company owning an email address or
// bare domain. Used by SSO login.
func (s *companyService) FindByDomain(ctx context.Context, emailOrDomain string) (*model.Company, error) {
	domain := sanitizer.Domain(emailOrDomain)
	if domain == "" {
		return nil, apperrors.InvalidInput("Email domain cannot be empty")
	}

	company, err := s.repo.FindActiveByDomain(ctx, domain)
	if err != nil {
		if errors.Is(err, companieserrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound,
				fmt.Sprintf("Your email domain (@%s) is not registered with SeatSnag. Please contact your admin or use the access code.", domain),
				http.StatusNotFound)
		}
		s.cfg.Log.Error("Failed to find company by domain", "domain", domain, "error", err)
		return nil, apperrors.Internal("Failed to retrieve company", err)
	}
	return company, nil
}

func (s *companyService) translate(err error, id, msg string) error {
	switch {
	case errors.Is(err, companieserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Company", id)
	case errors.Is(err, companieserrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("Invalid company ID format: %s", id))
	default:
		s.cfg.Log.Error(msg, "company_id", id, "error", err)
		return apperrors.Internal(msg, err)
	}
}
