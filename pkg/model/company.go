package model

import "time"

const (
	TrialStatusPending     = "pending"
	TrialStatusActive      = "active"
	TrialStatusExpiring    = "expiring"
	TrialStatusGracePeriod = "grace_period"
	TrialStatusExpired     = "expired"
)

// Company is a tenant. TrialStatus is a cached label written at lifecycle
// events; the effective status is always recomputed from the dates.
type Company struct {
	ID                string     `json:"id,omitempty" bson:"_id,omitempty"`
	Name              string     `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Domain            string     `json:"domain" bson:"domain" validate:"required,fqdn"`
	AdminEmail        string     `json:"admin_email" bson:"admin_email" validate:"required,email"`
	AdminName         string     `json:"admin_name,omitempty" bson:"admin_name,omitempty" validate:"omitempty,max=100"`
	IsActive          bool       `json:"is_active" bson:"is_active"`
	EmailVerified     bool       `json:"email_verified" bson:"email_verified"`
	TrialStartDate    *time.Time `json:"trial_start_date,omitempty" bson:"trial_start_date,omitempty"`
	TrialEndDate      *time.Time `json:"trial_end_date,omitempty" bson:"trial_end_date,omitempty"`
	TrialStatus       string     `json:"trial_status" bson:"trial_status"`
	ExtensionDays     int        `json:"extension_days,omitempty" bson:"extension_days,omitempty"`
	ExtendedAt        *time.Time `json:"extended_at,omitempty" bson:"extended_at,omitempty"`
	VerificationToken string     `json:"-" bson:"verification_token,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
}

// CompanySignup is the self-service registration request.
type CompanySignup struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=100"`
	AdminName   string `json:"admin_name,omitempty" validate:"omitempty,max=100"`
	AdminEmail  string `json:"admin_email" validate:"required,email,work_email"`
}
