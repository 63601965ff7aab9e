package validator

import (
	"errors"
	"fmt"
	"strings"

	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"
	"seatsnag/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

// personalDomains cannot own a tenant: SSO maps every address of a
// company's domain to that company.
var personalDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"live.com":       true,
	"aol.com":        true,
	"icloud.com":     true,
	"proton.me":      true,
	"protonmail.com": true,
}

func IsPersonalDomain(domain string) bool {
	return personalDomains[sanitizer.Domain(domain)]
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CompanyValidator struct {
	validate *validator.Validate
}

func NewCompanyValidator(log *logger.Logger) *CompanyValidator {
	v := validator.New()
	if err := v.RegisterValidation("work_email", validateWorkEmail); err != nil {
		log.Fatal("Failed to register company validator",
			"tag", "work_email",
			"error", err,
		)
	}
	return &CompanyValidator{validate: v}
}

func validateWorkEmail(fl validator.FieldLevel) bool {
	return !IsPersonalDomain(fl.Field().String())
}

func (v *CompanyValidator) ValidateSignup(req *model.CompanySignup) error {
	return v.check(req)
}

func (v *CompanyValidator) Validate(company *model.Company) error {
	return v.check(company)
}

func (v *CompanyValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "fqdn":
			message = fmt.Sprintf("%s must be a valid domain name", err.Field())
		case "work_email":
			message = fmt.Sprintf("%s must be a company address, personal email providers cannot be used", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
