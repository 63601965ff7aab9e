package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"seatsnag/pkg/config"
	"seatsnag/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	accessCodeRegex = regexp.MustCompile(`^[A-Z0-9-]{6,8}$`)
	pinRegex        = regexp.MustCompile(`^\d{4}$`)
)

// IsAccessCode reports whether code is a well-formed, already uppercased
// access code.
func IsAccessCode(code string) bool {
	return accessCodeRegex.MatchString(code)
}

func IsPIN(pin string) bool {
	return pinRegex.MatchString(pin)
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

type LocationValidator struct {
	validate    *validator.Validate
	minCapacity int
	maxCapacity int
}

func NewLocationValidator(cfg *config.Config) *LocationValidator {
	lv := &LocationValidator{
		validate:    validator.New(),
		minCapacity: cfg.MinCapacity,
		maxCapacity: cfg.MaxCapacity,
	}
	if lv.minCapacity <= 0 {
		lv.minCapacity = config.DefaultMinCapacity
	}
	if lv.maxCapacity <= 0 {
		lv.maxCapacity = config.DefaultMaxCapacity
	}

	tags := map[string]validator.Func{
		"capacity":    lv.validateCapacity,
		"access_code": validateAccessCode,
		"legacy_pin":  validatePIN,
	}
	for tag, fn := range tags {
		if err := lv.validate.RegisterValidation(tag, fn); err != nil {
			cfg.Log.Fatal("Failed to register location validator",
				"tag", tag,
				"error", err,
			)
		}
	}

	return lv
}

func (v *LocationValidator) validateCapacity(fl validator.FieldLevel) bool {
	n := fl.Field().Int()
	return n >= int64(v.minCapacity) && n <= int64(v.maxCapacity)
}

func validateAccessCode(fl validator.FieldLevel) bool {
	return IsAccessCode(fl.Field().String())
}

func validatePIN(fl validator.FieldLevel) bool {
	return IsPIN(fl.Field().String())
}

func (v *LocationValidator) Validate(loc *model.Location) error {
	return v.check(loc)
}

func (v *LocationValidator) ValidateUpdate(update *model.LocationUpdate) error {
	return v.check(update)
}

func (v *LocationValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *LocationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "capacity":
			message = fmt.Sprintf("%s must be between %d and %d", err.Field(), v.minCapacity, v.maxCapacity)
		case "access_code":
			message = fmt.Sprintf("%s must be 6-8 characters of A-Z, 0-9 or '-'", err.Field())
		case "legacy_pin":
			message = fmt.Sprintf("%s must be exactly 4 digits", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
