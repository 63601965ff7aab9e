package validator

import (
	"errors"
	"fmt"
	"strings"

	"seatsnag/pkg/dates"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"

	"github.com/go-playground/validator/v10"
)

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

// DateRequest is the body of a single-day booking or a selection toggle.
type DateRequest struct {
	Date string `json:"date" validate:"required,iso_date"`
}

// SelectionRequest carries an explicit selection for a commit.
type SelectionRequest struct {
	Dates []string `json:"dates" validate:"omitempty,max=62,dive,iso_date"`
}

// AccessCodeLogin starts a session from a location access code or PIN.
// LocationID picks one location when the code matches several.
type AccessCodeLogin struct {
	AccessCode string `json:"accessCode" validate:"required,min=4,max=8"`
	UserName   string `json:"userName" validate:"required,max=60"`
	LocationID string `json:"locationId,omitempty"`
}

// SSOLogin starts a session for an identity whose email domain belongs to a
// registered company.
type SSOLogin struct {
	Email      string `json:"email" validate:"required,email"`
	UserName   string `json:"userName" validate:"omitempty,max=60"`
	LocationID string `json:"locationId,omitempty"`
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("iso_date", validateISODate); err != nil {
		log.Fatal("Failed to register 'iso_date' validator",
			"error", err,
		)
	}

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateISODate(fl validator.FieldLevel) bool {
	return dates.IsValid(fl.Field().String())
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	return v.check(booking)
}

func (v *BookingValidator) ValidateDate(req *DateRequest) error {
	return v.check(req)
}

func (v *BookingValidator) ValidateSelection(req *SelectionRequest) error {
	return v.check(req)
}

func (v *BookingValidator) ValidateAccessCodeLogin(req *AccessCodeLogin) error {
	return v.check(req)
}

func (v *BookingValidator) ValidateSSOLogin(req *SSOLogin) error {
	return v.check(req)
}

func (v *BookingValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "iso_date", "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
