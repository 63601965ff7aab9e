package validator

import (
	"errors"
	"strings"
	"testing"

	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.Discard())
}

func TestValidateDate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		date    string
		wantErr bool
	}{
		{name: "valid date", date: "2025-03-11", wantErr: false},
		{name: "empty", date: "", wantErr: true},
		{name: "wrong separator", date: "2025/03/11", wantErr: true},
		{name: "impossible day", date: "2025-02-30", wantErr: true},
		{name: "with time", date: "2025-03-11T10:00:00Z", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateDate(&DateRequest{Date: tt.date})
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateDate(%q) error = %v, wantErr %v", tt.date, err, tt.wantErr)
			}
			if err != nil {
				var verrs ValidationErrors
				if !errors.As(err, &verrs) {
					t.Fatalf("expected ValidationErrors, got %T", err)
				}
				if verrs[0].Field != "Date" {
					t.Errorf("expected field Date, got %s", verrs[0].Field)
				}
			}
		})
	}
}

func TestValidateSelection(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateSelection(&SelectionRequest{}); err != nil {
		t.Errorf("empty selection should be valid, got %v", err)
	}
	if err := v.ValidateSelection(&SelectionRequest{Dates: []string{"2025-03-11", "2025-03-12"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := v.ValidateSelection(&SelectionRequest{Dates: []string{"2025-03-11", "tomorrow"}})
	if err == nil {
		t.Fatal("expected an error for a malformed date")
	}
	if !strings.Contains(err.Error(), "YYYY-MM-DD") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator()

	valid := &model.Booking{
		CompanyID:   "co-1",
		LocationID:  "loc-1",
		UserID:      "u-1",
		UserName:    "Ana",
		BookingDate: "2025-03-11",
		Status:      model.BookingStatusActive,
	}
	if err := v.Validate(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := *valid
	invalid.UserName = ""
	invalid.Status = "pending"
	err := v.Validate(&invalid)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(verrs) != 2 {
		t.Errorf("expected 2 errors, got %d: %v", len(verrs), verrs)
	}
}

func TestValidateLogins(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateAccessCodeLogin(&AccessCodeLogin{AccessCode: "HQ2024", UserName: "Ana"}); err != nil {
		t.Fatalf("valid access code login rejected: %v", err)
	}
	if err := v.ValidateAccessCodeLogin(&AccessCodeLogin{AccessCode: "HQ2024"}); err == nil {
		t.Fatal("expected missing user name to be rejected")
	}
	if err := v.ValidateAccessCodeLogin(&AccessCodeLogin{AccessCode: "AB", UserName: "Ana"}); err == nil {
		t.Fatal("expected short access code to be rejected")
	}

	if err := v.ValidateSSOLogin(&SSOLogin{Email: "ana@acme.com"}); err != nil {
		t.Fatalf("valid sso login rejected: %v", err)
	}
	err := v.ValidateSSOLogin(&SSOLogin{Email: "not-an-email"})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) || !strings.Contains(verrs[0].Message, "valid email") {
		t.Fatalf("expected email validation error, got %v", err)
	}
}
