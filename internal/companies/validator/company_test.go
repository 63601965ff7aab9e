package validator

import (
	"errors"
	"testing"

	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"
)

func TestValidateSignup(t *testing.T) {
	v := NewCompanyValidator(logger.Discard())

	tests := []struct {
		name      string
		req       model.CompanySignup
		wantField string
	}{
		{
			name: "valid",
			req:  model.CompanySignup{CompanyName: "Acme", AdminName: "Dana", AdminEmail: "dana@acme.io"},
		},
		{
			name:      "missing company name",
			req:       model.CompanySignup{AdminEmail: "dana@acme.io"},
			wantField: "CompanyName",
		},
		{
			name:      "bad email",
			req:       model.CompanySignup{CompanyName: "Acme", AdminEmail: "dana-at-acme"},
			wantField: "AdminEmail",
		},
		{
			name:      "personal email",
			req:       model.CompanySignup{CompanyName: "Acme", AdminEmail: "dana@gmail.com"},
			wantField: "AdminEmail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSignup(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verrs[0].Field)
			}
		})
	}
}

func TestIsPersonalDomain(t *testing.T) {
	if !IsPersonalDomain("Someone@GMAIL.com") {
		t.Error("gmail address should be personal")
	}
	if IsPersonalDomain("acme.io") {
		t.Error("acme.io should not be personal")
	}
}
