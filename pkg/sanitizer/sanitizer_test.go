package sanitizer

import (
	"reflect"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Ana Souza  ", "Ana Souza"},
		{"collapse inner whitespace", "Ana \t\n Souza", "Ana Souza"},
		{"case preserved", "ana souza", "ana souza"},
		{"only whitespace", "   ", ""},
		{"unicode", " Zoë Ørsted ", "Zoë Ørsted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAccessCode_CaseInsensitive(t *testing.T) {
	if AccessCode("abc123") != AccessCode("ABC123") {
		t.Error("access codes differing only in case must normalize to the same value")
	}
	if got := AccessCode("  hq-north "); got != "HQ-NORTH" {
		t.Errorf("AccessCode = %q", got)
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Admin@Acme.COM", "acme.com"},
		{"acme.com", "acme.com"},
		{" www.Acme.com. ", "acme.com"},
		{"a@b@corp.io", "corp.io"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Domain(tt.input); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIdempotent(t *testing.T) {
	strategies := map[string]Strategy{
		"DisplayName":  DisplayName,
		"AccessCode":   AccessCode,
		"Email":        Email,
		"Domain":       Domain,
		"LocationName": LocationName,
	}
	inputs := []string{"  Mixed Case  Value ", "x@Y.org", ""}

	for name, fn := range strategies {
		for _, in := range inputs {
			once := fn(in)
			if twice := fn(once); twice != once {
				t.Errorf("%s not idempotent for %q: %q then %q", name, in, once, twice)
			}
		}
	}
}

func TestNormalizeEmails(t *testing.T) {
	got := NormalizeEmails([]string{"Ops@X.io", "ops@x.io", " ", "b@x.io"})
	want := []string{"ops@x.io", "b@x.io"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeEmails = %v, want %v", got, want)
	}
}

func TestNormalizeDates(t *testing.T) {
	got := NormalizeDates([]string{"2025-03-10", " 2025-03-10", "2025-03-11", ""})
	want := []string{"2025-03-10", "2025-03-11"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeDates = %v, want %v", got, want)
	}
}
