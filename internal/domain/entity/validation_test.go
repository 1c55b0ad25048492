package entity

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantMsg string
	}{
		{name: "simple address", email: "user@example.com"},
		{name: "subdomain", email: "first.last@mail.example.co.uk"},
		{name: "plus tag", email: "user+news@example.com"},
		{name: "empty", email: "", wantMsg: "Email is required"},
		{name: "no at sign", email: "user.example.com", wantMsg: "Invalid email format"},
		{name: "no domain dot", email: "user@localhost", wantMsg: "Invalid email format"},
		{name: "no local part", email: "@example.com", wantMsg: "Invalid email format"},
		{name: "embedded space", email: "us er@example.com", wantMsg: "Invalid email format"},
		{name: "two at signs", email: "a@b@example.com", wantMsg: "Invalid email format"},
		{name: "trailing dot only", email: "user@example.", wantMsg: "Invalid email format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("ValidateEmail(%q) error = %v, want nil", tt.email, err)
				}
				return
			}

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("ValidateEmail(%q) error = %v, want *ValidationError", tt.email, err)
			}
			if validationErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", validationErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  USER@Example.COM \n"); got != "user@example.com" {
		t.Errorf("NormalizeEmail() = %q, want %q", got, "user@example.com")
	}
}

func TestContactRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ContactRequest
		wantMsg string
	}{
		{
			name: "within limits",
			req:  ContactRequest{Name: "Ada", Email: "ada@example.com", Message: "Hello"},
		},
		{
			name:    "name too long",
			req:     ContactRequest{Name: strings.Repeat("n", MaxNameLength+1), Email: "a@b.co", Message: "hi"},
			wantMsg: "Name is too long",
		},
		{
			name:    "email too long",
			req:     ContactRequest{Name: "A", Email: strings.Repeat("e", MaxEmailLength) + "@b.co", Message: "hi"},
			wantMsg: "Email is too long",
		},
		{
			name:    "message too long",
			req:     ContactRequest{Name: "A", Email: "a@b.co", Message: strings.Repeat("m", MaxMessageLength+1)},
			wantMsg: "Message is too long",
		},
		{
			name: "multibyte message at limit",
			req:  ContactRequest{Name: "A", Email: "a@b.co", Message: strings.Repeat("葉", MaxMessageLength)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if validationErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", validationErr.Message, tt.wantMsg)
			}
		})
	}
}
