package entity

import (
	"strings"
	"unicode/utf8"
)

// Field length limits for contact submissions.
const (
	MaxNameLength    = 200
	MaxEmailLength   = 254
	MaxMessageLength = 5000
)

// SubscriptionRequest is a validated newsletter signup.
type SubscriptionRequest struct {
	Email     string
	FirstName string
}

// ContactRequest is a validated contact form submission.
// The honeypot field is checked by the handler and never stored here.
type ContactRequest struct {
	Name    string
	Email   string
	Message string
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks lengths of an already-trimmed contact request.
// Presence and email format are checked by the handler so that each
// failure maps to its own user-facing message.
func (c *ContactRequest) Validate() error {
	if utf8.RuneCountInString(c.Name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: "Name is too long"}
	}
	if len(c.Email) > MaxEmailLength {
		return &ValidationError{Field: "email", Message: "Email is too long"}
	}
	if utf8.RuneCountInString(c.Message) > MaxMessageLength {
		return &ValidationError{Field: "message", Message: "Message is too long"}
	}
	return nil
}
