package entity

import "regexp"

// emailPattern is deliberately permissive: a local part, an @, and a domain
// containing a dot, with no whitespace anywhere.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether email has an acceptable shape.
// The caller is expected to have normalized it with NormalizeEmail.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: "email", Message: "Invalid email format"}
	}
	return nil
}
