package respond

import (
	"regexp"
)

var (
	// Resend API keys ("re_" followed by the key body).
	resendKeyPattern = regexp.MustCompile(`\bre_[A-Za-z0-9_]{6,}`)

	// Bearer tokens echoed back in provider error bodies.
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/-]+=*`)

	// Email addresses; the local part is masked but the domain is kept.
	emailPattern = regexp.MustCompile(`([A-Za-z0-9._%+-])[A-Za-z0-9._%+-]*@([A-Za-z0-9.-]+\.[A-Za-z]{2,})`)
)

// SanitizeError returns err's message with credentials and visitor email
// addresses masked so that it can be written to logs.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString applies the masking used by SanitizeError to s.
// Order matters: bearer tokens may themselves look like API keys.
func SanitizeString(s string) string {
	s = bearerPattern.ReplaceAllString(s, "Bearer ****")
	s = resendKeyPattern.ReplaceAllString(s, "re_****")
	s = emailPattern.ReplaceAllString(s, "$1***@$2")
	return s
}
