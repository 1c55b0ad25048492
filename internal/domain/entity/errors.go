package entity

import "errors"

// ErrValidationFailed matches every *ValidationError via errors.Is.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError reports a rejected field of a visitor submission or a
// request argument. Message is written for visitors and is returned verbatim
// in response bodies, so it never contains submitted values.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// IsValidation reports whether err carries a ValidationError and returns its
// visitor-facing message.
func IsValidation(err error) (string, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}
