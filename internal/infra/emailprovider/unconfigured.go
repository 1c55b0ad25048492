package emailprovider

import (
	"context"
	"slices"

	"leafline-site/internal/usecase/mail"
)

// Unconfigured stands in for the provider when required settings are absent.
// The site still starts; every form submission fails with a
// *mail.ConfigurationError that is logged server-side.
type Unconfigured struct {
	missing []string
}

// NewUnconfigured returns a provider reporting the given missing keys.
func NewUnconfigured(missing []string) *Unconfigured {
	return &Unconfigured{missing: slices.Clone(missing)}
}

// CreateContact always fails with a configuration error.
func (u *Unconfigured) CreateContact(context.Context, mail.ContactInput) (string, error) {
	return "", u.err()
}

// SendEmail always fails with a configuration error.
func (u *Unconfigured) SendEmail(context.Context, mail.EmailInput) (string, error) {
	return "", u.err()
}

func (u *Unconfigured) err() error {
	return &mail.ConfigurationError{Missing: slices.Clone(u.missing)}
}
