// Package mail provides the use cases behind the site's newsletter signup and
// contact forms. Delivery is delegated to an email Provider injected at
// construction time.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ContactInput adds an address to a mailing audience.
type ContactInput struct {
	Email      string
	AudienceID string
	FirstName  string
}

// EmailInput describes one outbound message.
type EmailInput struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Provider is the transactional email capability.
//
// CreateContact must treat an already-present contact as success so that
// repeated signups are idempotent. Both calls return the provider's id for
// the created object.
type Provider interface {
	CreateContact(ctx context.Context, in ContactInput) (string, error)
	SendEmail(ctx context.Context, in EmailInput) (string, error)
}

// ErrNotConfigured matches every *ConfigurationError through errors.Is.
var ErrNotConfigured = errors.New("email provider not configured")

// ConfigurationError reports settings that are required to reach the
// provider but are absent. It is logged, never shown to visitors.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("email provider not configured: missing %s", strings.Join(e.Missing, ", "))
}

// Is reports whether target is ErrNotConfigured.
func (e *ConfigurationError) Is(target error) bool { return target == ErrNotConfigured }
