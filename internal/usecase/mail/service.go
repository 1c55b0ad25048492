package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"leafline-site/internal/domain/entity"
	"leafline-site/internal/observability/logging"
)

// Settings are the non-secret addresses the forms deliver to.
type Settings struct {
	// From is the verified sender address, e.g. "Leafline <hello@leafline.co>".
	From string
	// AudienceID is the provider audience newsletter contacts are added to.
	AudienceID string
	// Recipient receives contact form submissions.
	Recipient string
}

// Service composes form submissions into provider calls.
type Service struct {
	provider Provider
	settings Settings
}

// NewService creates a Service delivering through provider.
func NewService(provider Provider, settings Settings) *Service {
	return &Service{provider: provider, settings: settings}
}

// Subscribe adds the address to the newsletter audience.
// An address that is already subscribed is not an error.
func (s *Service) Subscribe(ctx context.Context, req entity.SubscriptionRequest) error {
	if s.settings.AudienceID == "" {
		return &ConfigurationError{Missing: []string{"RESEND_AUDIENCE_ID"}}
	}

	id, err := s.provider.CreateContact(ctx, ContactInput{
		Email:      req.Email,
		AudienceID: s.settings.AudienceID,
		FirstName:  req.FirstName,
	})
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}

	logging.FromContext(ctx).Info("newsletter contact created", slog.String("contact_id", id))
	return nil
}

// SendContact forwards a contact submission to the site owner with the
// visitor set as reply-to.
func (s *Service) SendContact(ctx context.Context, req entity.ContactRequest) error {
	var missing []string
	if s.settings.From == "" {
		missing = append(missing, "EMAIL_FROM")
	}
	if s.settings.Recipient == "" {
		missing = append(missing, "CONTACT_RECIPIENT")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}

	id, err := s.provider.SendEmail(ctx, ComposeContactEmail(s.settings.From, s.settings.Recipient, req))
	if err != nil {
		return fmt.Errorf("send contact email: %w", err)
	}

	logging.FromContext(ctx).Info("contact email sent", slog.String("email_id", id))
	return nil
}

// ComposeContactEmail builds the notification for one contact submission.
// Every piece of visitor text is HTML-escaped in the HTML body.
func ComposeContactEmail(from, recipient string, req entity.ContactRequest) EmailInput {
	name := html.EscapeString(req.Name)
	email := html.EscapeString(req.Email)
	message := strings.ReplaceAll(html.EscapeString(strings.ReplaceAll(req.Message, "\r\n", "\n")), "\n", "<br>")

	var b strings.Builder
	b.WriteString("<h2>New contact form submission</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>\n", name)
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", email)
	fmt.Fprintf(&b, "<p><strong>Message:</strong></p>\n<p>%s</p>\n", message)

	text := fmt.Sprintf("New contact form submission\n\nName: %s\nEmail: %s\n\nMessage:\n%s\n",
		req.Name, req.Email, req.Message)

	return EmailInput{
		From:    from,
		To:      []string{recipient},
		Subject: "New contact form submission from " + subjectSafe(req.Name),
		HTML:    b.String(),
		Text:    text,
		ReplyTo: req.Email,
	}
}

// subjectSafe folds line breaks so a name cannot add header lines.
func subjectSafe(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
