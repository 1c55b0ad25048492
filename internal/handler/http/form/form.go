// Package form provides the HTTP handlers behind the site's newsletter and
// contact forms.
//
// Input problems are answered with 400 and a precise message. Anything that
// goes wrong after validation (provider failure, missing configuration) is
// logged and answered with one generic 500 message per form, so callers can
// never tell which case occurred.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"leafline-site/internal/domain/entity"
)

// User-facing messages.
const (
	msgInvalidBody     = "Invalid request body"
	msgBodyTooLarge    = "Request body too large"
	msgEmailRequired   = "Email is required"
	msgNameRequired    = "Name is required"
	msgMessageRequired = "Message is required"
	msgSubscribed      = "Successfully subscribed to the newsletter"
	msgSubscribeFailed = "Unable to subscribe. Please try again later."
	msgContactSent     = "Thank you for your message. We'll be in touch soon."
	msgContactFailed   = "Unable to send message. Please try again later."
)

// Outcome labels for metrics.RecordFormSubmission.
const (
	outcomeSuccess    = "success"
	outcomeBadRequest = "bad_request"
	outcomeInvalid    = "invalid"
	outcomeHoneypot   = "honeypot"
	outcomeFailed     = "failed"
)

// Mailer is the use case the handlers delegate to.
type Mailer interface {
	Subscribe(ctx context.Context, req entity.SubscriptionRequest) error
	SendContact(ctx context.Context, req entity.ContactRequest) error
}

// Register mounts the form routes on mux. limit wraps both handlers; pass
// nil to mount them unthrottled.
func Register(mux *http.ServeMux, svc Mailer, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(h http.Handler) http.Handler { return h }
	}
	mux.Handle("POST /newsletter", limit(SubscribeHandler{Svc: svc}))
	mux.Handle("POST /contact", limit(ContactHandler{Svc: svc}))
}

// fields is a decoded JSON object. Values are checked one by one so that a
// wrong type on one field reads as that field missing rather than as a
// malformed body.
type fields map[string]any

// decodeFields reads the request body as a JSON object. The returned message
// is user-facing.
func decodeFields(r *http.Request) (fields, int, string) {
	var f fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, http.StatusRequestEntityTooLarge, msgBodyTooLarge
		}
		return nil, http.StatusBadRequest, msgInvalidBody
	}
	if f == nil {
		return nil, http.StatusBadRequest, msgInvalidBody
	}
	return f, 0, ""
}

// str returns the trimmed value of key when it is a JSON string and "" for
// anything else.
func (f fields) str(key string) string {
	s, _ := f[key].(string)
	return strings.TrimSpace(s)
}

// filled reports whether key holds anything other than null or a blank
// string.
func (f fields) filled(key string) bool {
	v, ok := f[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}
