package form

import (
	"net/http"

	"leafline-site/internal/domain/entity"
	"leafline-site/internal/handler/http/respond"
	"leafline-site/internal/observability/logging"
	"leafline-site/internal/observability/metrics"
)

const (
	formContact = "contact"

	// honeypotField is hidden from people by the page's CSS. Only bots fill it.
	honeypotField = "website"
)

// ContactHandler handles POST /contact with body
// {"name": string, "email": string, "message": string, "website"?: string}.
type ContactHandler struct{ Svc Mailer }

func (h ContactHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, code, msg := decodeFields(r)
	if f == nil {
		metrics.RecordFormSubmission(formContact, outcomeBadRequest)
		respond.Failure(w, code, msg)
		return
	}

	// Bots get the normal success answer so they learn nothing. The field
	// value itself is never logged.
	if f.filled(honeypotField) {
		metrics.RecordFormSubmission(formContact, outcomeHoneypot)
		logging.FromContext(ctx).Info("honeypot triggered")
		respond.Success(w, msgContactSent)
		return
	}

	req := entity.ContactRequest{
		Name:    f.str("name"),
		Email:   entity.NormalizeEmail(f.str("email")),
		Message: f.str("message"),
	}

	if msg, ok := validateContact(req); !ok {
		metrics.RecordFormSubmission(formContact, outcomeInvalid)
		respond.Failure(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.Svc.SendContact(ctx, req); err != nil {
		metrics.RecordFormSubmission(formContact, outcomeFailed)
		respond.AppFailure(ctx, w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, msgContactFailed, err))
		return
	}

	metrics.RecordFormSubmission(formContact, outcomeSuccess)
	respond.Success(w, msgContactSent)
}

// validateContact returns the message for the first failing check.
func validateContact(req entity.ContactRequest) (string, bool) {
	if req.Name == "" {
		return msgNameRequired, false
	}
	if req.Email == "" {
		return msgEmailRequired, false
	}
	if err := entity.ValidateEmail(req.Email); err != nil {
		msg, _ := entity.IsValidation(err)
		return msg, false
	}
	if req.Message == "" {
		return msgMessageRequired, false
	}
	if err := req.Validate(); err != nil {
		if msg, ok := entity.IsValidation(err); ok {
			return msg, false
		}
		return msgInvalidBody, false
	}
	return "", true
}
