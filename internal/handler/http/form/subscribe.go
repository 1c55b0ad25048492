package form

import (
	"log/slog"
	"net/http"

	"leafline-site/internal/domain/entity"
	"leafline-site/internal/handler/http/respond"
	"leafline-site/internal/observability/logging"
	"leafline-site/internal/observability/metrics"
)

const formNewsletter = "newsletter"

// SubscribeHandler handles POST /newsletter with body
// {"email": string, "firstName"?: string}.
type SubscribeHandler struct{ Svc Mailer }

func (h SubscribeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, code, msg := decodeFields(r)
	if f == nil {
		metrics.RecordFormSubmission(formNewsletter, outcomeBadRequest)
		respond.Failure(w, code, msg)
		return
	}

	email := entity.NormalizeEmail(f.str("email"))
	if email == "" {
		metrics.RecordFormSubmission(formNewsletter, outcomeInvalid)
		respond.Failure(w, http.StatusBadRequest, msgEmailRequired)
		return
	}
	if err := entity.ValidateEmail(email); err != nil {
		msg, _ := entity.IsValidation(err)
		metrics.RecordFormSubmission(formNewsletter, outcomeInvalid)
		respond.Failure(w, http.StatusBadRequest, msg)
		return
	}
	if len(email) > entity.MaxEmailLength {
		metrics.RecordFormSubmission(formNewsletter, outcomeInvalid)
		respond.Failure(w, http.StatusBadRequest, "Email is too long")
		return
	}

	req := entity.SubscriptionRequest{
		Email:     email,
		FirstName: f.str("firstName"),
	}

	if err := h.Svc.Subscribe(ctx, req); err != nil {
		metrics.RecordFormSubmission(formNewsletter, outcomeFailed)
		respond.AppFailure(ctx, w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, msgSubscribeFailed, err))
		return
	}

	metrics.RecordFormSubmission(formNewsletter, outcomeSuccess)
	logging.FromContext(ctx).Info("newsletter signup accepted",
		slog.Bool("has_first_name", req.FirstName != ""))
	respond.Success(w, msgSubscribed)
}
