// Package respond writes JSON responses for the site's HTTP handlers.
//
// Form endpoints answer with an envelope: {"success":true,"message":...} on
// success and {"success":false,"error":...} on failure. Internal causes are
// logged with SanitizeError and never written to the client.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"leafline-site/internal/observability/logging"
)

// Envelope is the body of every form response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Success writes 200 with a success envelope.
func Success(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message})
}

// Failure writes code with a failure envelope carrying a user-facing message.
func Failure(w http.ResponseWriter, code int, message string) {
	JSON(w, code, Envelope{Success: false, Error: message})
}

// SafeError writes err as a failure envelope when its message is known to be
// user-facing (validation wording, 4xx only). Anything else is logged and
// replaced with a generic message.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	msg := err.Error()
	if code < 500 && isUserFacing(msg) {
		Failure(w, code, msg)
		return
	}

	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	Failure(w, code, http.StatusText(code))
}

var userFacingPhrases = []string{
	"required",
	"invalid",
	"too long",
	"must be",
	"rate limit",
	"too many",
}

func isUserFacing(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range userFacingPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// AppError pairs the message shown to the visitor with the internal cause.
type AppError struct {
	UserMsg string // Message to display to users
	Err     error  // Internal error (logged for debugging)
	Code    int    // HTTP status code
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// AppFailure writes err as a failure envelope. An *AppError contributes its
// code and user message and has its cause logged with the request's logger;
// any other error goes through SafeError with code.
func AppFailure(ctx context.Context, w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			level := slog.LevelWarn
			if appErr.Code >= 500 {
				level = slog.LevelError
			}
			logging.FromContext(ctx).Log(ctx, level, "request failed",
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		Failure(w, appErr.Code, appErr.UserMsg)
		return
	}

	SafeError(w, code, err)
}
