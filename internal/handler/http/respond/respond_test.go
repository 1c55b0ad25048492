package respond

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leafline-site/internal/observability/logging"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name         string
		code         int
		data         any
		expectedBody string
	}{
		{name: "map", code: http.StatusOK, data: map[string]string{"message": "ok"}, expectedBody: `{"message":"ok"}`},
		{name: "struct", code: http.StatusCreated, data: struct{ ID int }{ID: 7}, expectedBody: `{"ID":7}`},
		{name: "nil body", code: http.StatusNoContent, data: nil, expectedBody: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSON(w, tt.code, tt.data)

			if w.Code != tt.code {
				t.Errorf("Code = %v, want %v", w.Code, tt.code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %v, want application/json", ct)
			}
			if body := strings.TrimSpace(w.Body.String()); body != tt.expectedBody {
				t.Errorf("Body = %v, want %v", body, tt.expectedBody)
			}
		})
	}
}

func TestJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, make(chan int))

	if w.Code != http.StatusOK {
		t.Errorf("Code = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestSuccessAndFailure(t *testing.T) {
	w := httptest.NewRecorder()
	Success(w, "Successfully subscribed to the newsletter")
	if got := strings.TrimSpace(w.Body.String()); got != `{"success":true,"message":"Successfully subscribed to the newsletter"}` {
		t.Errorf("Success body = %s", got)
	}

	w = httptest.NewRecorder()
	Failure(w, http.StatusBadRequest, "Email is required")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Failure code = %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"success":false,"error":"Email is required"}` {
		t.Errorf("Failure body = %s", got)
	}
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		err       error
		wantError string
	}{
		{name: "validation message passes", code: http.StatusBadRequest, err: errors.New("limit must be between 1 and 50"), wantError: "limit must be between 1 and 50"},
		{name: "rate limit passes", code: http.StatusTooManyRequests, err: errors.New("rate limit exceeded"), wantError: "rate limit exceeded"},
		{name: "unknown 4xx is hidden", code: http.StatusBadRequest, err: errors.New("dial tcp 10.0.0.3:443: refused"), wantError: "Bad Request"},
		{name: "5xx always hidden", code: http.StatusInternalServerError, err: errors.New("invalid api key re_abcdef123"), wantError: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SafeError(w, tt.code, tt.err)

			if w.Code != tt.code {
				t.Errorf("Code = %d, want %d", w.Code, tt.code)
			}
			body := decodeEnvelope(t, w)
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %v, want %v", body["error"], tt.wantError)
			}
		})
	}
}

func TestSafeError_NilError(t *testing.T) {
	w := httptest.NewRecorder()
	SafeError(w, http.StatusInternalServerError, nil)

	if w.Body.Len() != 0 {
		t.Errorf("expected no body for nil error, got %q", w.Body.String())
	}
}

func TestAppError(t *testing.T) {
	cause := errors.New("provider 503")
	appErr := NewAppError(http.StatusInternalServerError, "Unable to subscribe. Please try again later.", cause)

	if appErr.Error() != "provider 503" {
		t.Errorf("Error() = %q, want cause text", appErr.Error())
	}
	if !errors.Is(appErr, cause) {
		t.Error("AppError should unwrap to its cause")
	}
	if (&AppError{UserMsg: "only user text"}).Error() != "only user text" {
		t.Error("AppError without cause should report the user message")
	}
}

func TestAppFailure(t *testing.T) {
	var logs bytes.Buffer
	ctx := logging.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&logs, nil)))

	w := httptest.NewRecorder()
	err := NewAppError(http.StatusInternalServerError, "Unable to send message. Please try again later.",
		errors.New("send contact email: email provider rejected request (401): bad key re_secret_999 for grace@example.com"))
	AppFailure(ctx, w, http.StatusInternalServerError, err)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Code = %d, want 500", w.Code)
	}
	body := decodeEnvelope(t, w)
	if body["error"] != "Unable to send message. Please try again later." {
		t.Errorf("error = %v", body["error"])
	}
	if strings.Contains(w.Body.String(), "401") {
		t.Error("provider detail leaked into the response")
	}

	logged := logs.String()
	if !strings.Contains(logged, "re_****") || strings.Contains(logged, "re_secret_999") {
		t.Errorf("api key not masked in log: %s", logged)
	}
	if strings.Contains(logged, "grace@example.com") {
		t.Errorf("visitor address not masked in log: %s", logged)
	}
}

func TestAppFailure_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	AppFailure(context.Background(), w, http.StatusBadRequest, errors.New("Email is required"))

	body := decodeEnvelope(t, w)
	if body["error"] != "Email is required" {
		t.Errorf("error = %v", body["error"])
	}
}
