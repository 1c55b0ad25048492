package form_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leafline-site/internal/domain/entity"
	"leafline-site/internal/handler/http/form"
	"leafline-site/internal/handler/http/respond"
	"leafline-site/internal/infra/emailprovider"
	"leafline-site/internal/observability/metrics"
	"leafline-site/internal/usecase/mail"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMailer struct {
	subscribeErr error
	contactErr   error

	subscribed []entity.SubscriptionRequest
	contacted  []entity.ContactRequest
}

func (s *stubMailer) Subscribe(_ context.Context, req entity.SubscriptionRequest) error {
	s.subscribed = append(s.subscribed, req)
	return s.subscribeErr
}

func (s *stubMailer) SendContact(_ context.Context, req entity.ContactRequest) error {
	s.contacted = append(s.contacted, req)
	return s.contactErr
}

func post(t *testing.T, h http.Handler, path, body string) (int, respond.Envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env respond.Envelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env), "body must always be a JSON envelope")
	return rr.Code, env
}

func TestSubscribeHandler_Success(t *testing.T) {
	stub := &stubMailer{}
	code, env := post(t, form.SubscribeHandler{Svc: stub}, "/newsletter",
		`{"email":"  USER@Example.COM ","firstName":"  Ada "}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, respond.Envelope{Success: true, Message: "Successfully subscribed to the newsletter"}, env)
	require.Len(t, stub.subscribed, 1)
	assert.Equal(t, entity.SubscriptionRequest{Email: "user@example.com", FirstName: "Ada"}, stub.subscribed[0])
}

func TestSubscribeHandler_FirstNameIgnoredWhenNotString(t *testing.T) {
	stub := &stubMailer{}
	code, _ := post(t, form.SubscribeHandler{Svc: stub}, "/newsletter",
		`{"email":"a@b.co","firstName":42}`)

	assert.Equal(t, http.StatusOK, code)
	require.Len(t, stub.subscribed, 1)
	assert.Empty(t, stub.subscribed[0].FirstName)
}

func TestSubscribeHandler_BadInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: `{"email":`, wantErr: "Invalid request body"},
		{name: "json null", body: `null`, wantErr: "Invalid request body"},
		{name: "json array", body: `["a@b.co"]`, wantErr: "Invalid request body"},
		{name: "empty object", body: `{}`, wantErr: "Email is required"},
		{name: "blank email", body: `{"email":"   "}`, wantErr: "Email is required"},
		{name: "email not a string", body: `{"email":123}`, wantErr: "Email is required"},
		{name: "no at sign", body: `{"email":"user.example.com"}`, wantErr: "Invalid email format"},
		{name: "no dot in domain", body: `{"email":"user@example"}`, wantErr: "Invalid email format"},
		{name: "embedded space", body: `{"email":"us er@example.com"}`, wantErr: "Invalid email format"},
		{name: "too long", body: `{"email":"` + strings.Repeat("a", 250) + `@b.co"}`, wantErr: "Email is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubMailer{}
			code, env := post(t, form.SubscribeHandler{Svc: stub}, "/newsletter", tt.body)

			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error)
			assert.Empty(t, stub.subscribed, "provider must not be called")
		})
	}
}

func TestSubscribeHandler_ProviderFailureIsGeneric(t *testing.T) {
	providerErr := errors.New(`resend: 422 validation_error: API key re_live_abc123xyz is invalid for audience 7f3a`)
	stub := &stubMailer{subscribeErr: providerErr}

	code, env := post(t, form.SubscribeHandler{Svc: stub}, "/newsletter", `{"email":"a@b.co"}`)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, respond.Envelope{Success: false, Error: "Unable to subscribe. Please try again later."}, env)
	assert.NotContains(t, env.Error, "re_live")
	assert.NotContains(t, env.Error, "validation_error")
}

func TestSubscribeHandler_BodyTooLarge(t *testing.T) {
	stub := &stubMailer{}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		form.SubscribeHandler{Svc: stub}.ServeHTTP(w, r)
	})

	code, env := post(t, h, "/newsletter", `{"email":"`+strings.Repeat("a", 64)+`@b.co"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	assert.Equal(t, "Request body too large", env.Error)
	assert.Empty(t, stub.subscribed)
}

func TestContactHandler_Success(t *testing.T) {
	stub := &stubMailer{}
	code, env := post(t, form.ContactHandler{Svc: stub}, "/contact",
		`{"name":" Ada ","email":"Ada@Example.com","message":"  Hello there\nSecond line  "}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, respond.Envelope{Success: true, Message: "Thank you for your message. We'll be in touch soon."}, env)
	require.Len(t, stub.contacted, 1)
	assert.Equal(t, entity.ContactRequest{
		Name:    "Ada",
		Email:   "ada@example.com",
		Message: "Hello there\nSecond line",
	}, stub.contacted[0])
}

func TestContactHandler_Honeypot(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantSkipped bool
	}{
		{
			name:        "filled honeypot",
			body:        `{"name":"A","email":"a@b.com","message":"hi","website":"spam"}`,
			wantSkipped: true,
		},
		{
			name:        "honeypot checked before validation",
			body:        `{"website":"http://spam.example"}`,
			wantSkipped: true,
		},
		{
			name:        "non-string honeypot",
			body:        `{"name":"A","email":"a@b.com","message":"hi","website":true}`,
			wantSkipped: true,
		},
		{
			name: "blank honeypot",
			body: `{"name":"A","email":"a@b.com","message":"hi","website":"   "}`,
		},
		{
			name: "null honeypot",
			body: `{"name":"A","email":"a@b.com","message":"hi","website":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubMailer{}
			code, env := post(t, form.ContactHandler{Svc: stub}, "/contact", tt.body)

			assert.Equal(t, http.StatusOK, code)
			assert.True(t, env.Success)
			if tt.wantSkipped {
				assert.Empty(t, stub.contacted, "send must not be invoked")
			} else {
				assert.Len(t, stub.contacted, 1)
			}
		})
	}
}

func TestContactHandler_HoneypotMetric(t *testing.T) {
	counter := metrics.FormSubmissionsTotal.WithLabelValues("contact", "honeypot")
	before := testutil.ToFloat64(counter)

	post(t, form.ContactHandler{Svc: &stubMailer{}}, "/contact", `{"website":"x"}`)

	assert.Equal(t, 1.0, testutil.ToFloat64(counter)-before)
}

func TestContactHandler_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "malformed json", body: `not json`, wantErr: "Invalid request body"},
		{name: "missing name", body: `{"email":"a@b.com","message":"hi"}`, wantErr: "Name is required"},
		{name: "blank name", body: `{"name":"  ","email":"a@b.com","message":"hi"}`, wantErr: "Name is required"},
		{name: "missing email", body: `{"name":"A","message":"hi"}`, wantErr: "Email is required"},
		{name: "malformed email", body: `{"name":"A","email":"a@b","message":"hi"}`, wantErr: "Invalid email format"},
		{name: "missing message", body: `{"name":"A","email":"a@b.com"}`, wantErr: "Message is required"},
		{name: "blank message", body: `{"name":"A","email":"a@b.com","message":"\n\t "}`, wantErr: "Message is required"},
		{
			name:    "name too long",
			body:    `{"name":"` + strings.Repeat("n", 201) + `","email":"a@b.com","message":"hi"}`,
			wantErr: "Name is too long",
		},
		{
			name:    "message too long",
			body:    `{"name":"A","email":"a@b.com","message":"` + strings.Repeat("m", 5001) + `"}`,
			wantErr: "Message is too long",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubMailer{}
			code, env := post(t, form.ContactHandler{Svc: stub}, "/contact", tt.body)

			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error)
			assert.Empty(t, stub.contacted)
		})
	}
}

func TestContactHandler_ProviderFailureIsGeneric(t *testing.T) {
	stub := &stubMailer{contactErr: errors.New("resend: 500 internal_server_error: upstream smtp refused")}

	code, env := post(t, form.ContactHandler{Svc: stub}, "/contact",
		`{"name":"A","email":"a@b.com","message":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Unable to send message. Please try again later.", env.Error)
	assert.NotContains(t, env.Error, "smtp")
}

// Missing configuration must look exactly like a runtime provider failure.
func TestHandlers_UnconfiguredProvider(t *testing.T) {
	svc := mail.NewService(emailprovider.NewUnconfigured([]string{"RESEND_API_KEY"}), mail.Settings{
		From:       "Leafline <hello@leafline.test>",
		AudienceID: "aud_123",
		Recipient:  "owner@leafline.test",
	})

	code, env := post(t, form.SubscribeHandler{Svc: svc}, "/newsletter", `{"email":"a@b.co"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Unable to subscribe. Please try again later.", env.Error)
	assert.NotContains(t, env.Error, "RESEND_API_KEY")

	code, env = post(t, form.ContactHandler{Svc: svc}, "/contact", `{"name":"A","email":"a@b.com","message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Unable to send message. Please try again later.", env.Error)
	assert.NotContains(t, env.Error, "configured")
}

func TestRegister(t *testing.T) {
	stub := &stubMailer{}
	mux := http.NewServeMux()

	limited := 0
	form.Register(mux, stub, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited++
			next.ServeHTTP(w, r)
		})
	})

	code, _ := post(t, mux, "/newsletter", `{"email":"a@b.co"}`)
	assert.Equal(t, http.StatusOK, code)
	code, _ = post(t, mux, "/contact", `{"name":"A","email":"a@b.com","message":"hi"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, limited)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/contact", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
