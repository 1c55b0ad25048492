// Package emailprovider implements mail.Provider on top of the Resend HTTP API.
package emailprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leafline-site/internal/handler/http/respond"
	"leafline-site/internal/observability/logging"
	"leafline-site/internal/observability/metrics"
	"leafline-site/internal/observability/tracing"
	"leafline-site/internal/resilience/circuitbreaker"
	"leafline-site/internal/usecase/mail"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Resend API endpoint.
	DefaultBaseURL = "https://api.resend.com"

	// DefaultTimeout bounds one provider call.
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 8 << 10

	// Resend's default quota is 2 requests per second per team.
	providerRate  = rate.Limit(2)
	providerBurst = 2
)

// errContactExists marks a 409 from the contacts endpoint.
var errContactExists = errors.New("contact already exists")

// ResendConfig contains configuration for the Resend client.
type ResendConfig struct {
	// APIKey is the secret "re_..." key sent as a bearer token.
	APIKey string

	// BaseURL overrides DefaultBaseURL (tests, regional endpoints).
	BaseURL string

	// Timeout is the HTTP request timeout for provider calls.
	Timeout time.Duration
}

// ResendClient sends email and manages audience contacts through Resend.
// It is constructed once at startup and shared by all requests.
type ResendClient struct {
	config         ResendConfig
	httpClient     *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewResendClient creates a ResendClient.
//
// The client is initialized with:
//   - HTTP client with configured timeout (DefaultTimeout when zero)
//   - Token bucket matching the provider quota (2 requests/second)
//   - Circuit breaker from circuitbreaker.EmailProviderConfig
//
// Each call makes a single attempt; failures are returned to the caller.
func NewResendClient(config ResendConfig) *ResendClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}

	cbConfig := circuitbreaker.EmailProviderConfig()
	cbConfig.IsSuccessful = countsAsSuccess

	return &ResendClient{
		config:         config,
		httpClient:     &http.Client{Timeout: config.Timeout},
		limiter:        rate.NewLimiter(providerRate, providerBurst),
		circuitBreaker: circuitbreaker.New(cbConfig),
	}
}

// CircuitBreaker exposes the breaker for readiness reporting.
func (c *ResendClient) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

type createContactPayload struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	Unsubscribed bool   `json:"unsubscribed"`
}

type sendEmailPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

type idResponse struct {
	ID string `json:"id"`
}

// resendErrorResponse is the error body Resend returns on non-2xx.
type resendErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

// CreateContact adds in.Email to the audience in.AudienceID.
// A 409 Conflict (contact already exists) is reported as success with an
// empty id so that repeated signups are idempotent.
func (c *ResendClient) CreateContact(ctx context.Context, in mail.ContactInput) (string, error) {
	if in.AudienceID == "" {
		return "", &mail.ConfigurationError{Missing: []string{"RESEND_AUDIENCE_ID"}}
	}
	path := "/audiences/" + url.PathEscape(in.AudienceID) + "/contacts"
	payload := createContactPayload{Email: in.Email, FirstName: in.FirstName}

	id, err := c.call(ctx, "create_contact", path, payload)
	if errors.Is(err, errContactExists) {
		logging.FromContext(ctx).Info("newsletter contact already exists")
		return "", nil
	}
	return id, err
}

// SendEmail sends one message.
func (c *ResendClient) SendEmail(ctx context.Context, in mail.EmailInput) (string, error) {
	payload := sendEmailPayload{
		From:    in.From,
		To:      in.To,
		Subject: in.Subject,
		HTML:    in.HTML,
		Text:    in.Text,
		ReplyTo: in.ReplyTo,
	}
	return c.call(ctx, "send_email", "/emails", payload)
}

// call performs one rate-limited, breaker-guarded POST and records its outcome.
func (c *ResendClient) call(ctx context.Context, operation, path string, payload any) (string, error) {
	providerRequestID := uuid.New().String()
	logger := logging.FromContext(ctx).With(
		slog.String("provider_request_id", providerRequestID),
		slog.String("operation", operation))

	ctx, span := tracing.GetTracer().Start(ctx, "emailprovider."+operation)
	defer span.End()
	span.SetAttributes(attribute.String("provider.request_id", providerRequestID))

	start := time.Now()
	id, err := c.guarded(ctx, path, providerRequestID, payload)
	metrics.RecordProviderRequest(operation, resultLabel(err), time.Since(start))

	if errors.Is(err, errContactExists) {
		return "", err
	}
	if err != nil {
		// Provider messages can echo the recipient address or the key.
		safe := respond.SanitizeError(err)
		span.RecordError(errors.New(safe))
		span.SetStatus(codes.Error, operation+" failed")
		logger.Warn("email provider request failed",
			slog.String("error", safe),
			slog.Duration("duration", time.Since(start)))
		return "", err
	}

	logger.Debug("email provider request succeeded", slog.Duration("duration", time.Since(start)))
	return id, nil
}

func (c *ResendClient) guarded(ctx context.Context, path, providerRequestID string, payload any) (string, error) {
	// Wait fails at once when the context deadline would pass first.
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	id, err := circuitbreaker.Do(c.circuitBreaker, func() (string, error) {
		return c.post(ctx, path, providerRequestID, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("email provider unavailable: %w", err)
	}
	return id, err
}

// post sends the request and classifies the response.
//
// Error types:
//   - 429: *RateLimitError with the advertised retry delay
//   - 4xx (non-429): *ClientError
//   - 5xx: *ServerError
//   - Network error: wrapped transport error
func (c *ResendClient) post(ctx context.Context, path, providerRequestID string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", providerRequestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var out idResponse
		if err := json.Unmarshal(respBody, &out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		return out.ID, nil
	}

	var apiErr resendErrorResponse
	_ = json.Unmarshal(respBody, &apiErr)
	message := apiErr.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", &RateLimitError{
			Message:    "email provider rate limit exceeded",
			RetryAfter: retryAfter(resp),
		}
	case resp.StatusCode == http.StatusConflict && strings.HasSuffix(path, "/contacts"):
		return "", errContactExists
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return "", &ClientError{StatusCode: resp.StatusCode, Name: apiErr.Name, Message: message}
	case resp.StatusCode >= 500:
		return "", &ServerError{StatusCode: resp.StatusCode, Message: message}
	default:
		return "", fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, message)
	}
}

// retryAfter reads the Retry-After header in seconds, defaulting to one second.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return time.Second
}
