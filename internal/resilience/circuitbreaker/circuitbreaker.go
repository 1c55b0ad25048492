// Package circuitbreaker guards calls to the feed host and the email
// provider with github.com/sony/gobreaker.
package circuitbreaker

import (
	"log/slog"
	"time"

	"leafline-site/internal/observability/metrics"

	"github.com/sony/gobreaker"
)

// Config describes one breaker.
type Config struct {
	// Name labels logs, metrics and health checks.
	Name string

	// MaxRequests is how many probes a half-open breaker lets through.
	MaxRequests uint32

	// Interval clears the closed-state counts; Timeout is how long the
	// breaker stays open before probing.
	Interval time.Duration
	Timeout  time.Duration

	// The breaker trips once at least MinRequests calls were counted and the
	// failure ratio reaches FailureThreshold.
	FailureThreshold float64
	MinRequests      uint32

	// IsSuccessful decides whether a returned error still counts as a healthy
	// dependency (e.g. the provider rejecting an address). Nil means every
	// error is a failure.
	IsSuccessful func(err error) bool
}

// DefaultConfig returns moderate settings under the given name.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// FeedFetchConfig is used for the publishing platform's feed. Page renders
// keep arriving while it is down, so the breaker probes again after 30s.
func FeedFetchConfig() Config {
	return Config{
		Name:             "feed-fetch",
		MaxRequests:      2,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      5,
	}
}

// EmailProviderConfig is used for the transactional email provider. Form
// traffic is sparse, so fewer calls are needed before tripping.
func EmailProviderConfig() Config {
	return Config{
		Name:             "email-provider",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// CircuitBreaker is a named gobreaker breaker whose state changes are logged
// and exported as the circuit_breaker_state gauge.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordCircuitBreakerState(name, int(to))
		},
	})
	metrics.RecordCircuitBreakerState(cfg.Name, int(gobreaker.StateClosed))

	return &CircuitBreaker{breaker: cb, name: cfg.Name}
}

// Do runs fn through cb. An open breaker returns gobreaker.ErrOpenState
// without calling fn.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	res, err := cb.breaker.Execute(func() (any, error) {
		return fn()
	})
	v, _ := res.(T)
	return v, err
}

func (cb *CircuitBreaker) Name() string { return cb.name }

func (cb *CircuitBreaker) State() gobreaker.State { return cb.breaker.State() }

func (cb *CircuitBreaker) IsOpen() bool { return cb.State() == gobreaker.StateOpen }

// ConsecutiveFailures reports the current run of failed calls.
func (cb *CircuitBreaker) ConsecutiveFailures() uint32 {
	return cb.breaker.Counts().ConsecutiveFailures
}
