package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"leafline-site/internal/config"
	hhttp "leafline-site/internal/handler/http"
	"leafline-site/internal/handler/http/form"
	hposts "leafline-site/internal/handler/http/posts"
	"leafline-site/internal/handler/http/requestid"
	"leafline-site/internal/infra/emailprovider"
	"leafline-site/internal/infra/feedclient"
	"leafline-site/internal/observability/tracing"
	"leafline-site/internal/resilience/circuitbreaker"
	"leafline-site/internal/usecase/mail"
	postsUC "leafline-site/internal/usecase/posts"
	envconfig "leafline-site/pkg/config"
	"leafline-site/pkg/security/csp"

	"github.com/robfig/cron/v3"
)

// ServerComponents holds what runServer needs to start and stop.
type ServerComponents struct {
	Handler http.Handler

	// Warmer refreshes the posts cache on a schedule; nil when disabled.
	Warmer *cron.Cron
}

// setupServer wires clients, use cases and handlers from cfg.
func setupServer(logger *slog.Logger, cfg *config.SiteConfig, version string) (*ServerComponents, error) {
	var breakers []*circuitbreaker.CircuitBreaker

	feed := feedclient.New(&http.Client{Timeout: cfg.Feed.Timeout})
	breakers = append(breakers, feed.CircuitBreaker())

	var fetcher postsUC.Fetcher = postsUC.NewService(feed, cfg.Feed.BaseURL)
	var warmer *cron.Cron
	if cfg.Feed.CacheTTL > 0 {
		cached := postsUC.NewCachedService(fetcher, cfg.Feed.CacheTTL)
		fetcher = cached
		logger.Info("posts cache enabled", slog.Duration("ttl", cfg.Feed.CacheTTL))

		if cfg.Feed.WarmSchedule != "" {
			w, err := newWarmer(logger, cfg.Feed, cached)
			if err != nil {
				return nil, err
			}
			warmer = w
		}
	}

	mailer := mail.NewService(newProvider(logger, cfg.Mail, &breakers), mail.Settings{
		From:       cfg.Mail.From,
		AudienceID: cfg.Mail.AudienceID,
		Recipient:  cfg.Mail.Recipient,
	})

	mux := setupRoutes(cfg, version, fetcher, mailer, breakers)
	return &ServerComponents{
		Handler: applyMiddleware(logger, cfg, mux),
		Warmer:  warmer,
	}, nil
}

// newProvider returns the Resend client, or a stand-in that fails every call
// when settings are missing so the rest of the site still starts.
func newProvider(logger *slog.Logger, cfg config.MailConfig, breakers *[]*circuitbreaker.CircuitBreaker) mail.Provider {
	if missing := cfg.Missing(); len(missing) > 0 {
		logger.Warn("email provider not configured; form submissions will fail",
			slog.Any("missing", missing))
		return emailprovider.NewUnconfigured(missing)
	}

	client := emailprovider.NewResendClient(emailprovider.ResendConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	*breakers = append(*breakers, client.CircuitBreaker())
	return client
}

// newWarmer schedules cache refreshes for the key page renders use.
func newWarmer(logger *slog.Logger, cfg config.FeedConfig, cached *postsUC.CachedService) (*cron.Cron, error) {
	schedule, err := envconfig.ParseCronSchedule(cfg.WarmSchedule)
	if err != nil {
		return nil, err
	}

	c := cron.New(cron.WithLocation(cfg.WarmLocation()))
	c.Schedule(schedule, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Timeout)
		defer cancel()

		start := time.Now()
		if err := cached.Warm(ctx, cfg.Handle, cfg.MaxPosts); err != nil {
			// Warm already logged the cause.
			return
		}
		logger.Debug("posts cache warmed", slog.Duration("duration", time.Since(start)))
	}))
	return c, nil
}

// setupRoutes registers every route on one mux.
func setupRoutes(
	cfg *config.SiteConfig,
	version string,
	fetcher postsUC.Fetcher,
	mailer form.Mailer,
	breakers []*circuitbreaker.CircuitBreaker,
) *http.ServeMux {
	mux := http.NewServeMux()

	hposts.Register(mux, fetcher, cfg.Feed.Handle, cfg.Feed.MaxPosts)

	// Each form post triggers a provider call, so forms are throttled per client.
	formLimiter := hhttp.NewRateLimiter(cfg.HTTP.FormRateLimit, cfg.HTTP.FormRateWindow,
		hhttp.WithTrustedProxyHeaders(cfg.HTTP.TrustProxyHeaders))
	form.Register(mux, mailer, formLimiter.Limit)

	mux.Handle("GET /health", &hhttp.HealthHandler{
		Version:       version,
		Breakers:      breakers,
		MailMissing:   cfg.Mail.Missing(),
		CSPEnabled:    cfg.CSP.Enabled,
		CSPReportOnly: cfg.CSP.ReportOnly,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Breakers: breakers})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return mux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order, outermost first: request ID, recovery, logging, body limit, CSP,
// tracing, metrics. Metrics sits directly on the mux so it sees the matched
// route pattern.
func applyMiddleware(logger *slog.Logger, cfg *config.SiteConfig, handler http.Handler) http.Handler {
	if cfg.CSP.Enabled {
		logger.Info("CSP enabled", slog.Bool("report_only", cfg.CSP.ReportOnly))
	} else {
		logger.Warn("CSP is disabled")
	}

	chain := handler

	// Apply in reverse order (innermost to outermost)
	chain = hhttp.MetricsMiddleware(chain)
	chain = tracing.Middleware(chain)
	chain = hhttp.CSP(hhttp.CSPConfig{
		Enabled:    cfg.CSP.Enabled,
		ReportOnly: cfg.CSP.ReportOnly,
		Policy:     csp.SitePolicy(),
	})(chain)
	chain = hhttp.LimitRequestBody(cfg.HTTP.BodyLimit)(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)

	return chain
}
