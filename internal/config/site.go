// Package config loads the runtime configuration of the site backend from
// environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	envconfig "leafline-site/pkg/config"

	"gopkg.in/yaml.v3"
)

// Defaults applied before the YAML file and environment are read.
const (
	DefaultHTTPAddr        = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultBodyLimit       = 64 << 10
	DefaultFeedBaseURL     = "https://medium.com"
	DefaultMaxPosts        = 10
	MaxPostsLimit          = 50
	DefaultFeedTimeout     = 8 * time.Second
	DefaultEmailTimeout    = 10 * time.Second
	DefaultFormRateLimit   = 5
	DefaultFormRateWindow  = time.Minute
)

// SiteConfig is the complete runtime configuration.
type SiteConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	Feed FeedConfig `yaml:"feed"`
	Mail MailConfig `yaml:"mail"`
	CSP  CSPConfig  `yaml:"csp"`
}

// HTTPConfig configures the listener and form protection.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	BodyLimit       int64         `yaml:"body_limit"`
	// FormRateLimit is the number of form posts one client may make per FormRateWindow.
	FormRateLimit  int           `yaml:"form_rate_limit"`
	FormRateWindow time.Duration `yaml:"form_rate_window"`
	// TrustProxyHeaders makes the rate limiter key on X-Forwarded-For.
	// Enable only behind a proxy that overwrites the header.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`
}

// FeedConfig configures post ingestion.
type FeedConfig struct {
	Handle   string        `yaml:"handle"`
	BaseURL  string        `yaml:"base_url"`
	MaxPosts int           `yaml:"max_posts"`
	Timeout  time.Duration `yaml:"timeout"`
	// CacheTTL enables the posts cache when positive.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// WarmSchedule is a cron expression refreshing the cache; empty disables it.
	WarmSchedule string `yaml:"warm_schedule"`
	WarmTimezone string `yaml:"warm_timezone"`
}

// MailConfig configures the email provider. APIKey is only read from the
// environment.
type MailConfig struct {
	APIKey     string        `yaml:"-"`
	BaseURL    string        `yaml:"base_url"`
	From       string        `yaml:"from"`
	AudienceID string        `yaml:"audience_id"`
	Recipient  string        `yaml:"contact_recipient"`
	Timeout    time.Duration `yaml:"timeout"`
}

// CSPConfig configures Content-Security-Policy headers.
type CSPConfig struct {
	Enabled    bool `yaml:"enabled"`
	ReportOnly bool `yaml:"report_only"`
}

// Missing lists the environment keys the email provider needs but that are
// unset. Forms keep answering while keys are missing; submissions fail with a
// configuration error that is logged server-side.
func (m MailConfig) Missing() []string {
	var missing []string
	if m.APIKey == "" {
		missing = append(missing, "RESEND_API_KEY")
	}
	if m.From == "" {
		missing = append(missing, "EMAIL_FROM")
	}
	if m.AudienceID == "" {
		missing = append(missing, "RESEND_AUDIENCE_ID")
	}
	if m.Recipient == "" {
		missing = append(missing, "CONTACT_RECIPIENT")
	}
	return missing
}

// Default returns the configuration used when nothing is set.
func Default() SiteConfig {
	return SiteConfig{
		HTTP: HTTPConfig{
			Addr:            DefaultHTTPAddr,
			ShutdownTimeout: DefaultShutdownTimeout,
			BodyLimit:       DefaultBodyLimit,
			FormRateLimit:   DefaultFormRateLimit,
			FormRateWindow:  DefaultFormRateWindow,
		},
		Feed: FeedConfig{
			BaseURL:  DefaultFeedBaseURL,
			MaxPosts: DefaultMaxPosts,
			Timeout:  DefaultFeedTimeout,
		},
		Mail: MailConfig{
			Timeout: DefaultEmailTimeout,
		},
		CSP: CSPConfig{Enabled: true},
	}
}

// LoadSiteConfig builds the configuration in three layers: defaults, the
// YAML file named by SITE_CONFIG_FILE (if any), then environment variables.
// The result is validated.
func LoadSiteConfig() (*SiteConfig, error) {
	cfg := Default()

	if path := envconfig.GetEnvString("SITE_CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFile overlays the YAML file at path onto c.
// The path comes from the deployment environment, not from user input.
func (c *SiteConfig) loadFile(path string) error {
	// #nosec G304 -- path is set by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *SiteConfig) applyEnv() {
	c.HTTP.Addr = envconfig.GetEnvString("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.ShutdownTimeout = envconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", c.HTTP.ShutdownTimeout)
	c.HTTP.FormRateLimit = envconfig.GetEnvInt("FORM_RATE_LIMIT", c.HTTP.FormRateLimit)
	c.HTTP.FormRateWindow = envconfig.GetEnvDuration("FORM_RATE_WINDOW", c.HTTP.FormRateWindow)
	c.HTTP.TrustProxyHeaders = envconfig.GetEnvBool("TRUST_PROXY_HEADERS", c.HTTP.TrustProxyHeaders)

	c.Feed.Handle = envconfig.GetEnvString("FEED_HANDLE", c.Feed.Handle)
	c.Feed.BaseURL = envconfig.GetEnvString("FEED_BASE_URL", c.Feed.BaseURL)
	c.Feed.MaxPosts = envconfig.GetEnvInt("FEED_MAX_POSTS", c.Feed.MaxPosts)
	c.Feed.Timeout = envconfig.GetEnvDuration("FEED_TIMEOUT", c.Feed.Timeout)
	c.Feed.CacheTTL = envconfig.GetEnvDuration("POSTS_CACHE_TTL", c.Feed.CacheTTL)
	c.Feed.WarmSchedule = envconfig.GetEnvString("POSTS_WARM_SCHEDULE", c.Feed.WarmSchedule)
	c.Feed.WarmTimezone = envconfig.GetEnvString("POSTS_WARM_TIMEZONE", c.Feed.WarmTimezone)

	c.Mail.APIKey = envconfig.GetEnvString("RESEND_API_KEY", c.Mail.APIKey)
	c.Mail.BaseURL = envconfig.GetEnvString("RESEND_BASE_URL", c.Mail.BaseURL)
	c.Mail.From = envconfig.GetEnvString("EMAIL_FROM", c.Mail.From)
	c.Mail.AudienceID = envconfig.GetEnvString("RESEND_AUDIENCE_ID", c.Mail.AudienceID)
	c.Mail.Recipient = envconfig.GetEnvString("CONTACT_RECIPIENT", c.Mail.Recipient)
	c.Mail.Timeout = envconfig.GetEnvDuration("EMAIL_TIMEOUT", c.Mail.Timeout)

	c.CSP.Enabled = envconfig.GetEnvBool("CSP_ENABLED", c.CSP.Enabled)
	c.CSP.ReportOnly = envconfig.GetEnvBool("CSP_REPORT_ONLY", c.CSP.ReportOnly)
}

// Validate checks every setting and reports all problems at once.
// Missing email provider keys are not an error here; see MailConfig.Missing.
func (c *SiteConfig) Validate() error {
	var errs []error

	if c.Feed.Handle == "" {
		errs = append(errs, errors.New("FEED_HANDLE is required"))
	}
	if err := envconfig.ValidateBaseURL(c.Feed.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("FEED_BASE_URL: %w", err))
	}
	if err := envconfig.ValidateIntRange(c.Feed.MaxPosts, 1, MaxPostsLimit); err != nil {
		errs = append(errs, fmt.Errorf("FEED_MAX_POSTS: %w", err))
	}
	if err := envconfig.ValidateDuration(c.Feed.Timeout, 100*time.Millisecond, time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("FEED_TIMEOUT: %w", err))
	}
	if c.Feed.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("POSTS_CACHE_TTL: must not be negative, got %v", c.Feed.CacheTTL))
	}
	if c.Feed.WarmSchedule != "" {
		if err := envconfig.ValidateCronSchedule(c.Feed.WarmSchedule); err != nil {
			errs = append(errs, fmt.Errorf("POSTS_WARM_SCHEDULE: %w", err))
		}
		if c.Feed.CacheTTL == 0 {
			errs = append(errs, errors.New("POSTS_WARM_SCHEDULE requires POSTS_CACHE_TTL"))
		}
	}
	if c.Feed.WarmTimezone != "" {
		if err := envconfig.ValidateTimezone(c.Feed.WarmTimezone); err != nil {
			errs = append(errs, fmt.Errorf("POSTS_WARM_TIMEZONE: %w", err))
		}
	}
	if c.Mail.BaseURL != "" {
		if err := envconfig.ValidateBaseURL(c.Mail.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("RESEND_BASE_URL: %w", err))
		}
	}
	if err := envconfig.ValidateDuration(c.Mail.Timeout, 100*time.Millisecond, time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("EMAIL_TIMEOUT: %w", err))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if c.HTTP.FormRateLimit < 1 {
		errs = append(errs, fmt.Errorf("FORM_RATE_LIMIT: must be at least 1, got %d", c.HTTP.FormRateLimit))
	}
	if c.HTTP.FormRateWindow <= 0 {
		errs = append(errs, fmt.Errorf("FORM_RATE_WINDOW: must be positive, got %v", c.HTTP.FormRateWindow))
	}
	if c.HTTP.BodyLimit <= 0 {
		errs = append(errs, fmt.Errorf("body_limit: must be positive, got %d", c.HTTP.BodyLimit))
	}

	return errors.Join(errs...)
}

// WarmLocation returns the time zone used to evaluate WarmSchedule.
func (f FeedConfig) WarmLocation() *time.Location {
	if f.WarmTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(f.WarmTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
