package posts

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"leafline-site/internal/domain/entity"
	"leafline-site/internal/observability/metrics"
	"leafline-site/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultMaxPosts is used when the caller passes a non-positive bound.
	DefaultMaxPosts = 10

	// DefaultBaseURL is the publishing platform hosting the feed.
	DefaultBaseURL = "https://medium.com"
)

// Skip reasons recorded for entries that do not become summaries.
const (
	skipMissingField = "missing_field"
	skipInvalidDate  = "invalid_date"
	skipEmptyExcerpt = "empty_excerpt"
)

// FeedEntry is one raw item of the feed as read from the XML document.
// PublishedAt is nil when PubDate could not be parsed.
type FeedEntry struct {
	Title        string
	Link         string
	GUID         string
	PubDate      string
	PublishedAt  *time.Time
	Description  string
	Categories   []string
	ThumbnailURL string
}

// FeedSource retrieves the raw entries of a feed in document order.
// Implementations should return *FetchError or *ParseError on failure.
type FeedSource interface {
	Entries(ctx context.Context, feedURL string) ([]FeedEntry, error)
}

// Fetcher is the capability consumed by the rendering layer.
type Fetcher interface {
	FetchPosts(ctx context.Context, accountHandle string, maxPosts int) ([]entity.PostSummary, error)
}

// Service fetches a feed and normalizes its entries into post summaries.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	Source  FeedSource
	BaseURL string
}

// NewService creates a Service reading feeds hosted under baseURL.
// An empty baseURL falls back to DefaultBaseURL.
func NewService(source FeedSource, baseURL string) *Service {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Service{Source: source, BaseURL: strings.TrimRight(baseURL, "/")}
}

// NormalizeHandle trims the account handle and ensures it carries exactly
// one leading "@".
func NormalizeHandle(accountHandle string) (string, error) {
	h := strings.TrimLeft(strings.TrimSpace(accountHandle), "@")
	if h == "" {
		return "", &entity.ValidationError{Field: "accountHandle", Message: "account handle is required"}
	}
	return "@" + h, nil
}

// FeedURL returns the feed location for a normalized handle.
func (s *Service) FeedURL(handle string) string {
	return s.BaseURL + "/feed/@" + url.PathEscape(strings.TrimPrefix(handle, "@"))
}

// FetchPosts returns at most maxPosts summaries in feed order.
//
// Entries lacking a title, link, guid, date or description, entries whose
// date does not parse, and entries whose description sanitizes to nothing
// are skipped without error. An empty feed yields an empty slice.
//
// Errors:
//   - *FetchError: transport failure or non-2xx response
//   - *ParseError: malformed feed body
//   - *entity.ValidationError: blank account handle
func (s *Service) FetchPosts(ctx context.Context, accountHandle string, maxPosts int) ([]entity.PostSummary, error) {
	handle, err := NormalizeHandle(accountHandle)
	if err != nil {
		return nil, err
	}
	if maxPosts <= 0 {
		maxPosts = DefaultMaxPosts
	}
	feedURL := s.FeedURL(handle)

	ctx, span := tracing.GetTracer().Start(ctx, "posts.FetchPosts")
	defer span.End()
	span.SetAttributes(
		attribute.String("feed.url", feedURL),
		attribute.Int("feed.max_posts", maxPosts),
	)

	start := time.Now()
	entries, err := s.Source.Entries(ctx, feedURL)
	if err != nil {
		err = classify(feedURL, err)
		metrics.RecordFeedFetch(errorKind(err), time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "feed fetch failed")
		return nil, err
	}
	metrics.RecordFeedFetch("success", time.Since(start))

	summaries := make([]entity.PostSummary, 0, min(maxPosts, len(entries)))
	for i := range entries {
		if len(summaries) == maxPosts {
			break
		}
		summary, reason := buildSummary(&entries[i])
		if reason != "" {
			metrics.RecordFeedEntrySkipped(reason)
			slog.Debug("feed entry skipped",
				slog.String("feed_url", feedURL),
				slog.Int("position", i),
				slog.String("reason", reason))
			continue
		}
		summaries = append(summaries, summary)
	}

	metrics.RecordPostsServed(len(summaries))
	span.SetAttributes(
		attribute.Int("feed.entries", len(entries)),
		attribute.Int("feed.posts", len(summaries)),
	)
	return summaries, nil
}

// buildSummary validates one entry. A non-empty reason means the entry is skipped.
func buildSummary(e *FeedEntry) (entity.PostSummary, string) {
	title := strings.TrimSpace(e.Title)
	link := strings.TrimSpace(e.Link)
	guid := strings.TrimSpace(e.GUID)
	pubDate := strings.TrimSpace(e.PubDate)
	description := strings.TrimSpace(e.Description)

	if title == "" || link == "" || guid == "" || pubDate == "" || description == "" {
		return entity.PostSummary{}, skipMissingField
	}
	if e.PublishedAt == nil || e.PublishedAt.IsZero() {
		return entity.PostSummary{}, skipInvalidDate
	}
	excerpt := SanitizeExcerpt(description)
	if excerpt == "" {
		return entity.PostSummary{}, skipEmptyExcerpt
	}

	summary := entity.PostSummary{
		ID:           DeriveID(guid),
		Title:        title,
		Excerpt:      excerpt,
		URL:          link,
		PublishedAt:  *e.PublishedAt,
		ThumbnailURL: strings.TrimSpace(e.ThumbnailURL),
	}
	for _, c := range e.Categories {
		if c = strings.TrimSpace(c); c != "" {
			summary.Categories = append(summary.Categories, c)
		}
	}
	return summary, ""
}

// classify makes sure every source failure reaches the caller as one of the
// two typed feed errors.
func classify(feedURL string, err error) error {
	var fetchErr *FetchError
	var parseErr *ParseError
	if errors.As(err, &fetchErr) || errors.As(err, &parseErr) {
		return err
	}
	return &FetchError{URL: feedURL, Err: err}
}

func errorKind(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.StatusCode != 0 {
			return "http_status"
		}
		return "transport"
	}
	return "parse"
}
