// Package feedclient reads the publishing platform's RSS feed over HTTP and
// hands its items to the posts use case as raw feed entries.
package feedclient

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"leafline-site/internal/resilience/circuitbreaker"
	"leafline-site/internal/usecase/posts"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
	"golang.org/x/net/html/charset"
)

const (
	// AcceptHeader lists the media types the feed endpoint may answer with.
	AcceptHeader = "application/rss+xml, application/xml, text/xml"

	// DefaultUserAgent identifies the site when fetching the feed.
	DefaultUserAgent = "LeaflineSiteBot/1.0"

	// DefaultTimeout bounds one feed request end to end.
	DefaultTimeout = 8 * time.Second

	// maxBodyBytes caps how much of a feed response is read.
	maxBodyBytes = 5 << 20
)

// Client implements posts.FeedSource using net/http and gofeed.
// Each call performs exactly one GET; failures are not retried here.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	userAgent      string
}

// Option customizes a Client.
type Option func(*Client)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithCircuitBreaker replaces the breaker built from FeedFetchConfig.
func WithCircuitBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) { c.circuitBreaker = cb }
}

// New creates a Client. A nil httpClient gets one with DefaultTimeout.
func New(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	c := &Client{
		httpClient: httpClient,
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.circuitBreaker == nil {
		c.circuitBreaker = circuitbreaker.New(circuitbreaker.FeedFetchConfig())
	}
	return c
}

// CircuitBreaker exposes the breaker for readiness reporting.
func (c *Client) CircuitBreaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

// Entries retrieves feedURL and returns its items in document order.
//
// Errors:
//   - *posts.FetchError: transport failure, open circuit or non-2xx status
//   - *posts.ParseError: body is not a well-formed feed
func (c *Client) Entries(ctx context.Context, feedURL string) ([]posts.FeedEntry, error) {
	body, err := circuitbreaker.Do(c.circuitBreaker, func() ([]byte, error) {
		return c.download(ctx, feedURL)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			slog.Warn("feed fetch circuit breaker open, request rejected",
				slog.String("service", c.circuitBreaker.Name()),
				slog.String("url", feedURL),
				slog.String("state", c.circuitBreaker.State().String()))
			return nil, &posts.FetchError{URL: feedURL, Err: err}
		}
		return nil, err
	}

	if err := wellFormed(body); err != nil {
		return nil, &posts.ParseError{URL: feedURL, Err: err}
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &posts.ParseError{URL: feedURL, Err: err}
	}

	entries := make([]posts.FeedEntry, 0, len(feed.Items))
	for _, it := range feed.Items {
		entries = append(entries, toEntry(it))
	}
	return entries, nil
}

// wellFormed runs a strict XML pass over body. gofeed's tokenizer recovers
// from mismatched tags and undefined entities, so it cannot be relied on to
// reject a broken document.
func wellFormed(body []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// download performs the GET. Only transport and status failures count
// against the circuit breaker; parsing happens outside it.
func (c *Client) download(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &posts.FetchError{URL: feedURL, Err: err}
	}
	req.Header.Set("Accept", AcceptHeader)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &posts.FetchError{URL: feedURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &posts.FetchError{
			URL:        feedURL,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &posts.FetchError{URL: feedURL, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// toEntry copies the fields the posts use case needs from a parsed item.
func toEntry(it *gofeed.Item) posts.FeedEntry {
	return posts.FeedEntry{
		Title:        it.Title,
		Link:         it.Link,
		GUID:         it.GUID,
		PubDate:      it.Published,
		PublishedAt:  it.PublishedParsed,
		Description:  it.Description,
		Categories:   it.Categories,
		ThumbnailURL: thumbnail(it),
	}
}

// thumbnail reads media:thumbnail@url, falling back to the item image.
func thumbnail(it *gofeed.Item) string {
	if media, ok := it.Extensions["media"]; ok {
		for _, th := range media["thumbnail"] {
			if u := strings.TrimSpace(th.Attrs["url"]); u != "" {
				return u
			}
		}
	}
	if it.Image != nil {
		return it.Image.URL
	}
	return ""
}
