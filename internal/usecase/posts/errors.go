// Package posts provides the use case for mirroring the publishing platform's
// RSS feed as a bounded list of display-ready post summaries.
package posts

import (
	"errors"
	"fmt"
)

// Sentinel errors for feed ingestion. FetchError and ParseError match them
// through errors.Is.
var (
	// ErrFeedFetchFailed indicates that the feed could not be retrieved,
	// either because of a transport failure or a non-2xx response.
	ErrFeedFetchFailed = errors.New("failed to fetch feed")

	// ErrInvalidFeedFormat indicates that the feed body is not well-formed XML/RSS.
	ErrInvalidFeedFormat = errors.New("invalid feed format")
)

// FetchError is returned when the feed request fails.
// StatusCode is zero for transport failures (DNS, connection, timeout)
// and carries the HTTP status otherwise.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("feed request to %s failed with status %d %s", e.URL, e.StatusCode, e.Status)
	}
	return fmt.Sprintf("feed request to %s failed: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFeedFetchFailed.
func (e *FetchError) Is(target error) bool { return target == ErrFeedFetchFailed }

// ParseError is returned when the feed body cannot be parsed.
// The parser's own message stays behind Unwrap so it only reaches logs.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("feed from %s is not well-formed RSS", e.URL)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidFeedFormat.
func (e *ParseError) Is(target error) bool { return target == ErrInvalidFeedFormat }
