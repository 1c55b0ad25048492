// Package posts provides the HTTP handler serving the mirrored blog posts
// to the site's pages.
package posts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"leafline-site/internal/domain/entity"
	"leafline-site/internal/handler/http/respond"
	"leafline-site/internal/observability/logging"
	postsUC "leafline-site/internal/usecase/posts"
)

// MaxLimit caps the limit query parameter.
const MaxLimit = 50

var errInvalidLimit = errors.New("limit must be between 1 and 50")

// msgUnavailable is shown in place of the list when the feed cannot be read.
const msgUnavailable = "Unable to load posts right now."

// Response is the body of GET /posts.
type Response struct {
	Posts []entity.PostSummary `json:"posts"`
	Error string               `json:"error,omitempty"`
}

// ListHandler handles GET /posts?limit=N for the configured feed handle.
//
// A feed failure is not an HTTP failure: the page renders an empty state, so
// the handler answers 200 with no posts and a short message, and logs the
// typed cause.
type ListHandler struct {
	Svc          postsUC.Fetcher
	Handle       string
	DefaultLimit int
}

// Register mounts the posts route on mux.
func Register(mux *http.ServeMux, svc postsUC.Fetcher, handle string, defaultLimit int) {
	mux.Handle("GET /posts", ListHandler{Svc: svc, Handle: handle, DefaultLimit: defaultLimit})
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, Response{Posts: []entity.PostSummary{}, Error: err.Error()})
		return
	}

	list, err := h.Svc.FetchPosts(ctx, h.Handle, limit)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			// The visitor went away; nobody is reading the answer.
			return
		}
		logFeedFailure(logger, err)
		w.Header().Set("Cache-Control", "no-store")
		respond.JSON(w, http.StatusOK, Response{Posts: []entity.PostSummary{}, Error: msgUnavailable})
		return
	}

	if list == nil {
		list = []entity.PostSummary{}
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	respond.JSON(w, http.StatusOK, Response{Posts: list})
}

// parseLimit returns the default for an absent parameter.
func (h ListHandler) parseLimit(raw string) (int, error) {
	if raw == "" {
		if h.DefaultLimit > 0 {
			return h.DefaultLimit, nil
		}
		return postsUC.DefaultMaxPosts, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxLimit {
		return 0, errInvalidLimit
	}
	return n, nil
}

func logFeedFailure(logger *slog.Logger, err error) {
	var fetchErr *postsUC.FetchError
	var parseErr *postsUC.ParseError
	var validationErr *entity.ValidationError

	switch {
	case errors.As(err, &fetchErr):
		logger.Warn("posts unavailable: feed fetch failed",
			slog.Int("status_code", fetchErr.StatusCode),
			slog.String("error", respond.SanitizeError(err)))
	case errors.As(err, &parseErr):
		logger.Warn("posts unavailable: feed not parseable",
			slog.String("error", respond.SanitizeError(err)),
			slog.Any("cause", parseErr.Err))
	case errors.As(err, &validationErr):
		logger.Error("posts unavailable: feed handle misconfigured",
			slog.String("error", err.Error()))
	default:
		logger.Error("posts unavailable",
			slog.String("error", respond.SanitizeError(err)))
	}
}
