package entity

import "time"

// PostSummary is the display-ready form of one blog post mirrored from the
// publishing platform's feed. It is built fresh on every fetch and is never
// mutated afterwards.
type PostSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	URL          string    `json:"url"`
	PublishedAt  time.Time `json:"publishedAt"`
	Categories   []string  `json:"categories,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
}
