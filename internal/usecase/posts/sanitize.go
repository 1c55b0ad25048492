package posts

import (
	"regexp"
	"strings"
)

var (
	markupTag = regexp.MustCompile(`<[^>]*>`)

	// guidPostID captures the post identifier from guids shaped like
	// https://medium.com/p/1a2b3c4d5e6f.
	guidPostID = regexp.MustCompile(`/p/([A-Za-z0-9]+)$`)

	// Only these entities are decoded. Anything else is left verbatim.
	entityDecoder = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&apos;", "'",
		"&nbsp;", " ",
		"&mdash;", "—",
		"&ndash;", "–",
		"&hellip;", "…",
	)
)

// SanitizeExcerpt turns an HTML description into plain excerpt text:
// markup tags are removed first, then the fixed entity table is decoded,
// then surrounding whitespace is trimmed.
func SanitizeExcerpt(description string) string {
	text := markupTag.ReplaceAllString(description, "")
	text = entityDecoder.Replace(text)
	return strings.TrimSpace(text)
}

// DeriveID returns the alphanumeric suffix of a guid ending in /p/<id>,
// or the guid itself when it has no such suffix.
func DeriveID(guid string) string {
	if m := guidPostID.FindStringSubmatch(guid); m != nil {
		return m[1]
	}
	return guid
}
