package posts

import "testing"

func TestSanitizeExcerpt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "Cooking with lentils", want: "Cooking with lentils"},
		{name: "paragraph tags", in: "<p>Cooking <strong>with</strong> lentils</p>", want: "Cooking with lentils"},
		{name: "tags with attributes", in: `<a href="https://example.com" class="x">Read</a> more`, want: "Read more"},
		{name: "amp", in: "Beans &amp; rice", want: "Beans & rice"},
		{name: "lt gt", in: "5 &lt; 6 &gt; 4", want: "5 < 6 > 4"},
		{name: "quot", in: "&quot;Eat plants&quot;", want: `"Eat plants"`},
		{name: "numeric apostrophe", in: "Chef&#39;s table", want: "Chef's table"},
		{name: "named apostrophe", in: "Chef&apos;s table", want: "Chef's table"},
		{name: "nbsp", in: "green&nbsp;tea", want: "green tea"},
		{name: "dashes and ellipsis", in: "a&mdash;b&ndash;c&hellip;", want: "a—b–c…"},
		{name: "entity decoded once", in: "&amp;lt;", want: "&lt;"},
		{name: "unknown entity untouched", in: "&copy; 2024", want: "&copy; 2024"},
		{name: "tags stripped before decode", in: "&lt;b&gt;bold&lt;/b&gt;", want: "<b>bold</b>"},
		{name: "only markup", in: "<figure><img src=\"x.png\"></figure>", want: ""},
		{name: "surrounding whitespace", in: "  \n<p> hi </p>\t", want: "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeExcerpt(tt.in); got != tt.want {
				t.Errorf("SanitizeExcerpt(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeExcerpt_IdempotentOnPlainText(t *testing.T) {
	inputs := []string{
		"Cooking with lentils",
		"<p>Beans &amp; rice</p>",
		"Chef&#39;s table &mdash; spring menu",
		"  spaced out  ",
		"",
	}
	for _, in := range inputs {
		once := SanitizeExcerpt(in)
		twice := SanitizeExcerpt(once)
		if once != twice {
			t.Errorf("SanitizeExcerpt not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestDeriveID(t *testing.T) {
	tests := []struct {
		guid string
		want string
	}{
		{guid: "https://medium.com/p/abc123", want: "abc123"},
		{guid: "https://medium.com/p/1a2B3c4D5e6f", want: "1a2B3c4D5e6f"},
		{guid: "opaque-string", want: "opaque-string"},
		{guid: "https://medium.com/p/abc-123", want: "https://medium.com/p/abc-123"},
		{guid: "https://medium.com/p/abc123/", want: "https://medium.com/p/abc123/"},
		{guid: "https://medium.com/p/", want: "https://medium.com/p/"},
	}
	for _, tt := range tests {
		t.Run(tt.guid, func(t *testing.T) {
			if got := DeriveID(tt.guid); got != tt.want {
				t.Errorf("DeriveID(%q) = %q, want %q", tt.guid, got, tt.want)
			}
		})
	}
}
