// Package csp builds Content-Security-Policy header values.
package csp

import (
	"strings"
)

// Header names for enforcing and report-only policies.
const (
	HeaderEnforce    = "Content-Security-Policy"
	HeaderReportOnly = "Content-Security-Policy-Report-Only"
)

// directiveOrder fixes the serialization order so header values are stable
// across builds and easy to compare in tests.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"font-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
	"report-uri",
}

// Builder provides a fluent interface for constructing a policy.
//
//	value := csp.NewBuilder().
//	    DefaultSrc("'self'").
//	    ImgSrc("'self'", "https://miro.medium.com").
//	    Build()
//	// "default-src 'self'; img-src 'self' https://miro.medium.com"
//
// A Builder is not safe for concurrent mutation. Build once at startup and
// share the resulting string.
type Builder struct {
	directives map[string][]string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{directives: make(map[string][]string)}
}

func (b *Builder) set(directive string, sources []string) *Builder {
	b.directives[directive] = sources
	return b
}

// DefaultSrc sets default-src, the fallback for fetch directives.
func (b *Builder) DefaultSrc(sources ...string) *Builder { return b.set("default-src", sources) }

// ScriptSrc sets script-src.
func (b *Builder) ScriptSrc(sources ...string) *Builder { return b.set("script-src", sources) }

// StyleSrc sets style-src.
func (b *Builder) StyleSrc(sources ...string) *Builder { return b.set("style-src", sources) }

// ImgSrc sets img-src.
func (b *Builder) ImgSrc(sources ...string) *Builder { return b.set("img-src", sources) }

// FontSrc sets font-src.
func (b *Builder) FontSrc(sources ...string) *Builder { return b.set("font-src", sources) }

// ConnectSrc sets connect-src.
func (b *Builder) ConnectSrc(sources ...string) *Builder { return b.set("connect-src", sources) }

// FrameAncestors sets frame-ancestors. "'none'" forbids framing entirely.
func (b *Builder) FrameAncestors(sources ...string) *Builder {
	return b.set("frame-ancestors", sources)
}

// FormAction sets form-action.
func (b *Builder) FormAction(sources ...string) *Builder { return b.set("form-action", sources) }

// BaseURI sets base-uri.
func (b *Builder) BaseURI(sources ...string) *Builder { return b.set("base-uri", sources) }

// ObjectSrc sets object-src.
func (b *Builder) ObjectSrc(sources ...string) *Builder { return b.set("object-src", sources) }

// ReportURI sets report-uri.
func (b *Builder) ReportURI(uri string) *Builder { return b.set("report-uri", []string{uri}) }

// Build serializes the policy. Directives without sources are omitted and
// an empty policy yields "".
func (b *Builder) Build() string {
	parts := make([]string, 0, len(b.directives))
	for _, directive := range directiveOrder {
		if sources := b.directives[directive]; len(sources) > 0 {
			parts = append(parts, directive+" "+strings.Join(sources, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// HeaderName returns the header the policy is sent under.
func HeaderName(reportOnly bool) string {
	if reportOnly {
		return HeaderReportOnly
	}
	return HeaderEnforce
}

// SitePolicy is the policy for the site's JSON endpoints. Responses are data,
// never documents, so nothing may be loaded, framed, or used as a base.
func SitePolicy() *Builder {
	return NewBuilder().
		DefaultSrc("'none'").
		FrameAncestors("'none'").
		BaseURI("'none'").
		FormAction("'self'")
}
