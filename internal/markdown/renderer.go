// Package markdown renders post bodies to HTML. Standard constructs go
// through goldmark; the image include directive is expanded before the
// Markdown pass so its figure block survives as raw HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Result is one rendered body plus the warnings collected while
// rendering it. Warnings are non-fatal; the offending directive text is
// preserved verbatim in HTML.
type Result struct {
	HTML     string
	Warnings []string
}

// Renderer converts Markdown bodies to HTML fragments. Safe for
// concurrent use; goldmark.Markdown instances are stateless across
// Convert calls.
type Renderer struct {
	md       goldmark.Markdown
	sanitize *bluemonday.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSanitizer runs the rendered HTML through a bluemonday UGC policy.
// Meant for content from untrusted authors; it also strips the raw
// figure markup of image includes, so it stays off for a personal blog.
func WithSanitizer() Option {
	return func(r *Renderer) {
		r.sanitize = bluemonday.UGCPolicy()
	}
}

// NewRenderer builds the goldmark pipeline: GFM extensions, auto
// heading IDs, raw HTML passthrough. Fenced code blocks keep their
// language class and are not highlighted here.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithUnsafe(),
			),
		),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts one Markdown body to an HTML fragment.
func (r *Renderer) Render(body string) (Result, error) {
	var warns []string
	expanded := expandDirectives(body, &warns)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(expanded), &buf); err != nil {
		return Result{}, fmt.Errorf("convert markdown: %w", err)
	}

	out := buf.String()
	if r.sanitize != nil {
		out = r.sanitize.Sanitize(out)
	}
	return Result{HTML: out, Warnings: warns}, nil
}
