// Package post holds the content model of the site: a single post
// parsed from a YYYY-MM-DD-slug content file, and the ordered
// collection of all posts a run builds once and never mutates.
package post

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/duffleit/quill/internal/frontmatter"
)

// DateFormat is the date prefix encoded in every content file name.
const DateFormat = "2006-01-02"

// Post is one content file after parsing. HTML is derived, recomputed
// on each render pass, and never persisted.
type Post struct {
	Identifier  string
	Slug        string
	Date        time.Time
	SourcePath  string
	FrontMatter frontmatter.FrontMatter
	Body        string
	HTML        string
}

// FromFilename derives identifier, slug and publication date from a
// content file named YYYY-MM-DD-slug.<ext>. The date must be a valid
// calendar date.
func FromFilename(name string) (*Post, error) {
	base := filepath.Base(name)
	identifier := strings.TrimSuffix(base, filepath.Ext(base))

	if len(identifier) < len(DateFormat)+2 || identifier[len(DateFormat)] != '-' {
		return nil, fmt.Errorf("content file %q: name is not of the form YYYY-MM-DD-slug", base)
	}

	date, err := time.Parse(DateFormat, identifier[:len(DateFormat)])
	if err != nil {
		return nil, fmt.Errorf("content file %q: invalid publication date: %w", base, err)
	}

	return &Post{
		Identifier: identifier,
		Slug:       identifier[len(DateFormat)+1:],
		Date:       date,
		SourcePath: name,
	}, nil
}

// Title returns the front matter title, falling back to the title-cased
// slug when none is set.
func (p *Post) Title() string {
	if t := p.FrontMatter.Title(); t != "" {
		return t
	}
	// Casers are stateful, so build one per call instead of sharing.
	return cases.Title(language.English).String(strings.ReplaceAll(p.Slug, "-", " "))
}

// Permalink is the site-relative URL of the post page.
func (p *Post) Permalink() string {
	return "/" + p.Slug + "/"
}

// Tokens returns the deduplicated keyword and tag tokens used by the
// related-posts heuristic. Tokens compare case-insensitively.
func (p *Post) Tokens() map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, list := range [][]string{p.FrontMatter.Keywords(), p.FrontMatter.Tags()} {
		for _, token := range list {
			token = strings.ToLower(strings.TrimSpace(token))
			if token != "" {
				tokens[token] = struct{}{}
			}
		}
	}
	return tokens
}
