// Package layout composes rendered post bodies into named HTML layout
// templates. Layouts live in a directory of .html files sharing one
// template set, so a layout can reach partials defined by its siblings.
package layout

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/duffleit/quill/internal/post"
)

// ErrUnknownLayout reports a front matter layout name with no
// registered template.
var ErrUnknownLayout = errors.New("unknown layout")

// PageData carries the slot values injected into a layout. Slots
// without a value render empty, except Content which is mandatory.
type PageData struct {
	Site        *post.SiteContext
	Title       string
	Description string
	Keywords    []string
	Date        string
	Content     template.HTML

	// Pagination links of a post page, nil at the boundaries.
	Older *post.Post
	Newer *post.Post

	// Related posts listing of a post page.
	Related []*post.Post

	// Page is set on index layouts only, together with the routes of
	// its neighboring pages ("" at the boundaries).
	Page    *post.Page
	PrevURL string
	NextURL string
}

// Registry resolves layout names to templates.
type Registry struct {
	templates *template.Template
}

// LoadDir parses every .html file under dir into one shared template
// set. Each file registers a layout under its base name, with or
// without the extension.
func LoadDir(dir string) (*Registry, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan layouts dir %q: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .html layout files in %q", dir)
	}

	templates, err := template.ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("parse layout files: %w", err)
	}
	return &Registry{templates: templates}, nil
}

// Has reports whether a layout name resolves to a template.
func (r *Registry) Has(name string) bool {
	return r.lookup(name) != nil
}

func (r *Registry) lookup(name string) *template.Template {
	if t := r.templates.Lookup(name); t != nil {
		return t
	}
	return r.templates.Lookup(name + ".html")
}

// Compose renders data into the named layout and returns the final
// page HTML. Unregistered names fail with ErrUnknownLayout; an empty
// Content slot is an error, every other empty slot renders empty.
func (r *Registry) Compose(name string, data PageData) (string, error) {
	tmpl := r.lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayout, name)
	}
	if data.Content == "" && data.Page == nil {
		return "", fmt.Errorf("layout %q: content slot is mandatory", name)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("execute layout %q: %w", name, err)
	}
	return b.String(), nil
}
