// Package site runs the one-shot generation pipeline: scan the content
// directory, parse and render every post, build the site-wide
// collection, compose pages through layouts, and write the output
// tree. Per-file problems are collected into a Report; only errors
// that poison the whole site abort the run.
package site

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/duffleit/quill/internal/config"
	"github.com/duffleit/quill/internal/frontmatter"
	"github.com/duffleit/quill/internal/layout"
	"github.com/duffleit/quill/internal/markdown"
	"github.com/duffleit/quill/internal/post"
)

const (
	// indexLayout composes the paginated front page listings.
	indexLayout = "index"

	// displayDate is the human-readable form injected into the Date slot.
	displayDate = "January 2, 2006"
)

// Builder runs generation passes for one configuration.
type Builder struct {
	cfg      config.Config
	logger   *zap.Logger
	renderer *markdown.Renderer
}

// NewBuilder wires the pipeline from config.
func NewBuilder(cfg config.Config, logger *zap.Logger) *Builder {
	var opts []markdown.Option
	if cfg.Sanitize {
		opts = append(opts, markdown.WithSanitizer())
	}
	return &Builder{
		cfg:      cfg,
		logger:   logger,
		renderer: markdown.NewRenderer(opts...),
	}
}

// Build executes one full generation run and returns its report. A
// non-nil error means the run aborted before producing output; a clean
// error with a dirty report means some files were skipped.
func (b *Builder) Build() (*Report, error) {
	report := &Report{}

	files, err := b.contentFiles()
	if err != nil {
		return nil, err
	}
	b.logger.Info("content scanned", zap.Int("files", len(files)))

	registry, err := layout.LoadDir(b.cfg.LayoutsDir)
	if err != nil {
		return nil, err
	}

	posts := b.parseAndRender(files, report)

	// Barrier: everything below needs the full post set.
	collection, err := post.NewCollection(posts)
	if err != nil {
		return nil, err
	}

	site := &post.SiteContext{
		Title:   b.cfg.SiteTitle,
		BaseURL: b.cfg.BaseURL,
		Posts:   collection,
	}

	if err := b.prepareOutputDir(); err != nil {
		return nil, err
	}
	if err := b.copyStatic(); err != nil {
		return nil, err
	}

	for _, p := range collection.All() {
		if err := b.writePost(registry, site, collection, p); err != nil {
			report.addError(p.SourcePath, err)
		}
	}

	if err := b.writeIndexPages(registry, site, collection, report); err != nil {
		return nil, err
	}

	b.logger.Info("build finished",
		zap.Int("posts", collection.Len()),
		zap.Int("skipped", len(report.Errors)),
		zap.Int("warnings", len(report.Warnings)))
	return report, nil
}

// contentFiles lists the Markdown files under the content directory in
// a stable order.
func (b *Builder) contentFiles() ([]string, error) {
	if _, err := os.Stat(b.cfg.ContentDir); err != nil {
		return nil, fmt.Errorf("content directory %q: %w", b.cfg.ContentDir, err)
	}

	var files []string
	err := filepath.WalkDir(b.cfg.ContentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan content directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// parseAndRender fans the per-file work out over the CPUs. Each file is
// independent of every other, so only the shared report and result
// slice need the mutex. Files that fail are recorded and skipped.
func (b *Builder) parseAndRender(files []string, report *Report) []*post.Post {
	var (
		mu    sync.Mutex
		posts []*post.Post
	)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, file := range files {
		g.Go(func() error {
			p, warns, err := b.loadPost(file)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.addError(file, err)
				return nil
			}
			report.addWarnings(file, warns)
			posts = append(posts, p)
			return nil
		})
	}
	// Workers report failures through the report, never as group errors.
	_ = g.Wait()

	return posts
}

func (b *Builder) loadPost(file string) (*post.Post, []string, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}

	p, err := post.FromFilename(file)
	if err != nil {
		return nil, nil, err
	}

	fm, body, err := frontmatter.Parse(string(raw))
	if err != nil {
		return nil, nil, err
	}
	p.FrontMatter = fm
	p.Body = body

	res, err := b.renderer.Render(body)
	if err != nil {
		return nil, nil, err
	}
	p.HTML = res.HTML

	return p, res.Warnings, nil
}

func (b *Builder) prepareOutputDir() error {
	if err := os.RemoveAll(b.cfg.OutputDir); err != nil {
		return fmt.Errorf("clean output directory %q: %w", b.cfg.OutputDir, err)
	}
	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory %q: %w", b.cfg.OutputDir, err)
	}
	return nil
}

func (b *Builder) writePost(registry *layout.Registry, site *post.SiteContext, collection *post.Collection, p *post.Post) error {
	name := p.FrontMatter.Layout()
	if name == "" {
		return fmt.Errorf("%w: front matter names no layout", layout.ErrUnknownLayout)
	}

	older, newer := collection.Neighbors(p)
	page, err := registry.Compose(name, layout.PageData{
		Site:        site,
		Title:       p.Title(),
		Description: p.FrontMatter.Description(),
		Keywords:    p.FrontMatter.Keywords(),
		Date:        p.Date.Format(displayDate),
		Content:     template.HTML(p.HTML),
		Older:       older,
		Newer:       newer,
		Related:     collection.Related(p, b.cfg.RelatedMax),
	})
	if err != nil {
		return err
	}

	return b.writeFile(filepath.Join(p.Permalink(), "index.html"), page)
}

// writeIndexPages emits the paginated listings: page 1 at /index.html,
// every page at /page/N/index.html.
func (b *Builder) writeIndexPages(registry *layout.Registry, site *post.SiteContext, collection *post.Collection, report *Report) error {
	if !registry.Has(indexLayout) {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("layout %q not found, index pages skipped", indexLayout))
		return nil
	}

	for page := range collection.Paginate(b.cfg.PageSize) {
		html, err := registry.Compose(indexLayout, layout.PageData{
			Site:    site,
			Title:   site.Title,
			Page:    &page,
			PrevURL: pageURL(page.Prev),
			NextURL: pageURL(page.Next),
		})
		if err != nil {
			return err
		}

		if err := b.writeFile(filepath.Join("page", fmt.Sprint(page.Number), "index.html"), html); err != nil {
			return err
		}
		if page.Number == 1 {
			if err := b.writeFile("index.html", html); err != nil {
				return err
			}
		}
	}
	return nil
}

// pageURL maps a page number to its route. Page 1 is the front page.
func pageURL(n int) string {
	switch n {
	case 0:
		return ""
	case 1:
		return "/"
	default:
		return fmt.Sprintf("/page/%d/", n)
	}
}

func (b *Builder) writeFile(rel, content string) error {
	path := filepath.Join(b.cfg.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %q: %w", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", rel, err)
	}
	return nil
}
