package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duffleit/quill/internal/config"
	"github.com/duffleit/quill/internal/post"
)

const postLayout = `<!DOCTYPE html>
<html>
<head><title>{{.Title}} &middot; {{.Site.Title}}</title></head>
<body>
<div class="container">
  <article class="post">
    <h1 class="post-title">{{.Title}}</h1>
    <span class="post-date">{{.Date}}</span>
    <div id="articleContent">{{.Content}}</div>
  </article>
  <div class="pagination">
    {{if .Older}}<a class="pagination-item" href="{{.Older.Permalink}}">Older</a>{{end}}
    {{if .Newer}}<a class="pagination-item" href="{{.Newer.Permalink}}">Newer</a>{{end}}
  </div>
  {{if .Related}}<div class="related-posts">{{range .Related}}<a href="{{.Permalink}}">{{.Title}}</a>{{end}}</div>{{end}}
</div>
</body>
</html>`

const indexLayoutHTML = `<!DOCTYPE html>
<html>
<body>
<div class="container">
  {{range .Page.Posts}}<article class="post"><a href="{{.Permalink}}">{{.Title}}</a></article>{{end}}
  <div class="pagination">
    {{if .NextURL}}<a class="pagination-item" href="{{.NextURL}}">Older</a>{{end}}
    {{if .PrevURL}}<a class="pagination-item" href="{{.PrevURL}}">Newer</a>{{end}}
  </div>
</div>
</body>
</html>`

type fixture struct {
	root string
	cfg  config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := config.Defaults()
	cfg.SiteTitle = "Test Blog"
	cfg.ContentDir = filepath.Join(root, "content")
	cfg.LayoutsDir = filepath.Join(root, "layouts")
	cfg.StaticDir = filepath.Join(root, "static")
	cfg.OutputDir = filepath.Join(root, "public")
	cfg.PageSize = 2

	require.NoError(t, os.MkdirAll(cfg.ContentDir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.LayoutsDir, 0o755))

	f := &fixture{root: root, cfg: cfg}
	f.write(t, filepath.Join(cfg.LayoutsDir, "post.html"), postLayout)
	f.write(t, filepath.Join(cfg.LayoutsDir, "index.html"), indexLayoutHTML)
	return f
}

func (f *fixture) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (f *fixture) addPost(t *testing.T, name, fmBlock, body string) {
	t.Helper()
	f.write(t, filepath.Join(f.cfg.ContentDir, name), "---\n"+fmBlock+"---\n"+body)
}

func (f *fixture) build(t *testing.T) (*Report, error) {
	t.Helper()
	return NewBuilder(f.cfg, zap.NewNop()).Build()
}

func (f *fixture) output(t *testing.T, rel string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(f.cfg.OutputDir, rel))
	require.NoError(t, err)
	return string(raw)
}

func TestBuildFullSite(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "2016-01-01-oldest.md", "layout: post\ntitle: Oldest\nkeywords: go, web\n", "first body\n")
	f.addPost(t, "2016-03-21-middle.md", "layout: post\ntitle: Middle\nkeywords: go\n", "second body\n")
	f.addPost(t, "2016-11-11-newest.md", "layout: post\ntitle: Newest\n", "third body\n")
	f.write(t, filepath.Join(f.cfg.StaticDir, "css", "style.css"), ".container{max-width:38rem}")

	report, err := f.build(t)
	require.NoError(t, err)
	assert.True(t, report.Clean())

	middle := f.output(t, "middle/index.html")
	assert.Contains(t, middle, `<h1 class="post-title">Middle</h1>`)
	assert.Contains(t, middle, "March 21, 2016")
	assert.Contains(t, middle, "<p>second body</p>")
	assert.Contains(t, middle, `href="/oldest/">Older`)
	assert.Contains(t, middle, `href="/newest/">Newer`)
	// Shares the "go" keyword with oldest.
	assert.Contains(t, middle, `<div class="related-posts">`)
	assert.Contains(t, middle, `href="/oldest/">Oldest`)

	newest := f.output(t, "newest/index.html")
	assert.NotContains(t, newest, ">Newer")

	// Page 1 lists the two newest, page 2 the remaining one.
	front := f.output(t, "index.html")
	assert.Contains(t, front, `href="/newest/">Newest`)
	assert.Contains(t, front, `href="/middle/">Middle`)
	assert.NotContains(t, front, ">Oldest")
	assert.Contains(t, front, `href="/page/2/">Older`)

	page2 := f.output(t, "page/2/index.html")
	assert.Contains(t, page2, `href="/oldest/">Oldest`)
	assert.Contains(t, page2, `href="/">Newer`)

	assert.Equal(t, ".container{max-width:38rem}", f.output(t, "css/style.css"))
}

func TestBuildSkipsMalformedFrontMatter(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "2020-01-01-good.md", "layout: post\ntitle: Good\n", "fine\n")
	f.write(t, filepath.Join(f.cfg.ContentDir, "2020-02-02-broken.md"), "---\nlayout: post\nno closing delimiter\n")

	report, err := f.build(t)
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].File, "2020-02-02-broken.md")
	assert.False(t, report.Clean())

	// The good post still built; the broken one produced nothing.
	assert.FileExists(t, filepath.Join(f.cfg.OutputDir, "good", "index.html"))
	assert.NoFileExists(t, filepath.Join(f.cfg.OutputDir, "broken", "index.html"))
}

func TestBuildUnknownLayoutSkipsFile(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "2020-01-01-good.md", "layout: post\n", "fine\n")
	f.addPost(t, "2020-02-02-lost.md", "layout: nonexistent\n", "lost\n")

	report, err := f.build(t)
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Error(), "nonexistent")
	// Compose failures are keyed by source path, same as parse failures.
	assert.Equal(t, filepath.Join(f.cfg.ContentDir, "2020-02-02-lost.md"), report.Errors[0].File)
	assert.FileExists(t, filepath.Join(f.cfg.OutputDir, "good", "index.html"))
	assert.NoFileExists(t, filepath.Join(f.cfg.OutputDir, "lost", "index.html"))
}

func TestBuildDuplicateIdentifierAbortsBeforeOutput(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, filepath.Join("a", "2020-01-01-same.md"), "layout: post\n", "one\n")
	f.addPost(t, filepath.Join("b", "2020-01-01-same.md"), "layout: post\n", "two\n")

	_, err := f.build(t)
	require.ErrorIs(t, err, post.ErrDuplicateIdentifier)

	assert.NoDirExists(t, f.cfg.OutputDir)
}

func TestBuildSlugCollisionAbortsBeforeOutput(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "2020-01-01-same-slug.md", "layout: post\ntitle: First\n", "one\n")
	f.addPost(t, "2021-06-06-same-slug.md", "layout: post\ntitle: Second\n", "two\n")

	_, err := f.build(t)
	require.ErrorIs(t, err, post.ErrDuplicateSlug)

	// Neither page is written: the older post must not silently
	// overwrite the newer one at /same-slug/index.html.
	assert.NoDirExists(t, f.cfg.OutputDir)
}

func TestBuildRecordsDirectiveWarnings(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "2020-01-01-widgets.md", "layout: post\n",
		"before\n\n{% include video.html url=\"/v.mp4\" %}\n\nafter\n")

	report, err := f.build(t)
	require.NoError(t, err)

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "video.html")
	// Fail open: literal directive text survives in the page.
	page := f.output(t, "widgets/index.html")
	assert.Contains(t, page, "video.html")
}

func TestBuildMissingLayoutInFrontMatter(t *testing.T) {
	f := newFixture(t)
	f.addPost(t, "2020-01-01-bare.md", "title: Bare\n", "no layout key\n")

	report, err := f.build(t)
	require.NoError(t, err)
	require.Len(t, report.Errors, 1)
}
