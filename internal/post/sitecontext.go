package post

// SiteContext is the site-wide context every layout can reach: config
// values plus the full post collection. Built once per run and shared
// read-only, never mutated afterwards.
type SiteContext struct {
	Title   string
	BaseURL string
	Posts   *Collection
}
