// Package config holds the site configuration resolved by viper from
// quill.yaml, environment variables, and defaults.
package config

// Config is the full site configuration.
type Config struct {
	SiteTitle  string `mapstructure:"siteTitle"`
	BaseURL    string `mapstructure:"baseURL"`
	ContentDir string `mapstructure:"contentDir"`
	LayoutsDir string `mapstructure:"layoutsDir"`
	StaticDir  string `mapstructure:"staticDir"`
	OutputDir  string `mapstructure:"outputDir"`

	// PageSize is the number of posts per index page.
	PageSize int `mapstructure:"pageSize"`

	// RelatedMax caps the related-posts listing on a post page.
	RelatedMax int `mapstructure:"relatedMax"`

	// Sanitize runs rendered HTML through a UGC policy. Off by default;
	// it strips the figure markup of image includes.
	Sanitize bool `mapstructure:"sanitize"`
}

// Defaults returns the configuration used when quill.yaml is absent.
func Defaults() Config {
	return Config{
		SiteTitle:  "A Quill Site",
		ContentDir: "content",
		LayoutsDir: "layouts",
		StaticDir:  "static",
		OutputDir:  "public",
		PageSize:   5,
		RelatedMax: 3,
	}
}
