package pubsite

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SiteConfig holds all configuration for a pubsite build.
type SiteConfig struct {
	Title        string `mapstructure:"title"`         // Site title (default "Blog")
	Description  string `mapstructure:"description"`   // Fallback meta description
	SocialHandle string `mapstructure:"social_handle"` // Twitter/X handle, with or without '@'
	Author       string `mapstructure:"author"`        // Author name for JSON-LD and the feed
	URL          string `mapstructure:"url"`           // Canonical base URL; sitemap and og:url need it
	Icon         string `mapstructure:"icon"`          // Site icon path (default "/favicon.svg")

	ContentDir string `mapstructure:"content_dir"` // Article sources (default "content")
	AssetsDir  string `mapstructure:"assets_dir"`  // Root for "/"-prefixed image references (default "assets")
	StaticDir  string `mapstructure:"static_dir"`  // Copied verbatim into the output (default "static")
	OutputDir  string `mapstructure:"output_dir"`  // Built site (default "public")
	CacheDir   string `mapstructure:"cache_dir"`   // Image variants and manifest (default ".pubsite")

	ImageMaxWidth int      `mapstructure:"image_max_width"` // Display width of post images (default 800)
	ImageFormats  []string `mapstructure:"image_formats"`   // "jpeg", "png" (default jpeg)
	ImageQuality  int      `mapstructure:"image_quality"`   // JPEG quality (default 80)

	WordsPerMinute int  `mapstructure:"words_per_minute"` // Reading speed (default 265)
	Workers        int  `mapstructure:"workers"`          // Parallelism (default NumCPU)
	IncludeDrafts  bool `mapstructure:"include_drafts"`

	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error (default info)
	Addr     string `mapstructure:"addr"`      // Preview server listen address (default ":3000")
}

func (c *SiteConfig) setDefaults() {
	if c.Title == "" {
		c.Title = "Blog"
	}
	if c.Icon == "" {
		c.Icon = "/favicon.svg"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.AssetsDir == "" {
		c.AssetsDir = "assets"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.CacheDir == "" {
		c.CacheDir = ".pubsite"
	}
	if c.ImageMaxWidth <= 0 {
		c.ImageMaxWidth = defaultMaxImageWidth
	}
	if len(c.ImageFormats) == 0 {
		c.ImageFormats = []string{string(FormatJPEG)}
	}
	if c.ImageQuality <= 0 {
		c.ImageQuality = defaultJPEGQuality
	}
	if c.WordsPerMinute <= 0 {
		c.WordsPerMinute = DefaultWordsPerMinute
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
}

// Metadata returns the site identity used by every page.
func (c SiteConfig) Metadata() SiteMetadata {
	return SiteMetadata{
		Title:        c.Title,
		Description:  c.Description,
		SocialHandle: c.SocialHandle,
		Author:       c.Author,
		URL:          c.URL,
		Icon:         c.Icon,
	}
}

// ImageLayout is the layout post images are resolved with.
func (c SiteConfig) ImageLayout() Layout {
	formats := make([]Format, 0, len(c.ImageFormats))
	for _, f := range c.ImageFormats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "png":
			formats = append(formats, FormatPNG)
		case "jpeg", "jpg":
			formats = append(formats, FormatJPEG)
		}
	}
	l := ConstrainedLayout(c.ImageMaxWidth, formats...)
	l.Quality = c.ImageQuality
	return l
}

// LoadConfig reads a YAML config file and PUBSITE_* environment overrides.
// An empty path looks for config.yaml in the working directory; a missing
// file is not an error and leaves every field at its default.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("pubsite")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

// configKeys are bound to the environment so PUBSITE_* variables apply even
// when the config file does not mention the key.
var configKeys = []string{
	"title", "description", "social_handle", "author", "url", "icon",
	"content_dir", "assets_dir", "static_dir", "output_dir", "cache_dir",
	"image_max_width", "image_formats", "image_quality",
	"words_per_minute", "workers", "include_drafts", "log_level", "addr",
}

// Option configures additional Builder behavior.
type Option func(*Builder)

// WithLogger sets the logger used by every build stage.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = l
	}
}

// WithResolver replaces the default content-addressed image resolver.
func WithResolver(r ImageResolver) Option {
	return func(b *Builder) {
		b.resolver = r
	}
}

// WithClock sets the time source for feed and sitemap timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}
