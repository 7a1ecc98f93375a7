// Package config handles loading, validating, and managing site
// configuration for the Quill static site generator.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SiteConfig is the top-level configuration for a Quill site.
type SiteConfig struct {
	BaseURL     string             `yaml:"baseURL"     mapstructure:"baseURL"`
	Title       string             `yaml:"title"       mapstructure:"title"`
	Description string             `yaml:"description" mapstructure:"description"`
	Language    string             `yaml:"language"    mapstructure:"language"`
	Collections []CollectionConfig `yaml:"collections" mapstructure:"collections"`
	Pagination  PaginationConfig   `yaml:"pagination"  mapstructure:"pagination"`
	Highlight   HighlightConfig    `yaml:"highlight"   mapstructure:"highlight"`
	Feeds       FeedsConfig        `yaml:"feeds"       mapstructure:"feeds"`
	Server      ServerConfig       `yaml:"server"      mapstructure:"server"`
	Build       BuildConfig        `yaml:"build"       mapstructure:"build"`
	Params      map[string]any     `yaml:"params"      mapstructure:"params"`
}

// CollectionConfig configures one content.ContentService (§4.7). Each
// entry in Collections becomes one ContentCollection registered with the
// engine facade.
type CollectionConfig struct {
	Name        string `yaml:"name"        mapstructure:"name"`
	ContentPath string `yaml:"contentPath" mapstructure:"contentPath"`
	BasePageURL string `yaml:"basePageURL" mapstructure:"basePageURL"`
	FilePattern string `yaml:"filePattern" mapstructure:"filePattern"`
	TagsPageURL string `yaml:"tagsPageURL" mapstructure:"tagsPageURL"`
}

// PaginationConfig controls how content lists are paginated.
type PaginationConfig struct {
	PageSize int `yaml:"pageSize" mapstructure:"pageSize"`
}

// HighlightConfig controls the syntax-highlighting subsystem (§4.6).
type HighlightConfig struct {
	Style         string        `yaml:"style"         mapstructure:"style"`
	TabWidth      int           `yaml:"tabWidth"       mapstructure:"tabWidth"`
	FragmentsFile string        `yaml:"fragmentsFile"  mapstructure:"fragmentsFile"`
	ExecCommand   string        `yaml:"execCommand"    mapstructure:"execCommand"`
	CacheDebounce time.Duration `yaml:"cacheDebounce"  mapstructure:"cacheDebounce"`
}

// FeedsConfig controls sitemap/RSS generation (§4.10).
type FeedsConfig struct {
	RSS      bool   `yaml:"rss"      mapstructure:"rss"`
	Sitemap  bool   `yaml:"sitemap"  mapstructure:"sitemap"`
	Limit    int    `yaml:"limit"    mapstructure:"limit"`
	FeedLink string `yaml:"feedLink" mapstructure:"feedLink"`
}

// ServerConfig controls the development server (§6 external collaborator).
type ServerConfig struct {
	Port       int    `yaml:"port"       mapstructure:"port"`
	Host       string `yaml:"host"       mapstructure:"host"`
	LiveReload bool   `yaml:"livereload" mapstructure:"livereload"`
}

// BuildConfig controls the static-output generator (§4.11).
type BuildConfig struct {
	OutputDir   string   `yaml:"outputDir"   mapstructure:"outputDir"`
	IgnorePaths []string `yaml:"ignorePaths" mapstructure:"ignorePaths"`
}

// Default returns a SiteConfig populated with sensible default values.
func Default() *SiteConfig {
	return &SiteConfig{
		Language: "en-us",
		Pagination: PaginationConfig{
			PageSize: 10,
		},
		Highlight: HighlightConfig{
			Style:         "github",
			TabWidth:      4,
			CacheDebounce: 500 * time.Millisecond,
		},
		Feeds: FeedsConfig{
			RSS:     true,
			Sitemap: true,
			Limit:   20,
		},
		Server: ServerConfig{
			Port:       1313,
			Host:       "localhost",
			LiveReload: true,
		},
		Build: BuildConfig{
			OutputDir: "public",
		},
		Params: map[string]any{},
	}
}

// Load reads a configuration file from configPath (YAML or TOML) and
// returns a SiteConfig with defaults applied first and file values
// overlaid on top.
func Load(configPath string) (*SiteConfig, error) {
	cfg := Default()

	v := viper.New()

	ext := strings.TrimPrefix(filepath.Ext(configPath), ".")
	switch ext {
	case "yaml", "yml":
		v.SetConfigType("yaml")
	case "toml":
		v.SetConfigType("toml")
	default:
		v.SetConfigType("yaml")
	}

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validating: %w", err)
	}

	return cfg, nil
}

// Validate checks the SiteConfig for the errors spec §7's ConfigError
// names: missing title, a trailing slash on BaseURL, or a collection with
// no content path.
func (c *SiteConfig) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("config: title is required")
	}
	if c.BaseURL != "" && strings.HasSuffix(c.BaseURL, "/") {
		return fmt.Errorf("config: baseURL must not have a trailing slash (got %q)", c.BaseURL)
	}
	for _, col := range c.Collections {
		if strings.TrimSpace(col.ContentPath) == "" {
			return fmt.Errorf("config: collection %q: contentPath is required", col.Name)
		}
	}
	return nil
}

// WithOverrides applies CLI flag overrides to the config. Known keys are
// mapped to their corresponding struct fields. The modified config is
// returned for convenient chaining.
func (c *SiteConfig) WithOverrides(overrides map[string]any) *SiteConfig {
	for key, val := range overrides {
		switch key {
		case "baseURL":
			if s, ok := val.(string); ok {
				c.BaseURL = s
			}
		case "title":
			if s, ok := val.(string); ok {
				c.Title = s
			}
		case "language":
			if s, ok := val.(string); ok {
				c.Language = s
			}
		case "port":
			if n, ok := val.(int); ok {
				c.Server.Port = n
			}
		case "host":
			if s, ok := val.(string); ok {
				c.Server.Host = s
			}
		case "outputDir":
			if s, ok := val.(string); ok {
				c.Build.OutputDir = s
			}
		case "livereload":
			if b, ok := val.(bool); ok {
				c.Server.LiveReload = b
			}
		}
	}
	return c
}
