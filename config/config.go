// Package config loads and validates the site configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/menteora/quill/core"
	"github.com/menteora/quill/output"
	"github.com/menteora/quill/plugin"
)

// EnvBaseURL overrides base_url from the configuration file.
const EnvBaseURL = "BASE_URL"

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.yaml"

// MaxInputSize limits the configuration file size.
const MaxInputSize = 1 << 20

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrOutputOverlap  = errors.New("output_dir overlaps a source directory")
)

// Config is the site configuration.
type Config struct {
	BaseURL       string                       `yaml:"base_url"`
	OutputDir     string                       `yaml:"output_dir"`
	Content       ContentConfig                `yaml:"content"`
	TemplatesDir  string                       `yaml:"templates_dir"`
	StaticDir     string                       `yaml:"static_dir"`
	PluginsDir    string                       `yaml:"plugins_dir"`
	Site          SiteConfig                   `yaml:"site"`
	PostsPerPage  int                          `yaml:"posts_per_page"`
	Plugins       []string                     `yaml:"plugins"`
	PluginOptions map[string]map[string]string `yaml:"plugin_options"`
}

// ContentConfig locates the source content directories.
type ContentConfig struct {
	Pages  string `yaml:"pages"`
	Posts  string `yaml:"posts"`
	Images string `yaml:"images"`
}

// SiteConfig holds values shown on every page.
type SiteConfig struct {
	Title string `yaml:"title"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() *Config {
	return &Config{
		BaseURL:   "/",
		OutputDir: "site",
		Content: ContentConfig{
			Pages:  "content/pages",
			Posts:  "content/posts",
			Images: "content/images",
		},
		TemplatesDir: "templates",
		StaticDir:    "static",
		PluginsDir:   "plugins",
		Site:         SiteConfig{Title: "My Blog"},
		PostsPerPage: core.DefaultPostsPerPage,
	}
}

// Load reads the YAML file at path on top of Default and validates it.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data on top of Default and validates it.
func Parse(data []byte) (*Config, error) {
	if len(data) > MaxInputSize {
		return nil, fmt.Errorf("%w: input exceeds %d bytes", ErrConfigParse, MaxInputSize)
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	cfg.BaseURL = NormalizeBaseURL(cfg.BaseURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a build.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output_dir: must not be empty", ErrInvalidConfig)
	}
	if c.PostsPerPage < 1 {
		return fmt.Errorf("%w: posts_per_page: must be at least 1, got %d", ErrInvalidConfig, c.PostsPerPage)
	}
	if err := c.CheckOutputDir(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	seen := make(map[string]bool, len(c.Plugins))
	for _, name := range c.Plugins {
		if err := plugin.ValidateName(name); err != nil {
			return fmt.Errorf("%w: plugins: %v", ErrInvalidConfig, err)
		}
		if seen[name] {
			return fmt.Errorf("%w: plugins: %q listed twice", ErrInvalidConfig, name)
		}
		seen[name] = true
	}
	for name := range c.PluginOptions {
		if !seen[name] {
			return fmt.Errorf("%w: plugin_options: %q is not an active plugin", ErrInvalidConfig, name)
		}
	}
	return nil
}

// CheckOutputDir makes sure wiping output_dir cannot touch the sources: it
// must not equal, contain or sit inside any content, template, static or
// plugin directory.
func (c *Config) CheckOutputDir() error {
	sources := []struct {
		key string
		dir string
	}{
		{"content.pages", c.Content.Pages},
		{"content.posts", c.Content.Posts},
		{"content.images", c.Content.Images},
		{"templates_dir", c.TemplatesDir},
		{"static_dir", c.StaticDir},
		{"plugins_dir", c.PluginsDir},
	}
	for _, s := range sources {
		if strings.TrimSpace(s.dir) == "" {
			continue
		}
		if output.Within(c.OutputDir, s.dir) || output.Within(s.dir, c.OutputDir) {
			return fmt.Errorf("%w: %q and %s %q", ErrOutputOverlap, c.OutputDir, s.key, s.dir)
		}
	}
	return nil
}

// SetBaseURL overrides base_url when url is not empty.
func (c *Config) SetBaseURL(url string) {
	if url != "" {
		c.BaseURL = NormalizeBaseURL(url)
	}
}

// ApplyEnv overrides configuration values from the environment. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	c.SetBaseURL(strings.TrimSpace(getenv(EnvBaseURL)))
}

// NormalizeBaseURL makes sure the base URL ends with a slash.
func NormalizeBaseURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return "/"
	}
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	return url
}

// LoadDotEnv loads variables from the .env file at path into the process
// environment without overriding variables already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
