// Package scaffold creates the files of a new site: a configuration file,
// sample content, the default templates and a stylesheet. Existing files are
// never overwritten.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/menteora/quill/config"
	"github.com/menteora/quill/core"
	"github.com/menteora/quill/render/html"
)

// Config holds the settings for the init command.
type Config struct {
	Dir string           // site root, created if missing
	Now func() time.Time // dates the sample post; defaults to time.Now
}

// Run executes the full scaffold sequence and returns the paths it created,
// relative to cfg.Dir.
func Run(cfg Config) ([]string, error) {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &scaffolder{dir: cfg.Dir}
	defaults := config.Default()

	steps := []struct {
		name string
		fn   func() error
	}{
		{"write config", func() error { return s.writeConfig(defaults) }},
		{"write sample page", func() error { return s.create(filepath.Join(defaults.Content.Pages, "about.md"), aboutPage) }},
		{"write sample post", func() error {
			name := cfg.Now().Format(core.DateLayout) + "-hello-world.md"
			return s.create(filepath.Join(defaults.Content.Posts, name), helloPost)
		}},
		{"create images directory", func() error { return s.mkdir(defaults.Content.Images) }},
		{"copy templates", func() error { return s.copyTemplates(defaults.TemplatesDir) }},
		{"write stylesheet", func() error { return s.create(filepath.Join(defaults.StaticDir, "styles.css"), stylesheet) }},
		{"update .gitignore", func() error { return ensureGitignore(cfg.Dir, defaults.OutputDir+"/", ".env") }},
	}

	for _, st := range steps {
		if err := st.fn(); err != nil {
			return s.created, fmt.Errorf("%s: %w", st.name, err)
		}
	}
	return s.created, nil
}

type scaffolder struct {
	dir     string
	created []string
}

// create writes rel unless it already exists.
func (s *scaffolder) create(rel, body string) error {
	path := filepath.Join(s.dir, rel)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return err
	}
	s.created = append(s.created, filepath.ToSlash(rel))
	return nil
}

func (s *scaffolder) mkdir(rel string) error {
	return os.MkdirAll(filepath.Join(s.dir, rel), 0o755)
}

func (s *scaffolder) writeConfig(cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.create(config.DefaultPath, string(data))
}

func (s *scaffolder) copyTemplates(rel string) error {
	for _, name := range html.Required {
		data, err := fs.ReadFile(html.Defaults(), name)
		if err != nil {
			return err
		}
		if err := s.create(filepath.Join(rel, name), string(data)); err != nil {
			return err
		}
	}
	return nil
}

// ensureGitignore adds each entry to .gitignore if not already present.
func ensureGitignore(dir string, entries ...string) error {
	path := filepath.Join(dir, ".gitignore")

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	// Add newline before entries if file doesn't end with one
	if len(data) > 0 && data[len(data)-1] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = f.WriteString(strings.Join(missing, "\n") + "\n")
	return err
}

const aboutPage = `# About

This site is built with quill. Edit content/pages/about.md to change this page.
`

const helloPost = `tags: meta
# Hello, world

This is the first post. Posts live in content/posts and their file names
start with the publication date.

Put images in content/images and reference them as images/<file>; quill
generates smaller copies for phones and laptops.
`

const stylesheet = `body {
  margin: 0 auto;
  max-width: 46rem;
  padding: 0 1rem;
  font-family: system-ui, -apple-system, "Segoe UI", sans-serif;
  line-height: 1.6;
  color: #1f2933;
}

a { color: #2563eb; }
img { max-width: 100%; height: auto; }
pre { overflow-x: auto; padding: 0.75rem; border-radius: 4px; }

.site-header {
  display: flex;
  justify-content: space-between;
  align-items: baseline;
  padding: 1.5rem 0;
  border-bottom: 1px solid #e5e7eb;
}
.site-title { font-weight: 700; font-size: 1.25rem; text-decoration: none; }
.site-nav a { margin-left: 1rem; }

.post-date, .count { color: #6b7280; font-size: 0.9rem; }
.post-summary h2 { margin-bottom: 0.25rem; }
.pagination { display: flex; gap: 1rem; justify-content: center; padding: 2rem 0; }

.site-footer {
  margin-top: 3rem;
  padding: 1.5rem 0;
  border-top: 1px solid #e5e7eb;
  color: #6b7280;
  font-size: 0.875rem;
}
`
