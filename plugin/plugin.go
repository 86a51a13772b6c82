// Package plugin resolves the active plugins into a fixed capability table:
// per plugin an optional head snippet, an optional body snippet and an
// optional static asset directory.
//
// A plugin lives in <dir>/<name>/ and may contain:
//
//	head.html   injected at the end of <head> on every page
//	body.html   injected at the end of <body> on every page
//	static/     copied to <output>/plugins/<name>/
//
// Snippets are html/template files rendered once with SnippetData.
package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// Snippet and asset locations inside a plugin directory.
const (
	HeadFile  = "head.html"
	BodyFile  = "body.html"
	StaticDir = "static"
)

var (
	ErrInvalidName = errors.New("invalid plugin name")
	ErrSnippet     = errors.New("plugin snippet")
)

// Plugin is one resolved entry of the capability table.
type Plugin struct {
	Name string
	Head template.HTML
	Body template.HTML
	// Static is the asset directory to copy, or "" when the plugin has none.
	Static string
}

// OutputPath is the site-relative directory the plugin's assets are
// copied to.
func (p Plugin) OutputPath() string {
	return "plugins/" + p.Name + "/"
}

// SiteInfo is the site-wide part of SnippetData.
type SiteInfo struct {
	Title string
}

// SnippetData is the template data passed to head.html and body.html.
type SnippetData struct {
	Name      string
	BaseURL   string
	AssetsURL string // BaseURL + "plugins/<name>/"
	Site      SiteInfo
	Options   map[string]string
}

// Config describes what to resolve.
type Config struct {
	Dir       string   // directory holding one subdirectory per plugin
	Names     []string // active plugins, in injection order
	BaseURL   string
	SiteTitle string
	Options   map[string]map[string]string
	Logger    *log.Logger
}

// ValidateName rejects names that are not a single path element.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Resolve loads and renders the snippets of every active plugin. A plugin
// whose directory or files are missing contributes nothing. A snippet that
// fails to parse or execute is an error.
func Resolve(cfg Config) ([]Plugin, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	plugins := make([]Plugin, 0, len(cfg.Names))
	for _, name := range cfg.Names {
		if err := ValidateName(name); err != nil {
			return nil, err
		}

		dir := filepath.Join(cfg.Dir, name)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logger.Debug("plugin directory missing", "plugin", name, "dir", dir)
			plugins = append(plugins, Plugin{Name: name})
			continue
		}

		data := SnippetData{
			Name:      name,
			BaseURL:   cfg.BaseURL,
			AssetsURL: cfg.BaseURL + "plugins/" + name + "/",
			Site:      SiteInfo{Title: cfg.SiteTitle},
			Options:   cfg.Options[name],
		}

		p := Plugin{Name: name}
		var err error
		if p.Head, err = renderSnippet(filepath.Join(dir, HeadFile), data); err != nil {
			return nil, err
		}
		if p.Body, err = renderSnippet(filepath.Join(dir, BodyFile), data); err != nil {
			return nil, err
		}
		if info, err := os.Stat(filepath.Join(dir, StaticDir)); err == nil && info.IsDir() {
			p.Static = filepath.Join(dir, StaticDir)
		}

		plugins = append(plugins, p)
	}
	return plugins, nil
}

// Heads returns the head snippets of plugins that have one, in order.
func Heads(plugins []Plugin) []template.HTML {
	var out []template.HTML
	for _, p := range plugins {
		if p.Head != "" {
			out = append(out, p.Head)
		}
	}
	return out
}

// Bodies returns the body snippets of plugins that have one, in order.
func Bodies(plugins []Plugin) []template.HTML {
	var out []template.HTML
	for _, p := range plugins {
		if p.Body != "" {
			out = append(out, p.Body)
		}
	}
	return out
}

func renderSnippet(path string, data SnippetData) (template.HTML, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSnippet, path, err)
	}

	t, err := template.New(filepath.Base(path)).Option("missingkey=zero").Parse(string(src))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSnippet, path, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSnippet, path, err)
	}
	return template.HTML(strings.TrimSpace(buf.String())), nil
}
