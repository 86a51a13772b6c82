// Package site runs a full build: it wipes the output directory, copies
// assets, generates image variants and renders every page, post, tag
// listing and index page.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/charmbracelet/log"

	"github.com/menteora/quill/config"
	"github.com/menteora/quill/core"
	"github.com/menteora/quill/output"
	"github.com/menteora/quill/plugin"
	"github.com/menteora/quill/reader"
	"github.com/menteora/quill/reader/markdown"
	"github.com/menteora/quill/render"
	"github.com/menteora/quill/render/html"
	mdindex "github.com/menteora/quill/render/markdown"
	"github.com/menteora/quill/responsive"
)

// ErrOutputDir is returned when the output directory cannot be reset.
var ErrOutputDir = errors.New("output directory")

// Builder builds the site described by a configuration. A Builder is not
// safe for concurrent use; callers serialize builds.
type Builder struct {
	cfg       *config.Config
	logger    *log.Logger
	now       func() time.Time
	templates fs.FS

	reader   reader.Reader
	html     *html.Renderer
	index    render.IndexRenderer
	images   *responsive.Generator
	rewriter *responsive.Rewriter
	plugins  []plugin.Plugin
	out      *output.Dir
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithClock sets the clock used for undated posts. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithTemplates overrides template discovery.
func WithTemplates(fsys fs.FS) Option {
	return func(b *Builder) { b.templates = fsys }
}

// New prepares a Builder: it parses the templates and resolves the active
// plugins once. Missing templates, broken plugin snippets and an output
// directory that overlaps a source directory are errors.
func New(cfg *config.Config, opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:    cfg,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(b)
	}

	if err := cfg.CheckOutputDir(); err != nil {
		return nil, err
	}

	if b.templates == nil {
		b.templates = templateFS(cfg.TemplatesDir, b.logger)
	}
	r, err := html.New(b.templates)
	if err != nil {
		return nil, err
	}
	b.html = r

	b.plugins, err = plugin.Resolve(plugin.Config{
		Dir:       cfg.PluginsDir,
		Names:     cfg.Plugins,
		BaseURL:   cfg.BaseURL,
		SiteTitle: cfg.Site.Title,
		Options:   cfg.PluginOptions,
		Logger:    b.logger,
	})
	if err != nil {
		return nil, err
	}

	b.reader = &markdown.Reader{Now: b.now, Logger: b.logger}
	b.index = mdindex.Renderer{}
	b.images = &responsive.Generator{Logger: b.logger}
	b.rewriter = responsive.NewRewriter(cfg.BaseURL)
	b.out = output.New(cfg.OutputDir)
	return b, nil
}

// templateFS picks the user template directory when it exists and the
// built-in templates otherwise.
func templateFS(dir string, logger *log.Logger) fs.FS {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}
	logger.Debug("templates directory missing, using built-in templates", "dir", dir)
	return html.Defaults()
}

// Site returns the chrome passed to every template.
func (b *Builder) Site() render.Site {
	return render.Site{
		Title:       b.cfg.Site.Title,
		BaseURL:     b.cfg.BaseURL,
		PluginsHead: plugin.Heads(b.plugins),
		PluginsBody: plugin.Bodies(b.plugins),
	}
}

// Build runs one full build. It stops at the first fatal error; recoverable
// problems are logged and listed in the report.
func (b *Builder) Build(ctx context.Context) (*core.Report, error) {
	start := time.Now()
	report := &core.Report{OutputDir: b.cfg.OutputDir}
	site := b.Site()

	if err := b.out.Reset(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputDir, err)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"copy static assets", func() error { return b.copyStatic(report) }},
		{"generate images", func() error { return b.generateImages(report) }},
		{"render pages", func() error { return b.renderPages(site, report) }},
		{"render posts", func() error { return b.renderPosts(ctx, site, report) }},
	}
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	report.Duration = time.Since(start)
	b.logger.Info("site built",
		"output", b.cfg.OutputDir,
		"pages", report.Pages,
		"posts", report.Posts,
		"tags", report.Tags,
		"duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

func (b *Builder) copyStatic(report *core.Report) error {
	n, err := b.out.CopyTree(b.cfg.StaticDir, "")
	if err != nil {
		return err
	}
	report.Static += n

	for _, p := range b.plugins {
		if p.Static == "" {
			continue
		}
		n, err := b.out.CopyTree(p.Static, p.OutputPath())
		if err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name, err)
		}
		report.Static += n
	}
	return nil
}

func (b *Builder) generateImages(report *core.Report) error {
	res, err := b.images.Generate(b.cfg.Content.Images, b.out.Path("images"))
	if err != nil {
		return err
	}
	report.Images = res.Copied
	report.Variants = res.Variants
	for _, name := range res.Failed {
		report.Warn("image " + name + " could not be decoded; no variants generated")
	}
	for _, name := range res.Conflicts {
		report.Warn("image " + name + " is both a source and a generated variant name; kept the source")
	}
	return nil
}

func (b *Builder) renderPages(site render.Site, report *core.Report) error {
	docs, err := b.reader.ReadDir(b.cfg.Content.Pages, core.KindPage)
	if err != nil {
		return err
	}

	for _, d := range docs {
		content, err := b.html.Convert(d.Body)
		if err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
		var buf bytes.Buffer
		if err := b.html.RenderPage(&buf, site, d, content); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
		if err := b.writeHTML(d.Stem+".html", buf.String()); err != nil {
			return err
		}
		if err := b.out.WriteFile(path.Join("pages", d.Name), []byte(d.Raw)); err != nil {
			return err
		}
		report.Pages++
	}
	return nil
}

// renderPosts writes every post page, then the tag pages and the index
// pages that list them.
func (b *Builder) renderPosts(ctx context.Context, site render.Site, report *core.Report) error {
	docs, err := b.reader.ReadDir(b.cfg.Content.Posts, core.KindPost)
	if err != nil {
		return err
	}

	posts := make([]*core.Post, 0, len(docs))
	for _, d := range docs {
		if d.DateFallback {
			report.Warn("post " + d.Name + " has no date prefix; dated " + core.FormatDate(d.Date))
		}

		content, err := b.html.Convert(d.Body)
		if err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
		p := core.NewPost(d, string(content))

		var buf bytes.Buffer
		if err := b.html.RenderPost(&buf, site, p); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
		if err := b.writeHTML(p.URL, buf.String()); err != nil {
			return err
		}
		if err := b.out.WriteFile(path.Join("posts", d.Name), []byte(d.Raw)); err != nil {
			return err
		}
		posts = append(posts, p)
	}
	core.SortPosts(posts)
	report.Posts = len(posts)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.renderTags(site, posts, report); err != nil {
		return fmt.Errorf("render tags: %w", err)
	}
	if err := b.renderIndex(site, posts, report); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	return nil
}

func (b *Builder) renderTags(site render.Site, posts []*core.Post, report *core.Report) error {
	tags := core.SortedTags(core.AggregateTags(posts))

	for _, e := range tags {
		var buf bytes.Buffer
		if err := b.html.RenderTag(&buf, site, e); err != nil {
			return fmt.Errorf("tag %s: %w", e.Name, err)
		}
		if err := b.writeHTML(e.URL(), buf.String()); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := b.html.RenderTagList(&buf, site, tags); err != nil {
		return err
	}
	if err := b.writeHTML("tags.html", buf.String()); err != nil {
		return err
	}
	report.Tags = len(tags)
	return nil
}

func (b *Builder) renderIndex(site render.Site, posts []*core.Post, report *core.Report) error {
	pages := core.Paginate(posts, b.cfg.PostsPerPage)
	for _, page := range pages {
		var buf bytes.Buffer
		if err := b.html.RenderIndex(&buf, site, page); err != nil {
			return fmt.Errorf("page %d: %w", page.Number, err)
		}
		if err := b.writeHTML(page.URL(), buf.String()); err != nil {
			return err
		}
	}
	report.IndexPages = len(pages)

	var buf bytes.Buffer
	all := core.IndexPage{Number: 1, TotalPages: 1, Posts: posts}
	if err := b.index.RenderIndex(&buf, site, all); err != nil {
		return err
	}
	return b.out.WriteFile("index.md", buf.Bytes())
}

// writeHTML applies the responsive image rewrite and writes the page.
func (b *Builder) writeHTML(rel, doc string) error {
	return b.out.WriteFile(rel, []byte(b.rewriter.Rewrite(doc)))
}
