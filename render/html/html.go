// Package html renders pages, posts, tag listings and index pages as HTML
// documents from html/template files, with Markdown converted by goldmark
// and code blocks highlighted by chroma.
package html

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/menteora/quill/core"
	"github.com/menteora/quill/render"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

//go:embed templates/*.html
var content embed.FS

// ErrTemplateNotFound is returned by New when a required template file is
// missing from the template directory.
var ErrTemplateNotFound = errors.New("required template not found")

// Template file names.
const (
	BaseTemplate  = "base.html"
	PageTemplate  = "page.html"
	PostTemplate  = "post.html"
	IndexTemplate = "index.html"
	TagTemplate   = "tag.html"
	TagsTemplate  = "tags.html"
)

// Required lists every template a template directory must provide.
var Required = []string{BaseTemplate, PageTemplate, PostTemplate, IndexTemplate, TagTemplate, TagsTemplate}

// Defaults returns the built-in templates.
func Defaults() fs.FS {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer renders site documents to HTML pages.
type Renderer struct {
	md    goldmark.Markdown
	tmpls map[string]*template.Template
}

// New parses the templates in fsys, which must contain every file in
// Required. A nil fsys uses the built-in templates. Each page template is
// parsed together with base.html and fills its "content" block.
func New(fsys fs.FS) (*Renderer, error) {
	if fsys == nil {
		fsys = Defaults()
	}

	for _, name := range Required {
		if _, err := fs.Stat(fsys, name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
			}
			return nil, fmt.Errorf("stat template %s: %w", name, err)
		}
	}

	tmpls := make(map[string]*template.Template, len(Required)-1)
	for _, name := range Required[1:] {
		t, err := template.New(BaseTemplate).ParseFS(fsys, BaseTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		tmpls[name] = t
	}

	return &Renderer{md: newMarkdown(), tmpls: tmpls}, nil
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles, no extra stylesheet
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // allow raw HTML in markdown
		),
	)
}

// Convert renders Markdown source to an HTML fragment.
func (r *Renderer) Convert(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("goldmark convert: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// pageData is the template data passed to page.html.
type pageData struct {
	Site    render.Site
	Title   string
	Content template.HTML
}

// postData is the template data passed to post.html.
type postData struct {
	Site    render.Site
	Title   string
	Date    string
	Content template.HTML
	Tags    []tagLink
}

type tagLink struct {
	Name string
	URL  string
}

// listItem is one post in a listing.
type listItem struct {
	Title string
	URL   string
	Date  string
}

// indexData is the template data passed to index.html.
type indexData struct {
	Site        render.Site
	Title       string
	Posts       []listItem
	CurrentPage int
	TotalPages  int
	PrevURL     string
	NextURL     string
}

// tagData is the template data passed to tag.html.
type tagData struct {
	Site    render.Site
	Title   string
	TagName string
	Posts   []listItem
}

// tagsData is the template data passed to tags.html.
type tagsData struct {
	Site  render.Site
	Title string
	Tags  []tagItem
}

type tagItem struct {
	Name  string
	URL   string
	Count int
}

// RenderPage writes a static page. content is the converted body.
func (r *Renderer) RenderPage(w io.Writer, site render.Site, d *core.Document, content template.HTML) error {
	return r.execute(w, PageTemplate, pageData{Site: site, Title: d.Title, Content: content})
}

// RenderPost writes a post page with its date and tag links.
func (r *Renderer) RenderPost(w io.Writer, site render.Site, p *core.Post) error {
	data := postData{
		Site:    site,
		Title:   p.Title,
		Date:    core.FormatDate(p.Date),
		Content: template.HTML(p.HTML),
	}
	for _, tag := range p.Tags {
		slug := core.Slugify(tag)
		if slug == "" {
			continue
		}
		data.Tags = append(data.Tags, tagLink{Name: tag, URL: core.TagURL(slug)})
	}
	return r.execute(w, PostTemplate, data)
}

// RenderIndex writes one page of the newest-first post listing.
func (r *Renderer) RenderIndex(w io.Writer, site render.Site, page core.IndexPage) error {
	data := indexData{
		Site:        site,
		Title:       page.Title(),
		CurrentPage: page.Number,
		TotalPages:  page.TotalPages,
		PrevURL:     page.PrevURL(),
		NextURL:     page.NextURL(),
	}
	for _, p := range page.Posts {
		data.Posts = append(data.Posts, listItem{Title: p.Title, URL: p.URL, Date: core.FormatDate(p.Date)})
	}
	return r.execute(w, IndexTemplate, data)
}

// RenderTag writes the listing page of one tag.
func (r *Renderer) RenderTag(w io.Writer, site render.Site, e *core.TagEntry) error {
	data := tagData{
		Site:    site,
		Title:   "Tag: " + e.Name,
		TagName: e.Name,
	}
	for _, p := range e.Posts {
		data.Posts = append(data.Posts, listItem{Title: p.Title, URL: p.URL, Date: core.FormatDate(p.Date)})
	}
	return r.execute(w, TagTemplate, data)
}

// RenderTagList writes the page listing every tag. tags should already be
// sorted; see core.SortedTags.
func (r *Renderer) RenderTagList(w io.Writer, site render.Site, tags []*core.TagEntry) error {
	data := tagsData{Site: site, Title: "Tags"}
	for _, e := range tags {
		data.Tags = append(data.Tags, tagItem{Name: e.Name, URL: e.URL(), Count: e.Count})
	}
	return r.execute(w, TagsTemplate, data)
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	t, ok := r.tmpls[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	if err := t.ExecuteTemplate(w, BaseTemplate, data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}
	return nil
}
