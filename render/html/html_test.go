package html

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/menteora/quill/core"
	"github.com/menteora/quill/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSite() render.Site {
	return render.Site{
		Title:       "Test Blog",
		BaseURL:     "/blog/",
		PluginsHead: []template.HTML{`<meta name="plugin" content="head">`},
		PluginsBody: []template.HTML{`<script src="/blog/plugins/x/x.js"></script>`},
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(nil)
	require.NoError(t, err)
	return r
}

func TestNewMissingTemplate(t *testing.T) {
	fsys := fstest.MapFS{
		"base.html": {Data: []byte(`{{block "content" .}}{{end}}`)},
		"page.html": {Data: []byte(`{{define "content"}}page{{end}}`)},
	}
	_, err := New(fsys)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "post.html")
}

func TestNewCustomTemplates(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, name := range Required {
		fsys[name] = &fstest.MapFile{Data: []byte(`{{define "content"}}` + name + `:{{.Title}}{{end}}`)}
	}
	fsys[BaseTemplate] = &fstest.MapFile{Data: []byte(`[{{block "content" .}}{{end}}]`)}

	r, err := New(fsys)
	require.NoError(t, err)

	var buf bytes.Buffer
	d := &core.Document{Title: "About"}
	require.NoError(t, r.RenderPage(&buf, testSite(), d, "<p>x</p>"))
	assert.Equal(t, "[page.html:About]", buf.String())
}

func TestNewTemplateSyntaxError(t *testing.T) {
	fsys := fstest.MapFS{}
	for _, name := range Required {
		fsys[name] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{end}}`)}
	}
	fsys[TagTemplate] = &fstest.MapFile{Data: []byte(`{{define "content"}}{{.Title}`)}

	_, err := New(fsys)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTemplateNotFound)
	assert.Contains(t, err.Error(), "tag.html")
}

func TestConvert(t *testing.T) {
	r := newRenderer(t)

	got, err := r.Convert("# Title\n\nSome *text* and ![cat](images/cat.png)\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)

	s := string(got)
	assert.Contains(t, s, "<h1>Title</h1>")
	assert.Contains(t, s, "<em>text</em>")
	assert.Contains(t, s, `<img src="images/cat.png" alt="cat">`)
	assert.Contains(t, s, "<table>")
}

func TestConvertHighlightsCode(t *testing.T) {
	r := newRenderer(t)

	got, err := r.Convert("```go\nfunc main() {}\n```\n")
	require.NoError(t, err)
	assert.Contains(t, string(got), "<pre")
	assert.Contains(t, string(got), "style=")
}

func TestRenderPage(t *testing.T) {
	r := newRenderer(t)
	d := core.ParseDocument(core.KindPage, "about.md", []byte("# About\n\nHello."), time.Now())
	content, err := r.Convert(d.Body)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.RenderPage(&buf, testSite(), d, content))

	html := buf.String()
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>About | Test Blog</title>")
	assert.Contains(t, html, "<h1>About</h1>")
	assert.Contains(t, html, `href="/blog/styles.css"`)
	assert.Contains(t, html, `<meta name="plugin" content="head">`)
	assert.Contains(t, html, `<script src="/blog/plugins/x/x.js"></script>`)
	assert.Less(t, strings.Index(html, `<meta name="plugin"`), strings.Index(html, "</head>"))
	assert.Less(t, strings.Index(html, `plugins/x/x.js`), strings.Index(html, "</body>"))
}

func TestRenderPost(t *testing.T) {
	r := newRenderer(t)
	p := &core.Post{
		Title: "Hello",
		Date:  time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		URL:   "posts/2024-01-03-hello.html",
		Tags:  []string{"go", "web dev", "!!!"},
		HTML:  "<p>Body</p>",
	}

	var buf bytes.Buffer
	require.NoError(t, r.RenderPost(&buf, testSite(), p))

	html := buf.String()
	assert.Contains(t, html, "<time>03 January 2024</time>")
	assert.Contains(t, html, "<p>Body</p>")
	assert.Contains(t, html, `<a href="/blog/tags/go.html">go</a>`)
	assert.Contains(t, html, `<a href="/blog/tags/web-dev.html">web dev</a>`)
	assert.NotContains(t, html, "!!!")
}

func TestRenderIndex(t *testing.T) {
	r := newRenderer(t)
	posts := []*core.Post{
		{Title: "Third", URL: "posts/c.html", Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
		{Title: "Second", URL: "posts/b.html", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "First", URL: "posts/a.html", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	pages := core.Paginate(posts, 2)
	require.Len(t, pages, 2)

	var first bytes.Buffer
	require.NoError(t, r.RenderIndex(&first, testSite(), pages[0]))
	html := first.String()
	assert.Contains(t, html, "<title>Home | Test Blog</title>")
	assert.Less(t, strings.Index(html, "posts/c.html"), strings.Index(html, "posts/b.html"))
	assert.NotContains(t, html, "posts/a.html")
	assert.Contains(t, html, "Page 1 of 2")
	assert.Contains(t, html, `href="/blog/page/2.html"`)
	assert.NotContains(t, html, `class="prev"`)

	var second bytes.Buffer
	require.NoError(t, r.RenderIndex(&second, testSite(), pages[1]))
	html = second.String()
	assert.Contains(t, html, "<title>Home - Page 2 | Test Blog</title>")
	assert.Contains(t, html, "posts/a.html")
	assert.Contains(t, html, `class="prev" href="/blog/index.html"`)
	assert.NotContains(t, html, `class="next"`)
}

func TestRenderIndexEmpty(t *testing.T) {
	r := newRenderer(t)
	pages := core.Paginate(nil, 5)

	var buf bytes.Buffer
	require.NoError(t, r.RenderIndex(&buf, testSite(), pages[0]))
	html := buf.String()
	assert.Contains(t, html, "No posts yet.")
	assert.NotContains(t, html, `class="pagination"`)
	assert.NotContains(t, html, "post-summary")
}

func TestRenderTagPages(t *testing.T) {
	r := newRenderer(t)
	posts := []*core.Post{
		{Title: "B", URL: "posts/b.html", Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"go", "rust"}},
		{Title: "A", URL: "posts/a.html", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"go"}},
	}
	entries := core.AggregateTags(posts)

	var buf bytes.Buffer
	require.NoError(t, r.RenderTag(&buf, testSite(), entries["go"]))
	html := buf.String()
	assert.Contains(t, html, "<title>Tag: go | Test Blog</title>")
	assert.Contains(t, html, "Posts tagged &ldquo;go&rdquo;")
	assert.Less(t, strings.Index(html, "posts/b.html"), strings.Index(html, "posts/a.html"))
	assert.Contains(t, html, "<time>01 February 2024</time>")

	buf.Reset()
	require.NoError(t, r.RenderTagList(&buf, testSite(), core.SortedTags(entries)))
	html = buf.String()
	assert.Contains(t, html, `<a href="/blog/tags/go.html">go</a> <span class="count">(2)</span>`)
	assert.Contains(t, html, `<a href="/blog/tags/rust.html">rust</a> <span class="count">(1)</span>`)
	assert.Less(t, strings.Index(html, "tags/go.html"), strings.Index(html, "tags/rust.html"))
}

func TestDefaultsContainRequired(t *testing.T) {
	for _, name := range Required {
		_, err := Defaults().Open(name)
		assert.NoError(t, err, name)
	}
}
