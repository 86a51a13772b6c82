// Package markdown renders the post listing as a plain Markdown index
// (index.md): a title heading followed by one link-and-date line per post.
package markdown

import (
	"bufio"
	"io"
	"strings"

	"github.com/menteora/quill/core"
	"github.com/menteora/quill/render"
)

// Renderer writes a Markdown post listing.
type Renderer struct{}

var linkEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`)

// RenderIndex writes every post in page, newest first, under a heading
// carrying the site title.
func (Renderer) RenderIndex(w io.Writer, site render.Site, page core.IndexPage) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("# " + site.Title + "\n\n")
	for _, p := range page.Posts {
		bw.WriteString("- [" + linkEscaper.Replace(p.Title) + "](" + site.URL(p.URL) + ") - " + core.FormatDate(p.Date) + "\n")
	}
	return bw.Flush()
}
