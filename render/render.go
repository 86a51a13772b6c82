// Package render defines the site chrome shared by every output format and
// the interface implemented by post listing renderers.
package render

import (
	"html/template"
	"io"

	"github.com/menteora/quill/core"
)

// Site carries the values every rendered page can reach.
type Site struct {
	Title   string
	BaseURL string // always ends with "/"

	// PluginsHead and PluginsBody are pre-rendered plugin snippets injected
	// at the end of <head> and <body>, in plugin order.
	PluginsHead []template.HTML
	PluginsBody []template.HTML
}

// URL joins a site-relative path onto the base URL.
func (s Site) URL(rel string) string {
	return s.BaseURL + rel
}

// IndexRenderer writes one window of the post listing.
type IndexRenderer interface {
	RenderIndex(w io.Writer, site Site, page core.IndexPage) error
}
