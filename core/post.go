package core

import (
	"sort"
	"time"
)

// Post is the metadata and rendered body of a post, shared by the tag and
// index renderers once the post page has been written.
type Post struct {
	Title string
	Date  time.Time
	URL   string // relative to the site root, e.g. "posts/2024-01-02-hello.html"
	Name  string // source file name
	Tags  []string
	HTML  string
}

// PostSummary is the slice of a Post that listings need.
type PostSummary struct {
	Title string
	URL   string
	Date  time.Time
}

// NewPost pairs a post document with its rendered body.
func NewPost(d *Document, html string) *Post {
	return &Post{
		Title: d.Title,
		Date:  d.Date,
		URL:   PostURL(d.Stem),
		Name:  d.Name,
		Tags:  d.Tags,
		HTML:  html,
	}
}

// PostURL is the site-relative location of a rendered post.
func PostURL(stem string) string {
	return "posts/" + stem + ".html"
}

// Summary returns the listing view of p.
func (p *Post) Summary() PostSummary {
	return PostSummary{Title: p.Title, URL: p.URL, Date: p.Date}
}

// SortPosts orders posts newest-first. Posts with the same date are ordered
// by source file name so repeated builds produce identical listings.
func SortPosts(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].Name < posts[j].Name
	})
}
