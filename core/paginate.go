package core

import "strconv"

// DefaultPostsPerPage is the pagination window used when none is configured.
const DefaultPostsPerPage = 5

// IndexPage is one window of the newest-first post list.
type IndexPage struct {
	Number     int // 1-based
	TotalPages int // zero when there are no posts
	Posts      []*Post
}

// URL is the site-relative location of the page.
func (p IndexPage) URL() string {
	return PageURL(p.Number)
}

// Title is the listing title: "Home" for the first page, "Home - Page N" after.
func (p IndexPage) Title() string {
	if p.Number <= 1 {
		return "Home"
	}
	return "Home - Page " + strconv.Itoa(p.Number)
}

// PrevURL returns the previous page location, or "" on the first page.
func (p IndexPage) PrevURL() string {
	if p.Number <= 1 {
		return ""
	}
	return PageURL(p.Number - 1)
}

// NextURL returns the next page location, or "" on the last page.
func (p IndexPage) NextURL() string {
	if p.Number >= p.TotalPages {
		return ""
	}
	return PageURL(p.Number + 1)
}

// PageURL maps a page number to its file: page 1 is the site index.
func PageURL(n int) string {
	if n <= 1 {
		return "index.html"
	}
	return "page/" + strconv.Itoa(n) + ".html"
}

// TotalPages is ceil(total/perPage).
func TotalPages(total, perPage int) int {
	if perPage < 1 {
		perPage = DefaultPostsPerPage
	}
	return (total + perPage - 1) / perPage
}

// Paginate splits posts into contiguous windows of perPage posts. With no
// posts it returns a single empty first page whose TotalPages is zero, so
// the site index always exists.
func Paginate(posts []*Post, perPage int) []IndexPage {
	if perPage < 1 {
		perPage = DefaultPostsPerPage
	}
	total := TotalPages(len(posts), perPage)
	if total == 0 {
		return []IndexPage{{Number: 1, TotalPages: 0}}
	}

	pages := make([]IndexPage, 0, total)
	for n := 1; n <= total; n++ {
		start := (n - 1) * perPage
		end := min(start+perPage, len(posts))
		pages = append(pages, IndexPage{
			Number:     n,
			TotalPages: total,
			Posts:      posts[start:end],
		})
	}
	return pages
}
