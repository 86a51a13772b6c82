package core

import (
	"sort"
	"strings"
	"unicode"
)

// TagEntry groups the posts carrying one tag. Count always equals len(Posts).
type TagEntry struct {
	Name  string // display name, the first spelling seen
	Slug  string
	Posts []PostSummary
	Count int
}

// URL is the site-relative location of the tag's listing page.
func (e *TagEntry) URL() string {
	return TagURL(e.Slug)
}

// TagURL is the site-relative location of a tag listing page.
func TagURL(slug string) string {
	return "tags/" + slug + ".html"
}

// Slugify lowercases s, drops everything that is not a letter, digit,
// underscore, space or hyphen, and collapses runs of spaces and hyphens
// into a single hyphen.
func Slugify(s string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			sep = true
		}
	}
	return strings.Trim(b.String(), "-_")
}

// AggregateTags groups posts by tag slug. Tags whose slug would be empty are
// skipped. When two spellings share a slug the first one seen names the
// entry. Each entry's posts are ordered newest-first.
func AggregateTags(posts []*Post) map[string]*TagEntry {
	entries := make(map[string]*TagEntry)
	for _, p := range posts {
		added := make(map[string]bool)
		for _, tag := range p.Tags {
			slug := Slugify(tag)
			if slug == "" || added[slug] {
				continue
			}
			added[slug] = true

			e, ok := entries[slug]
			if !ok {
				e = &TagEntry{Name: tag, Slug: slug}
				entries[slug] = e
			}
			e.Posts = append(e.Posts, p.Summary())
			e.Count++
		}
	}

	for _, e := range entries {
		sort.SliceStable(e.Posts, func(i, j int) bool {
			if !e.Posts[i].Date.Equal(e.Posts[j].Date) {
				return e.Posts[i].Date.After(e.Posts[j].Date)
			}
			return e.Posts[i].URL < e.Posts[j].URL
		})
	}
	return entries
}

// SortedTags returns the entries ordered by display name, then slug.
func SortedTags(entries map[string]*TagEntry) []*TagEntry {
	out := make([]*TagEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}
