// Package core defines the content model shared by readers and renderers:
// source documents, rendered posts, tag entries and pagination windows.
package core

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind distinguishes static pages from dated posts.
type Kind string

const (
	KindPage Kind = "page"
	KindPost Kind = "post"
)

const (
	// DateLayout is the layout of the date prefix of a post file name.
	DateLayout = "2006-01-02"
	// DisplayDateLayout is the layout used for dates shown to readers.
	DisplayDateLayout = "02 January 2006"
)

// tagPrefix marks an optional metadata line at the top of a document.
const tagPrefix = "tags:"

// Document is one source content unit after metadata extraction.
type Document struct {
	Kind  Kind
	Name  string // file name, e.g. "2024-01-02-hello.md"
	Stem  string // file name without extension
	Raw   string // full source text
	Body  string // source text with the tag line removed
	Tags  []string
	Title string

	// Date is set for posts only.
	Date time.Time
	// DateFallback reports that the file name carried no parseable date
	// and Date holds the time the document was loaded instead.
	DateFallback bool
}

// ParseDocument builds a Document from raw source text. It never fails:
// a post without a parseable date gets now as its date and DateFallback set.
func ParseDocument(kind Kind, name string, raw []byte, now time.Time) *Document {
	text := string(raw)
	d := &Document{
		Kind: kind,
		Name: name,
		Stem: Stem(name),
		Raw:  text,
	}

	d.Tags, d.Body = splitTags(text)
	if kind != KindPost {
		d.Tags = nil
	}

	d.Title = headingTitle(d.Body)
	if d.Title == "" {
		if kind == KindPage {
			d.Title = TitleFromStem(d.Stem)
		} else {
			d.Title = d.Stem
		}
	}

	if kind == KindPost {
		if t, ok := ParsePostDate(d.Stem); ok {
			d.Date = t
		} else {
			d.Date = now
			d.DateFallback = true
		}
	}

	return d
}

// Stem strips the last extension from a file name.
func Stem(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}

// ParsePostDate reads the YYYY-MM-DD prefix of a post stem.
func ParsePostDate(stem string) (time.Time, bool) {
	if len(stem) < len(DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, stem[:len(DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders t the way listings and post headers show it.
func FormatDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

// TitleFromStem turns "about-the-site" into "About The Site".
func TitleFromStem(stem string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	return cases.Title(language.English).String(s)
}

// splitTags removes a leading "tags:" line and returns the parsed tags
// together with the remaining body. Tags are trimmed, lowercased and
// de-duplicated in order of first appearance.
func splitTags(text string) ([]string, string) {
	first, rest, _ := strings.Cut(text, "\n")
	first = strings.TrimSuffix(first, "\r")
	if len(first) < len(tagPrefix) || !strings.EqualFold(first[:len(tagPrefix)], tagPrefix) {
		return nil, text
	}

	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(first[len(tagPrefix):], ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags, rest
}

// headingTitle returns the text of the first line when it is a heading.
func headingTitle(body string) string {
	first, _, _ := strings.Cut(body, "\n")
	first = strings.TrimSuffix(first, "\r")
	if !strings.HasPrefix(first, "#") {
		return ""
	}
	return strings.TrimSpace(strings.TrimLeft(first, "# "))
}
