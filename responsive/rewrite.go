package responsive

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// OriginalWidth is the srcset width descriptor of the unresized image.
const OriginalWidth = 1920

// Sizes is the sizes hint set on every rewritten <img>.
const Sizes = "(max-width: 600px) 480px, (max-width: 1200px) 1280px, 1920px"

// Match is an image reference the rewriter recognised.
type Match struct {
	Dir  string // everything up to and including "images/"
	Stem string
	Ext  string
}

// Src is the location of the smallest variant.
func (m Match) Src() string {
	return m.Dir + m.Stem + "-" + DefaultVariants[0].Label + m.Ext
}

// SrcSet lists every variant followed by the original.
func (m Match) SrcSet() string {
	parts := make([]string, 0, len(DefaultVariants)+1)
	for _, v := range DefaultVariants {
		parts = append(parts, m.Dir+m.Stem+"-"+v.Label+m.Ext+" "+strconv.Itoa(v.MaxWidth)+"w")
	}
	parts = append(parts, m.Dir+m.Stem+m.Ext+" "+strconv.Itoa(OriginalWidth)+"w")
	return strings.Join(parts, ", ")
}

// Rewriter points <img> tags that reference the images directory at their
// generated variants.
type Rewriter struct {
	pattern *regexp.Regexp
}

var defaultRewriter = NewRewriter("/")

// Rewrite rewrites html with a rewriter for a site served at "/".
func Rewrite(s string) string {
	return defaultRewriter.Rewrite(s)
}

// NewRewriter returns a rewriter that also recognises image paths prefixed
// with baseURL or its path component.
func NewRewriter(baseURL string) *Rewriter {
	prefixes := []string{`(?:\.{1,2}/)*`, `/`}
	if baseURL != "" && baseURL != "/" {
		prefixes = append(prefixes, regexp.QuoteMeta(ensureSlash(baseURL)))
		if u, err := url.Parse(baseURL); err == nil && u.Host != "" && u.Path != "" && u.Path != "/" {
			prefixes = append(prefixes, regexp.QuoteMeta(ensureSlash(u.Path)))
		}
	}
	return &Rewriter{
		pattern: regexp.MustCompile(`^((?:` + strings.Join(prefixes, "|") + `)images/)([^/?#]+)$`),
	}
}

// Match reports whether src references a file directly inside the images
// directory.
func (rw *Rewriter) Match(src string) (Match, bool) {
	m := rw.pattern.FindStringSubmatch(src)
	if m == nil {
		return Match{}, false
	}
	name := m[2]
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if ext == "" || stem == "" {
		return Match{}, false
	}
	return Match{Dir: m[1], Stem: stem, Ext: ext}, true
}

// Rewrite returns s with every matching <img> tag rewritten. All other
// bytes are copied through unchanged.
func (rw *Rewriter) Rewrite(s string) string {
	if !strings.Contains(s, "images/") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s) + 512)

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			b.Write(z.Raw())
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.Write(z.Raw())
			continue
		}

		// TagName and TagAttr lowercase the token buffer in place.
		raw := append([]byte(nil), z.Raw()...)
		if tag, ok := rw.rewriteImg(z, tt == html.SelfClosingTagToken); ok {
			b.WriteString(tag)
			continue
		}
		b.Write(raw)
	}

	return b.String()
}

func (rw *Rewriter) rewriteImg(z *html.Tokenizer, selfClosing bool) (string, bool) {
	name, more := z.TagName()
	if atom.Lookup(name) != atom.Img || !more {
		return "", false
	}

	var attrs []html.Attribute
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		attrs = append(attrs, html.Attribute{Key: string(key), Val: string(val)})
	}

	src := -1
	for i, a := range attrs {
		if a.Key == "src" {
			src = i
			break
		}
	}
	if src < 0 {
		return "", false
	}
	if listsSource(attrs, attrs[src].Val) {
		return "", false
	}
	m, ok := rw.Match(attrs[src].Val)
	if !ok {
		return "", false
	}

	attrs[src].Val = m.Src()
	attrs = setAttr(attrs, "srcset", m.SrcSet())
	attrs = setAttr(attrs, "sizes", Sizes)

	var b strings.Builder
	b.WriteString("<img")
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	if selfClosing {
		b.WriteString(" />")
	} else {
		b.WriteByte('>')
	}
	return b.String(), true
}

// listsSource reports whether the srcset attribute already names src as a
// candidate, which marks a tag that is responsive already.
func listsSource(attrs []html.Attribute, src string) bool {
	for _, a := range attrs {
		if a.Key != "srcset" {
			continue
		}
		for _, candidate := range strings.Split(a.Val, ",") {
			if f := strings.Fields(candidate); len(f) > 0 && f[0] == src {
				return true
			}
		}
	}
	return false
}

// setAttr replaces the first attribute named key, or appends it.
func setAttr(attrs []html.Attribute, key, val string) []html.Attribute {
	for i, a := range attrs {
		if a.Key == key {
			attrs[i].Val = val
			return attrs
		}
	}
	return append(attrs, html.Attribute{Key: key, Val: val})
}

func ensureSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
