// Package terminal renders build reports as an ANSI-colored summary.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"github.com/menteora/quill/core"
)

const defaultWidth = 100

// Renderer prints a build report.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the report summary to w.
func (r *Renderer) Render(w io.Writer, rep *core.Report) error {
	width := r.termWidth()

	row1 := styleTitle.Render("✓ Site built")
	if rep.Duration > 0 {
		row1 += "  " + styleDuration.Render(formatDuration(rep.Duration))
	}
	fmt.Fprintln(w, row1)
	if rep.OutputDir != "" {
		fmt.Fprintln(w, styleMeta.Render(truncate(rep.OutputDir, width)))
	}

	fmt.Fprintln(w)
	writeStats(w, rep)

	if len(rep.Warnings) > 0 {
		writeSeparator(w, width)
		fmt.Fprintln(w, styleWarnBadge.Render(fmt.Sprintf("%d %s", len(rep.Warnings), plural(len(rep.Warnings), "warning", "warnings"))))
		for _, msg := range rep.Warnings {
			fmt.Fprintln(w, styleWarnText.Render("  ! "+truncate(msg, width-4)))
		}
	}
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writeStats renders counters in two rows: values then labels.
func writeStats(w io.Writer, rep *core.Report) {
	type stat struct {
		value int
		label string
	}
	stats := []stat{
		{rep.Pages, "PAGES"},
		{rep.Posts, "POSTS"},
		{rep.Tags, "TAGS"},
		{rep.IndexPages, "INDEX"},
	}
	if rep.Images > 0 {
		stats = append(stats, stat{rep.Images, "IMAGES"})
	}
	if rep.Variants > 0 {
		stats = append(stats, stat{rep.Variants, "VARIANTS"})
	}
	if rep.Static > 0 {
		stats = append(stats, stat{rep.Static, "ASSETS"})
	}

	var values, labels []string
	for _, s := range stats {
		formatted := formatNumber(s.value)
		colWidth := max(len(formatted), len(s.label))
		values = append(values, fmt.Sprintf("%*s", colWidth, formatted))
		labels = append(labels, fmt.Sprintf("%-*s", colWidth, s.label))
	}

	fmt.Fprintln(w, "  "+styleStat.Render(strings.Join(values, "    ")))
	fmt.Fprintln(w, "  "+styleStatLabel.Render(strings.Join(labels, "    ")))
}

// writeSeparator renders a horizontal rule.
func writeSeparator(w io.Writer, width int) {
	n := min(width, 72)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", n)))
}

// formatNumber adds thousands separators: 12345 -> "12,345".
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
}

// truncate shortens s to at most n display cells, marking the cut with "…".
func truncate(s string, n int) string {
	if n <= 1 || lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
