package terminal

import "github.com/charmbracelet/lipgloss"

var (
	colorOK   = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34d399"} // emerald
	colorWarn = lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#fbbf24"} // amber

	// UI colors.
	colorBright = lipgloss.AdaptiveColor{Light: "#0f172a", Dark: "#f1f5f9"}
	colorDim    = lipgloss.AdaptiveColor{Light: "#94a3b8", Dark: "#64748b"}
)

var (
	styleTitle    = lipgloss.NewStyle().Foreground(colorOK).Bold(true)
	styleMeta     = lipgloss.NewStyle().Foreground(colorDim)
	styleDuration = lipgloss.NewStyle().Foreground(colorOK)

	styleStat      = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleStatLabel = lipgloss.NewStyle().Foreground(colorDim)

	styleWarnBadge = lipgloss.NewStyle().Foreground(colorWarn).Bold(true)
	styleWarnText  = lipgloss.NewStyle().Foreground(colorWarn)

	styleSeparator = lipgloss.NewStyle().Foreground(colorDim)
)
