package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#B4530A", Dark: "#F6A04D"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#8A8A8A"}
	errorColor  = lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"}

	heroTitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	taglineStyle       = lipgloss.NewStyle().Italic(true).Foreground(mutedColor)
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	helperStyle        = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle         = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	currentLineStyle   = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	selectedStyle      = lipgloss.NewStyle().Bold(true)
	keyStyle           = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	disabledKeyStyle   = lipgloss.NewStyle().Foreground(mutedColor).Strikethrough(true)
	statusBarStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	answerBoxStyle     = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(accentColor).
				Padding(0, 1)
)
