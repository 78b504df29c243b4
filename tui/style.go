package tui

import "github.com/charmbracelet/lipgloss"

// Style holds the lipgloss styles used to draw the lookup screen
type Style struct {
	Title      lipgloss.Style
	Muted      lipgloss.Style
	Suggestion lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Card       lipgloss.Style
	Big        lipgloss.Style
	Label      lipgloss.Style
}

// DefaultStyles returns styles that read on both light and dark terminals
func DefaultStyles() *Style {
	return &Style{
		Title:      lipgloss.NewStyle().Bold(true),
		Muted:      lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#777777", Dark: "#999999"}),
		Suggestion: lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(2).Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#B03060", Dark: "#DD7090"}),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B00020", Dark: "#FF6B6B"}),
		Card: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.AdaptiveColor{Light: "#CCCCCC", Dark: "#444444"}),
		Big:   lipgloss.NewStyle().Bold(true),
		Label: lipgloss.NewStyle().Width(12).Foreground(lipgloss.AdaptiveColor{Light: "#777777", Dark: "#999999"}),
	}
}
