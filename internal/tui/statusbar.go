package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/logsearch/internal/ui"
)

// RenderStatusBar draws the bottom line: a mode badge, the status text and
// the key hints for the active view, right-aligned.
func RenderStatusBar(mode, status, hints string, width int) string {
	badge := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Background(ui.ColorPrimary).
		Padding(0, 1).
		Render(mode)
	left := badge + ui.StyleMuted.Render("  "+status)
	help := ui.StyleMuted.Render(hints + " ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(help)
	if gap < 0 {
		gap = 0
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#111827")).
		Width(width).
		Render(left + padding + help)
}
