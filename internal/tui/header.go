package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/logsearch/internal/model"
	"github.com/altinukshini/logsearch/internal/ui"
)

func RenderHeader(root string, res *model.SearchResults, width int) string {
	left := lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.Color("#F9FAFB")).
		Render(fmt.Sprintf(" logsearch | %s", root))

	counts := ""
	if res != nil {
		counts = ui.StyleText.Render(fmt.Sprintf("text: %d", len(res.Text))) + "  " +
			ui.StyleJSONL.Render(fmt.Sprintf("jsonl: %d ", len(res.JSONL)))
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(counts)
	if gap < 0 {
		gap = 0
	}
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(ui.ColorHighlight).
		Width(width).
		Render(left + padding + counts)
}
