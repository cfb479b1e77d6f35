package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/logsearch/internal/search"
)

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorHighlight = lipgloss.Color("#1F2937")

	StylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleBold    = lipgloss.NewStyle().Bold(true)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleCursor  = lipgloss.NewStyle().Background(ColorHighlight)
	StyleText    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleJSONL   = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)

	StyleMatch = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FCD34D")).
			Background(lipgloss.Color("#78350F"))
)

// HighlightMatches renders every case-insensitive occurrence of query in
// content with StyleMatch.
func HighlightMatches(content, query string) string {
	return renderSpans(content, search.MatchSpans(content, query), StyleMatch.Render)
}

func renderSpans(content string, spans [][2]int, render func(...string) string) string {
	if len(spans) == 0 {
		return content
	}
	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		b.WriteString(content[prev:sp[0]])
		b.WriteString(render(content[sp[0]:sp[1]]))
		prev = sp[1]
	}
	b.WriteString(content[prev:])
	return b.String()
}
