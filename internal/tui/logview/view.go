package logview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/altinukshini/logsearch/internal/search"
	"github.com/altinukshini/logsearch/internal/ui"
)

type Model struct {
	viewport viewport.Model
	content  string
	lines    []string
	title    string
	width    int
	height   int
	ready    bool

	// In-file search
	searchInput textinput.Model
	searching   bool
	searchQuery string
	matchLines  []int // 0-based line indices of matches
	matchIndex  int

	// Line opened from a search hit
	jumpLine int // 0-based, -1 = none

	following bool
}

func New() Model {
	ti := textinput.New()
	ti.Placeholder = "Search in file..."
	ti.CharLimit = 256
	return Model{searchInput: ti, jumpLine: -1}
}

// SetContent shows a new file and clears any in-file search. query, when
// non-empty, highlights its occurrences the way the results list does.
func (m *Model) SetContent(title, content, query string) {
	m.title = title
	m.setLines(content)
	m.searchQuery = query
	m.matchIndex = 0
	m.jumpLine = -1
	m.findMatches()
	if m.ready {
		m.viewport.SetContent(m.applyHighlights())
		m.viewport.GotoTop()
	}
}

func (m *Model) setLines(content string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	m.content = strings.TrimSuffix(content, "\n")
	m.lines = strings.Split(m.content, "\n")
}

// GotoLine marks a 1-based line and scrolls to it.
func (m *Model) GotoLine(line int) {
	if line <= 0 {
		return
	}
	m.jumpLine = line - 1
	for i, idx := range m.matchLines {
		if idx == m.jumpLine {
			m.matchIndex = i
		}
	}
	if m.ready {
		m.viewport.SetContent(m.applyHighlights())
		m.viewport.SetYOffset(line - 1)
	}
}

// UpdateContent replaces the file content while preserving the scroll
// position. A view scrolled to the bottom stays at the bottom.
func (m *Model) UpdateContent(content string) {
	m.setLines(content)
	m.findMatches()
	if m.matchIndex >= len(m.matchLines) {
		m.matchIndex = 0
	}
	if !m.ready {
		return
	}

	wasAtBottom := m.viewport.AtBottom()
	prevOffset := m.viewport.YOffset

	m.viewport.SetContent(m.applyHighlights())

	if wasAtBottom {
		m.viewport.GotoBottom()
	} else {
		maxOffset := m.viewport.TotalLineCount() - m.viewport.VisibleLineCount()
		if maxOffset < 0 {
			maxOffset = 0
		}
		if prevOffset > maxOffset {
			m.viewport.GotoBottom()
		} else {
			m.viewport.SetYOffset(prevOffset)
		}
	}
}

func (m *Model) SetFollowing(following bool) {
	m.following = following
}

func (m Model) IsSearching() bool {
	return m.searching
}

func (m Model) Title() string {
	return m.title
}

// MatchCount returns the number of lines matching the in-file query.
func (m Model) MatchCount() int {
	return len(m.matchLines)
}

// CurrentMatchLine returns the 1-based line of the selected match, or 0.
func (m Model) CurrentMatchLine() int {
	if m.matchIndex < 0 || m.matchIndex >= len(m.matchLines) {
		return 0
	}
	return m.matchLines[m.matchIndex] + 1
}

func (m Model) YOffset() int {
	return m.viewport.YOffset
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				m.searchQuery = m.searchInput.Value()
				m.jumpLine = -1
				m.findMatches()
				m.matchIndex = 0
				m.viewport.SetContent(m.applyHighlights())
				if len(m.matchLines) > 0 {
					m.viewport.SetYOffset(m.matchLines[0])
				}
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			case "esc":
				m.searching = false
				m.searchInput.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, ui.Keys.Search):
			m.searching = true
			m.searchInput.SetValue("")
			return m, m.searchInput.Focus()
		case key.Matches(msg, ui.Keys.NextMatch):
			m.stepMatch(1)
			return m, nil
		case key.Matches(msg, ui.Keys.PrevMatch):
			m.stepMatch(-1)
			return m, nil
		case key.Matches(msg, ui.Keys.Top):
			m.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, ui.Keys.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 2
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
			if m.content != "" {
				m.viewport.SetContent(m.applyHighlights())
				if m.jumpLine >= 0 {
					m.viewport.SetYOffset(m.jumpLine)
				}
			}
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) stepMatch(delta int) {
	n := len(m.matchLines)
	if n == 0 {
		return
	}
	m.jumpLine = -1
	m.matchIndex = (m.matchIndex + delta + n) % n
	m.viewport.SetContent(m.applyHighlights())
	m.viewport.SetYOffset(m.matchLines[m.matchIndex])
}

func (m *Model) findMatches() {
	m.matchLines = nil
	if m.searchQuery == "" {
		return
	}
	query := search.Fold(m.searchQuery)
	for i, line := range m.lines {
		if strings.Contains(search.Fold(line), query) {
			m.matchLines = append(m.matchLines, i)
		}
	}
}

// applyHighlights renders line numbers, query occurrences and the current
// line.
func (m Model) applyHighlights() string {
	current := lipgloss.NewStyle().Background(lipgloss.Color("#92400E")).Bold(true)

	currentLine := m.jumpLine
	if currentLine < 0 && m.matchIndex < len(m.matchLines) {
		currentLine = m.matchLines[m.matchIndex]
	}

	width := len(fmt.Sprint(len(m.lines)))
	out := make([]string, len(m.lines))
	for i, line := range m.lines {
		gutter := ui.StyleMuted.Render(fmt.Sprintf("%*d ", width, i+1))
		switch {
		case i == currentLine:
			out[i] = gutter + current.Render(line)
		case m.searchQuery != "":
			out[i] = gutter + ui.HighlightMatches(line, m.searchQuery)
		default:
			out[i] = gutter + line
		}
	}
	return strings.Join(out, "\n")
}

func (m Model) View() string {
	if m.content == "" && m.title == "" {
		return "\n  Select a match to view its file"
	}

	liveTag := ""
	if m.following {
		liveTag = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorSuccess).Render(" [FOLLOW]")
	}
	headerParts := fmt.Sprintf(" %s%s  %3.f%%", m.title, liveTag, m.viewport.ScrollPercent()*100)
	if m.searchQuery != "" && len(m.matchLines) > 0 {
		headerParts += fmt.Sprintf("  [%d/%d matches]", m.matchIndex+1, len(m.matchLines))
	} else if m.searchQuery != "" {
		headerParts += "  [no matches]"
	}
	header := ui.StyleBold.Render(headerParts)

	if m.searching {
		return header + "\n  /" + m.searchInput.View() + "\n" + m.viewport.View()
	}
	return header + "\n" + m.viewport.View()
}

func (m Model) Content() string {
	return m.content
}
