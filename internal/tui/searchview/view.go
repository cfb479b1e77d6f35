package searchview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/logsearch/internal/model"
	"github.com/altinukshini/logsearch/internal/render"
	"github.com/altinukshini/logsearch/internal/ui"
)

type Mode int

const (
	ModeInput Mode = iota
	ModeResults
)

// Hit is one selectable result row: a line in a file that can be opened.
type Hit struct {
	Kind  string // "text" or "jsonl"
	File  string
	Line  int
	Label string
}

type Model struct {
	input    textinput.Model
	viewport viewport.Model
	results  *model.SearchResults
	hits     []Hit
	cwd      string
	mode     Mode
	cursor   int
	width    int
	height   int
	loading  bool
	errMsg   string
	ready    bool
}

func New(cwd, query string) Model {
	ti := textinput.New()
	ti.Placeholder = "Search logs (case-insensitive)"
	ti.CharLimit = 256
	ti.SetValue(query)
	ti.Focus()

	return Model{input: ti, cwd: cwd}
}

func (m Model) IsInputMode() bool {
	return m.mode == ModeInput
}

func (m Model) HasResults() bool {
	return m.results != nil
}

func (m Model) Results() *model.SearchResults {
	return m.results
}

func (m Model) Query() string {
	return m.input.Value()
}

// SetLoading marks a search as in flight.
func (m *Model) SetLoading() {
	m.loading = true
	m.errMsg = ""
}

// FocusInput switches to typing a new query.
func (m *Model) FocusInput() tea.Cmd {
	m.mode = ModeInput
	return m.input.Focus()
}

func (m Model) SelectedHit() *Hit {
	if m.cursor < 0 || m.cursor >= len(m.hits) {
		return nil
	}
	return &m.hits[m.cursor]
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.SearchDoneMsg:
		m.loading = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		prevCursor := m.cursor
		sameQuery := m.results != nil && msg.Results != nil && m.results.Query.Pattern == msg.Results.Query.Pattern
		m.results = msg.Results
		m.hits = buildHits(m.cwd, msg.Results)
		m.cursor = 0
		if sameQuery && prevCursor < len(m.hits) {
			m.cursor = prevCursor
		}
		m.mode = ModeResults
		m.input.Blur()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeInput {
			switch msg.String() {
			case "enter":
				if m.input.Value() != "" {
					return m, nil // parent dispatches the search
				}
			case "esc":
				if m.results != nil {
					m.mode = ModeResults
					m.input.Blur()
				}
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, ui.Keys.Down):
			if m.cursor < len(m.hits)-1 {
				m.cursor++
				m.refresh()
				m.keepCursorVisible()
			}
			return m, nil
		case key.Matches(msg, ui.Keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.refresh()
				m.keepCursorVisible()
			}
			return m, nil
		case key.Matches(msg, ui.Keys.Search):
			m.mode = ModeInput
			return m, m.input.Focus()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		h := msg.Height - 2
		if h < 1 {
			h = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = h
		}
		m.refresh()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	if m.ready && m.results != nil {
		m.viewport.SetContent(m.renderResults())
	}
}

// keepCursorVisible scrolls so the selected row stays on screen. Rows start
// after the two summary lines and the section heading.
func (m *Model) keepCursorVisible() {
	if !m.ready {
		return
	}
	row := m.cursorRow()
	if row < m.viewport.YOffset {
		m.viewport.SetYOffset(row)
	} else if row >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(row - m.viewport.Height + 1)
	}
}

func (m Model) cursorRow() int {
	row := 3 // summary, hints, blank
	if m.results.Query.Scope.IncludesText() {
		row++ // heading
		if m.cursor < len(m.results.Text) {
			return row + m.cursor
		}
		row += max(len(m.results.Text), 1) + 1
	}
	row++ // heading
	return row + m.cursor - len(m.results.Text)
}

func buildHits(cwd string, res *model.SearchResults) []Hit {
	if res == nil {
		return nil
	}
	hits := make([]Hit, 0, res.TotalCount())
	for _, tm := range res.Text {
		hits = append(hits, Hit{
			Kind:  "text",
			File:  tm.File,
			Line:  tm.Line,
			Label: render.TextLine(cwd, tm),
		})
	}
	for _, jm := range res.JSONL {
		hits = append(hits, Hit{
			Kind:  "jsonl",
			File:  res.JSONLFile,
			Line:  jm.Line,
			Label: render.JSONLLine(jm),
		})
	}
	return hits
}

func (m Model) renderResults() string {
	res := m.results
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %d text, %d jsonl matches for %q\n", len(res.Text), len(res.JSONL), res.Query.Pattern))
	b.WriteString(ui.StyleMuted.Render("  enter:open  j/k:navigate  /:new search  q:quit") + "\n\n")

	scope := res.Query.Scope
	if scope == "" {
		scope = model.ScopeAll
	}
	if scope.IncludesText() {
		b.WriteString("  " + ui.StyleText.Bold(true).Render(render.TextHeading) + "\n")
		m.writeRows(&b, 0, len(res.Text))
	}
	if scope.IncludesJSONL() {
		if scope.IncludesText() {
			b.WriteString("\n")
		}
		b.WriteString("  " + ui.StyleJSONL.Bold(true).Render(render.JSONLHeading) + "\n")
		m.writeRows(&b, len(res.Text), len(m.hits))
	}
	return b.String()
}

func (m Model) writeRows(b *strings.Builder, from, to int) {
	if from >= to {
		b.WriteString(ui.StyleMuted.Render("  "+render.NoMatches) + "\n")
		return
	}
	for i := from; i < to; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + ui.HighlightMatches(m.hits[i].Label, m.results.Query.Pattern)
		if i == m.cursor {
			line = ui.StyleCursor.Render(line)
		}
		b.WriteString(line + "\n")
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("  " + m.input.View() + "\n")

	switch {
	case m.loading:
		b.WriteString("\n  Searching...")
	case m.errMsg != "":
		b.WriteString("\n  " + ui.StyleWarning.Render("Search failed: "+m.errMsg))
	case m.results == nil:
		b.WriteString("\n" + ui.StyleMuted.Render("  Type a query and press enter"))
	case m.ready:
		b.WriteString(m.viewport.View())
	}
	return b.String()
}
