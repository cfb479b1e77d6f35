package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/altinukshini/logsearch/internal/finder"
	"github.com/altinukshini/logsearch/internal/model"
	"github.com/altinukshini/logsearch/internal/tui/logview"
	"github.com/altinukshini/logsearch/internal/tui/searchview"
	"github.com/altinukshini/logsearch/internal/ui"
	"github.com/altinukshini/logsearch/internal/workspace"
)

type Options struct {
	Finder *finder.Finder
	// Query seeds the input; a non-empty pattern is searched on start.
	Query model.SearchQuery
	// Cwd is the directory result paths are shown relative to.
	Cwd string
	// Changes, when set, re-runs the search and reloads the open file on
	// every receive.
	Changes <-chan struct{}
}

type App struct {
	finder  *finder.Finder
	query   model.SearchQuery
	cwd     string
	changes <-chan struct{}

	searchView searchview.Model
	logView    logview.Model

	logOpen  bool
	openFile string

	width    int
	height   int
	status   string
	showHelp bool
}

func NewApp(opts Options) App {
	lv := logview.New()
	lv.SetFollowing(opts.Changes != nil)
	return App{
		finder:     opts.Finder,
		query:      opts.Query,
		cwd:        opts.Cwd,
		changes:    opts.Changes,
		searchView: searchview.New(opts.Cwd, opts.Query.Pattern),
		logView:    lv,
		status:     "Ready",
	}
}

// Run draws the app on the terminal until the user quits or ctx ends.
func Run(ctx context.Context, app App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.searchView.Init()}
	if a.query.Pattern != "" {
		cmds = append(cmds, a.executeSearch())
	}
	if a.changes != nil {
		cmds = append(cmds, a.waitForChange())
	}
	return tea.Batch(cmds...)
}

// executeSearch runs a.query. Replies for any other query are dropped in
// Update, so a slow search cannot overwrite a newer one.
func (a App) executeSearch() tea.Cmd {
	f := a.finder
	q := a.query
	return func() tea.Msg {
		res, err := f.Find(context.Background(), q)
		return ui.SearchDoneMsg{Query: q, Results: res, Err: err}
	}
}

func (a App) loadFile(path string, line int, reload bool) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		return ui.FileLoadedMsg{Path: path, Content: string(data), Line: line, Reload: reload, Err: err}
	}
}

func (a App) waitForChange() tea.Cmd {
	ch := a.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ui.WorkspaceChangedMsg{}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()
		return &a, nil

	case ui.SearchDoneMsg:
		if msg.Query != a.query {
			return &a, nil
		}
		if msg.Err != nil {
			a.status = "Search failed: " + msg.Err.Error()
		} else {
			a.status = fmt.Sprintf("%d matches", msg.Results.TotalCount())
		}
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		return &a, cmd

	case ui.FileLoadedMsg:
		if msg.Err != nil {
			a.status = fmt.Sprintf("Cannot open %s: %v", workspace.Rel(a.cwd, msg.Path), msg.Err)
			return &a, nil
		}
		if msg.Reload {
			if a.logOpen && a.openFile == msg.Path {
				a.logView.UpdateContent(msg.Content)
			}
			return &a, nil
		}
		a.openFile = msg.Path
		a.logOpen = true
		a.logView.SetContent(workspace.Rel(a.cwd, msg.Path), msg.Content, a.searchView.Query())
		a.propagateSize()
		a.logView.GotoLine(msg.Line)
		a.status = fmt.Sprintf("%s:%d", workspace.Rel(a.cwd, msg.Path), msg.Line)
		return &a, nil

	case ui.WorkspaceChangedMsg:
		a.status = "Workspace changed at " + time.Now().Format(time.TimeOnly)
		cmds = append(cmds, a.waitForChange())
		if a.query.Pattern != "" {
			cmds = append(cmds, a.executeSearch())
		}
		if a.logOpen {
			cmds = append(cmds, a.loadFile(a.openFile, 0, true))
		}
		return &a, tea.Batch(cmds...)

	case ui.StatusMsg:
		a.status = msg.Text
		return &a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return &a, tea.Quit
		}
		if a.showHelp {
			a.showHelp = false
			return &a, nil
		}
		if a.logOpen {
			return a.updateLogView(msg)
		}
		return a.updateSearchView(msg)
	}

	var cmd tea.Cmd
	if a.logOpen {
		a.logView, cmd = a.logView.Update(msg)
	} else {
		a.searchView, cmd = a.searchView.Update(msg)
	}
	return &a, cmd
}

func (a App) updateLogView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !a.logView.IsSearching() {
		switch {
		case key.Matches(msg, ui.Keys.Back), msg.String() == "q":
			a.logOpen = false
			a.openFile = ""
			a.status = "Back to results"
			return &a, nil
		case key.Matches(msg, ui.Keys.Help):
			a.showHelp = true
			return &a, nil
		}
	}
	var cmd tea.Cmd
	a.logView, cmd = a.logView.Update(msg)
	return &a, cmd
}

func (a App) updateSearchView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searchView.IsInputMode() {
		if key.Matches(msg, ui.Keys.Back) && !a.searchView.HasResults() {
			return &a, tea.Quit
		}
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		if msg.String() == "enter" {
			if query := a.searchView.Query(); query != "" {
				a.query.Pattern = query
				a.searchView.SetLoading()
				a.status = "Searching..."
				return &a, tea.Batch(cmd, a.executeSearch())
			}
		}
		return &a, cmd
	}

	switch {
	case key.Matches(msg, ui.Keys.Quit), key.Matches(msg, ui.Keys.Back):
		return &a, tea.Quit
	case key.Matches(msg, ui.Keys.Help):
		a.showHelp = true
		return &a, nil
	case key.Matches(msg, ui.Keys.Scope):
		a.query.Scope = nextScope(a.query.Scope)
		a.status = "Scope: " + string(a.query.Scope)
		if a.query.Pattern != "" {
			a.searchView.SetLoading()
			return &a, a.executeSearch()
		}
		return &a, nil
	case key.Matches(msg, ui.Keys.Enter):
		if hit := a.searchView.SelectedHit(); hit != nil {
			a.status = "Opening " + workspace.Rel(a.cwd, hit.File) + "..."
			return &a, a.loadFile(hit.File, hit.Line, false)
		}
		return &a, nil
	}
	var cmd tea.Cmd
	a.searchView, cmd = a.searchView.Update(msg)
	return &a, cmd
}

func nextScope(s model.Scope) model.Scope {
	switch s {
	case model.ScopeAll, "":
		return model.ScopeText
	case model.ScopeText:
		return model.ScopeJSONL
	default:
		return model.ScopeAll
	}
}

func (a *App) propagateSize() {
	// header(1) + status(1) + pane border top and bottom(2)
	contentH := a.height - 4
	if contentH < 1 {
		contentH = 1
	}
	a.searchView, _ = a.searchView.Update(
		tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
	a.logView, _ = a.logView.Update(
		tea.WindowSizeMsg{Width: a.width - 4, Height: contentH})
}

// --- View ---

func (a App) View() string {
	root := ""
	if a.finder != nil {
		root = workspace.Rel(a.cwd, a.finder.Layout().Root)
	}
	header := RenderHeader(root, a.searchView.Results(), a.width)

	contentH := a.height - 4
	if contentH < 1 {
		contentH = 1
	}
	style := ui.StylePaneFocused.Width(a.width - 2).Height(contentH)

	mode := "SEARCH"
	var content string
	switch {
	case a.showHelp:
		mode = "HELP"
		content = style.Render(renderHelp())
	case a.logOpen:
		mode = "FILE"
		content = style.Render(a.logView.View())
	default:
		content = style.Render(a.searchView.View())
	}

	statusBar := RenderStatusBar(mode, a.status, a.contextHints(), a.width)

	// header(1) + statusbar(1)
	maxContentLines := a.height - 2
	if maxContentLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > maxContentLines {
			content = strings.Join(lines[:maxContentLines], "\n")
		}
	}

	return header + "\n" + content + "\n" + statusBar
}

func (a App) contextHints() string {
	switch {
	case a.showHelp:
		return "any key: close"
	case a.logOpen && a.logView.IsSearching():
		return "enter:find  esc:cancel"
	case a.logOpen:
		return "/:find  n/N:match  g/G:top/bottom  esc:back"
	case a.searchView.IsInputMode():
		return "enter:search  esc:results"
	default:
		return "enter:open  j/k:move  tab:scope  /:search  ?:help  q:quit"
	}
}

func renderHelp() string {
	var b strings.Builder
	b.WriteString(ui.StyleBold.Render("  Keys") + "\n\n")
	rows := [][2]string{
		{"/", "new search (results) or find in file (file view)"},
		{"enter", "run search / open selected match"},
		{"j/k, up/down", "move selection or scroll"},
		{"pgup/pgdn", "scroll a page"},
		{"tab", "cycle scope: all, text, jsonl"},
		{"n/N", "next / previous match in file"},
		{"g/G", "top / bottom of file"},
		{"esc", "back"},
		{"q, ctrl+c", "quit"},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-14s %s\n", r[0], ui.StyleMuted.Render(r[1])))
	}
	return b.String()
}
