package ui

import (
	"github.com/altinukshini/logsearch/internal/model"
)

// SearchDoneMsg carries the outcome of the search run for Query.
type SearchDoneMsg struct {
	Query   model.SearchQuery
	Results *model.SearchResults
	Err     error
}

// FileLoadedMsg carries a log file opened from a search hit. Line is the
// 1-based line to jump to; Reload keeps the current scroll position instead.
type FileLoadedMsg struct {
	Path    string
	Content string
	Line    int
	Reload  bool
	Err     error
}

// WorkspaceChangedMsg is sent when a watched log file changed on disk.
type WorkspaceChangedMsg struct{}

type StatusMsg struct {
	Text string
}
