// Package render prints search results as highlighted text sections or as a
// flat JSON array.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cli/go-gh/v2/pkg/jsonpretty"
	"github.com/cli/go-gh/v2/pkg/term"

	"github.com/altinukshini/logsearch/internal/model"
	"github.com/altinukshini/logsearch/internal/search"
	"github.com/altinukshini/logsearch/internal/workspace"
)

const (
	TextHeading  = "Text matches"
	JSONLHeading = "JSONL matches"
	NoMatches    = "(no matches)"
)

type Options struct {
	// Cwd is the directory text match paths are printed relative to.
	Cwd string
	// Highlight wraps query occurrences in ANSI markers.
	Highlight bool
}

// Text writes one section per scanner the query's scope selected.
func Text(w io.Writer, res *model.SearchResults, opts Options) error {
	heading := lipgloss.NewRenderer(w).NewStyle().Bold(true)
	scope := res.Query.Scope
	if scope == "" {
		scope = model.ScopeAll
	}
	hl := func(s string) string {
		if !opts.Highlight {
			return s
		}
		return search.Highlight(s, res.Query.Pattern)
	}

	var b strings.Builder
	if scope.IncludesText() {
		b.WriteString(heading.Render(TextHeading) + "\n")
		if len(res.Text) == 0 {
			b.WriteString(NoMatches + "\n")
		}
		for _, m := range res.Text {
			fmt.Fprintf(&b, "%s:%d: %s\n", relPath(opts.Cwd, m.File), m.Line, hl(m.Content))
		}
	}
	if scope.IncludesJSONL() {
		if scope.IncludesText() {
			b.WriteString("\n")
		}
		b.WriteString(heading.Render(JSONLHeading) + "\n")
		if len(res.JSONL) == 0 {
			b.WriteString(NoMatches + "\n")
		}
		for _, m := range res.JSONL {
			b.WriteString(hl(JSONLLine(m)) + "\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONLLine formats a record as "[timestamp] author: entry".
func JSONLLine(m model.JSONLMatch) string {
	return "[" + search.FieldText(m.Timestamp) + "] " + search.FieldText(m.Author) + ": " + search.FieldText(m.Entry)
}

// TextLine formats a text match as "path:line: content".
func TextLine(cwd string, m model.TextMatch) string {
	return relPath(cwd, m.File) + ":" + strconv.Itoa(m.Line) + ": " + m.Content
}

func relPath(cwd, path string) string {
	if cwd == "" {
		return path
	}
	return workspace.Rel(cwd, path)
}

type textRecord struct {
	Type    string `json:"type"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

type jsonlRecord struct {
	Type      string `json:"type"`
	Timestamp any    `json:"timestamp"`
	Author    any    `json:"author"`
	Entry     any    `json:"entry"`
}

// Records flattens results into tagged objects, text matches first. Paths
// are kept as discovered.
func Records(res *model.SearchResults) []any {
	out := make([]any, 0, res.TotalCount())
	for _, m := range res.Text {
		out = append(out, textRecord{Type: "text", File: m.File, Line: m.Line, Content: m.Content})
	}
	for _, m := range res.JSONL {
		out = append(out, jsonlRecord{Type: "jsonl", Timestamp: m.Timestamp, Author: m.Author, Entry: m.Entry})
	}
	return out
}

// MarshalRecords returns the compact JSON array of Records.
func MarshalRecords(res *model.SearchResults) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Records(res)); err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// JSON pretty-prints the flat record array, colorized when asked.
func JSON(w io.Writer, res *model.SearchResults, colorize bool) error {
	data, err := MarshalRecords(res)
	if err != nil {
		return err
	}
	if err := jsonpretty.Format(w, bytes.NewReader(data), "  ", colorize); err != nil {
		return fmt.Errorf("format results: %w", err)
	}
	return nil
}

// Terminal reports whether stdout is a terminal and whether it takes color,
// honouring NO_COLOR and CLICOLOR_FORCE.
func Terminal() (isTTY, color bool) {
	t := term.FromEnv()
	return t.IsTerminalOutput(), t.IsColorEnabled()
}
