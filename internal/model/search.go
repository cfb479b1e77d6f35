package model

import (
	"fmt"
	"strings"
)

type Scope string

const (
	ScopeAll   Scope = "all"
	ScopeText  Scope = "text"
	ScopeJSONL Scope = "jsonl"
)

// ParseScope returns the scope named by s. Matching ignores case and
// surrounding whitespace.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeAll:
		return ScopeAll, nil
	case ScopeText:
		return ScopeText, nil
	case ScopeJSONL:
		return ScopeJSONL, nil
	}
	return "", fmt.Errorf("unknown scope %q (want all, text or jsonl)", s)
}

func (s Scope) IncludesText() bool  { return s == ScopeAll || s == ScopeText }
func (s Scope) IncludesJSONL() bool { return s == ScopeAll || s == ScopeJSONL }

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (want text or json)", s)
}

// TextMatch is a single matching line from a plain-text log.
type TextMatch struct {
	File    string
	Line    int // 1-based
	Content string
}

// JSONLMatch holds the original values of a matching JSONL record. Values
// keep their decoded JSON types (string, json.Number, bool, nil, map, slice).
type JSONLMatch struct {
	Line      int `json:"-"` // 1-based line of the record in its file
	Timestamp any `json:"timestamp"`
	Author    any `json:"author"`
	Entry     any `json:"entry"`
}

type SearchQuery struct {
	Pattern string
	Scope   Scope
	Limit   int
}

type SearchResults struct {
	Query     SearchQuery
	Root      string // workspace root the files were discovered under
	TextFiles []string
	JSONLFile string
	Text      []TextMatch
	JSONL     []JSONLMatch
}

func (r *SearchResults) TotalCount() int {
	if r == nil {
		return 0
	}
	return len(r.Text) + len(r.JSONL)
}
