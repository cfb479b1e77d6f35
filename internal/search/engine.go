package search

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/altinukshini/logsearch/internal/model"
)

// Engine runs the text and JSONL scanners. It holds no state between calls
// apart from its logger, so one Engine may serve any number of searches.
type Engine struct {
	log *zap.Logger
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// SearchTextFiles scans files in order and returns at most limit matching
// lines. Unreadable files are skipped.
func SearchTextFiles(files []string, query string, limit int) []model.TextMatch {
	return defaultEngine.SearchTextFiles(files, query, limit)
}

// SearchJSONL scans a JSONL file and returns at most limit matching records.
// A missing file yields no matches.
func SearchJSONL(file, query string, limit int) []model.JSONLMatch {
	return defaultEngine.SearchJSONL(file, query, limit)
}

func (e *Engine) SearchTextFiles(files []string, query string, limit int) []model.TextMatch {
	matches := []model.TextMatch{}
	if limit <= 0 {
		return matches
	}
	needle := Fold(query)

	for _, file := range files {
		content, ok := e.readFile(file)
		if !ok {
			continue
		}
		for i, line := range splitLines(content) {
			if !strings.Contains(Fold(line), needle) {
				continue
			}
			matches = append(matches, model.TextMatch{
				File:    file,
				Line:    i + 1,
				Content: line,
			})
			if len(matches) >= limit {
				return matches
			}
		}
	}
	return matches
}

func (e *Engine) SearchJSONL(file, query string, limit int) []model.JSONLMatch {
	matches := []model.JSONLMatch{}
	if limit <= 0 {
		return matches
	}
	content, ok := e.readFile(file)
	if !ok {
		return matches
	}
	needle := Fold(query)

	skipped := 0
	defer func() {
		if skipped > 0 {
			e.log.Debug("skipped malformed jsonl lines",
				zap.String("file", file), zap.Int("count", skipped))
		}
	}()

	for i, line := range splitLines(content) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := parseRecord(line)
		if !ok {
			skipped++
			continue
		}
		if !strings.Contains(Fold(rec.searchText()), needle) {
			continue
		}
		matches = append(matches, model.JSONLMatch{
			Line:      i + 1,
			Timestamp: rec.timestamp,
			Author:    rec.author,
			Entry:     rec.entry,
		})
		if len(matches) >= limit {
			return matches
		}
	}
	return matches
}

func (e *Engine) readFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.log.Debug("skipping unreadable file", zap.String("file", path), zap.Error(err))
		return "", false
	}
	return string(data), true
}

// record is the parsed form of one JSONL line: the three searchable fields
// with their original values.
type record struct {
	timestamp any
	author    any
	entry     any
}

// parseRecord decodes exactly one JSON value from line. Lines that fail to
// decode, carry trailing data or decode to null are rejected.
func parseRecord(line string) (record, bool) {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return record{}, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return record{}, false
	}
	if v == nil {
		return record{}, false
	}

	obj, ok := v.(map[string]any)
	if !ok {
		// Scalars and arrays have no named fields.
		return record{}, true
	}
	return record{
		timestamp: obj["timestamp"],
		author:    obj["author"],
		entry:     obj["entry"],
	}, true
}

func (r record) searchText() string {
	return searchableText(r.timestamp) + " " + searchableText(r.author) + " " + searchableText(r.entry)
}

// FieldText renders a decoded JSONL field the way the scanner searches it.
func FieldText(v any) string { return searchableText(v) }

func searchableText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return ""
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}

// splitLines splits on \n and strips a trailing \r from each line. A final
// line terminator does not produce an extra empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Fold is the case folding shared by the scanners and the highlighter.
func Fold(s string) string {
	return strings.ToLower(s)
}
