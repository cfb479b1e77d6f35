package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MarkStart = "\033[33m"
	MarkEnd   = "\033[0m"
)

// MatchSpans returns the byte ranges [start, end) of every
// case-insensitive, non-overlapping occurrence of query in content, in order.
// Ranges always cover whole runes of content.
func MatchSpans(content, query string) [][2]int {
	if query == "" || content == "" {
		return nil
	}
	needle := Fold(query)
	folded, offsets := foldWithOffsets(content)

	var spans [][2]int
	for cursor := 0; cursor <= len(folded); {
		idx := strings.Index(folded[cursor:], needle)
		if idx < 0 {
			break
		}
		start := cursor + idx
		end := start + len(needle)

		origEnd := len(content)
		if end < len(folded) {
			origEnd = offsets[end]
		}
		spans = append(spans, [2]int{offsets[start], origEnd})
		cursor = end
	}
	return spans
}

// Highlight wraps every case-insensitive, non-overlapping occurrence of query
// in content with MarkStart and MarkEnd. Text outside the markers, and the
// matched spans themselves, keep the casing of content.
func Highlight(content, query string) string {
	spans := MatchSpans(content, query)
	if len(spans) == 0 {
		return content
	}

	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		b.WriteString(content[prev:sp[0]])
		b.WriteString(MarkStart)
		b.WriteString(content[sp[0]:sp[1]])
		b.WriteString(MarkEnd)
		prev = sp[1]
	}
	b.WriteString(content[prev:])
	return b.String()
}

// StripHighlight removes highlight markers from s.
func StripHighlight(s string) string {
	return strings.NewReplacer(MarkStart, "", MarkEnd, "").Replace(s)
}

// foldWithOffsets lowercases s rune by rune and returns, for each byte of
// the folded string, the byte offset in s of the rune it came from.
func foldWithOffsets(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s))

	var buf [utf8.UTFMax]byte
	for i, r := range s {
		n := utf8.EncodeRune(buf[:], unicode.ToLower(r))
		b.Write(buf[:n])
		for j := 0; j < n; j++ {
			offsets = append(offsets, i)
		}
	}
	return b.String(), offsets
}
