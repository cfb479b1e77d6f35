package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighlightPreservesCasing(t *testing.T) {
	got := Highlight("Deploy deploy DePloy", "deploy")

	assert.Equal(t, 3, strings.Count(got, MarkStart))
	assert.Equal(t, 3, strings.Count(got, MarkEnd))
	want := MarkStart + "Deploy" + MarkEnd + " " +
		MarkStart + "deploy" + MarkEnd + " " +
		MarkStart + "DePloy" + MarkEnd
	assert.Equal(t, want, got)
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   string
		want    string
		count   int
	}{
		{
			name:    "no match",
			content: "nothing to see",
			query:   "absent",
			want:    "nothing to see",
		},
		{
			name:    "empty query",
			content: "abc",
			query:   "",
			want:    "abc",
		},
		{
			name:    "empty content",
			content: "",
			query:   "x",
			want:    "",
		},
		{
			name:    "non-overlapping",
			content: "aaaa",
			query:   "aa",
			want:    MarkStart + "aa" + MarkEnd + MarkStart + "aa" + MarkEnd,
			count:   2,
		},
		{
			name:    "odd overlap leaves remainder",
			content: "aaa",
			query:   "AA",
			want:    MarkStart + "aa" + MarkEnd + "a",
			count:   1,
		},
		{
			name:    "whole string",
			content: "ERROR",
			query:   "error",
			want:    MarkStart + "ERROR" + MarkEnd,
			count:   1,
		},
		{
			name:    "multibyte",
			content: "Grüße aus MÜNCHEN",
			query:   "münchen",
			want:    "Grüße aus " + MarkStart + "MÜNCHEN" + MarkEnd,
			count:   1,
		},
		{
			name:    "fold changes byte length",
			content: "Kelvin \u212A scale",
			query:   "k",
			want:    MarkStart + "K" + MarkEnd + "elvin " + MarkStart + "\u212A" + MarkEnd + " scale",
			count:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.content, tt.query)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.count, strings.Count(got, MarkStart))
			assert.Equal(t, tt.count, strings.Count(got, MarkEnd))
			assert.Equal(t, tt.content, StripHighlight(got))
		})
	}
}

func TestHighlightMarkerBalanceMatchesOccurrences(t *testing.T) {
	inputs := []struct{ content, query string }{
		{"the cat sat on the CAT mat", "cat"},
		{"xxxxxxx", "xx"},
		{"MiXeD mixed MIXED", "Mixed"},
		{"line without it", "zzz"},
		{"ab\tAB\nab", "ab"},
	}
	for _, in := range inputs {
		got := Highlight(in.content, in.query)
		occurrences := strings.Count(strings.ToLower(in.content), strings.ToLower(in.query))

		assert.Equal(t, occurrences, strings.Count(got, MarkStart), "content %q", in.content)
		assert.Equal(t, occurrences, strings.Count(got, MarkEnd), "content %q", in.content)
		assert.Equal(t, in.content, StripHighlight(got))
	}
}

func TestMatchSpans(t *testing.T) {
	tests := []struct {
		name    string
		content string
		query   string
		want    [][2]int
	}{
		{name: "empty query", content: "abc", query: "", want: nil},
		{name: "no match", content: "abc", query: "x", want: nil},
		{name: "case-insensitive", content: "Error error", query: "ERROR", want: [][2]int{{0, 5}, {6, 11}}},
		{name: "non-overlapping", content: "aaaa", query: "aa", want: [][2]int{{0, 2}, {2, 4}}},
		{name: "multi-byte runes", content: "héllo HÉLLO", query: "héllo", want: [][2]int{{0, 6}, {7, 13}}},
		{name: "existing escape codes", content: "\033[33mwarn\033[0m disk full", query: "disk", want: [][2]int{{14, 18}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchSpans(tt.content, tt.query))
		})
	}
}

func TestHighlightAgreesWithMatchSpans(t *testing.T) {
	content := "Chat, CHAT and chat"
	spans := MatchSpans(content, "chat")

	got := Highlight(content, "chat")
	assert.Equal(t, len(spans), strings.Count(got, MarkStart))
	for _, sp := range spans {
		assert.Contains(t, got, MarkStart+content[sp[0]:sp[1]]+MarkEnd)
	}
}
