package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/logsearch/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSearchTextFilesCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.txt", "Hello CHAT bot\nnothing here\nanother chat Line\n")

	got := SearchTextFiles([]string{file}, "chat", 1)

	want := []model.TextMatch{{File: file, Line: 1, Content: "Hello CHAT bot"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchTextFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchTextFilesAllMatches(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.txt", "Hello CHAT bot\nnothing here\nanother chat Line\n")

	got := SearchTextFiles([]string{file}, "ChAt", 10)

	want := []model.TextMatch{
		{File: file, Line: 1, Content: "Hello CHAT bot"},
		{File: file, Line: 3, Content: "another chat Line"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchTextFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchTextFilesLimitAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.log", "error one\nok\nerror two\n")
	second := writeFile(t, dir, "b.log", "error three\nerror four\n")

	tests := []struct {
		name  string
		limit int
		want  []model.TextMatch
	}{
		{
			name:  "stops inside first file",
			limit: 1,
			want:  []model.TextMatch{{File: first, Line: 1, Content: "error one"}},
		},
		{
			name:  "stops inside second file",
			limit: 3,
			want: []model.TextMatch{
				{File: first, Line: 1, Content: "error one"},
				{File: first, Line: 3, Content: "error two"},
				{File: second, Line: 1, Content: "error three"},
			},
		},
		{
			name:  "limit above total",
			limit: 50,
			want: []model.TextMatch{
				{File: first, Line: 1, Content: "error one"},
				{File: first, Line: 3, Content: "error two"},
				{File: second, Line: 1, Content: "error three"},
				{File: second, Line: 2, Content: "error four"},
			},
		},
		{
			name:  "zero limit",
			limit: 0,
			want:  []model.TextMatch{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SearchTextFiles([]string{first, second}, "ERROR", tt.limit)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SearchTextFiles() mismatch (-want +got):\n%s", diff)
			}
			assert.LessOrEqual(t, len(got), max(tt.limit, 0))
		})
	}
}

func TestSearchTextFilesKeepsGivenFileOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.log", "deploy a\n")
	z := writeFile(t, dir, "z.log", "deploy z\n")

	got := SearchTextFiles([]string{z, a}, "deploy", 10)

	require.Len(t, got, 2)
	assert.Equal(t, z, got[0].File)
	assert.Equal(t, a, got[1].File)
}

func TestSearchTextFilesSkipsMissingFile(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.log")
	present := writeFile(t, dir, "present.log", "first\nthe needle is here\n")

	got := SearchTextFiles([]string{missing, present}, "needle", 10)

	want := []model.TextMatch{{File: present, Line: 2, Content: "the needle is here"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchTextFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchTextFilesSkipsDirectory(t *testing.T) {
	dir := t.TempDir()
	present := writeFile(t, dir, "present.log", "needle\n")

	got := SearchTextFiles([]string{dir, present}, "needle", 10)

	require.Len(t, got, 1)
	assert.Equal(t, present, got[0].File)
}

func TestSearchTextFilesCRLF(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "win.log", "alpha\r\nBeta line\r\ngamma\r\n")

	got := SearchTextFiles([]string{file}, "beta", 10)

	want := []model.TextMatch{{File: file, Line: 2, Content: "Beta line"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchTextFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchTextFilesEmptyQueryMatchesEveryLine(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.txt", "one\n\nthree\n")

	got := SearchTextFiles([]string{file}, "", 10)

	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Line, got[1].Line, got[2].Line})
	assert.Equal(t, "", got[1].Content)
}

func TestSearchTextFilesNoTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.txt", "first\nlast match")

	got := SearchTextFiles([]string{file}, "MATCH", 10)

	want := []model.TextMatch{{File: file, Line: 2, Content: "last match"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchTextFiles() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchTextFilesIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.txt", "a chat\nb\nc chat\n")

	first := SearchTextFiles([]string{file}, "chat", 5)
	second := SearchTextFiles([]string{file}, "chat", 5)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated search differs (-first +second):\n%s", diff)
	}
}

func TestSearchJSONLIsRepeatable(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.jsonl", strings.Join([]string{
		`{"timestamp":1714557600,"author":"Ada","entry":"chat opened"}`,
		`{not json`,
		`{"timestamp":"t2","author":null,"entry":{"msg":"chat","n":2}}`,
		`{"timestamp":"t3","entry":["chat",1.50,false]}`,
	}, "\n")+"\n")

	first := SearchJSONL(file, "CHAT", 10)
	second := SearchJSONL(file, "CHAT", 10)

	require.Len(t, first, 3)
	assert.Equal(t, []int{1, 3, 4}, []int{first[0].Line, first[1].Line, first[2].Line})
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated search differs (-first +second):\n%s", diff)
	}
}

func TestSearchJSONLSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.jsonl", strings.Join([]string{
		`{"timestamp":"2024-05-01T10:00:00Z","author":"Ada","entry":"started build"}`,
		`{bad json}`,
		`{"timestamp":"2024-05-01T10:05:00Z","author":"Lin","entry":"George approved the release"}`,
	}, "\n")+"\n")

	got := SearchJSONL(file, "george", 10)

	want := []model.JSONLMatch{{
		Line:      3,
		Timestamp: "2024-05-01T10:05:00Z",
		Author:    "Lin",
		Entry:     "George approved the release",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchJSONL() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchJSONLMissingFile(t *testing.T) {
	got := SearchJSONL(filepath.Join(t.TempDir(), "log.jsonl"), "anything", 10)

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchJSONLPreservesOriginalTypes(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.jsonl",
		`{"timestamp":1714557600,"author":null,"entry":"retry 3"}`+"\n"+
			`{"timestamp":"t","entry":true}`+"\n")

	got := SearchJSONL(file, "1714557600", 10)
	require.Len(t, got, 1)
	assert.Equal(t, json.Number("1714557600"), got[0].Timestamp)
	assert.Nil(t, got[0].Author)
	assert.Equal(t, "retry 3", got[0].Entry)

	got = SearchJSONL(file, "TRUE", 10)
	require.Len(t, got, 1)
	assert.Equal(t, true, got[0].Entry)
	assert.Nil(t, got[0].Author)
	assert.Equal(t, 2, got[0].Line)
}

func TestSearchJSONLFieldsJoinedWithSpace(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.jsonl", `{"timestamp":"noon","author":"Ada","entry":"deploy"}`+"\n")

	assert.Len(t, SearchJSONL(file, "noon ada", 10), 1)
	assert.Len(t, SearchJSONL(file, "ada deploy", 10), 1)
	assert.Empty(t, SearchJSONL(file, "noonada", 10))
}

func TestSearchJSONLIgnoresOtherFields(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.jsonl", `{"entry":"plain","level":"secret"}`+"\n")

	assert.Empty(t, SearchJSONL(file, "secret", 10))
}

func TestSearchJSONLRejectedLines(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.jsonl", strings.Join([]string{
		`null`,
		`{"entry":"needle"} trailing`,
		`{"entry":"needle"`,
		``,
		`   `,
		`{"entry":"needle kept"}`,
	}, "\n"))

	got := SearchJSONL(file, "needle", 10)

	want := []model.JSONLMatch{{Line: 6, Entry: "needle kept"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchJSONL() mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchJSONLNestedValuesSearchable(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "log.jsonl", `{"entry":{"step":"Migrate <db>"}}`+"\n")

	got := SearchJSONL(file, "migrate <db>", 10)

	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"step": "Migrate <db>"}, got[0].Entry)
}

func TestSearchJSONLLimit(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, `{"entry":"event %d"}`+"\n", i)
	}
	file := writeFile(t, dir, "log.jsonl", b.String())

	got := SearchJSONL(file, "event", 2)

	want := []model.JSONLMatch{{Line: 1, Entry: "event 1"}, {Line: 2, Entry: "event 2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SearchJSONL() mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, SearchJSONL(file, "event", 0))
}

func TestSearchableText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "string", in: "Hi", want: "Hi"},
		{name: "number keeps literal", in: json.Number("1.50"), want: "1.50"},
		{name: "false", in: false, want: "false"},
		{name: "array", in: []any{"a", json.Number("1")}, want: `["a",1]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchableText(tt.in))
		})
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "a", want: []string{"a"}},
		{in: "a\n", want: []string{"a"}},
		{in: "a\r\nb\r\n", want: []string{"a", "b"}},
		{in: "a\n\nb", want: []string{"a", "", "b"}},
		{in: "\n", want: []string{""}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitLines(tt.in)); diff != "" {
			t.Errorf("splitLines(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
