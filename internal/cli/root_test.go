package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altinukshini/logsearch/internal/search"
)

// lockedBuffer is written by the command goroutine and read by the test.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func seedWorkspace(t *testing.T) string {
	t.Helper()
	cwd := t.TempDir()
	files := map[string]string{
		"workspace/log.txt":      "boot\nDeploy started\n",
		"workspace/logs/api.log": "deploy finished\n",
		"workspace/log.jsonl": `{"timestamp":"2024-01-01","author":"ci","entry":"deploy queued"}` + "\n" +
			"not json\n",
	}
	for rel, body := range files {
		path := filepath.Join(cwd, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return cwd
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out, errOut bytes.Buffer
	cmd := NewRootCommand("test", Streams{Out: &out, Err: &errOut})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootTextOutput(t *testing.T) {
	cwd := seedWorkspace(t)

	out, err := execute(t, "--cwd", cwd, "--no-color", "deploy")
	require.NoError(t, err)

	want := strings.Join([]string{
		"Text matches",
		"workspace/log.txt:2: Deploy started",
		filepath.Join("workspace", "logs", "api.log") + ":1: deploy finished",
		"",
		"JSONL matches",
		"[2024-01-01] ci: deploy queued",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestRootHighlightsByDefault(t *testing.T) {
	cwd := seedWorkspace(t)

	out, err := execute(t, "--cwd", cwd, "--scope=text", "DEPLOY")
	require.NoError(t, err)
	assert.Contains(t, out, search.MarkStart+"Deploy"+search.MarkEnd+" started")
	assert.NotContains(t, out, "JSONL matches")
}

func TestRootJSONOutput(t *testing.T) {
	cwd := seedWorkspace(t)

	out, err := execute(t, "--cwd", cwd, "--format=json", "--limit=1", "deploy")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "text", records[0]["type"])
	assert.Equal(t, filepath.Join(cwd, "workspace", "log.txt"), records[0]["file"])
	assert.Equal(t, "jsonl", records[1]["type"])
	assert.Equal(t, "ci", records[1]["author"])
}

func TestRootZeroMatchesSucceeds(t *testing.T) {
	cwd := seedWorkspace(t)

	out, err := execute(t, "--cwd", cwd, "zzz-not-there")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "(no matches)"))
}

func TestRootMissingQuery(t *testing.T) {
	_, err := execute(t, "--scope=text")
	assert.ErrorIs(t, err, ErrMissingQuery)
}

func TestRootConfigFile(t *testing.T) {
	cwd := seedWorkspace(t)
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("scope = \"jsonl\"\ncolor = false\n"), 0o644))

	out, err := execute(t, "--cwd", cwd, "--config", cfgPath, "deploy")
	require.NoError(t, err)
	assert.Equal(t, "JSONL matches\n[2024-01-01] ci: deploy queued\n", out)
}

func TestRootInvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("limit = [\n"), 0o644))

	_, err := execute(t, "--config", cfgPath, "deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestRootVersion(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}

func TestRootFollowReprintsOnChange(t *testing.T) {
	cwd := seedWorkspace(t)
	t.Setenv("HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("follow_debounce = \"20ms\"\n"), 0o644))

	var out lockedBuffer
	cmd := NewRootCommand("test", Streams{Out: &out, Err: &bytes.Buffer{}})
	cmd.SetArgs([]string{"--cwd", cwd, "--config", cfgPath, "--no-color", "--scope=text", "-f", "deploy"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "deploy finished")
	}, 3*time.Second, 10*time.Millisecond)

	appendTo := filepath.Join(cwd, "workspace", "logs", "api.log")
	require.NoError(t, os.WriteFile(appendTo, []byte("deploy finished\ndeploy rolled back\n"), 0o644))

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, "--- refreshed ") && strings.Contains(s, "deploy rolled back")
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("follow did not stop after cancel")
	}
}
