package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultDir = "workspace"

	textLogName  = "log.txt"
	logsDirName  = "logs"
	jsonlLogName = "log.jsonl"
	logExt       = ".log"
)

// Layout locates the log files of a workspace rooted at <cwd>/<dir>.
type Layout struct {
	Root string
	log  *zap.Logger
}

func New(cwd, dir string, log *zap.Logger) Layout {
	if strings.TrimSpace(dir) == "" {
		dir = DefaultDir
	}
	if log == nil {
		log = zap.NewNop()
	}
	root := dir
	if !filepath.IsAbs(dir) {
		root = filepath.Join(cwd, dir)
	}
	return Layout{Root: filepath.Clean(root), log: log}
}

func (l Layout) TextLogPath() string  { return filepath.Join(l.Root, textLogName) }
func (l Layout) LogsDir() string      { return filepath.Join(l.Root, logsDirName) }
func (l Layout) JSONLLogPath() string { return filepath.Join(l.Root, jsonlLogName) }

// TextFiles returns log.txt when it exists, followed by every *.log file
// under logs/ in lexical walk order. Unreadable directories are skipped.
func (l Layout) TextFiles() []string {
	var files []string
	if info, err := os.Stat(l.TextLogPath()); err == nil && !info.IsDir() {
		files = append(files, l.TextLogPath())
	}

	err := filepath.WalkDir(l.LogsDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == l.LogsDir() {
				return fs.SkipDir
			}
			l.log.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), logExt) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		l.log.Debug("walk logs dir", zap.String("dir", l.LogsDir()), zap.Error(err))
	}

	l.log.Debug("discovered text logs", zap.String("root", l.Root), zap.Int("count", len(files)))
	return files
}

// WatchDirs returns the directories whose changes can affect search results:
// the root, logs/ and every directory below it that exists.
func (l Layout) WatchDirs() []string {
	dirs := []string{l.Root}
	_ = filepath.WalkDir(l.LogsDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != l.LogsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}

// IsLogFile reports whether path is one of the files a search reads.
func (l Layout) IsLogFile(path string) bool {
	path = filepath.Clean(path)
	switch path {
	case l.TextLogPath(), l.JSONLLogPath():
		return true
	}
	rel, err := filepath.Rel(l.LogsDir(), path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return strings.HasSuffix(path, logExt)
}

// Rel returns path relative to base, or path itself when no relative form
// exists.
func Rel(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
