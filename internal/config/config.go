package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/altinukshini/logsearch/internal/model"
	"github.com/altinukshini/logsearch/internal/workspace"
)

const (
	DefaultPath           = "~/.config/logsearch/config.toml"
	DefaultLimit          = 200
	DefaultFollowDebounce = 250 * time.Millisecond
)

var (
	ErrInvalidLimit  = errors.New("limit must be at least 1")
	ErrInvalidScope  = errors.New("invalid scope")
	ErrInvalidFormat = errors.New("invalid format")
)

type Config struct {
	Scope          model.Scope
	Limit          int
	Format         model.Format
	WorkspaceDir   string
	Color          bool
	FollowDebounce time.Duration
}

func Default() Config {
	return Config{
		Scope:          model.ScopeAll,
		Limit:          DefaultLimit,
		Format:         model.FormatText,
		WorkspaceDir:   workspace.DefaultDir,
		Color:          true,
		FollowDebounce: DefaultFollowDebounce,
	}
}

func (c Config) Validate() error {
	if c.Limit < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidLimit, c.Limit)
	}
	if _, err := model.ParseScope(string(c.Scope)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScope, err)
	}
	if _, err := model.ParseFormat(string(c.Format)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

// fileConfig is the on-disk shape shared by the TOML and YAML decoders.
type fileConfig struct {
	Scope          string `toml:"scope" yaml:"scope"`
	Limit          int    `toml:"limit" yaml:"limit"`
	Format         string `toml:"format" yaml:"format"`
	WorkspaceDir   string `toml:"workspace_dir" yaml:"workspace_dir"`
	Color          *bool  `toml:"color" yaml:"color"`
	FollowDebounce string `toml:"follow_debounce" yaml:"follow_debounce"`
}

// Load reads the config file at path, or the default path when path is
// empty. A missing file yields Default(). Empty values keep their defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw fileConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := raw.apply(Default())
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", resolved, err)
	}
	return cfg, nil
}

func (raw fileConfig) apply(cfg Config) (Config, error) {
	if s := strings.TrimSpace(raw.Scope); s != "" {
		cfg.Scope = model.Scope(strings.ToLower(s))
	}
	if raw.Limit != 0 {
		cfg.Limit = raw.Limit
	}
	if f := strings.TrimSpace(raw.Format); f != "" {
		cfg.Format = model.Format(strings.ToLower(f))
	}
	if dir := strings.TrimSpace(raw.WorkspaceDir); dir != "" {
		cfg.WorkspaceDir = mustExpand(dir)
	}
	if raw.Color != nil {
		cfg.Color = *raw.Color
	}
	if d := strings.TrimSpace(raw.FollowDebounce); d != "" {
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: follow_debounce: %w", err)
		}
		cfg.FollowDebounce = parsed
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(DefaultPath)
	}
	return expandPath(path)
}

// mustExpand expands a leading ~ and keeps relative paths relative, so a
// relative workspace_dir still resolves against --cwd.
func mustExpand(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
