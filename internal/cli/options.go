// Package cli wires the logsearch command line: flag parsing, config
// merging and the search, follow, interactive and mcp entry points.
package cli

import (
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/altinukshini/logsearch/internal/config"
	"github.com/altinukshini/logsearch/internal/model"
)

const Usage = `Usage: logsearch [--scope=all|text|jsonl] [--limit=N] [--cwd=DIR] [--format=text|json] <query...>`

var ErrMissingQuery = errors.New("missing query")

const (
	flagScope       = "scope"
	flagLimit       = "limit"
	flagCwd         = "cwd"
	flagFormat      = "format"
	flagConfig      = "config"
	flagNoColor     = "no-color"
	flagInteractive = "interactive"
	flagFollow      = "follow"
	flagVerbose     = "verbose"
)

// Options is the resolved invocation.
type Options struct {
	Query          string
	Scope          model.Scope
	Limit          int
	Cwd            string
	Format         model.Format
	ConfigPath     string
	NoColor        bool
	Interactive    bool
	Follow         bool
	Verbose        bool
	WorkspaceDir   string
	FollowDebounce time.Duration

	changed map[string]bool
}

// rawFlags holds flag values before fallback rules are applied.
type rawFlags struct {
	scope       string
	limit       string
	cwd         string
	format      string
	config      string
	noColor     bool
	interactive bool
	follow      bool
	verbose     bool
}

func bindFlags(fs *pflag.FlagSet, raw *rawFlags) {
	fs.StringVar(&raw.scope, flagScope, string(model.ScopeAll), "which logs to search: all, text or jsonl")
	fs.StringVar(&raw.limit, flagLimit, strconv.Itoa(config.DefaultLimit), "maximum matches per log kind")
	fs.StringVar(&raw.cwd, flagCwd, "", "directory containing workspace/ (default: current directory)")
	fs.StringVar(&raw.format, flagFormat, string(model.FormatText), "output format: text or json")
	fs.StringVar(&raw.config, flagConfig, config.DefaultPath, "config file (TOML, or YAML by extension)")
	fs.BoolVar(&raw.noColor, flagNoColor, false, "do not highlight matches")
	fs.BoolVarP(&raw.interactive, flagInteractive, "i", false, "browse results in the terminal UI")
	fs.BoolVarP(&raw.follow, flagFollow, "f", false, "re-run the search when workspace logs change")
	fs.BoolVarP(&raw.verbose, flagVerbose, "v", false, "debug logging to stderr")
}

// ParseArgs parses a logsearch command line without touching the
// filesystem or the config file. Unknown flags are ignored.
func ParseArgs(args []string) (Options, error) {
	fs := pflag.NewFlagSet("logsearch", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)

	var raw rawFlags
	bindFlags(fs, &raw)
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	return raw.options(fs, fs.Args())
}

func (raw rawFlags) options(fs *pflag.FlagSet, args []string) (Options, error) {
	opts := Options{
		Query:       strings.Join(args, " "),
		Scope:       parseScope(raw.scope),
		Limit:       parseLimit(raw.limit),
		Cwd:         raw.cwd,
		Format:      parseFormat(raw.format),
		ConfigPath:  raw.config,
		NoColor:     raw.noColor,
		Interactive: raw.interactive,
		Follow:      raw.follow,
		Verbose:     raw.verbose,
		changed:     map[string]bool{},
	}
	fs.Visit(func(f *pflag.Flag) { opts.changed[f.Name] = true })

	if strings.TrimSpace(opts.Query) == "" && !opts.Interactive {
		return opts, ErrMissingQuery
	}
	return opts, nil
}

// Apply fills every option whose flag was not given from cfg, and resolves
// Cwd to an absolute path (the process directory when empty).
func (o Options) Apply(cfg config.Config) (Options, error) {
	if !o.changed[flagScope] {
		o.Scope = cfg.Scope
	}
	if !o.changed[flagLimit] {
		o.Limit = cfg.Limit
	}
	if !o.changed[flagFormat] {
		o.Format = cfg.Format
	}
	if !o.changed[flagNoColor] {
		o.NoColor = !cfg.Color
	}
	o.WorkspaceDir = cfg.WorkspaceDir
	o.FollowDebounce = cfg.FollowDebounce

	cwd, err := filepath.Abs(o.Cwd)
	if err != nil {
		return o, err
	}
	o.Cwd = cwd
	return o, nil
}

func (o Options) SearchQuery() model.SearchQuery {
	return model.SearchQuery{Pattern: o.Query, Scope: o.Scope, Limit: o.Limit}
}

func parseScope(s string) model.Scope {
	scope, err := model.ParseScope(s)
	if err != nil {
		return model.ScopeAll
	}
	return scope
}

func parseFormat(s string) model.Format {
	format, err := model.ParseFormat(s)
	if err != nil {
		return model.FormatText
	}
	return format
}

// parseLimit accepts a positive integer and falls back to the default for
// anything else.
func parseLimit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return config.DefaultLimit
	}
	return n
}
