package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/altinukshini/logsearch/internal/config"
	"github.com/altinukshini/logsearch/internal/finder"
	"github.com/altinukshini/logsearch/internal/logging"
	"github.com/altinukshini/logsearch/internal/mcp"
	"github.com/altinukshini/logsearch/internal/model"
	"github.com/altinukshini/logsearch/internal/render"
	"github.com/altinukshini/logsearch/internal/search"
	"github.com/altinukshini/logsearch/internal/tui"
	"github.com/altinukshini/logsearch/internal/watch"
	"github.com/altinukshini/logsearch/internal/workspace"
)

// Streams are the writers a command prints to.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// runtime carries what a command needs once flags and config are resolved.
type runtime struct {
	opts    Options
	streams Streams
	log     *zap.Logger
	finder  *finder.Finder
	// colorJSON reports whether JSON output may be colorized.
	colorJSON func() bool
}

// NewRootCommand builds the logsearch command tree.
func NewRootCommand(version string, streams Streams) *cobra.Command {
	var raw rawFlags

	cmd := &cobra.Command{
		Use:   "logsearch [flags] <query...>",
		Short: "Search workspace logs for a case-insensitive substring",
		Long: `logsearch scans workspace/log.txt, every workspace/logs/**/*.log file and
workspace/log.jsonl for lines containing the query, ignoring case.

Text output prints a "Text matches" and a "JSONL matches" section with the
matching spans highlighted; --format=json prints one flat JSON array.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := raw.options(cmd.Flags(), args)
			if err != nil {
				return err
			}
			rt, err := newRuntime(opts, streams)
			if err != nil {
				return err
			}
			defer func() { _ = rt.log.Sync() }()
			return rt.run(cmd.Context())
		},
	}
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)
	bindFlags(cmd.Flags(), &raw)

	// A bare "help" is a query; -h and --help still print usage.
	cmd.SetHelpCommand(&cobra.Command{
		Use:    "__help",
		Hidden: true,
		Run: func(c *cobra.Command, _ []string) {
			_ = c.Root().Help()
		},
	})
	cmd.AddCommand(newMCPCommand(version, streams))
	return cmd
}

func newRuntime(opts Options, streams Streams) (*runtime, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	opts, err = opts.Apply(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve cwd: %w", err)
	}

	log := zap.NewNop()
	if !opts.Interactive {
		if log, err = logging.New(opts.Verbose); err != nil {
			return nil, err
		}
	}

	layout := workspace.New(opts.Cwd, opts.WorkspaceDir, log)
	engine := search.New(search.WithLogger(log))
	return &runtime{
		opts:    opts,
		streams: streams,
		log:     log,
		finder:  finder.New(layout, engine, log),
		colorJSON: func() bool {
			_, color := render.Terminal()
			return color
		},
	}, nil
}

func (rt *runtime) run(ctx context.Context) error {
	rt.log.Debug("search",
		zap.String("query", rt.opts.Query),
		zap.String("scope", string(rt.opts.Scope)),
		zap.Int("limit", rt.opts.Limit),
		zap.String("root", rt.finder.Layout().Root))

	if rt.opts.Interactive {
		return rt.interactive(ctx)
	}
	if rt.opts.Follow {
		return rt.follow(ctx)
	}
	return rt.searchAndPrint(ctx)
}

func (rt *runtime) searchAndPrint(ctx context.Context) error {
	res, err := rt.finder.Find(ctx, rt.opts.SearchQuery())
	if err != nil {
		return err
	}
	return rt.print(res)
}

func (rt *runtime) print(res *model.SearchResults) error {
	if rt.opts.Format == model.FormatJSON {
		return render.JSON(rt.streams.Out, res, !rt.opts.NoColor && rt.colorJSON())
	}
	return render.Text(rt.streams.Out, res, render.Options{
		Cwd:       rt.opts.Cwd,
		Highlight: !rt.opts.NoColor,
	})
}

// follow prints the results, then prints them again after every settled
// change to the workspace logs until ctx is cancelled.
func (rt *runtime) follow(ctx context.Context) error {
	layout := rt.finder.Layout()
	w, err := watch.New(layout.WatchDirs(), rt.opts.FollowDebounce, rt.log, watch.WithFilter(layout.IsLogFile))
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	if err := rt.searchAndPrint(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-w.Changes():
			if !ok {
				return nil
			}
			fmt.Fprintf(rt.streams.Out, "\n--- refreshed %s ---\n", time.Now().Format(time.TimeOnly))
			if err := rt.searchAndPrint(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func (rt *runtime) interactive(ctx context.Context) error {
	opts := tui.Options{
		Finder: rt.finder,
		Query:  rt.opts.SearchQuery(),
		Cwd:    rt.opts.Cwd,
	}
	if rt.opts.Follow {
		layout := rt.finder.Layout()
		w, err := watch.New(layout.WatchDirs(), rt.opts.FollowDebounce, rt.log, watch.WithFilter(layout.IsLogFile))
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
		opts.Changes = w.Changes()
	}
	return tui.Run(ctx, tui.NewApp(opts))
}

func newMCPCommand(version string, streams Streams) *cobra.Command {
	var (
		cwd        string
		configPath string
		verbose    bool
	)
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the search_logs tool over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			opts, err := Options{Cwd: cwd, changed: map[string]bool{}}.Apply(cfg)
			if err != nil {
				return fmt.Errorf("resolve cwd: %w", err)
			}
			log, err := logging.New(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return mcp.NewServer(opts.Cwd, cfg, log, version).Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&cwd, flagCwd, "", "default directory containing workspace/")
	cmd.Flags().StringVar(&configPath, flagConfig, config.DefaultPath, "config file (TOML, or YAML by extension)")
	cmd.Flags().BoolVarP(&verbose, flagVerbose, "v", false, "debug logging to stderr")
	return cmd
}
