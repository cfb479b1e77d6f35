package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/altinukshini/logsearch/internal/cli"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// execute runs the command line and maps its outcome to an exit status:
// 2 for a missing query, 1 for any other failure.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := cli.NewRootCommand(version, cli.Streams{Out: stdout, Err: stderr})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrMissingQuery):
		fmt.Fprintln(stderr, cli.Usage)
		return 2
	default:
		fmt.Fprintf(stderr, "Search failed: %v\n", err)
		return 1
	}
}
