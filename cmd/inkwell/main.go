// cmd/inkwell/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"inkwell/internal/logfields"
)

var version = "dev"

// Global carries state shared by every command.
type Global struct {
	Ctx     context.Context
	Verbose bool
}

type CLI struct {
	Verbose bool             `short:"v" help:"Enable debug logging."`
	Version kong.VersionFlag `name:"version" help:"Show version and exit."`

	Build BuildCmd `cmd:"" help:"Build the site once, or keep rebuilding with --watch."`
	Serve ServeCmd `cmd:"" help:"Serve the site locally and rebuild on change."`
	New   NewCmd   `cmd:"" help:"Create a new blog skeleton in <path>."`
	Post  PostCmd  `cmd:"" help:"Start a new post."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("inkwell"),
		kong.Description("inkwell, a small static blog generator."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := kctx.Run(&Global{Ctx: ctx, Verbose: cli.Verbose})
	stop()
	if err != nil {
		slog.Error("Command failed", logfields.Error(err))
		os.Exit(1)
	}
}

// setupLogging installs the default logger. quiet wins over verbose.
func setupLogging(verbose, quiet bool) {
	level := slog.LevelInfo
	switch {
	case quiet:
		level = slog.LevelWarn
	case verbose:
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
