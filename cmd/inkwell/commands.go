// cmd/inkwell/commands.go
package main

import (
	"log/slog"
	"time"

	"inkwell/internal/builder"
	"inkwell/internal/config"
	"inkwell/internal/metrics"
	"inkwell/internal/scaffold"
	"inkwell/internal/server"
)

// SiteFlags locate the site; build and serve share them.
type SiteFlags struct {
	Config string `name:"config" placeholder:"FILE" help:"Custom configuration file."`
	Source string `short:"s" placeholder:"DIR" default:"./" help:"Source directory (defaults to ./)."`
	Dest   string `short:"d" placeholder:"DIR" default:"./out" help:"Destination directory (defaults to ./out)."`
	Quiet  bool   `short:"q" help:"Only log warnings and errors."`
}

func (f SiteFlags) load(g *Global) (*config.Config, error) {
	setupLogging(g.Verbose, f.Quiet)
	cfg, err := config.Load(f.Source, f.Dest, f.Config)
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded configuration",
		slog.String("config", cfg.ConfigFile),
		slog.String("source", cfg.SourceDir),
		slog.String("destination", cfg.OutputDir))
	return cfg, nil
}

type BuildCmd struct {
	SiteFlags `embed:""`
	Watch     bool          `short:"w" help:"Watch for changes and rebuild."`
	Debounce  time.Duration `default:"0s" help:"Quiet period to wait for before rebuilding in watch mode."`
}

func (c *BuildCmd) Run(g *Global) error {
	cfg, err := c.load(g)
	if err != nil {
		return err
	}
	b := builder.New(cfg)
	if c.Watch {
		return server.Watch(g.Ctx, b, server.Options{Debounce: c.Debounce})
	}
	_, err = b.Build(g.Ctx)
	return err
}

type ServeCmd struct {
	SiteFlags    `embed:""`
	Host         string        `short:"H" default:"localhost" help:"Host to bind to (defaults to localhost)."`
	Port         int           `short:"P" default:"4000" help:"Port to listen on (defaults to 4000)."`
	Debounce     time.Duration `default:"0s" help:"Quiet period to wait for before rebuilding (0 rebuilds on every change)."`
	NoLiveReload bool          `name:"no-live-reload" help:"Do not inject the live-reload script."`
	NoMetrics    bool          `name:"no-metrics" help:"Do not expose Prometheus metrics on /__metrics."`
}

func (c *ServeCmd) Run(g *Global) error {
	cfg, err := c.load(g)
	if err != nil {
		return err
	}
	var rec *metrics.Recorder
	if !c.NoMetrics {
		rec = metrics.NewRecorder()
	}
	return server.Run(g.Ctx, builder.New(cfg, builder.WithMetrics(rec)), server.Options{
		Host:       c.Host,
		Port:       c.Port,
		Debounce:   c.Debounce,
		LiveReload: !c.NoLiveReload,
		Metrics:    rec,
	})
}

type NewCmd struct {
	Path string `arg:"" help:"Directory for the new blog."`
}

func (c *NewCmd) Run(g *Global) error {
	setupLogging(g.Verbose, false)
	_, err := scaffold.CreateNewSite(c.Path)
	return err
}

type PostCmd struct {
	Title    string `arg:"" help:"Title of the post."`
	Source   string `short:"s" placeholder:"DIR" default:"./" help:"Source directory (defaults to ./)."`
	Template string `short:"t" default:"post.html" help:"Template the post is rendered with."`
}

func (c *PostCmd) Run(g *Global) error {
	setupLogging(g.Verbose, false)
	_, err := scaffold.CreatePost(c.Source, c.Title, c.Template, "")
	return err
}
