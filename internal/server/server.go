// internal/server/server.go
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"inkwell/internal/builder"
	"inkwell/internal/config"
	ierrors "inkwell/internal/errors"
	"inkwell/internal/logfields"
	"inkwell/internal/metrics"
	"inkwell/internal/watcher"
)

const shutdownTimeout = 5 * time.Second

// SiteBuilder is the part of builder.Builder the preview loop needs.
type SiteBuilder interface {
	Build(ctx context.Context) (builder.Report, error)
	Config() *config.Config
}

type Options struct {
	Host string
	Port int
	// Debounce coalesces bursts of changes into one rebuild. Zero rebuilds
	// once per relevant event.
	Debounce time.Duration
	// LiveReload injects a script into served HTML that reloads the page
	// after every successful rebuild.
	LiveReload bool
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
	// OnListen, if set, is called with the bound address before serving.
	OnListen func(addr net.Addr)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Run builds the site once, then serves the output directory while watching
// the source tree and rebuilding on change. A failed build is logged and the
// loop keeps going. When ctx is done the watcher is stopped first, waiting
// for a running build, and then the HTTP server is shut down.
func Run(ctx context.Context, b SiteBuilder, opts Options) error {
	log := opts.logger()
	cfg := b.Config()

	if _, err := b.Build(ctx); err != nil {
		log.WarnContext(ctx, "Initial build failed; serving existing output until the next change")
	}

	var hub *Hub
	if opts.LiveReload {
		hub = newHub(log)
	}
	w, src, stopTrigger, err := newSourceWatcher(b, hub, opts)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", opts.addr())
	if err != nil {
		_ = src.Close()
		return ierrors.IO("listen", opts.addr(), err)
	}
	if opts.OnListen != nil {
		opts.OnListen(ln.Addr())
	}
	srv := &http.Server{
		Handler:           newRouter(cfg.OutputDir, hub, opts.Metrics, log),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.InfoContext(ctx, "Serving site", slog.String("url", "http://"+ln.Addr().String()+"/"), logfields.Path(cfg.OutputDir))

	watchCtx, stopWatch := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWatch()
	watchDone := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(watchDone)
		defer stopTrigger()
		return w.Run(watchCtx)
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return ierrors.IO("serve", opts.addr(), err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Stopping watcher")
		stopWatch()
		<-watchDone
		if hub != nil {
			hub.Close()
		}
		log.Info("Stopping server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Watch builds the site once and rebuilds on every change until ctx is done.
// Build failures are logged; only a watcher setup failure is returned.
func Watch(ctx context.Context, b SiteBuilder, opts Options) error {
	log := opts.logger()
	if _, err := b.Build(ctx); err != nil {
		log.WarnContext(ctx, "Initial build failed; waiting for the next change")
	}
	w, _, stopTrigger, err := newSourceWatcher(b, nil, opts)
	if err != nil {
		return err
	}
	defer stopTrigger()
	log.InfoContext(ctx, "Watching for changes", logfields.Path(b.Config().SourceDir))
	return w.Run(ctx)
}

// newSourceWatcher wires the filesystem source, the ignore rules and the
// rebuild trigger together. The returned stop func drains a debounced
// trigger and must run after the watcher has returned.
func newSourceWatcher(b SiteBuilder, hub *Hub, opts Options) (*watcher.Watcher, watcher.Source, func(), error) {
	cfg := b.Config()
	ignore := watcher.IgnoreRules(cfg.SourceDir, cfg.OutputDir)
	src, err := watcher.NewFSSource(cfg.SourceDir, ignore)
	if err != nil {
		return nil, nil, nil, err
	}

	trigger := rebuild(b, hub)
	stop := func() {}
	if opts.Debounce > 0 {
		d := watcher.NewDebouncer(opts.Debounce, trigger)
		trigger, stop = d.Trigger, d.Stop
	}
	w := watcher.New(src, ignore, trigger,
		watcher.WithMetrics(opts.Metrics),
		watcher.WithLogger(opts.logger()))
	return w, src, stop, nil
}

// rebuild runs a full build and tells connected browsers to reload when it
// succeeds. The builder logs failures itself.
func rebuild(b SiteBuilder, hub *Hub) watcher.Trigger {
	return func(ctx context.Context, _ watcher.Event) {
		if _, err := b.Build(ctx); err != nil {
			return
		}
		if hub != nil {
			hub.Broadcast(ReloadMessage)
		}
	}
}
