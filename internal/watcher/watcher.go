// internal/watcher/watcher.go

// Package watcher turns filesystem changes under a source tree into rebuild
// triggers. Matching and triggering are separate: a Source yields events, a
// Filter drops the irrelevant ones and a Trigger decides what a change does.
package watcher

import (
	"context"
	"log/slog"

	"inkwell/internal/logfields"
	"inkwell/internal/metrics"
)

// Trigger reacts to a relevant change, usually by rebuilding the site.
type Trigger func(ctx context.Context, ev Event)

type Watcher struct {
	source  Source
	ignore  Filter
	trigger Trigger
	metrics *metrics.Recorder
	logger  *slog.Logger
}

type Option func(*Watcher)

func WithMetrics(r *metrics.Recorder) Option {
	return func(w *Watcher) { w.metrics = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

func New(source Source, ignore Filter, trigger Trigger, opts ...Option) *Watcher {
	w := &Watcher{source: source, ignore: ignore, trigger: trigger, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run handles events one at a time until ctx is done or the source runs
// dry, then closes the source. The trigger runs on this goroutine, so a
// rebuild finishes before the next event is taken and cancellation never
// interrupts one.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.source.Close()
	events, errs := w.source.Events(), w.source.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			w.logger.WarnContext(ctx, "Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev Event) {
	if w.ignore != nil && w.ignore(ev.Path) {
		w.metrics.WatchEvent(false)
		w.logger.DebugContext(ctx, "Ignoring change", logfields.Path(ev.Path), logfields.Op(ev.Kind.String()))
		return
	}
	w.metrics.WatchEvent(true)
	w.logger.InfoContext(ctx, "Detected change", logfields.Path(ev.Path), logfields.Op(ev.Kind.String()))
	w.trigger(ctx, ev)
}
