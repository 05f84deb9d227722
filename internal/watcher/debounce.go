// internal/watcher/debounce.go
package watcher

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of changes into one call of fn, made once no
// change has arrived for the quiet window. At most one call runs at a time.
type Debouncer struct {
	wait time.Duration
	fn   Trigger

	mu      sync.Mutex
	timer   *time.Timer
	ctx     context.Context
	last    Event
	stopped bool

	running sync.Mutex
	wg      sync.WaitGroup
}

func NewDebouncer(wait time.Duration, fn Trigger) *Debouncer {
	return &Debouncer{wait: wait, fn: fn}
}

// Trigger schedules fn for the end of the quiet window, restarting the window
// if one is already pending. It has the Trigger signature, so it can be handed
// to New directly.
func (d *Debouncer) Trigger(ctx context.Context, ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.ctx = context.WithoutCancel(ctx)
	d.last = ev
	if d.timer == nil {
		d.timer = time.AfterFunc(d.wait, d.fire)
		return
	}
	d.timer.Reset(d.wait)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	ctx, ev := d.ctx, d.last
	d.wg.Add(1)
	d.mu.Unlock()
	defer d.wg.Done()

	d.running.Lock()
	defer d.running.Unlock()
	d.fn(ctx, ev)
}

// Stop drops any pending call and waits for a running one to return.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.wg.Wait()
}
