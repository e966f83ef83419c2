// Package debounce delays an action until its input has been quiet for a fixed window.
package debounce

import (
	"sync"
	"time"

	"github.com/wichananm65/bookstore-storefront/internal/clock"
)

// DefaultWindow is the quiet period used by search boxes and filters.
const DefaultWindow = 500 * time.Millisecond

// Event is a value observed at a point in time.
type Event[T any] struct {
	At    time.Time
	Value T
}

// Collapse maps an input stream (ordered by At) to its debounced output: one
// event per burst, carrying the burst's last value, emitted window after it.
// Two inputs belong to the same burst when the gap between them is shorter than window.
func Collapse[T any](in []Event[T], window time.Duration) []Event[T] {
	var out []Event[T]
	for i, ev := range in {
		if i+1 < len(in) && in[i+1].At.Sub(ev.At) < window {
			continue
		}
		out = append(out, Event[T]{At: ev.At.Add(window), Value: ev.Value})
	}
	return out
}

// Debouncer is the runtime form of Collapse. Each Trigger restarts the timer;
// only a timer that elapses uninterrupted calls fire, with the latest value.
type Debouncer[T any] struct {
	clock  clock.Clock
	window time.Duration
	fire   func(T)

	mu      sync.Mutex
	timer   clock.Timer
	gen     uint64
	stopped bool
}

func New[T any](c clock.Clock, window time.Duration, fire func(T)) *Debouncer[T] {
	if c == nil {
		c = clock.Real()
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer[T]{clock: c, window: window, fire: fire}
}

func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.window, func() {
		d.mu.Lock()
		// a real timer may already be running its callback when Stop is called
		current := gen == d.gen && !d.stopped
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			d.fire(v)
		}
	})
}

// Pending reports whether a fire is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending fire, if any. The debouncer stays usable.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels the pending fire and ignores every later Trigger.
func (d *Debouncer[T]) Stop() {
	d.Cancel()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}
