// Package repeat turns a press-and-hold gesture into a stream of discrete
// steps: a tap produces exactly one step, a hold produces one step followed,
// after a short delay, by steps at a fixed interval until release.
package repeat

import (
	"sync"
	"time"
)

const (
	DefaultDelay    = 400 * time.Millisecond
	DefaultInterval = 50 * time.Millisecond
)

// Repeater holds the action and timing shared by every gesture on one control.
type Repeater struct {
	action   func()
	delay    time.Duration
	interval time.Duration
}

type Option func(*Repeater)

// WithDelay sets how long a press must be held before repeating starts.
func WithDelay(d time.Duration) Option {
	return func(r *Repeater) {
		if d > 0 {
			r.delay = d
		}
	}
}

// WithInterval sets the period between repeated steps.
func WithInterval(d time.Duration) Option {
	return func(r *Repeater) {
		if d > 0 {
			r.interval = d
		}
	}
}

func New(action func(), opts ...Option) *Repeater {
	r := &Repeater{action: action, delay: DefaultDelay, interval: DefaultInterval}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Gesture is the timer state of one press. It must be ended exactly by the
// gesture that created it; End is safe to call any number of times.
type Gesture struct {
	r       *Repeater
	mu      sync.Mutex
	ended   bool
	pending *time.Timer
	done    chan struct{}
}

// Start invokes the action once and arms the hold delay.
func (r *Repeater) Start() *Gesture {
	g := &Gesture{r: r, done: make(chan struct{})}
	r.action()

	g.mu.Lock()
	g.pending = time.AfterFunc(r.delay, g.repeat)
	g.mu.Unlock()
	return g
}

// End cancels the pending delay and the repeat loop. When End returns no
// further action will run for this gesture. The action must not call End on
// its own gesture.
func (g *Gesture) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		return
	}
	g.ended = true
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
	close(g.done)
}

// Active reports whether the gesture has not been ended.
func (g *Gesture) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.ended
}

func (g *Gesture) repeat() {
	g.mu.Lock()
	if g.ended {
		g.mu.Unlock()
		return
	}
	g.pending = nil
	g.mu.Unlock()

	ticker := time.NewTicker(g.r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-g.done:
			return
		case <-ticker.C:
			if !g.fire() {
				return
			}
		}
	}
}

// fire runs the action under the gesture lock so End cannot return while a
// step is in flight.
func (g *Gesture) fire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ended {
		return false
	}
	g.r.action()
	return true
}
