// Package viewer owns what one user sees: the installed match set, the
// navigation state and the press-and-hold controls that step through it.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/antipode"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/engine"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/logger"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/metrics"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/navigation"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/repeat"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/runstamp"
)

// ErrNotStepping is returned when a hold starts outside single-step mode.
var ErrNotStepping = errors.New("navigation is only available in single-step mode with data")

const emptyMessage = "0 pairs found. The engine compares a coarse 1° grid, so no antipodal cells " +
	"matching on both temperature and pressure is an expected, if unlikely, outcome."

const processingError = "Error processing weather model data. Fetch again to retry."

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Layer picks the texture the globe is painted with.
type Layer string

const (
	LayerTemp  Layer = "temp"
	LayerPress Layer = "press"
)

func ParseLayer(s string) (Layer, error) {
	switch Layer(s) {
	case LayerTemp, LayerPress:
		return Layer(s), nil
	}
	return "", fmt.Errorf("invalid layer %q", s)
}

// Direction is a paging direction.
type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "previous"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Next, Previous:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// Session serializes every state change behind mu. Hold gestures live under
// holdMu and are always ended with mu released, since a firing step needs mu.
type Session struct {
	engine  engine.Engine
	timeout time.Duration
	now     func() time.Time
	log     *slog.Logger
	group   singleflight.Group

	mu      sync.Mutex
	set     *MatchSet
	nav     navigation.Controller
	layer   Layer
	loading bool
	lastErr error

	holdMu    sync.Mutex
	repeaters map[Direction]*repeat.Repeater
	holds     map[Direction]*repeat.Gesture
}

type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTimeout bounds one engine process call.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithRepeatTiming sets the hold delay and repeat interval of the paging controls.
func WithRepeatTiming(delay, interval time.Duration) Option {
	return func(s *Session) {
		s.repeaters[Next] = repeat.New(func() { s.step(Next) }, repeat.WithDelay(delay), repeat.WithInterval(interval))
		s.repeaters[Previous] = repeat.New(func() { s.step(Previous) }, repeat.WithDelay(delay), repeat.WithInterval(interval))
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func New(eng engine.Engine, opts ...Option) *Session {
	s := &Session{
		engine:    eng,
		timeout:   60 * time.Second,
		now:       time.Now,
		log:       logger.L(),
		layer:     LayerTemp,
		repeaters: make(map[Direction]*repeat.Repeater, 2),
		holds:     make(map[Direction]*repeat.Gesture, 2),
	}
	WithRepeatTiming(repeat.DefaultDelay, repeat.DefaultInterval)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh runs one fetch-and-process cycle. Concurrent calls share the same
// engine invocation, which is detached from the caller's cancellation and
// bounded by the session timeout instead. On failure the previously
// installed set is kept.
func (s *Session) Refresh(ctx context.Context) error {
	shared := context.WithoutCancel(ctx)
	_, err, _ := s.group.Do("process", func() (any, error) {
		return nil, s.refresh(shared)
	})
	return err
}

func (s *Session) refresh(ctx context.Context) error {
	metrics.RefreshTotal.Inc()
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := s.engine.Process(ctx)
	metrics.RefreshDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		reason := "unavailable"
		if errors.Is(err, engine.ErrMalformedOutput) {
			reason = "malformed"
		}
		metrics.RefreshFailTotal.WithLabelValues(reason).Inc()
		s.log.Error("engine_process_error", "reason", reason, "err", err)

		s.mu.Lock()
		s.loading = false
		s.lastErr = err
		s.mu.Unlock()
		return err
	}

	set := Build(out, s.now())
	if _, perr := runstamp.Parse(set.Timestamp); perr != nil {
		metrics.TimestampFallbackTotal.Inc()
		s.log.Debug("run_timestamp_fallback", "timestamp", set.Timestamp, "err", perr)
	}

	s.endHolds()

	s.mu.Lock()
	s.set = &set
	s.nav.Install(navigable(set))
	s.loading = false
	s.lastErr = nil
	s.mu.Unlock()

	metrics.PairsInstalled.Set(float64(len(set.Pairs)))
	s.log.Info("match_set_installed",
		"pairs", len(set.Pairs),
		"raw_matches", len(set.Steps),
		"timestamp", set.Timestamp,
	)
	return nil
}

// navigable is the number of single-step positions. A set with no pairs
// left after deduplication has nothing to show and installs as NoData.
func navigable(set MatchSet) int {
	if len(set.Pairs) == 0 {
		return 0
	}
	return len(set.Steps)
}

// SetMode switches between all-pairs and single-step display.
func (s *Session) SetMode(m navigation.Mode) {
	s.endHolds()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.SetMode(m)
}

// Toggle flips the display mode.
func (s *Session) Toggle() {
	s.endHolds()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nav.Toggle()
}

func (s *Session) SetLayer(l Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layer = l
}

// Step moves one pair in dir. It reports whether the index moved.
func (s *Session) Step(dir Direction) bool {
	return s.step(dir)
}

func (s *Session) step(dir Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var moved bool
	if dir == Previous {
		moved = s.nav.Previous()
	} else {
		moved = s.nav.Next()
	}
	if moved {
		metrics.NavigationStepsTotal.WithLabelValues(string(dir)).Inc()
	}
	return moved
}

// StartHold presses the paging control for dir: one step now, repeated steps
// while held. A hold already active for dir is ended first.
func (s *Session) StartHold(dir Direction) error {
	s.mu.Lock()
	ok := s.nav.State() == navigation.StateSingleStep
	s.mu.Unlock()
	if !ok {
		return ErrNotStepping
	}

	s.holdMu.Lock()
	defer s.holdMu.Unlock()
	if g, exists := s.holds[dir]; exists {
		g.End()
	}
	s.holds[dir] = s.repeaters[dir].Start()
	return nil
}

// EndHold releases the paging control for dir. Releasing an idle control is
// a no-op; the result reports whether a hold was active.
func (s *Session) EndHold(dir Direction) bool {
	s.holdMu.Lock()
	g, ok := s.holds[dir]
	delete(s.holds, dir)
	s.holdMu.Unlock()
	if ok {
		g.End()
	}
	return ok
}

// Holding reports whether a hold is active for dir.
func (s *Session) Holding(dir Direction) bool {
	s.holdMu.Lock()
	defer s.holdMu.Unlock()
	g, ok := s.holds[dir]
	return ok && g.Active()
}

func (s *Session) endHolds() {
	s.holdMu.Lock()
	gs := make([]*repeat.Gesture, 0, len(s.holds))
	for dir, g := range s.holds {
		gs = append(gs, g)
		delete(s.holds, dir)
	}
	s.holdMu.Unlock()
	for _, g := range gs {
		g.End()
	}
}

// Close ends any active hold.
func (s *Session) Close() {
	s.endHolds()
}

// Pairs returns the deduplicated pairs of the installed set.
func (s *Session) Pairs() []antipode.Pair {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set == nil {
		return []antipode.Pair{}
	}
	out := make([]antipode.Pair, len(s.set.Pairs))
	copy(out, s.set.Pairs)
	return out
}
