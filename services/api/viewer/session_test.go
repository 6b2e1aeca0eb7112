package viewer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/engine"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/navigation"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/points"
)

type fakeEngine struct {
	mu    sync.Mutex
	out   engine.Output
	err   error
	calls atomic.Int32
	block chan struct{}
}

func (f *fakeEngine) Process(ctx context.Context) (engine.Output, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return engine.Output{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out, f.err
}

func (f *fakeEngine) set(out engine.Output, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out, f.err = out, err
}

var runTime = time.Date(2025, 12, 2, 6, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSession(eng engine.Engine, opts ...Option) *Session {
	base := []Option{
		WithLogger(quietLogger()),
		WithClock(func() time.Time { return runTime.Add(12 * time.Minute) }),
	}
	return New(eng, append(base, opts...)...)
}

// symmetricOutput mimics the engine: each match appears from both hemispheres.
func symmetricOutput() engine.Output {
	return engine.Output{
		Matches: []points.RawRecord{
			{"lat": 10.0, "lon": 170.0, "tmp2m": 12.5, "press": 0.98},
			{"lat": 45.0, "lon": 300.0, "tmp2m": 3.0, "press": 1.01},
			{"lat": -10.0, "lon": 350.0, "tmp2m": 12.5, "press": 0.98},
			{"lat": -45.0, "lon": 120.0, "tmp2m": 3.0, "press": 1.01},
		},
		Textures:  engine.Textures{Temp: "temp.png", Press: "press.png"},
		Timestamp: "2025-12-02 06z",
	}
}

func TestBuild(t *testing.T) {
	set := Build(symmetricOutput(), runTime)
	if len(set.Pairs) != 2 {
		t.Fatalf("pairs = %d; want 2", len(set.Pairs))
	}
	if len(set.Steps) != 4 {
		t.Fatalf("steps = %d; want 4", len(set.Steps))
	}
	if set.Pairs[1].Primary.Lon != -60 || set.Pairs[1].Antipode.Lon != 120 {
		t.Fatalf("unexpected second pair: %+v", set.Pairs[1])
	}
}

func TestRefreshInstallsMatchSet(t *testing.T) {
	eng := &fakeEngine{}
	eng.set(symmetricOutput(), nil)
	s := newSession(eng)

	if v := s.View(); v.Status != StatusIdle || v.State != navigation.StateNoData {
		t.Fatalf("initial view = %+v", v)
	}

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	v := s.View()
	if v.Status != StatusReady || v.State != navigation.StateAllPairs || v.Mode != navigation.ModeAll {
		t.Fatalf("view after refresh = %+v", v)
	}
	if v.PairCount != 2 || v.Total != 2 || len(v.Pairs) != 2 {
		t.Fatalf("pair counts = %d/%d/%d", v.PairCount, v.Total, len(v.Pairs))
	}
	if v.Run == nil || v.Run.Label != "2025-12-02 06z" || v.Run.Age != "12m ago" {
		t.Fatalf("run = %+v", v.Run)
	}
	if v.Texture != "temp.png" {
		t.Fatalf("texture = %q", v.Texture)
	}
}

func TestEmptyMatchesIsNotAnError(t *testing.T) {
	eng := &fakeEngine{}
	eng.set(engine.Output{Matches: []points.RawRecord{}, Timestamp: "2025-01-01 00z"}, nil)
	s := newSession(eng)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	v := s.View()
	if v.Status != StatusReady || v.State != navigation.StateNoData {
		t.Fatalf("view = %+v", v)
	}
	if v.PairCount != 0 || len(v.Pairs) != 0 || v.Message == "" || v.Error != "" {
		t.Fatalf("empty view = %+v", v)
	}

	s.SetMode(navigation.ModeSingle)
	if s.Step(Next) || s.Step(Previous) {
		t.Fatal("step moved on empty set")
	}
	if err := s.StartHold(Next); !errors.Is(err, ErrNotStepping) {
		t.Fatalf("StartHold err = %v; want ErrNotStepping", err)
	}
}

func TestRefreshWithNoCanonicalMatchIsNoData(t *testing.T) {
	eng := &fakeEngine{}
	eng.set(engine.Output{
		Matches:   []points.RawRecord{{"lat": -10.0, "lon": 350.0, "tmp2m": 12.5, "press": 0.98}},
		Timestamp: "2025-12-02 06z",
	}, nil)
	s := newSession(eng)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	v := s.View()
	if v.State != navigation.StateNoData || v.PairCount != 0 || v.Total != 0 || v.Message == "" {
		t.Fatalf("view = %+v; want no_data with message", v)
	}

	s.SetMode(navigation.ModeSingle)
	if s.Step(Next) {
		t.Fatal("step moved with no pairs")
	}
	if err := s.StartHold(Next); !errors.Is(err, ErrNotStepping) {
		t.Fatalf("StartHold err = %v; want ErrNotStepping", err)
	}
}

func TestRefreshFailureKeepsPreviousSet(t *testing.T) {
	eng := &fakeEngine{}
	eng.set(symmetricOutput(), nil)
	s := newSession(eng)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	eng.set(engine.Output{}, engine.ErrUnavailable)
	if err := s.Refresh(context.Background()); !errors.Is(err, engine.ErrUnavailable) {
		t.Fatalf("err = %v; want ErrUnavailable", err)
	}

	v := s.View()
	if v.Status != StatusError || v.Error == "" {
		t.Fatalf("view after failure = %+v", v)
	}
	if v.PairCount != 2 {
		t.Fatalf("previous set lost: %+v", v)
	}
	if eng.calls.Load() != 2 {
		t.Fatalf("engine calls = %d; want 2 (no automatic retry)", eng.calls.Load())
	}
}

func TestSingleStepNavigation(t *testing.T) {
	eng := &fakeEngine{}
	eng.set(symmetricOutput(), nil)
	s := newSession(eng)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	s.Toggle()
	v := s.View()
	if v.State != navigation.StateSingleStep || v.Index != 0 || v.Total != 4 || len(v.Pairs) != 1 {
		t.Fatalf("single view = %+v", v)
	}

	s.Step(Previous)
	v = s.View()
	if v.Index != 3 || v.Pairs[0].Primary.Lat != -45 || v.Pairs[0].Antipode.Lat != 45 {
		t.Fatalf("after previous = %+v", v)
	}

	s.Step(Next)
	s.Step(Next)
	if v = s.View(); v.Index != 1 {
		t.Fatalf("index = %d; want 1", v.Index)
	}

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if v = s.View(); v.Index != 0 || v.Mode != navigation.ModeAll {
		t.Fatalf("refresh did not reset navigation: %+v", v)
	}
}

func TestLayerSelectsTexture(t *testing.T) {
	eng := &fakeEngine{}
	eng.set(symmetricOutput(), nil)
	s := newSession(eng)
	_ = s.Refresh(context.Background())

	s.SetLayer(LayerPress)
	if v := s.View(); v.Texture != "press.png" || v.Layer != LayerPress {
		t.Fatalf("view = %+v", v)
	}
}

func TestHoldSteps(t *testing.T) {
	eng := &fakeEngine{}
	eng.set(symmetricOutput(), nil)
	s := newSession(eng, WithRepeatTiming(30*time.Millisecond, 5*time.Millisecond))
	_ = s.Refresh(context.Background())
	s.SetMode(navigation.ModeSingle)

	if err := s.StartHold(Next); err != nil {
		t.Fatalf("StartHold error: %v", err)
	}
	if !s.Holding(Next) {
		t.Fatal("hold not active")
	}
	if v := s.View(); v.Index != 1 {
		t.Fatalf("immediate step missing, index = %d", v.Index)
	}
	if !s.EndHold(Next) {
		t.Fatal("EndHold reported no active hold")
	}
	if s.EndHold(Next) {
		t.Fatal("second EndHold reported an active hold")
	}

	time.Sleep(60 * time.Millisecond)
	if v := s.View(); v.Index != 1 {
		t.Fatalf("tap moved index to %d; want 1", v.Index)
	}
}

func TestRefreshEndsActiveHold(t *testing.T) {
	eng := &fakeEngine{}
	eng.set(symmetricOutput(), nil)
	s := newSession(eng, WithRepeatTiming(5*time.Millisecond, 2*time.Millisecond))
	_ = s.Refresh(context.Background())
	s.SetMode(navigation.ModeSingle)

	if err := s.StartHold(Previous); err != nil {
		t.Fatalf("StartHold error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if s.Holding(Previous) {
		t.Fatal("hold survived refresh")
	}
	time.Sleep(20 * time.Millisecond)
	if v := s.View(); v.Index != 0 || v.Mode != navigation.ModeAll {
		t.Fatalf("state changed after refresh: %+v", v)
	}
}

func TestConcurrentRefreshSharesEngineCall(t *testing.T) {
	eng := &fakeEngine{block: make(chan struct{})}
	eng.set(symmetricOutput(), nil)
	s := newSession(eng)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Refresh(context.Background())
		}()
	}

	deadline := time.Now().Add(time.Second)
	for s.View().Status != StatusLoading && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.View().Status != StatusLoading {
		t.Fatal("session never reported loading")
	}
	time.Sleep(20 * time.Millisecond)
	close(eng.block)
	wg.Wait()

	if got := eng.calls.Load(); got != 1 {
		t.Fatalf("engine calls = %d; want 1", got)
	}
	if v := s.View(); v.Status != StatusReady {
		t.Fatalf("status = %s", v.Status)
	}
}

func TestRefreshSurvivesCallerCancel(t *testing.T) {
	eng := &fakeEngine{block: make(chan struct{})}
	eng.set(symmetricOutput(), nil)
	s := newSession(eng, WithTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Refresh(ctx) }()

	deadline := time.Now().Add(time.Second)
	for eng.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(eng.block)

	if err := <-errCh; err != nil {
		t.Fatalf("Refresh error after caller cancel: %v", err)
	}
	if v := s.View(); v.Status != StatusReady || v.PairCount != 2 {
		t.Fatalf("view = %+v", v)
	}
}
