package sampler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Dicklesworthstone/rktop/internal/model"
)

// State is the scheduler's lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateSampling
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Ticker is the periodic timer driving the scheduler.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewTicker wraps time.NewTicker. Fires missed while a pass is running are
// dropped, not queued.
func NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

// Snapshotter produces one snapshot per call.
type Snapshotter interface {
	Sample(ctx context.Context) model.Snapshot
}

// Scheduler runs a Snapshotter on a fixed period and hands each result to a
// sink.
type Scheduler struct {
	// NewTicker and Now are swapped out in tests.
	NewTicker func(time.Duration) Ticker
	Now       func() time.Time

	src      Snapshotter
	interval time.Duration
	log      *slog.Logger
	state    atomic.Int32
}

func NewScheduler(src Snapshotter, interval time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		NewTicker: NewTicker,
		Now:       time.Now,
		src:       src,
		interval:  interval,
		log:       log,
	}
}

func (s *Scheduler) State() State { return State(s.state.Load()) }

// Run samples once immediately and then on every tick until ctx is done.
// It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context, sink func(model.Snapshot)) error {
	s.state.Store(int32(StateIdle))
	defer s.state.Store(int32(StateStopped))

	ticker := s.NewTicker(s.interval)
	defer ticker.Stop()

	s.pass(ctx, sink)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			if ctx.Err() != nil {
				return nil
			}
			s.pass(ctx, sink)
		}
	}
}

func (s *Scheduler) pass(ctx context.Context, sink func(model.Snapshot)) {
	s.state.Store(int32(StateSampling))
	start := s.Now()
	snap := s.src.Sample(ctx)
	if elapsed := s.Now().Sub(start); elapsed > s.interval {
		s.log.Debug("sampling pass overran interval", "elapsed", elapsed, "interval", s.interval)
	}
	sink(snap)
	s.state.Store(int32(StateIdle))
}
