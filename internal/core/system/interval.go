package system

import (
	"time"

	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
)

// IntervalSystem runs fn once accumulated frame time reaches interval, then
// resets the accumulator to zero (the remainder is dropped, so the effective
// period drifts slightly under variable frame time). An interval <= 0 runs
// fn on every update.
type IntervalSystem struct {
	phase    Phase
	interval time.Duration
	elapsed  time.Duration
	fn       Func
}

func NewIntervalSystem(phase Phase, interval time.Duration, fn Func) *IntervalSystem {
	return &IntervalSystem{phase: phase, interval: interval, fn: fn}
}

func (s *IntervalSystem) Phase() Phase                { return s.phase }
func (s *IntervalSystem) Interval() time.Duration     { return s.interval }
func (s *IntervalSystem) Elapsed() time.Duration      { return s.elapsed }
func (s *IntervalSystem) SetInterval(d time.Duration) { s.interval = d }

func (s *IntervalSystem) Update(dt time.Duration, st *ecs.Store) {
	if s.interval <= 0 {
		s.fn(dt, st)
		return
	}
	s.elapsed += dt
	if s.elapsed >= s.interval {
		s.elapsed = 0
		s.fn(dt, st)
	}
}

// Every wraps fn in an IntervalSystem and returns its Update as a Func.
func Every(interval time.Duration, fn Func) Func {
	return NewIntervalSystem(PhasePrePhysics, interval, fn).Update
}
