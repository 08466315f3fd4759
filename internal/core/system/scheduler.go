package system

import (
	"fmt"
	"time"

	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/ecsbridge/ecsbridge/internal/core/event"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle identifies a registered callback. The zero Handle names nothing.
type Handle struct {
	id uuid.UUID
}

func (h Handle) IsZero() bool   { return h.id == uuid.Nil }
func (h Handle) String() string { return h.id.String() }

type entry struct {
	handle  Handle
	name    string
	fn      Func
	removed bool
}

// Scheduler runs per-phase callbacks against one store, in phase order, and
// brackets them with the transform sync passes:
//
//	PrePhysics:     host events → sync-in → callbacks
//	DuringPhysics:  callbacks
//	PostPhysics:    callbacks → sync-out → cleanup
//
// Hosts with a single checkpoint (WithSyncOutPhase(PhasePrePhysics)) only
// call PrePhysics, which then runs the callbacks of all three phases in
// order before sync-out and cleanup. The other checkpoints panic in that
// mode, so sync-out always follows every callback of the frame.
//
// Event bus handlers run before sync-in and see the previous frame's store
// transforms. They must not read synced transforms.
//
// Everything runs on the caller's goroutine; a phase returns only after all
// of its callbacks returned.
type Scheduler struct {
	store *ecs.Store
	log   *zap.Logger
	bus   *event.Bus

	phases       [phaseCount][]*entry
	syncIn       Func
	syncOut      Func
	syncOutPhase Phase

	frame     uint64
	started   bool
	last      Phase
	frameDone bool
}

type Option func(*Scheduler)

// WithSyncOutPhase selects the checkpoint hosting the store→world pass:
// PhasePostPhysics (default) or PhasePrePhysics for hosts that only offer a
// single checkpoint.
func WithSyncOutPhase(p Phase) Option {
	return func(s *Scheduler) {
		if p != PhasePrePhysics && p != PhasePostPhysics {
			panic(fmt.Sprintf("system: store→world pass cannot run in %s", p))
		}
		s.syncOutPhase = p
	}
}

// WithEventBus makes the scheduler deliver host events at frame start.
func WithEventBus(b *event.Bus) Option {
	return func(s *Scheduler) { s.bus = b }
}

func NewScheduler(store *ecs.Store, log *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:        store,
		log:          log,
		syncOutPhase: PhasePostPhysics,
	}
	for i := range s.phases {
		s.phases[i] = make([]*entry, 0, 16)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Store() *ecs.Store    { return s.store }
func (s *Scheduler) Frame() uint64        { return s.frame }
func (s *Scheduler) SyncOutPhase() Phase  { return s.syncOutPhase }
func (s *Scheduler) Len(phase Phase) int  { return len(s.phases[phase]) }
func (s *Scheduler) EventBus() *event.Bus { return s.bus }

// SetSyncPasses installs the world→store (in) and store→world (out) passes.
// Either may be nil.
func (s *Scheduler) SetSyncPasses(in, out Func) {
	s.syncIn = in
	s.syncOut = out
}

// Add appends fn to phase's callback list and returns its handle.
func (s *Scheduler) Add(phase Phase, fn Func) Handle {
	return s.add(phase, "", fn)
}

// AddDefault adds fn to PhasePrePhysics.
func (s *Scheduler) AddDefault(fn Func) Handle {
	return s.add(PhasePrePhysics, "", fn)
}

// AddNamed is Add with a name used in logs.
func (s *Scheduler) AddNamed(phase Phase, name string, fn Func) Handle {
	return s.add(phase, name, fn)
}

// Register adds a System to the phase it reports.
func (s *Scheduler) Register(sys System) Handle {
	return s.add(sys.Phase(), fmt.Sprintf("%T", sys), sys.Update)
}

func (s *Scheduler) add(phase Phase, name string, fn Func) Handle {
	if !phase.Valid() {
		panic(fmt.Sprintf("system: invalid phase %d", int(phase)))
	}
	if fn == nil {
		panic("system: nil callback")
	}
	h := Handle{id: uuid.New()}
	s.phases[phase] = append(s.phases[phase], &entry{handle: h, name: name, fn: fn})
	s.log.Debug("system added",
		zap.Stringer("phase", phase),
		zap.String("name", name),
		zap.Stringer("handle", h),
	)
	return h
}

// Remove unregisters the callback behind h. Unknown or already removed
// handles are ignored; the result reports whether anything was removed.
// A callback removed while its phase is running does not run afterwards.
func (s *Scheduler) Remove(h Handle) bool {
	if h.IsZero() {
		return false
	}
	for p := range s.phases {
		list := s.phases[p]
		for i, e := range list {
			if e.handle != h {
				continue
			}
			e.removed = true
			s.phases[p] = append(list[:i], list[i+1:]...)
			s.log.Debug("system removed",
				zap.Stringer("phase", Phase(p)),
				zap.String("name", e.name),
				zap.Stringer("handle", h),
			)
			return true
		}
	}
	return false
}

// RunPhase executes one checkpoint. Checkpoints of a frame must arrive in
// phase order; a new frame may only start once the previous one reached the
// store→world pass. Violations panic.
func (s *Scheduler) RunPhase(phase Phase, dt time.Duration) {
	s.checkOrder(phase)

	switch phase {
	case PhasePrePhysics:
		s.frame++
		s.frameDone = false
		s.dispatchEvents()
		s.runPass(s.syncIn, dt)
		s.runCallbacks(phase, dt)
		if s.syncOutPhase == PhasePrePhysics {
			s.runCallbacks(PhaseDuringPhysics, dt)
			s.runCallbacks(PhasePostPhysics, dt)
			s.finishFrame(dt)
		}
	case PhaseDuringPhysics:
		s.runCallbacks(phase, dt)
	case PhasePostPhysics:
		s.runCallbacks(phase, dt)
		if s.syncOutPhase == PhasePostPhysics {
			s.finishFrame(dt)
		}
	}
	s.started = true
	s.last = phase
}

// Tick runs all checkpoints of one frame.
func (s *Scheduler) Tick(dt time.Duration) {
	s.RunPhase(PhasePrePhysics, dt)
	if s.syncOutPhase == PhasePrePhysics {
		return
	}
	s.RunPhase(PhaseDuringPhysics, dt)
	s.RunPhase(PhasePostPhysics, dt)
}

func (s *Scheduler) checkOrder(phase Phase) {
	if !phase.Valid() {
		panic(fmt.Sprintf("system: invalid phase %d", int(phase)))
	}
	if phase == PhasePrePhysics {
		if s.started && !s.frameDone {
			panic(fmt.Sprintf("system: frame %d started before %s of frame %d ran", s.frame+1, s.syncOutPhase, s.frame))
		}
		return
	}
	if s.syncOutPhase == PhasePrePhysics {
		panic(fmt.Sprintf("system: %s is not a checkpoint when the store→world pass runs in %s", phase, s.syncOutPhase))
	}
	if !s.started || phase <= s.last {
		panic(fmt.Sprintf("system: checkpoint %s out of order (last %s)", phase, s.last))
	}
}

func (s *Scheduler) dispatchEvents() {
	if s.bus == nil {
		return
	}
	s.bus.SwapBuffers()
	if n := s.bus.DispatchAll(); n > 0 {
		s.log.Debug("host events dispatched", zap.Uint64("frame", s.frame), zap.Int("count", n))
	}
}

func (s *Scheduler) runPass(pass Func, dt time.Duration) {
	if pass != nil {
		pass(dt, s.store)
	}
}

func (s *Scheduler) runCallbacks(phase Phase, dt time.Duration) {
	list := s.phases[phase]
	if len(list) == 0 {
		return
	}
	// callbacks may add or remove callbacks
	snapshot := append([]*entry(nil), list...)
	for _, e := range snapshot {
		if !e.removed {
			e.fn(dt, s.store)
		}
	}
}

func (s *Scheduler) finishFrame(dt time.Duration) {
	s.runPass(s.syncOut, dt)
	if n := s.store.FlushDestroyQueue(); n > 0 {
		s.log.Debug("destroyed queued entities", zap.Uint64("frame", s.frame), zap.Int("count", n))
	}
	s.frameDone = true
}
