package world

import (
	"github.com/ecsbridge/ecsbridge/internal/geom"
	"github.com/ecsbridge/ecsbridge/internal/host"
	"github.com/google/uuid"
)

// Actor is a host-side object with a world transform and a list of
// attached modules. Accessed only from the frame goroutine, no locks.
type Actor struct {
	id        uint64
	name      string
	transform geom.Transform
	modules   []any
	destroyed bool

	subs     map[uuid.UUID]func()
	subOrder []uuid.UUID

	// bookkeeping for callers that want to see how the actor was moved
	writes       int
	lastSweep    bool
	lastTeleport host.TeleportType
}

var _ host.Object = (*Actor)(nil)

func (a *Actor) ID() uint64     { return a.id }
func (a *Actor) Name() string   { return a.name }
func (a *Actor) Valid() bool    { return a != nil && !a.destroyed }
func (a *Actor) Modules() []any { return a.modules }

// Writes returns how many transform changes were applied to the actor.
func (a *Actor) Writes() int { return a.writes }

// LastApply returns the sweep flag and teleport type of the last applied
// transform change.
func (a *Actor) LastApply() (bool, host.TeleportType) { return a.lastSweep, a.lastTeleport }

// AddModule attaches m. Modules are handed out in attach order.
func (a *Actor) AddModule(m any) {
	a.modules = append(a.modules, m)
}

func (a *Actor) WorldTransform() geom.Transform {
	return a.transform
}

// SetWorldTransform applies t. Change listeners only fire when the
// transform actually changed; writes to a destroyed actor are dropped.
func (a *Actor) SetWorldTransform(t geom.Transform, sweep bool, teleport host.TeleportType) {
	if !a.Valid() {
		return
	}
	if a.transform.Equal(t) {
		return
	}
	a.transform = t
	a.writes++
	a.lastSweep = sweep
	a.lastTeleport = teleport
	a.notify()
}

// Move is a gameplay-side transform write.
func (a *Actor) Move(t geom.Transform) {
	a.SetWorldTransform(t, false, host.TeleportNone)
}

func (a *Actor) OnTransformChanged(fn func()) host.Subscription {
	if a.subs == nil {
		a.subs = make(map[uuid.UUID]func())
	}
	id := uuid.New()
	a.subs[id] = fn
	a.subOrder = append(a.subOrder, id)
	return &subscription{actor: a, id: id}
}

// Subscribers returns the number of live change subscriptions.
func (a *Actor) Subscribers() int { return len(a.subs) }

func (a *Actor) notify() {
	order := append([]uuid.UUID(nil), a.subOrder...)
	for _, id := range order {
		if fn, ok := a.subs[id]; ok {
			fn()
		}
	}
}

func (a *Actor) unsubscribe(id uuid.UUID) {
	if _, ok := a.subs[id]; !ok {
		return
	}
	delete(a.subs, id)
	for i, cur := range a.subOrder {
		if cur == id {
			a.subOrder = append(a.subOrder[:i], a.subOrder[i+1:]...)
			break
		}
	}
}

type subscription struct {
	actor *Actor
	id    uuid.UUID
}

func (s *subscription) Release() {
	s.actor.unsubscribe(s.id)
}
