package world

import (
	"github.com/ecsbridge/ecsbridge/internal/core/event"
	"github.com/ecsbridge/ecsbridge/internal/geom"
)

// State is an in-process host world: it owns actors and announces their
// lifecycle on the event bus. Accessed only from the frame goroutine.
type State struct {
	actors map[uint64]*Actor
	order  []uint64
	nextID uint64
	bus    *event.Bus
}

// NewState creates an empty world. bus may be nil.
func NewState(bus *event.Bus) *State {
	return &State{
		actors: make(map[uint64]*Actor, 64),
		nextID: 1,
		bus:    bus,
	}
}

// Spawn creates an actor at t.
func (s *State) Spawn(name string, t geom.Transform) *Actor {
	a := &Actor{id: s.nextID, name: name, transform: t}
	s.nextID++
	s.actors[a.id] = a
	s.order = append(s.order, a.id)
	if s.bus != nil {
		event.Emit(s.bus, event.ObjectSpawned{ObjectID: a.id, Name: name})
	}
	return a
}

// Destroy removes a from the world. Every reference to it turns invalid
// and its change subscriptions are dropped.
func (s *State) Destroy(a *Actor) {
	if !a.Valid() {
		return
	}
	a.destroyed = true
	a.subs = nil
	a.subOrder = nil
	delete(s.actors, a.id)
	for i, id := range s.order {
		if id == a.id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.bus != nil {
		event.Emit(s.bus, event.ObjectDestroyed{ObjectID: a.id, Name: a.name})
	}
}

func (s *State) Get(id uint64) *Actor {
	return s.actors[id]
}

// FindByName returns the first live actor called name, or nil.
func (s *State) FindByName(name string) *Actor {
	for _, id := range s.order {
		if a := s.actors[id]; a.name == name {
			return a
		}
	}
	return nil
}

// AllActors iterates live actors in spawn order.
func (s *State) AllActors(fn func(*Actor)) {
	for _, id := range append([]uint64(nil), s.order...) {
		if a, ok := s.actors[id]; ok {
			fn(a)
		}
	}
}

func (s *State) Count() int { return len(s.actors) }
