package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainAll(o *Observer) []Entity {
	var out []Entity
	o.Drain(func(e Entity) { out = append(out, e) })
	return out
}

func healthWhereTag(s *Store) *Observer {
	o := &Observer{}
	o.Connect(s, Update(C[health]()).Where(C[tag]()))
	return o
}

func TestObserver_RepeatedWritesCollapse(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)
	e := s.Create()
	Add(e, tag{})
	Add(e, health{})

	for i := 0; i < 5; i++ {
		Patch(e, func(h *health) { h.HP++ })
	}

	assert.Equal(t, []Entity{e}, drainAll(o))
	assert.Empty(t, drainAll(o), "drain clears the pending set")
}

func TestObserver_IgnoresStateBeforeConnect(t *testing.T) {
	s := NewStore()
	e := s.Create()
	Add(e, tag{})
	Add(e, health{HP: 1})

	o := healthWhereTag(s)
	assert.Empty(t, drainAll(o))

	MarkUpdated[health](e)
	assert.Equal(t, []Entity{e}, drainAll(o))
}

func TestObserver_GateMustBePresent(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)
	e := s.Create()
	Add(e, health{})

	Patch(e, func(h *health) { h.HP = 2 })
	assert.Empty(t, drainAll(o), "no gate, no report")

	// attaching the gate alone is not a tracked write
	Add(e, tag{})
	assert.Empty(t, drainAll(o))

	Replace(e, health{HP: 3})
	assert.Equal(t, []Entity{e}, drainAll(o))
}

func TestObserver_SilentWritesAreInvisible(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)
	e := s.Create()
	Add(e, tag{})
	Add(e, health{})
	drainAll(o)

	Get[health](e).HP = 99
	assert.Equal(t, 0, o.Len())
}

func TestObserver_DiscardOnGateRemovalOrDestroy(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)

	a := s.Create()
	Add(a, tag{})
	Add(a, health{})
	b := s.Create()
	Add(b, tag{})
	Add(b, health{})
	c := s.Create()
	Add(c, tag{})
	Add(c, health{})
	require.Equal(t, 3, o.Len())

	Remove[tag](a)
	s.Destroy(b)

	assert.Equal(t, []Entity{c}, drainAll(o))
}

func TestObserver_InsertionOrderAndReAdd(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)
	a, b := s.Create(), s.Create()
	Add(a, tag{})
	Add(b, tag{})

	Add(b, health{})
	Add(a, health{})
	Remove[health](b)
	Add(b, health{})

	assert.Equal(t, []Entity{a, b}, drainAll(o))
}

func TestObserver_WritesDuringDrainGoToNextBatch(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)
	e := s.Create()
	Add(e, tag{})
	Add(e, health{})

	visits := 0
	o.Drain(func(x Entity) {
		visits++
		Patch(x, func(h *health) { h.HP++ })
	})
	assert.Equal(t, 1, visits)
	assert.Equal(t, 1, o.Len())
}

func TestObserver_DestroyDuringDrainSkipsLaterEntity(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)
	a, b := s.Create(), s.Create()
	for _, e := range []Entity{a, b} {
		Add(e, tag{})
		Add(e, health{})
	}

	var seen []Entity
	o.Drain(func(x Entity) {
		seen = append(seen, x)
		s.Destroy(b)
	})
	assert.Equal(t, []Entity{a}, seen)
}

func TestObserver_DisconnectKeepsPending(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)
	e := s.Create()
	Add(e, tag{})
	Add(e, health{})

	o.Disconnect()
	assert.False(t, o.Connected())
	MarkUpdated[health](e)

	assert.Equal(t, []Entity{e}, drainAll(o))
	MarkUpdated[health](e)
	assert.Empty(t, drainAll(o))
}

func TestObserver_MultipleTrackedTypes(t *testing.T) {
	s := NewStore()
	o := &Observer{}
	o.Connect(s, Update(C[health](), C[position]()))
	e := s.Create()

	Add(e, health{})
	Add(e, position{})
	Patch(e, func(p *position) { p.X = 1 })

	assert.Equal(t, []Entity{e}, drainAll(o))
}

func TestObserver_ConnectTwicePanics(t *testing.T) {
	s := NewStore()
	o := healthWhereTag(s)
	assert.Panics(t, func() { o.Connect(s, Update(C[health]())) })
	assert.Panics(t, func() { (&Observer{}).Connect(s, Matcher{}) })
}
