package world

import (
	"testing"

	"github.com/ecsbridge/ecsbridge/internal/core/event"
	"github.com/ecsbridge/ecsbridge/internal/geom"
	"github.com/ecsbridge/ecsbridge/internal/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActor_NotifiesOnlyOnChange(t *testing.T) {
	w := NewState(nil)
	a := w.Spawn("crate", geom.Identity())

	calls := 0
	sub := a.OnTransformChanged(func() { calls++ })

	a.Move(geom.Identity())
	assert.Equal(t, 0, calls, "same transform is not a change")

	a.SetWorldTransform(geom.At(geom.V3(1, 0, 0)), true, host.TeleportPhysics)
	assert.Equal(t, 1, calls)
	sweep, tp := a.LastApply()
	assert.True(t, sweep)
	assert.Equal(t, host.TeleportPhysics, tp)

	sub.Release()
	sub.Release()
	a.Move(geom.At(geom.V3(2, 0, 0)))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, a.Subscribers())
}

func TestState_DestroyInvalidatesAndAnnounces(t *testing.T) {
	bus := event.NewBus()
	w := NewState(bus)
	a := w.Spawn("crate", geom.Identity())
	b := w.Spawn("barrel", geom.Identity())

	var destroyed []string
	event.Subscribe(bus, func(ev event.ObjectDestroyed) { destroyed = append(destroyed, ev.Name) })

	w.Destroy(a)
	w.Destroy(a)
	assert.False(t, a.Valid())
	assert.Equal(t, 1, w.Count())
	assert.Nil(t, w.FindByName("crate"))
	require.Equal(t, b, w.FindByName("barrel"))

	a.Move(geom.At(geom.V3(5, 5, 5)))
	assert.Equal(t, 0, a.Writes(), "destroyed actors ignore writes")

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []string{"crate"}, destroyed)
}
