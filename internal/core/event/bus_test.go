package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversNextFrame(t *testing.T) {
	b := NewBus()
	var got []ObjectDestroyed
	Subscribe(b, func(ev ObjectDestroyed) { got = append(got, ev) })

	Emit(b, ObjectDestroyed{ObjectID: 1, Name: "crate"})
	assert.Equal(t, 1, b.Pending())
	assert.Equal(t, 0, b.DispatchAll(), "nothing is in the front buffer yet")

	b.SwapBuffers()
	assert.Equal(t, 1, b.DispatchAll())
	assert.Equal(t, []ObjectDestroyed{{ObjectID: 1, Name: "crate"}}, got)

	// dispatched events are not delivered twice
	b.SwapBuffers()
	assert.Equal(t, 0, b.DispatchAll())
	assert.Len(t, got, 1)
}

func TestBus_TypedRouting(t *testing.T) {
	b := NewBus()
	var order []string
	Subscribe(b, func(ev ObjectSpawned) { order = append(order, "spawn:"+ev.Name) })
	Subscribe(b, func(ev ObjectDestroyed) { order = append(order, "destroy:"+ev.Name) })

	Emit(b, ObjectSpawned{Name: "a"})
	Emit(b, ObjectDestroyed{Name: "a"})
	Emit(b, ObjectSpawned{Name: "b"})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, []string{"spawn:a", "spawn:b", "destroy:a"}, order)
}
