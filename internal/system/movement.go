package system

import (
	"time"

	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	coresys "github.com/ecsbridge/ecsbridge/internal/core/system"
	"github.com/ecsbridge/ecsbridge/internal/geom"
)

// MovementSystem integrates Velocity into Transform. DuringPhysics.
// Writes are signaled so the store→world pass picks them up.
type MovementSystem struct {
	moved []ecs.Entity
}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseDuringPhysics }

func (s *MovementSystem) Update(dt time.Duration, store *ecs.Store) {
	step := dt.Seconds()
	if step == 0 {
		return
	}
	s.moved = s.moved[:0]
	ecs.Each2(store, func(e ecs.Entity, v *component.Velocity, _ *geom.Transform) {
		if !v.Linear.IsZero() {
			s.moved = append(s.moved, e)
		}
	})
	for _, e := range s.moved {
		delta := ecs.Get[component.Velocity](e).Linear.Scale(step)
		ecs.Patch(e, func(t *geom.Transform) { t.Location = t.Location.Add(delta) })
	}
}
