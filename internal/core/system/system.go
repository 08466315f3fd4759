package system

import (
	"fmt"
	"time"

	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
)

// Phase is one of the three fixed per-frame checkpoints, in execution order.
type Phase int

const (
	PhasePrePhysics    Phase = iota // 0: host events, world→store sync, pre-physics logic
	PhaseDuringPhysics              // 1: logic overlapping the physics step
	PhasePostPhysics                // 2: post-physics logic, store→world sync, cleanup
)

const phaseCount = 3

var phaseNames = [phaseCount]string{"pre_physics", "during_physics", "post_physics"}

func (p Phase) String() string {
	if p < 0 || int(p) >= phaseCount {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) Valid() bool { return p >= 0 && int(p) < phaseCount }

// ParsePhase accepts the snake_case phase names used in config and scripts.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if s == name {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}

// Func is a per-phase callback. It runs with exclusive access to the store.
type Func func(dt time.Duration, s *ecs.Store)

// System is the interface every registered system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration, s *ecs.Store)
}
