// Package host describes the only things the bridge needs from the
// simulation host: reading and writing an object's world transform, being
// told when it changes, and finding the object's sibling modules.
package host

import (
	"fmt"

	"github.com/ecsbridge/ecsbridge/internal/geom"
)

// TeleportType tells the host how to treat physics state when a transform
// is applied from the store.
type TeleportType uint8

const (
	TeleportNone    TeleportType = iota // move normally, keep velocity
	TeleportPhysics                     // teleport, keep velocity
	TeleportReset                       // teleport and reset physics state
)

var teleportNames = []string{"none", "teleport_physics", "reset_physics"}

func (t TeleportType) String() string {
	if int(t) < len(teleportNames) {
		return teleportNames[t]
	}
	return fmt.Sprintf("teleport(%d)", uint8(t))
}

// ParseTeleportType accepts the names printed by String; "" means none.
func ParseTeleportType(s string) (TeleportType, error) {
	if s == "" {
		return TeleportNone, nil
	}
	for i, name := range teleportNames {
		if s == name {
			return TeleportType(i), nil
		}
	}
	return TeleportNone, fmt.Errorf("unknown teleport type %q", s)
}

// Subscription is a disposable change-notification registration. Release
// is idempotent.
type Subscription interface {
	Release()
}

// Object is a host-side world object. Implementations are weak handles:
// Valid must be checked before every other call, because the host may have
// destroyed the object.
type Object interface {
	ID() uint64
	Name() string
	Valid() bool

	WorldTransform() geom.Transform
	SetWorldTransform(t geom.Transform, sweep bool, teleport TeleportType)

	// OnTransformChanged calls fn after every change of the world
	// transform, whoever made it.
	OnTransformChanged(fn func()) Subscription

	// Modules returns the object's attached modules in attach order.
	Modules() []any
}
