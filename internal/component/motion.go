package component

import "github.com/ecsbridge/ecsbridge/internal/geom"

// Velocity moves an entity's Transform each frame (units per second).
type Velocity struct {
	Linear geom.Vec3
}
