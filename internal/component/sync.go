package component

import (
	"fmt"

	"github.com/ecsbridge/ecsbridge/internal/host"
)

// SyncMode selects which direction an object's transform is copied in.
type SyncMode uint8

const (
	SyncDisabled     SyncMode = iota // no markers attached
	SyncWorldToStore                 // SyncToStore only
	SyncStoreToWorld                 // SyncToWorld only
	SyncBothWays                     // both markers
)

var syncModeNames = []string{"disabled", "world_to_store", "store_to_world", "both_ways"}

func (m SyncMode) String() string {
	if int(m) < len(syncModeNames) {
		return syncModeNames[m]
	}
	return fmt.Sprintf("sync(%d)", uint8(m))
}

// ToStore reports whether the mode copies world transforms into the store.
func (m SyncMode) ToStore() bool { return m == SyncWorldToStore || m == SyncBothWays }

// ToWorld reports whether the mode applies store transforms to the world.
func (m SyncMode) ToWorld() bool { return m == SyncStoreToWorld || m == SyncBothWays }

func ParseSyncMode(s string) (SyncMode, error) {
	for i, name := range syncModeNames {
		if s == name {
			return SyncMode(i), nil
		}
	}
	return SyncDisabled, fmt.Errorf("unknown sync mode %q", s)
}

// SyncToStore marks an entity whose world transform is copied into the
// store. Dirty is set by the host change notification and cleared by the
// world→store pass.
type SyncToStore struct {
	Dirty bool
}

// SyncToWorld marks an entity whose store transform is applied to the
// world object. Dirty is set by any tracked Transform write and cleared by
// the store→world pass.
type SyncToWorld struct {
	Sweep    bool
	Teleport host.TeleportType
	Dirty    bool
}
