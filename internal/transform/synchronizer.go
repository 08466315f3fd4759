// Package transform keeps store-side Transform components and host world
// transforms in step.
//
// World→store copies run in PrePhysics before any user logic, store→world
// copies run after all user logic of the frame. Each direction is gated by
// a dirty flag that the opposite pass never sets for its own output, which
// keeps a round trip from echoing back.
package transform

import (
	"time"

	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/ecsbridge/ecsbridge/internal/core/system"
	"github.com/ecsbridge/ecsbridge/internal/geom"
	"go.uber.org/zap"
)

// Synchronizer runs the two sync passes over one store.
type Synchronizer struct {
	store *ecs.Store
	log   *zap.Logger

	toStore ecs.Observer
	toWorld ecs.Observer
	hooks   []ecs.Connection
}

func NewSynchronizer(store *ecs.Store, log *zap.Logger) *Synchronizer {
	sy := &Synchronizer{store: store, log: log}

	sy.toStore.Connect(store, ecs.Update(ecs.C[component.SyncToStore]()).
		Where(ecs.C[geom.Transform](), ecs.C[component.WorldObjectRef]()))
	sy.toWorld.Connect(store, ecs.Update(ecs.C[geom.Transform]()).
		Where(ecs.C[component.SyncToWorld](), ecs.C[component.WorldObjectRef]()))

	sy.hooks = append(sy.hooks,
		ecs.OnConstruct[geom.Transform](store, markWorldDirty),
		ecs.OnUpdate[geom.Transform](store, markWorldDirty),
	)
	return sy
}

// Install makes sched run the passes around its callbacks.
func (sy *Synchronizer) Install(sched *system.Scheduler) {
	sched.SetSyncPasses(sy.CopyToStore, sy.CopyToWorld)
}

// Close disconnects the observers and hooks. Pending changes are dropped.
func (sy *Synchronizer) Close() {
	sy.toStore.Disconnect()
	sy.toWorld.Disconnect()
	sy.toStore.Clear()
	sy.toWorld.Clear()
	for _, c := range sy.hooks {
		c.Release()
	}
	sy.hooks = nil
}

// Pending returns the number of entities waiting for each pass.
func (sy *Synchronizer) Pending() (toStore, toWorld int) {
	return sy.toStore.Len(), sy.toWorld.Len()
}

// CopyToStore is the world→store pass.
func (sy *Synchronizer) CopyToStore(_ time.Duration, _ *ecs.Store) {
	copied, stale := 0, 0
	sy.toStore.Drain(func(e ecs.Entity) {
		ts, ok := ecs.TryGet[component.SyncToStore](e)
		if !ok || !ts.Dirty {
			return
		}
		ref := ecs.Get[component.WorldObjectRef](e)
		if !ref.Valid() {
			sy.store.MarkForDestruction(e)
			stale++
			return
		}
		ecs.Replace(e, ref.Object.WorldTransform())
		ts.Dirty = false
		if tw, ok := ecs.TryGet[component.SyncToWorld](e); ok {
			// not a store-side change
			tw.Dirty = false
		}
		copied++
	})
	if copied > 0 || stale > 0 {
		sy.log.Debug("world→store pass", zap.Int("copied", copied), zap.Int("stale", stale))
	}
}

// CopyToWorld is the store→world pass. It is the only place this package
// writes to host objects.
func (sy *Synchronizer) CopyToWorld(_ time.Duration, _ *ecs.Store) {
	applied, stale := 0, 0
	sy.toWorld.Drain(func(e ecs.Entity) {
		tw, ok := ecs.TryGet[component.SyncToWorld](e)
		if !ok || !tw.Dirty {
			return
		}
		ref := ecs.Get[component.WorldObjectRef](e)
		if !ref.Valid() {
			sy.store.MarkForDestruction(e)
			stale++
			return
		}
		t := ecs.Get[geom.Transform](e)
		tw.Dirty = false
		// a pending world-side change stays dirty; the echo of this write does not
		ts, hadStore := ecs.TryGet[component.SyncToStore](e)
		worldDirty := hadStore && ts.Dirty
		ref.Object.SetWorldTransform(*t, tw.Sweep, tw.Teleport)
		if ts, ok := ecs.TryGet[component.SyncToStore](e); ok && !worldDirty {
			ts.Dirty = false
		}
		applied++
	})
	if applied > 0 || stale > 0 {
		sy.log.Debug("store→world pass", zap.Int("applied", applied), zap.Int("stale", stale))
	}
}

// markWorldDirty flags a signaled Transform write for the store→world pass.
func markWorldDirty(e ecs.Entity) {
	if tw, ok := ecs.TryGet[component.SyncToWorld](e); ok {
		tw.Dirty = true
	}
}
