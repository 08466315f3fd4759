package transform

import (
	"testing"
	"time"

	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/ecsbridge/ecsbridge/internal/core/system"
	"github.com/ecsbridge/ecsbridge/internal/geom"
	"github.com/ecsbridge/ecsbridge/internal/host"
	"github.com/ecsbridge/ecsbridge/internal/world"
	"github.com/ecsbridge/ecsbridge/internal/wrapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const dt = 16 * time.Millisecond

type fixture struct {
	store *ecs.Store
	world *world.State
	sync  *Synchronizer
	sched *system.Scheduler
}

func newFixture(opts ...system.Option) *fixture {
	store := ecs.NewStore()
	f := &fixture{
		store: store,
		world: world.NewState(nil),
		sync:  NewSynchronizer(store, zap.NewNop()),
		sched: system.NewScheduler(store, zap.NewNop(), opts...),
	}
	f.sync.Install(f.sched)
	return f
}

func (f *fixture) spawn(t *testing.T, at geom.Transform, opts Options) (*world.Actor, *Sync, ecs.Entity) {
	t.Helper()
	a := f.world.Spawn("obj", at)
	bridge := wrapper.NewBridge(f.store, a)
	s := NewSync(a, opts)
	a.AddModule(bridge)
	a.AddModule(s)
	_, err := wrapper.RegisterObject(a)
	require.NoError(t, err)
	return a, s, bridge.Entity()
}

func markers(e ecs.Entity) (toStore, toWorld bool) {
	return ecs.Has[component.SyncToStore](e), ecs.Has[component.SyncToWorld](e)
}

var (
	t0 = geom.Identity()
	t1 = geom.At(geom.V3(1, 2, 3))
	t2 = geom.At(geom.V3(-4, 0, 9))
)

func TestSync_RegisterCopiesWorldTransform(t *testing.T) {
	f := newFixture()
	_, _, e := f.spawn(t, t1, Options{Mode: component.SyncDisabled})
	assert.True(t, ecs.Get[geom.Transform](e).Equal(t1))
}

func TestSync_ModeMarkers(t *testing.T) {
	cases := []struct {
		mode             component.SyncMode
		toStore, toWorld bool
	}{
		{component.SyncDisabled, false, false},
		{component.SyncWorldToStore, true, false},
		{component.SyncStoreToWorld, false, true},
		{component.SyncBothWays, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.mode.String(), func(t *testing.T) {
			f := newFixture()
			a, s, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})

			s.SetSyncMode(tc.mode)
			gotStore, gotWorld := markers(e)
			assert.Equal(t, tc.toStore, gotStore)
			assert.Equal(t, tc.toWorld, gotWorld)
			assert.Equal(t, tc.toStore, s.Subscribed())
			if tc.toStore {
				assert.Equal(t, 1, a.Subscribers())
			} else {
				assert.Equal(t, 0, a.Subscribers())
			}
		})
	}
}

func TestSync_ModeChangesNeverLeakSubscriptions(t *testing.T) {
	f := newFixture()
	a, s, _ := f.spawn(t, t0, Options{Mode: component.SyncWorldToStore})
	for _, m := range []component.SyncMode{
		component.SyncBothWays, component.SyncWorldToStore, component.SyncBothWays,
		component.SyncStoreToWorld, component.SyncBothWays, component.SyncDisabled,
	} {
		s.SetSyncMode(m)
	}
	assert.Equal(t, 0, a.Subscribers())
}

func TestSync_EnteringWorldToStoreReinitializesTransform(t *testing.T) {
	f := newFixture()
	a, s, e := f.spawn(t, t0, Options{Mode: component.SyncDisabled})
	a.Move(t1)
	assert.True(t, ecs.Get[geom.Transform](e).Equal(t0))

	s.SetSyncMode(component.SyncWorldToStore)
	assert.True(t, ecs.Get[geom.Transform](e).Equal(t1))
}

func TestSync_RoundTripIsNoOp(t *testing.T) {
	f := newFixture()
	a, _, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})

	a.Move(t1)
	require.Equal(t, 1, a.Writes())
	for i := 0; i < 3; i++ {
		f.sync.CopyToStore(dt, f.store)
		f.sync.CopyToWorld(dt, f.store)
	}

	assert.True(t, a.WorldTransform().Equal(t1))
	assert.True(t, ecs.Get[geom.Transform](e).Equal(t1))
	assert.Equal(t, 1, a.Writes(), "no echo back to the world")
	assert.False(t, ecs.Get[component.SyncToWorld](e).Dirty)
}

func TestSync_TwoFrameScenario(t *testing.T) {
	f := newFixture()
	a, _, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})

	var writeT2 bool
	f.sched.Add(system.PhasePrePhysics, func(_ time.Duration, _ *ecs.Store) {
		if writeT2 {
			ecs.Replace(e, t2)
		}
	})

	// frame 1: the world moves before PrePhysics
	a.Move(t1)
	f.sched.RunPhase(system.PhasePrePhysics, dt)
	assert.True(t, ecs.Get[geom.Transform](e).Equal(t1))
	assert.False(t, ecs.Get[component.SyncToStore](e).Dirty)
	f.sched.RunPhase(system.PhaseDuringPhysics, dt)
	f.sched.RunPhase(system.PhasePostPhysics, dt)
	assert.True(t, a.WorldTransform().Equal(t1))
	assert.Equal(t, 1, a.Writes())

	// frame 2: store-side write only
	writeT2 = true
	f.sched.Tick(dt)
	assert.True(t, a.WorldTransform().Equal(t2))
	assert.Equal(t, 2, a.Writes())
	assert.False(t, ecs.Get[component.SyncToStore](e).Dirty, "own write is not a world-side change")

	// frame 3: nothing changes on either side
	writeT2 = false
	updates := 0
	conn := ecs.OnUpdate[geom.Transform](f.store, func(ecs.Entity) { updates++ })
	defer conn.Release()
	f.sched.RunPhase(system.PhasePrePhysics, dt)
	assert.Zero(t, updates, "world→store pass copies nothing")
	f.sched.RunPhase(system.PhaseDuringPhysics, dt)
	f.sched.RunPhase(system.PhasePostPhysics, dt)
	assert.Equal(t, 2, a.Writes())
}

func TestSync_StoreRoundTripIsNoOp(t *testing.T) {
	f := newFixture()
	a, _, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})

	ecs.Replace(e, t1)
	for i := 0; i < 3; i++ {
		f.sched.Tick(dt)
	}
	assert.True(t, a.WorldTransform().Equal(t1))
	assert.Equal(t, 1, a.Writes())
	assert.False(t, ecs.Get[component.SyncToStore](e).Dirty)
	assert.False(t, ecs.Get[component.SyncToWorld](e).Dirty)
	in, out := f.sync.Pending()
	assert.Zero(t, in+out)
}

func TestSync_WorldChangeDuringFrameSurvivesStoreWrite(t *testing.T) {
	f := newFixture()
	a, _, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})

	// world moves after sync-in, store writes later in the same frame
	f.sched.RunPhase(system.PhasePrePhysics, dt)
	a.Move(t1)
	f.sched.RunPhase(system.PhaseDuringPhysics, dt)
	ecs.Replace(e, t2)
	f.sched.RunPhase(system.PhasePostPhysics, dt)
	assert.True(t, a.WorldTransform().Equal(t2))
	assert.True(t, ecs.Get[component.SyncToStore](e).Dirty)

	f.sched.RunPhase(system.PhasePrePhysics, dt)
	assert.False(t, ecs.Get[component.SyncToStore](e).Dirty)
}

func TestSync_PassesBracketCallbacks(t *testing.T) {
	f := newFixture()
	a, _, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})
	a.Move(t1)

	var seen []string
	f.sched.Add(system.PhasePrePhysics, func(_ time.Duration, _ *ecs.Store) {
		if ecs.Get[geom.Transform](e).Equal(t1) {
			seen = append(seen, "pre: store has world copy")
		}
		ecs.Replace(e, t2)
	})
	f.sched.Add(system.PhasePostPhysics, func(_ time.Duration, _ *ecs.Store) {
		if !a.WorldTransform().Equal(t2) {
			seen = append(seen, "post: world not yet written")
		}
	})

	f.sched.Tick(dt)
	assert.Equal(t, []string{"pre: store has world copy", "post: world not yet written"}, seen)
	assert.True(t, a.WorldTransform().Equal(t2))
}

func TestSync_SingleCheckpoint(t *testing.T) {
	f := newFixture(system.WithSyncOutPhase(system.PhasePrePhysics))
	a, _, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})

	f.sched.Add(system.PhasePrePhysics, func(_ time.Duration, _ *ecs.Store) {
		ecs.Replace(e, t2)
	})
	f.sched.RunPhase(system.PhasePrePhysics, dt)
	assert.True(t, a.WorldTransform().Equal(t2))
}

func TestSync_StoreToWorld(t *testing.T) {
	f := newFixture()
	a, s, e := f.spawn(t, t0, Options{Mode: component.SyncStoreToWorld, Sweep: true, Teleport: host.TeleportPhysics})

	f.sched.Tick(dt)
	assert.Equal(t, 0, a.Writes(), "initial apply matches the world")

	// silent writes are not applied
	*ecs.Get[geom.Transform](e) = t1
	f.sched.Tick(dt)
	assert.True(t, a.WorldTransform().Equal(t0))

	ecs.MarkUpdated[geom.Transform](e)
	f.sched.Tick(dt)
	assert.True(t, a.WorldTransform().Equal(t1))
	sweep, tp := a.LastApply()
	assert.True(t, sweep)
	assert.Equal(t, host.TeleportPhysics, tp)

	// world-side moves do not reach the store
	a.Move(t2)
	f.sched.Tick(dt)
	assert.True(t, ecs.Get[geom.Transform](e).Equal(t1))

	s.SetPolicy(false, host.TeleportReset)
	ecs.Replace(e, t0)
	f.sched.Tick(dt)
	sweep, tp = a.LastApply()
	assert.False(t, sweep)
	assert.Equal(t, host.TeleportReset, tp)
}

func TestSync_StoreToWorldAppliesOnEntry(t *testing.T) {
	f := newFixture()
	a, s, e := f.spawn(t, t0, Options{Mode: component.SyncDisabled})
	*ecs.Get[geom.Transform](e) = t2

	s.SetSyncMode(component.SyncStoreToWorld)
	assert.True(t, ecs.Get[component.SyncToWorld](e).Dirty)
	f.sched.Tick(dt)
	assert.True(t, a.WorldTransform().Equal(t2))
}

func TestSync_StaleObjectDestroysEntity(t *testing.T) {
	f := newFixture()
	a, _, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})

	f.world.Destroy(a)
	ecs.Replace(e, t1)
	f.sched.Tick(dt)

	assert.False(t, e.Valid())
	assert.Equal(t, 0, f.store.Size())
}

func TestSynchronizer_Close(t *testing.T) {
	f := newFixture()
	a, _, e := f.spawn(t, t0, Options{Mode: component.SyncBothWays})
	f.sync.Close()

	ecs.Replace(e, t2)
	f.sched.Tick(dt)
	assert.True(t, a.WorldTransform().Equal(t0))
	in, out := f.sync.Pending()
	assert.Zero(t, in)
	assert.Zero(t, out)
}
