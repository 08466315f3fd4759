package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/config"
	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/ecsbridge/ecsbridge/internal/core/event"
	coresys "github.com/ecsbridge/ecsbridge/internal/core/system"
	"github.com/ecsbridge/ecsbridge/internal/data"
	"github.com/ecsbridge/ecsbridge/internal/persist"
	"github.com/ecsbridge/ecsbridge/internal/scripting"
	"github.com/ecsbridge/ecsbridge/internal/system"
	"github.com/ecsbridge/ecsbridge/internal/transform"
	"github.com/ecsbridge/ecsbridge/internal/world"
	"github.com/ecsbridge/ecsbridge/internal/wrapper"
	"go.uber.org/zap"
)

// app wires one host world to one store.
type app struct {
	log   *zap.Logger
	store *ecs.Store
	bus   *event.Bus
	world *world.State
	sched *coresys.Scheduler
	sync  *transform.Synchronizer
	lua   *scripting.Engine

	db       *persist.DB
	snapshot *system.SnapshotSystem

	bridges map[uint64]*wrapper.Bridge
	conns   []ecs.Connection
}

// newApp builds the core. Scripts and the database are attached
// separately so tests can run without them.
func newApp(cfg *config.Config, log *zap.Logger) (*app, error) {
	syncOut, err := coresys.ParsePhase(cfg.Frame.StoreToWorld)
	if err != nil {
		return nil, fmt.Errorf("frame.store_to_world: %w", err)
	}

	store := ecs.NewStore()
	bus := event.NewBus()
	a := &app{
		log:     log,
		store:   store,
		bus:     bus,
		world:   world.NewState(bus),
		sched:   coresys.NewScheduler(store, log, coresys.WithSyncOutPhase(syncOut), coresys.WithEventBus(bus)),
		sync:    transform.NewSynchronizer(store, log),
		bridges: make(map[uint64]*wrapper.Bridge),
	}
	a.sync.Install(a.sched)
	a.conns = append(a.conns, component.TrackRelationships(store))

	ecs.Add(store.CreateSingleton(), component.FrameClock{})
	a.sched.AddNamed(coresys.PhasePrePhysics, "clock", advanceClock)
	a.sched.Register(system.NewMovementSystem())

	event.Subscribe(bus, a.onObjectSpawned)
	event.Subscribe(bus, a.onObjectDestroyed)
	return a, nil
}

// attachScripts loads every script in dir into a fresh engine.
func (a *app) attachScripts(dir string) error {
	a.lua = scripting.NewEngine(a.sched, a.log)
	if err := a.lua.LoadDir(dir); err != nil {
		return fmt.Errorf("scripts: %w", err)
	}
	a.log.Info("scripts loaded", zap.String("dir", dir), zap.Int("systems", a.lua.Systems()))
	return nil
}

// attachSnapshots opens the database and records transforms periodically.
func (a *app) attachSnapshots(ctx context.Context, cfg *config.Config) error {
	db, err := persist.Open(ctx, cfg.Database, a.log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	a.db = db
	a.snapshot = system.NewSnapshotSystem(persist.NewSnapshotRepo(db), a.log, cfg.Snapshot.Interval)
	a.sched.Register(a.snapshot)
	return nil
}

// spawnScene creates one host object per scene entry and registers its
// modules with the store. Parents are spawned before their children.
func (a *app) spawnScene(scene *data.Scene) error {
	for _, def := range scene.Objects {
		actor := a.world.Spawn(def.Name, def.Transform)
		bridge := wrapper.NewBridge(a.store, actor)
		actor.AddModule(bridge)
		actor.AddModule(wrapper.NewData(component.NewName(def.Name)))
		actor.AddModule(transform.NewSync(actor, transform.Options{
			Mode:     def.Mode,
			Sweep:    def.Sweep,
			Teleport: def.Teleport,
		}))
		if !def.Velocity.IsZero() {
			actor.AddModule(wrapper.NewData(component.Velocity{Linear: def.Velocity}))
		}
		if _, err := wrapper.RegisterObject(actor); err != nil {
			return fmt.Errorf("register %q: %w", def.Name, err)
		}
		a.bridges[actor.ID()] = bridge

		if def.Parent != "" {
			parent := a.world.FindByName(def.Parent)
			if parent == nil {
				return fmt.Errorf("object %q: parent %q not spawned", def.Name, def.Parent)
			}
			component.AttachChild(a.bridges[parent.ID()].Entity(), bridge.Entity())
		}
	}
	a.log.Info("scene spawned", zap.Int("objects", scene.Count()), zap.Int("entities", a.store.Size()))
	return nil
}

func (a *app) tick(dt time.Duration) {
	a.sched.Tick(dt)
}

func (a *app) close() {
	if a.snapshot != nil {
		a.snapshot.SaveAll(a.store)
	}
	if a.lua != nil {
		a.lua.Close()
	}
	for _, c := range a.conns {
		c.Release()
	}
	a.sync.Close()
	if a.db != nil {
		a.db.Close()
	}
}

func (a *app) onObjectSpawned(ev event.ObjectSpawned) {
	a.log.Debug("object spawned", zap.Uint64("object", ev.ObjectID), zap.String("name", ev.Name))
}

// onObjectDestroyed destroys the entity of a host object that went away.
func (a *app) onObjectDestroyed(ev event.ObjectDestroyed) {
	bridge, ok := a.bridges[ev.ObjectID]
	if !ok {
		return
	}
	delete(a.bridges, ev.ObjectID)
	e := bridge.Entity()
	bridge.Unregister()
	a.log.Debug("object destroyed", zap.Uint64("object", ev.ObjectID), zap.String("name", ev.Name), zap.Stringer("entity", e))
}

func advanceClock(dt time.Duration, s *ecs.Store) {
	ecs.Patch(s.Singleton(), func(c *component.FrameClock) {
		c.Frame++
		c.Elapsed += dt
	})
}
