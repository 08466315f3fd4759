package transform

import (
	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/ecsbridge/ecsbridge/internal/geom"
	"github.com/ecsbridge/ecsbridge/internal/host"
	"github.com/ecsbridge/ecsbridge/internal/wrapper"
)

// Options is the sync policy of one object.
type Options struct {
	Mode     component.SyncMode
	Sweep    bool
	Teleport host.TeleportType
}

// Sync is the wrapper that owns an object's Transform component and its
// sync markers. The attached markers always match Mode.
type Sync struct {
	wrapper.Base
	obj  host.Object
	opts Options
	sub  host.Subscription
}

var (
	_ wrapper.Wrapper  = (*Sync)(nil)
	_ wrapper.Releaser = (*Sync)(nil)
)

func NewSync(obj host.Object, opts Options) *Sync {
	if obj == nil {
		panic("wrapper: transform sync needs an object")
	}
	return &Sync{obj: obj, opts: opts}
}

func (s *Sync) Mode() component.SyncMode { return s.opts.Mode }
func (s *Sync) Options() Options         { return s.opts }

// Subscribed reports whether s listens to host transform changes.
func (s *Sync) Subscribed() bool { return s.sub != nil }

// RegisterWithStore writes the world transform into the store and attaches
// the markers of the configured mode.
func (s *Sync) RegisterWithStore() {
	if s.Registered() {
		return
	}
	ecs.AddOrReplace(s.Entity(), s.obj.WorldTransform())
	s.MarkRegistered()
	s.apply(s.opts.Mode)
}

// SetSyncMode switches the sync direction. Before registration it only
// records the mode.
func (s *Sync) SetSyncMode(m component.SyncMode) {
	s.opts.Mode = m
	if s.Registered() {
		s.apply(m)
	}
}

// SetPolicy changes how store transforms are applied to the world. An
// attached SyncToWorld is refreshed in place and keeps its dirty flag.
func (s *Sync) SetPolicy(sweep bool, teleport host.TeleportType) {
	s.opts.Sweep = sweep
	s.opts.Teleport = teleport
	if !s.Registered() || !s.opts.Mode.ToWorld() {
		return
	}
	ecs.Patch(s.Entity(), func(c *component.SyncToWorld) {
		c.Sweep = sweep
		c.Teleport = teleport
	})
}

// Release drops the host subscription.
func (s *Sync) Release() {
	s.unsubscribe()
}

func (s *Sync) apply(m component.SyncMode) {
	e := s.Entity()

	if !m.ToStore() {
		ecs.RemoveIfExists[component.SyncToStore](e)
		s.unsubscribe()
	}
	if !m.ToWorld() {
		ecs.RemoveIfExists[component.SyncToWorld](e)
	}

	if m.ToWorld() {
		// the first store→world pass after this applies the transform
		ecs.AddOrReplace(e, component.SyncToWorld{
			Sweep:    s.opts.Sweep,
			Teleport: s.opts.Teleport,
			Dirty:    true,
		})
	}

	if m.ToStore() {
		ecs.AddOrReplace(e, component.SyncToStore{})
		if s.obj.Valid() {
			ecs.Replace(e, s.obj.WorldTransform())
			s.subscribe()
		}
		if tw, ok := ecs.TryGet[component.SyncToWorld](e); ok {
			// store now equals world
			tw.Dirty = false
		}
		return
	}

	if m.ToWorld() {
		ecs.MarkUpdated[geom.Transform](e)
	}
}

func (s *Sync) subscribe() {
	if s.sub != nil {
		return
	}
	s.sub = s.obj.OnTransformChanged(s.worldChanged)
}

func (s *Sync) unsubscribe() {
	if s.sub == nil {
		return
	}
	s.sub.Release()
	s.sub = nil
}

// worldChanged only marks; the copy happens in the world→store pass.
func (s *Sync) worldChanged() {
	e := s.Entity()
	if !ecs.Has[component.SyncToStore](e) {
		return
	}
	ecs.Patch(e, func(c *component.SyncToStore) { c.Dirty = true })
}
