// Package wrapper implements the per-object module protocol that lets
// independently written host modules share one store entity.
//
// Every module of a host object that owns store data implements Wrapper.
// Exactly one module per object is a Bridge: it acquires the entity and
// hands it to its siblings. Hosts call RegisterObject once per object.
package wrapper

import (
	"errors"
	"fmt"

	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/ecsbridge/ecsbridge/internal/host"
)

var (
	ErrNoBridge        = errors.New("object has no bridge module")
	ErrMultipleBridges = errors.New("object has more than one bridge module")
)

// Wrapper is a host module that attaches its data to the object's entity.
// RegisterWithStore is idempotent per object lifetime and must only run
// after the bridge handed over the entity.
type Wrapper interface {
	Entity() ecs.Entity
	SetEntity(e ecs.Entity)
	RegisterWithStore()
}

// Releaser is implemented by wrappers that hold host resources. The bridge
// calls Release when the object is unregistered.
type Releaser interface {
	Release()
}

// Base holds the shared entity handle and the registered-once flag. Embed
// it in wrapper implementations.
type Base struct {
	entity     ecs.Entity
	registered bool
}

func (b *Base) Entity() ecs.Entity     { return b.entity }
func (b *Base) SetEntity(e ecs.Entity) { b.entity = e }
func (b *Base) Registered() bool       { return b.registered }

// MarkRegistered records a completed registration.
func (b *Base) MarkRegistered() { b.registered = true }

func (b *Base) reset() {
	b.entity = ecs.Null
	b.registered = false
}

// Data attaches a single T to the object's entity.
type Data[T any] struct {
	Base
	initial T
}

func NewData[T any](v T) *Data[T] {
	return &Data[T]{initial: v}
}

// RegisterWithStore attaches the initial value. Running it before the
// bridge panics on the null entity.
func (d *Data[T]) RegisterWithStore() {
	if d.Registered() {
		return
	}
	ecs.Add(d.Entity(), d.initial)
	d.MarkRegistered()
}

// Value returns the store-held T. Writes through it are silent.
func (d *Data[T]) Value() *T {
	return ecs.Get[T](d.Entity())
}

// BridgeOf returns the single bridge among obj's modules.
func BridgeOf(obj host.Object) (*Bridge, error) {
	var found *Bridge
	for _, m := range obj.Modules() {
		b, ok := m.(*Bridge)
		if !ok {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("object %q: %w", obj.Name(), ErrMultipleBridges)
		}
		found = b
	}
	if found == nil {
		return nil, fmt.Errorf("object %q: %w", obj.Name(), ErrNoBridge)
	}
	return found, nil
}

// RegisterObject runs the two registration phases for obj: the bridge
// first, then every sibling wrapper in module order.
func RegisterObject(obj host.Object) (*Bridge, error) {
	b, err := BridgeOf(obj)
	if err != nil {
		return nil, err
	}
	b.RegisterWithStore()
	b.RegisterSiblings()
	return b, nil
}
