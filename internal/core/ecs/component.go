package ecs

import "reflect"

// ComponentType identifies a component pool inside a Store.
type ComponentType = reflect.Type

// TypeOf returns the ComponentType of T.
func TypeOf[T any]() ComponentType {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Removable is implemented by all component pools so the Registry can
// bulk-remove an entity's data from every pool on destroy.
type Removable interface {
	Remove(e Entity) bool
	Has(id EntityID) bool
	Len() int
	Type() ComponentType
	sinks() *signals
}

// Pool is a generic typed map store for one component type.
// No reflect on the hot path, no interface{}: pure generics.
type Pool[T any] struct {
	data map[EntityID]*T
	sig  signals
}

func NewPool[T any]() *Pool[T] {
	return &Pool[T]{
		data: make(map[EntityID]*T, 256),
	}
}

func (p *Pool[T]) Type() ComponentType { return TypeOf[T]() }
func (p *Pool[T]) sinks() *signals     { return &p.sig }

// set stores c without emitting anything; callers decide which signal fires.
func (p *Pool[T]) set(id EntityID, c *T) {
	p.data[id] = c
}

func (p *Pool[T]) Get(id EntityID) (*T, bool) {
	c, ok := p.data[id]
	return c, ok
}

// Remove deletes e's component and emits the destroy signal before the data
// is gone, so listeners can still read it.
func (p *Pool[T]) Remove(e Entity) bool {
	if _, ok := p.data[e.id]; !ok {
		return false
	}
	p.sig.destroy.emit(e)
	delete(p.data, e.id)
	return true
}

func (p *Pool[T]) Has(id EntityID) bool {
	_, ok := p.data[id]
	return ok
}

func (p *Pool[T]) Len() int {
	return len(p.data)
}
