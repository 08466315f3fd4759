package ecs

import "fmt"

// Add attaches c to e and emits the construct signal. e must not already
// hold a T; use AddOrReplace for replace semantics.
func Add[T any](e Entity, c T) *T {
	e.mustAlive("add " + TypeOf[T]().String())
	p := poolOf[T](e.store)
	if p.Has(e.id) {
		panic(fmt.Sprintf("ecs: entity %s already has %s", e.id, TypeOf[T]()))
	}
	ptr := &c
	p.set(e.id, ptr)
	p.sig.construct.emit(e)
	return ptr
}

// AddOrReplace attaches c, or overwrites the existing T. It emits construct
// or update accordingly.
func AddOrReplace[T any](e Entity, c T) *T {
	e.mustAlive("add-or-replace " + TypeOf[T]().String())
	p := poolOf[T](e.store)
	if cur, ok := p.Get(e.id); ok {
		*cur = c
		p.sig.update.emit(e)
		return cur
	}
	ptr := &c
	p.set(e.id, ptr)
	p.sig.construct.emit(e)
	return ptr
}

// Replace overwrites e's T and emits the update signal. e must hold a T.
func Replace[T any](e Entity, c T) *T {
	cur := Get[T](e)
	*cur = c
	poolOf[T](e.store).sig.update.emit(e)
	return cur
}

// Patch mutates e's T in place through fn and emits the update signal.
func Patch[T any](e Entity, fn func(*T)) *T {
	cur := Get[T](e)
	if fn != nil {
		fn(cur)
	}
	poolOf[T](e.store).sig.update.emit(e)
	return cur
}

// MarkUpdated emits the update signal for e's T without touching it.
func MarkUpdated[T any](e Entity) {
	Get[T](e)
	poolOf[T](e.store).sig.update.emit(e)
}

// Get returns e's T. e must hold a T. Writes through the returned pointer
// are silent: no observer sees them. Use Patch for tracked writes.
func Get[T any](e Entity) *T {
	e.mustAlive("get " + TypeOf[T]().String())
	c, ok := poolOf[T](e.store).Get(e.id)
	if !ok {
		panic(fmt.Sprintf("ecs: entity %s has no %s", e.id, TypeOf[T]()))
	}
	return c
}

// TryGet returns e's T if e is alive and holds one.
func TryGet[T any](e Entity) (*T, bool) {
	if !e.Valid() {
		return nil, false
	}
	return poolOf[T](e.store).Get(e.id)
}

// Has reports whether the live entity e holds a T.
func Has[T any](e Entity) bool {
	if !e.Valid() {
		return false
	}
	return poolOf[T](e.store).Has(e.id)
}

// HasAll reports whether e holds every listed component type.
func HasAll(e Entity, comps ...Component) bool {
	if !e.Valid() {
		return false
	}
	for _, c := range comps {
		p := e.store.registry.Lookup(c.typ)
		if p == nil || !p.Has(e.id) {
			return false
		}
	}
	return true
}

// HasAny reports whether e holds at least one of the listed component types.
func HasAny(e Entity, comps ...Component) bool {
	if !e.Valid() {
		return false
	}
	for _, c := range comps {
		if p := e.store.registry.Lookup(c.typ); p != nil && p.Has(e.id) {
			return true
		}
	}
	return false
}

// Remove detaches e's T. e must hold a T.
func Remove[T any](e Entity) {
	e.mustAlive("remove " + TypeOf[T]().String())
	if !poolOf[T](e.store).Remove(e) {
		panic(fmt.Sprintf("ecs: entity %s has no %s", e.id, TypeOf[T]()))
	}
}

// RemoveIfExists detaches e's T if present and reports whether it was.
func RemoveIfExists[T any](e Entity) bool {
	if !e.Valid() {
		return false
	}
	return poolOf[T](e.store).Remove(e)
}

// Len returns the number of T components in s.
func Len[T any](s *Store) int {
	if p := s.registry.Lookup(TypeOf[T]()); p != nil {
		return p.Len()
	}
	return 0
}

// Empty reports whether s holds no T at all.
func Empty[T any](s *Store) bool { return Len[T](s) == 0 }

// OnConstruct connects fn to the construct signal of T in s.
func OnConstruct[T any](s *Store, fn func(Entity)) Connection {
	sig := &poolOf[T](s).sig.construct
	return Connection{sig: sig, l: sig.connect(fn)}
}

// OnUpdate connects fn to the update signal of T in s.
func OnUpdate[T any](s *Store, fn func(Entity)) Connection {
	sig := &poolOf[T](s).sig.update
	return Connection{sig: sig, l: sig.connect(fn)}
}

// OnDestroy connects fn to the destroy signal of T in s. fn runs before the
// component is removed.
func OnDestroy[T any](s *Store, fn func(Entity)) Connection {
	sig := &poolOf[T](s).sig.destroy
	return Connection{sig: sig, l: sig.connect(fn)}
}
