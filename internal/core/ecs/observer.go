package ecs

// Component names a component type for matchers and presence checks.
type Component struct {
	typ  ComponentType
	pool func(*Store) Removable
}

// C returns the Component naming T.
func C[T any]() Component {
	return Component{
		typ:  TypeOf[T](),
		pool: func(s *Store) Removable { return poolOf[T](s) },
	}
}

func (c Component) Type() ComponentType { return c.typ }

// Matcher selects what an Observer reports: writes to any tracked component
// on an entity that holds every gate component at the time of the write.
type Matcher struct {
	tracked []Component
	gate    []Component
}

// Update starts a matcher tracking writes (construct or signaled update) to
// the given components.
func Update(tracked ...Component) Matcher {
	return Matcher{tracked: tracked}
}

// Where adds gate components that must be present for a write to count.
func (m Matcher) Where(gate ...Component) Matcher {
	m.gate = append(append([]Component(nil), m.gate...), gate...)
	return m
}

// Observer is a standing subscription over a Store. It collects, between two
// drains, the set of entities whose tracked components were written while
// all gate components were present. Each entity appears at most once per
// drain. Only writes made after Connect count.
type Observer struct {
	store   *Store
	matcher Matcher
	conns   []Connection

	// pending keeps insertion order and may hold discarded ids; set maps
	// each member to its current slot in pending. batch holds the entries
	// of a drain in progress.
	pending []EntityID
	set     map[EntityID]int
	batch   map[EntityID]int
}

// Connect subscribes o to s. An observer is connected to at most one store
// at a time.
func (o *Observer) Connect(s *Store, m Matcher) {
	if len(o.conns) > 0 {
		panic("ecs: observer already connected")
	}
	if len(m.tracked) == 0 {
		panic("ecs: observer needs at least one tracked component")
	}
	if o.store != s {
		o.pending = o.pending[:0]
		o.set = nil
	}
	if o.set == nil {
		o.set = make(map[EntityID]int, 64)
	}
	o.store = s
	o.matcher = m

	for _, c := range m.tracked {
		sig := c.pool(s).sinks()
		o.conns = append(o.conns,
			Connection{sig: &sig.construct, l: sig.construct.connect(o.maybeAdd)},
			Connection{sig: &sig.update, l: sig.update.connect(o.maybeAdd)},
			Connection{sig: &sig.destroy, l: sig.destroy.connect(o.discard)},
		)
	}
	for _, c := range m.gate {
		sig := c.pool(s).sinks()
		o.conns = append(o.conns, Connection{sig: &sig.destroy, l: sig.destroy.connect(o.discard)})
	}
}

// Disconnect stops tracking. Entries already pending stay pending.
func (o *Observer) Disconnect() {
	for _, c := range o.conns {
		c.Release()
	}
	o.conns = nil
}

// Connected reports whether o is currently subscribed to a store.
func (o *Observer) Connected() bool { return len(o.conns) > 0 }

func (o *Observer) maybeAdd(e Entity) {
	if !HasAll(e, o.matcher.gate...) {
		return
	}
	if _, ok := o.set[e.id]; ok {
		return
	}
	o.set[e.id] = len(o.pending)
	o.pending = append(o.pending, e.id)
}

// discard drops e once it no longer matches (tracked or gate component
// removed, or entity destroyed).
func (o *Observer) discard(e Entity) {
	delete(o.set, e.id)
	if o.batch != nil {
		delete(o.batch, e.id)
	}
}

// Len returns the number of pending entities.
func (o *Observer) Len() int { return len(o.set) }

// Contains reports whether e is pending.
func (o *Observer) Contains(e Entity) bool {
	_, ok := o.set[e.id]
	return ok
}

// Drain calls fn once for every pending entity in insertion order, then
// leaves the pending set empty. Writes made by fn that match o are kept for
// the next drain. It returns the number of entities visited.
func (o *Observer) Drain(fn func(Entity)) int {
	if len(o.set) == 0 {
		o.pending = o.pending[:0]
		return 0
	}
	ids, batch := o.pending, o.set
	o.pending = make([]EntityID, 0, cap(ids))
	o.set = make(map[EntityID]int, len(batch))
	o.batch = batch
	defer func() { o.batch = nil }()

	n := 0
	for i, id := range ids {
		if slot, ok := batch[id]; !ok || slot != i {
			continue
		}
		delete(batch, id)
		if !o.store.pool.Alive(id) {
			continue
		}
		n++
		fn(Entity{id: id, store: o.store})
	}
	return n
}

// Clear drops every pending entry without visiting it.
func (o *Observer) Clear() {
	o.pending = o.pending[:0]
	clear(o.set)
}
