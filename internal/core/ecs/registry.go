package ecs

// Registry tracks all component pools of a Store, keyed by component type,
// and supports bulk cleanup on entity destroy.
type Registry struct {
	pools  []Removable
	byType map[ComponentType]Removable
}

func NewRegistry() *Registry {
	return &Registry{
		pools:  make([]Removable, 0, 16),
		byType: make(map[ComponentType]Removable, 16),
	}
}

// Register adds a component pool to the registry. Registering a second pool
// for the same type is a programming error.
func (r *Registry) Register(p Removable) {
	if _, dup := r.byType[p.Type()]; dup {
		panic("ecs: pool already registered for " + p.Type().String())
	}
	r.pools = append(r.pools, p)
	r.byType[p.Type()] = p
}

// Lookup returns the pool for t, or nil if none was created yet.
func (r *Registry) Lookup(t ComponentType) Removable {
	return r.byType[t]
}

// RemoveAll clears the given entity from every registered pool.
func (r *Registry) RemoveAll(e Entity) {
	for _, p := range r.pools {
		p.Remove(e)
	}
}

// Len returns the number of registered pools.
func (r *Registry) Len() int { return len(r.pools) }
