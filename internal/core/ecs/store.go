package ecs

// Store is the top-level ECS container. It owns the entity pool, the
// component registry, an optional singleton entity for global components,
// and a deferred destruction queue flushed at frame end.
//
// A Store is not safe for concurrent use; one goroutine drives it.
type Store struct {
	pool         *EntityPool
	registry     *Registry
	singleton    Entity
	destroyQueue []EntityID
}

func NewStore() *Store {
	return &Store{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (s *Store) Pool() *EntityPool   { return s.pool }
func (s *Store) Registry() *Registry { return s.registry }

// Create returns a new live entity.
func (s *Store) Create() Entity {
	return Entity{id: s.pool.Create(), store: s}
}

// CreateHint returns an entity with the hinted id when that id is free,
// otherwise a fresh one.
func (s *Store) CreateHint(hint EntityID) Entity {
	return Entity{id: s.pool.CreateHint(hint), store: s}
}

// Entity rebuilds a handle for id. It does not check liveness.
func (s *Store) Entity(id EntityID) Entity {
	if id.IsZero() {
		return Null
	}
	return Entity{id: id, store: s}
}

func (s *Store) Alive(e Entity) bool {
	return e.store == s && s.pool.Alive(e.id)
}

// Size returns the number of live entities, the singleton included.
func (s *Store) Size() int { return s.pool.Len() }

// Destroy removes every component of e (emitting destroy signals) and then
// invalidates the id. Destroying a stale handle is a no-op.
func (s *Store) Destroy(e Entity) {
	if !s.Alive(e) {
		return
	}
	if e == s.singleton {
		s.singleton = Null
	}
	s.registry.RemoveAll(e)
	s.pool.Destroy(e.id)
}

// MarkForDestruction queues an entity for end-of-frame cleanup.
func (s *Store) MarkForDestruction(e Entity) {
	if e.store != s {
		return
	}
	s.destroyQueue = append(s.destroyQueue, e.id)
}

// PendingDestruction returns the number of queued entities.
func (s *Store) PendingDestruction() int { return len(s.destroyQueue) }

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by the scheduler at the end of each frame.
func (s *Store) FlushDestroyQueue() int {
	n := 0
	for _, id := range s.destroyQueue {
		e := Entity{id: id, store: s}
		if s.Alive(e) {
			s.Destroy(e)
			n++
		}
	}
	s.destroyQueue = s.destroyQueue[:0]
	return n
}

// CreateSingleton creates the store's singleton entity, used for components
// that exist once per world. Calling it twice is a programming error.
func (s *Store) CreateSingleton() Entity {
	if s.Alive(s.singleton) {
		panic("ecs: singleton entity already created")
	}
	s.singleton = s.Create()
	return s.singleton
}

// Singleton returns the singleton entity, or Null if it was never created.
func (s *Store) Singleton() Entity { return s.singleton }

// Clear destroys every live entity.
func (s *Store) Clear() {
	for idx := uint32(1); idx < s.pool.nextIndex; idx++ {
		if !s.pool.alive[idx] {
			continue
		}
		s.Destroy(Entity{id: NewEntityID(idx, s.pool.generations[idx]), store: s})
	}
	s.destroyQueue = s.destroyQueue[:0]
}

// poolOf returns the pool for T, creating and registering it on first use.
func poolOf[T any](s *Store) *Pool[T] {
	if p := s.registry.Lookup(TypeOf[T]()); p != nil {
		return p.(*Pool[T])
	}
	p := NewPool[T]()
	s.registry.Register(p)
	return p
}

