package ecs

import "fmt"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Index 0 is never handed out, so the zero EntityID is the null id.
type EntityID uint64

// NullID never names a live entity.
const NullID EntityID = 0

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == NullID }

func (id EntityID) String() string {
	if id.IsZero() {
		return "null"
	}
	return fmt.Sprintf("%d:%d", id.Index(), id.Generation())
}

// EntityPool manages entity allocation with generational indices and a free list.
type EntityPool struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	nextIndex   uint32
	count       int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		// slot 0 is the reserved null index
		generations: make([]uint32, 1, 1024),
		alive:       make([]bool, 1, 1024),
		freeList:    make([]uint32, 0, 256),
		nextIndex:   1,
	}
}

func (p *EntityPool) Create() EntityID {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return p.claim(idx)
	}
	idx := p.nextIndex
	p.nextIndex++
	p.generations = append(p.generations, 0)
	p.alive = append(p.alive, false)
	return p.claim(idx)
}

// CreateHint tries to hand out exactly hint. If the hint's index is in use
// (or is the null index) a fresh id is returned instead. Indices skipped
// over to reach the hint go to the free list.
func (p *EntityPool) CreateHint(hint EntityID) EntityID {
	idx := hint.Index()
	if idx == 0 {
		return p.Create()
	}
	for p.nextIndex <= idx {
		i := p.nextIndex
		p.nextIndex++
		p.generations = append(p.generations, 0)
		p.alive = append(p.alive, false)
		if i != idx {
			p.freeList = append(p.freeList, i)
		}
	}
	if p.alive[idx] {
		return p.Create()
	}
	for i, free := range p.freeList {
		if free == idx {
			p.freeList = append(p.freeList[:i], p.freeList[i+1:]...)
			break
		}
	}
	p.generations[idx] = hint.Generation()
	return p.claim(idx)
}

func (p *EntityPool) claim(idx uint32) EntityID {
	p.alive[idx] = true
	p.count++
	return NewEntityID(idx, p.generations[idx])
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || idx >= p.nextIndex {
		return false
	}
	return p.alive[idx] && p.generations[idx] == id.Generation()
}

// Len returns the number of live entities.
func (p *EntityPool) Len() int { return p.count }

func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return // already destroyed (stale reference)
	}
	idx := id.Index()
	p.generations[idx]++
	p.alive[idx] = false
	p.count--
	p.freeList = append(p.freeList, idx)
}

// Entity is a handle naming one entity inside one Store. It is a small value
// type: copy it, compare it with ==, never take ownership of it. The zero
// Entity is the null handle.
type Entity struct {
	id    EntityID
	store *Store
}

// Null is the null handle.
var Null = Entity{}

func (e Entity) ID() EntityID        { return e.id }
func (e Entity) Store() *Store       { return e.store }
func (e Entity) IsNull() bool        { return e.id.IsZero() || e.store == nil }
func (e Entity) String() string      { return e.id.String() }
func (e Entity) Equal(o Entity) bool { return e.id == o.id }

// Valid reports whether e is non-null and still alive in its store.
func (e Entity) Valid() bool {
	return !e.IsNull() && e.store.pool.Alive(e.id)
}

// mustAlive panics unless e is a live entity. Touching a dead or null entity
// is a programming error, not a runtime condition.
func (e Entity) mustAlive(op string) {
	if e.IsNull() {
		panic(fmt.Sprintf("ecs: %s on null entity", op))
	}
	if !e.store.pool.Alive(e.id) {
		panic(fmt.Sprintf("ecs: %s on destroyed entity %s", op, e.id))
	}
}
