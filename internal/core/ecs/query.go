package ecs

// Each visits every entity holding A. Order is unspecified.
func Each[A any](s *Store, fn func(Entity, *A)) {
	for id, a := range poolOf[A](s).data {
		fn(Entity{id: id, store: s}, a)
	}
}

// Each2 visits entities holding both A and B, driven by the smaller pool.
func Each2[A, B any](s *Store, fn func(Entity, *A, *B)) {
	sa, sb := poolOf[A](s), poolOf[B](s)
	visit := func(id EntityID) {
		a, ok := sa.data[id]
		if !ok {
			return
		}
		b, ok := sb.data[id]
		if !ok {
			return
		}
		fn(Entity{id: id, store: s}, a, b)
	}
	if sa.Len() <= sb.Len() {
		for id := range sa.data {
			visit(id)
		}
		return
	}
	for id := range sb.data {
		visit(id)
	}
}

// Each3 visits entities holding A, B and C, driven by the smallest pool.
func Each3[A, B, C any](s *Store, fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := poolOf[A](s), poolOf[B](s), poolOf[C](s)
	visit := func(id EntityID) {
		a, ok := sa.data[id]
		if !ok {
			return
		}
		b, ok := sb.data[id]
		if !ok {
			return
		}
		c, ok := sc.data[id]
		if !ok {
			return
		}
		fn(Entity{id: id, store: s}, a, b, c)
	}

	switch min(sa.Len(), sb.Len(), sc.Len()) {
	case sa.Len():
		for id := range sa.data {
			visit(id)
		}
	case sb.Len():
		for id := range sb.data {
			visit(id)
		}
	default:
		for id := range sc.data {
			visit(id)
		}
	}
}

// Entities returns the live entities holding every listed component,
// ordered by index.
func Entities(s *Store, comps ...Component) []Entity {
	var out []Entity
	for idx := uint32(1); idx < s.pool.nextIndex; idx++ {
		if !s.pool.alive[idx] {
			continue
		}
		e := Entity{id: NewEntityID(idx, s.pool.generations[idx]), store: s}
		if HasAll(e, comps...) {
			out = append(out, e)
		}
	}
	return out
}
