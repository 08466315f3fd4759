package component

import (
	"fmt"

	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
)

// Relationship links an entity into a parent/child hierarchy. Children form
// a doubly linked list starting at the parent's First.
type Relationship struct {
	Parent   ecs.Entity
	First    ecs.Entity
	Prev     ecs.Entity
	Next     ecs.Entity
	Children int
}

func relationshipOf(e ecs.Entity) *Relationship {
	if r, ok := ecs.TryGet[Relationship](e); ok {
		return r
	}
	return ecs.Add(e, Relationship{})
}

// AttachChild makes child the last child of parent, detaching it from any
// previous parent first. Attaching an entity under itself or one of its
// descendants panics.
func AttachChild(parent, child ecs.Entity) {
	if parent == child {
		panic("component: entity cannot be its own parent")
	}
	for a := ParentOf(parent); !a.IsNull(); a = ParentOf(a) {
		if a == child {
			panic(fmt.Sprintf("component: attaching %s under its descendant %s", child, parent))
		}
	}
	pr := relationshipOf(parent)
	cr := relationshipOf(child)
	if !cr.Parent.IsNull() {
		DetachChild(child)
	}

	cr.Parent = parent
	cr.Next = ecs.Null
	cr.Prev = ecs.Null
	if pr.First.IsNull() {
		pr.First = child
	} else {
		last := pr.First
		for {
			next := ecs.Get[Relationship](last).Next
			if next.IsNull() {
				break
			}
			last = next
		}
		ecs.Get[Relationship](last).Next = child
		cr.Prev = last
	}
	pr.Children++
}

// DetachChild unlinks child from its parent and reports whether it had one.
func DetachChild(child ecs.Entity) bool {
	cr, ok := ecs.TryGet[Relationship](child)
	if !ok || cr.Parent.IsNull() {
		return false
	}
	if pr, ok := ecs.TryGet[Relationship](cr.Parent); ok {
		if pr.First == child {
			pr.First = cr.Next
		}
		pr.Children--
	}
	if prev, ok := ecs.TryGet[Relationship](cr.Prev); ok {
		prev.Next = cr.Next
	}
	if next, ok := ecs.TryGet[Relationship](cr.Next); ok {
		next.Prev = cr.Prev
	}
	cr.Parent, cr.Prev, cr.Next = ecs.Null, ecs.Null, ecs.Null
	return true
}

// ParentOf returns e's parent, or ecs.Null.
func ParentOf(e ecs.Entity) ecs.Entity {
	if r, ok := ecs.TryGet[Relationship](e); ok {
		return r.Parent
	}
	return ecs.Null
}

// EachChild calls fn for every direct child of parent, in attach order.
func EachChild(parent ecs.Entity, fn func(child ecs.Entity)) {
	r, ok := ecs.TryGet[Relationship](parent)
	if !ok {
		return
	}
	for cur := r.First; !cur.IsNull(); {
		next := ecs.Get[Relationship](cur).Next
		fn(cur)
		cur = next
	}
}

// TrackRelationships keeps the hierarchy consistent when a Relationship is
// removed or its entity destroyed: the entity leaves its parent and its
// children become roots.
func TrackRelationships(s *ecs.Store) ecs.Connection {
	return ecs.OnDestroy[Relationship](s, func(e ecs.Entity) {
		DetachChild(e)
		var children []ecs.Entity
		EachChild(e, func(c ecs.Entity) { children = append(children, c) })
		for _, c := range children {
			if cr, ok := ecs.TryGet[Relationship](c); ok {
				cr.Parent, cr.Prev, cr.Next = ecs.Null, ecs.Null, ecs.Null
			}
		}
		r := ecs.Get[Relationship](e)
		r.First, r.Children = ecs.Null, 0
	})
}
