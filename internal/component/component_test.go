package component

import (
	"testing"

	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func children(parent ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	EachChild(parent, func(c ecs.Entity) { out = append(out, c) })
	return out
}

func TestRelationship_AttachAndDetach(t *testing.T) {
	s := ecs.NewStore()
	root := s.Create()
	a, b, c := s.Create(), s.Create(), s.Create()

	AttachChild(root, a)
	AttachChild(root, b)
	AttachChild(root, c)
	require.Equal(t, []ecs.Entity{a, b, c}, children(root))
	assert.Equal(t, 3, ecs.Get[Relationship](root).Children)
	assert.Equal(t, root, ParentOf(b))

	assert.True(t, DetachChild(b))
	assert.False(t, DetachChild(b))
	assert.Equal(t, []ecs.Entity{a, c}, children(root))
	assert.Equal(t, a, ecs.Get[Relationship](c).Prev)

	assert.True(t, DetachChild(a))
	assert.Equal(t, []ecs.Entity{c}, children(root))
	assert.True(t, ecs.Get[Relationship](c).Prev.IsNull())
}

func TestRelationship_Reparent(t *testing.T) {
	s := ecs.NewStore()
	p1, p2, child := s.Create(), s.Create(), s.Create()

	AttachChild(p1, child)
	AttachChild(p2, child)

	assert.Empty(t, children(p1))
	assert.Equal(t, []ecs.Entity{child}, children(p2))
	assert.Panics(t, func() { AttachChild(child, child) })
}

func TestRelationship_RejectsCycles(t *testing.T) {
	s := ecs.NewStore()
	root, mid, leaf := s.Create(), s.Create(), s.Create()
	AttachChild(root, mid)
	AttachChild(mid, leaf)

	assert.Panics(t, func() { AttachChild(leaf, root) })
	assert.Panics(t, func() { AttachChild(leaf, mid) })
	assert.Equal(t, []ecs.Entity{mid}, children(root))
	assert.True(t, ParentOf(root).IsNull())

	// moving a subtree sideways is fine
	other := s.Create()
	AttachChild(other, mid)
	assert.Equal(t, other, ParentOf(mid))
	assert.Equal(t, []ecs.Entity{leaf}, children(mid))
}

func TestRelationship_DestroyKeepsHierarchyConsistent(t *testing.T) {
	s := ecs.NewStore()
	TrackRelationships(s)
	root, mid, leaf, sibling := s.Create(), s.Create(), s.Create(), s.Create()
	AttachChild(root, mid)
	AttachChild(root, sibling)
	AttachChild(mid, leaf)

	s.Destroy(mid)

	assert.Equal(t, []ecs.Entity{sibling}, children(root))
	assert.True(t, ParentOf(leaf).IsNull())
}

func TestSyncMode_Parse(t *testing.T) {
	for _, m := range []SyncMode{SyncDisabled, SyncWorldToStore, SyncStoreToWorld, SyncBothWays} {
		got, err := ParseSyncMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseSyncMode("sideways")
	assert.Error(t, err)

	assert.True(t, SyncBothWays.ToStore())
	assert.True(t, SyncBothWays.ToWorld())
	assert.False(t, SyncStoreToWorld.ToStore())
	assert.False(t, SyncWorldToStore.ToWorld())
}

func TestWorldObjectRef_RejectsNil(t *testing.T) {
	assert.Panics(t, func() { NewWorldObjectRef(nil) })
	assert.Equal(t, DefaultName, NewName("").Value)
}
