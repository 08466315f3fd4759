package scripting

import (
	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/ecsbridge/ecsbridge/internal/geom"
	lua "github.com/yuin/gopher-lua"
)

// Entities cross into Lua as plain numbers holding the EntityID.

// ecs.entities() -> { id, ... } of entities with a Transform
func (e *Engine) luaEntities(L *lua.LState) int {
	t := L.NewTable()
	for _, ent := range ecs.Entities(e.sched.Store(), ecs.C[geom.Transform]()) {
		t.Append(lua.LNumber(ent.ID()))
	}
	L.Push(t)
	return 1
}

// ecs.find(name) -> id | nil, matching the Name component first and the
// world object name second.
func (e *Engine) luaFind(L *lua.LState) int {
	name := L.CheckString(1)
	var found ecs.Entity
	for _, ent := range ecs.Entities(e.sched.Store(), ecs.C[geom.Transform]()) {
		if n, ok := ecs.TryGet[component.Name](ent); ok && n.Value == name {
			found = ent
			break
		}
		if ref, ok := ecs.TryGet[component.WorldObjectRef](ent); ok && ref.Valid() && ref.Object.Name() == name && found.IsNull() {
			found = ent
		}
	}
	if found.IsNull() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(found.ID()))
	return 1
}

// ecs.get_location(id) -> x, y, z
func (e *Engine) luaGetLocation(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	loc := ecs.Get[geom.Transform](ent).Location
	pushVec(L, loc)
	return 3
}

// ecs.set_location(id, x, y, z); a tracked write
func (e *Engine) luaSetLocation(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	loc := checkVec(L, 2)
	ecs.Patch(ent, func(t *geom.Transform) { t.Location = loc })
	return 0
}

// ecs.get_velocity(id) -> x, y, z (zero when the entity has none)
func (e *Engine) luaGetVelocity(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	var v geom.Vec3
	if vel, ok := ecs.TryGet[component.Velocity](ent); ok {
		v = vel.Linear
	}
	pushVec(L, v)
	return 3
}

// ecs.set_velocity(id, x, y, z)
func (e *Engine) luaSetVelocity(L *lua.LState) int {
	ent := e.checkEntity(L, 1)
	ecs.AddOrReplace(ent, component.Velocity{Linear: checkVec(L, 2)})
	return 0
}

// checkEntity raises a Lua error unless arg n names a live entity with a
// Transform.
func (e *Engine) checkEntity(L *lua.LState, n int) ecs.Entity {
	id := ecs.EntityID(uint64(L.CheckNumber(n)))
	ent := e.sched.Store().Entity(id)
	if !ecs.Has[geom.Transform](ent) {
		L.ArgError(n, "no live entity with a transform")
	}
	return ent
}

func checkVec(L *lua.LState, n int) geom.Vec3 {
	return geom.V3(
		float64(L.CheckNumber(n)),
		float64(L.CheckNumber(n+1)),
		float64(L.CheckNumber(n+2)),
	)
}

func pushVec(L *lua.LState, v geom.Vec3) {
	L.Push(lua.LNumber(v.X))
	L.Push(lua.LNumber(v.Y))
	L.Push(lua.LNumber(v.Z))
}
