package component

import "github.com/ecsbridge/ecsbridge/internal/host"

// WorldObjectRef links an entity to its host object. This is a weak
// reference: the object lives in the host, and Valid must be checked before
// every use.
type WorldObjectRef struct {
	Object host.Object
}

// NewWorldObjectRef panics on a nil object.
func NewWorldObjectRef(obj host.Object) WorldObjectRef {
	if obj == nil {
		panic("component: world object reference must not be nil")
	}
	return WorldObjectRef{Object: obj}
}

func (r WorldObjectRef) Valid() bool {
	return r.Object != nil && r.Object.Valid()
}

// Name is a display name for an entity.
type Name struct {
	Value string
}

const DefaultName = "Unnamed Entity"

func NewName(v string) Name {
	if v == "" {
		v = DefaultName
	}
	return Name{Value: v}
}
