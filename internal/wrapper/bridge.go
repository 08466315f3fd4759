package wrapper

import (
	"github.com/ecsbridge/ecsbridge/internal/component"
	"github.com/ecsbridge/ecsbridge/internal/core/ecs"
	"github.com/ecsbridge/ecsbridge/internal/host"
)

// Bridge owns the link between a host object and its store entity.
type Bridge struct {
	Base
	store *ecs.Store
	obj   host.Object
}

var _ Wrapper = (*Bridge)(nil)

func NewBridge(store *ecs.Store, obj host.Object) *Bridge {
	if store == nil || obj == nil {
		panic("wrapper: bridge needs a store and an object")
	}
	return &Bridge{store: store, obj: obj}
}

func (b *Bridge) Store() *ecs.Store   { return b.store }
func (b *Bridge) Object() host.Object { return b.obj }

// RegisterWithStore creates the entity unless one was handed in and
// attaches the world object back-reference. Siblings are not touched.
func (b *Bridge) RegisterWithStore() {
	if b.Registered() {
		return
	}
	if !b.Entity().Valid() {
		b.SetEntity(b.store.Create())
	}
	ecs.Add(b.Entity(), component.NewWorldObjectRef(b.obj))
	b.MarkRegistered()
}

// RegisterSiblings hands the entity to every other wrapper on the object
// and registers it. The bridge must be registered first.
func (b *Bridge) RegisterSiblings() {
	if !b.Registered() {
		panic("wrapper: siblings registered before the bridge")
	}
	b.eachSibling(func(w Wrapper) {
		w.SetEntity(b.Entity())
		w.RegisterWithStore()
	})
}

// Unregister releases sibling resources and destroys the entity. All
// wrappers of the object end up with the null handle.
func (b *Bridge) Unregister() {
	b.eachSibling(func(w Wrapper) {
		if r, ok := w.(Releaser); ok {
			r.Release()
		}
		if base, ok := w.(interface{ reset() }); ok {
			base.reset()
		} else {
			w.SetEntity(ecs.Null)
		}
	})
	b.store.Destroy(b.Entity())
	b.reset()
}

func (b *Bridge) eachSibling(fn func(Wrapper)) {
	for _, m := range b.obj.Modules() {
		w, ok := m.(Wrapper)
		if !ok {
			continue
		}
		if _, isBridge := w.(*Bridge); isBridge {
			continue
		}
		fn(w)
	}
}
