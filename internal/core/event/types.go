package event

// Host lifecycle events. Payloads carry host-side names so the bus does not
// depend on the host package.

// ObjectSpawned is emitted by the host world when an object enters play.
type ObjectSpawned struct {
	ObjectID uint64
	Name     string
}

// ObjectDestroyed is emitted by the host world after an object is destroyed.
// Its back-references in the store are stale from this point on.
type ObjectDestroyed struct {
	ObjectID uint64
	Name     string
}
