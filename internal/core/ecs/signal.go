package ecs

// signal is an ordered list of listeners. Listeners run synchronously on
// the writer's goroutine, in connection order.
type signal struct {
	listeners []*listener
}

type listener struct {
	fn   func(Entity)
	dead bool
}

func (s *signal) connect(fn func(Entity)) *listener {
	l := &listener{fn: fn}
	s.listeners = append(s.listeners, l)
	return l
}

func (s *signal) emit(e Entity) {
	if len(s.listeners) == 0 {
		return
	}
	// listeners may disconnect (or connect) while we emit
	snapshot := append([]*listener(nil), s.listeners...)
	for _, l := range snapshot {
		if !l.dead {
			l.fn(e)
		}
	}
}

func (s *signal) disconnect(l *listener) {
	l.dead = true
	for i, cur := range s.listeners {
		if cur == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// signals groups the three lifecycle signals of one component pool.
type signals struct {
	construct signal
	update    signal
	destroy   signal
}

// Connection is a live signal subscription. Release is idempotent.
type Connection struct {
	sig *signal
	l   *listener
}

func (c Connection) Release() {
	if c.sig == nil || c.l == nil || c.l.dead {
		return
	}
	c.sig.disconnect(c.l)
}

// Connected reports whether the subscription is still active.
func (c Connection) Connected() bool {
	return c.l != nil && !c.l.dead
}
