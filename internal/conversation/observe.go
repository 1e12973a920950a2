package conversation

import "sync"

// observers is an ordered set of callbacks. Publish runs them in
// registration order on the caller's goroutine.
type observers[T any] struct {
	mu   sync.Mutex
	next int
	subs []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

func (o *observers[T]) add(fn func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	id := o.next
	o.subs = append(o.subs, subscription[T]{id: id, fn: fn})
	return func() { o.remove(id) }
}

func (o *observers[T]) remove(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, s := range o.subs {
		if s.id == id {
			o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
			return
		}
	}
}

func (o *observers[T]) publish(v T) {
	o.mu.Lock()
	subs := append([]subscription[T](nil), o.subs...)
	o.mu.Unlock()
	for _, s := range subs {
		s.fn(v)
	}
}
