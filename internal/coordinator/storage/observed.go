package storage

import (
	"context"
	"sync"
)

// Change describes one successful write.
type Change struct {
	Key   string
	Value []byte
}

// Listener receives changes synchronously from the writing goroutine, so it
// must not block.
type Listener func(ctx context.Context, change Change)

// Observed decorates a Store and reports every successful Set to listeners.
type Observed struct {
	Store

	mu        sync.RWMutex
	nextID    int
	listeners map[int]Listener
}

func NewObserved(s Store) *Observed {
	return &Observed{Store: s, listeners: make(map[int]Listener)}
}

// OnChanged registers l and returns a function that removes it.
func (o *Observed) OnChanged(l Listener) (remove func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = l
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

func (o *Observed) Set(ctx context.Context, key string, value []byte) error {
	if err := o.Store.Set(ctx, key, value); err != nil {
		return err
	}

	o.mu.RLock()
	listeners := make([]Listener, 0, len(o.listeners))
	for _, l := range o.listeners {
		listeners = append(listeners, l)
	}
	o.mu.RUnlock()

	change := Change{Key: key, Value: append([]byte(nil), value...)}
	for _, l := range listeners {
		l(ctx, change)
	}
	return nil
}
