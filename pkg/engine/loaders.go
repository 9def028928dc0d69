package engine

import (
	"slices"
	"sync"
)

// LoadFunc replaces the definitions held by one loader slot.
type LoadFunc[T any] func(definitions []T)

// Loaders accumulates definitions pushed by several sources.
//
// Every source gets its own slot from Create. A slot keeps only the last array
// it received; Definitions concatenates the slots in creation order.
type Loaders[T any] struct {
	mu     sync.Mutex
	slots  [][]T
	onLoad func()
}

// NewLoaders creates an empty set of loaders. onLoad, if not nil, is called
// after every push, outside of the loaders lock.
func NewLoaders[T any](onLoad func()) *Loaders[T] {
	return &Loaders[T]{onLoad: onLoad}
}

// Create returns the load function of a new slot.
func (l *Loaders[T]) Create() LoadFunc[T] {
	l.mu.Lock()
	slot := len(l.slots)
	l.slots = append(l.slots, nil)
	l.mu.Unlock()

	return func(definitions []T) {
		l.mu.Lock()
		l.slots[slot] = slices.Clone(definitions)
		l.mu.Unlock()

		if l.onLoad != nil {
			l.onLoad()
		}
	}
}

// Definitions returns the definitions of all slots.
func (l *Loaders[T]) Definitions() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	var all []T
	for _, slot := range l.slots {
		all = append(all, slot...)
	}
	return all
}
