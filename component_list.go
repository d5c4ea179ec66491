package depot

import (
	"iter"
	"slices"
)

var _ ListHandle = &ComponentList[struct{}]{}

// ComponentList stores the values of one component type densely, indexed by entity.
// indices and entities are exact inverses over [0, Len()); removal swaps the last
// slot into the hole so the backing slice never has gaps.
type ComponentList[T any] struct {
	id       ComponentID
	name     string
	indices  map[Entity]int
	entities []Entity
	data     []T
}

func newComponentList[T any](id ComponentID, name string, capacity int) *ComponentList[T] {
	return &ComponentList[T]{
		id:       id,
		name:     name,
		indices:  make(map[Entity]int, capacity),
		entities: make([]Entity, 0, capacity),
		data:     make([]T, 0, capacity),
	}
}

// insert overwrites the value of an entity already in the list, otherwise appends it.
// It reports whether a new slot was used.
func (l *ComponentList[T]) insert(e Entity, value T) bool {
	if index, ok := l.indices[e]; ok {
		l.data[index] = value
		return false
	}
	if len(l.data) == cap(l.data) {
		l.grow()
	}
	l.indices[e] = len(l.data)
	l.data = append(l.data, value)
	l.entities = append(l.entities, e)
	return true
}

func (l *ComponentList[T]) grow() {
	newCap := max(1, 2*cap(l.data))

	data := make([]T, len(l.data), newCap)
	copy(data, l.data)
	l.data = data

	entities := make([]Entity, len(l.entities), newCap)
	copy(entities, l.entities)
	l.entities = entities
}

func (l *ComponentList[T]) remove(e Entity) (T, bool) {
	var zero T
	index, ok := l.indices[e]
	if !ok {
		return zero, false
	}
	removed := l.data[index]
	last := len(l.data) - 1
	if index != last {
		moved := l.entities[last]
		l.data[index] = l.data[last]
		l.entities[index] = moved
		l.indices[moved] = index
	}
	// Zero the vacated tail so pointers held by T can be collected.
	l.data[last] = zero
	l.data = l.data[:last]
	l.entities = l.entities[:last]
	delete(l.indices, e)
	return removed, true
}

// Get returns a copy of the value stored for e.
func (l *ComponentList[T]) Get(e Entity) (T, bool) {
	index, ok := l.indices[e]
	if !ok {
		var zero T
		return zero, false
	}
	return l.data[index], true
}

// GetMut returns a pointer into the list for e. The pointer is invalidated by the
// next insert or remove on this list.
func (l *ComponentList[T]) GetMut(e Entity) (*T, bool) {
	index, ok := l.indices[e]
	if !ok {
		return nil, false
	}
	return &l.data[index], true
}

// At returns the value at a raw position, typically one obtained from IndexOf.
// It panics when i is out of range.
func (l *ComponentList[T]) At(i int) *T {
	return &l.data[i]
}

func (l *ComponentList[T]) Contains(e Entity) bool {
	_, ok := l.indices[e]
	return ok
}

func (l *ComponentList[T]) Len() int {
	return len(l.data)
}

func (l *ComponentList[T]) Cap() int {
	return cap(l.data)
}

// All yields every entity with its value in dense order. The order changes whenever
// a value is removed.
func (l *ComponentList[T]) All() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := range l.data {
			if !yield(l.entities[i], &l.data[i]) {
				return
			}
		}
	}
}

func (l *ComponentList[T]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for i := range l.data {
			if !yield(&l.data[i]) {
				return
			}
		}
	}
}

// Entities returns the entities of the list in index order.
func (l *ComponentList[T]) Entities() []Entity {
	return slices.Clone(l.entities)
}

func (l *ComponentList[T]) ComponentID() ComponentID {
	return l.id
}

func (l *ComponentList[T]) TypeName() string {
	return l.name
}

func (l *ComponentList[T]) IndexOf(e Entity) (int, bool) {
	index, ok := l.indices[e]
	return index, ok
}

func (l *ComponentList[T]) EntityAt(i int) (Entity, bool) {
	if i < 0 || i >= len(l.entities) {
		return 0, false
	}
	return l.entities[i], true
}

// Delete removes the value of e and discards it.
func (l *ComponentList[T]) Delete(e Entity) bool {
	_, ok := l.remove(e)
	return ok
}

// listFrom recovers the concrete list behind a handle.
func listFrom[T any](h ListHandle) (*ComponentList[T], error) {
	list, ok := h.(*ComponentList[T])
	if !ok {
		return nil, TypeMismatchError{Stored: h.TypeName(), Requested: typeName[T]()}
	}
	return list, nil
}
