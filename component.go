package depot

import (
	"reflect"
	"sync"

	"github.com/TheBitDrifter/mask"
)

// ComponentID is the small integer a Store assigns to a registered component type.
// It is also the bit that marks the type in entity signatures.
type ComponentID uint32

// componentSlot pairs a type-erased list with the lock guarding it.
type componentSlot struct {
	mu     sync.RWMutex
	id     ComponentID
	name   string
	bit    mask.Mask
	handle ListHandle
}

var _ Component = ComponentType[struct{}]{}

// ComponentType is the typed token returned by Register. Its methods skip the
// by-name lookup the package level functions perform. The zero value is not usable.
type ComponentType[T any] struct {
	sto  *Store
	slot *componentSlot
	list *ComponentList[T]
}

func (c ComponentType[T]) ID() ComponentID {
	return c.slot.id
}

func (c ComponentType[T]) Name() string {
	return c.slot.name
}

// Add attaches value to e, overwriting any value e already holds for T.
// It returns false without mutating anything when e is not active.
func (c ComponentType[T]) Add(e Entity, value T) bool {
	rec, ok := c.sto.record(e)
	if !ok {
		return false
	}

	c.slot.mu.Lock()
	c.list.insert(e, value)
	rec.mark(c.slot.id)
	c.slot.mu.Unlock()

	// A removal may have cascaded past this list before the insert landed.
	if _, ok := c.sto.record(e); !ok {
		c.slot.mu.Lock()
		c.list.remove(e)
		c.slot.mu.Unlock()
		return false
	}
	return true
}

// Get returns a read reference to the value of e, or nil when e is inactive or has
// no value. The list stays read locked until the reference is released.
func (c ComponentType[T]) Get(e Entity) *Ref[T] {
	if !c.sto.Alive(e) {
		return nil
	}
	c.slot.mu.RLock()
	ptr, ok := c.list.GetMut(e)
	if !ok {
		c.slot.mu.RUnlock()
		return nil
	}
	return &Ref[T]{ptr: ptr, release: c.slot.mu.RUnlock}
}

// GetMut is Get with the list write locked, allowing the value to be modified in place.
func (c ComponentType[T]) GetMut(e Entity) *MutRef[T] {
	if !c.sto.Alive(e) {
		return nil
	}
	c.slot.mu.Lock()
	ptr, ok := c.list.GetMut(e)
	if !ok {
		c.slot.mu.Unlock()
		return nil
	}
	return &MutRef[T]{ptr: ptr, release: c.slot.mu.Unlock}
}

// Read copies the value of e out from under the lock.
func (c ComponentType[T]) Read(e Entity) (T, bool) {
	ref := c.Get(e)
	if ref == nil {
		var zero T
		return zero, false
	}
	defer ref.Release()
	return ref.Value(), true
}

// Update runs fn on the value of e while holding the list's write lock.
func (c ComponentType[T]) Update(e Entity, fn func(*T)) bool {
	ref := c.GetMut(e)
	if ref == nil {
		return false
	}
	defer ref.Release()
	fn(ref.Ptr())
	return true
}

// Remove detaches and returns the value of e. An inactive entity holds nothing.
func (c ComponentType[T]) Remove(e Entity) (T, bool) {
	rec, alive := c.sto.record(e)
	if !alive {
		var zero T
		return zero, false
	}

	c.slot.mu.Lock()
	defer c.slot.mu.Unlock()
	value, ok := c.list.remove(e)
	if ok {
		rec.unmark(c.slot.id)
	}
	return value, ok
}

// Has reports whether e is active and holds a value of T.
func (c ComponentType[T]) Has(e Entity) bool {
	return c.sto.Has(e, c)
}

// List read locks the whole list for bulk iteration.
func (c ComponentType[T]) List() *ListGuard[T] {
	c.slot.mu.RLock()
	return &ListGuard[T]{ComponentList: c.list, release: c.slot.mu.RUnlock}
}

// ListMut write locks the whole list. Values may be modified through the guard,
// membership may not.
func (c ComponentType[T]) ListMut() *ListGuard[T] {
	c.slot.mu.Lock()
	return &ListGuard[T]{ComponentList: c.list, release: c.slot.mu.Unlock}
}

// EnqueueAdd adds value to e now, or once the store's last lock is removed.
// An error is returned only when the add is applied immediately and e is inactive.
func (c ComponentType[T]) EnqueueAdd(e Entity, value T) error {
	return c.sto.enqueueComponentOp(opAddComponent, e, c.slot.id, func() error {
		if !c.Add(e, value) {
			return InactiveEntityError{Entity: e, Op: "add " + c.slot.name}
		}
		return nil
	})
}

func (c ComponentType[T]) EnqueueRemove(e Entity) error {
	return c.sto.enqueueComponentOp(opRemoveComponent, e, c.slot.id, func() error {
		if _, ok := c.Remove(e); !ok && !c.sto.Alive(e) {
			return InactiveEntityError{Entity: e, Op: "remove " + c.slot.name}
		}
		return nil
	})
}

// typeName identifies T by import path and name, falling back to the type literal
// for unnamed types.
func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
