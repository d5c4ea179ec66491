package depot

// Ref is a read-locked reference to a single component value. Release must be
// called exactly once the caller is done; the value must not be modified.
type Ref[T any] struct {
	ptr     *T
	release func()
}

func (r *Ref[T]) Value() T {
	return *r.ptr
}

// Release unlocks the component list. Further calls are no-ops.
func (r *Ref[T]) Release() {
	if r.release != nil {
		r.release()
		r.release = nil
	}
}

// MutRef is a write-locked reference to a single component value.
type MutRef[T any] struct {
	ptr     *T
	release func()
}

// Ptr returns the stored value. It must not be used after Release.
func (r *MutRef[T]) Ptr() *T {
	return r.ptr
}

func (r *MutRef[T]) Release() {
	if r.release != nil {
		r.release()
		r.release = nil
	}
}

// ListGuard exposes a whole ComponentList while holding its lock.
type ListGuard[T any] struct {
	*ComponentList[T]
	release func()
}

func (g *ListGuard[T]) Release() {
	if g.release != nil {
		g.release()
		g.release = nil
	}
}
