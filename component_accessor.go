package depot

// AddComponent attaches value to e, overwriting any existing value of T.
// It returns false when e is not active.
func AddComponent[T any](sto *Store, e Entity, value T) (bool, error) {
	c, err := lookup[T](sto)
	if err != nil {
		return false, err
	}
	return c.Add(e, value), nil
}

// GetComponent returns a read-locked reference to the T of e, or nil when e is
// inactive or holds no T. The reference must be released.
func GetComponent[T any](sto *Store, e Entity) (*Ref[T], error) {
	c, err := lookup[T](sto)
	if err != nil {
		return nil, err
	}
	return c.Get(e), nil
}

func GetComponentMut[T any](sto *Store, e Entity) (*MutRef[T], error) {
	c, err := lookup[T](sto)
	if err != nil {
		return nil, err
	}
	return c.GetMut(e), nil
}

// ReadComponent copies the T of e without handing out a reference.
func ReadComponent[T any](sto *Store, e Entity) (T, bool, error) {
	c, err := lookup[T](sto)
	if err != nil {
		var zero T
		return zero, false, err
	}
	value, ok := c.Read(e)
	return value, ok, nil
}

func UpdateComponent[T any](sto *Store, e Entity, fn func(*T)) (bool, error) {
	c, err := lookup[T](sto)
	if err != nil {
		return false, err
	}
	return c.Update(e, fn), nil
}

func ListComponent[T any](sto *Store) (*ListGuard[T], error) {
	c, err := lookup[T](sto)
	if err != nil {
		return nil, err
	}
	return c.List(), nil
}

func ListComponentMut[T any](sto *Store) (*ListGuard[T], error) {
	c, err := lookup[T](sto)
	if err != nil {
		return nil, err
	}
	return c.ListMut(), nil
}

// RemoveComponent detaches and returns the T of e.
func RemoveComponent[T any](sto *Store, e Entity) (T, bool, error) {
	c, err := lookup[T](sto)
	if err != nil {
		var zero T
		return zero, false, err
	}
	value, ok := c.Remove(e)
	return value, ok, nil
}

func EnqueueAddComponent[T any](sto *Store, e Entity, value T) error {
	c, err := lookup[T](sto)
	if err != nil {
		return err
	}
	return c.EnqueueAdd(e, value)
}

func EnqueueRemoveComponent[T any](sto *Store, e Entity) error {
	c, err := lookup[T](sto)
	if err != nil {
		return err
	}
	return c.EnqueueRemove(e)
}

// Lookup returns the registration token of T.
func Lookup[T any](sto *Store) (ComponentType[T], error) {
	return lookup[T](sto)
}
