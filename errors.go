package depot

import "fmt"

// UnregisteredComponentError is returned when a component type is used before Register.
type UnregisteredComponentError struct {
	TypeName string
}

func (e UnregisteredComponentError) Error() string {
	return fmt.Sprintf("component type is not registered: %s", e.TypeName)
}

// InactiveEntityError reports a deferred operation whose entity was removed before
// the operation could be applied.
type InactiveEntityError struct {
	Entity Entity
	Op     string
}

func (e InactiveEntityError) Error() string {
	return fmt.Sprintf("cannot %s on inactive %s", e.Op, e.Entity)
}

type DuplicateRegistrationError struct {
	TypeName string
	ID       ComponentID
}

func (e DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("component type %s already registered with id %d", e.TypeName, e.ID)
}

// TypeMismatchError reports a list stored under one type being requested as another.
// It signals a broken registry invariant rather than caller misuse.
type TypeMismatchError struct {
	Stored, Requested string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("component list of %s cannot be used as %s", e.Stored, e.Requested)
}

type CapacityError struct {
	Capacity int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("registry at maximum capacity (%d)", e.Capacity)
}

type OptionError struct {
	Field, Reason string
}

func (e OptionError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}
