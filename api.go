package depot

// ListHandle is the type-erased view of a ComponentList. Every registered component
// type owns exactly one, and the Store uses it to route and cascade without knowing
// the concrete element type.
type ListHandle interface {
	ComponentID() ComponentID
	TypeName() string
	IndexOf(Entity) (int, bool)
	EntityAt(int) (Entity, bool)
	Delete(Entity) bool
	Len() int
}

// Component identifies a registered component type.
type Component interface {
	ID() ComponentID
	Name() string
}

type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	Register(string, T) (int, error)
	Len() int
	Items() []T
}

type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}
