/*
Package depot provides a concurrent in-memory store that attaches typed components to entities.

Depot keeps one dense list per component type. Each list maps entities to slots and back,
so lookups, inserts and removals stay O(1) and iteration walks a contiguous slice.
Every list carries its own reader/writer lock: work on different component types never
contends, and a type can be read by many goroutines at once.

Core Concepts:

  - Entity: An opaque, monotonically issued identifier. Ids are never reused.
  - Component: Any Go value attached to an entity, stored by type.
  - ComponentList: Dense per-type storage using swap-remove to stay gap free.
  - ListHandle: The type-erased view of a ComponentList used for cascading deletes.

Basic Usage:

	store, _ := depot.Factory.NewStore(depot.DefaultOptions())

	position, _ := depot.Register[Position](store)
	velocity, _ := depot.Register[Velocity](store)

	e := store.AddEntity()
	position.Add(e, Position{X: 1})
	depot.AddComponent(store, e, Velocity{X: 2})

	positions := position.ListMut()
	for e, pos := range positions.All() {
		if vel, ok := velocity.Read(e); ok {
			pos.X += vel.X
		}
	}
	positions.Release()

References returned by GetComponent, GetComponentMut and the List functions hold the
lock of their component type until Release is called. Other component types and the
entity registry stay usable meanwhile. Do not call mutating store methods for the held
type; queue the work with the Enqueue functions instead and check the error returned
by RemoveLock.
*/
package depot
