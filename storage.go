package depot

import (
	"fmt"
	"sync"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
	"go.uber.org/zap"
)

// MaxComponentTypes bounds the registrations of a single Store so every ComponentID
// fits in an entity signature.
const MaxComponentTypes = 255

// Store owns the entity registry and one lock-guarded ComponentList per registered
// component type. All methods are safe for concurrent use.
type Store struct {
	logger       *zap.Logger
	listCapacity int

	typesMu sync.RWMutex
	schema  table.Schema
	slots   Cache[*componentSlot]

	entitiesMu sync.RWMutex
	nextID     uint64
	active     map[Entity]*entityRecord

	queueMu sync.Mutex
	locks   mask.Mask
	opQueue opQueue
}

func newStore(opts Options) (*Store, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger, err := opts.logger()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	sto := &Store{
		logger:       logger,
		listCapacity: opts.ListCapacity,
		schema:       table.Factory.NewSchema(),
		slots:        FactoryNewCache[*componentSlot](MaxComponentTypes),
		active:       make(map[Entity]*entityRecord, opts.EntityCapacity),
		opQueue:      newOpQueue(),
	}
	logger.Debug("initialized store",
		zap.Int("entity_capacity", opts.EntityCapacity),
		zap.Int("list_capacity", opts.ListCapacity),
	)
	return sto, nil
}

// Register creates the ComponentList for T. Each type may be registered once per Store.
func Register[T any](sto *Store) (ComponentType[T], error) {
	name := typeName[T]()

	sto.typesMu.Lock()
	defer sto.typesMu.Unlock()

	if index, ok := sto.slots.GetIndex(name); ok {
		existing := *sto.slots.GetItem(index)
		return ComponentType[T]{}, DuplicateRegistrationError{TypeName: name, ID: existing.id}
	}
	if sto.slots.Len() >= MaxComponentTypes {
		return ComponentType[T]{}, CapacityError{Capacity: MaxComponentTypes}
	}

	elem := table.FactoryNewElementType[T]()
	sto.schema.Register(elem)
	id := ComponentID(sto.schema.RowIndexFor(elem))

	list := newComponentList[T](id, name, sto.listCapacity)
	slot := &componentSlot{
		id:     id,
		name:   name,
		handle: list,
	}
	slot.bit.Mark(uint32(id))

	if _, err := sto.slots.Register(name, slot); err != nil {
		return ComponentType[T]{}, fmt.Errorf("failed to register %s: %w", name, err)
	}
	sto.logger.Debug("registered component type",
		zap.String("type", name),
		zap.Uint32("id", uint32(id)),
	)
	return ComponentType[T]{sto: sto, slot: slot, list: list}, nil
}

// lookup resolves the registration of T.
func lookup[T any](sto *Store) (ComponentType[T], error) {
	name := typeName[T]()

	sto.typesMu.RLock()
	index, ok := sto.slots.GetIndex(name)
	var slot *componentSlot
	if ok {
		slot = *sto.slots.GetItem(index)
	}
	sto.typesMu.RUnlock()

	if !ok {
		return ComponentType[T]{}, UnregisteredComponentError{TypeName: name}
	}
	list, err := listFrom[T](slot.handle)
	if err != nil {
		return ComponentType[T]{}, err
	}
	return ComponentType[T]{sto: sto, slot: slot, list: list}, nil
}

func (sto *Store) snapshotSlots() []*componentSlot {
	sto.typesMu.RLock()
	defer sto.typesMu.RUnlock()
	return sto.slots.Items()
}

// ComponentTypes returns the registered type names in registration order.
func (sto *Store) ComponentTypes() []string {
	slots := sto.snapshotSlots()
	names := make([]string, len(slots))
	for i, slot := range slots {
		names[i] = slot.name
	}
	return names
}

// Inspect runs fn with the type-erased list registered under name, holding its read
// lock. It returns false when no such type is registered.
func (sto *Store) Inspect(name string, fn func(ListHandle)) bool {
	sto.typesMu.RLock()
	index, ok := sto.slots.GetIndex(name)
	var slot *componentSlot
	if ok {
		slot = *sto.slots.GetItem(index)
	}
	sto.typesMu.RUnlock()
	if !ok {
		return false
	}

	slot.mu.RLock()
	defer slot.mu.RUnlock()
	fn(slot.handle)
	return true
}

// Clear drops every entity and component value. Registrations survive and entity
// ids keep increasing from where they were.
func (sto *Store) Clear() {
	sto.entitiesMu.Lock()
	removed := sto.active
	sto.active = make(map[Entity]*entityRecord, len(removed))
	sto.entitiesMu.Unlock()

	sto.cascade(removed)
	sto.logger.Debug("cleared store", zap.Int("entities", len(removed)))
}

// Locked reports whether any lock bit is set. While locked, Enqueue calls are
// deferred instead of applied.
func (sto *Store) Locked() bool {
	sto.queueMu.Lock()
	defer sto.queueMu.Unlock()
	return sto.locked()
}

func (sto *Store) locked() bool {
	return sto.locks != mask.Mask{}
}

// AddLock sets a lock bit. Independent callers use distinct bits so that each can
// release its own lock.
func (sto *Store) AddLock(bit uint32) {
	sto.queueMu.Lock()
	defer sto.queueMu.Unlock()
	sto.locks.Mark(bit)
}

// RemoveLock clears a lock bit and applies the deferred operations once no bits remain.
// Release every list guard before removing the last bit. The returned error combines
// every deferred operation that could not be applied.
func (sto *Store) RemoveLock(bit uint32) error {
	sto.queueMu.Lock()
	sto.locks.Unmark(bit)
	unlocked := !sto.locked()
	sto.queueMu.Unlock()

	if unlocked {
		return sto.processOperationQueue()
	}
	return nil
}
