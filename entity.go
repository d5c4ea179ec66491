package depot

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/TheBitDrifter/mask"
	iter_util "github.com/TheBitDrifter/util/iter"
)

// Entity is an opaque identifier that components attach to. Ids are issued in
// increasing order starting at 0 and are never reused.
type Entity uint64

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d)", uint64(e))
}

// entityRecord tracks which component types an active entity currently holds.
// The signature is only changed while the matching list is write locked.
type entityRecord struct {
	mu        sync.Mutex
	signature mask.Mask
}

func (r *entityRecord) mark(id ComponentID) {
	r.mu.Lock()
	r.signature.Mark(uint32(id))
	r.mu.Unlock()
}

func (r *entityRecord) unmark(id ComponentID) {
	r.mu.Lock()
	r.signature.Unmark(uint32(id))
	r.mu.Unlock()
}

func (r *entityRecord) snapshot() mask.Mask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.signature
}

// AddEntity issues the next entity id and marks it active.
func (sto *Store) AddEntity() Entity {
	sto.entitiesMu.Lock()
	defer sto.entitiesMu.Unlock()
	return sto.newEntity()
}

// AddEntities issues n entities under a single lock acquisition.
func (sto *Store) AddEntities(n int) []Entity {
	if n <= 0 {
		return nil
	}
	sto.entitiesMu.Lock()
	defer sto.entitiesMu.Unlock()

	entities := make([]Entity, n)
	for i := range entities {
		entities[i] = sto.newEntity()
	}
	return entities
}

func (sto *Store) newEntity() Entity {
	e := Entity(sto.nextID)
	sto.nextID++
	sto.active[e] = &entityRecord{}
	return e
}

// RemoveEntity deactivates e and deletes its data from every component list.
// It returns false when e is not active. The entity stops being active before the
// cascade starts. An Add racing the removal deletes its own insert and returns false.
func (sto *Store) RemoveEntity(e Entity) bool {
	return sto.RemoveEntities(e) == 1
}

// RemoveEntities removes each entity in turn and returns how many were active.
func (sto *Store) RemoveEntities(entities ...Entity) int {
	if len(entities) == 0 {
		return 0
	}
	removed := make(map[Entity]*entityRecord, len(entities))

	sto.entitiesMu.Lock()
	for _, e := range entities {
		if rec, ok := sto.active[e]; ok {
			removed[e] = rec
			delete(sto.active, e)
		}
	}
	sto.entitiesMu.Unlock()

	sto.cascade(removed)
	return len(removed)
}

// cascade deletes the data of deactivated entities. It runs without the entity
// registry lock, so a caller holding a list guard can still query entities while
// the cascade waits for that list. An Add racing the cascade either marked the
// signature before the entity was deactivated, and is deleted here, or observes
// the deactivation on its re-check and deletes its own insert.
func (sto *Store) cascade(removed map[Entity]*entityRecord) {
	if len(removed) == 0 {
		return
	}
	for _, slot := range sto.snapshotSlots() {
		var targets []Entity
		for e, rec := range removed {
			signature := rec.snapshot()
			if signature.ContainsAny(slot.bit) {
				targets = append(targets, e)
			}
		}
		if len(targets) == 0 {
			continue
		}
		slot.mu.Lock()
		for _, e := range targets {
			slot.handle.Delete(e)
		}
		slot.mu.Unlock()
	}
}

func (sto *Store) Alive(e Entity) bool {
	_, ok := sto.record(e)
	return ok
}

func (sto *Store) record(e Entity) (*entityRecord, bool) {
	sto.entitiesMu.RLock()
	defer sto.entitiesMu.RUnlock()
	rec, ok := sto.active[e]
	return rec, ok
}

func (sto *Store) EntityCount() int {
	sto.entitiesMu.RLock()
	defer sto.entitiesMu.RUnlock()
	return len(sto.active)
}

// Entities returns the active entities in ascending order.
func (sto *Store) Entities() []Entity {
	sto.entitiesMu.RLock()
	entities := iter_util.Collect(maps.Keys(sto.active))
	sto.entitiesMu.RUnlock()

	slices.Sort(entities)
	return entities
}

// Has reports whether e is active and holds a value for every given component type.
func (sto *Store) Has(e Entity, components ...Component) bool {
	rec, ok := sto.record(e)
	if !ok {
		return false
	}
	var want mask.Mask
	for _, c := range components {
		want.Mark(uint32(c.ID()))
	}
	signature := rec.snapshot()
	return signature.ContainsAll(want)
}
