package depot

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type operation struct {
	typ    operationType
	entity Entity
	comp   ComponentID
	apply  func() error
}

type operationType int

const (
	opNoop operationType = iota
	opAddComponent
	opRemoveComponent
)

type opKey struct {
	entity Entity
	comp   ComponentID
}

type opQueue struct {
	componentOps   []operation
	destroyOps     []Entity
	pendingDestroy map[Entity]struct{}
	pendingMods    map[opKey]int
}

func newOpQueue() opQueue {
	return opQueue{
		pendingDestroy: make(map[Entity]struct{}),
		pendingMods:    make(map[opKey]int),
	}
}

func (q *opQueue) len() int {
	return len(q.componentOps) + len(q.destroyOps)
}

// enqueueComponentOp keeps only the latest operation per entity and component type.
// Operations on entities already queued for removal are dropped.
func (q *opQueue) enqueueComponentOp(op operation) {
	if _, isDestroyed := q.pendingDestroy[op.entity]; isDestroyed {
		return
	}
	key := opKey{entity: op.entity, comp: op.comp}
	if existingIdx, exists := q.pendingMods[key]; exists {
		q.componentOps[existingIdx] = op
		return
	}
	q.pendingMods[key] = len(q.componentOps)
	q.componentOps = append(q.componentOps, op)
}

func (q *opQueue) enqueueDestroy(entities []Entity) {
	for _, e := range entities {
		if _, exists := q.pendingDestroy[e]; exists {
			continue
		}
		q.pendingDestroy[e] = struct{}{}
		q.destroyOps = append(q.destroyOps, e)

		// Pending component operations for this entity become no-ops.
		for key, idx := range q.pendingMods {
			if key.entity == e {
				q.componentOps[idx].typ = opNoop
				delete(q.pendingMods, key)
			}
		}
	}
}

func (sto *Store) enqueueComponentOp(typ operationType, e Entity, comp ComponentID, apply func() error) error {
	sto.queueMu.Lock()
	if !sto.locked() {
		sto.queueMu.Unlock()
		return apply()
	}
	sto.opQueue.enqueueComponentOp(operation{
		typ:    typ,
		entity: e,
		comp:   comp,
		apply:  apply,
	})
	sto.queueMu.Unlock()
	return nil
}

// EnqueueRemoveEntities removes the entities now, or once the last lock is removed.
func (sto *Store) EnqueueRemoveEntities(entities ...Entity) {
	sto.queueMu.Lock()
	if !sto.locked() {
		sto.queueMu.Unlock()
		sto.RemoveEntities(entities...)
		return
	}
	sto.opQueue.enqueueDestroy(entities)
	sto.queueMu.Unlock()
}

// processOperationQueue applies component operations first and entity removals last.
// Every operation is attempted; failures are combined into the returned error.
func (sto *Store) processOperationQueue() error {
	sto.queueMu.Lock()
	q := sto.opQueue
	sto.opQueue = newOpQueue()
	sto.queueMu.Unlock()

	if q.len() == 0 {
		return nil
	}

	var err error
	applied := 0
	for _, op := range q.componentOps {
		if op.typ == opNoop {
			continue
		}
		if opErr := op.apply(); opErr != nil {
			err = multierr.Append(err, opErr)
			continue
		}
		applied++
	}
	removed := sto.RemoveEntities(q.destroyOps...)

	if err != nil {
		sto.logger.Warn("deferred operations failed",
			zap.Int("failed", len(multierr.Errors(err))),
			zap.Error(err),
		)
	}
	sto.logger.Debug("processed deferred operations",
		zap.Int("component_ops", applied),
		zap.Int("entities_removed", removed),
	)
	return err
}
