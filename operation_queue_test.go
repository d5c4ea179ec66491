package depot

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestDeferredOperations tests queuing while locked and flushing on the last unlock
func TestDeferredOperations(t *testing.T) {
	sto := newTestStore(t)
	position, _ := Register[Position](sto)
	health, _ := Register[Health](sto)
	entities := sto.AddEntities(4)
	for _, e := range entities {
		position.Add(e, Position{X: 1})
	}

	sto.AddLock(1)
	sto.AddLock(2)

	list := position.ListMut()
	for e, p := range list.All() {
		p.X = 2
		switch e {
		case entities[0]:
			sto.EnqueueRemoveEntities(e)
			health.EnqueueAdd(e, Health{Current: 1})
		case entities[1]:
			position.EnqueueRemove(e)
		case entities[2]:
			EnqueueAddComponent(sto, e, Health{Current: 1})
			EnqueueAddComponent(sto, e, Health{Current: 2})
		}
	}
	list.Release()

	if !sto.Alive(entities[0]) {
		t.Errorf("removal applied while locked")
	}

	if err := sto.RemoveLock(1); err != nil {
		t.Fatalf("RemoveLock(1) = %v", err)
	}
	if !sto.Locked() {
		t.Fatalf("store unlocked with a bit still set")
	}
	if !sto.Alive(entities[0]) {
		t.Errorf("removal applied before the last lock was removed")
	}

	if err := sto.RemoveLock(2); err != nil {
		t.Fatalf("RemoveLock(2) = %v", err)
	}
	if sto.Locked() {
		t.Fatalf("store still locked")
	}

	if sto.Alive(entities[0]) {
		t.Errorf("queued removal not applied")
	}
	if health.Has(entities[0]) {
		t.Errorf("component queued for a removed entity was applied")
	}
	if position.Has(entities[1]) {
		t.Errorf("queued component removal not applied")
	}
	if h, ok := health.Read(entities[2]); !ok || h.Current != 2 {
		t.Errorf("Health of %d = %v, %v, want the last queued value", entities[2], h, ok)
	}
	if p, ok := position.Read(entities[3]); !ok || p.X != 2 {
		t.Errorf("Position of %d = %v, %v", entities[3], p, ok)
	}
}

// TestEnqueueUnlocked tests that enqueue calls apply immediately without a lock
func TestEnqueueUnlocked(t *testing.T) {
	sto := newTestStore(t)
	velocity, _ := Register[Velocity](sto)
	e := sto.AddEntity()

	if err := EnqueueAddComponent(sto, e, Velocity{X: 1}); err != nil {
		t.Fatal(err)
	}
	if !velocity.Has(e) {
		t.Errorf("unlocked EnqueueAddComponent not applied")
	}
	if err := EnqueueRemoveComponent[Velocity](sto, e); err != nil {
		t.Fatal(err)
	}
	if velocity.Has(e) {
		t.Errorf("unlocked EnqueueRemoveComponent not applied")
	}
	sto.EnqueueRemoveEntities(e)
	if sto.Alive(e) {
		t.Errorf("unlocked EnqueueRemoveEntities not applied")
	}
}

// TestDeferredOperationErrors tests that queued operations on entities removed
// directly before the flush are reported instead of dropped
func TestDeferredOperationErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core)
	sto, err := Factory.NewStore(opts)
	if err != nil {
		t.Fatal(err)
	}
	position, _ := Register[Position](sto)
	health, _ := Register[Health](sto)

	entities := sto.AddEntities(3)
	position.Add(entities[1], Position{})

	sto.AddLock(0)
	if err := health.EnqueueAdd(entities[0], Health{Current: 1}); err != nil {
		t.Fatalf("EnqueueAdd while locked = %v", err)
	}
	if err := position.EnqueueRemove(entities[1]); err != nil {
		t.Fatalf("EnqueueRemove while locked = %v", err)
	}
	health.EnqueueAdd(entities[2], Health{Current: 2})

	sto.RemoveEntities(entities[0], entities[1])

	err = sto.RemoveLock(0)
	errs := multierr.Errors(err)
	if len(errs) != 2 {
		t.Fatalf("RemoveLock(0) returned %d errors, want 2: %v", len(errs), err)
	}
	for i, want := range entities[:2] {
		var inactive InactiveEntityError
		if !errors.As(errs[i], &inactive) || inactive.Entity != want {
			t.Errorf("error %d = %v, want InactiveEntityError for %d", i, errs[i], want)
		}
	}
	if h, ok := health.Read(entities[2]); !ok || h.Current != 2 {
		t.Errorf("valid operation not applied alongside failures: %v, %v", h, ok)
	}
	if health.Has(entities[0]) {
		t.Errorf("queued add resurrected data for a removed entity")
	}
	if n := logs.FilterMessage("deferred operations failed").Len(); n != 1 {
		t.Errorf("flush failure logged %d times, want 1", n)
	}
}

// TestEnqueueUnlockedInactive tests that an immediately applied operation reports
// an inactive entity
func TestEnqueueUnlockedInactive(t *testing.T) {
	sto := newTestStore(t)
	Register[Velocity](sto)

	err := EnqueueAddComponent(sto, Entity(999), Velocity{})
	var inactive InactiveEntityError
	if !errors.As(err, &inactive) {
		t.Errorf("EnqueueAddComponent(999) error = %v, want InactiveEntityError", err)
	}
	if err := EnqueueRemoveComponent[Velocity](sto, sto.AddEntity()); err != nil {
		t.Errorf("EnqueueRemoveComponent on an entity without Velocity = %v, want nil", err)
	}
}

// TestOpQueueCoalescing tests the queue bookkeeping directly
func TestOpQueueCoalescing(t *testing.T) {
	tests := []struct {
		name        string
		build       func(q *opQueue)
		wantLive    int
		wantDestroy int
	}{
		{
			name: "Same entity and type coalesce",
			build: func(q *opQueue) {
				q.enqueueComponentOp(operation{typ: opAddComponent, entity: 1, comp: 0})
				q.enqueueComponentOp(operation{typ: opRemoveComponent, entity: 1, comp: 0})
			},
			wantLive: 1,
		},
		{
			name: "Different types stay separate",
			build: func(q *opQueue) {
				q.enqueueComponentOp(operation{typ: opAddComponent, entity: 1, comp: 0})
				q.enqueueComponentOp(operation{typ: opAddComponent, entity: 1, comp: 1})
			},
			wantLive: 2,
		},
		{
			name: "Destroy cancels pending ops",
			build: func(q *opQueue) {
				q.enqueueComponentOp(operation{typ: opAddComponent, entity: 1, comp: 0})
				q.enqueueComponentOp(operation{typ: opAddComponent, entity: 2, comp: 0})
				q.enqueueDestroy([]Entity{1, 1})
				q.enqueueComponentOp(operation{typ: opAddComponent, entity: 1, comp: 1})
			},
			wantLive:    1,
			wantDestroy: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newOpQueue()
			tt.build(&q)
			live := 0
			for _, op := range q.componentOps {
				if op.typ != opNoop {
					live++
				}
			}
			if live != tt.wantLive {
				t.Errorf("live component ops = %d, want %d", live, tt.wantLive)
			}
			if len(q.destroyOps) != tt.wantDestroy {
				t.Errorf("destroy ops = %d, want %d", len(q.destroyOps), tt.wantDestroy)
			}
		})
	}
}
