package store

import (
	"testing"
	"time"

	"github.com/ekaya/cafelive/internal/model"
)

func TestCollection_ReplaceAllWholesale(t *testing.T) {
	c := NewCollection(nil)

	c.ReplaceAll([]model.Order{{ID: 41, Status: model.StatusPending}})
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}

	// The snapshot [41, 42] replaces the local set exactly.
	c.ReplaceAll([]model.Order{
		{ID: 41, Status: model.StatusPreparing},
		{ID: 42, Status: model.StatusPending},
	})

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	o41, _ := c.Get(41)
	if o41.Status != model.StatusPreparing {
		t.Errorf("order 41 status = %s, want preparing (replaced, not merged)", o41.Status)
	}
	if _, ok := c.Get(42); !ok {
		t.Error("order 42 missing after refresh")
	}

	// Orders absent from the next snapshot are dropped.
	c.ReplaceAll([]model.Order{{ID: 42, Status: model.StatusReady}})
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get(41); ok {
		t.Error("order 41 should be gone")
	}
}

func TestCollection_ReplaceAllIdempotent(t *testing.T) {
	c := NewCollection(nil)
	snapshot := []model.Order{
		{ID: 1, Status: model.StatusPending},
		{ID: 2, Status: model.StatusReady},
	}

	c.ReplaceAll(snapshot)
	first := c.All()
	c.ReplaceAll(snapshot)
	second := c.All()

	if len(first) != len(second) {
		t.Fatalf("idempotence broken: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Status != second[i].Status {
			t.Errorf("order %d differs after identical refresh", first[i].ID)
		}
	}
}

func TestCollection_DuplicateIDKeepsLast(t *testing.T) {
	c := NewCollection(nil)
	c.ReplaceAll([]model.Order{
		{ID: 9, Status: model.StatusPending},
		{ID: 9, Status: model.StatusPreparing},
	})

	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (one record per id)", c.Len())
	}
	o, _ := c.Get(9)
	if o.Status != model.StatusPreparing {
		t.Errorf("status = %s, want last occurrence", o.Status)
	}
}

func TestCollection_AllSorted(t *testing.T) {
	t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewCollection(nil)
	c.ReplaceAll([]model.Order{
		{ID: 3, CreatedAt: t0.Add(2 * time.Minute)},
		{ID: 1, CreatedAt: t0},
		{ID: 2, CreatedAt: t0},
	})

	all := c.All()
	wantIDs := []int64{1, 2, 3}
	for i, want := range wantIDs {
		if all[i].ID != want {
			t.Errorf("All()[%d].ID = %d, want %d", i, all[i].ID, want)
		}
	}
}

func TestCollection_ApplyStatusForward(t *testing.T) {
	c := NewCollection(nil)
	c.ReplaceAll([]model.Order{{ID: 5, Status: model.StatusPending}})

	if !c.ApplyStatus(5, model.StatusPreparing) {
		t.Error("pending -> preparing should apply")
	}
	o, _ := c.Get(5)
	if o.Status != model.StatusPreparing {
		t.Errorf("status = %s, want preparing", o.Status)
	}
}

func TestCollection_ApplyStatusRejectsUnreachable(t *testing.T) {
	c := NewCollection(nil)
	c.ReplaceAll([]model.Order{{ID: 5, Status: model.StatusPaid}})

	// A stale "preparing" delivered after paid must not re-animate the order.
	if c.ApplyStatus(5, model.StatusPreparing) {
		t.Error("paid -> preparing applied, want rejected")
	}
	o, _ := c.Get(5)
	if o.Status != model.StatusPaid {
		t.Errorf("status = %s, want paid (unchanged)", o.Status)
	}

	if c.ApplyStatus(404, model.StatusReady) {
		t.Error("unknown order should not apply")
	}
}

func TestCollection_Upsert(t *testing.T) {
	c := NewCollection(nil)
	c.Upsert(model.Order{ID: 7, Status: model.StatusPending})

	if _, ok := c.Get(7); !ok {
		t.Fatal("order 7 missing after Upsert")
	}

	c.Upsert(model.Order{ID: 7, Status: model.StatusCancelled})
	o, _ := c.Get(7)
	if o.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled (record replaced)", o.Status)
	}
}
