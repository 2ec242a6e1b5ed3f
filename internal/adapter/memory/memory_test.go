package memory

import (
	"context"
	"testing"
)

func TestSlotStore(t *testing.T) {
	db := New()
	ctx := context.Background()

	// Absent key
	v, err := db.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil for absent key, got %q", v)
	}

	// Set and get
	in := []byte(`{"a":1}`)
	if err := db.Set(ctx, "k", in); err != nil {
		t.Fatalf("Set: %v", err)
	}
	in[0] = 'x'
	v, _ = db.Get(ctx, "k")
	if string(v) != `{"a":1}` {
		t.Errorf("stored value aliases the caller's slice: %q", v)
	}

	// Returned value is a copy
	v[0] = 'y'
	v2, _ := db.Get(ctx, "k")
	if string(v2) != `{"a":1}` {
		t.Errorf("returned value aliases the stored slice: %q", v2)
	}

	// Overwrite
	_ = db.Set(ctx, "k", []byte("2"))
	v, _ = db.Get(ctx, "k")
	if string(v) != "2" {
		t.Errorf("expected overwrite, got %q", v)
	}

	// Delete, twice
	if err := db.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := db.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if db.Len() != 0 {
		t.Errorf("expected 0 keys, got %d", db.Len())
	}
}
