package dag

import (
	stderrors "errors"
	"reflect"
	"testing"
)

func TestGraph_Register(t *testing.T) {
	g := NewGraph()
	if err := g.Register(1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Register(1, 10); err != nil {
		t.Fatalf("same pair must be idempotent: %v", err)
	}
	if g.Len() != 1 {
		t.Fatalf("expected 1 edge, got %d", g.Len())
	}

	err := g.Register(2, 10)
	var conflict *LinkConflict
	if !stderrors.As(err, &conflict) {
		t.Fatalf("expected LinkConflict, got %v", err)
	}
	if conflict.Sink != 10 || conflict.Existing != 1 || conflict.Requested != 2 {
		t.Errorf("unexpected conflict: %+v", conflict)
	}

	if err := g.Register(1, 11); err != nil {
		t.Fatalf("fan-out must be allowed: %v", err)
	}
	if got := g.Consumers(1); !reflect.DeepEqual(got, []PadID{10, 11}) {
		t.Errorf("expected consumers [10 11], got %v", got)
	}
	if src, ok := g.Producer(11); !ok || src != 1 {
		t.Errorf("expected producer 1, got %d (ok=%v)", src, ok)
	}
	if _, ok := g.Producer(99); ok {
		t.Error("expected no producer for unknown pad")
	}
}

func TestGraph_MergeIsAllOrNothing(t *testing.T) {
	g := NewGraph()
	_ = g.Register(1, 10)

	other := NewGraph()
	_ = other.Register(3, 12)
	_ = other.Register(2, 10) // conflicts with 1 -> 10

	if err := g.Merge(other); err == nil {
		t.Fatal("expected conflict")
	}
	if g.Len() != 1 {
		t.Fatalf("expected no partial merge, got %d edges", g.Len())
	}

	ok := NewGraph()
	_ = ok.Register(1, 10)
	_ = ok.Register(3, 12)
	if err := g.Merge(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Len() != 2 {
		t.Fatalf("expected union of 2 edges, got %d", g.Len())
	}
}

func TestGraph_Dependencies(t *testing.T) {
	// pads 0,1 belong to element 0; 2,3 to element 1; 4 to element 2.
	owner := func(id PadID) ElementID { return ElementID(id / 2) }
	g := NewGraph()
	_ = g.Register(0, 2)
	_ = g.Register(1, 3) // second pad edge between the same elements
	_ = g.Register(1, 4)

	want := []Dependency{{From: 0, To: 1}, {From: 0, To: 2}}
	if got := g.Dependencies(owner); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g := NewGraph()
	_ = g.Register(1, 10)
	c := g.Clone()
	_ = c.Register(2, 11)
	if g.Len() != 1 || c.Len() != 2 {
		t.Fatalf("clone shares state: g=%d c=%d", g.Len(), c.Len())
	}
}
