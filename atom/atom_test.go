package atom

import (
	"testing"

	"github.com/xepl-run/xepl/types"
)

func TestAtomRefCounting(t *testing.T) {
	a := NewAtom()
	if got := a.RefCount(); got != 1 {
		t.Fatalf("RefCount() = %d, want 1", got)
	}
	a.Retain()
	if got := a.RefCount(); got != 2 {
		t.Fatalf("RefCount() after Retain = %d, want 2", got)
	}
	if a.Release() {
		t.Fatalf("Release() reported zero too early")
	}
	if !a.Release() {
		t.Fatalf("Release() should have reached zero")
	}
}

func TestAtomFlagsMonotonic(t *testing.T) {
	a := NewAtom()
	a.Raise(types.FlagLysing)
	if !a.Has(types.FlagLysing) {
		t.Fatalf("expected FlagLysing set")
	}
	a.Raise(types.FlagDropped)
	if !a.Has(types.FlagLysing) || !a.Has(types.FlagDropped) {
		t.Fatalf("raising a new flag must not clear an earlier one")
	}
}

func TestChainOrderingAndRemoval(t *testing.T) {
	c := NewChain[string](true)
	c.AddTail("a")
	bBond := c.AddTail("b")
	c.AddTail("c")

	got := c.Snapshot()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Snapshot()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	c.RemoveBond(bBond)
	if got := c.Snapshot(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("after removal Snapshot() = %v, want [a c]", got)
	}

	v, ok := c.PullHead()
	if !ok || v != "a" {
		t.Fatalf("PullHead() = (%q, %v), want (a, true)", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestChainEachSnapshotAllowsMutationDuringIteration(t *testing.T) {
	c := NewChain[int](true)
	for i := 0; i < 5; i++ {
		c.AddTail(i)
	}
	seen := 0
	c.Each(func(v int) {
		seen++
		if v == 2 {
			c.AddTail(99) // mutate mid-walk; must not deadlock or corrupt this pass
		}
	})
	if seen != 5 {
		t.Fatalf("Each visited %d values mid-mutation, want 5 (snapshot taken before mutation)", seen)
	}
	if c.Len() != 6 {
		t.Fatalf("Len() after mutation = %d, want 6", c.Len())
	}
}
