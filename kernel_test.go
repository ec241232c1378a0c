// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"strings"
	"testing"
)

//********************************************************************************************

func TestNew(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Errorf("New(0) should fail")
	}
	b, err := New(3, Nodesize(1000), Cachesize(500), Maxgrowth(1.5))
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	if b.Varnum() != 3 {
		t.Errorf("Varnum: expected 3, actual %d", b.Varnum())
	}
	if b.Size() != 3 {
		t.Errorf("a fresh manager holds one node per variable, actual %d", b.Size())
	}
	for k := 0; k < 3; k++ {
		if b.VarAtLevel(k) != k || b.LevelOfVar(k) != k {
			t.Errorf("fresh managers use the identity order")
		}
		if b.ExpansionAt(k) != CS {
			t.Errorf("fresh levels should be classical Shannon, actual %s", b.ExpansionAt(k))
		}
	}
}

func TestAccessors(t *testing.T) {
	b, err := New(3)
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	x := b.Ithvar(1)
	if b.Label(x) != 1 {
		t.Errorf("Label(Ithvar(1)): expected 1, actual %d", b.Label(x))
	}
	if !b.Equal(b.Low(x), b.False()) || !b.Equal(b.High(x), b.True()) {
		t.Errorf("cofactors of a variable should be the constants")
	}
	nx := b.NIthvar(1)
	if !b.Equal(b.Low(nx), b.True()) || !b.Equal(b.High(nx), b.False()) {
		t.Errorf("cofactors of a negated variable should be the constants")
	}
	if b.Errored() {
		t.Errorf("unexpected error status: %s", b.Error())
	}
	if b.Label(b.True()) != -1 || !b.Errored() {
		t.Errorf("Label of a constant should fail")
	}
}

func TestAllnodesCount(t *testing.T) {
	b, err := New(3)
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	count := 0
	if err := b.Allnodes(func(id, level int, low, high int) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("Allnodes failed: %v", err)
	}
	// the terminal plus one projection node per variable
	if count != 4 {
		t.Errorf("expected 4 visited nodes, actual %d", count)
	}
	count = 0
	if err := b.Allnodes(func(id, level int, low, high int) error {
		count++
		return nil
	}, b.Ithvar(0)); err != nil {
		t.Fatalf("Allnodes failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 reachable nodes, actual %d", count)
	}
}

func TestStats(t *testing.T) {
	b, err := New(4)
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	b.And(b.Ithvar(0), b.Ithvar(1))
	s := b.Stats()
	for _, want := range []string{"Varnum", "Produced", "# of GC", "level 0"} {
		if !strings.Contains(s, want) {
			t.Errorf("Stats() should mention %q:\n%s", want, s)
		}
	}
}

func TestUniqueCounters(t *testing.T) {
	b, err := New(3)
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	f := b.And(b.Ithvar(0), b.Ithvar(1))
	// same function through a different recursion, so the operator cache
	// cannot answer and the unique table must
	g := b.Ite(b.Ithvar(0), b.Ithvar(1), b.False())
	if !b.Equal(f, g) {
		t.Errorf("And and Ite should reach the same node")
	}
	if b.uniqueMiss == 0 {
		t.Errorf("building nodes should record unique table misses")
	}
	if b.uniqueHit == 0 {
		t.Errorf("rebuilding an existing node should record a unique table hit")
	}
	// redundancy short-circuits return before the table is searched
	if b.uniqueAccess < b.uniqueHit+b.uniqueMiss {
		t.Errorf("inconsistent unique table counters: %d accesses, %d hits, %d misses",
			b.uniqueAccess, b.uniqueHit, b.uniqueMiss)
	}
}

//********************************************************************************************

func TestExpansionPredicates(t *testing.T) {
	var predTests = []struct {
		e                                 Expansion
		classical, shannon, ndavio, pdavio bool
	}{
		{CS, true, true, false, false},
		{CND, true, false, true, false},
		{CPD, true, false, false, true},
		{BS, false, true, false, false},
		{BND, false, false, true, false},
		{BPD, false, false, false, true},
	}
	for _, tt := range predTests {
		if tt.e.Classical() != tt.classical || tt.e.Biconditional() == tt.classical {
			t.Errorf("%s: wrong conditioning predicates", tt.e)
		}
		if tt.e.Shannon() != tt.shannon || tt.e.NegDavio() != tt.ndavio || tt.e.PosDavio() != tt.pdavio {
			t.Errorf("%s: wrong kind predicates", tt.e)
		}
		if tt.e.Davio() == tt.shannon {
			t.Errorf("%s: Davio should be the complement of Shannon", tt.e)
		}
		if !tt.e.classical().Classical() || tt.e.classical().Shannon() != tt.shannon {
			t.Errorf("%s: classical() should keep the kind", tt.e)
		}
		if !samekind(tt.e, tt.e.classical()) || !samekind(tt.e, tt.e.biconditional()) {
			t.Errorf("%s: samekind should ignore the conditioning", tt.e)
		}
	}
}
