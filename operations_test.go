// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"testing"
)

//********************************************************************************************

func TestIthvar(t *testing.T) {
	b, err := New(4)
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	for i := 0; i < 4; i++ {
		x := b.Ithvar(i)
		nx := b.NIthvar(i)
		for bits := 0; bits < 16; bits++ {
			varval := assignment(bits, 4)
			if b.Eval(x, varval) != varval[i] {
				t.Errorf("Ithvar(%d) disagrees with assignment %v", i, varval)
			}
			if b.Eval(nx, varval) == varval[i] {
				t.Errorf("NIthvar(%d) disagrees with assignment %v", i, varval)
			}
		}
		if !b.Equal(b.Not(x), nx) {
			t.Errorf("not(Ithvar(%d)) and NIthvar(%d) should be the same node", i, i)
		}
	}
	if b.Errored() {
		t.Errorf("unexpected error status: %s", b.Error())
	}
}

func TestIdentities(t *testing.T) {
	b, err := New(4)
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	x := make([]Node, 4)
	for i := range x {
		x[i] = b.Ithvar(i)
	}
	a, c, d := x[0], x[1], x[2]

	if !b.Equal(b.Not(b.And(a, c)), b.Or(b.Not(a), b.Not(c))) {
		t.Errorf("de Morgan: not(a and c) != (not a or not c)")
	}
	if !b.Equal(b.Xor(a, c), b.Or(b.And(a, b.Not(c)), b.And(b.Not(a), c))) {
		t.Errorf("xor(a,c) != (a and not c) or (not a and c)")
	}
	if !b.Equal(b.Imp(a, c), b.Or(b.Not(a), c)) {
		t.Errorf("imp(a,c) != (not a or c)")
	}
	if !b.Equal(b.Equiv(a, c), b.Not(b.Xor(a, c))) {
		t.Errorf("equiv(a,c) != not(xor(a,c))")
	}
	if !b.Equal(b.Ite(a, c, d), b.Or(b.And(a, c), b.And(b.Not(a), d))) {
		t.Errorf("ite(a,c,d) != (a and c) or (not a and d)")
	}
	if !b.Equal(b.And(), b.True()) {
		t.Errorf("empty conjunction should be the constant true")
	}
	if !b.Equal(b.Or(), b.False()) {
		t.Errorf("empty disjunction should be the constant false")
	}
	if !b.Equal(b.Apply(a, c, OPnand), b.Not(b.And(a, c))) {
		t.Errorf("nand(a,c) != not(a and c)")
	}
	if !b.Equal(b.Apply(a, c, OPdiff), b.And(a, b.Not(c))) {
		t.Errorf("diff(a,c) != a and not c")
	}
	if b.Errored() {
		t.Errorf("unexpected error status: %s", b.Error())
	}
}

func TestEval(t *testing.T) {
	b, err := New(3)
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	// f = (a and c) or (not a and d)
	f := b.Ite(b.Ithvar(0), b.Ithvar(1), b.Ithvar(2))
	for bits := 0; bits < 8; bits++ {
		varval := assignment(bits, 3)
		expected := varval[1]
		if !varval[0] {
			expected = varval[2]
		}
		if b.Eval(f, varval) != expected {
			t.Errorf("ite(a,c,d) on %v: expected %v", varval, expected)
		}
	}
}

func TestConstants(t *testing.T) {
	b, err := New(2)
	if err != nil {
		t.Fatalf("cannot create manager: %v", err)
	}
	if !b.Equal(b.From(true), b.True()) || !b.Equal(b.From(false), b.False()) {
		t.Errorf("From does not agree with the constants")
	}
	if !b.Equal(b.Not(b.True()), b.False()) {
		t.Errorf("not(true) != false")
	}
	if !b.Equal(b.And(b.Ithvar(0), b.Not(b.Ithvar(0))), b.False()) {
		t.Errorf("a and not a != false")
	}
	if !b.Equal(b.Or(b.Ithvar(0), b.Not(b.Ithvar(0))), b.True()) {
		t.Errorf("a or not a != true")
	}
}

//********************************************************************************************

// assignment unpacks the low bits of an integer into a truth assignment.
func assignment(bits, varnum int) []bool {
	varval := make([]bool, varnum)
	for i := range varval {
		varval[i] = bits&(1<<i) != 0
	}
	return varval
}

// truthtable collects the value of f on every assignment of the manager's
// variables.
func truthtable(b *DD, f Node) []bool {
	varnum := b.Varnum()
	res := make([]bool, 1<<varnum)
	for bits := range res {
		res[bits] = b.Eval(f, assignment(bits, varnum))
	}
	return res
}
