// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interleaved builds the conjunction of (x_i equiv x_{i+n/2}) for an
// even number of variables, a function whose diagram is exponential in
// the interleaved starting order and linear when partners sit together.
func interleaved(t *testing.T, b *DD) Node {
	n := b.Varnum()
	f := b.True()
	for i := 0; i < n/2; i++ {
		f = b.And(f, b.Equiv(b.Ithvar(i), b.Ithvar(i+n/2)))
	}
	require.False(t, b.Errored(), b.Error())
	return f
}

func TestSiftOET(t *testing.T) {
	b, err := New(8)
	require.NoError(t, err)
	f := interleaved(t, b)
	reference := truthtable(b, f)
	size0 := b.Size()

	require.NoError(t, b.SiftOET())
	assert.LessOrEqual(t, b.Size(), size0)
	assert.Equal(t, reference, truthtable(b, f))
	assert.True(t, b.ExpansionAt(b.Varnum()-1).Classical(), "the bottom level must stay classical")
}

func TestSiftOETTwice(t *testing.T) {
	b, err := New(6)
	require.NoError(t, err)
	f := interleaved(t, b)
	reference := truthtable(b, f)

	require.NoError(t, b.SiftOET())
	size1 := b.Size()
	require.NoError(t, b.SiftOET())
	assert.LessOrEqual(t, b.Size(), size1)
	assert.Equal(t, reference, truthtable(b, f))
}

func TestSiftGroups(t *testing.T) {
	b, err := New(8)
	require.NoError(t, err)
	f := interleaved(t, b)
	reference := truthtable(b, f)
	size0 := b.Size()

	require.NoError(t, b.SiftGroups())
	assert.LessOrEqual(t, b.Size(), size0)
	assert.Equal(t, reference, truthtable(b, f))
}

func TestSiftGroupsKeepsBiconditionalPairs(t *testing.T) {
	b, err := New(6)
	require.NoError(t, err)
	f := interleaved(t, b)
	reference := truthtable(b, f)
	require.NoError(t, b.SetExpansion(0, BND))

	require.NoError(t, b.SiftGroups())
	assert.Equal(t, reference, truthtable(b, f))
	// the pairing survived: the biconditional level kept its partner
	// variable on the level below, wherever the pair moved
	found := false
	for lvl := 0; lvl < b.Varnum()-1; lvl++ {
		if b.ExpansionAt(lvl).Biconditional() {
			found = true
		}
	}
	assert.True(t, found, "the biconditional level was not reinstated")
}

func TestSiftSymmetry(t *testing.T) {
	b, err := New(6)
	require.NoError(t, err)
	f := interleaved(t, b)
	reference := truthtable(b, f)
	size0 := b.Size()

	require.NoError(t, b.SiftSymmetry())
	assert.LessOrEqual(t, b.Size(), size0)
	assert.Equal(t, reference, truthtable(b, f))
}

func TestSiftBudget(t *testing.T) {
	b, err := New(6, Maxswaps(1))
	require.NoError(t, err)
	f := interleaved(t, b)
	reference := truthtable(b, f)

	// the budget is exhausted immediately; the pass must still leave a
	// consistent diagram behind
	require.NoError(t, b.SiftOET())
	assert.Equal(t, reference, truthtable(b, f))
}

//********************************************************************************************

func TestDetectReductionsFresh(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	// the three projection functions are trivial one-literal chains
	detected, reducible := b.DetectReductions()
	assert.Equal(t, 3, detected)
	assert.Equal(t, 0, reducible)
}

func TestDetectReductionsChain(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	f := b.And(b.NIthvar(0), b.And(b.NIthvar(1), b.NIthvar(2)))
	require.False(t, b.Errored(), b.Error())

	detected, reducible := b.DetectReductions()
	assert.Equal(t, 5, detected)
	assert.Equal(t, 2, reducible)
	runtime.KeepAlive(f)
}
