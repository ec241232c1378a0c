// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapPreservesSemantics(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	f := b.Ite(b.Ithvar(0), b.Ithvar(1), b.Ithvar(2))
	require.False(t, b.Errored(), b.Error())
	reference := truthtable(b, f)
	size0 := b.Size()

	require.NoError(t, b.Swap(0))
	assert.Equal(t, 1, b.VarAtLevel(0))
	assert.Equal(t, 0, b.VarAtLevel(1))
	assert.Equal(t, 1, b.LevelOfVar(0))
	assert.Equal(t, reference, truthtable(b, f))

	// swapping back restores the original order and diagram
	require.NoError(t, b.Swap(0))
	assert.Equal(t, 0, b.VarAtLevel(0))
	assert.Equal(t, reference, truthtable(b, f))
	assert.Equal(t, size0, b.Size())
}

func TestSwapEveryLevel(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)
	f := b.Or(b.And(b.Ithvar(0), b.Ithvar(2)), b.And(b.Ithvar(1), b.Not(b.Ithvar(3))))
	require.False(t, b.Errored(), b.Error())
	reference := truthtable(b, f)

	for level := 0; level < 3; level++ {
		require.NoError(t, b.Swap(level))
		require.Equal(t, reference, truthtable(b, f), "swap at level %d changed the function", level)
	}
	for level := 2; level >= 0; level-- {
		require.NoError(t, b.Swap(level))
		require.Equal(t, reference, truthtable(b, f))
	}
}

func TestSwapIndependentVariables(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	// var 1 does not appear in f
	f := b.And(b.Ithvar(0), b.Ithvar(2))
	require.False(t, b.Errored(), b.Error())
	reference := truthtable(b, f)
	size0 := b.Size()

	require.NoError(t, b.Swap(1))
	assert.Equal(t, 2, b.VarAtLevel(1))
	assert.Equal(t, reference, truthtable(b, f))
	assert.Equal(t, size0, b.Size())
}

func TestSwapDavioLevels(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	f := b.Xor(b.Ithvar(0), b.And(b.Ithvar(1), b.Ithvar(2)))
	require.False(t, b.Errored(), b.Error())
	reference := truthtable(b, f)

	require.NoError(t, b.SetExpansion(0, CND))
	require.NoError(t, b.SetExpansion(1, CPD))
	require.NoError(t, b.Swap(0))
	assert.Equal(t, reference, truthtable(b, f))
	// the kinds travel with their variables
	assert.Equal(t, CPD, b.ExpansionAt(0))
	assert.Equal(t, CND, b.ExpansionAt(1))
	require.NoError(t, b.Swap(1))
	assert.Equal(t, reference, truthtable(b, f))
}

func TestSwapDeclassifies(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	f := b.Ite(b.Ithvar(0), b.Ithvar(1), b.Ithvar(2))
	require.False(t, b.Errored(), b.Error())
	reference := truthtable(b, f)

	require.NoError(t, b.SetExpansion(0, BS))
	require.NoError(t, b.Swap(0))
	// the swap had to drop the biconditional conditioning first
	assert.True(t, b.ExpansionAt(0).Classical())
	assert.True(t, b.ExpansionAt(1).Classical())
	assert.Equal(t, reference, truthtable(b, f))
}

func TestSwapErrors(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	assert.Error(t, b.Swap(2), "the bottom level has no partner to swap with")
	b2, err := New(3)
	require.NoError(t, err)
	assert.Error(t, b2.Swap(-1))
}
