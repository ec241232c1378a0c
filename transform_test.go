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

func TestSetExpansionPreservesSemantics(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	f := b.Ite(b.Ithvar(0), b.Ithvar(1), b.Ithvar(2))
	require.False(t, b.Errored(), b.Error())
	reference := truthtable(b, f)
	size0 := b.Size()

	steps := []struct {
		level  int
		target Expansion
	}{
		{1, CND},
		{1, CPD},
		{0, CND},
		{0, BND},
		{0, BS},
		{1, BND},
		{0, CS},
		{1, CS},
		{0, CS},
	}
	for _, tt := range steps {
		require.NoError(t, b.SetExpansion(tt.level, tt.target), "SetExpansion(%d, %s)", tt.level, tt.target)
		assert.Equal(t, tt.target, b.ExpansionAt(tt.level))
		assert.Equal(t, reference, truthtable(b, f), "semantics changed by SetExpansion(%d, %s)", tt.level, tt.target)
	}
	// every level is classical Shannon again; the canonical diagram must
	// be exactly the one we started from
	assert.Equal(t, size0, b.Size())
}

func TestSetExpansionRoundTrip(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)
	f := b.Or(b.And(b.Ithvar(0), b.Ithvar(2)), b.And(b.Ithvar(1), b.Ithvar(3)))
	require.False(t, b.Errored(), b.Error())
	reference := truthtable(b, f)
	size0 := b.Size()

	for _, e := range []Expansion{CND, CPD, CS} {
		for level := 0; level < 4; level++ {
			require.NoError(t, b.SetExpansion(level, e))
			require.Equal(t, reference, truthtable(b, f))
		}
	}
	assert.Equal(t, size0, b.Size())
}

func TestSetExpansionErrors(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	assert.Error(t, b.SetExpansion(2, BS), "the bottom level cannot be biconditional")

	b2, err := New(3)
	require.NoError(t, err)
	assert.Error(t, b2.SetExpansion(3, CND))
	b3, err := New(3)
	require.NoError(t, err)
	assert.Error(t, b3.SetExpansion(-1, CND))
}

func TestExpansions(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, []Expansion{CS, CS, CS}, b.Expansions())
	require.NoError(t, b.SetExpansion(0, BND))
	assert.Equal(t, []Expansion{BND, CS, CS}, b.Expansions())
	assert.Equal(t, CS, b.ExpansionAt(2))
}

func TestTransformKeepsLowEdgesRegular(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	f := b.Ite(b.Ithvar(0), b.Ithvar(1), b.Not(b.Ithvar(2)))
	require.False(t, b.Errored(), b.Error())
	for _, e := range []Expansion{CND, BS, CPD, BND, CS} {
		require.NoError(t, b.SetExpansion(0, e))
		require.NoError(t, b.Allnodes(func(id, level int, low, high int) error {
			if id > 1 {
				assert.Zero(t, low&1, "complemented low slot on node %d", id)
			}
			return nil
		}))
	}
	runtime.KeepAlive(f)
}
