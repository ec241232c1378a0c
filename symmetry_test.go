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

func TestSymmetricPair(t *testing.T) {
	b, err := New(2)
	require.NoError(t, err)
	f := b.Equiv(b.Ithvar(0), b.Ithvar(1))
	require.False(t, b.Errored(), b.Error())

	// the predicate must see through every classical kind of the upper
	// level; the positive Davio case stores the conditioned-true cofactor
	// in the low slot, not the ring difference
	assert.True(t, b.symmetric(0))
	for _, e := range []Expansion{CND, CPD, CS} {
		require.NoError(t, b.SetExpansion(0, e))
		assert.True(t, b.symmetric(0), "symmetric pair missed under %s", e)
	}
	runtime.KeepAlive(f)
}

func TestAsymmetricPair(t *testing.T) {
	b, err := New(2)
	require.NoError(t, err)
	f := b.And(b.Ithvar(0), b.NIthvar(1))
	require.False(t, b.Errored(), b.Error())

	for _, e := range []Expansion{CS, CND, CPD} {
		require.NoError(t, b.SetExpansion(0, e))
		assert.False(t, b.symmetric(0), "asymmetric pair accepted under %s", e)
	}
	runtime.KeepAlive(f)
}
