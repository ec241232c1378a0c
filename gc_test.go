// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// After every externally held reference is dropped, collection must bring
// the table back to its initial content: the projection functions and
// nothing else. Each projection stays a single node whatever classical
// kind its level uses and wherever it sits in the order, so the count is
// unaffected by the transforms and swaps in between.
func TestReclaimAfterRelease(t *testing.T) {
	b, err := New(4)
	require.NoError(t, err)
	baseline := b.Size()

	f := b.And(b.Ithvar(0), b.Or(b.Ithvar(1), b.NIthvar(2)))
	g := b.Xor(f, b.Ithvar(3))
	h := b.Ite(f, g, b.Not(g))
	require.False(t, b.Errored(), b.Error())
	b.AddRef(h)
	require.NoError(t, b.SetExpansion(1, CND))
	require.NoError(t, b.SetExpansion(2, CPD))
	require.NoError(t, b.Swap(0))
	require.Greater(t, b.Size(), baseline)
	b.DelRef(h)

	// the finalizers of unreachable handles give back their references on
	// the runtime's schedule; poll until they all ran
	deadline := time.Now().Add(5 * time.Second)
	for b.Size() != baseline && time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, baseline, b.Size())

	// sweeping the dead nodes must not disturb the live count
	_, err = b.gbc()
	require.NoError(t, err)
	assert.Equal(t, baseline, b.Size())
	assert.Equal(t, 0, b.dead)
}
