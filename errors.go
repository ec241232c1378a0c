// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"errors"
)

// _MINFREENODES is the minimal number of nodes (%) that has to be left after
// a garbage collect unless a resize should be done.
const _MINFREENODES int = 20

// _MAXVAR is the maximal number of levels in the diagram. We use only the
// first 21 bits of the variable field for encoding variable indices and keep
// the upper bits for markings, so we always use int32 to avoid problems when
// we change architecture.
const _MAXVAR int32 = 0x1FFFFF

// _MARKBIT is the bit used to mark nodes during traversals (support
// computation, reachability). It lives in the variable field, above the
// variable index.
const _MARKBIT int32 = 0x200000

// _MAXREFCOUNT is the maximal value of the reference counter (refcou).
// Counters that reach this value saturate and stick, which is how the
// terminal node is pinned in the table.
const _MAXREFCOUNT int32 = 0x3FFFFFFF

// _DEFAULTMAXNODEINC is the default value for the maximal increase in the
// number of nodes during a resize, approx. one million nodes.
const _DEFAULTMAXNODEINC int = 1 << 20

// _SUBTABLEDENSITY is the number of keys tolerated per bucket in a level
// subtable before the bucket array is grown.
const _SUBTABLEDENSITY int = 4

var errMemory = errors.New("unable to free memory or resize node table")
var errResize = errors.New("should cache resize") // when gbc and then noderesize

// errReorder is returned through the recursive operator workers when an
// automatic reordering was triggered by table growth. The client entry
// points catch it, run the reordering, and restart the computation once.
var errReorder = errors.New("reordering triggered")

var errOperator = errors.New("unknown operator in call to Apply")
