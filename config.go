// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import "time"

// configs is used to store the values of different parameters of the
// manager.
type configs struct {
	varnum          int           // number of variables
	nodesize        int           // initial number of nodes in the arena
	cachesize       int           // initial operation-cache size
	cacheratio      int           // ratio (%) between cache size and node table, 0 if the size is constant
	maxnodesize     int           // maximum total number of nodes (0 if no limit)
	maxnodeincrease int           // maximum number of nodes added at each resize (0 if no limit)
	minfreenodes    int           // minimum free nodes (%) left after GC before triggering a resize
	maxgrowth       float64       // growth tolerance during sifting
	expratio        float64       // size ratio required to accept an expansion change
	maxswaps        int           // swap budget per reordering call (0 if no limit)
	timelimit       time.Duration // wall-clock limit per reordering call (0 if no limit)
	cancel          func() bool   // cooperative cancellation hook for reordering
	autoreorder     bool          // trigger sifting automatically on table growth
}

func makeconfigs(varnum int) *configs {
	c := &configs{varnum: varnum}
	c.minfreenodes = _MINFREENODES
	c.maxnodeincrease = _DEFAULTMAXNODEINC
	// we build enough nodes to include the terminal and all the variables
	c.nodesize = 2*varnum + 2
	c.maxgrowth = 1.2
	c.expratio = 0.92
	return c
}

// Nodesize is a configuration option (function). Used as a parameter in New
// it sets a preferred initial size for the node arena. The arena can grow
// during computation; by default it is just large enough for the terminal
// and the projection functions.
func Nodesize(size int) func(*configs) {
	return func(c *configs) {
		if size >= 2*c.varnum+2 {
			c.nodesize = size
		}
	}
}

// Maxnodesize is a configuration option (function). Used as a parameter in
// New it sets a limit to the number of nodes in the arena. An operation
// trying to raise the number of nodes above this limit generates an error
// and returns a nil Node. The default value (0) means that there is no
// limit.
func Maxnodesize(size int) func(*configs) {
	return func(c *configs) {
		c.maxnodesize = size
	}
}

// Maxnodeincrease is a configuration option (function). Used as a parameter
// in New it sets a limit on the increase in size of the node arena. Below
// this limit we typically double the size of the arena at each resize. The
// default value is about a million nodes. Set the value to zero to avoid
// imposing a limit.
func Maxnodeincrease(size int) func(*configs) {
	return func(c *configs) {
		c.maxnodeincrease = size
	}
}

// Minfreenodes is a configuration option (function). Used as a parameter in
// New it sets the ratio of free nodes (%) that has to be left after a
// garbage collection event, below which the arena is resized. The default
// value is 20%.
func Minfreenodes(ratio int) func(*configs) {
	return func(c *configs) {
		c.minfreenodes = ratio
	}
}

// Cachesize is a configuration option (function). Used as a parameter in
// New it sets the initial number of entries in the operation caches. The
// default is derived from the initial arena size. See also the Cacheratio
// option.
func Cachesize(size int) func(*configs) {
	return func(c *configs) {
		c.cachesize = size
	}
}

// Cacheratio is a configuration option (function). Used as a parameter in
// New it sets a cache ratio (%) so that caches grow each time the node
// arena is resized. With a ratio of r, there are r cache entries for every
// 100 arena slots. The default value (0) means that the cache size never
// changes.
func Cacheratio(ratio int) func(*configs) {
	return func(c *configs) {
		c.cacheratio = ratio
	}
}

// Maxgrowth is a configuration option (function). Used as a parameter in
// New it sets the growth tolerance of the sifting strategies: a variable
// stops moving in one direction as soon as the diagram grows beyond the
// best size seen so far times this factor. The default is 1.2.
func Maxgrowth(factor float64) func(*configs) {
	return func(c *configs) {
		if factor >= 1.0 {
			c.maxgrowth = factor
		}
	}
}

// Expansionratio is a configuration option (function). Used as a parameter
// in New it sets the size ratio an expansion change must achieve before
// sifting adopts it: a candidate type is kept only when it brings the live
// node count to at most ratio times the best size seen at that position.
// The default is 0.92. The exact calibration is a policy knob, not a
// correctness requirement.
func Expansionratio(ratio float64) func(*configs) {
	return func(c *configs) {
		if ratio > 0 && ratio <= 1.0 {
			c.expratio = ratio
		}
	}
}

// Maxswaps is a configuration option (function). Used as a parameter in New
// it bounds the number of adjacent swaps a single reordering call may
// perform. When the budget is exhausted the current pass finishes its
// rollback and automatic reordering is disabled for the rest of the
// session. The default value (0) means that there is no bound.
func Maxswaps(n int) func(*configs) {
	return func(c *configs) {
		c.maxswaps = n
	}
}

// Timelimit is a configuration option (function). Used as a parameter in
// New it bounds the wall-clock time of a single reordering call, with the
// same one-way disabling behavior as Maxswaps. The limit is checked once
// per sifted variable, never in the middle of a swap. The default value (0)
// means that there is no limit.
func Timelimit(d time.Duration) func(*configs) {
	return func(c *configs) {
		c.timelimit = d
	}
}

// Cancel is a configuration option (function). Used as a parameter in New
// it installs a cancellation callback consulted once per sifted variable
// during reordering; when it returns true the pass stops and automatic
// reordering is disabled for the rest of the session.
func Cancel(f func() bool) func(*configs) {
	return func(c *configs) {
		c.cancel = f
	}
}

// Autoreorder is a configuration option (function). Used as a parameter in
// New it enables automatic reordering: when the number of live keys crosses
// an adaptive threshold during an operation, the operation is abandoned, an
// OET sifting pass runs, and the operation is restarted once.
func Autoreorder() func(*configs) {
	return func(c *configs) {
		c.autoreorder = true
	}
}
