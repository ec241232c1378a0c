// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"fmt"
	"log"
)

// cacheStat stores status information about cache usage.
type cacheStat struct {
	uniqueAccess int // accesses to the unique node table
	uniqueHit    int // entries actually found in the the unique node table
	uniqueMiss   int // entries not found in the the unique node table
	opHit        int // entries found in the operation caches
	opMiss       int // entries not found in the operation caches
}

// applyData is a cache entry for a binary operation. The zero value of res
// marks a free entry; valid results are edges, which are never zero.
type applyData struct {
	a, b, c int // key (operands and operator)
	res     int
}

type applycache struct {
	table      []applyData
	cacheratio int
}

// iteData is a cache entry for the three operand if-then-else operation.
type iteData struct {
	a, b, c int
	res     int
}

type itecache struct {
	table      []iteData
	cacheratio int
}

// ************************************************************

func (c *applycache) cacheinit(size int) {
	size = primeGte(size)
	c.table = make([]applyData, size)
}

func (c *applycache) reset() {
	for k := range c.table {
		c.table[k].res = 0
	}
}

func (c *applycache) resize(size int) {
	size = primeGte(size)
	if _LOGLEVEL > 0 {
		log.Printf("apply cache resize: %d\n", size)
	}
	c.table = make([]applyData, size)
}

// matchapply returns the cached result for (a op b), 0 on a miss.
func (c *applycache) matchapply(a, b, op int) int {
	e := &c.table[_TRIPLE(a, b, op)%uint64(len(c.table))]
	if e.res != 0 && e.a == a && e.b == b && e.c == op {
		return e.res
	}
	return 0
}

func (c *applycache) setapply(a, b, op, res int) {
	e := &c.table[_TRIPLE(a, b, op)%uint64(len(c.table))]
	e.a, e.b, e.c, e.res = a, b, op, res
}

func (c *itecache) cacheinit(size int) {
	size = primeGte(size)
	c.table = make([]iteData, size)
}

func (c *itecache) reset() {
	for k := range c.table {
		c.table[k].res = 0
	}
}

func (c *itecache) resize(size int) {
	size = primeGte(size)
	if _LOGLEVEL > 0 {
		log.Printf("ite cache resize: %d\n", size)
	}
	c.table = make([]iteData, size)
}

func (c *itecache) matchite(f, g, h int) int {
	e := &c.table[_TRIPLE(f, g, h)%uint64(len(c.table))]
	if e.res != 0 && e.a == f && e.b == g && e.c == h {
		return e.res
	}
	return 0
}

func (c *itecache) setite(f, g, h, res int) {
	e := &c.table[_TRIPLE(f, g, h)%uint64(len(c.table))]
	e.a, e.b, e.c, e.res = f, g, h, res
}

// ************************************************************

// cachereset clears every operation cache. Any mutation that can free or
// rewrite nodes must pass here before results are reused.
func (b *DD) cachereset() {
	b.applycache.reset()
	b.itecache.reset()
	b.innercache.reset()
	b.inneritecache.reset()
}

// innerreset clears the private caches of the inner operators; the
// reordering primitives call it before every swap or transform step.
func (b *DD) innerreset() {
	b.innercache.reset()
	b.inneritecache.reset()
}

// cacheresize adjusts the shared caches when the node arena grows and a
// cache ratio was configured.
func (b *DD) cacheresize(nodesize int) {
	if b.cacheratio > 0 {
		b.applycache.resize(nodesize / b.cacheratio)
		b.itecache.resize(nodesize / b.cacheratio)
	}
}

// ************************************************************

// Prints information about the cache performance. The information contains
// the number of accesses to the unique node table, the number of times a
// node was (not) found there, and the hit and miss counts of the operator
// caches.

func (c cacheStat) String() string {
	res := fmt.Sprintf("Unique Access:  %d\n", c.uniqueAccess)
	res += fmt.Sprintf("Unique Hit:     %d\n", c.uniqueHit)
	res += fmt.Sprintf("Unique Miss:    %d\n", c.uniqueMiss)
	res += fmt.Sprintf("Operator Hits:  %d\n", c.opHit)
	res += fmt.Sprintf("Operator Miss:  %d", c.opMiss)
	return res
}
