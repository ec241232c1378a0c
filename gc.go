// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"log"
	"runtime"
	"time"
)

type gcpoint struct {
	nodes            int // Total number of allocated nodes in the nodetable
	freenodes        int // Number of free nodes in the nodetable
	setfinalizers    int // Total number of external references
	calledfinalizers int // Number of external references that were freed
	duration         time.Duration
}

type gcstat struct {
	setfinalizers    uint64
	calledfinalizers uint64
	history          []gcpoint
}

// ************************************************************

// ref increments the reference count of the node under edge e. Counts
// saturate; a saturated node is never collected. Reviving a dead node and
// sharing a projection function are accounted here.
func (b *DD) ref(e int) int {
	n := e >> 1
	nd := &b.nodes[n]
	if nd.refcou >= _MAXREFCOUNT {
		return e
	}
	nd.refcou++
	if nd.refcou == 1 && nd.low != -1 && n > 1 {
		b.dead--
		b.subtables[b.var2level[nd.varix&_MAXVAR]].dead--
	}
	if nd.refcou == 2 && b.isproj(n) {
		b.isolated--
	}
	return e
}

// deref decrements the reference count of the node under edge e. The node
// is not freed when the count reaches zero; it becomes dead and waits for
// the next collection.
func (b *DD) deref(e int) {
	n := e >> 1
	nd := &b.nodes[n]
	if nd.refcou >= _MAXREFCOUNT {
		return
	}
	if _DEBUG && nd.refcou == 0 {
		log.Panicf("deref of unreferenced node %d", n)
	}
	nd.refcou--
	if nd.refcou == 0 {
		b.dead++
		b.subtables[b.var2level[nd.varix&_MAXVAR]].dead++
	}
	if nd.refcou == 1 && b.isproj(n) {
		b.isolated++
	}
}

// derefFree decrements the reference count of the node under e and, when
// it drops to zero, frees the node immediately and cascades to its
// successors. Only the reordering machinery uses this eager variant; its
// callers reset the operation caches themselves.
func (b *DD) derefFree(e int) {
	n := e >> 1
	nd := &b.nodes[n]
	if nd.refcou >= _MAXREFCOUNT {
		return
	}
	if _DEBUG && nd.refcou == 0 {
		log.Panicf("derefFree of unreferenced node %d", n)
	}
	nd.refcou--
	if nd.refcou == 1 && b.isproj(n) {
		b.isolated++
	}
	if nd.refcou > 0 {
		return
	}
	level := b.var2level[nd.varix&_MAXVAR]
	b.unlink(level, n)
	low, high := nd.low, nd.high
	b.freenode(n)
	b.derefFree(low)
	b.derefFree(high)
}

// sweepDead frees every dead node stored at the given level and below.
// The swap engine uses it to leave a table with no dead entries without
// paying for a full collection: its own intermediates and orphaned old
// successors all live below the upper swapped level. Children sit strictly
// deeper than their parents, so one top-down pass reaches every cascade.
func (b *DD) sweepDead(from int32) {
	for lvl := from; lvl < b.varnum; lvl++ {
		st := &b.subtables[lvl]
		if st.dead == 0 {
			continue
		}
		for pos, head := range st.buckets {
			prev := 0
			n := head
			for n != 0 {
				next := b.nodes[n].next
				if b.nodes[n].refcou == 0 {
					if prev == 0 {
						st.buckets[pos] = next
					} else {
						b.nodes[prev].next = next
					}
					st.keys--
					st.dead--
					b.keys--
					b.dead--
					low, high := b.nodes[n].low, b.nodes[n].high
					b.freenode(n)
					b.deref(low)
					b.deref(high)
				} else {
					prev = n
				}
				n = next
			}
		}
	}
}

// freenode returns an allocated arena slot to the free list.
func (b *DD) freenode(n int) {
	b.nodes[n].low = -1
	b.nodes[n].varix = 0
	b.nodes[n].next = b.freepos
	b.freepos = n
	b.freenum++
}

// isproj reports whether arena slot n holds the projection function of its
// variable.
func (b *DD) isproj(n int) bool {
	if n <= 1 {
		return false
	}
	v := b.nodes[n].varix & _MAXVAR
	if int32(v) >= b.varnum {
		return false
	}
	return b.varset[v][1]>>1 == n
}

// recomputeIsolated recounts the projection functions that carry only the
// manager's own reference.
func (b *DD) recomputeIsolated() {
	count := 0
	for k := int32(0); k < b.varnum; k++ {
		if b.nodes[b.varset[k][1]>>1].refcou == 1 {
			count++
		}
	}
	b.isolated = count
}

// ************************************************************

// The refstack protects intermediate results of the recursive operators
// from garbage collection. Entries are pushed as results are produced and
// popped in bulk when the client call returns.

func (b *DD) initref() {
	b.refstack = b.refstack[:0]
}

func (b *DD) pushref(e int) int {
	b.refstack = append(b.refstack, e)
	return e
}

func (b *DD) popref(a int) {
	b.refstack = b.refstack[:len(b.refstack)-a]
}

// AddRef increases the reference count of the node denoted by n. This is
// rarely needed; external handles returned by the package already hold a
// reference that is released by a finalizer.
func (b *DD) AddRef(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("illegal access to node in call to AddRef")
	}
	b.ref(*n)
	return n
}

// DelRef decreases the reference count of the node denoted by n, undoing a
// previous AddRef.
func (b *DD) DelRef(n Node) {
	if b.checkptr(n) != nil {
		b.seterror("illegal access to node in call to DelRef")
		return
	}
	b.deref(*n)
}

// ************************************************************

// gbc is the garbage collector called for reclaiming memory. It frees the
// dead nodes of every level and resets the operation caches, whose entries
// can name freed nodes.
func (b *DD) gbc() (int, error) {
	return b.gbcFrom(0)
}

// gbcFrom collects dead nodes at levels from start down to the bottom of
// the diagram. Nodes protected by the refstack survive even with a zero
// reference count.
func (b *DD) gbcFrom(start int32) (int, error) {
	if _LOGLEVEL > 0 {
		log.Printf("starting GC, produced: %d, keys: %d, dead: %d\n", b.produced, b.keys, b.dead)
	}
	d := time.Now()

	// run the runtime finalizers first so that unreachable external
	// handles give back their reference before we sweep
	runtime.GC()

	for _, e := range b.refstack {
		b.markrec(e)
	}
	freed := 0
	for level := start; level < b.varnum; level++ {
		st := &b.subtables[level]
		if st.dead == 0 {
			continue
		}
		for pos, head := range st.buckets {
			prev := 0
			n := head
			for n != 0 {
				nd := &b.nodes[n]
				next := nd.next
				if nd.refcou == 0 && !b.ismarked(n) {
					if prev == 0 {
						st.buckets[pos] = next
					} else {
						b.nodes[prev].next = next
					}
					st.keys--
					st.dead--
					b.keys--
					b.dead--
					low, high := nd.low, nd.high
					b.freenode(n)
					b.deref(low)
					b.deref(high)
					freed++
				} else {
					prev = n
				}
				n = next
			}
		}
	}
	for _, e := range b.refstack {
		b.unmarkrec(e)
	}

	b.cachereset()

	if _DEBUG {
		b.gcstat.history = append(b.gcstat.history, gcpoint{
			nodes:            len(b.nodes),
			freenodes:        b.freenum,
			setfinalizers:    int(b.gcstat.setfinalizers),
			calledfinalizers: int(b.gcstat.calledfinalizers),
			duration:         time.Since(d),
		})
		if _LOGLEVEL > 0 {
			log.Printf("end GC; freed: %d, free: %d\n", freed, b.freenum)
		}
	}
	return freed, nil
}

// markrec marks the nodes reachable from e that are not protected by a
// reference count of their own.
func (b *DD) markrec(e int) {
	n := e >> 1
	if n <= 1 || b.ismarked(n) {
		return
	}
	b.marknode(n)
	b.markrec(b.nodes[n].low)
	b.markrec(b.nodes[n].high)
}

func (b *DD) unmarkrec(e int) {
	n := e >> 1
	if n <= 1 || !b.ismarked(n) {
		return
	}
	b.unmarknode(n)
	b.unmarkrec(b.nodes[n].low)
	b.unmarkrec(b.nodes[n].high)
}
