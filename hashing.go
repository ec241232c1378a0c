// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"log"
)

// _PAIR is a perfect pairing of its two arguments, used to hash the (low,
// high) key of a node into its level's bucket array.
func _PAIR(a, b int) uint64 {
	ua, ub := uint64(a), uint64(b)
	return ((ua + ub) * (ua + ub + 1) / 2) + ua
}

// _TRIPLE extends the pairing to three arguments for the operation cache
// keys.
func _TRIPLE(a, b, c int) uint64 {
	return _PAIR(int(_PAIR(a, b)), c)
}

func (b *DD) hash(level int32, low, high int) int {
	return int(_PAIR(low, high) % uint64(len(b.subtables[level].buckets)))
}

// ************************************************************

// makenode finds or creates a node at the given level with the given
// successor slots, after applying the normalization rules of the level's
// expansion type: redundant nodes are short-circuited and a complemented
// low slot is traded for a complemented result edge. The returned edge has
// a regular low slot whenever it points to a node at this level.
//
// makenode can trigger a garbage collection or an arena resize; both
// invalidate nothing but can move the free list. An errReorder return asks
// the outermost caller to run dynamic reordering and start over.
func (b *DD) makenode(level int32, low, high int) (int, error) {
	if _DEBUG {
		if iscomp(low) && b.node(low) == &b.nodes[1] && low != edgezero {
			log.Panicf("bad complement edge in makenode")
		}
	}
	b.uniqueAccess++
	pol := 0
	if b.subtables[level].exp.Shannon() {
		if low == high {
			return low, nil
		}
		if iscomp(low) {
			pol = 1
			low = toggle(low)
			high = toggle(high)
		}
	} else {
		if high == edgezero {
			return low, nil
		}
		if iscomp(low) {
			pol = 1
			low = toggle(low)
		}
	}
	res := b.lookup(level, low, high)
	if res != 0 {
		b.uniqueHit++
		return res<<1 | pol, nil
	}
	b.uniqueMiss++

	if b.autoreorder && !b.inner && b.keys-b.dead >= b.nextReorder && !b.reorderDisabled {
		return 0, errReorder
	}

	// no existing node; make sure we have a free slot before inserting.
	// While the reordering machinery runs, parts of the table are detached
	// and collecting garbage is unsafe, so we only ever grow the arena.
	if b.freepos == 0 {
		if b.inner {
			if err := b.noderesize(); err != nil {
				return 0, err
			}
		} else {
			if _, err := b.gbc(); err != nil {
				return 0, err
			}
			if (b.freenum*100)/len(b.nodes) <= b.minfreenodes {
				if err := b.noderesize(); err != nil {
					return 0, err
				}
			}
			// a collection can have revived the node we are looking for
			res = b.lookup(level, low, high)
			if res != 0 {
				return res<<1 | pol, nil
			}
		}
		if b.freepos == 0 {
			b.error = errMemory
			return 0, errMemory
		}
	}

	n := b.freepos
	b.freepos = b.nodes[n].next
	b.freenum--
	b.produced++

	b.nodes[n].varix = b.level2var[level]
	b.nodes[n].low = low
	b.nodes[n].high = high
	b.nodes[n].refcou = 0
	b.ref(low)
	b.ref(high)
	b.insert(level, n)
	b.dead++ // the new node starts dead until someone references it
	b.subtables[level].dead++

	if b.subtables[level].keys > b.subtables[level].maxkeys {
		b.resizeLevel(level)
	}
	return n<<1 | pol, nil
}

// lookup searches the unique table of a level for a node with the given
// (already normalized) slots. It returns the arena index, 0 if absent.
func (b *DD) lookup(level int32, low, high int) int {
	st := &b.subtables[level]
	n := st.buckets[b.hash(level, low, high)]
	for n != 0 {
		nd := &b.nodes[n]
		if nd.low == low {
			if nd.high == high {
				return n
			}
			if nd.high > high {
				return 0
			}
		} else if nd.low > low {
			return 0
		}
		n = nd.next
	}
	return 0
}

// insert links node n into the sorted collision chain of its bucket at the
// given level and counts the key.
func (b *DD) insert(level int32, n int) {
	st := &b.subtables[level]
	pos := b.hash(level, b.nodes[n].low, b.nodes[n].high)
	prev := 0
	cur := st.buckets[pos]
	for cur != 0 {
		cd := &b.nodes[cur]
		if cd.low > b.nodes[n].low || (cd.low == b.nodes[n].low && cd.high > b.nodes[n].high) {
			break
		}
		prev = cur
		cur = cd.next
	}
	b.nodes[n].next = cur
	if prev == 0 {
		st.buckets[pos] = n
	} else {
		b.nodes[prev].next = n
	}
	st.keys++
	b.keys++
}

// unlink removes node n from its collision chain at the given level. The
// node stays allocated; the caller decides its fate.
func (b *DD) unlink(level int32, n int) {
	st := &b.subtables[level]
	pos := b.hash(level, b.nodes[n].low, b.nodes[n].high)
	cur := st.buckets[pos]
	if cur == n {
		st.buckets[pos] = b.nodes[n].next
	} else {
		for b.nodes[cur].next != n {
			cur = b.nodes[cur].next
			if _DEBUG && cur == 0 {
				log.Panicf("unlink: node %d not found at level %d", n, level)
			}
		}
		b.nodes[cur].next = b.nodes[n].next
	}
	st.keys--
	b.keys--
}

// levelNodes collects the arena indices of every node stored at a level.
func (b *DD) levelNodes(level int32) []int {
	st := &b.subtables[level]
	res := make([]int, 0, st.keys)
	for _, head := range st.buckets {
		for n := head; n != 0; n = b.nodes[n].next {
			res = append(res, n)
		}
	}
	return res
}

// clearBuckets empties the bucket array of a level without touching the
// nodes themselves. The level's key and dead counts are zeroed; the caller
// owns the detached nodes and their bookkeeping.
func (b *DD) clearBuckets(level int32) {
	st := &b.subtables[level]
	for k := range st.buckets {
		st.buckets[k] = 0
	}
	b.keys -= st.keys
	b.dead -= st.dead
	st.keys = 0
	st.dead = 0
}

// resizeLevel grows the bucket array of a level and redistributes its
// chains.
func (b *DD) resizeLevel(level int32) {
	st := &b.subtables[level]
	nodes := b.levelNodes(level)
	nsize := primeGte(2 * len(st.buckets))
	st.buckets = make([]int, nsize)
	st.maxkeys = nsize * _SUBTABLEDENSITY
	saveKeys, saveDead := st.keys, st.dead
	st.keys = 0
	b.keys -= saveKeys
	for _, n := range nodes {
		b.insert(level, n)
	}
	if _DEBUG && st.keys != saveKeys {
		log.Panicf("resizeLevel: key count changed (%d != %d)", st.keys, saveKeys)
	}
	st.dead = saveDead
}

// rehashLevel rebuilds the bucket array of a level from an explicit node
// list, recomputing key and dead counts. Used after in-place slot rewrites
// change the hash keys of a whole level.
func (b *DD) rehashLevel(level int32, nodes []int) {
	st := &b.subtables[level]
	b.clearBuckets(level)
	dead := 0
	for _, n := range nodes {
		b.insert(level, n)
		if b.nodes[n].refcou == 0 {
			dead++
		}
	}
	st.dead = dead
	b.dead += dead
}

// noderesize doubles the arena (within the configured bounds) and chains
// the new slots into the free list.
func (b *DD) noderesize() error {
	if _LOGLEVEL > 0 {
		log.Printf("start noderesize: %d\n", len(b.nodes))
	}
	oldsize := len(b.nodes)
	nodesize := oldsize << 1
	if b.maxnodeincrease > 0 && nodesize > oldsize+b.maxnodeincrease {
		nodesize = oldsize + b.maxnodeincrease
	}
	if b.maxnodesize > 0 && nodesize > b.maxnodesize {
		nodesize = b.maxnodesize
	}
	if nodesize <= oldsize {
		b.error = errResize
		return errResize
	}
	tmp := b.nodes
	b.nodes = make([]ddnode, nodesize)
	copy(b.nodes, tmp)
	for n := oldsize; n < nodesize; n++ {
		b.nodes[n] = ddnode{refcou: 0, varix: 0, low: -1, high: 0, next: n + 1}
	}
	b.nodes[nodesize-1].next = b.freepos
	b.freepos = oldsize
	b.freenum += nodesize - oldsize
	b.cacheresize(nodesize)
	if _LOGLEVEL > 0 {
		log.Printf("end noderesize: %d\n", len(b.nodes))
	}
	return nil
}
