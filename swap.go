// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"log"
)

// Swap exchanges two adjacent levels of the diagram, the one given and the
// one below it. The denoted functions are preserved. Levels whose
// conditioning would break, the two swapped ones and a biconditional level
// just above, are first moved to their classical conditioning.
func (b *DD) Swap(level int) error {
	if b.error != nil {
		return b.error
	}
	if level < 0 || int32(level) >= b.varnum-1 {
		b.seterror("level out of range (%d) in call to Swap", level)
		return b.error
	}
	if _, err := b.gbc(); err != nil {
		return err
	}
	b.inner = true
	defer func() { b.inner = false }()

	x := int32(level)
	for _, lvl := range []int32{x - 1, x, x + 1} {
		if lvl >= 0 && b.subtables[lvl].exp.Biconditional() {
			if err := b.recondition(lvl, false); err != nil {
				b.seterror("swap failed at level %d: %v", level, err)
				return b.error
			}
		}
	}
	if _, err := b.swap(x); err != nil {
		b.seterror("swap failed at level %d: %v", level, err)
		return b.error
	}
	b.cachereset()
	b.recomputeIsolated()
	return nil
}

// ************************************************************

// swap exchanges levels x and x+1. Both levels and the one above must use
// a classical conditioning; the decomposition kinds are arbitrary and
// travel with their variables. Returns the number of live keys after the
// exchange.
//
// Nodes of the upper level that do not depend on the lower variable simply
// move down with their variable. A node f that depends on both is
// re-expressed in place over the lower variable, with its new successors
// taken from (or added to) the table the upper variable is moving to; the
// arena slot of f does not change, so no parent needs rewriting. The new
// low slot of f is provably regular, hence no polarity repair is needed
// after a swap.
func (b *DD) swap(x int32) (int, error) {
	y := x + 1
	u, v := b.level2var[x], b.level2var[y]
	if _DEBUG {
		if b.subtables[x].exp.Biconditional() || b.subtables[y].exp.Biconditional() {
			log.Panicf("swap of a biconditional level (%d)", x)
		}
		if x > 0 && b.subtables[x-1].exp.Biconditional() {
			log.Panicf("swap under a biconditional level (%d)", x-1)
		}
	}
	b.innerreset()
	b.swapcount++
	b.totalswaps++

	if b.interact != nil && !b.interacts(u, v) {
		b.exchange(x, y, u, v)
		return b.keys - b.dead, nil
	}

	eu := b.subtables[x].exp
	ev := b.subtables[y].exp
	xnodes := b.levelNodes(x)
	b.clearBuckets(x)

	deps := xnodes[:0]
	for _, n := range xnodes {
		if b.levelof(b.nodes[n].low) == y || b.levelof(b.nodes[n].high) == y {
			deps = append(deps, n)
			continue
		}
		// independent of v: the node moves down with its variable
		b.insert(x, n)
		if b.nodes[n].refcou == 0 {
			b.subtables[x].dead++
			b.dead++
		}
	}

	for _, f := range deps {
		// cofactors of f against both variables
		f0, f1, err := b.kindcof(mkedge(f, false), x, eu)
		if err != nil {
			return 0, err
		}
		f00, f01, err := b.kindcof(f0, y, ev)
		if err != nil {
			return 0, err
		}
		f10, f11, err := b.kindcof(f1, y, ev)
		if err != nil {
			return 0, err
		}
		// the slices of f against the lower variable, rebuilt over the
		// upper one
		var nl, nh int
		if ev.Shannon() {
			nl, err = b.swapnode(x, u, eu, f00, f10)
			if err != nil {
				return 0, err
			}
			nh, err = b.swapnode(x, u, eu, f01, f11)
			if err != nil {
				return 0, err
			}
		} else {
			// the ring difference of the slices, with its own cofactors
			// computed below both levels
			d0, err := b.xorrec(f00, f01)
			if err != nil {
				return 0, err
			}
			d1, err := b.xorrec(f10, f11)
			if err != nil {
				return 0, err
			}
			nh, err = b.swapnode(x, u, eu, d0, d1)
			if err != nil {
				return 0, err
			}
			if ev.NegDavio() {
				nl, err = b.swapnode(x, u, eu, f00, f10)
			} else {
				nl, err = b.swapnode(x, u, eu, f01, f11)
			}
			if err != nil {
				return 0, err
			}
		}
		if _DEBUG && iscomp(nl) {
			log.Panicf("complemented low slot out of a swap (level %d)", x)
		}
		old0, old1 := b.nodes[f].low, b.nodes[f].high
		b.ref(nl)
		b.ref(nh)
		b.nodes[f].low, b.nodes[f].high = nl, nh
		b.nodes[f].varix = v
		b.deref(old0)
		b.deref(old1)
		b.insert(y, f)
		if b.nodes[f].refcou == 0 {
			b.subtables[y].dead++
			b.dead++
		}
	}

	b.exchange(x, y, u, v)

	// reclaim everything orphaned by the rewrites: lower-level nodes that
	// only served the rewritten ones, old successors further down, and
	// unused intermediates of the slot computations
	b.sweepDead(x)
	return b.keys - b.dead, nil
}

// exchange swaps the physical subtables of two adjacent levels and updates
// the order maps. The reordering group links stay with their levels.
func (b *DD) exchange(x, y, u, v int32) {
	nx, ny := b.subtables[x].next, b.subtables[y].next
	b.subtables[x], b.subtables[y] = b.subtables[y], b.subtables[x]
	b.subtables[x].next, b.subtables[y].next = nx, ny
	b.var2level[u], b.var2level[v] = y, x
	b.level2var[x], b.level2var[y] = v, u
}

// kindcof returns the true conditioned cofactors of e against the variable
// of a classical level: undoing the ring encoding of a Davio level takes
// an exclusive disjunction of the slots.
func (b *DD) kindcof(e int, lvl int32, exp Expansion) (int, int, error) {
	if b.levelof(e) != lvl {
		return e, e, nil
	}
	nd := b.node(e)
	a, h := nd.low, nd.high
	if iscomp(e) {
		a = toggle(a)
		if exp.Shannon() {
			h = toggle(h)
		}
	}
	switch {
	case exp.Shannon():
		return a, h, nil
	case exp.NegDavio():
		x, err := b.xorrec(a, h)
		return a, x, err
	default:
		x, err := b.xorrec(a, h)
		return x, a, err
	}
}

// swapnode finds or creates a node over variable varix in the subtable at
// physical position level, encoding the given true cofactors under exp.
// This is the makenode of the swap engine: the order maps are inconsistent
// while a swap is in flight, so the target table is addressed explicitly.
func (b *DD) swapnode(level, varix int32, exp Expansion, f0, f1 int) (int, error) {
	var low, high int
	var err error
	switch {
	case exp.Shannon():
		low, high = f0, f1
	case exp.NegDavio():
		low = f0
		high, err = b.xorrec(f0, f1)
	default:
		low = f1
		high, err = b.xorrec(f0, f1)
	}
	if err != nil {
		return 0, err
	}
	b.uniqueAccess++
	pol := 0
	if exp.Shannon() {
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
	if res := b.lookup(level, low, high); res != 0 {
		b.uniqueHit++
		return res<<1 | pol, nil
	}
	b.uniqueMiss++
	if b.freepos == 0 {
		if err := b.noderesize(); err != nil {
			return 0, err
		}
	}
	n := b.freepos
	b.freepos = b.nodes[n].next
	b.freenum--
	b.produced++
	b.nodes[n].varix = varix
	b.nodes[n].low = low
	b.nodes[n].high = high
	b.nodes[n].refcou = 0
	b.ref(low)
	b.ref(high)
	b.insert(level, n)
	b.subtables[level].dead++
	b.dead++
	return n << 1 | pol, nil
}
