// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

// Merge predicates for the group sifting strategies. Both inspect the
// table without allocating nodes, so they can run between swaps without
// disturbing the reordering bookkeeping. They are hints: merging two
// levels that the predicate over-approximates only costs sifting quality,
// never correctness.

// affine reports whether levels x and x+1 look strongly coupled: the two
// variables interact and at least half of the upper level's nodes have a
// successor on the lower one. Strongly coupled levels tend to move well
// together.
func (b *DD) affine(x int32) bool {
	u, v := b.level2var[x], b.level2var[x+1]
	if !b.interacts(u, v) {
		return false
	}
	st := &b.subtables[x]
	if st.keys == 0 {
		return false
	}
	coupled := 0
	for _, head := range st.buckets {
		for n := head; n != 0; n = b.nodes[n].next {
			if b.levelof(b.nodes[n].low) == x+1 || b.levelof(b.nodes[n].high) == x+1 {
				coupled++
			}
		}
	}
	return 2*coupled >= st.keys
}

// symmetric reports whether the variables at levels x and x+1 test as a
// symmetric pair: exchanging them leaves every function rooted at the
// upper level unchanged, which holds exactly when the two mixed
// grandcofactors agree on every upper node. Cofactors of Davio levels need
// an exclusive disjunction; when it cannot be resolved by inspection the
// test gives up on the pair.
func (b *DD) symmetric(x int32) bool {
	u, v := b.level2var[x], b.level2var[x+1]
	if !b.interacts(u, v) {
		// non-interacting variables are trivially symmetric
		return true
	}
	y := x + 1
	ex, ey := b.subtables[x].exp, b.subtables[y].exp
	for _, head := range b.subtables[x].buckets {
		for n := head; n != 0; n = b.nodes[n].next {
			if b.isproj(n) {
				// the projection of the upper variable maps to the
				// projection of the lower one under an exchange
				continue
			}
			f0, f1, ok := b.probeCof(mkedge(n, false), x, ex)
			if !ok {
				return false
			}
			_, f01, ok := b.probeCof(f0, y, ey)
			if !ok {
				return false
			}
			f10, _, ok := b.probeCof(f1, y, ey)
			if !ok {
				return false
			}
			if f01 != f10 {
				return false
			}
		}
	}
	return true
}

// probeCof is the lookup-only counterpart of kindcof: it returns the true
// conditioned cofactors of e against the variable of a classical level, or
// ok == false when they would take an allocation to build.
func (b *DD) probeCof(e int, lvl int32, exp Expansion) (int, int, bool) {
	if b.levelof(e) != lvl {
		return e, e, true
	}
	nd := b.node(e)
	a, h := nd.low, nd.high
	if iscomp(e) {
		if exp.Shannon() {
			a, h = toggle(a), toggle(h)
		} else {
			a = toggle(a)
		}
	}
	switch {
	case exp.Shannon():
		return a, h, true
	case exp.NegDavio():
		x, ok := xorProbe(a, h)
		return a, x, ok
	default:
		x, ok := xorProbe(a, h)
		return x, a, ok
	}
}

// xorProbe resolves an exclusive disjunction by inspection alone, without
// touching the table or the caches.
func xorProbe(l, r int) (int, bool) {
	switch {
	case l == r:
		return edgezero, true
	case l == toggle(r):
		return edgeone, true
	case l == edgezero:
		return r, true
	case r == edgezero:
		return l, true
	case l == edgeone:
		return toggle(r), true
	case r == edgeone:
		return toggle(l), true
	}
	return 0, false
}

// ************************************************************

// DetectReductions probes the diagram for chain patterns that a
// chain-reduction rule could exploit, without modifying anything. A node
// matches when its decomposition degenerates to a single literal step: a
// Shannon node with a constant high successor, or a Davio node whose
// difference successor is the constant one. The first count is the number
// of matching nodes; the second counts those whose low successor sits on
// the very next level and matches too, forming a chain of length at least
// two that a reduction rule could collapse into one edge.
func (b *DD) DetectReductions() (int, int) {
	detected, reducible := 0, 0
	for lvl := int32(0); lvl < b.varnum; lvl++ {
		for _, head := range b.subtables[lvl].buckets {
			for n := head; n != 0; n = b.nodes[n].next {
				if b.nodes[n].refcou == 0 {
					continue
				}
				if !b.chainpattern(lvl, n) {
					continue
				}
				detected++
				low := b.nodes[n].low
				if lvl+1 < b.varnum && b.levelof(low) == lvl+1 && b.chainpattern(lvl+1, low>>1) {
					reducible++
				}
			}
		}
	}
	return detected, reducible
}

func (b *DD) chainpattern(lvl int32, n int) bool {
	if b.subtables[lvl].exp.Shannon() {
		return regular(b.nodes[n].high) == regular(edgeone)
	}
	return b.nodes[n].high == edgeone
}
