// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"fmt"
	"log"
)

// SetExpansion changes the expansion type of a level. The transform is
// function preserving: every node of the diagram keeps denoting the same
// boolean function, only the representation of the chosen level changes.
// The deepest level cannot become biconditional since it has no partner
// level below it to condition on.
func (b *DD) SetExpansion(level int, target Expansion) error {
	if b.error != nil {
		return b.error
	}
	if level < 0 || int32(level) >= b.varnum {
		b.seterror("level out of range (%d) in call to SetExpansion", level)
		return b.error
	}
	if target < CS || target > BPD {
		b.seterror("unknown expansion type (%d) in call to SetExpansion", target)
		return b.error
	}
	if target.Biconditional() && int32(level) == b.varnum-1 {
		b.seterror("the deepest level cannot use a biconditional expansion")
		return b.error
	}
	cur := b.subtables[level].exp
	if cur == target {
		return nil
	}
	if _, err := b.gbc(); err != nil {
		return err
	}
	b.inner = true
	defer func() { b.inner = false }()

	if err := b.transformLevel(int32(level), target); err != nil {
		b.seterror("transform failed at level %d: %v", level, err)
		return b.error
	}
	b.cachereset()
	b.recomputeIsolated()
	return nil
}

// transformLevel moves a level from its current expansion type to target
// through at most three primitive steps: drop the biconditional
// conditioning, change the decomposition kind, reinstate the conditioning.
func (b *DD) transformLevel(level int32, target Expansion) error {
	cur := b.subtables[level].exp
	if cur == target {
		return nil
	}
	if cur.Biconditional() && (target.Classical() || !samekind(cur, target)) {
		if err := b.recondition(level, false); err != nil {
			return err
		}
		cur = b.subtables[level].exp
	}
	if !samekind(cur, target) {
		if err := b.retype(level, target.classical()); err != nil {
			return err
		}
		cur = b.subtables[level].exp
	}
	if target.Biconditional() && cur.Classical() {
		if err := b.recondition(level, true); err != nil {
			return err
		}
	}
	// the rewrites above can orphan nodes below the level; the swap and
	// sifting engines rely on a table with no dead entries
	_, err := b.gbcFrom(level)
	return err
}

// ************************************************************

// retype changes the decomposition kind of a level between Shannon,
// negative Davio and positive Davio, keeping the conditioning classical.
// Every node of the level is rewritten in place; the slots of the new kind
// are ring combinations of the old ones, computed with the inner exclusive
// disjunction kernel.
func (b *DD) retype(level int32, to Expansion) error {
	st := &b.subtables[level]
	from := st.exp
	if _DEBUG && (from.Biconditional() || to.Biconditional()) {
		log.Panicf("retype expects classical kinds (%s to %s)", from, to)
	}
	if from == to {
		return nil
	}
	if _LOGLEVEL > 1 {
		log.Printf("retype level %d: %s to %s\n", level, from, to)
	}
	b.innerreset()
	nodes := b.levelNodes(level)
	b.clearBuckets(level)
	for _, n := range nodes {
		a, h := b.nodes[n].low, b.nodes[n].high
		var nl, nh int
		var err error
		switch {
		case from.Shannon() && to.NegDavio(), from.NegDavio() && to.Shannon():
			nl = a
			nh, err = b.xorrec(a, h)
		case from.NegDavio() && to.PosDavio(), from.PosDavio() && to.NegDavio():
			nl, err = b.xorrec(a, h)
			nh = h
		case from.Shannon() && to.PosDavio():
			nl = h
			nh, err = b.xorrec(a, h)
		default: // positive Davio to Shannon
			nl, err = b.xorrec(a, h)
			nh = a
		}
		if err != nil {
			return err
		}
		b.pushref(nl)
		b.pushref(nh)
		b.ref(nl)
		b.ref(nh)
		b.popref(2)
		b.deref(a)
		b.deref(h)
		b.nodes[n].low, b.nodes[n].high = nl, nh
	}
	st.exp = to
	b.fixFrom(level, nodes)
	return nil
}

// recondition switches a level between the classical conditioning on its
// own variable and the biconditional conditioning on the equivalence with
// the variable of the next level. The partner enters the new slots through
// its projection function; both directions use the same formulas, which
// are involutions.
func (b *DD) recondition(level int32, toBicond bool) error {
	st := &b.subtables[level]
	if toBicond == st.exp.Biconditional() {
		return nil
	}
	if _DEBUG && toBicond && level == b.varnum-1 {
		log.Panicf("no partner level below %d", level)
	}
	if _LOGLEVEL > 1 {
		log.Printf("recondition level %d (biconditional: %v)\n", level, toBicond)
	}
	b.innerreset()
	py := b.varEdge(b.level2var[level+1])
	nodes := b.levelNodes(level)
	b.clearBuckets(level)
	for _, n := range nodes {
		a, h := b.nodes[n].low, b.nodes[n].high
		var nl, nh int
		var err error
		if st.exp.Shannon() {
			nl, err = b.iterec(py, a, h)
			if err != nil {
				return err
			}
			b.pushref(nl)
			nh, err = b.iterec(py, h, a)
			if err != nil {
				b.popref(1)
				return err
			}
			b.pushref(nh)
		} else {
			// f = low xor (D and high) resp. low xor (not D and high):
			// swapping the condition for its partnered form folds
			// (not y and high) into the stored cofactor
			var m int
			m, err = b.andrec(toggle(py), h)
			if err != nil {
				return err
			}
			b.pushref(m)
			nl, err = b.xorrec(a, m)
			if err != nil {
				b.popref(1)
				return err
			}
			b.pushref(nl)
			nh = h
		}
		b.ref(nl)
		b.ref(nh)
		b.popref(2)
		b.deref(a)
		b.deref(h)
		b.nodes[n].low, b.nodes[n].high = nl, nh
	}
	if toBicond {
		st.exp = st.exp.biconditional()
	} else {
		st.exp = st.exp.classical()
	}
	b.fixFrom(level, nodes)
	return nil
}

// ************************************************************

// fixFrom restores canonical form after the nodes of a level were
// rewritten in place. The rewritten level arrives detached from its bucket
// array. Levels are repaired from the rewritten one up to the root: a node
// whose low slot came out complemented is flipped (which complements the
// function it stores), a node whose slots collapsed is retired, and the
// parents, the projection table and the outstanding external handles are
// redirected accordingly.
func (b *DD) fixFrom(level int32, nodes []int) {
	forward := make(map[int]int)
	var retired []int
	for lvl := level; lvl >= 0; lvl-- {
		if lvl != level {
			if len(forward) == 0 {
				break
			}
			nodes = b.levelNodes(lvl)
			b.clearBuckets(lvl)
		}
		st := &b.subtables[lvl]
		exp := st.exp
		for _, n := range nodes {
			nd := &b.nodes[n]
			nd.low = b.redirect(nd.low, forward)
			nd.high = b.redirect(nd.high, forward)
			flip := 0
			if iscomp(nd.low) {
				flip = 1
				nd.low = toggle(nd.low)
				if exp.Shannon() {
					nd.high = toggle(nd.high)
				}
			}
			if (exp.Shannon() && nd.low == nd.high) || (!exp.Shannon() && nd.high == edgezero) {
				forward[n] = nd.low ^ flip
				b.marknode(n)
				retired = append(retired, n)
				continue
			}
			if m := b.lookup(lvl, nd.low, nd.high); m != 0 {
				forward[n] = m<<1 | flip
				b.marknode(n)
				retired = append(retired, n)
				continue
			}
			b.insert(lvl, n)
			if nd.refcou == 0 {
				st.dead++
				b.dead++
			}
			if flip == 1 {
				forward[n] = n<<1 | 1
			}
		}
	}

	if len(forward) != 0 {
		// projection table and outstanding handles see the new edges
		for k := int32(0); k < b.varnum; k++ {
			e := b.varset[k][1]
			ne := b.redirect(e, forward)
			if ne != e {
				b.varset[k][1] = ne
				b.varset[k][0] = toggle(ne)
			}
		}
		for p := range b.extrefs {
			*p = b.redirect(*p, forward)
		}
	}
	for _, n := range retired {
		if _DEBUG && b.nodes[n].refcou != 0 {
			log.Panicf("retired node %d still referenced (%d)", n, b.nodes[n].refcou)
		}
		b.unmarknode(n)
		low, high := b.nodes[n].low, b.nodes[n].high
		b.freenode(n)
		b.deref(low)
		b.deref(high)
	}
}

// redirect rewrites an edge through the forward map of a repair pass,
// moving the reference it carries from the abandoned node to its
// replacement. Retired nodes sit outside the unique table, so their counts
// are adjusted directly.
func (b *DD) redirect(e int, forward map[int]int) int {
	f, ok := forward[e>>1]
	if !ok {
		return e
	}
	ne := f ^ (e & 1)
	if ne>>1 == e>>1 {
		// a flipped survivor: only the polarity moves
		return ne
	}
	b.ref(ne)
	b.nodes[e>>1].refcou--
	return ne
}

// ************************************************************

// Expansions returns the current expansion type of every level, from the
// root down.
func (b *DD) Expansions() []Expansion {
	res := make([]Expansion, b.varnum)
	for k := range res {
		res[k] = b.subtables[k].exp
	}
	return res
}

// expsig returns a compact summary of the current order and expansion
// assignment, used to cross check reordering passes.
func (b *DD) expsig() string {
	s := ""
	for lvl := int32(0); lvl < b.varnum; lvl++ {
		s += fmt.Sprintf("%d:%s ", b.level2var[lvl], b.subtables[lvl].exp)
	}
	return s
}
