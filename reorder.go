// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"log"
	"sort"
	"time"
)

// The reordering engine minimizes the number of live keys by sifting:
// moving one variable (or one group of adjacent levels) through every
// position one adjacent swap at a time, measuring the size after each
// move, and rolling back to the best position seen. The OET strategy
// additionally tries alternative expansion types for the sifted level; the
// group strategies move biconditional pairs as atomic units and can merge
// neighboring levels on a structural affinity or symmetry predicate.
//
// Budgets (swap count, wall clock, cancellation) are checked once per
// sifted variable, never in the middle of a swap. Exhausting one trips a
// one-way latch that disables automatic reordering for the rest of the
// session.

// siftBudget reports whether the current reordering call may keep going.
func (b *DD) siftBudget(deadline time.Time) bool {
	if b.maxswaps > 0 && b.swapcount >= b.maxswaps {
		b.reorderDisabled = true
		return false
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		b.reorderDisabled = true
		return false
	}
	if b.cancel != nil && b.cancel() {
		b.reorderDisabled = true
		return false
	}
	return true
}

// reorder is the automatic reordering hook, fired through errReorder when
// the table outgrows the current threshold during an operation.
func (b *DD) reorder() error {
	if b.reorderDisabled {
		return nil
	}
	b.reorderings++
	if err := b.SiftOET(); err != nil {
		return err
	}
	size := b.keys - b.dead
	for b.nextReorder <= 2*size {
		b.nextReorder *= 2
	}
	return nil
}

// declassifyAround moves to classical conditioning every level whose
// conditioning the swap of levels l and l+1 would break: the two levels
// themselves and a biconditional level just above.
func (b *DD) declassifyAround(l int32) error {
	for _, m := range [3]int32{l - 1, l, l + 1} {
		if m >= 0 && m < b.varnum && b.subtables[m].exp.Biconditional() {
			if err := b.recondition(m, false); err != nil {
				return err
			}
		}
	}
	return nil
}

// varsByKeys returns the variables sorted by decreasing number of nodes at
// their current level, the classic sifting order.
func (b *DD) varsByKeys() []int32 {
	vars := make([]int32, b.varnum)
	for k := range vars {
		vars[k] = int32(k)
	}
	sort.SliceStable(vars, func(i, j int) bool {
		return b.subtables[b.var2level[vars[i]]].keys > b.subtables[b.var2level[vars[j]]].keys
	})
	return vars
}

// checkOrderExpansions verifies the structural invariants of the order and
// expansion assignment after a pass: the bottom level is classical and
// every biconditional level has a level below to pair with.
func (b *DD) checkOrderExpansions() bool {
	if b.subtables[b.varnum-1].exp.Biconditional() {
		return false
	}
	for lvl := int32(0); lvl < b.varnum; lvl++ {
		if e := b.subtables[lvl].exp; e < CS || e > BPD {
			return false
		}
	}
	return true
}

// ************************************************************

// SiftOET runs one sifting pass that optimizes both the variable order and
// the expansion types. Each variable, taken by decreasing node count, is
// moved to the top and then to the bottom of the order one swap at a time;
// at the bottom of its run the pass additionally tries the expansion types
// among classical/biconditional Shannon and negative Davio that are
// reachable there. The best combination of position and type seen is
// restored before moving on. Ties prefer the position closest to where the
// variable started.
//
// This strategy deliberately uses naive swaps, without the interaction
// matrix short-circuit: expansion changes invalidate the supports the
// matrix was computed from.
func (b *DD) SiftOET() error {
	if b.error != nil {
		return b.error
	}
	if _, err := b.gbc(); err != nil {
		return err
	}
	b.inner = true
	defer func() { b.inner = false }()
	b.swapcount = 0
	var deadline time.Time
	if b.timelimit > 0 {
		deadline = time.Now().Add(b.timelimit)
	}
	before := b.keys - b.dead

	for _, u := range b.varsByKeys() {
		if !b.siftBudget(deadline) {
			break
		}
		if err := b.siftOneOET(u); err != nil {
			b.seterror("sifting failed on variable %d: %v", u, err)
			return b.error
		}
	}
	// the bottom level can never stay biconditional
	if e := b.subtables[b.varnum-1].exp; e.Biconditional() {
		if err := b.transformLevel(b.varnum-1, e.classical()); err != nil {
			b.seterror("cannot restore a classical bottom level: %v", err)
			return b.error
		}
	}
	b.inner = false
	if _, err := b.gbc(); err != nil {
		return err
	}
	b.recomputeIsolated()
	if !b.checkOrderExpansions() {
		b.seterror("inconsistent expansion assignment after sifting")
		return b.error
	}
	if _LOGLEVEL > 0 {
		log.Printf("sifting: %d keys to %d (%d swaps), order %s\n", before, b.keys-b.dead, b.swapcount, b.expsig())
	}
	return nil
}

// siftOneOET oscillates a single variable between the top and the bottom
// of the order, with expansion trials at the bottom of its downward run.
func (b *DD) siftOneOET(u int32) error {
	if err := b.declassifyAround(b.var2level[u]); err != nil {
		return err
	}
	start := b.var2level[u]
	best := b.keys - b.dead
	bestpos := start
	bestexp := Expansion(-1)
	trialpos := int32(-1)
	travel := b.subtables[start].exp

	record := func(size int) {
		pos := b.var2level[u]
		if size < best || (size == best && absdist(pos, start) < absdist(bestpos, start)) {
			best, bestpos, bestexp = size, pos, -1
		}
	}

	// up to the top
	for b.var2level[u] > 0 {
		l := b.var2level[u] - 1
		if err := b.declassifyAround(l); err != nil {
			return err
		}
		size, err := b.swap(l)
		if err != nil {
			return err
		}
		record(size)
		if float64(size) > float64(best)*b.maxgrowth {
			break
		}
	}
	// down to the bottom
	for b.var2level[u] < b.varnum-1 {
		l := b.var2level[u]
		if err := b.declassifyAround(l); err != nil {
			return err
		}
		size, err := b.swap(l)
		if err != nil {
			return err
		}
		record(size)
		if float64(size) > float64(best)*b.maxgrowth {
			break
		}
	}

	// expansion trials where the downward run ended
	l := b.var2level[u]
	cur := travel
	for _, t := range [4]Expansion{CS, CND, BS, BND} {
		if t == cur || (t.Biconditional() && l >= b.varnum-1) {
			continue
		}
		if err := b.transformLevel(l, t); err != nil {
			return err
		}
		cur = t
		if size := b.keys - b.dead; float64(size) <= float64(best)*b.expratio {
			best, bestpos, bestexp, trialpos = size, l, t, l
		}
	}
	if cur != travel {
		if err := b.transformLevel(l, travel); err != nil {
			return err
		}
	}

	// back to the best position seen
	for b.var2level[u] > bestpos {
		if _, err := b.swap(b.var2level[u] - 1); err != nil {
			return err
		}
	}
	for b.var2level[u] < bestpos {
		if _, err := b.swap(b.var2level[u]); err != nil {
			return err
		}
	}
	if bestexp >= CS && bestpos == trialpos {
		if err := b.transformLevel(bestpos, bestexp); err != nil {
			return err
		}
	}
	if _DEBUG && b.keys-b.dead > best {
		log.Printf("sift of variable %d missed its best size (%d > %d)\n", u, b.keys-b.dead, best)
	}
	return nil
}

func absdist(a, c int32) int32 {
	if a > c {
		return a - c
	}
	return c - a
}

// ************************************************************

// SiftGroups runs one group sifting pass, optimizing the variable order
// only. Contiguous biconditional runs move as atomic blocks so that their
// pairing survives the pass; neighboring singleton levels whose structure
// suggests strong coupling are merged into transient groups for the
// duration of one variable's turn.
func (b *DD) SiftGroups() error {
	return b.groupsift(b.affine)
}

// SiftSymmetry runs one group sifting pass that merges neighboring levels
// when they test as a symmetric pair, keeping symmetric variables adjacent
// while they move.
func (b *DD) SiftSymmetry() error {
	return b.groupsift(b.symmetric)
}

func (b *DD) groupsift(pred func(int32) bool) error {
	if b.error != nil {
		return b.error
	}
	if _, err := b.gbc(); err != nil {
		return err
	}
	b.inner = true
	defer func() { b.inner = false }()
	b.swapcount = 0
	var deadline time.Time
	if b.timelimit > 0 {
		deadline = time.Now().Add(b.timelimit)
	}
	before := b.keys - b.dead
	b.initInteract()
	defer b.dropInteract()

	// remember the biconditional structure, then work classically: every
	// swap primitive needs classical conditioning, and the pairing is
	// restored at the end from the remembered partners
	pairs := make(map[int32]int32)
	kinds := make(map[int32]Expansion)
	for lvl := int32(0); lvl < b.varnum; lvl++ {
		if e := b.subtables[lvl].exp; e.Biconditional() {
			u := b.level2var[lvl]
			pairs[u] = b.level2var[lvl+1]
			kinds[u] = e
			if err := b.recondition(lvl, false); err != nil {
				b.seterror("group sifting failed: %v", err)
				return b.error
			}
		}
	}
	b.relinkPersistent(pairs)

	done := make([]bool, b.varnum)
	for _, u := range b.varsByKeys() {
		if done[u] {
			continue
		}
		if !b.siftBudget(deadline) {
			break
		}
		lo, hi := b.groupOf(b.var2level[u])
		lo, hi = b.mergeNeighbors(lo, hi, pred)
		lo, hi, err := b.siftBlock(lo, hi)
		if err != nil {
			b.seterror("group sifting failed on variable %d: %v", u, err)
			return b.error
		}
		for l := lo; l <= hi; l++ {
			done[b.level2var[l]] = true
		}
		// transient merge groups do not outlive the turn; the remembered
		// pairs are relinked as they stand now
		b.relinkPersistent(pairs)
	}

	// reinstate the biconditional levels; the pairing must have survived
	// the pass exactly
	regression := false
	for u, e := range kinds {
		l := b.var2level[u]
		if l >= b.varnum-1 || b.level2var[l+1] != pairs[u] {
			regression = true
			continue
		}
		if err := b.transformLevel(l, e); err != nil {
			b.seterror("group sifting failed to restore level %d: %v", l, err)
			return b.error
		}
	}
	b.clearGroups()
	b.inner = false
	if _, err := b.gbc(); err != nil {
		return err
	}
	b.recomputeIsolated()
	if regression {
		b.seterror("group sifting broke a biconditional pairing")
		return b.error
	}
	if _LOGLEVEL > 0 {
		log.Printf("group sifting: %d keys to %d (%d swaps)\n", before, b.keys-b.dead, b.swapcount)
	}
	return nil
}

// mergeNeighbors greedily extends a block over adjacent singleton levels
// accepted by the merge predicate.
func (b *DD) mergeNeighbors(lo, hi int32, pred func(int32) bool) (int32, int32) {
	if pred == nil {
		return lo, hi
	}
	for hi < b.varnum-1 && b.singleton(hi+1) && pred(hi) {
		hi++
		b.linkGroup(lo, hi)
	}
	for lo > 0 && b.singleton(lo-1) && pred(lo-1) {
		lo--
		b.linkGroup(lo, hi)
	}
	return lo, hi
}

// siftBlock oscillates a block of adjacent levels through the order and
// rolls it back to the best position seen. Neighboring blocks are jumped
// over as wholes so that their own internal order is preserved.
func (b *DD) siftBlock(lo, hi int32) (int32, int32, error) {
	best := b.keys - b.dead
	bestlo := lo
	start := lo
	nmoves := 0

	// up to the top
	for lo > 0 {
		var err error
		lo, hi, err = b.moveBlockUp(lo, hi)
		if err != nil {
			return lo, hi, err
		}
		nmoves++
		size := b.keys - b.dead
		if size < best || (size == best && absdist(lo, start) < absdist(bestlo, start)) {
			best, bestlo = size, lo
		}
		if float64(size) > float64(best)*b.maxgrowth {
			break
		}
	}
	// down to the bottom
	for hi < b.varnum-1 {
		var err error
		lo, hi, err = b.moveBlockDown(lo, hi)
		if err != nil {
			return lo, hi, err
		}
		nmoves++
		size := b.keys - b.dead
		if size < best || (size == best && absdist(lo, start) < absdist(bestlo, start)) {
			best, bestlo = size, lo
		}
		if float64(size) > float64(best)*b.maxgrowth {
			break
		}
	}
	// back to the best position
	for lo > bestlo {
		var err error
		lo, hi, err = b.moveBlockUp(lo, hi)
		if err != nil {
			return lo, hi, err
		}
	}
	for lo < bestlo {
		var err error
		lo, hi, err = b.moveBlockDown(lo, hi)
		if err != nil {
			return lo, hi, err
		}
	}
	if _DEBUG && b.keys-b.dead > best {
		log.Printf("block sift missed its best size (%d > %d, %d moves)\n", b.keys-b.dead, best, nmoves)
	}
	return lo, hi, nil
}

// moveBlockUp exchanges the block with the whole neighboring block above
// it. Every member of the neighbor bubbles down through the block, one
// adjacent swap at a time, deepest member first, which preserves the
// internal order of both blocks.
func (b *DD) moveBlockUp(lo, hi int32) (int32, int32, error) {
	nlo, nhi := b.groupOf(lo - 1)
	k := nhi - nlo + 1
	for n := int32(0); n < k; n++ {
		for l := lo - 1; l < hi; l++ {
			if _, err := b.swap(l); err != nil {
				return lo, hi, err
			}
		}
		lo--
		hi--
	}
	b.linkGroup(lo, hi)
	b.linkGroup(hi+1, hi+k)
	return lo, hi, nil
}

// moveBlockDown is the downward counterpart of moveBlockUp: every member
// of the neighboring block below bubbles up through the block, topmost
// member first.
func (b *DD) moveBlockDown(lo, hi int32) (int32, int32, error) {
	nlo, nhi := b.groupOf(hi + 1)
	k := nhi - nlo + 1
	for n := int32(0); n < k; n++ {
		for l := hi; l >= lo; l-- {
			if _, err := b.swap(l); err != nil {
				return lo, hi, err
			}
		}
		lo++
		hi++
	}
	b.linkGroup(lo, hi)
	b.linkGroup(lo-k, lo-1)
	return lo, hi, nil
}

// ************************************************************

// The group rings: subtables[l].next holds the next level of l's group,
// and l itself when the level is ungrouped.

func (b *DD) singleton(l int32) bool {
	return b.subtables[l].next == l
}

func (b *DD) groupOf(l int32) (int32, int32) {
	lo, hi := l, l
	for m := b.subtables[l].next; m != l; m = b.subtables[m].next {
		if m < lo {
			lo = m
		}
		if m > hi {
			hi = m
		}
	}
	return lo, hi
}

func (b *DD) linkGroup(lo, hi int32) {
	for l := lo; l < hi; l++ {
		b.subtables[l].next = l + 1
	}
	b.subtables[hi].next = lo
}

func (b *DD) clearGroups() {
	for l := range b.subtables {
		b.subtables[l].next = int32(l)
	}
}

// relinkPersistent resets every group ring, then links back the maximal
// runs of remembered biconditional partners, wherever their variables sit
// now.
func (b *DD) relinkPersistent(pairs map[int32]int32) {
	b.clearGroups()
	lvl := int32(0)
	for lvl < b.varnum-1 {
		end := lvl
		for end < b.varnum-1 {
			p, ok := pairs[b.level2var[end]]
			if !ok || p != b.level2var[end+1] {
				break
			}
			end++
		}
		if end > lvl {
			b.linkGroup(lvl, end)
		}
		lvl = end + 1
	}
}
