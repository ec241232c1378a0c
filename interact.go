// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

// The interaction matrix records, for every pair of variables, whether
// some externally referenced function depends on both. Two variables that
// never interact can exchange their levels without rebuilding any node,
// which short-circuits most of the work of a sifting pass. The matrix is a
// hint: it is computed against the external handles when reordering
// starts and is dropped when it ends.

// initInteract builds the interaction matrix from the supports of the
// externally referenced nodes and of the projection functions.
func (b *DD) initInteract() {
	n := int(b.varnum)
	b.interact = make([]uint64, (n*n+63)/64)
	support := make([]bool, n)
	for p := range b.extrefs {
		b.markSupport(*p, support)
		b.unmarkAll(*p)
		b.interactPairs(support)
	}
	// a projection function only involves its own variable; nothing to add
}

func (b *DD) dropInteract() {
	b.interact = nil
}

// interacts reports whether two variables may interact. Without a matrix
// we conservatively assume they do.
func (b *DD) interacts(u, v int32) bool {
	if b.interact == nil {
		return true
	}
	if u > v {
		u, v = v, u
	}
	bit := int(u)*int(b.varnum) + int(v)
	return b.interact[bit/64]&(1<<(bit%64)) != 0
}

func (b *DD) setInteract(u, v int32) {
	if u > v {
		u, v = v, u
	}
	bit := int(u)*int(b.varnum) + int(v)
	b.interact[bit/64] |= 1 << (bit % 64)
}

// markSupport collects the variables the function under e depends on. A
// biconditional level conditions on the next level's variable as well, so
// both enter the support.
func (b *DD) markSupport(e int, support []bool) {
	n := e >> 1
	if n <= 1 || b.ismarked(n) {
		return
	}
	b.marknode(n)
	v := b.nodes[n].varix & _MAXVAR
	support[v] = true
	lvl := b.var2level[v]
	if b.subtables[lvl].exp.Biconditional() {
		support[b.level2var[lvl+1]] = true
	}
	b.markSupport(b.nodes[n].low, support)
	b.markSupport(b.nodes[n].high, support)
}

func (b *DD) unmarkAll(e int) {
	n := e >> 1
	if n <= 1 || !b.ismarked(n) {
		return
	}
	b.unmarknode(n)
	b.unmarkAll(b.nodes[n].low)
	b.unmarkAll(b.nodes[n].high)
}

// interactPairs sets the matrix bits for every pair of the given support
// and clears the scratch state for the next root.
func (b *DD) interactPairs(support []bool) {
	for u := 0; u < len(support); u++ {
		if !support[u] {
			continue
		}
		for v := u + 1; v < len(support); v++ {
			if support[v] {
				b.setInteract(int32(u), int32(v))
			}
		}
	}
	for k := range support {
		support[k] = false
	}
}
