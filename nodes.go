// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

// ddnode is one vertex of the diagram. Successor references are
// polarity-tagged edges (see below). The next field is used both for
// collision chaining inside a level subtable and for threading the free
// list; a free node is recognized by low == -1.
type ddnode struct {
	refcou int32 // saturating count of referrers: parents, external handles, refstack
	varix  int32 // variable index, plus the mark bit during traversals
	low    int   // first successor edge; never complemented for a live node
	high   int   // second successor edge; cofactor (Shannon) or ring difference (Davio)
	next   int   // next index in the collision chain or free list, 0 if last
}

// ************************************************************

// Edges encode a node index together with a polarity in the least
// significant bit. Node 0 is a reserved sentinel (it terminates collision
// chains), node 1 is the unique terminal, so edge 2 is the constant True
// and edge 3 the constant False.

const edgeone int = 2
const edgezero int = 3

func toggle(e int) int { return e ^ 1 }

func regular(e int) int { return e &^ 1 }

func iscomp(e int) bool { return e&1 != 0 }

func mkedge(n int, comp bool) int {
	if comp {
		return n<<1 | 1
	}
	return n << 1
}

// ************************************************************

// Node is a reference to an element of a diagram. It represents the atomic
// unit of interactions and computations within a BKFDD.
type Node *int

// inode returns a Node for edges, such as the two constants, that do not
// need to increase their reference count.
func inode(e int) Node {
	x := e
	return &x
}

var bddone Node = inode(edgeone)

var bddzero Node = inode(edgezero)

// ************************************************************

func (b *DD) node(e int) *ddnode {
	return &b.nodes[e>>1]
}

// varof returns the variable index of the node behind e, masking out the
// mark bit. The terminal carries the pseudo-index varnum.
func (b *DD) varof(e int) int32 {
	return b.nodes[e>>1].varix & _MAXVAR
}

// levelof returns the current level of the node behind e; the terminal sits
// below every variable level.
func (b *DD) levelof(e int) int32 {
	return b.var2level[b.varof(e)]
}

func (b *DD) ismarked(n int) bool {
	return (b.nodes[n].varix & _MARKBIT) != 0
}

func (b *DD) marknode(n int) {
	b.nodes[n].varix |= _MARKBIT
}

func (b *DD) unmarknode(n int) {
	b.nodes[n].varix &^= _MARKBIT
}
