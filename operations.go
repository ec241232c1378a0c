// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

// Operator describes the potential (binary) operations available on an
// Apply.
type Operator int

const (
	// OPand is the logical conjunction operator
	OPand Operator = iota
	// OPxor is the exclusive disjunction operator
	OPxor
	// OPor is the logical disjunction operator
	OPor
	// OPnand is the negated conjunction operator
	OPnand
	// OPnor is the negated disjunction operator
	OPnor
	// OPimp is the implication operator
	OPimp
	// OPbiimp is the equivalence operator
	OPbiimp
	// OPdiff is the set difference operator
	OPdiff
	// OPless is the set difference operator with operands reversed
	OPless
	// OPinvimp is the inverse implication operator
	OPinvimp
)

func (op Operator) String() string {
	switch op {
	case OPand:
		return "and"
	case OPxor:
		return "xor"
	case OPor:
		return "or"
	case OPnand:
		return "nand"
	case OPnor:
		return "nor"
	case OPimp:
		return "imp"
	case OPbiimp:
		return "biimp"
	case OPdiff:
		return "diff"
	case OPless:
		return "less"
	case OPinvimp:
		return "invimp"
	default:
		return "unknown"
	}
}

// ************************************************************

// curapply returns the operation cache the binary operators should use.
// The reordering machinery runs the same operators against a private cache
// that is cleared before every swap or transform step.
func (b *DD) curapply() *applycache {
	if b.inner {
		return &b.innercache
	}
	return &b.applycache
}

func (b *DD) curite() *itecache {
	if b.inner {
		return &b.inneritecache
	}
	return &b.itecache
}

// cacheable reports whether a result keyed on these operands is worth
// keeping: entries keyed on nodes referenced only once are unlikely to be
// met again and risk going stale sooner.
func (b *DD) cacheable(edges ...int) bool {
	for _, e := range edges {
		if b.nodes[e>>1].refcou > 1 {
			return true
		}
	}
	return false
}

// ************************************************************

// cof returns the two successor slots of edge e when viewed from a level
// carrying expansion exp: the conditioned cofactors at a Shannon level,
// the stored cofactor and the ring difference at a Davio level. An operand
// rooted below the level does not depend on its condition, so it splits
// into two copies of itself (a zero difference for Davio).
func (b *DD) cof(exp Expansion, e int, level, elevel int32) (int, int) {
	if elevel != level {
		if exp.Shannon() {
			return e, e
		}
		return e, edgezero
	}
	nd := b.node(e)
	if !iscomp(e) {
		return nd.low, nd.high
	}
	if exp.Shannon() {
		return toggle(nd.low), toggle(nd.high)
	}
	// on a Davio level only the stored cofactor absorbs the complement
	return toggle(nd.low), nd.high
}

// andrec is the conjunction kernel. Both Davio flavors combine the same
// way in slot space: with t0 the conjunction of the stored cofactors and
// t1 the conjunction of the other conditioned cofactors, the result stores
// t0 and the ring difference t0 xor t1.
func (b *DD) andrec(l, r int) (int, error) {
	switch {
	case l == r:
		return l, nil
	case l == edgezero || r == edgezero || l == toggle(r):
		return edgezero, nil
	case l == edgeone:
		return r, nil
	case r == edgeone:
		return l, nil
	}
	if l > r {
		l, r = r, l
	}
	cache := b.curapply()
	if res := cache.matchapply(l, r, int(OPand)); res != 0 {
		b.opHit++
		return res, nil
	}
	b.opMiss++

	ll, rl := b.levelof(l), b.levelof(r)
	level := min(ll, rl)
	exp := b.subtables[level].exp
	fl, fh := b.cof(exp, l, level, ll)
	gl, gh := b.cof(exp, r, level, rl)

	var res int
	if exp.Shannon() {
		low, err := b.andrec(fl, gl)
		if err != nil {
			return 0, err
		}
		b.pushref(low)
		high, err := b.andrec(fh, gh)
		if err != nil {
			b.popref(1)
			return 0, err
		}
		b.pushref(high)
		res, err = b.makenode(level, low, high)
		b.popref(2)
		if err != nil {
			return 0, err
		}
	} else {
		t0, err := b.andrec(fl, gl)
		if err != nil {
			return 0, err
		}
		b.pushref(t0)
		fd, err := b.xorrec(fl, fh)
		if err != nil {
			b.popref(1)
			return 0, err
		}
		b.pushref(fd)
		gd, err := b.xorrec(gl, gh)
		if err != nil {
			b.popref(2)
			return 0, err
		}
		b.pushref(gd)
		t1, err := b.andrec(fd, gd)
		if err != nil {
			b.popref(3)
			return 0, err
		}
		b.pushref(t1)
		diff, err := b.xorrec(t0, t1)
		if err != nil {
			b.popref(4)
			return 0, err
		}
		b.pushref(diff)
		res, err = b.makenode(level, t0, diff)
		b.popref(5)
		if err != nil {
			return 0, err
		}
	}
	if b.cacheable(l, r) {
		cache.setapply(l, r, int(OPand), res)
	}
	return res, nil
}

// xorrec is the exclusive disjunction kernel. Polarities commute with xor
// so they are pulled out front, which keeps the cache keyed on regular
// edges only. The recursion is slotwise for every expansion type.
func (b *DD) xorrec(l, r int) (int, error) {
	switch {
	case l == r:
		return edgezero, nil
	case l == toggle(r):
		return edgeone, nil
	case l == edgezero:
		return r, nil
	case r == edgezero:
		return l, nil
	case l == edgeone:
		return toggle(r), nil
	case r == edgeone:
		return toggle(l), nil
	}
	pol := (l & 1) ^ (r & 1)
	l, r = regular(l), regular(r)
	if l > r {
		l, r = r, l
	}
	cache := b.curapply()
	if res := cache.matchapply(l, r, int(OPxor)); res != 0 {
		b.opHit++
		return res ^ pol, nil
	}
	b.opMiss++

	ll, rl := b.levelof(l), b.levelof(r)
	level := min(ll, rl)
	exp := b.subtables[level].exp
	fl, fh := b.cof(exp, l, level, ll)
	gl, gh := b.cof(exp, r, level, rl)

	low, err := b.xorrec(fl, gl)
	if err != nil {
		return 0, err
	}
	b.pushref(low)
	high, err := b.xorrec(fh, gh)
	if err != nil {
		b.popref(1)
		return 0, err
	}
	b.pushref(high)
	res, err := b.makenode(level, low, high)
	b.popref(2)
	if err != nil {
		return 0, err
	}
	if b.cacheable(l, r) {
		cache.setapply(l, r, int(OPxor), res)
	}
	return res ^ pol, nil
}

// iterec is the if-then-else kernel. On a Shannon top level it splits
// three ways; on a Davio top level it falls back to the ring identity
// ite(f,g,h) = (f and g) xor (not f and h), whose subcalls work on the
// same operands and therefore terminate.
func (b *DD) iterec(f, g, h int) (int, error) {
	switch {
	case f == edgeone:
		return g, nil
	case f == edgezero:
		return h, nil
	case g == h:
		return g, nil
	case g == edgeone && h == edgezero:
		return f, nil
	case g == edgezero && h == edgeone:
		return toggle(f), nil
	}
	if f == g {
		g = edgeone
	} else if f == toggle(g) {
		g = edgezero
	}
	if f == h {
		h = edgezero
	} else if f == toggle(h) {
		h = edgeone
	}
	if g == edgeone && h == edgezero {
		return f, nil
	}
	cache := b.curite()
	if res := cache.matchite(f, g, h); res != 0 {
		b.opHit++
		return res, nil
	}
	b.opMiss++

	fl, gl, hl := b.levelof(f), b.levelof(g), b.levelof(h)
	level := min(fl, min(gl, hl))
	exp := b.subtables[level].exp

	var res int
	if exp.Shannon() {
		f0, f1 := b.cof(exp, f, level, fl)
		g0, g1 := b.cof(exp, g, level, gl)
		h0, h1 := b.cof(exp, h, level, hl)
		low, err := b.iterec(f0, g0, h0)
		if err != nil {
			return 0, err
		}
		b.pushref(low)
		high, err := b.iterec(f1, g1, h1)
		if err != nil {
			b.popref(1)
			return 0, err
		}
		b.pushref(high)
		res, err = b.makenode(level, low, high)
		b.popref(2)
		if err != nil {
			return 0, err
		}
	} else {
		t1, err := b.andrec(f, g)
		if err != nil {
			return 0, err
		}
		b.pushref(t1)
		t2, err := b.andrec(toggle(f), h)
		if err != nil {
			b.popref(1)
			return 0, err
		}
		b.pushref(t2)
		res, err = b.xorrec(t1, t2)
		b.popref(2)
		if err != nil {
			return 0, err
		}
	}
	if b.cacheable(f, g, h) {
		cache.setite(f, g, h, res)
	}
	return res, nil
}

// applyrec reduces every binary operator to the conjunction and exclusive
// disjunction kernels; complement edges make the negations free.
func (b *DD) applyrec(l, r int, op Operator) (int, error) {
	neg := func(res int, err error) (int, error) {
		if err != nil {
			return 0, err
		}
		return toggle(res), nil
	}
	switch op {
	case OPand:
		return b.andrec(l, r)
	case OPxor:
		return b.xorrec(l, r)
	case OPor:
		return neg(b.andrec(toggle(l), toggle(r)))
	case OPnand:
		return neg(b.andrec(l, r))
	case OPnor:
		return b.andrec(toggle(l), toggle(r))
	case OPimp:
		return neg(b.andrec(l, toggle(r)))
	case OPbiimp:
		return neg(b.xorrec(l, r))
	case OPdiff:
		return b.andrec(l, toggle(r))
	case OPless:
		return b.andrec(toggle(l), r)
	case OPinvimp:
		return neg(b.andrec(toggle(l), r))
	default:
		return 0, errOperator
	}
}

// ************************************************************

// runbinary is the shared client entry of the binary operators. When the
// kernel asks for dynamic reordering we run it and start over once; the
// operand handles are re-read because reordering can patch them.
func (b *DD) runbinary(lhs, rhs Node, op Operator) Node {
	if b.checkptr(lhs) != nil {
		return b.seterror("wrong operand in call to %s (%v)", op, lhs)
	}
	if b.checkptr(rhs) != nil {
		return b.seterror("wrong operand in call to %s (%v)", op, rhs)
	}
	for attempt := 0; ; attempt++ {
		b.initref()
		b.pushref(*lhs)
		b.pushref(*rhs)
		res, err := b.applyrec(*lhs, *rhs, op)
		b.popref(2)
		if err == nil {
			return b.retnode(res)
		}
		if err == errReorder && attempt == 0 && !b.reorderDisabled {
			if rerr := b.reorder(); rerr != nil {
				return b.seterror("reordering failed during %s: %v", op, rerr)
			}
			continue
		}
		return b.seterror("error during %s: %v", op, err)
	}
}

// Apply performs the binary operation op on nodes lhs and rhs.
func (b *DD) Apply(lhs, rhs Node, op Operator) Node {
	return b.runbinary(lhs, rhs, op)
}

// Not returns the negation of the expression corresponding to node n.
// Complement edges make this a constant time operation that allocates no
// node.
func (b *DD) Not(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong operand in call to Not (%v)", n)
	}
	return b.retnode(toggle(*n))
}

// And returns the conjunction of a sequence of nodes, the constant true
// when called without arguments.
func (b *DD) And(n ...Node) Node {
	if len(n) == 0 {
		return bddone
	}
	res := n[0]
	for _, m := range n[1:] {
		res = b.runbinary(res, m, OPand)
		if res == nil {
			return nil
		}
	}
	return res
}

// Or returns the disjunction of a sequence of nodes, the constant false
// when called without arguments.
func (b *DD) Or(n ...Node) Node {
	if len(n) == 0 {
		return bddzero
	}
	res := n[0]
	for _, m := range n[1:] {
		res = b.runbinary(res, m, OPor)
		if res == nil {
			return nil
		}
	}
	return res
}

// Xor returns the exclusive disjunction of lhs and rhs.
func (b *DD) Xor(lhs, rhs Node) Node {
	return b.runbinary(lhs, rhs, OPxor)
}

// Imp returns the implication of rhs by lhs.
func (b *DD) Imp(lhs, rhs Node) Node {
	return b.runbinary(lhs, rhs, OPimp)
}

// Equiv returns the equivalence of lhs and rhs.
func (b *DD) Equiv(lhs, rhs Node) Node {
	return b.runbinary(lhs, rhs, OPbiimp)
}

// Ite, short for if-then-else, computes a node whose value is f when n is
// true, g otherwise.
func (b *DD) Ite(n, f, g Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("wrong condition in call to Ite (%v)", n)
	}
	if b.checkptr(f) != nil {
		return b.seterror("wrong operand in call to Ite (%v)", f)
	}
	if b.checkptr(g) != nil {
		return b.seterror("wrong operand in call to Ite (%v)", g)
	}
	for attempt := 0; ; attempt++ {
		b.initref()
		b.pushref(*n)
		b.pushref(*f)
		b.pushref(*g)
		res, err := b.iterec(*n, *f, *g)
		b.popref(3)
		if err == nil {
			return b.retnode(res)
		}
		if err == errReorder && attempt == 0 && !b.reorderDisabled {
			if rerr := b.reorder(); rerr != nil {
				return b.seterror("reordering failed during ite: %v", rerr)
			}
			continue
		}
		return b.seterror("error during ite: %v", err)
	}
}

// ************************************************************

// Eval evaluates the function denoted by n against an assignment of the
// variables. The slice varval must give a value to every variable of the
// manager, indexed by variable.
func (b *DD) Eval(n Node, varval []bool) bool {
	if b.checkptr(n) != nil {
		b.seterror("wrong operand in call to Eval (%v)", n)
		return false
	}
	if len(varval) < int(b.varnum) {
		b.seterror("not enough values in call to Eval (%d given, %d needed)", len(varval), b.varnum)
		return false
	}
	return b.evalrec(*n, varval)
}

func (b *DD) evalrec(e int, varval []bool) bool {
	if e == edgeone {
		return true
	}
	if e == edgezero {
		return false
	}
	if iscomp(e) {
		return !b.evalrec(regular(e), varval)
	}
	nd := b.node(e)
	v := nd.varix & _MAXVAR
	level := b.var2level[v]
	exp := b.subtables[level].exp
	d := varval[v]
	if exp.Biconditional() {
		// conditioned on the equivalence with the next level's variable;
		// the bottom level is always classical so level+1 is in range
		d = varval[v] == varval[b.level2var[level+1]]
	}
	switch {
	case exp.Shannon():
		if d {
			return b.evalrec(nd.high, varval)
		}
		return b.evalrec(nd.low, varval)
	case exp.NegDavio():
		return b.evalrec(nd.low, varval) != (d && b.evalrec(nd.high, varval))
	default: // positive Davio
		return b.evalrec(nd.low, varval) != (!d && b.evalrec(nd.high, varval))
	}
}
