// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"fmt"
	"log"
	"runtime"
	"sync/atomic"
)

// subtable is the unique table of one level of the diagram. Nodes are
// hash-consed into chained buckets; chains are kept sorted by the (low,
// high) key pair so that duplicate detection can stop early. The next field
// threads the reordering group ring: it holds the level itself when the
// level is not grouped.
type subtable struct {
	buckets []int     // chain heads, indexed by the pair hash of (low, high); 0 terminates
	keys    int       // number of nodes stored at this level
	dead    int       // number of stored nodes with a zero reference count
	maxkeys int       // resize threshold for the bucket array
	exp     Expansion // current expansion type of the level
	next    int32     // next member of the reordering group, own level if ungrouped
}

// DD is a manager for one universe of BKFDD nodes. All operations mutate
// the manager in place; a manager must not be shared between goroutines
// without external serialization.
type DD struct {
	nodes         []ddnode    // arena of all nodes; the sentinel and the terminal are at 0 and 1
	freepos       int         // first free arena slot
	freenum       int         // number of free arena slots
	varnum        int32       // number of variables
	subtables     []subtable  // one unique table per level
	var2level     []int32     // variable index -> current level (varnum entries plus terminal sentinel)
	level2var     []int32     // current level -> variable index
	varset        [][2]int    // projection edges, positive and negative, per variable
	refstack      []int       // protects in-flight results from garbage collection
	extrefs       map[*int]struct{} // outstanding external handles, patched by canonicity repair
	nodefinalizer interface{} // finalizer used to release external references
	keys          int         // total number of stored nodes over all levels
	dead          int         // total number of dead stored nodes
	isolated      int         // number of isolated projection functions
	inner         bool        // set while reordering machinery runs operators internally
	reorderDisabled bool      // one-way latch tripped by exhausted reordering budgets
	swapcount     int         // swaps performed by the current reordering call
	totalswaps    int         // swaps performed over the manager lifetime
	reorderings   int         // completed reordering calls
	nextReorder   int         // live-key threshold that triggers automatic reordering
	interact      []uint64    // triangular variable interaction matrix, valid during reordering
	error                     // error status to help chain operations
	bddStats
	gcstat
	cacheStat
	applycache applycache
	itecache   itecache
	innercache applycache // private cache of the inner operators; never survives a swap or transform
	inneritecache itecache
	configs
}

// bddStats stores status information about a manager.
type bddStats struct {
	produced int // total number of new nodes ever produced
}

// ************************************************************

// New initializes a new manager with varnum variables, all levels starting
// with the classical Shannon expansion. See the configuration options for
// the available parameters.
func New(varnum int, options ...func(*configs)) (*DD, error) {
	if varnum < 1 || int32(varnum) > _MAXVAR {
		return nil, fmt.Errorf("bad number of variables (%d)", varnum)
	}
	c := makeconfigs(varnum)
	for _, f := range options {
		f(c)
	}
	b := &DD{}
	b.configs = *c
	b.varnum = int32(varnum)
	nodesize := c.nodesize
	if nodesize < 2*varnum+2 {
		nodesize = 2*varnum + 2
	}
	b.nodes = make([]ddnode, nodesize)
	for k := range b.nodes {
		b.nodes[k] = ddnode{refcou: 0, varix: 0, low: -1, high: 0, next: k + 1}
	}
	b.nodes[nodesize-1].next = 0
	// node 0 is a chain sentinel, node 1 the terminal; both are pinned
	b.nodes[0] = ddnode{refcou: _MAXREFCOUNT, varix: 0, low: 0, high: 0, next: 0}
	b.nodes[1] = ddnode{refcou: _MAXREFCOUNT, varix: int32(varnum), low: edgeone, high: edgeone, next: 0}
	b.freepos = 2
	b.freenum = nodesize - 2

	b.var2level = make([]int32, varnum+1)
	b.level2var = make([]int32, varnum+1)
	for k := 0; k <= varnum; k++ {
		b.var2level[k] = int32(k)
		b.level2var[k] = int32(k)
	}
	b.subtables = make([]subtable, varnum)
	bsize := primeGte(nodesize/(varnum*_SUBTABLEDENSITY) + 3)
	for k := range b.subtables {
		b.subtables[k] = subtable{
			buckets: make([]int, bsize),
			maxkeys: bsize * _SUBTABLEDENSITY,
			exp:     CS,
			next:    int32(k),
		}
	}

	cachesize := c.cachesize
	if cachesize <= 0 {
		cachesize = nodesize/5 + 1
	}
	b.applycache.cacheinit(cachesize)
	b.itecache.cacheinit(cachesize)
	b.innercache.cacheinit(cachesize/4 + 1)
	b.inneritecache.cacheinit(cachesize/4 + 1)
	b.applycache.cacheratio = c.cacheratio
	b.itecache.cacheratio = c.cacheratio

	b.refstack = make([]int, 0, 2*varnum+4)
	b.extrefs = make(map[*int]struct{})
	b.nodefinalizer = func(p *int) {
		if _DEBUG {
			atomic.AddUint64(&(b.gcstat.calledfinalizers), 1)
			if _LOGLEVEL > 2 {
				log.Printf("dec refcou %d\n", *p)
			}
		}
		b.deref(*p)
		delete(b.extrefs, p)
	}
	b.gcstat.history = make([]gcpoint, 0)
	b.nextReorder = 2004

	// projection functions; the stored node for variable x_k denotes its
	// negation so that the low edge stays regular
	b.varset = make([][2]int, varnum)
	for k := 0; k < varnum; k++ {
		ge, err := b.makenode(int32(k), edgeone, edgezero)
		if err != nil {
			return nil, fmt.Errorf("cannot allocate variable %d: %w", k, err)
		}
		b.ref(ge) // the manager's own reference
		b.varset[k] = [2]int{toggle(ge), ge}
	}
	b.isolated = varnum
	return b, nil
}

// ************************************************************

// Error returns the error status of the manager. We return an empty string
// if there are no errors.
func (b *DD) Error() string {
	if b.error == nil {
		return ""
	}
	return b.error.Error()
}

// Errored returns true if there was an error during a computation.
func (b *DD) Errored() bool {
	return b.error != nil
}

func (b *DD) seterror(format string, a ...interface{}) Node {
	if b.error != nil {
		format = format + "; " + b.Error()
		b.error = fmt.Errorf(format, a...)
		return nil
	}
	b.error = fmt.Errorf(format, a...)
	if _DEBUG {
		log.Println(b.error)
	}
	return nil
}

// checkptr returns an error when the handle does not point to a live node
// of this manager.
func (b *DD) checkptr(n Node) error {
	if n == nil {
		return fmt.Errorf("nil handle")
	}
	e := *n
	if e < edgeone || (e >> 1) >= len(b.nodes) {
		return fmt.Errorf("handle out of range (%d)", e)
	}
	if b.nodes[e>>1].low == -1 {
		return fmt.Errorf("handle to a freed node (%d)", e)
	}
	return nil
}

// retnode creates a Node for external use and sets a finalizer on it so
// that the reference can be reclaimed when the handle becomes unreachable.
func (b *DD) retnode(e int) Node {
	if e <= 0 || (e>>1) >= len(b.nodes) {
		if _DEBUG {
			log.Panicf("b.retnode(%d) not valid\n", e)
		}
		return nil
	}
	if e == edgeone {
		return bddone
	}
	if e == edgezero {
		return bddzero
	}
	x := e
	if b.nodes[e>>1].refcou < _MAXREFCOUNT {
		b.ref(e)
		runtime.SetFinalizer(&x, b.nodefinalizer)
		b.extrefs[&x] = struct{}{}
		if _DEBUG {
			atomic.AddUint64(&(b.gcstat.setfinalizers), 1)
			if _LOGLEVEL > 2 {
				log.Printf("inc refcou %d\n", e)
			}
		}
	}
	return &x
}

// ************************************************************

// Varnum returns the number of defined variables.
func (b *DD) Varnum() int {
	return int(b.varnum)
}

// True returns the constant true diagram.
func (b *DD) True() Node {
	return bddone
}

// False returns the constant false diagram.
func (b *DD) False() Node {
	return bddzero
}

// From returns a (constant) Node from a boolean value.
func (b *DD) From(v bool) Node {
	if v {
		return bddone
	}
	return bddzero
}

// Ithvar returns a diagram representing the i'th variable on success,
// otherwise we set the error status in the manager and return the constant
// False. The requested variable must be in the range [0..Varnum).
func (b *DD) Ithvar(i int) Node {
	if (i < 0) || (int32(i) >= b.varnum) {
		b.seterror("unknown variable used (%d) in call to Ithvar", i)
		return bddzero
	}
	return b.retnode(b.varset[i][0])
}

// NIthvar returns a diagram representing the negation of the i'th variable
// on success, otherwise the constant false. See Ithvar for further info.
func (b *DD) NIthvar(i int) Node {
	if (i < 0) || (int32(i) >= b.varnum) {
		b.seterror("unknown variable used (%d) in call to NIthvar", i)
		return bddzero
	}
	return b.retnode(b.varset[i][1])
}

// Label returns the variable (index) tied to the top vertex of n. We set
// the manager to its error state and return -1 if we try to access a
// constant node.
func (b *DD) Label(n Node) int {
	if b.checkptr(n) != nil {
		b.seterror("illegal access to node %d in call to Label", n)
		return -1
	}
	if regular(*n) == edgeone {
		b.seterror("try to access label of constant node")
		return -1
	}
	return int(b.varof(*n))
}

// Low returns the first successor of the function denoted by n, with the
// polarity of the handle pushed down: for a Shannon level this is the
// conditioned-false cofactor, for a Davio level the stored cofactor slot.
func (b *DD) Low(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("illegal access to node %d in call to Low", n)
	}
	if regular(*n) == edgeone {
		return b.seterror("try to access successor of constant node")
	}
	nd := b.node(*n)
	low := nd.low
	if iscomp(*n) {
		low = toggle(low)
	}
	return b.retnode(low)
}

// High returns the second successor of the function denoted by n, with the
// polarity of the handle pushed down: for a Shannon level this is the
// conditioned-true cofactor, for a Davio level the ring difference (on
// which the handle polarity has no effect).
func (b *DD) High(n Node) Node {
	if b.checkptr(n) != nil {
		return b.seterror("illegal access to node %d in call to High", n)
	}
	if regular(*n) == edgeone {
		return b.seterror("try to access successor of constant node")
	}
	nd := b.node(*n)
	high := nd.high
	if iscomp(*n) && b.levelexp(b.var2level[nd.varix&_MAXVAR]).Shannon() {
		high = toggle(high)
	}
	return b.retnode(high)
}

// Equal tests equivalence between nodes.
func (b *DD) Equal(low, high Node) bool {
	if low == high {
		return true
	}
	if low == nil || high == nil {
		return false
	}
	return *low == *high
}

// ExpansionAt returns the current expansion type of a level.
func (b *DD) ExpansionAt(level int) Expansion {
	if level < 0 || int32(level) >= b.varnum {
		return CS
	}
	return b.subtables[level].exp
}

// VarAtLevel returns the variable index currently occupying a level.
func (b *DD) VarAtLevel(level int) int {
	if level < 0 || int32(level) >= b.varnum {
		return -1
	}
	return int(b.level2var[level])
}

// LevelOfVar returns the current level of a variable.
func (b *DD) LevelOfVar(i int) int {
	if i < 0 || int32(i) >= b.varnum {
		return -1
	}
	return int(b.var2level[i])
}

// Size returns the number of live keys: stored nodes, dead ones excluded,
// terminal excluded. This is the metric reordering minimizes.
func (b *DD) Size() int {
	return b.keys - b.dead
}

func (b *DD) levelexp(level int32) Expansion {
	return b.subtables[level].exp
}

// varEdge returns the positive projection edge of a variable.
func (b *DD) varEdge(v int32) int {
	return b.varset[v][0]
}
