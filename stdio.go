// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

import (
	"fmt"
)

// stats returns information about the node table.
func (b *DD) stats() string {
	res := fmt.Sprintf("Varnum:     %d\n", b.varnum)
	res += fmt.Sprintf("Allocated:  %d\n", len(b.nodes))
	res += fmt.Sprintf("Produced:   %d\n", b.produced)
	r := (float64(b.freenum) / float64(len(b.nodes))) * 100
	res += fmt.Sprintf("Free:       %d  (%.3g %%)\n", b.freenum, r)
	res += fmt.Sprintf("Used:       %d  (%.3g %%)\n", len(b.nodes)-b.freenum, (100.0 - r))
	res += fmt.Sprintf("Keys:       %d  (%d dead)\n", b.keys, b.dead)
	res += fmt.Sprintf("Swaps:      %d\n", b.totalswaps)
	res += fmt.Sprintf("Reorder:    %d", b.reorderings)
	return res
}

func (b *DD) gcstats() string {
	res := fmt.Sprintf("# of GC:    %d\n", len(b.gcstat.history))
	allocated := int(b.gcstat.setfinalizers)
	reclaimed := int(b.gcstat.calledfinalizers)
	for _, g := range b.gcstat.history {
		allocated += g.setfinalizers
		reclaimed += g.calledfinalizers
	}
	res += fmt.Sprintf("Ext. refs:  %d\n", allocated)
	res += fmt.Sprintf("Reclaimed:  %d", reclaimed)
	return res
}

// Stats returns a textual representation of the manager statistics: node
// table occupancy, garbage collections, swaps and reorderings, and the
// expansion type of every level.
func (b *DD) Stats() string {
	res := b.stats() + "\n==============\n" + b.gcstats() + "\n==============\n"
	for lvl := int32(0); lvl < b.varnum; lvl++ {
		res += fmt.Sprintf("level %d: var %d %s (%d keys)\n", lvl,
			b.level2var[lvl], b.subtables[lvl].exp, b.subtables[lvl].keys)
	}
	return res
}

// PrintStats outputs the manager statistics on the standard output.
func (b *DD) PrintStats() {
	fmt.Println("==============")
	fmt.Println(b.Stats())
	if _DEBUG {
		fmt.Println("==============")
		fmt.Println(b.cacheStat)
		b.logTable()
	}
	fmt.Println("==============")
}

// ************************************************************

// Allnodes applies function f over all the nodes accessible from the nodes
// in the sequence n..., or over all the stored nodes if n is absent. The
// parameters to f are the arena id and level of each visited node together
// with its two successor edges; an edge is the id of the successor node
// shifted left once, with the lowest bit carrying the complement mark. The
// constant node has always the id 1.
//
// The order in which nodes are visited is not specified. We stop the
// computation and return an error if f returns an error at some point.
func (b *DD) Allnodes(f func(id, level int, low, high int) error, n ...Node) error {
	for _, v := range n {
		if b.checkptr(v) != nil {
			return fmt.Errorf("wrong node in call to Allnodes (%d)", *v)
		}
	}
	// f cannot create new nodes, so there is no resizing to take care of
	if len(n) == 0 {
		return b.allnodes(f)
	}
	return b.allnodesfrom(f, n)
}

func (b *DD) allnodes(f func(id, level int, low, high int) error) error {
	if err := f(1, int(b.varnum), edgeone, edgeone); err != nil {
		return err
	}
	for k, v := range b.nodes {
		if k > 1 && v.low != -1 {
			if err := f(k, int(b.var2level[v.varix&_MAXVAR]), v.low, v.high); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *DD) allnodesfrom(f func(id, level int, low, high int) error, n []Node) error {
	for _, v := range n {
		b.markrec(*v)
	}
	err := f(1, int(b.varnum), edgeone, edgeone)
	for k := range b.nodes {
		if k > 1 && b.ismarked(k) {
			b.unmarknode(k)
			if err == nil {
				err = f(k, int(b.var2level[b.nodes[k].varix&_MAXVAR]), b.nodes[k].low, b.nodes[k].high)
			}
		}
	}
	return err
}
