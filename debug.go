// Copyright (c) 2024 the bkfdd authors
//
// MIT License

//go:build debug
// +build debug

package bkfdd

import (
	"log"
	"os"
)

const _DEBUG bool = true
const _LOGLEVEL int = 1

// ************************************************************

func init() {
	log.SetOutput(os.Stdout)
}

// ************************************************************

func (b *DD) logTable() {
	if b.error != nil {
		log.Printf("ERROR: %s\n", b.error)
	}
	for lvl := int32(0); lvl < b.varnum; lvl++ {
		log.Printf("level %-3d var %-3d %s: %d keys, %d dead\n", lvl,
			b.level2var[lvl], b.subtables[lvl].exp, b.subtables[lvl].keys, b.subtables[lvl].dead)
	}
	for k, n := range b.nodes {
		switch {
		case n.low == -1:
			continue
		case n.refcou == _MAXREFCOUNT:
			log.Printf("%-3d ( %-3d ,  %-3d ,  %-3d)  |next:  %-3d | +\n", k, n.varix&_MAXVAR, n.low, n.high, n.next)
		case n.refcou == 0:
			log.Printf("%-3d ( %-3d ,  %-3d ,  %-3d)  |next:  %-3d |\n", k, n.varix&_MAXVAR, n.low, n.high, n.next)
		default:
			log.Printf("%-3d ( %-3d ,  %-3d ,  %-3d)  |next:  %-3d | %d\n", k, n.varix&_MAXVAR, n.low, n.high, n.next, n.refcou)
		}
	}
}
