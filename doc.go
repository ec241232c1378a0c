// Copyright (c) 2024 the bkfdd authors
//
// MIT License

/*
Package bkfdd implements Bi-Kronecker Functional Decision Diagrams (BKFDD), a
canonical, reduced representation for Boolean functions that generalizes
Binary Decision Diagrams by allowing six different node expansions per
variable level: Shannon, positive Davio and negative Davio, each in a
classical variant (conditioned on the raw value of the level's variable) and
a biconditional variant (conditioned on the equivalence of the level's
variable with the variable immediately below it).

Basics

Each diagram has a fixed number of variables, declared when the manager is
initialized with New. Variables are identified by an integer index in
[0..Varnum) and occupy one level each in the current variable order; the
order can change over the life of the manager through reordering, but the
index of a variable never does.

Most operations return a Node, a polarity-tagged reference to a vertex of
the diagram. We use integers to encode references, with the complement
carried in the least significant bit, so negation is a constant-time
operation and only one terminal vertex is needed: the constant True, whose
complement is False.

Expansions

Every level carries one of six expansion types. For a level conditioned on d
(either the variable x itself, or the equivalence x == y with y the next
variable down) a node with successors (low, high) denotes:

	Shannon          if d then high else low
	negative Davio   low XOR (d AND high)
	positive Davio   low XOR (NOT d AND high)

Under the Davio expansions the high successor stores a Boolean-ring
difference rather than a cofactor, and the reduction rule changes
accordingly: a Davio node with a False high successor is redundant, while a
Shannon node with equal successors is. The expansion type of a level can be
changed at any time with SetExpansion, which rewrites the successors of
every node at that level and leaves the function of every outstanding Node
unchanged.

Reordering

The package implements adjacent-level swapping and three sifting strategies
on top of it: SiftOET (single-variable sifting that also searches the
expansion types at each bottom arrival), SiftGroups (group sifting that
keeps biconditional pairs together) and SiftSymmetry (group sifting driven
by structural symmetry detection). Reordering can also be triggered
automatically on table growth; a swap budget, a wall-clock limit and a
cancellation callback bound the work.

Memory management

The library is written in pure Go. Like with MuDDy, a ML interface to BuDDy,
we piggyback on the garbage collection mechanism offered by the host
language: external references made by user code are released by finalizers,
while the nodes of the diagram live in a managed arena with explicit,
saturating reference counts and caller-controlled garbage collection. The
manager is not safe for concurrent use; callers that share one manager
across goroutines must serialize access externally.
*/
package bkfdd
