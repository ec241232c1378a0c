// Copyright (c) 2024 the bkfdd authors
//
// MIT License

package bkfdd

// Expansion identifies the decomposition type of one level of the diagram.
// The six values combine two orthogonal axes: the expansion kind (Shannon,
// negative Davio, positive Davio) and the conditioning (classical, on the
// raw variable; biconditional, on the equivalence of the variable with the
// variable of the next level down). Exactly one kind and exactly one
// conditioning hold for any value.
//
// The bottom level of a diagram is always classical: a biconditional level
// needs a successor level to pair with.
type Expansion int32

const (
	CS  Expansion = iota // Classical Shannon
	CND                  // Classical negative Davio
	CPD                  // Classical positive Davio
	BS                   // Biconditional Shannon
	BND                  // Biconditional negative Davio
	BPD                  // Biconditional positive Davio
)

var expnames = [6]string{
	CS:  "CS",
	CND: "CND",
	CPD: "CPD",
	BS:  "BS",
	BND: "BND",
	BPD: "BPD",
}

func (e Expansion) String() string {
	if e < 0 || int(e) >= len(expnames) {
		return "invalid"
	}
	return expnames[e]
}

// Classical reports whether e conditions on the raw value of the level's
// variable.
func (e Expansion) Classical() bool {
	return e == CS || e == CND || e == CPD
}

// Biconditional reports whether e conditions on the equivalence of the
// level's variable with the next variable down.
func (e Expansion) Biconditional() bool {
	return e == BS || e == BND || e == BPD
}

// Shannon reports whether e splits into two plain cofactors.
func (e Expansion) Shannon() bool {
	return e == CS || e == BS
}

// NegDavio reports whether e is a negative Davio expansion, storing the
// conditioned-false cofactor in the low slot and the ring difference in the
// high slot.
func (e Expansion) NegDavio() bool {
	return e == CND || e == BND
}

// PosDavio reports whether e is a positive Davio expansion, storing the
// conditioned-true cofactor in the low slot and the ring difference in the
// high slot.
func (e Expansion) PosDavio() bool {
	return e == CPD || e == BPD
}

// Davio reports whether the high slot of a node at a level with this
// expansion holds a ring difference rather than a cofactor.
func (e Expansion) Davio() bool {
	return !e.Shannon()
}

// classical returns the classical counterpart of e, keeping the kind axis.
func (e Expansion) classical() Expansion {
	switch e {
	case BS:
		return CS
	case BND:
		return CND
	case BPD:
		return CPD
	}
	return e
}

// biconditional returns the biconditional counterpart of e, keeping the
// kind axis.
func (e Expansion) biconditional() Expansion {
	switch e {
	case CS:
		return BS
	case CND:
		return BND
	case CPD:
		return BPD
	}
	return e
}

// samekind reports whether e and f agree on the kind axis.
func samekind(e, f Expansion) bool {
	return e.classical() == f.classical()
}
