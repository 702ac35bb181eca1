package product

import (
	"github.com/soupcheck/soupcheck/pkg/buchi"
	"github.com/soupcheck/soupcheck/pkg/langsem"
	"github.com/soupcheck/soupcheck/pkg/nfaprop"
	"github.com/soupcheck/soupcheck/pkg/step"
)

// NFARHS adapts an nfaprop.Semantics to the product's RHS capability, for
// building the safety variant of the product.
type NFARHS[C, P comparable] struct {
	Sem *nfaprop.Semantics[C, P]
}

func (a NFARHS[C, P]) Initials() []P   { return a.Sem.Initials() }
func (a NFARHS[C, P]) Accept(p P) bool { return a.Sem.Accepting(p) }

func (a NFARHS[C, P]) Actions(s step.Step[C], p P) []nfaprop.Piece[C, P] {
	return a.Sem.Actions(s, p)
}

func (a NFARHS[C, P]) Execute(pc nfaprop.Piece[C, P], s step.Step[C], p P) []P {
	return a.Sem.Execute(pc, s, p)
}

func (a NFARHS[C, P]) Label(pc nfaprop.Piece[C, P]) string { return pc.Name }

// BuchiRHS adapts a buchi.Semantics to the product's RHS capability, for
// building the Büchi variant of the product. Büchi states are plain ints, so
// P is instantiated as int.
type BuchiRHS[C any] struct {
	Sem *buchi.Semantics[C]
}

func (a BuchiRHS[C]) Initials() []int   { return a.Sem.Initial() }
func (a BuchiRHS[C]) Accept(p int) bool { return a.Sem.IsAccepting(p) }

func (a BuchiRHS[C]) Actions(s step.Step[C], p int) []buchi.PropAction {
	return a.Sem.Actions(s, p)
}

func (a BuchiRHS[C]) Execute(pa buchi.PropAction, s step.Step[C], p int) []int {
	return []int{a.Sem.Execute(pa, s, p)}
}

func (a BuchiRHS[C]) Label(pa buchi.PropAction) string { return pa.Label }

// NewNFAProduct builds the safety-variant product of a system and an NFA
// property: the pre-initial sentinel, stepping into system initials paired
// with whichever property pieces are enabled on the trivial first step.
func NewNFAProduct[C, P comparable](lhs langsem.Semantics[C], prop *nfaprop.Semantics[C, P], ap APFunc[C]) *Semantics[C, P, nfaprop.Piece[C, P]] {
	return NewSafety[C, P, nfaprop.Piece[C, P]](lhs, NFARHS[C, P]{Sem: prop}, ap)
}

// NewBuchiProduct builds the Büchi-variant product of a system and a Büchi
// liveness property: Cartesian initials, each advanced by one property step.
func NewBuchiProduct[C comparable](lhs langsem.Semantics[C], prop *buchi.Semantics[C], ap APFunc[C]) *Semantics[C, int, buchi.PropAction] {
	return NewBuchi[C, int, buchi.PropAction](lhs, BuchiRHS[C]{Sem: prop}, ap)
}
