// Package soup implements the rule-based system encoder: a collection of
// guarded rules ("pieces") plus a set of initial configurations, exposed as
// a langsem.Semantics. This is the concrete system description a soupcheck
// user writes; the product and engine layers only ever see it through the
// langsem.Semantics interface.
package soup

import (
	"fmt"

	"github.com/soupcheck/soupcheck/pkg/langsem"
	"github.com/soupcheck/soupcheck/pkg/verrors"
)

// Guard decides whether a piece may fire at a configuration.
type Guard[C any] func(c C) bool

// Effect computes the configuration resulting from firing a piece.
type Effect[C any] func(c C) C

// Piece is a single guarded rule: if Guard(c) then Execute may apply
// Effect(c). Names are conventionally unique within a Soup but the
// semantics does not require it; duplicate names contribute independent
// actions.
type Piece[C any] struct {
	Name   string
	Guard  Guard[C]
	Effect Effect[C]
}

func (p Piece[C]) enabled(c C) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = verrors.Recover(p.Name, c, r)
		}
	}()
	return p.Guard(c), nil
}

func (p Piece[C]) apply(c C) (next C, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = verrors.Recover(p.Name, c, r)
		}
	}()
	return p.Effect(c), nil
}

func (p Piece[C]) String() string {
	return fmt.Sprintf("Piece(%s)", p.Name)
}

// Soup is an ordered list of pieces plus an ordered list of initial
// configurations. Order is the only author-visible determinism knob for
// this encoding: Semantics.Actions preserves declaration order rather than
// imposing its own sort (the product layer sorts when it needs to).
type Soup[C any] struct {
	Pieces []Piece[C]
	Init   []C
}

// Semantics implements langsem.Semantics[C] over a Soup.
type Semantics[C comparable] struct {
	program Soup[C]
}

// New wraps a Soup as a langsem.Semantics.
func New[C comparable](program Soup[C]) *Semantics[C] {
	return &Semantics[C]{program: program}
}

// Initials returns the soup's initial configurations, in declaration order.
func (s *Semantics[C]) Initials() []C {
	out := make([]C, len(s.program.Init))
	copy(out, s.program.Init)
	return out
}

// Actions returns pieces whose guard holds at c, in declaration order. A
// guard that panics is a programming error and propagates as a
// *verrors.SemanticsError.
func (s *Semantics[C]) Actions(c C) []langsem.Action {
	var out []langsem.Action
	for _, p := range s.program.Pieces {
		ok, err := p.enabled(c)
		if err != nil {
			panic(err)
		}
		if ok {
			out = append(out, langsem.Action{Name: p.Name, Payload: p})
		}
	}
	return out
}

// Execute applies the piece carried by a's payload and returns the
// singleton successor list. Effects must be pure; soupcheck treats C as a
// value type, so no defensive copy is performed.
func (s *Semantics[C]) Execute(c C, a langsem.Action) []C {
	p, ok := a.Payload.(Piece[C])
	if !ok {
		panic(&verrors.ContractViolation{Detail: fmt.Sprintf("soup.Execute: action %q payload is not a soup.Piece", a.Name)})
	}
	next, err := p.apply(c)
	if err != nil {
		panic(err)
	}
	return []C{next}
}

var _ langsem.Semantics[int] = (*Semantics[int])(nil)
