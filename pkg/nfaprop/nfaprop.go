// Package nfaprop implements the NFA-style reachability property ("iSoup"):
// a finite automaton over system steps, used to check safety properties.
// Reaching an accepting property state witnesses a violation.
package nfaprop

import (
	"fmt"

	"github.com/soupcheck/soupcheck/pkg/step"
	"github.com/soupcheck/soupcheck/pkg/verrors"
)

// Guard decides whether a property piece may fire on a given step while the
// property automaton is in state p.
type Guard[C, P any] func(s step.Step[C], p P) bool

// Effect computes the next property state(s) after firing a piece on a
// step. Most pieces return a single next state; Effect may return several
// to model property-side nondeterminism, preserved in declaration order.
type Effect[C, P any] func(s step.Step[C], p P) []P

// Piece is one transition of the property automaton.
type Piece[C, P any] struct {
	Name   string
	Guard  Guard[C, P]
	Effect Effect[C, P]
}

func (pc Piece[C, P]) enabled(s step.Step[C], p P) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = verrors.Recover(pc.Name, p, r)
		}
	}()
	return pc.Guard(s, p), nil
}

func (pc Piece[C, P]) apply(s step.Step[C], p P) (next []P, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = verrors.Recover(pc.Name, p, r)
		}
	}()
	return pc.Effect(s, p), nil
}

// NFA is the property automaton description: pieces, initial property
// states, and the accepting set.
type NFA[C any, P comparable] struct {
	Pieces    []Piece[C, P]
	Init      []P
	Accepting map[P]bool
}

// Semantics evaluates an NFA against steps.
type Semantics[C any, P comparable] struct {
	isoup NFA[C, P]
}

// New wraps an NFA as a property Semantics.
func New[C any, P comparable](isoup NFA[C, P]) *Semantics[C, P] {
	return &Semantics[C, P]{isoup: isoup}
}

// Initials returns the property automaton's initial states, in declaration
// order.
func (s *Semantics[C, P]) Initials() []P {
	out := make([]P, len(s.isoup.Init))
	copy(out, s.isoup.Init)
	return out
}

// Accepting reports whether p is an accepting property state.
func (s *Semantics[C, P]) Accepting(p P) bool {
	return s.isoup.Accepting[p]
}

// Actions returns the pieces enabled on (st, p), in declaration order.
func (s *Semantics[C, P]) Actions(st step.Step[C], p P) []Piece[C, P] {
	var out []Piece[C, P]
	for _, pc := range s.isoup.Pieces {
		ok, err := pc.enabled(st, p)
		if err != nil {
			panic(err)
		}
		if ok {
			out = append(out, pc)
		}
	}
	return out
}

// Execute fires piece on (st, p) and returns the resulting property
// state(s), in the order the effect produced them.
func (s *Semantics[C, P]) Execute(piece Piece[C, P], st step.Step[C], p P) []P {
	next, err := piece.apply(st, p)
	if err != nil {
		panic(err)
	}
	return next
}

func (pc Piece[C, P]) String() string {
	return fmt.Sprintf("iPiece(%s)", pc.Name)
}

// Pattern 1 and pattern 2 both encode the safety property "cond never holds
// on any step"; a violation is cond holding at least once. They explore
// differently (pattern 1 branches more in the product) but agree on verdict.

// Cond decides whether a step trips the monitored condition.
type Cond[C any] func(s step.Step[C]) bool

// BuildNeverCondPattern1 builds: T --true--> T, T --cond--> F (accepting).
func BuildNeverCondPattern1[C any](cond Cond[C]) NFA[C, string] {
	const t, f = "T", "F"
	return NFA[C, string]{
		Pieces: []Piece[C, string]{
			{
				Name:  "cond",
				Guard: func(s step.Step[C], p string) bool { return p == t && cond(s) },
				Effect: func(step.Step[C], string) []string {
					return []string{f}
				},
			},
			{
				Name:  "true",
				Guard: func(_ step.Step[C], p string) bool { return p == t },
				Effect: func(step.Step[C], string) []string {
					return []string{t}
				},
			},
		},
		Init:      []string{t},
		Accepting: map[string]bool{f: true},
	}
}

// BuildNeverCondPattern2 builds: T --!cond--> T, T --cond--> F (accepting).
// Deterministic on T, unlike pattern 1.
func BuildNeverCondPattern2[C any](cond Cond[C]) NFA[C, string] {
	const t, f = "T", "F"
	return NFA[C, string]{
		Pieces: []Piece[C, string]{
			{
				Name:  "cond",
				Guard: func(s step.Step[C], p string) bool { return p == t && cond(s) },
				Effect: func(step.Step[C], string) []string {
					return []string{f}
				},
			},
			{
				Name:  "!cond",
				Guard: func(s step.Step[C], p string) bool { return p == t && !cond(s) },
				Effect: func(step.Step[C], string) []string {
					return []string{t}
				},
			},
		},
		Init:      []string{t},
		Accepting: map[string]bool{f: true},
	}
}
