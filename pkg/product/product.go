// Package product implements the step-synchronous product: one generic
// construction combining a system (langsem.Semantics) with a property
// (NFA or Büchi) into a new langsem.Semantics over pairs (system
// configuration, property state). It is parameterized by which variant's
// initial-state handling to use (safety's pre-initial sentinel, or Büchi's
// eagerly-stepped Cartesian initials) but shares a single implementation of
// the common transition rule and the stuttering discipline.
package product

import (
	"fmt"
	"sort"

	"github.com/soupcheck/soupcheck/pkg/langsem"
	"github.com/soupcheck/soupcheck/pkg/step"
	"github.com/soupcheck/soupcheck/pkg/verrors"
)

// APFunc computes the atomic propositions a harness defines for a system,
// evaluated on a step's target configuration.
type APFunc[C any] func(c C) step.AP

// RHS is the capability a property automaton must expose to be driven by
// the product, bridging NFA and Büchi naming onto one
// shape. Adapters in this package (NFARHS, BuchiRHS) build it from
// pkg/nfaprop.Semantics and pkg/buchi.Semantics respectively.
type RHS[C, P comparable, A any] interface {
	Initials() []P
	Accept(p P) bool
	Actions(s step.Step[C], p P) []A
	Execute(a A, s step.Step[C], p P) []P
	Label(a A) string
}

// State is a product configuration: a pair (system configuration, property
// state). HasSys is false only for the safety variant's pre-initial
// sentinel, before any system initial configuration has been chosen.
type State[C, P comparable] struct {
	HasSys bool
	Sys    C
	Prop   P
}

func (s State[C, P]) String() string {
	if !s.HasSys {
		return fmt.Sprintf("(pre-initial, %#v)", s.Prop)
	}
	return fmt.Sprintf("(%#v, %#v)", s.Sys, s.Prop)
}

// ActionData is the payload carried by every product Action, recording the
// system step actually taken (or a stuttering step) and the property
// transition chosen alongside it.
type ActionData[C, P comparable, A any] struct {
	Step      step.Step[C]
	RHSAction A
	SysLabel  string
}

// Semantics is the langsem.Semantics[State[C,P]] implementing the
// synchronous product. Construct with NewSafety or NewBuchi.
type Semantics[C, P comparable, A any] struct {
	lhs    langsem.Semantics[C]
	rhs    RHS[C, P, A]
	apFunc APFunc[C]
	buchi  bool
}

// NewSafety builds the safety-variant product: the initial product
// configuration is the pre-initial sentinel, one per property initial
// state; its actions enumerate (system initial, property piece enabled on
// the trivial step (init, init, init)) pairs.
func NewSafety[C, P comparable, A any](lhs langsem.Semantics[C], rhs RHS[C, P, A], ap APFunc[C]) *Semantics[C, P, A] {
	return &Semantics[C, P, A]{lhs: lhs, rhs: rhs, apFunc: ap, buchi: false}
}

// NewBuchi builds the Büchi-variant product: initial product configurations
// are the Cartesian product of system initials and property initial states,
// each advanced by one property step driven by the trivial initial step
// (s0, "init", s0); if no property transition is enabled on that step, the
// property state passes through unchanged.
func NewBuchi[C, P comparable, A any](lhs langsem.Semantics[C], rhs RHS[C, P, A], ap APFunc[C]) *Semantics[C, P, A] {
	return &Semantics[C, P, A]{lhs: lhs, rhs: rhs, apFunc: ap, buchi: true}
}

func sortedByRepr[C any](xs []C) []C {
	out := make([]C, len(xs))
	copy(out, xs)
	sort.Slice(out, func(i, j int) bool {
		return langsem.Repr(out[i]) < langsem.Repr(out[j])
	})
	return out
}

func (s *Semantics[C, P, A]) trivialStep(c C) step.Step[C] {
	return step.Step[C]{Src: c, Action: langsem.Action{Name: "init"}, Tgt: c, AP: s.apFunc(c)}
}

// Accepting reports whether a product configuration's property component is
// an accepting property state. Safety engines (pkg/reach) treat reaching
// one as a violation witness; liveness engines (pkg/live) treat it as a
// candidate Büchi-accepting cycle state.
func (s *Semantics[C, P, A]) Accepting(st State[C, P]) bool {
	return s.rhs.Accept(st.Prop)
}

// Initials returns the product's initial configurations.
func (s *Semantics[C, P, A]) Initials() []State[C, P] {
	if s.buchi {
		return s.buchiInitials()
	}
	var out []State[C, P]
	for _, p0 := range s.rhs.Initials() {
		out = append(out, State[C, P]{HasSys: false, Prop: p0})
	}
	return out
}

func (s *Semantics[C, P, A]) buchiInitials() []State[C, P] {
	var out []State[C, P]
	sysInit := sortedByRepr(s.lhs.Initials())
	propInit := sortedByRepr(s.rhs.Initials())
	for _, c0 := range sysInit {
		stp := s.trivialStep(c0)
		for _, p0 := range propInit {
			acts := s.rhs.Actions(stp, p0)
			if len(acts) == 0 {
				out = append(out, State[C, P]{HasSys: true, Sys: c0, Prop: p0})
				continue
			}
			for _, ra := range acts {
				for _, np := range s.rhs.Execute(ra, stp, p0) {
					out = append(out, State[C, P]{HasSys: true, Sys: c0, Prop: np})
				}
			}
		}
	}
	return out
}

func actionName(sysLabel, propLabel string) string {
	return sysLabel + "||" + propLabel
}

// Actions enumerates product actions out of src, per the common transition
// rule: every enabled system action and successor, paired with every
// property transition enabled on the induced step; or, when the system
// deadlocks, the stuttering expansion.
func (s *Semantics[C, P, A]) Actions(src State[C, P]) []langsem.Action {
	if !src.HasSys {
		return s.preInitialActions(src.Prop)
	}
	return s.commonActions(src.Sys, src.Prop)
}

func (s *Semantics[C, P, A]) preInitialActions(p P) []langsem.Action {
	var out []langsem.Action
	for _, c0 := range sortedByRepr(s.lhs.Initials()) {
		stp := s.trivialStep(c0)
		for _, ra := range s.rhs.Actions(stp, p) {
			out = append(out, langsem.Action{
				Name: actionName("init", s.rhs.Label(ra)),
				Payload: ActionData[C, P, A]{
					Step:      stp,
					RHSAction: ra,
					SysLabel:  "init",
				},
			})
		}
	}
	return out
}

func (s *Semantics[C, P, A]) commonActions(c C, p P) []langsem.Action {
	var out []langsem.Action

	lacts := make([]langsem.Action, len(s.lhs.Actions(c)))
	copy(lacts, s.lhs.Actions(c))
	sort.Slice(lacts, func(i, j int) bool { return lacts[i].Name < lacts[j].Name })

	// Property transitions enabled on one step, ordered by label (stable, so
	// an RHS that already orders by target keeps that order within a label).
	rhsActions := func(stp step.Step[C]) []A {
		ras := s.rhs.Actions(stp, p)
		sort.SliceStable(ras, func(i, j int) bool { return s.rhs.Label(ras[i]) < s.rhs.Label(ras[j]) })
		return ras
	}

	if len(lacts) == 0 {
		stp := step.Stuttering(c, s.apFunc(c))
		for _, ra := range rhsActions(stp) {
			out = append(out, langsem.Action{
				Name: actionName(langsem.Stutter.Name, s.rhs.Label(ra)),
				Payload: ActionData[C, P, A]{
					Step:      stp,
					RHSAction: ra,
					SysLabel:  langsem.Stutter.Name,
				},
			})
		}
		return out
	}

	for _, la := range lacts {
		targets := sortedByRepr(s.lhs.Execute(c, la))
		for _, t := range targets {
			stp := step.Step[C]{Src: c, Action: la, Tgt: t, AP: s.apFunc(t)}
			for _, ra := range rhsActions(stp) {
				out = append(out, langsem.Action{
					Name: actionName(la.Name, s.rhs.Label(ra)),
					Payload: ActionData[C, P, A]{
						Step:      stp,
						RHSAction: ra,
						SysLabel:  la.Name,
					},
				})
			}
		}
	}
	return out
}

// Execute replays the product action's recorded step against the property,
// yielding one product successor per property-side successor state.
func (s *Semantics[C, P, A]) Execute(src State[C, P], a langsem.Action) []State[C, P] {
	ad, ok := a.Payload.(ActionData[C, P, A])
	if !ok {
		panic(&verrors.ContractViolation{Detail: fmt.Sprintf("product.Execute: action %q payload is not a product.ActionData", a.Name)})
	}

	nextSys := ad.Step.Tgt
	var out []State[C, P]
	for _, np := range s.rhs.Execute(ad.RHSAction, ad.Step, src.Prop) {
		out = append(out, State[C, P]{HasSys: true, Sys: nextSys, Prop: np})
	}
	return out
}

var _ langsem.Semantics[State[int, int]] = (*Semantics[int, int, int])(nil)
