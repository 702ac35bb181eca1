// Package buchi implements the Büchi property automaton: a nondeterministic
// automaton over steps whose accepting runs visit accepting states
// infinitely often. The core only defines the automaton shape and
// evaluation rules; it never hardcodes a property family (those live in
// examples/mutex).
package buchi

import (
	"sort"

	"github.com/soupcheck/soupcheck/pkg/step"
)

// StepGuard decides whether a Büchi transition may fire on a given step.
type StepGuard[C any] func(s step.Step[C]) bool

// Transition is one outgoing edge of a Büchi automaton state: label, guard
// over the step, and integer target state.
type Transition[C any] struct {
	Label  string
	Guard  StepGuard[C]
	Target int
}

// Property is a Büchi automaton: initial states, accepting states, and a
// transition relation keyed by source state.
type Property[C any] struct {
	Name       string
	InitStates []int
	Accepting  map[int]bool
	Trans      map[int][]Transition[C]
}

// PropAction is an enabled Büchi transition, already carrying its target,
// returned by Actions and consumed by Execute.
type PropAction struct {
	Label  string
	Target int
}

// Semantics evaluates a Büchi Property against steps.
type Semantics[C any] struct {
	prop Property[C]
}

// New wraps a Property as a property Semantics.
func New[C any](prop Property[C]) *Semantics[C] {
	return &Semantics[C]{prop: prop}
}

// Initial returns the automaton's initial states.
func (s *Semantics[C]) Initial() []int {
	out := make([]int, len(s.prop.InitStates))
	copy(out, s.prop.InitStates)
	return out
}

// IsAccepting reports whether st is an accepting Büchi state.
func (s *Semantics[C]) IsAccepting(st int) bool {
	return s.prop.Accepting[st]
}

// Actions returns every transition out of st whose guard accepts the step,
// sorted by (label, target) for deterministic exploration.
func (s *Semantics[C]) Actions(stp step.Step[C], st int) []PropAction {
	var out []PropAction
	for _, tr := range s.prop.Trans[st] {
		if tr.Guard(stp) {
			out = append(out, PropAction{Label: tr.Label, Target: tr.Target})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// Execute returns the action's already-resolved target state.
func (s *Semantics[C]) Execute(a PropAction, _ step.Step[C], _ int) int {
	return a.Target
}
