// Package step defines the Step triple observed by property automata: a
// system transition's source, action, and target, plus the atomic
// propositions derived on the target. Property automata (pkg/nfaprop,
// pkg/buchi) never see bare configurations, only steps.
package step

import "github.com/soupcheck/soupcheck/pkg/langsem"

// AP is a map of atomic-proposition name to truth value, evaluated on a
// step's target configuration. The core never defines which propositions
// exist; a harness supplies the evaluating function (see examples/mutex).
type AP map[string]bool

// Step is a single observed system transition, plus its derived atomic
// propositions. Src/Tgt/Action are recorded for the property automata and
// for trace reconstruction; AP is computed once, on Tgt, by the harness.
type Step[C any] struct {
	Src    C
	Action langsem.Action
	Tgt    C
	AP     AP
}

// Get reports the truth value of prop on s, defaulting to false when the
// harness-supplied AP function never set it.
func (s Step[C]) Get(prop string) bool {
	return bool(s.AP[prop])
}

// Stuttering builds the step (c, stutter, c) emitted when a system has no
// enabled action at c.
func Stuttering[C any](c C, ap AP) Step[C] {
	return Step[C]{Src: c, Action: langsem.Stutter, Tgt: c, AP: ap}
}
