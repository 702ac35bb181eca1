// Package langsem defines the uniform abstraction every explorable system
// implements: initial states, enabled actions, and successor computation.
// Every higher layer in soupcheck (the soup encoder, the synchronous
// products, the BFS and Büchi engines) consumes only this interface and
// never downcasts to a concrete system.
package langsem

import "fmt"

// Action is an opaque, named transition label. Name is used for ordering
// and for product-level composite names ("a1||cond"); Payload carries
// whatever data the producing layer needs to re-enact the action (for a
// soup, the Piece; for a product, the chosen sub-actions).
type Action struct {
	Name    string
	Payload any
}

// Stutter is the distinguished no-op action emitted when a system has no
// enabled action at a configuration, so that infinite runs exist even
// through a deadlock (required by the Büchi variant of the product).
var Stutter = Action{Name: "stutter"}

// IsStutter reports whether a is the stuttering action.
func (a Action) IsStutter() bool {
	return a.Name == Stutter.Name
}

func (a Action) String() string {
	return a.Name
}

// Semantics is a read-only view of a discrete transition system over
// configuration type C. C must be comparable so it can key a visited set.
type Semantics[C comparable] interface {
	// Initials returns the system's initial configurations, in a
	// deterministic, implementation-defined order. May be empty.
	Initials() []C

	// Actions returns the actions enabled at c, in a deterministic order.
	// Empty iff c is a deadlock.
	Actions(c C) []Action

	// Execute applies a to c and returns the resulting configurations.
	// May be empty (action became unsatisfiable), a singleton
	// (deterministic effect), or multi-valued (nondeterministic effect).
	Execute(c C, a Action) []C
}

// Repr returns a canonical, deterministic string representation of v, used
// throughout soupcheck to break ties between configurations and actions
// when no richer ordering is available. Go has no builtin repr(); %#v is
// the closest stable analogue for the plain value types soupcheck deals in
// (strings, structs, tuples of strings).
func Repr(v any) string {
	return fmt.Sprintf("%#v", v)
}
