// Package verrors defines soupcheck's error taxonomy: configuration errors
// (surfaced before any exploration begins), semantics errors (a guard or
// effect panicked), contract violations (a product action arrived at
// Execute with an inconsistent payload shape), and the lossy-reconstruction
// marker used when a Büchi counterexample's cycle cannot be rebuilt exactly.
package verrors

import (
	"errors"
	"fmt"
)

// ErrEmptyCounterexample marks a Büchi verification that found a violation
// but could not reconstruct its cycle because the SCC structure degenerated.
// The engine falls back to a synthetic two-step "stutter" self-loop rather
// than crash; callers check for this with errors.Is on the returned
// counterexample's Err field.
var ErrEmptyCounterexample = errors.New("lasso reconstruction degenerated: falling back to a synthetic stutter cycle")

// ConfigurationError reports an invalid request made before any exploration
// started: an unknown system tag, unknown property tag, or an invalid
// combination of flags (e.g. a pattern requested for a Büchi property).
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Detail)
}

// SemanticsError wraps a panic raised by a guard or effect function,
// naming the offending piece and the configuration it was evaluated at.
type SemanticsError struct {
	Piece  string
	Config any
	Cause  error
}

func (e *SemanticsError) Error() string {
	return fmt.Sprintf("piece %q raised evaluating config %#v: %v", e.Piece, e.Config, e.Cause)
}

func (e *SemanticsError) Unwrap() error {
	return e.Cause
}

// ContractViolation reports that an Action's payload did not have the shape
// the receiving layer requires (e.g. a product Execute was handed an
// Action.Payload that isn't a product.ActionData). This is always a
// programming error in the caller and is fatal.
type ContractViolation struct {
	Detail string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation: %s", e.Detail)
}

// Recover turns a recovered panic value into a *SemanticsError naming
// piece. It is a no-op (returns nil) when r is nil.
func Recover(piece string, config any, r any) error {
	if r == nil {
		return nil
	}
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	return &SemanticsError{Piece: piece, Config: config, Cause: cause}
}
