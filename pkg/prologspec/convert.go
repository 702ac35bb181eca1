package prologspec

import (
	"context"

	"github.com/soupcheck/soupcheck/pkg/soup"
)

// Transition is one From--Label-->To fact extracted from the loaded spec.
type Transition struct {
	From  string
	Label string
	To    string
}

// TransitionSystem is the plain data extracted from a Prolog spec's
// transition/3, initial/1, and accepting/1 facts.
type TransitionSystem struct {
	States      []string
	Transitions []Transition
	Initial     []string
	Accepting   []string
}

// ExtractTransitionSystem queries the loaded spec for its transition/3,
// initial/1, and accepting/1 facts, in the shape pkg/soup, pkg/reach, and
// pkg/live need.
func (e *Engine) ExtractTransitionSystem(ctx context.Context) (*TransitionSystem, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ts := &TransitionSystem{}
	stateSet := map[string]bool{}

	sols, err := e.interpreter.QueryContext(ctx, "transition(From, Label, To).")
	if err != nil {
		return nil, err
	}
	for sols.Next() {
		var row struct {
			From  interface{}
			Label interface{}
			To    interface{}
		}
		if err := sols.Scan(&row); err != nil {
			sols.Close()
			return nil, err
		}
		from, label, to := termToString(row.From), termToString(row.Label), termToString(row.To)
		ts.Transitions = append(ts.Transitions, Transition{From: from, Label: label, To: to})
		stateSet[from] = true
		stateSet[to] = true
	}
	sols.Close()

	sols, err = e.interpreter.QueryContext(ctx, "initial(S).")
	if err != nil {
		return nil, err
	}
	for sols.Next() {
		var row struct{ S interface{} }
		if err := sols.Scan(&row); err != nil {
			sols.Close()
			return nil, err
		}
		s := termToString(row.S)
		ts.Initial = append(ts.Initial, s)
		stateSet[s] = true
	}
	sols.Close()

	sols, err = e.interpreter.QueryContext(ctx, "accepting(S).")
	if err != nil {
		return nil, err
	}
	for sols.Next() {
		var row struct{ S interface{} }
		if err := sols.Scan(&row); err != nil {
			sols.Close()
			return nil, err
		}
		s := termToString(row.S)
		ts.Accepting = append(ts.Accepting, s)
		stateSet[s] = true
	}
	sols.Close()

	for s := range stateSet {
		ts.States = append(ts.States, s)
	}

	return ts, nil
}

// ToSoup compiles an extracted transition system into a soup.Soup[string]:
// one piece per transition fact, guarded on the configuration equaling the
// transition's source state. This is the bridge that lets a Prolog-authored
// model be driven by pkg/product, pkg/reach, and pkg/live exactly like a
// Go-native soup.Soup.
func ToSoup(ts *TransitionSystem) soup.Soup[string] {
	pieces := make([]soup.Piece[string], 0, len(ts.Transitions))
	for _, t := range ts.Transitions {
		t := t
		pieces = append(pieces, soup.Piece[string]{
			Name:   t.Label,
			Guard:  func(c string) bool { return c == t.From },
			Effect: func(string) string { return t.To },
		})
	}
	init := make([]string, len(ts.Initial))
	copy(init, ts.Initial)
	return soup.Soup[string]{Pieces: pieces, Init: init}
}

// AcceptingSet turns an extracted transition system's accepting/1 facts
// into a membership set; indexing it gives the accepting test a BFS goal
// callback or a pkg/live accepting function needs.
func AcceptingSet(ts *TransitionSystem) map[string]bool {
	out := make(map[string]bool, len(ts.Accepting))
	for _, s := range ts.Accepting {
		out[s] = true
	}
	return out
}
