// Package prologspec lets a model be authored as Prolog facts instead of Go
// closures: transition/3, initial/1, and accepting/1 facts, compiled into
// the same soup.Soup (and, through it, every core engine) a Go-native model
// would use. It also exposes the loaded facts (plus prop/2 facts) to a small
// CTL model checker, useful as an independent cross-check of a
// reachability or liveness verdict computed by pkg/reach or pkg/live.
package prologspec

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ichiban/prolog"
)

// Engine wraps an ichiban/prolog interpreter with the predicates soupcheck
// needs to treat a Prolog spec as a transition system.
type Engine struct {
	mu          sync.RWMutex
	interpreter *prolog.Interpreter
	specSource  string
}

// New creates an Engine with the core CTL and extraction predicates loaded.
func New() (*Engine, error) {
	e := &Engine{interpreter: prolog.New(nil, nil)}
	if err := e.loadCore(); err != nil {
		return nil, fmt.Errorf("loading core predicates: %w", err)
	}
	return e, nil
}

// loadCore loads the CTL model-checking predicates and a few fact-listing
// helpers (all_states/1, all_transitions/1, all_initial/1, all_accepting/1)
// that callers can reach through QueryOne. ExtractTransitionSystem does not
// use these helpers; it queries transition/3, initial/1, and accepting/1
// directly.
func (e *Engine) loadCore() error {
	const core = `
% --- Transition system representation ---
% transition(From, Label, To), initial(State), accepting(State),
% prop(State, Prop) are supplied by the user's spec.

% EX(Phi) - exists next state satisfying Phi
ctl_ex(State, Phi) :-
    transition(State, _, Next),
    ctl_sat(Next, Phi).

% AX(Phi) - all next states satisfy Phi
ctl_ax(State, Phi) :-
    findall(Next, transition(State, _, Next), Nexts),
    Nexts \= [],
    forall(member(N, Nexts), ctl_sat(N, Phi)).

% EF(Phi) - exists a path to a state satisfying Phi
ctl_ef(State, Phi) :-
    ctl_ef(State, Phi, []).

ctl_ef(State, Phi, _Visited) :-
    ctl_sat(State, Phi).
ctl_ef(State, Phi, Visited) :-
    \+ member(State, Visited),
    transition(State, _, Next),
    ctl_ef(Next, Phi, [State|Visited]).

% AF(Phi) - every path eventually reaches a state satisfying Phi
ctl_af(State, Phi) :-
    ctl_af(State, Phi, []).

ctl_af(State, Phi, _Visited) :-
    ctl_sat(State, Phi).
ctl_af(State, Phi, Visited) :-
    \+ member(State, Visited),
    findall(Next, transition(State, _, Next), Nexts),
    Nexts \= [],
    forall(member(N, Nexts), ctl_af(N, Phi, [State|Visited])).

% EG(Phi) - exists an infinite path keeping Phi
ctl_eg(State, Phi) :-
    ctl_eg(State, Phi, []).

ctl_eg(State, Phi, Visited) :-
    ctl_sat(State, Phi),
    (member(State, Visited) -> true ;
     (transition(State, _, Next),
      ctl_eg(Next, Phi, [State|Visited]))).

% AG(Phi) - Phi holds on every state of every path
ctl_ag(State, Phi) :-
    ctl_ag(State, Phi, []).

ctl_ag(State, Phi, Visited) :-
    ctl_sat(State, Phi),
    (member(State, Visited) -> true ;
     (findall(Next, transition(State, _, Next), Nexts),
      forall(member(N, Nexts), ctl_ag(N, Phi, [State|Visited])))).

% E[Phi U Psi] - exists a path where Phi holds until Psi
ctl_eu(State, _Phi, Psi, _Visited) :-
    ctl_sat(State, Psi).
ctl_eu(State, Phi, Psi, Visited) :-
    \+ member(State, Visited),
    ctl_sat(State, Phi),
    transition(State, _, Next),
    ctl_eu(Next, Phi, Psi, [State|Visited]).

% A[Phi U Psi] - on every path, Phi holds until Psi
ctl_au(State, _Phi, Psi, _Visited) :-
    ctl_sat(State, Psi).
ctl_au(State, Phi, Psi, Visited) :-
    \+ member(State, Visited),
    ctl_sat(State, Phi),
    findall(Next, transition(State, _, Next), Nexts),
    Nexts \= [],
    forall(member(N, Nexts), ctl_au(N, Phi, Psi, [State|Visited])).

ctl_sat(State, atom(P)) :- prop(State, P).
ctl_sat(State, not(Phi)) :- \+ ctl_sat(State, Phi).
ctl_sat(State, and(Phi, Psi)) :- ctl_sat(State, Phi), ctl_sat(State, Psi).
ctl_sat(State, or(Phi, Psi)) :- (ctl_sat(State, Phi) ; ctl_sat(State, Psi)).
ctl_sat(State, ex(Phi)) :- ctl_ex(State, Phi).
ctl_sat(State, ax(Phi)) :- ctl_ax(State, Phi).
ctl_sat(State, ef(Phi)) :- ctl_ef(State, Phi).
ctl_sat(State, af(Phi)) :- ctl_af(State, Phi).
ctl_sat(State, eg(Phi)) :- ctl_eg(State, Phi).
ctl_sat(State, ag(Phi)) :- ctl_ag(State, Phi).
ctl_sat(State, eu(Phi, Psi)) :- ctl_eu(State, Phi, Psi, []).
ctl_sat(State, au(Phi, Psi)) :- ctl_au(State, Phi, Psi, []).

check_ctl(Phi) :-
    initial(S),
    ctl_sat(S, Phi).

% --- Fact listing helpers, for ad hoc queries ---
all_states(States) :-
    findall(S, (transition(S, _, _) ; transition(_, _, S) ; initial(S)), Bag),
    sort(Bag, States).

all_transitions(Transitions) :-
    findall(t(From, Label, To), transition(From, Label, To), Transitions).

all_initial(States) :-
    findall(S, initial(S), States).

all_accepting(States) :-
    findall(S, accepting(S), States).

% --- Utility predicates the CTL rules above depend on ---
member(X, [X|_]).
member(X, [_|T]) :- member(X, T).

forall(Cond, Action) :- \+ (Cond, \+ Action).
`
	return e.interpreter.Exec(core)
}

// LoadSpec loads a Prolog specification from a string, adding its facts to
// those of any previously loaded spec (Prolog facts accumulate; call Reset
// first to start from a clean transition system).
func (e *Engine) LoadSpec(source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.specSource = source
	return e.interpreter.Exec(source)
}

// LoadSpecFile consults a Prolog specification file.
func (e *Engine) LoadSpecFile(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interpreter.Exec(fmt.Sprintf(":- consult('%s').", path))
}

// Reset clears all loaded facts and reloads the core predicates.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.interpreter = prolog.New(nil, nil)
	e.specSource = ""
	return e.loadCore()
}

// GetSource returns the most recently loaded spec source.
func (e *Engine) GetSource() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.specSource
}

// QueryOne runs a query expecting at most one solution and reports whether
// one was found.
func (e *Engine) QueryOne(ctx context.Context, query string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sols, err := e.interpreter.QueryContext(ctx, query)
	if err != nil {
		return false, err
	}
	defer sols.Close()
	return sols.Next(), sols.Err()
}

// CheckCTL evaluates a CTL formula, given in Prolog term syntax
// (atom(p), not(Phi), and(Phi,Psi), or(Phi,Psi), ex/ax/ef/af/eg/ag(Phi),
// eu/au(Phi,Psi)), against the loaded spec's initial state(s).
func (e *Engine) CheckCTL(ctx context.Context, formula string) (bool, error) {
	return e.QueryOne(ctx, fmt.Sprintf("check_ctl(%s).", formula))
}

func termToString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if s, ok := v.(fmt.Stringer); ok {
		str := s.String()
		if strings.HasPrefix(str, "[") && strings.HasSuffix(str, "]") {
			inner := str[1 : len(str)-1]
			if inner == "" {
				return ""
			}
			parts := strings.Split(inner, ",")
			if len(parts) > 1 {
				var chars []byte
				allInts := true
				for _, p := range parts {
					p = strings.TrimSpace(p)
					var code int
					if _, err := fmt.Sscanf(p, "%d", &code); err == nil && code >= 0 && code < 256 {
						chars = append(chars, byte(code))
					} else {
						allInts = false
						break
					}
				}
				if allInts && len(chars) > 0 {
					return string(chars)
				}
			}
			noSpaces := strings.ReplaceAll(inner, " ", "")
			if len(noSpaces) > 0 && float64(len(noSpaces))/float64(len(inner)) < 0.6 {
				placeholder := "\x00"
				result := strings.ReplaceAll(inner, "  ", placeholder)
				result = strings.ReplaceAll(result, " ", "")
				result = strings.ReplaceAll(result, placeholder, " ")
				return result
			}
		}
		return str
	}
	return fmt.Sprintf("%v", v)
}
