package prologspec

import (
	"context"
	"testing"

	"github.com/soupcheck/soupcheck/pkg/reach"
	"github.com/soupcheck/soupcheck/pkg/soup"
)

func TestNewLoadsCore(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if e == nil {
		t.Fatal("New() returned nil engine")
	}
}

func TestLoadSpec(t *testing.T) {
	e, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{
			name: "simple transition system",
			spec: `
                initial(idle).
                transition(idle, start, busy).
                transition(busy, done, idle).
            `,
			wantErr: false,
		},
		{name: "empty spec", spec: "", wantErr: false},
		{name: "syntax error", spec: "this is not valid prolog (", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.Reset(); err != nil {
				t.Fatalf("Reset() error: %v", err)
			}
			err := e.LoadSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadSpec() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckCTL(t *testing.T) {
	e, _ := New()
	ctx := context.Background()

	if err := e.LoadSpec(`
        initial(s0).
        transition(s0, a, s1).
        transition(s1, b, s2).
        transition(s2, c, s0).
        prop(s0, start).
        prop(s1, middle).
        prop(s2, end).
    `); err != nil {
		t.Fatalf("LoadSpec() error: %v", err)
	}

	tests := []struct {
		name     string
		formula  string
		expected bool
	}{
		{"EF reachable", "ef(atom(end))", true},
		{"EX from initial", "ex(atom(middle))", true},
		{"not EX to unreachable", "ex(atom(nonexistent))", false},
		{"AF eventually end", "af(atom(end))", true},
		{"AG can reach start", "ag(ef(atom(start)))", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CheckCTL(ctx, tt.formula)
			if err != nil {
				t.Fatalf("CheckCTL() error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("CheckCTL(%s) = %v, want %v", tt.formula, got, tt.expected)
			}
		})
	}
}

func TestExtractionPredicatesExposeFacts(t *testing.T) {
	e, _ := New()
	ctx := context.Background()

	if err := e.LoadSpec(`
        initial(s0).
        accepting(s2).
        transition(s0, a, s1).
        transition(s1, b, s2).
    `); err != nil {
		t.Fatalf("LoadSpec() error: %v", err)
	}

	ok, err := e.QueryOne(ctx, "all_states(States), member(s2, States).")
	if err != nil {
		t.Fatalf("QueryOne() error: %v", err)
	}
	if !ok {
		t.Errorf("expected all_states/1 to include s2")
	}

	ok, err = e.QueryOne(ctx, "all_initial([s0]).")
	if err != nil {
		t.Fatalf("QueryOne() error: %v", err)
	}
	if !ok {
		t.Errorf("expected all_initial/1 to be exactly [s0]")
	}
}

func TestExtractedSpecDrivesReach(t *testing.T) {
	e, _ := New()
	ctx := context.Background()

	if err := e.LoadSpec(`
        initial(idle).
        accepting(done).
        transition(idle, start, busy).
        transition(busy, finish, done).
    `); err != nil {
		t.Fatalf("LoadSpec() error: %v", err)
	}

	ts, err := e.ExtractTransitionSystem(ctx)
	if err != nil {
		t.Fatalf("ExtractTransitionSystem() error: %v", err)
	}
	if len(ts.Transitions) != 2 {
		t.Fatalf("expected 2 transitions, got %d", len(ts.Transitions))
	}
	if len(ts.Initial) != 1 || ts.Initial[0] != "idle" {
		t.Fatalf("expected initial [idle], got %v", ts.Initial)
	}

	accepting := AcceptingSet(ts)
	sem := soup.New(ToSoup(ts))
	res := reach.BFS[string](sem, func(_ *string, node string, _ string) bool {
		return accepting[node]
	})
	found := false
	for _, v := range res.Visited {
		if accepting[v] {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BFS over the Prolog-extracted soup to reach an accepting state, visited %v", res.Visited)
	}
}
