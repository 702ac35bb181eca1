package product

import (
	"testing"

	"github.com/soupcheck/soupcheck/pkg/buchi"
	"github.com/soupcheck/soupcheck/pkg/langsem"
	"github.com/soupcheck/soupcheck/pkg/nfaprop"
	"github.com/soupcheck/soupcheck/pkg/soup"
	"github.com/soupcheck/soupcheck/pkg/step"
)

func counterSoup(max int) *soup.Semantics[int] {
	return soup.New(soup.Soup[int]{
		Pieces: []soup.Piece[int]{
			{
				Name:   "inc",
				Guard:  func(c int) bool { return c < max },
				Effect: func(c int) int { return c + 1 },
			},
		},
		Init: []int{0},
	})
}

func countAP(max int) APFunc[int] {
	return func(c int) step.AP { return step.AP{"atmax": c == max} }
}

func TestNFAProductReachesViolationOnPattern1(t *testing.T) {
	sys := counterSoup(3)
	cond := func(s step.Step[int]) bool { return s.Get("atmax") }
	prop := nfaprop.New(nfaprop.BuildNeverCondPattern1[int](cond))
	prod := NewNFAProduct[int, string](sys, prop, countAP(3))

	inits := prod.Initials()
	if len(inits) != 1 {
		t.Fatalf("expected exactly one pre-initial product state, got %d", len(inits))
	}
	cur := inits[0]
	if cur.HasSys {
		t.Fatalf("expected the safety variant's first state to be the pre-initial sentinel")
	}

	reachedAccepting := false
	for i := 0; i < 10 && !reachedAccepting; i++ {
		acts := prod.Actions(cur)
		if len(acts) == 0 {
			t.Fatalf("product deadlocked at step %d before reaching an accepting state", i)
		}
		nexts := prod.Execute(cur, acts[0])
		if len(nexts) == 0 {
			t.Fatalf("product action produced no successor at step %d", i)
		}
		cur = nexts[0]
		if prod.Accepting(cur) {
			reachedAccepting = true
		}
	}
	if !reachedAccepting {
		t.Fatalf("expected the product to reach an accepting (violating) state within 10 steps")
	}
	if cur.Sys != 3 {
		t.Fatalf("expected the violation to be witnessed at counter value 3, got %d", cur.Sys)
	}
}

func TestNFAProductPatternsAgreeOnVerdict(t *testing.T) {
	cond := func(s step.Step[int]) bool { return s.Get("atmax") }
	patterns := map[string]nfaprop.NFA[int, string]{
		"pattern1": nfaprop.BuildNeverCondPattern1[int](cond),
		"pattern2": nfaprop.BuildNeverCondPattern2[int](cond),
	}
	for name, nfa := range patterns {
		t.Run(name, func(t *testing.T) {
			sys := counterSoup(2)
			prop := nfaprop.New(nfa)
			prod := NewNFAProduct[int, string](sys, prop, countAP(2))

			var frontier []State[int, string]
			frontier = append(frontier, prod.Initials()...)
			seen := map[string]bool{}
			reached := false
			for steps := 0; steps < 20 && len(frontier) > 0 && !reached; steps++ {
				var next []State[int, string]
				for _, cur := range frontier {
					key := cur.String()
					if seen[key] {
						continue
					}
					seen[key] = true
					if prod.Accepting(cur) {
						reached = true
						break
					}
					for _, a := range prod.Actions(cur) {
						next = append(next, prod.Execute(cur, a)...)
					}
				}
				frontier = next
			}
			if !reached {
				t.Fatalf("%s: expected reachability of an accepting state", name)
			}
		})
	}
}

func alwaysTrue(step.Step[int]) bool { return true }

func loopingBuchiProperty() buchi.Property[int] {
	return buchi.Property[int]{
		Name:       "always-looping",
		InitStates: []int{0},
		Accepting:  map[int]bool{0: true},
		Trans: map[int][]buchi.Transition[int]{
			0: {{Label: "loop", Guard: alwaysTrue, Target: 0}},
		},
	}
}

func TestBuchiProductInitialsStepPastTrivialStep(t *testing.T) {
	sys := counterSoup(1)
	prop := buchi.New(loopingBuchiProperty())
	prod := NewBuchiProduct[int](sys, prop, countAP(1))

	inits := prod.Initials()
	if len(inits) != 1 {
		t.Fatalf("expected one Büchi-variant initial state, got %d", len(inits))
	}
	if !inits[0].HasSys {
		t.Fatalf("Büchi variant must not use the pre-initial sentinel")
	}
	if inits[0].Sys != 0 || inits[0].Prop != 0 {
		t.Fatalf("unexpected initial state %v", inits[0])
	}
	if !prod.Accepting(inits[0]) {
		t.Fatalf("expected the initial state to already be accepting for this property")
	}
}

func TestBuchiProductStuttersOnDeadlock(t *testing.T) {
	sys := counterSoup(0) // no piece ever enabled: deadlocked system
	prop := buchi.New(loopingBuchiProperty())
	prod := NewBuchiProduct[int](sys, prop, countAP(0))

	cur := prod.Initials()[0]
	acts := prod.Actions(cur)
	if len(acts) != 1 {
		t.Fatalf("expected exactly one stuttering product action, got %d", len(acts))
	}
	if acts[0].Name != "stutter||loop" {
		t.Fatalf("expected a stuttering action name, got %q", acts[0].Name)
	}
	nexts := prod.Execute(cur, acts[0])
	if len(nexts) != 1 || nexts[0] != cur {
		t.Fatalf("expected the stuttering action to self-loop, got %v", nexts)
	}
}

var _ langsem.Semantics[int] = (*soup.Semantics[int])(nil)
