package live

import (
	"testing"

	"github.com/soupcheck/soupcheck/pkg/soup"
)

func twoStateLoop() *soup.Semantics[int] {
	return soup.New(soup.Soup[int]{
		Pieces: []soup.Piece[int]{
			{Name: "fwd", Guard: func(c int) bool { return c == 0 }, Effect: func(int) int { return 1 }},
			{Name: "back", Guard: func(c int) bool { return c == 1 }, Effect: func(int) int { return 0 }},
		},
		Init: []int{0},
	})
}

func selfLoop() *soup.Semantics[int] {
	return soup.New(soup.Soup[int]{
		Pieces: []soup.Piece[int]{
			{Name: "loop", Guard: func(int) bool { return true }, Effect: func(c int) int { return c }},
		},
		Init: []int{0},
	})
}

func TestVerifyBuchiFindsCycleOverTwoStateLoop(t *testing.T) {
	sem := twoStateLoop()
	ok, visited, cex := VerifyBuchi[int](sem, func(c int) bool { return c == 1 })
	if ok {
		t.Fatalf("expected an accepting cycle to be found")
	}
	if visited != 2 {
		t.Fatalf("expected 2 reachable states, got %d", visited)
	}
	if cex == nil {
		t.Fatalf("expected a counterexample")
	}
	if len(cex.PrefixPath) == 0 || cex.PrefixPath[len(cex.PrefixPath)-1] != 1 {
		t.Fatalf("expected the prefix to end at the accepting state 1, got %v", cex.PrefixPath)
	}
	if len(cex.CyclePath) < 2 || cex.CyclePath[0] != 1 || cex.CyclePath[len(cex.CyclePath)-1] != 1 {
		t.Fatalf("expected the cycle to start and end at 1, got %v", cex.CyclePath)
	}
}

func TestVerifyBuchiFindsDirectSelfLoop(t *testing.T) {
	sem := selfLoop()
	ok, visited, cex := VerifyBuchi[int](sem, func(int) bool { return true })
	if ok {
		t.Fatalf("expected the self-loop to be an accepting cycle")
	}
	if visited != 1 {
		t.Fatalf("expected 1 reachable state, got %d", visited)
	}
	if len(cex.CyclePath) != 2 || cex.CyclePath[0] != 0 || cex.CyclePath[1] != 0 {
		t.Fatalf("expected a direct self-loop cycle [0 0], got %v", cex.CyclePath)
	}
	if len(cex.CycleLabels) != 1 || cex.CycleLabels[0] != "loop" {
		t.Fatalf("expected the cycle label %q, got %v", "loop", cex.CycleLabels)
	}
}

func TestVerifyBuchiSatWithNoAcceptingStates(t *testing.T) {
	sem := twoStateLoop()
	ok, _, cex := VerifyBuchi[int](sem, func(int) bool { return false })
	if !ok {
		t.Fatalf("expected sat with no accepting states")
	}
	if cex != nil {
		t.Fatalf("expected no counterexample when sat")
	}
}
