package reach

import (
	"testing"

	"github.com/soupcheck/soupcheck/pkg/soup"
)

func lineSoup(n int) *soup.Semantics[int] {
	return soup.New(soup.Soup[int]{
		Pieces: []soup.Piece[int]{
			{
				Name:   "next",
				Guard:  func(c int) bool { return c < n },
				Effect: func(c int) int { return c + 1 },
			},
		},
		Init: []int{0},
	})
}

func TestBFSFindsGoal(t *testing.T) {
	sem := lineSoup(5)
	var goal *int
	res := BFS[int](sem, func(_ *int, node int, _ string) bool {
		if node == 3 {
			v := node
			goal = &v
			return true
		}
		return false
	})
	if goal == nil {
		t.Fatalf("expected to find node 3")
	}
	path := ReconstructPath(res, *goal)
	want := []int{0, 1, 2, 3}
	if len(path) != len(want) {
		t.Fatalf("expected path %v, got %v", want, path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("expected path %v, got %v", want, path)
		}
	}
	labels := ReconstructLabels(res, path)
	for _, lab := range labels {
		if lab != "next" {
			t.Fatalf("expected every edge labeled %q, got %q", "next", lab)
		}
	}
}

func TestBFSExhaustsWithoutGoal(t *testing.T) {
	sem := lineSoup(2)
	res := BFS[int](sem, func(_ *int, _ int, _ string) bool { return false })
	if len(res.Visited) != 3 { // 0, 1, 2
		t.Fatalf("expected to visit 3 states, visited %v", res.Visited)
	}
	if !res.IsRoot(0) {
		t.Fatalf("expected 0 to be a root")
	}
	if res.IsRoot(1) {
		t.Fatalf("expected 1 to not be a root")
	}
}

func letterGraph() *soup.Semantics[string] {
	// A -> B, A -> C, B -> D: a small fixed graph distinct from the mutex
	// and Hanoi fixtures, isolating plain reachability counting from any
	// larger example's incidental behavior.
	edges := map[string][]string{
		"A": {"B", "C"},
		"B": {"D"},
	}
	var pieces []soup.Piece[string]
	for from, tos := range edges {
		for _, to := range tos {
			from, to := from, to
			pieces = append(pieces, soup.Piece[string]{
				Name:   from + "->" + to,
				Guard:  func(c string) bool { return c == from },
				Effect: func(string) string { return to },
			})
		}
	}
	return soup.New(soup.Soup[string]{Pieces: pieces, Init: []string{"A"}})
}

func TestBFSExploresAllReachableStatesInSmallGraph(t *testing.T) {
	sem := letterGraph()
	res := BFS[string](sem, func(_ *string, _ string, _ string) bool { return false })

	want := map[string]bool{"A": true, "B": true, "C": true, "D": true}
	if len(res.Visited) != len(want) {
		t.Fatalf("expected to visit %v, got %v", want, res.Visited)
	}
	for _, v := range res.Visited {
		if !want[v] {
			t.Fatalf("unexpected state %q in visited set %v", v, res.Visited)
		}
	}
}

func TestBFSVisitsChildrenInDeterministicOrder(t *testing.T) {
	sem := soup.New(soup.Soup[int]{
		Pieces: []soup.Piece[int]{
			{Name: "toC", Guard: func(c int) bool { return c == 0 }, Effect: func(int) int { return 30 }},
			{Name: "toA", Guard: func(c int) bool { return c == 0 }, Effect: func(int) int { return 10 }},
			{Name: "toB", Guard: func(c int) bool { return c == 0 }, Effect: func(int) int { return 20 }},
		},
		Init: []int{0},
	})
	var order []int
	BFS[int](sem, func(_ *int, node int, _ string) bool {
		if node != 0 {
			order = append(order, node)
		}
		return false
	})
	want := []int{10, 20, 30}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected deterministic action-name order %v, got %v", want, order)
		}
	}
}
