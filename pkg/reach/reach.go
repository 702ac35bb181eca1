// Package reach implements breadth-first reachability search over any
// langsem.Semantics, used to check safety properties by searching the
// safety-variant product for a reachable accepting (violating) state.
package reach

import (
	"sort"

	"github.com/soupcheck/soupcheck/pkg/langsem"
)

type edge[S any] struct {
	label string
	node  S
}

func neighbors[S comparable](sem langsem.Semantics[S], s S) []edge[S] {
	acts := make([]langsem.Action, len(sem.Actions(s)))
	copy(acts, sem.Actions(s))
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].Name < acts[j].Name })

	var out []edge[S]
	for _, a := range acts {
		nxts := make([]S, len(sem.Execute(s, a)))
		copy(nxts, sem.Execute(s, a))
		sort.Slice(nxts, func(i, j int) bool {
			return langsem.Repr(nxts[i]) < langsem.Repr(nxts[j])
		})
		for _, n := range nxts {
			out = append(out, edge[S]{label: a.Name, node: n})
		}
	}
	return out
}

// OnEntry is invoked exactly once per discovered node, the first time it is
// visited: parent is nil for the roots, edgeLabel is the action label on the
// edge that discovered node. Returning true stops the search early.
type OnEntry[S comparable] func(parent *S, node S, edgeLabel string) bool

// Result records what BFS discovered: the visitation order, and enough of
// the parent/edge-label relation to reconstruct a witness path to any
// visited node.
type Result[S comparable] struct {
	Visited   []S
	parent    map[S]S
	hasParent map[S]bool
	edgeLabel map[S]string
}

// IsRoot reports whether node was one of sem's initial configurations
// (rather than discovered via some edge).
func (r *Result[S]) IsRoot(node S) bool {
	return !r.hasParent[node]
}

// BFS explores sem from its initial configurations, breadth-first, visiting
// successors of each node in a deterministic order (action name, then
// langsem.Repr of the resulting state). onEntry fires once per newly
// discovered node; returning true stops the search (the node that triggered
// the stop is still recorded).
func BFS[S comparable](sem langsem.Semantics[S], onEntry OnEntry[S]) *Result[S] {
	res := &Result[S]{
		parent:    map[S]S{},
		hasParent: map[S]bool{},
		edgeLabel: map[S]string{},
	}
	seen := map[S]bool{}
	var queue []S

	roots := make([]S, len(sem.Initials()))
	copy(roots, sem.Initials())
	sort.Slice(roots, func(i, j int) bool { return langsem.Repr(roots[i]) < langsem.Repr(roots[j]) })

	done := false
	for _, r0 := range roots {
		if seen[r0] {
			continue
		}
		seen[r0] = true
		res.Visited = append(res.Visited, r0)
		queue = append(queue, r0)
		if onEntry(nil, r0, "") {
			done = true
			break
		}
	}

	for !done && len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range neighbors(sem, cur) {
			if seen[e.node] {
				continue
			}
			seen[e.node] = true
			res.parent[e.node] = cur
			res.hasParent[e.node] = true
			res.edgeLabel[e.node] = e.label
			res.Visited = append(res.Visited, e.node)
			queue = append(queue, e.node)
			if onEntry(&cur, e.node, e.label) {
				done = true
				break
			}
		}
	}
	return res
}

// ReconstructPath walks the parent chain from goal back to the root that
// discovered it, returning the path in root-to-goal order.
func ReconstructPath[S comparable](res *Result[S], goal S) []S {
	var rev []S
	cur := goal
	for {
		rev = append(rev, cur)
		p, ok := res.parent[cur]
		if !ok {
			break
		}
		cur = p
	}
	out := make([]S, len(rev))
	for i, s := range rev {
		out[len(rev)-1-i] = s
	}
	return out
}

// ReconstructLabels returns the action label on each edge of path, in
// root-to-goal order; len(result) == len(path)-1.
func ReconstructLabels[S comparable](res *Result[S], path []S) []string {
	if len(path) == 0 {
		return nil
	}
	labels := make([]string, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		labels = append(labels, res.edgeLabel[path[i]])
	}
	return labels
}
