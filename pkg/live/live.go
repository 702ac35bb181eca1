// Package live implements Büchi emptiness checking over a reachable
// product: build the full reachable state graph, find an accepting
// strongly-connected component that contains a cycle, and reconstruct a
// lasso counterexample (a finite prefix plus a repeating cycle) when one
// exists.
package live

import (
	"sort"

	"github.com/soupcheck/soupcheck/pkg/langsem"
	"github.com/soupcheck/soupcheck/pkg/verrors"
)

// Edge is one transition of the reachable product graph: the action label
// it fired under and the state it leads to.
type Edge[S comparable] struct {
	Label  string
	Target S
}

type parentEdge[S comparable] struct {
	hasParent bool
	parent    S
	edge      Edge[S]
}

// Graph is the fully-explored reachable product: every visited node, its
// full outgoing adjacency (needed by Tarjan), and a BFS parent edge used
// only to reconstruct a prefix trace to any node.
type Graph[S comparable] struct {
	Visited []S
	Adj     map[S][]Edge[S]
	parent  map[S]parentEdge[S]
}

func neighbors[S comparable](sem langsem.Semantics[S], s S) []Edge[S] {
	acts := make([]langsem.Action, len(sem.Actions(s)))
	copy(acts, sem.Actions(s))
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].Name < acts[j].Name })

	var out []Edge[S]
	for _, a := range acts {
		nxts := make([]S, len(sem.Execute(s, a)))
		copy(nxts, sem.Execute(s, a))
		sort.Slice(nxts, func(i, j int) bool {
			return langsem.Repr(nxts[i]) < langsem.Repr(nxts[j])
		})
		for _, n := range nxts {
			out = append(out, Edge[S]{Label: a.Name, Target: n})
		}
	}
	return out
}

// BuildReachable explores sem to exhaustion and returns the full reachable
// graph: every node, and every outgoing edge of every node (not just the
// tree edges a shortest-path search would keep), since SCC discovery needs
// the whole adjacency relation.
func BuildReachable[S comparable](sem langsem.Semantics[S]) *Graph[S] {
	g := &Graph[S]{
		Adj:    map[S][]Edge[S]{},
		parent: map[S]parentEdge[S]{},
	}
	seen := map[S]bool{}
	var queue []S

	roots := make([]S, len(sem.Initials()))
	copy(roots, sem.Initials())
	sort.Slice(roots, func(i, j int) bool { return langsem.Repr(roots[i]) < langsem.Repr(roots[j]) })

	for _, r0 := range roots {
		if seen[r0] {
			continue
		}
		seen[r0] = true
		g.Visited = append(g.Visited, r0)
		queue = append(queue, r0)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		edges := neighbors(sem, cur)
		g.Adj[cur] = edges
		for _, e := range edges {
			if !seen[e.Target] {
				seen[e.Target] = true
				g.parent[e.Target] = parentEdge[S]{hasParent: true, parent: cur, edge: e}
				g.Visited = append(g.Visited, e.Target)
				queue = append(queue, e.Target)
			}
		}
	}
	for _, n := range g.Visited {
		if _, ok := g.Adj[n]; !ok {
			g.Adj[n] = nil
		}
	}
	return g
}

// tarjan runs Tarjan's strongly-connected-components algorithm with an
// explicit work stack, never recursing, so it is safe on graphs whose
// longest chain would overflow the call stack.
func tarjan[S comparable](nodes []S, adj map[S][]Edge[S]) [][]S {
	type frame struct {
		v        S
		children []Edge[S]
		ci       int
	}

	idx := map[S]int{}
	low := map[S]int{}
	onStack := map[S]bool{}
	var stack []S
	var sccs [][]S
	counter := 0

	for _, root := range nodes {
		if _, ok := idx[root]; ok {
			continue
		}
		idx[root] = counter
		low[root] = counter
		counter++
		stack = append(stack, root)
		onStack[root] = true

		work := []*frame{{v: root, children: adj[root]}}
		for len(work) > 0 {
			top := work[len(work)-1]
			if top.ci < len(top.children) {
				w := top.children[top.ci].Target
				top.ci++
				if _, seen := idx[w]; !seen {
					idx[w] = counter
					low[w] = counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, &frame{v: w, children: adj[w]})
				} else if onStack[w] && idx[w] < low[top.v] {
					low[top.v] = idx[w]
				}
				continue
			}

			work = work[:len(work)-1]
			if low[top.v] == idx[top.v] {
				var comp []S
				for {
					n := len(stack) - 1
					w := stack[n]
					stack = stack[:n]
					onStack[w] = false
					comp = append(comp, w)
					if w == top.v {
						break
					}
				}
				sccs = append(sccs, comp)
			}
			if len(work) > 0 {
				caller := work[len(work)-1]
				if low[top.v] < low[caller.v] {
					low[caller.v] = low[top.v]
				}
			}
		}
	}
	return sccs
}

func hasCycle[S comparable](comp []S, adj map[S][]Edge[S]) bool {
	if len(comp) > 1 {
		return true
	}
	n := comp[0]
	for _, e := range adj[n] {
		if e.Target == n {
			return true
		}
	}
	return false
}

// findAcceptingCycle scans the SCCs of g in a deterministic order (by the
// lexicographically smallest langsem.Repr of any member) and returns the
// lexicographically smallest accepting node inside the first SCC that both
// contains a cycle and has an accepting member.
func findAcceptingCycle[S comparable](g *Graph[S], accepting func(S) bool) (S, bool) {
	sccs := tarjan(g.Visited, g.Adj)
	sort.Slice(sccs, func(i, j int) bool {
		return sccKey(sccs[i]) < sccKey(sccs[j])
	})

	var zero S
	for _, comp := range sccs {
		if !hasCycle(comp, g.Adj) {
			continue
		}
		var candidates []S
		for _, n := range comp {
			if accepting(n) {
				candidates = append(candidates, n)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		sort.Slice(candidates, func(i, j int) bool {
			return langsem.Repr(candidates[i]) < langsem.Repr(candidates[j])
		})
		return candidates[0], true
	}
	return zero, false
}

func sccKey[S comparable](comp []S) string {
	best := langsem.Repr(comp[0])
	for _, n := range comp[1:] {
		if r := langsem.Repr(n); r < best {
			best = r
		}
	}
	return best
}

// reconstructPrefix walks g's BFS parent chain from goal back to its root,
// then prepends a synthetic self-loop on the root labeled "init": the
// root was discovered with no real incoming edge, and the lasso trace
// format always needs states = edges+1.
func reconstructPrefix[S comparable](g *Graph[S], goal S) ([]S, []string) {
	var revStates []S
	var revLabels []string
	cur := goal
	for {
		revStates = append(revStates, cur)
		pe, ok := g.parent[cur]
		if !ok {
			break
		}
		revLabels = append(revLabels, pe.edge.Label)
		cur = pe.parent
	}

	states := make([]S, len(revStates))
	for i, s := range revStates {
		states[len(revStates)-1-i] = s
	}
	labels := make([]string, len(revLabels))
	for i, l := range revLabels {
		labels[len(revLabels)-1-i] = l
	}

	if len(states) == 0 {
		return states, labels
	}
	paddedStates := append([]S{states[0]}, states...)
	paddedLabels := append([]string{"init"}, labels...)
	return paddedStates, paddedLabels
}

// findCycleFrom returns a cycle through start within scc, preferring a
// direct self-loop and otherwise exploring scc depth-first until some node
// closes an edge back to start. lossy is true only when the SCC structure
// degenerated and a synthetic stutter self-loop was substituted.
func findCycleFrom[S comparable](start S, scc map[S]bool, adj map[S][]Edge[S]) (nodes []S, labels []string, lossy bool) {
	for _, e := range adj[start] {
		if e.Target == start {
			return []S{start, start}, []string{e.Label}, false
		}
	}

	type pred struct {
		from  S
		label string // label of the edge pred.from -> this node
	}
	preds := map[S]pred{}
	seen := map[S]bool{start: true}
	stack := []S{start}

	var closingNode S
	var closingLabel string
	found := false

search:
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range adj[v] {
			if !scc[e.Target] {
				continue
			}
			if e.Target == start {
				closingNode, closingLabel, found = v, e.Label, true
				break search
			}
			if !seen[e.Target] {
				seen[e.Target] = true
				preds[e.Target] = pred{from: v, label: e.Label}
				stack = append(stack, e.Target)
			}
		}
	}
	if !found {
		return []S{start, start}, []string{"stutter"}, true
	}

	var revNodes []S
	var revLabels []string
	for cur := closingNode; cur != start; {
		revNodes = append(revNodes, cur)
		p := preds[cur]
		revLabels = append(revLabels, p.label)
		cur = p.from
	}

	nodes = []S{start}
	for i := len(revNodes) - 1; i >= 0; i-- {
		nodes = append(nodes, revNodes[i])
	}
	nodes = append(nodes, start)

	labels = make([]string, 0, len(revLabels)+1)
	for i := len(revLabels) - 1; i >= 0; i-- {
		labels = append(labels, revLabels[i])
	}
	labels = append(labels, closingLabel)

	return nodes, labels, false
}

// CounterExample is a lasso: a finite prefix from a root to an accepting
// state, followed by a cycle back to (a state in the same SCC as) that
// accepting state, witnessing an infinite accepting run.
type CounterExample[S comparable] struct {
	PrefixPath   []S
	PrefixLabels []string
	CyclePath    []S
	CycleLabels  []string

	// Err is verrors.ErrEmptyCounterexample when the cycle could not be
	// reconstructed exactly and a synthetic stutter self-loop stands in for
	// it; nil otherwise. Check with errors.Is.
	Err error
}

// VerifyBuchi explores sem exhaustively and searches for an accepting
// cycle. ok is true (sat) when no such cycle exists; otherwise cex
// witnesses one. visited is the number of distinct product states
// explored, reported regardless of the verdict.
func VerifyBuchi[S comparable](sem langsem.Semantics[S], accepting func(S) bool) (ok bool, visited int, cex *CounterExample[S]) {
	g := BuildReachable(sem)
	accNode, found := findAcceptingCycle(g, accepting)
	if !found {
		return true, len(g.Visited), nil
	}

	prefixPath, prefixLabels := reconstructPrefix(g, accNode)

	sccSet := map[S]bool{}
	for _, comp := range tarjan(g.Visited, g.Adj) {
		inComp := false
		for _, n := range comp {
			if n == accNode {
				inComp = true
				break
			}
		}
		if inComp {
			for _, n := range comp {
				sccSet[n] = true
			}
			break
		}
	}

	cyclePath, cycleLabels, lossy := findCycleFrom(accNode, sccSet, g.Adj)
	cex = &CounterExample[S]{
		PrefixPath:   prefixPath,
		PrefixLabels: prefixLabels,
		CyclePath:    cyclePath,
		CycleLabels:  cycleLabels,
	}
	if lossy {
		cex.Err = verrors.ErrEmptyCounterexample
	}
	return false, len(g.Visited), cex
}
