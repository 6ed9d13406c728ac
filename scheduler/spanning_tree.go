package scheduler

import (
	"math/rand"

	"github.com/pscheil/fido/factorgraph"
)

// unionFind is the disjoint-set structure this codebase's prim_kruskal
// package builds spanning trees with, adapted here to run Kruskal's
// algorithm over randomly-ordered edges instead of weight-ordered ones,
// which is exactly a uniform(ish) random spanning tree sampler.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) bool {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return false
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
	return true
}

// treeAdjEntry describes one tree edge incident to a bipartite node (either a
// variable or a factor, addressed by a unified node id — variables occupy
// [0,numVars) and factors occupy [numVars,numVars+numFactors)).
type treeAdjEntry struct {
	neighbor int
	edgeIdx  int
}

// RandomSpanningTree samples a fresh random spanning tree of the
// variable/factor bipartite graph every round (via randomized Kruskal
// union-find), then runs one leaves-to-root pass followed by one
// root-to-leaves pass of message updates along that tree — exact
// belief propagation whenever the sampled tree happens to cover the
// whole graph (i.e. the graph itself is a tree); otherwise a
// structured approximation, same as any other loopy schedule.
type RandomSpanningTree struct {
	rnd *rand.Rand
}

// SpanningTreeOption configures a RandomSpanningTree.
type SpanningTreeOption func(*RandomSpanningTree)

// WithRand overrides the random source used to shuffle candidate edges,
// for deterministic tests.
func WithRand(r *rand.Rand) SpanningTreeOption {
	return func(s *RandomSpanningTree) {
		if r != nil {
			s.rnd = r
		}
	}
}

// NewRandomSpanningTree returns a RandomSpanningTree scheduler seeded from
// a fixed default source unless overridden with WithRand.
func NewRandomSpanningTree(opts ...SpanningTreeOption) *RandomSpanningTree {
	s := &RandomSpanningTree{rnd: rand.New(rand.NewSource(1))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RandomSpanningTree) Converge(g *factorgraph.Graph, lambda, epsilon float64, maxIterations int, onIteration OnIterationFunc) (Result, error) {
	if err := g.SeedAbInitio(); err != nil {
		return Result{}, wrapErr("RandomSpanningTree.Converge", err)
	}

	varIDs := g.Variables()
	numVars := len(varIDs)
	varNode := make(map[int]int, numVars) // variable id -> unified node id
	for i, id := range varIDs {
		varNode[id] = i
	}
	numFactors := len(g.Factors())
	// unified node id for factor fi is numVars+fi.

	n := g.EdgeCount()
	if n == 0 || numVars+numFactors == 0 {
		return Result{Iterations: 0, MaxDelta: 0, Converged: true}, nil
	}

	var last Result
	for iter := 1; iter <= maxIterations; iter++ {
		adj := make(map[int][]treeAdjEntry, numVars+numFactors)
		uf := newUnionFind(numVars + numFactors)

		order := s.rnd.Perm(n)
		treeEdges := 0
		wantEdges := numVars + numFactors - 1
		for _, ei := range order {
			if treeEdges >= wantEdges {
				break
			}
			e := g.Edge(ei)
			a := varNode[e.VarID]
			b := numVars + e.FactorIdx
			if uf.union(a, b) {
				adj[a] = append(adj[a], treeAdjEntry{neighbor: b, edgeIdx: ei})
				adj[b] = append(adj[b], treeAdjEntry{neighbor: a, edgeIdx: ei})
				treeEdges++
			}
		}

		order1 := bfsOrder(adj, 0, numVars+numFactors)

		maxDelta := 0.0
		// Leaves-to-root: process deepest nodes first, pulling each node's
		// message toward its parent.
		for i := len(order1) - 1; i >= 1; i-- { // skip root at index 0
			nd := order1[i]
			parentEdge := nd.parentEdge
			delta, err := s.updateTowardParent(g, nd, parentEdge, numVars, lambda)
			if err != nil {
				return Result{}, wrapErr("RandomSpanningTree.Converge", err)
			}
			if delta > maxDelta {
				maxDelta = delta
			}
		}
		// Root-to-leaves: process shallowest nodes first, pushing each
		// node's message toward its children.
		for i := 1; i < len(order1); i++ {
			nd := order1[i]
			delta, err := s.updateTowardChild(g, nd, nd.parentEdge, numVars, lambda)
			if err != nil {
				return Result{}, wrapErr("RandomSpanningTree.Converge", err)
			}
			if delta > maxDelta {
				maxDelta = delta
			}
		}

		if onIteration != nil {
			onIteration(iter, maxDelta)
		}
		last = Result{Iterations: iter, MaxDelta: maxDelta, Converged: maxDelta < epsilon}
		if last.Converged {
			return last, nil
		}
	}
	return last, nil
}

type bfsNode struct {
	id         int
	parentEdge int // -1 for the root
}

// bfsOrder returns every reachable node from root in breadth-first order,
// one bfsNode per node with the tree edge index connecting it to its
// parent (or -1 for the root itself). Unreachable nodes (isolated
// variables with no factor, which cannot occur once AddFactor has run,
// or a disconnected CC slice passed in by mistake) are simply omitted.
func bfsOrder(adj map[int][]treeAdjEntry, root, _ int) []bfsNode {
	visited := map[int]bool{root: true}
	order := []bfsNode{{id: root, parentEdge: -1}}
	queue := []int{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range adj[cur] {
			if visited[e.neighbor] {
				continue
			}
			visited[e.neighbor] = true
			order = append(order, bfsNode{id: e.neighbor, parentEdge: e.edgeIdx})
			queue = append(queue, e.neighbor)
		}
	}
	return order
}

// updateTowardParent recomputes the message flowing from nd toward its
// parent along parentEdge: if nd is a variable, that is the v→f message;
// if nd is a factor, the f→v message.
func (s *RandomSpanningTree) updateTowardParent(g *factorgraph.Graph, nd bfsNode, parentEdge, numVars int, lambda float64) (float64, error) {
	if nd.id < numVars {
		raw, err := g.UpdateVarToFactor(parentEdge)
		if err != nil {
			return 0, err
		}
		return g.CommitVarToFactor(parentEdge, raw, lambda)
	}
	raw, err := g.UpdateFactorToVar(parentEdge)
	if err != nil {
		return 0, err
	}
	return g.CommitFactorToVar(parentEdge, raw, lambda)
}

// updateTowardChild recomputes the message flowing from nd's parent down
// into nd along parentEdge: if nd is a variable, the edge's other
// endpoint is a factor, so this is the f→v message; if nd is a factor,
// it is the v→f message.
func (s *RandomSpanningTree) updateTowardChild(g *factorgraph.Graph, nd bfsNode, parentEdge, numVars int, lambda float64) (float64, error) {
	if nd.id < numVars {
		raw, err := g.UpdateFactorToVar(parentEdge)
		if err != nil {
			return 0, err
		}
		return g.CommitFactorToVar(parentEdge, raw, lambda)
	}
	raw, err := g.UpdateVarToFactor(parentEdge)
	if err != nil {
		return 0, err
	}
	return g.CommitVarToFactor(parentEdge, raw, lambda)
}
