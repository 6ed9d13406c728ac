package factorgraph

import (
	"fmt"

	"github.com/pscheil/fido/pmf"
)

// Graph is a factor graph over binary variables, built once per connected
// component. It is not safe for concurrent mutation from multiple
// goroutines — per spec, inference inside one CC is strictly single-
// threaded; concurrency happens only across CCs, each owning its own Graph.
type Graph struct {
	variables map[int]*Variable
	varOrder  []int // insertion order, for deterministic iteration
	factors   []*FactorNode
	edges     []*Edge
}

// New returns an empty factor graph.
func New() *Graph {
	return &Graph{variables: make(map[int]*Variable)}
}

// AddVariable registers a variable with the given id if it does not already
// exist, and returns it. Newly created variables start with a uniform
// belief over {0,1}; AddAbInitioEdges (invoked by the scheduler on
// initialization) reseeds edge messages separately.
func (g *Graph) AddVariable(id int) *Variable {
	if v, ok := g.variables[id]; ok {
		return v
	}
	v := &Variable{ID: id, Belief: pmf.Uniform(0, 1)}
	g.variables[id] = v
	g.varOrder = append(g.varOrder, id)
	return v
}

// Variable returns the variable with the given id, or (nil, false) if it
// has not been added.
func (g *Graph) Variable(id int) (*Variable, bool) {
	v, ok := g.variables[id]
	return v, ok
}

// Variables returns every variable id in insertion order.
func (g *Graph) Variables() []int {
	out := make([]int, len(g.varOrder))
	copy(out, g.varOrder)
	return out
}

// VariableCount reports the number of variables in the graph.
func (g *Graph) VariableCount() int { return len(g.variables) }

// AddFactor inserts f into the graph, creating an edge for each of its
// adjacent variables (auto-adding any variable id not yet present) and
// returns the resulting FactorNode. Edge messages are seeded to the
// uniform distribution; callers that want the ab-initio seeding described
// in spec.md §4.4 (unary factors seed their own outgoing message) should
// call Graph.SeedAbInitio after the full graph is built.
func (g *Graph) AddFactor(f Factor) (*FactorNode, error) {
	if f == nil {
		return nil, ErrNilFactor
	}
	vars := f.Vars()
	if len(vars) == 0 {
		return nil, ErrFactorArityZero
	}

	factorIdx := len(g.factors)
	node := &FactorNode{Factor: f}
	for pos, varID := range vars {
		g.AddVariable(varID)
		edgeIdx := len(g.edges)
		e := &Edge{
			VarID:     varID,
			FactorIdx: factorIdx,
			PosInVars: pos,
			VToF:      pmf.Uniform(0, 1),
			FToV:      pmf.Uniform(0, 1),
		}
		g.edges = append(g.edges, e)
		node.edges = append(node.edges, edgeIdx)
		g.variables[varID].edges = append(g.variables[varID].edges, edgeIdx)
	}
	g.factors = append(g.factors, node)
	return node, nil
}

// Factors returns every factor node, in insertion order.
func (g *Graph) Factors() []*FactorNode { return g.factors }

// Edge returns the edge at index i.
func (g *Graph) Edge(i int) *Edge { return g.edges[i] }

// EdgeCount reports the total number of directed edge pairs in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// SeedAbInitio seeds every edge's message pair to the uniform distribution,
// except that a unary factor's one outgoing f→v message is seeded from the
// factor itself (computed with no incoming messages needed, since a unary
// factor never reads incoming[0]). This matches spec.md §4.4's
// add_ab_initio_edges initialization.
func (g *Graph) SeedAbInitio() error {
	for _, e := range g.edges {
		e.VToF = pmf.Uniform(0, 1)
		e.FToV = pmf.Uniform(0, 1)
		e.lastSentVF = e.VToF
		e.lastSentFV = e.FToV
	}
	for fi, node := range g.factors {
		if len(node.edges) != 1 {
			continue
		}
		msg, err := node.Factor.MessageTo(0, []pmf.PMF{pmf.Uniform(0, 1)})
		if err != nil {
			return fmt.Errorf("factorgraph: SeedAbInitio: factor %d: %w", fi, err)
		}
		e := g.edges[node.edges[0]]
		e.FToV = msg
	}
	return nil
}

// UpdateVarToFactor recomputes the μ_{v→f} message on edge e: the product
// of all f'→v incoming messages at v, over every factor incident to v
// except the one this edge belongs to, normalized. If v has no other
// incident factors, the message is the uniform distribution (no evidence
// yet to combine).
func (g *Graph) UpdateVarToFactor(edgeIdx int) (pmf.PMF, error) {
	e := g.edges[edgeIdx]
	v := g.variables[e.VarID]
	acc := pmf.Uniform(0, 1) // multiplicative identity, up to the renormalization Product always performs
	any := false
	for _, otherEdgeIdx := range v.edges {
		if otherEdgeIdx == edgeIdx {
			continue
		}
		other := g.edges[otherEdgeIdx]
		product, err := pmf.Product(acc, other.FToV)
		if err != nil {
			return pmf.PMF{}, fmt.Errorf("factorgraph: UpdateVarToFactor(var=%d): %w", e.VarID, err)
		}
		acc = product
		any = true
	}
	if !any {
		return pmf.Uniform(0, 1), nil
	}
	return acc, nil
}

// UpdateFactorToVar recomputes the μ_{f→v} message on edge e by asking the
// factor for its message to the variable at e.PosInVars, given the current
// v→f messages of all of the factor's adjacent variables.
func (g *Graph) UpdateFactorToVar(edgeIdx int) (pmf.PMF, error) {
	e := g.edges[edgeIdx]
	node := g.factors[e.FactorIdx]
	incoming := make([]pmf.PMF, len(node.edges))
	for i, ei := range node.edges {
		incoming[i] = g.edges[ei].VToF
	}
	msg, err := node.Factor.MessageTo(e.PosInVars, incoming)
	if err != nil {
		return pmf.PMF{}, fmt.Errorf("factorgraph: UpdateFactorToVar(factor=%d): %w", e.FactorIdx, err)
	}
	return msg, nil
}

// Posterior computes b(v) = normalize(Π_{f∈N(v)} μ_{f→v}) for the variable
// v, reading directly off the current edge messages without requiring a
// prior scheduler pass (the scheduler is expected to have already driven
// the graph to convergence; Posterior itself performs no message updates).
func (g *Graph) Posterior(varID int) (pmf.PMF, error) {
	v, ok := g.variables[varID]
	if !ok {
		return pmf.PMF{}, fmt.Errorf("factorgraph: Posterior(%d): %w", varID, ErrVariableNotFound)
	}
	if len(v.edges) == 0 {
		return pmf.Uniform(0, 1), nil
	}
	acc := pmf.Uniform(0, 1)
	for _, edgeIdx := range v.edges {
		e := g.edges[edgeIdx]
		product, err := pmf.Product(acc, e.FToV)
		if err != nil {
			return pmf.PMF{}, fmt.Errorf("factorgraph: Posterior(%d): %w", varID, err)
		}
		acc = product
	}
	return acc, nil
}

// CommitVarToFactor dampens raw against the edge's current μ_{v→f} (old),
// by λ·old + (1-λ)·raw, stores it as the edge's new v→f message, and
// returns the L∞ distance between the newly stored message and the message
// last committed (the scheduler's convergence/priority signal). The very
// first commit on an edge is compared against the ab-initio seed.
func (g *Graph) CommitVarToFactor(edgeIdx int, raw pmf.PMF, lambda float64) (float64, error) {
	e := g.edges[edgeIdx]
	damped, err := pmf.Dampen(e.VToF, raw, lambda)
	if err != nil {
		return 0, fmt.Errorf("factorgraph: CommitVarToFactor(edge=%d): %w", edgeIdx, err)
	}
	delta := pmf.LInfDistance(e.lastSentVF, damped)
	e.VToF = damped
	e.lastSentVF = damped
	return delta, nil
}

// CommitFactorToVar is CommitVarToFactor's f→v counterpart.
func (g *Graph) CommitFactorToVar(edgeIdx int, raw pmf.PMF, lambda float64) (float64, error) {
	e := g.edges[edgeIdx]
	damped, err := pmf.Dampen(e.FToV, raw, lambda)
	if err != nil {
		return 0, fmt.Errorf("factorgraph: CommitFactorToVar(edge=%d): %w", edgeIdx, err)
	}
	delta := pmf.LInfDistance(e.lastSentFV, damped)
	e.FToV = damped
	e.lastSentFV = damped
	return delta, nil
}
