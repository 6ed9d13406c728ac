package factorgraph

import "github.com/pscheil/fido/pmf"

// Factor is a function φ: {0,1}^k → ℝ≥0 over an ordered tuple of adjacent
// variables. Implementations may represent φ as a dense table (unary and
// low-arity factors) or as a parametric closure driven by (de)convolution
// (the adder factors, which would otherwise need a 2^k table). Package
// model provides the concrete factor kinds the message-passer factory
// builds; this interface is what the factor graph and scheduler need from
// any of them.
type Factor interface {
	// Vars returns the ordered tuple of adjacent variable ids. The order is
	// significant: MessageTo's idx and incoming parameters are positional
	// against this order.
	Vars() []int

	// MessageTo computes the outgoing f→v message for the variable at
	// position idx in Vars(), given the current v→f messages for every
	// adjacent variable (incoming[idx] is ignored — a factor never needs
	// its target's own incoming message to compute sum-product). incoming
	// has the same length as Vars().
	MessageTo(idx int, incoming []pmf.PMF) (pmf.PMF, error)
}

// Variable is a binary-domain node mirroring one identification-graph
// vertex id. Its Belief is set to the uniform distribution when the
// variable is created and is not updated afterwards: Graph.Posterior
// computes the marginal from the current edge messages and returns it
// without storing it here.
type Variable struct {
	ID     int
	edges  []int // indices into Graph.edges, incident to this variable
	Belief pmf.PMF
}

// Edges returns the indices of edges incident to this variable. Callers
// should treat the returned slice as read-only.
func (v *Variable) Edges() []int { return v.edges }

// FactorNode wraps a Factor with the edge indices connecting it to its
// adjacent variables, parallel to Factor.Vars().
type FactorNode struct {
	Factor Factor
	edges  []int // indices into Graph.edges, parallel to Factor.Vars()
}

// Edges returns the indices of edges incident to this factor, in the same
// order as Factor.Vars().
func (f *FactorNode) Edges() []int { return f.edges }

// Edge carries the two directed messages between one variable and one
// factor it is adjacent to.
type Edge struct {
	VarID      int
	FactorIdx  int
	PosInVars  int // position of VarID within the factor's Vars() tuple
	VToF       pmf.PMF
	FToV       pmf.PMF
	lastSentVF pmf.PMF // μ_{v→f} as of the last scheduler pass, for delta tracking
	lastSentFV pmf.PMF // μ_{f→v} as of the last scheduler pass, for delta tracking
}
