// Package factorgraph implements the binary-variable factor graph that
// belief propagation runs over: variable nodes with domain {0,1}, factor
// nodes evaluated either as a dense table or as a parametric closure, and
// edges carrying the two directed messages μ_{v→f} and μ_{f→v}.
//
// Storage follows the adjacency-list-with-dense-integer-ids style used
// elsewhere in this codebase's graph packages rather than a pointer graph:
// variables and factors are held in slices/maps keyed by small integer ids,
// and every edge's pair of messages lives in a single edge-indexed slice so
// the scheduler can iterate deterministically and cache-friendly.
//
// A Graph is built once per connected component by ccdriver.BuildFactorGraph
// and is owned exclusively by that component: it holds no references back
// to the identification graph beyond the integer ids mirrored in its
// Variable nodes, which the CC driver uses to write posteriors back.
package factorgraph

import "errors"

// ErrVariableNotFound is returned when an operation references a variable
// id that was never added to the graph.
var ErrVariableNotFound = errors.New("factorgraph: variable not found")

// ErrFactorArityZero is returned when AddFactor is given a factor with no
// adjacent variables — every factor must touch at least one variable.
var ErrFactorArityZero = errors.New("factorgraph: factor has zero arity")

// ErrNilFactor is returned when AddFactor is given a nil Factor.
var ErrNilFactor = errors.New("factorgraph: nil factor")
