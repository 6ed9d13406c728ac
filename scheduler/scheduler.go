// Package scheduler drives a factorgraph.Graph to a fixpoint (or an
// iteration cap) by repeatedly recomputing and committing directed edge
// messages, per spec.md §4.4. Three disciplines are provided — priority,
// fifo, random_spanning_tree — differing only in the order messages are
// recomputed within a round; all three share the same dampening and
// convergence-threshold contract.
package scheduler

import (
	"errors"
	"fmt"

	"github.com/pscheil/fido/factorgraph"
)

// ErrMaxIterations names the "iteration budget exhausted" condition. No
// scheduler in this package returns it: Converge reports that case as a
// Result with Converged == false and a nil error, and bp turns such a
// Result into a *bp.ConvergenceWarning.
var ErrMaxIterations = errors.New("scheduler: max iterations reached without convergence")

// OnIterationFunc is invoked once per completed round with the 1-based
// round number and the largest L∞ message delta observed during it,
// letting callers log progress or plot convergence curves.
type OnIterationFunc func(iteration int, maxDelta float64)

// Result reports how a Converge call ended.
type Result struct {
	Iterations int
	MaxDelta   float64
	Converged  bool
}

// Scheduler drives one factor graph to convergence.
type Scheduler interface {
	// Converge seeds the graph ab initio and repeatedly recomputes and
	// commits edge messages, damping each commit by lambda, until the
	// largest L∞ delta observed in a round drops below epsilon or
	// maxIterations rounds have run. onIteration may be nil.
	Converge(g *factorgraph.Graph, lambda, epsilon float64, maxIterations int, onIteration OnIterationFunc) (Result, error)
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("scheduler: %s: %w", op, err)
}
