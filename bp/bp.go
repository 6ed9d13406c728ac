// Package bp drives loopy belief propagation to a fixpoint over one
// factorgraph.Graph and extracts posteriors, per spec.md §4.5's
// estimate_posteriors operation.
package bp

import (
	"fmt"

	"github.com/pscheil/fido/factorgraph"
	"github.com/pscheil/fido/pmf"
	"github.com/pscheil/fido/scheduler"
)

// ConvergenceWarning reports that a scheduler exhausted its iteration
// budget without the largest message delta falling under epsilon. It is
// not a fatal error: per spec.md §7, ccdriver records it and still
// extracts whatever posteriors the graph has at the point the budget ran
// out.
type ConvergenceWarning struct {
	Iterations int
	MaxDelta   float64
	Epsilon    float64
}

func (w *ConvergenceWarning) Error() string {
	return fmt.Sprintf("bp: did not converge after %d iterations: max delta %g >= epsilon %g", w.Iterations, w.MaxDelta, w.Epsilon)
}

// Posterior pairs a variable id with its estimated marginal.
type Posterior struct {
	VarID int
	Dist  pmf.PMF
}

// EstimatePosteriors seeds g ab initio, runs sched to a fixpoint (or its
// iteration cap), and returns the posterior of every variable in varIDs in
// the order given. If sched exhausts maxIterations without converging,
// EstimatePosteriors still returns every posterior it has, plus a non-nil
// *ConvergenceWarning — callers that want to treat this as fatal should
// check for it explicitly; every other returned error is a genuine
// propagation failure (ConfigError/StructuralError territory) and carries
// no posteriors.
func EstimatePosteriors(g *factorgraph.Graph, sched scheduler.Scheduler, varIDs []int, lambda, epsilon float64, maxIterations int, onIteration scheduler.OnIterationFunc) ([]Posterior, error) {
	result, err := sched.Converge(g, lambda, epsilon, maxIterations, onIteration)
	if err != nil {
		return nil, fmt.Errorf("bp: EstimatePosteriors: %w", err)
	}

	posteriors := make([]Posterior, len(varIDs))
	for i, id := range varIDs {
		dist, err := g.Posterior(id)
		if err != nil {
			return nil, fmt.Errorf("bp: EstimatePosteriors: %w", err)
		}
		posteriors[i] = Posterior{VarID: id, Dist: dist}
	}

	if !result.Converged {
		return posteriors, &ConvergenceWarning{
			Iterations: result.Iterations,
			MaxDelta:   result.MaxDelta,
			Epsilon:    epsilon,
		}
	}
	return posteriors, nil
}
