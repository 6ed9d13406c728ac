package scheduler

import "github.com/pscheil/fido/factorgraph"

// FIFO updates every edge's v→f message, then every edge's f→v message, in
// ascending edge-index order, round after round — the simplest possible
// round-robin discipline.
type FIFO struct{}

// NewFIFO returns a FIFO scheduler.
func NewFIFO() *FIFO { return &FIFO{} }

func (s *FIFO) Converge(g *factorgraph.Graph, lambda, epsilon float64, maxIterations int, onIteration OnIterationFunc) (Result, error) {
	if err := g.SeedAbInitio(); err != nil {
		return Result{}, wrapErr("FIFO.Converge", err)
	}
	n := g.EdgeCount()
	var last Result
	for iter := 1; iter <= maxIterations; iter++ {
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			raw, err := g.UpdateVarToFactor(i)
			if err != nil {
				return Result{}, wrapErr("FIFO.Converge", err)
			}
			delta, err := g.CommitVarToFactor(i, raw, lambda)
			if err != nil {
				return Result{}, wrapErr("FIFO.Converge", err)
			}
			if delta > maxDelta {
				maxDelta = delta
			}
		}
		for i := 0; i < n; i++ {
			raw, err := g.UpdateFactorToVar(i)
			if err != nil {
				return Result{}, wrapErr("FIFO.Converge", err)
			}
			delta, err := g.CommitFactorToVar(i, raw, lambda)
			if err != nil {
				return Result{}, wrapErr("FIFO.Converge", err)
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
