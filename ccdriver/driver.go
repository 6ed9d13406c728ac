package ccdriver

import (
	"context"
	"errors"
	"fmt"

	"github.com/pscheil/fido/bp"
	"github.com/pscheil/fido/idgraph"
	"github.com/pscheil/fido/model"
	"github.com/pscheil/fido/scheduler"
	"golang.org/x/sync/errgroup"
)

// CCResult is what one connected component's inference produced.
type CCResult struct {
	CCID       int // the component's smallest vertex id, for stable logging
	Posteriors []bp.Posterior
	Warning    *bp.ConvergenceWarning // non-nil if the scheduler hit its iteration cap
	Structural *idgraph.ErrStructural // non-nil if this CC failed validation
	Skipped    bool                   // true if this CC was degenerate (< 2 vertices) and never ran
}

// RunResult collects every CC's outcome from one Driver.Run call.
type RunResult struct {
	CCs []CCResult
}

// Driver is the CC-parallel inference engine: it partitions an
// identification graph into connected components, builds and converges
// one factor graph per component — single-threaded within a component,
// concurrently across components via golang.org/x/sync/errgroup, exactly
// as this codebase's worker-pool components elsewhere in the pack fan out
// independent units of work — and writes each Protein's posterior back
// onto the identification graph.
type Driver struct {
	Factory       *model.Factory
	Scheduler     scheduler.Scheduler
	Lambda        float64
	Epsilon       float64
	MaxIterations int
	Workers       int
	OnIteration   func(ccID, iteration int, maxDelta float64)

	// TopPSMsPerSpectrum is forwarded to idgraph.Graph.BuildGraph before
	// the graph is partitioned into connected components; 0 keeps every
	// PSM regardless of spectrum (spec.md §6).
	TopPSMsPerSpectrum int

	// SkipWriteBack disables writing posteriors onto the identification
	// graph's Protein vertices. gridsearch sets this for every candidate
	// point except the final winning re-run, so concurrently-scanned
	// points never race on the same graph's scores.
	SkipWriteBack bool
}

// Run processes every connected component of g. A *idgraph.ErrStructural
// from one CC is recorded in that CC's CCResult and does not stop the
// others; any other error aborts the whole run (it indicates a
// configuration or programming fault, not a bad input graph) and Run
// returns it directly, with ctx cancellation propagated to in-flight CCs
// via errgroup.
func (d *Driver) Run(ctx context.Context, g *idgraph.Graph) (*RunResult, error) {
	if err := g.BuildGraph(d.TopPSMsPerSpectrum); err != nil {
		return nil, fmt.Errorf("ccdriver: Run: %w", err)
	}

	ccs := g.ConnectedComponents()
	results := make([]CCResult, len(ccs))

	eg, egCtx := errgroup.WithContext(ctx)
	if d.Workers > 0 {
		eg.SetLimit(d.Workers)
	}

	for i, cc := range ccs {
		i, cc := i, cc
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			// CCs with fewer than 2 vertices are degenerate (spec.md
			// §4.3): an isolated vertex with no evidence has nothing to
			// infer and is skipped rather than given a flat-prior
			// "posterior".
			if ids := cc.VertexIDs(); len(ids) < 2 {
				results[i] = CCResult{CCID: ids[0], Skipped: true}
				return nil
			}
			res, err := d.processCC(cc)
			if err != nil {
				var structErr *idgraph.ErrStructural
				if errors.As(err, &structErr) {
					results[i] = CCResult{CCID: cc.VertexIDs()[0], Structural: structErr}
					return nil
				}
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("ccdriver: Run: %w", err)
	}
	return &RunResult{CCs: results}, nil
}

func (d *Driver) processCC(cc *idgraph.CC) (CCResult, error) {
	ccID := cc.VertexIDs()[0]

	graph, proteinVars, err := BuildFactorGraph(cc, d.Factory)
	if err != nil {
		return CCResult{}, err
	}

	onIter := func(iter int, maxDelta float64) {
		if d.OnIteration != nil {
			d.OnIteration(ccID, iter, maxDelta)
		}
	}
	posteriors, err := bp.EstimatePosteriors(graph, d.Scheduler, proteinVars, d.Lambda, d.Epsilon, d.MaxIterations, onIter)

	var warning *bp.ConvergenceWarning
	if err != nil {
		if !errors.As(err, &warning) {
			return CCResult{}, fmt.Errorf("ccdriver: processCC(cc=%d): %w", ccID, err)
		}
	}

	if !d.SkipWriteBack {
		for _, p := range posteriors {
			if err := cc.SetScore(p.VarID, p.Dist.At(1)); err != nil {
				return CCResult{}, fmt.Errorf("ccdriver: processCC(cc=%d): %w", ccID, err)
			}
		}
	}

	return CCResult{CCID: ccID, Posteriors: posteriors, Warning: warning}, nil
}
