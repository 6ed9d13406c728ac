// Package gridsearch scans (α,β,γ) combinations against an external FDR
// objective and selects the point that maximizes it, per spec.md §4.7.
package gridsearch

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pscheil/fido/ccdriver"
	"github.com/pscheil/fido/config"
	"github.com/pscheil/fido/idgraph"
	"github.com/pscheil/fido/model"
	"golang.org/x/sync/errgroup"
)

// FDRScorer judges one grid point's inference result from the resulting
// protein posteriors. Implementations are expected to compute an empirical
// FDR against a decoy or ground-truth set and fold it into a single score
// where higher is better; this module places no constraint on the score's
// scale beyond "comparable across calls" (spec.md §6).
type FDRScorer interface {
	EvaluateProteinIDs(proteins []idgraph.ProteinView) float64
}

// Point is one (γ,α,β) combination evaluated during a scan.
type Point struct {
	Gamma, Alpha, Beta float64
}

// Outcome is one evaluated grid point's full record.
type Outcome struct {
	RunID  uuid.UUID
	Point  Point
	Score  float64
	Result *ccdriver.RunResult
}

// Run is a completed scan: every evaluated point plus the winner, which
// has already been re-run with write-back enabled so the identification
// graph's Protein scores reflect the winning hyperparameters.
type Run struct {
	Evaluated []Outcome
	Winner    Outcome
}

func points(cfg config.GridSearchConfig) []Point {
	var gammas, alphas, betas []float64
	for v := cfg.Gamma.Min; v <= cfg.Gamma.Max+1e-12; v += cfg.Gamma.Step {
		gammas = append(gammas, v)
	}
	for v := cfg.Alpha.Min; v <= cfg.Alpha.Max+1e-12; v += cfg.Alpha.Step {
		alphas = append(alphas, v)
	}
	for v := cfg.Beta.Min; v <= cfg.Beta.Max+1e-12; v += cfg.Beta.Step {
		betas = append(betas, v)
	}
	var out []Point
	for _, g := range gammas {
		for _, a := range alphas {
			for _, b := range betas {
				out = append(out, Point{Gamma: g, Alpha: a, Beta: b})
			}
		}
	}
	return out
}

// baseDriver is the shape Scan needs from an *ccdriver.Driver template:
// every field except Factory and SkipWriteBack, which Scan overrides per
// grid point.
type baseDriver = ccdriver.Driver

// Scan evaluates every (γ,α,β) combination cfg describes against g,
// scoring each with scorer, running up to cfg.Workers points
// concurrently. Every candidate point runs with write-back disabled so
// concurrent points never race on g's Protein scores; once the winner is
// chosen by score descending (lexicographic tie-break on (γ,α,β)
// ascending), it is re-run once more with write-back enabled.
func Scan(ctx context.Context, g *idgraph.Graph, cfg config.GridSearchConfig, template baseDriver, scorer FDRScorer) (*Run, error) {
	candidates := points(cfg)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("gridsearch: Scan: empty grid (check min/max/step)")
	}

	outcomes := make([]Outcome, len(candidates))
	eg, egCtx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		eg.SetLimit(cfg.Workers)
	}

	for i, pt := range candidates {
		i, pt := i, pt
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			outcome, err := evaluate(egCtx, g, template, pt, scorer, true)
			if err != nil {
				return fmt.Errorf("gridsearch: Scan(point=%+v): %w", pt, err)
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	winnerIdx := argmaxLexicographic(outcomes)
	winner, err := evaluate(ctx, g, template, outcomes[winnerIdx].Point, scorer, false)
	if err != nil {
		return nil, fmt.Errorf("gridsearch: Scan: final re-run: %w", err)
	}
	winner.Score = outcomes[winnerIdx].Score

	return &Run{Evaluated: outcomes, Winner: winner}, nil
}

func evaluate(ctx context.Context, g *idgraph.Graph, template baseDriver, pt Point, scorer FDRScorer, skipWriteBack bool) (Outcome, error) {
	factory, err := model.NewFactory(model.Params{Gamma: pt.Gamma, Alpha: pt.Alpha, Beta: pt.Beta, Exponent: 1})
	if err != nil {
		return Outcome{}, err
	}
	d := template
	d.Factory = factory
	d.SkipWriteBack = skipWriteBack

	result, err := d.Run(ctx, g)
	if err != nil {
		return Outcome{}, err
	}
	score := scorer.EvaluateProteinIDs(proteinViews(g, result))
	return Outcome{RunID: newRunID(), Point: pt, Score: score, Result: result}, nil
}

// proteinViews projects every Protein posterior result produced into the
// read-only shape an FDRScorer consumes, looking each vertex's accession up
// from g since CCResult.Posteriors carries only ids and beliefs.
func proteinViews(g *idgraph.Graph, result *ccdriver.RunResult) []idgraph.ProteinView {
	var views []idgraph.ProteinView
	for _, cc := range result.CCs {
		for _, p := range cc.Posteriors {
			v, _ := g.Vertex(p.VarID)
			views = append(views, idgraph.ProteinView{ProteinID: v.ID, Accession: v.Accession, Score: p.Dist.At(1)})
		}
	}
	return views
}

// argmaxLexicographic returns the index of the highest-scoring outcome,
// breaking ties by ascending (γ,α,β) so the scan is deterministic across
// runs regardless of goroutine completion order.
func argmaxLexicographic(outcomes []Outcome) int {
	best := 0
	for i := 1; i < len(outcomes); i++ {
		if outcomes[i].Score > outcomes[best].Score {
			best = i
			continue
		}
		if outcomes[i].Score == outcomes[best].Score && lessPoint(outcomes[i].Point, outcomes[best].Point) {
			best = i
		}
	}
	return best
}

func lessPoint(a, b Point) bool {
	if a.Gamma != b.Gamma {
		return a.Gamma < b.Gamma
	}
	if a.Alpha != b.Alpha {
		return a.Alpha < b.Alpha
	}
	return a.Beta < b.Beta
}

// SortByScoreDescending orders a Run's evaluated outcomes best-first, for
// reporting.
func SortByScoreDescending(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].Score > outcomes[j].Score })
}

func newRunID() uuid.UUID {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil
	}
	return id
}
