package integration_test

import (
	"context"
	"testing"

	"github.com/pscheil/fido/ccdriver"
	"github.com/pscheil/fido/idgraph/fixtures"
	"github.com/pscheil/fido/model"
	"github.com/pscheil/fido/pmf"
	"github.com/pscheil/fido/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runChain(t *testing.T, gamma, score float64, sched scheduler.Scheduler) float64 {
	t.Helper()
	g, ids := fixtures.SingleChain(score, 1)
	factory, err := model.NewFactory(model.Params{Gamma: gamma, Alpha: 0.1, Beta: 0.001, Exponent: 1})
	require.NoError(t, err)
	d := &ccdriver.Driver{Factory: factory, Scheduler: sched, Epsilon: 1e-10, MaxIterations: 200, Workers: 1}
	_, err = d.Run(context.Background(), g)
	require.NoError(t, err)
	v, _ := g.Vertex(ids["p1"])
	return v.Score
}

// Every posterior produced anywhere in this suite is itself a PMF, so its
// mass must sum to 1 and every entry must be non-negative; this checks
// that invariant directly against pmf's own normalization contract rather
// than any one scheduler's output.
func TestPMFInvariantSumToOneAndNonNegative(t *testing.T) {
	for _, p := range []float64{0, 0.001, 0.5, 0.999, 1} {
		m := pmf.Bernoulli(p)
		assert.InDelta(t, 1.0, m.Sum(), 1e-12)
		assert.GreaterOrEqual(t, m.At(0), 0.0)
		assert.GreaterOrEqual(t, m.At(1), 0.0)
	}
}

// On an acyclic factor graph (the single-chain fixture has no loops), the
// two-pass random-spanning-tree schedule should reach the same fixpoint
// as FIFO, since loopy BP is exact on trees.
func TestTreeExactnessMatchesAcrossSchedulers(t *testing.T) {
	fifoScore := runChain(t, 0.8, 0.9, scheduler.NewFIFO())
	treeScore := runChain(t, 0.8, 0.9, scheduler.NewRandomSpanningTree())
	priorityScore := runChain(t, 0.8, 0.9, scheduler.NewPriority())
	assert.InDelta(t, fifoScore, treeScore, 1e-6)
	assert.InDelta(t, fifoScore, priorityScore, 1e-6)
}

// Re-running the same configuration against the same graph must be
// idempotent: inference has no hidden mutable state that leaks between
// runs once write-back has happened once.
func TestRerunIsIdempotent(t *testing.T) {
	g, ids := fixtures.SingleChain(0.9, 1)
	factory, err := model.NewFactory(model.DefaultParams())
	require.NoError(t, err)
	d := &ccdriver.Driver{Factory: factory, Scheduler: scheduler.NewFIFO(), Epsilon: 1e-10, MaxIterations: 200, Workers: 1}

	_, err = d.Run(context.Background(), g)
	require.NoError(t, err)
	v1, _ := g.Vertex(ids["p1"])

	_, err = d.Run(context.Background(), g)
	require.NoError(t, err)
	v2, _ := g.Vertex(ids["p1"])

	assert.InDelta(t, v1.Score, v2.Score, 1e-12)
}

// A higher protein prior (γ) must never decrease the posterior, all else
// equal.
func TestPosteriorIsMonotoneInPrior(t *testing.T) {
	low := runChain(t, 0.2, 0.9, scheduler.NewFIFO())
	high := runChain(t, 0.8, 0.9, scheduler.NewFIFO())
	assert.Greater(t, high, low)
}

// Stronger PSM evidence must never decrease the protein's posterior, all
// else equal.
func TestPosteriorIsMonotoneInEvidence(t *testing.T) {
	weak := runChain(t, 0.5, 0.3, scheduler.NewFIFO())
	strong := runChain(t, 0.5, 0.95, scheduler.NewFIFO())
	assert.Greater(t, strong, weak)
}

// Dampening with λ=0 must reproduce the undamped update exactly; this is
// the scheduler-level analog of pmf.TestDampenZeroLambdaIsUndamped.
func TestDampingZeroMatchesUndamped(t *testing.T) {
	undamped := runChain(t, 0.8, 0.9, scheduler.NewFIFO())

	g, ids := fixtures.SingleChain(0.9, 1)
	factory, err := model.NewFactory(model.Params{Gamma: 0.8, Alpha: 0.1, Beta: 0.001, Exponent: 1})
	require.NoError(t, err)
	d := &ccdriver.Driver{Factory: factory, Scheduler: scheduler.NewFIFO(), Lambda: 0, Epsilon: 1e-10, MaxIterations: 200, Workers: 1}
	_, err = d.Run(context.Background(), g)
	require.NoError(t, err)
	v, _ := g.Vertex(ids["p1"])

	assert.InDelta(t, undamped, v.Score, 1e-12)
}
