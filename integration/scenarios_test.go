// Package integration exercises the six end-to-end scenarios spec.md §8
// names, wiring every package together the way a real run would: idgraph
// fixtures in, ccdriver.Driver through, annotate out.
package integration_test

import (
	"context"
	"math"
	"testing"

	"github.com/pscheil/fido/annotate"
	"github.com/pscheil/fido/ccdriver"
	"github.com/pscheil/fido/config"
	"github.com/pscheil/fido/gridsearch"
	"github.com/pscheil/fido/idgraph"
	"github.com/pscheil/fido/idgraph/fixtures"
	"github.com/pscheil/fido/model"
	"github.com/pscheil/fido/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultDriver(t *testing.T, sched scheduler.Scheduler) *ccdriver.Driver {
	t.Helper()
	factory, err := model.NewFactory(model.DefaultParams())
	require.NoError(t, err)
	return &ccdriver.Driver{
		Factory:       factory,
		Scheduler:     sched,
		Lambda:        0,
		Epsilon:       1e-8,
		MaxIterations: 200,
		Workers:       2,
	}
}

func TestSingleProteinSinglePeptideSinglePSM(t *testing.T) {
	gamma, alpha, beta := model.DefaultParams().Gamma, model.DefaultParams().Alpha, model.DefaultParams().Beta
	const (
		psmScore  = 0.95
		evidences = 2.0
	)

	g, ids := fixtures.SingleChain(psmScore, int(evidences))
	d := defaultDriver(t, scheduler.NewFIFO())
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)

	// Closed-form posterior, computed independently of the scheduler/BP
	// engine straight off the factor tables model/factors.go implements:
	// the protein's prior combined with the noisy-OR channel to the PSM
	// and the PSM's own evidence factor. Every intermediate node on this
	// chain (ProteinGroup, Peptide) is a single-parent adder, which is the
	// identity map, so it drops out of the algebra.
	pPresent := 1 - math.Pow(1-alpha, evidences)*(1-beta)
	unnormPresent := gamma * ((1-pPresent)*(1-psmScore) + pPresent*psmScore)
	unnormAbsent := (1 - gamma) * ((1-beta)*(1-psmScore) + beta*psmScore)
	expected := unnormPresent / (unnormPresent + unnormAbsent)

	v, ok := g.Vertex(ids["p1"])
	require.True(t, ok)
	assert.InDelta(t, expected, v.Score, 1e-9)

	groups, proteins, err := annotate.Annotate(g, result, 1e-9)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Empty(t, proteins)
	assert.Equal(t, []string{"PROT1"}, groups[0].Accessions)
}

func TestSharedPeptideAmbiguitySplitsEvidenceBetweenProteins(t *testing.T) {
	gSingle, idsSingle := fixtures.SingleChain(0.9, 1)
	dSingle := defaultDriver(t, scheduler.NewFIFO())
	_, err := dSingle.Run(context.Background(), gSingle)
	require.NoError(t, err)
	vSingle, _ := gSingle.Vertex(idsSingle["p1"])

	gShared, idsShared := fixtures.SharedPeptideAmbiguity(0.9, 1)
	dShared := defaultDriver(t, scheduler.NewFIFO())
	_, err = dShared.Run(context.Background(), gShared)
	require.NoError(t, err)
	v1, _ := gShared.Vertex(idsShared["p1"])
	v2, _ := gShared.Vertex(idsShared["p2"])

	// Two equally-plausible explanations for the same evidence: the shared
	// posterior should not exceed the single-explanation posterior, and by
	// symmetry the two proteins should agree.
	assert.InDelta(t, v1.Score, v2.Score, 1e-9)
	assert.LessOrEqual(t, v1.Score, vSingle.Score+1e-9)
}

func TestTwoIndependentProteinsDoNotInfluenceEachOther(t *testing.T) {
	g, ids := fixtures.TwoIndependentProteins(0.95, 1, 0.05, 1)
	d := defaultDriver(t, scheduler.NewFIFO())
	_, err := d.Run(context.Background(), g)
	require.NoError(t, err)

	v1, _ := g.Vertex(ids["p1"])
	v2, _ := g.Vertex(ids["p2"])
	assert.Greater(t, v1.Score, v2.Score)
}

func TestIndistinguishableProteinGroupAnnotatesOneGroup(t *testing.T) {
	g, _ := fixtures.IndistinguishableProteinGroup(0.9, 0.9, 1)
	d := defaultDriver(t, scheduler.NewFIFO())
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)

	groups, proteins, err := annotate.Annotate(g, result, 1e-9)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Empty(t, proteins)
	assert.Len(t, groups[0].Accessions, 2)
}

func TestUnconvergedFourCycleStillReturnsPosteriorsWithWarning(t *testing.T) {
	g, _ := fixtures.UnconvergedFourCycle(0.6, 0.6, 1)
	factory, err := model.NewFactory(model.Params{Gamma: 0.5, Alpha: 0.3, Beta: 0.3, Exponent: 1})
	require.NoError(t, err)
	d := &ccdriver.Driver{
		Factory:       factory,
		Scheduler:     scheduler.NewFIFO(),
		Lambda:        0,
		Epsilon:       1e-12, // unreachable in the given budget, forces the warning path
		MaxIterations: 2,
		Workers:       1,
	}
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, result.CCs, 1)
	require.Len(t, result.CCs[0].Posteriors, 2)
	require.NotNil(t, result.CCs[0].Warning)
}

type simpleFDRScorer struct{}

func (simpleFDRScorer) EvaluateProteinIDs(proteins []idgraph.ProteinView) float64 {
	total := 0.0
	for _, p := range proteins {
		total += p.Score
	}
	return total
}

func TestGridSearchScenarioSelectsAndWritesBackWinner(t *testing.T) {
	g, _ := fixtures.GridSearchObjectiveGraph()
	cfg := config.GridSearchConfig{
		Enabled: true,
		Gamma:   config.GridRange{Min: 0.3, Max: 0.9, Step: 0.3},
		Alpha:   config.GridRange{Min: 0.1, Max: 0.1, Step: 1},
		Beta:    config.GridRange{Min: 0.001, Max: 0.001, Step: 1},
		Workers: 2,
	}
	template := ccdriver.Driver{Scheduler: scheduler.NewFIFO(), Epsilon: 1e-8, MaxIterations: 100, Workers: 1}

	run, err := gridsearch.Scan(context.Background(), g, cfg, template, simpleFDRScorer{})
	require.NoError(t, err)
	require.Len(t, run.Evaluated, 3)
	// Higher gamma raises every protein's prior, so it should win under a
	// sum-of-posteriors objective.
	assert.InDelta(t, 0.9, run.Winner.Point.Gamma, 1e-9)
}
