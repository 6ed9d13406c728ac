package ccdriver_test

import (
	"context"
	"testing"

	"github.com/pscheil/fido/ccdriver"
	"github.com/pscheil/fido/idgraph"
	"github.com/pscheil/fido/idgraph/fixtures"
	"github.com/pscheil/fido/model"
	"github.com/pscheil/fido/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDriver(t *testing.T) *ccdriver.Driver {
	t.Helper()
	factory, err := model.NewFactory(model.Params{Gamma: 0.9, Alpha: 0.1, Beta: 0.001, Exponent: 1})
	require.NoError(t, err)
	return &ccdriver.Driver{
		Factory:       factory,
		Scheduler:     scheduler.NewFIFO(),
		Lambda:        0,
		Epsilon:       1e-6,
		MaxIterations: 100,
		Workers:       2,
	}
}

func TestRunSingleChainYieldsHighProteinPosterior(t *testing.T) {
	g, ids := fixtures.SingleChain(0.95, 1)
	d := newDriver(t)
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, result.CCs, 1)
	require.Len(t, result.CCs[0].Posteriors, 1)
	assert.Equal(t, ids["p1"], result.CCs[0].Posteriors[0].VarID)
	assert.Greater(t, result.CCs[0].Posteriors[0].Dist.At(1), 0.8)

	v, ok := g.Vertex(ids["p1"])
	require.True(t, ok)
	assert.Equal(t, result.CCs[0].Posteriors[0].Dist.At(1), v.Score)
}

func TestRunTwoIndependentProteinsProcessesBothCCs(t *testing.T) {
	g, _ := fixtures.TwoIndependentProteins(0.95, 1, 0.1, 1)
	d := newDriver(t)
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, result.CCs, 2)
	for _, cc := range result.CCs {
		require.Nil(t, cc.Structural)
		require.Len(t, cc.Posteriors, 1)
	}
}

func TestRunSkipsDegenerateSingleVertexCC(t *testing.T) {
	g := idgraph.New()
	p := g.AddProtein("ORPHAN")
	d := newDriver(t)
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, result.CCs, 1)
	assert.True(t, result.CCs[0].Skipped)
	assert.Equal(t, p.ID, result.CCs[0].CCID)
	assert.Empty(t, result.CCs[0].Posteriors)
}

func TestRunIndistinguishableProteinGroupSharesScore(t *testing.T) {
	g, ids := fixtures.IndistinguishableProteinGroup(0.9, 0.9, 1)
	d := newDriver(t)
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, result.CCs, 1)

	v1, _ := g.Vertex(ids["p1"])
	v2, _ := g.Vertex(ids["p2"])
	assert.InDelta(t, v1.Score, v2.Score, 1e-9)
}
