package annotate_test

import (
	"context"
	"testing"

	"github.com/pscheil/fido/annotate"
	"github.com/pscheil/fido/ccdriver"
	"github.com/pscheil/fido/idgraph"
	"github.com/pscheil/fido/idgraph/fixtures"
	"github.com/pscheil/fido/model"
	"github.com/pscheil/fido/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotateGroupsIndistinguishableProteinsWithSharedScore(t *testing.T) {
	g, _ := fixtures.IndistinguishableProteinGroup(0.9, 0.9, 1)
	factory, err := model.NewFactory(model.DefaultParams())
	require.NoError(t, err)
	d := &ccdriver.Driver{Factory: factory, Scheduler: scheduler.NewFIFO(), Epsilon: 1e-6, MaxIterations: 100, Workers: 1}
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)

	groups, proteins, err := annotate.Annotate(g, result, 1e-9)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Empty(t, proteins)
	assert.ElementsMatch(t, []string{"PROT1", "PROT2"}, groups[0].Accessions)
}

func TestAnnotateReturnsUngroupedProteinsSeparately(t *testing.T) {
	// A Protein vertex with no ProteinGroup neighbor can only arise from a
	// degenerate CC (no peptide evidence at all): the identification
	// graph's kind-adjacency invariant requires every Protein with any
	// evidence to route through a ProteinGroup.
	g := idgraph.New()
	g.AddProtein("PROT1")
	factory, err := model.NewFactory(model.DefaultParams())
	require.NoError(t, err)
	d := &ccdriver.Driver{Factory: factory, Scheduler: scheduler.NewFIFO(), Epsilon: 1e-6, MaxIterations: 100, Workers: 1}
	result, err := d.Run(context.Background(), g)
	require.NoError(t, err)

	groups, proteins, err := annotate.Annotate(g, result, 1e-9)
	require.NoError(t, err)
	assert.Empty(t, groups)
	require.Len(t, proteins, 1)
	assert.Equal(t, "PROT1", proteins[0].Accession)
}
