package idgraph_test

import (
	"testing"

	"github.com/pscheil/fido/idgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeRejectsSameKind(t *testing.T) {
	g := idgraph.New()
	p1 := g.AddProtein("P1")
	p2 := g.AddProtein("P2")
	err := g.AddEdge(p1.ID, p2.ID)
	require.ErrorIs(t, err, idgraph.ErrInvalidEdge)
}

func TestAddEdgeRejectsNonAdjacentKinds(t *testing.T) {
	g := idgraph.New()
	p := g.AddProtein("P1")
	pep := g.AddPeptide()
	err := g.AddEdge(p.ID, pep.ID)
	require.ErrorIs(t, err, idgraph.ErrInvalidEdge)
}

func TestAddEdgeAcceptsTheCanonicalChain(t *testing.T) {
	g := idgraph.New()
	p := g.AddProtein("P1")
	pg := g.AddProteinGroup()
	pep := g.AddPeptide()
	psm := g.AddPSM(0.9, 1, "sp1")
	require.NoError(t, g.AddEdge(p.ID, pg.ID))
	require.NoError(t, g.AddEdge(pg.ID, pep.ID))
	require.NoError(t, g.AddEdge(pep.ID, psm.ID))
}

func TestConnectedComponentsSplitsDisjointSubgraphs(t *testing.T) {
	g := idgraph.New()
	p1 := g.AddProtein("P1")
	pg1 := g.AddProteinGroup()
	pep1 := g.AddPeptide()
	psm1 := g.AddPSM(0.9, 1, "sp1")
	require.NoError(t, g.AddEdge(p1.ID, pg1.ID))
	require.NoError(t, g.AddEdge(pg1.ID, pep1.ID))
	require.NoError(t, g.AddEdge(pep1.ID, psm1.ID))

	p2 := g.AddProtein("P2")
	pg2 := g.AddProteinGroup()
	pep2 := g.AddPeptide()
	require.NoError(t, g.AddEdge(p2.ID, pg2.ID))
	require.NoError(t, g.AddEdge(pg2.ID, pep2.ID))

	ccs := g.ConnectedComponents()
	require.Len(t, ccs, 2)
	assert.Len(t, ccs[0].VertexIDs(), 4)
	assert.Len(t, ccs[1].VertexIDs(), 3)
}

func TestValidateFlagsPSMOutOfRangeScoreAndOrphanGroup(t *testing.T) {
	g := idgraph.New()
	psm := g.AddPSM(1.5, 0, "sp1")
	pg := g.AddProteinGroup()
	_ = psm
	_ = pg

	errs := g.Validate()
	require.Len(t, errs, 3) // score out of range, zero evidences, orphan group
}

func TestClusterIndistinguishableProteinsMergesSharedPeptideSet(t *testing.T) {
	g := idgraph.New()
	p1 := g.AddProtein("P1")
	p2 := g.AddProtein("P2")
	pg1 := g.AddProteinGroup()
	pg2 := g.AddProteinGroup()
	pepA := g.AddPeptide()
	pepB := g.AddPeptide()
	require.NoError(t, g.AddEdge(p1.ID, pg1.ID))
	require.NoError(t, g.AddEdge(p2.ID, pg2.ID))
	require.NoError(t, g.AddEdge(pg1.ID, pepA.ID))
	require.NoError(t, g.AddEdge(pg1.ID, pepB.ID))
	require.NoError(t, g.AddEdge(pg2.ID, pepA.ID))
	require.NoError(t, g.AddEdge(pg2.ID, pepB.ID))

	groups, err := g.ClusterIndistinguishableProteins()
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.ElementsMatch(t, []int{groups[0]}, g.Neighbors(p1.ID))
	assert.ElementsMatch(t, []int{groups[0]}, g.Neighbors(p2.ID))
	assert.ElementsMatch(t, []int{pepA.ID, pepB.ID, p1.ID, p2.ID}, g.Neighbors(groups[0]))
}

func TestBuildGraphKeepsTopNPSMsPerSpectrumByScore(t *testing.T) {
	g := idgraph.New()
	pep := g.AddPeptide()
	best := g.AddPSM(0.9, 1, "spectrum-1")
	mid := g.AddPSM(0.5, 1, "spectrum-1")
	worst := g.AddPSM(0.1, 1, "spectrum-1")
	require.NoError(t, g.AddEdge(pep.ID, best.ID))
	require.NoError(t, g.AddEdge(pep.ID, mid.ID))
	require.NoError(t, g.AddEdge(pep.ID, worst.ID))

	require.NoError(t, g.BuildGraph(1))

	_, ok := g.Vertex(best.ID)
	assert.True(t, ok)
	_, ok = g.Vertex(mid.ID)
	assert.False(t, ok)
	_, ok = g.Vertex(worst.ID)
	assert.False(t, ok)
	assert.ElementsMatch(t, []int{best.ID}, g.Neighbors(pep.ID))
}

func TestBuildGraphZeroKeepsEveryPSM(t *testing.T) {
	g := idgraph.New()
	pep := g.AddPeptide()
	a := g.AddPSM(0.9, 1, "spectrum-1")
	b := g.AddPSM(0.5, 1, "spectrum-1")
	require.NoError(t, g.AddEdge(pep.ID, a.ID))
	require.NoError(t, g.AddEdge(pep.ID, b.ID))

	require.NoError(t, g.BuildGraph(0))

	_, ok := g.Vertex(a.ID)
	assert.True(t, ok)
	_, ok = g.Vertex(b.ID)
	assert.True(t, ok)
}

func TestBuildGraphRejectsNegativeTopN(t *testing.T) {
	g := idgraph.New()
	require.ErrorIs(t, g.BuildGraph(-1), idgraph.ErrInvalidArgument)
}
