package fixtures

import "github.com/pscheil/fido/idgraph"

// SingleChain builds the minimal identification graph: one Protein in its
// own ProteinGroup, one Peptide, one PSM, connected in a line. It is the
// simplest possible CC and the baseline for every property test.
func SingleChain(psmScore float64, evidences int) (*idgraph.Graph, map[string]int) {
	return Build(
		Protein("p1", "PROT1"),
		ProteinGroup("pg1"),
		Peptide("pep1"),
		PSM("psm1", psmScore, evidences, "sp-psm1"),
		Edge("p1", "pg1"),
		Edge("pg1", "pep1"),
		Edge("pep1", "psm1"),
	)
}

// SharedPeptideAmbiguity builds two proteins, each in its own ProteinGroup,
// that both explain the same peptide, which in turn explains one PSM: the
// classic case a flat, independent-per-protein model over-counts.
func SharedPeptideAmbiguity(psmScore float64, evidences int) (*idgraph.Graph, map[string]int) {
	return Build(
		Protein("p1", "PROT1"),
		Protein("p2", "PROT2"),
		ProteinGroup("pg1"),
		ProteinGroup("pg2"),
		Peptide("pep1"),
		PSM("psm1", psmScore, evidences, "sp-psm1"),
		Edge("p1", "pg1"),
		Edge("p2", "pg2"),
		Edge("pg1", "pep1"),
		Edge("pg2", "pep1"),
		Edge("pep1", "psm1"),
	)
}

// TwoIndependentProteins builds two disjoint single-protein chains forming
// two connected components, exercising CC isolation.
func TwoIndependentProteins(score1 float64, ev1 int, score2 float64, ev2 int) (*idgraph.Graph, map[string]int) {
	return Build(
		Protein("p1", "PROT1"),
		ProteinGroup("pg1"),
		Peptide("pep1"),
		PSM("psm1", score1, ev1, "sp-psm1"),
		Edge("p1", "pg1"),
		Edge("pg1", "pep1"),
		Edge("pep1", "psm1"),

		Protein("p2", "PROT2"),
		ProteinGroup("pg2"),
		Peptide("pep2"),
		PSM("psm2", score2, ev2, "sp-psm2"),
		Edge("p2", "pg2"),
		Edge("pg2", "pep2"),
		Edge("pep2", "psm2"),
	)
}

// IndistinguishableProteinGroup builds two proteins sharing the exact same
// two peptides, pre-clustered into a single ProteinGroup, each peptide
// backed by its own PSM. Exercises the ProteinGroup adder factor and the
// shared-score annotation assertion.
func IndistinguishableProteinGroup(scoreA, scoreB float64, ev int) (*idgraph.Graph, map[string]int) {
	return Build(
		Protein("p1", "PROT1"),
		Protein("p2", "PROT2"),
		ProteinGroup("pg"),
		Peptide("pepA"),
		Peptide("pepB"),
		PSM("psmA", scoreA, ev, "sp-psmA"),
		PSM("psmB", scoreB, ev, "sp-psmB"),
		Edge("p1", "pg"),
		Edge("p2", "pg"),
		Edge("pg", "pepA"),
		Edge("pg", "pepB"),
		Edge("pepA", "psmA"),
		Edge("pepB", "psmB"),
	)
}

// UnconvergedFourCycle builds two proteins, each in its own ProteinGroup,
// whose groups both reach the same two peptides, forming a four-vertex
// cycle through the groups and peptides — the topology most likely to
// leave loopy belief propagation oscillating rather than converged, for
// testing the scheduler's iteration cap and ConvergenceWarning path.
func UnconvergedFourCycle(score1, score2 float64, ev int) (*idgraph.Graph, map[string]int) {
	return Build(
		Protein("p1", "PROT1"),
		Protein("p2", "PROT2"),
		ProteinGroup("pg1"),
		ProteinGroup("pg2"),
		Peptide("pep1"),
		Peptide("pep2"),
		PSM("psm1", score1, ev, "sp-psm1"),
		PSM("psm2", score2, ev, "sp-psm2"),
		Edge("p1", "pg1"),
		Edge("p2", "pg2"),
		Edge("pg1", "pep1"),
		Edge("pg1", "pep2"),
		Edge("pg2", "pep1"),
		Edge("pg2", "pep2"),
		Edge("pep1", "psm1"),
		Edge("pep2", "psm2"),
	)
}

// GridSearchObjectiveGraph builds a larger graph with a true-positive and
// a decoy-like low-score protein, suitable as the fixed identification
// graph gridsearch scenario tests re-run across several (α,β,γ) points
// under a synthetic FDRScorer.
func GridSearchObjectiveGraph() (*idgraph.Graph, map[string]int) {
	return Build(
		Protein("target", "TARGET1"),
		ProteinGroup("pgTarget"),
		Peptide("pepT1"),
		Peptide("pepT2"),
		PSM("psmT1", 0.95, 2, "sp-psmT1"),
		PSM("psmT2", 0.9, 1, "sp-psmT2"),
		Edge("target", "pgTarget"),
		Edge("pgTarget", "pepT1"),
		Edge("pgTarget", "pepT2"),
		Edge("pepT1", "psmT1"),
		Edge("pepT2", "psmT2"),

		Protein("decoy", "DECOY1"),
		ProteinGroup("pgDecoy"),
		Peptide("pepD1"),
		PSM("psmD1", 0.2, 1, "sp-psmD1"),
		Edge("decoy", "pgDecoy"),
		Edge("pgDecoy", "pepD1"),
		Edge("pepD1", "psmD1"),
	)
}
