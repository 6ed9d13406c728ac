// Package fixtures provides a deterministic functional-option builder for
// identification graphs, mirroring this codebase's builder package: a
// sequence of Option values applied in order against an *idgraph.Graph,
// letting each scenario below read as a flat list of "what exists" rather
// than an imperative sequence of pointer juggling.
package fixtures

import "github.com/pscheil/fido/idgraph"

// Option mutates a graph under construction. ids is a scratch map scenario
// authors use to name vertices and refer back to them in later options
// (edges, mostly).
type Option func(g *idgraph.Graph, ids map[string]int)

// Build applies opts in order to a fresh graph and returns it along with
// the name -> id map accumulated along the way.
func Build(opts ...Option) (*idgraph.Graph, map[string]int) {
	g := idgraph.New()
	ids := make(map[string]int)
	for _, opt := range opts {
		opt(g, ids)
	}
	return g, ids
}

// Protein adds a Protein vertex with the given accession and names it.
func Protein(name, accession string) Option {
	return func(g *idgraph.Graph, ids map[string]int) {
		ids[name] = g.AddProtein(accession).ID
	}
}

// Peptide adds a Peptide vertex and names it.
func Peptide(name string) Option {
	return func(g *idgraph.Graph, ids map[string]int) {
		ids[name] = g.AddPeptide().ID
	}
}

// ProteinGroup adds a ProteinGroup vertex and names it.
func ProteinGroup(name string) Option {
	return func(g *idgraph.Graph, ids map[string]int) {
		ids[name] = g.AddProteinGroup().ID
	}
}

// PSM adds a PSM vertex with the given score, evidence count, and spectrum
// id, and names it.
func PSM(name string, score float64, evidencesCount int, spectrumID string) Option {
	return func(g *idgraph.Graph, ids map[string]int) {
		ids[name] = g.AddPSM(score, evidencesCount, spectrumID).ID
	}
}

// Edge connects two previously-named vertices.
func Edge(a, b string) Option {
	return func(g *idgraph.Graph, ids map[string]int) {
		_ = g.AddEdge(ids[a], ids[b])
	}
}
