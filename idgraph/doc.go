// Package idgraph implements the identification graph: the upstream
// collaborator spec.md treats as external, owned before inference begins.
// It is an undirected graph whose vertices are tagged by Kind from the
// ordered set {Protein(0), ProteinGroup(1), PeptideGroup(2), Peptide(3),
// PSM(6)}; edges connect only the four adjacent-kind pairs spec.md §3
// names (Protein-ProteinGroup, ProteinGroup-PeptideGroup,
// ProteinGroup-Peptide, Peptide-PSM), and within a connected component
// kinds strictly increase along any shortest path from a Protein to a PSM.
//
// Only the interface this package presents matters to the inference core
// (package ccdriver consumes *Graph and its per-component *CC views, the
// latter through its own ccView interface); Graph is the one concrete,
// in-memory implementation
// this module ships, adapted from this codebase's dense-integer-id
// adjacency-list graph core to kind-tagged, domain-typed vertices.
package idgraph

import "errors"

// ErrVertexNotFound is returned when an operation references a vertex id
// that was never added to the graph.
var ErrVertexNotFound = errors.New("idgraph: vertex not found")

// ErrInvalidEdge is returned when AddEdge is asked to connect two vertices
// whose kinds are not one of the four adjacent pairs spec.md §3 allows.
var ErrInvalidEdge = errors.New("idgraph: edge kinds not adjacent")

// ErrInvalidArgument is returned when a caller passes an out-of-domain
// argument, such as a negative top_psms_per_spectrum to BuildGraph.
var ErrInvalidArgument = errors.New("idgraph: invalid argument")

// ErrStructural reports a violation of one of the identification graph's
// data-model invariants (spec.md §3): a PSM with zero evidences or a score
// outside [0,1], or a ProteinGroup/PeptideGroup with no smaller-kind
// neighbor. Validate returns a slice of these, one per violation found;
// ccdriver treats each as aborting only the offending CC.
type ErrStructural struct {
	VertexID int
	Reason   string
}

func (e *ErrStructural) Error() string {
	return "idgraph: structural violation at vertex " + itoa(e.VertexID) + ": " + e.Reason
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		pos--
		buf[pos] = '-'
	}
	return string(buf[pos:])
}
