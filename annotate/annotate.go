// Package annotate turns a completed inference run's posteriors into
// protein-group records, asserting the shared-score invariant spec.md §3
// places on indistinguishable groups: every Protein vertex folded into
// the same ProteinGroup must carry the identical posterior, since they
// are, by construction, statistically indistinguishable given the
// evidence.
package annotate

import (
	"fmt"
	"math"

	"github.com/pscheil/fido/ccdriver"
	"github.com/pscheil/fido/idgraph"
)

// ErrInconsistentGroupScore is returned when two proteins idgraph grouped
// under the same ProteinGroup come out of inference with different
// posteriors — a sign the identification graph's clustering step (or the
// caller's wiring of it) is broken, since indistinguishable proteins must
// share a factor-graph neighborhood and therefore an identical belief.
var ErrInconsistentGroupScore = fmt.Errorf("annotate: indistinguishable proteins disagree on posterior")

// ProteinGroupRecord is one annotated output row: a ProteinGroup vertex,
// its member protein accessions, and their (shared) posterior.
type ProteinGroupRecord struct {
	GroupID    int
	Accessions []string
	Score      float64
}

// ProteinRecord is one ungrouped Protein's output row.
type ProteinRecord struct {
	ProteinID int
	Accession string
	Score     float64
}

// Annotate reads back posteriors ccdriver.Driver.Run wrote onto g's
// Protein vertices and produces one record per ProteinGroup (asserting
// every member shares its score within tol) and one record per ungrouped
// Protein. For deterministic output, groups are returned in ascending order
// of their lowest-id member Protein, and ungrouped proteins in ascending
// vertex-id order.
func Annotate(g *idgraph.Graph, _ *ccdriver.RunResult, tol float64) ([]ProteinGroupRecord, []ProteinRecord, error) {
	members := make(map[int][]idgraph.Vertex) // ProteinGroup id -> member Protein vertices
	var ungrouped []ProteinRecord
	var groupIDsInOrder []int
	seenGroup := make(map[int]bool)

	for _, id := range g.VertexIDs() {
		v, _ := g.Vertex(id)
		if v.Kind != idgraph.KindProtein {
			continue
		}
		groupID, hasGroup := proteinGroupOf(g, id)
		if !hasGroup {
			ungrouped = append(ungrouped, ProteinRecord{ProteinID: id, Accession: v.Accession, Score: v.Score})
			continue
		}
		if !seenGroup[groupID] {
			seenGroup[groupID] = true
			groupIDsInOrder = append(groupIDsInOrder, groupID)
		}
		members[groupID] = append(members[groupID], v)
	}

	var groups []ProteinGroupRecord
	for _, groupID := range groupIDsInOrder {
		vs := members[groupID]
		first := vs[0].Score
		accessions := make([]string, len(vs))
		for i, v := range vs {
			accessions[i] = v.Accession
			if math.Abs(v.Score-first) > tol {
				return nil, nil, fmt.Errorf("annotate: group %d: %w (accession %q scored %v, %q scored %v)",
					groupID, ErrInconsistentGroupScore, accessions[0], first, v.Accession, v.Score)
			}
		}
		groups = append(groups, ProteinGroupRecord{GroupID: groupID, Accessions: accessions, Score: first})
	}

	return groups, ungrouped, nil
}

// proteinGroupOf returns the id of the lowest-id ProteinGroup neighbor of
// proteinID, if any. Further ProteinGroup neighbors of the same Protein are
// not reported.
func proteinGroupOf(g *idgraph.Graph, proteinID int) (int, bool) {
	for _, n := range g.Neighbors(proteinID) {
		v, _ := g.Vertex(n)
		if v.Kind == idgraph.KindProteinGroup {
			return n, true
		}
	}
	return 0, false
}
