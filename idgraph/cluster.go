package idgraph

import (
	"fmt"
	"sort"
	"strings"
)

// ClusterIndistinguishableProteins merges every maximal set of
// ProteinGroup vertices that reach an identical set of Peptide neighbors
// into a single ProteinGroup: their member Protein vertices keep their own
// ids (so individual accessions survive into the output) but are re-homed
// onto the merged group, and the original groups are removed. This is the
// upstream collaborator operation spec.md §2 calls
// clusterIndistProteinsAndPeptides, expressed over already-grouped input:
// two proteins that started out in different (possibly singleton)
// ProteinGroups but turn out to explain exactly the same peptides are
// exactly the "indistinguishable protein" case. It returns the ids of the
// merged ProteinGroup vertices, one per cluster of size >= 2.
func (g *Graph) ClusterIndistinguishableProteins() ([]int, error) {
	byKey := make(map[string][]int)
	var keys []string
	for _, id := range g.VertexIDs() {
		v := g.vertices[id]
		if v.Kind != KindProteinGroup {
			continue
		}
		peptides := filterKind(g, g.Neighbors(id), KindPeptide)
		if len(peptides) == 0 {
			continue
		}
		key := idKey(peptides)
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], id)
	}
	sort.Strings(keys)

	var mergedIDs []int
	for _, key := range keys {
		groupIDs := byKey[key]
		if len(groupIDs) < 2 {
			continue
		}
		peptides := filterKind(g, g.Neighbors(groupIDs[0]), KindPeptide)
		merged := g.AddProteinGroup()
		for _, gid := range groupIDs {
			proteins := filterKind(g, g.Neighbors(gid), KindProtein)
			for _, pid := range proteins {
				g.RemoveEdge(pid, gid)
				if err := g.AddEdge(pid, merged.ID); err != nil {
					return nil, fmt.Errorf("idgraph: ClusterIndistinguishableProteins: %w", err)
				}
			}
			for _, pep := range peptides {
				g.RemoveEdge(gid, pep)
			}
			g.removeVertex(gid)
		}
		for _, pep := range peptides {
			if err := g.AddEdge(merged.ID, pep); err != nil {
				return nil, fmt.Errorf("idgraph: ClusterIndistinguishableProteins: %w", err)
			}
		}
		mergedIDs = append(mergedIDs, merged.ID)
	}
	return mergedIDs, nil
}

func filterKind(g *Graph, ids []int, kind Kind) []int {
	var out []int
	for _, id := range ids {
		if g.vertices[id].Kind == kind {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

func idKey(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}
