package idgraph

import (
	"fmt"
	"sort"
)

// Graph is an in-memory identification graph, adapted from this codebase's
// dense-integer-id adjacency-list core: separate maps for vertex storage
// and adjacency so read-heavy CC/BFS traversal never touches vertex
// payload, and vice versa for the score write-back ccdriver performs
// after inference.
type Graph struct {
	vertices map[int]*Vertex
	adj      map[int]map[int]struct{}
	nextID   int
}

// New returns an empty identification graph.
func New() *Graph {
	return &Graph{
		vertices: make(map[int]*Vertex),
		adj:      make(map[int]map[int]struct{}),
	}
}

func (g *Graph) addVertex(v *Vertex) *Vertex {
	v.ID = g.nextID
	g.nextID++
	g.vertices[v.ID] = v
	g.adj[v.ID] = make(map[int]struct{})
	return v
}

// AddProtein adds a Protein vertex carrying accession and the flat prior
// score 0 (overwritten by ccdriver once a posterior is computed).
func (g *Graph) AddProtein(accession string) *Vertex {
	return g.addVertex(&Vertex{Kind: KindProtein, Accession: accession})
}

// AddProteinGroup adds a ProteinGroup vertex.
func (g *Graph) AddProteinGroup() *Vertex {
	return g.addVertex(&Vertex{Kind: KindProteinGroup})
}

// AddPeptideGroup adds a PeptideGroup vertex.
func (g *Graph) AddPeptideGroup() *Vertex {
	return g.addVertex(&Vertex{Kind: KindPeptideGroup})
}

// AddPeptide adds a Peptide vertex.
func (g *Graph) AddPeptide() *Vertex {
	return g.addVertex(&Vertex{Kind: KindPeptide})
}

// AddPSM adds a PSM vertex with its search-engine score, the number of
// independent peptide-evidence entries supporting it, and the spectrum it
// was matched against (BuildGraph's top-N-per-spectrum filter's grouping
// key; pass "" if the upstream source doesn't distinguish spectra).
func (g *Graph) AddPSM(score float64, evidencesCount int, spectrumID string) *Vertex {
	return g.addVertex(&Vertex{Kind: KindPSM, Score: score, EvidencesCount: evidencesCount, SpectrumID: spectrumID})
}

// AddEdge connects u and v. Both must exist and their kinds must be one of
// the adjacent pairs spec.md §3 allows: Protein-ProteinGroup,
// ProteinGroup-PeptideGroup, ProteinGroup-Peptide, Peptide-PSM. Any other
// pair, including equal kinds, is rejected with ErrInvalidEdge.
func (g *Graph) AddEdge(u, v int) error {
	uv, ok := g.vertices[u]
	if !ok {
		return ErrVertexNotFound
	}
	vv, ok := g.vertices[v]
	if !ok {
		return ErrVertexNotFound
	}
	if !adjacentKinds(uv.Kind, vv.Kind) {
		return ErrInvalidEdge
	}
	g.adj[u][v] = struct{}{}
	g.adj[v][u] = struct{}{}
	return nil
}

// adjacentKinds reports whether a and b name one of the four kind pairs
// spec.md §3's identification graph permits an edge between.
func adjacentKinds(a, b Kind) bool {
	if a > b {
		a, b = b, a
	}
	switch {
	case a == KindProtein && b == KindProteinGroup:
		return true
	case a == KindProteinGroup && b == KindPeptideGroup:
		return true
	case a == KindProteinGroup && b == KindPeptide:
		return true
	case a == KindPeptide && b == KindPSM:
		return true
	default:
		return false
	}
}

// RemoveEdge disconnects u and v if they were connected; it is a no-op
// otherwise.
func (g *Graph) RemoveEdge(u, v int) {
	delete(g.adj[u], v)
	delete(g.adj[v], u)
}

// removeVertex deletes id and every edge touching it. Used by BuildGraph to
// drop PSMs a top-N-per-spectrum filter excludes.
func (g *Graph) removeVertex(id int) {
	for n := range g.adj[id] {
		delete(g.adj[n], id)
	}
	delete(g.adj, id)
	delete(g.vertices, id)
}

// Vertex returns the vertex with the given id.
func (g *Graph) Vertex(id int) (Vertex, bool) {
	v, ok := g.vertices[id]
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// SetScore overwrites a vertex's Score field, used by ccdriver to write
// posteriors back onto Protein vertices.
func (g *Graph) SetScore(id int, score float64) error {
	v, ok := g.vertices[id]
	if !ok {
		return ErrVertexNotFound
	}
	v.Score = score
	return nil
}

// VertexIDs returns every vertex id in ascending order.
func (g *Graph) VertexIDs() []int {
	ids := make([]int, 0, len(g.vertices))
	for id := range g.vertices {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Neighbors returns id's adjacent vertex ids in ascending order.
func (g *Graph) Neighbors(id int) []int {
	adj := g.adj[id]
	ids := make([]int, 0, len(adj))
	for n := range adj {
		ids = append(ids, n)
	}
	sort.Ints(ids)
	return ids
}

// SmallerKindNeighbors returns id's neighbors whose Kind is strictly less
// than id's own, i.e. the "in" set the Bethe builder uses as a factor's
// parent/input variables (spec.md §4.3).
func (g *Graph) SmallerKindNeighbors(id int) []int {
	self, ok := g.vertices[id]
	if !ok {
		return nil
	}
	var out []int
	for _, n := range g.Neighbors(id) {
		if g.vertices[n].Kind < self.Kind {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks every structural invariant spec.md §3 places on
// individual vertices: PSM score within [0,1] and a positive evidence
// count, and every ProteinGroup/PeptideGroup/Peptide vertex having at
// least one smaller-kind neighbor. It returns one *ErrStructural per
// violation found rather than stopping at the first.
func (g *Graph) Validate() []error {
	var errs []error
	for _, id := range g.VertexIDs() {
		v := g.vertices[id]
		switch v.Kind {
		case KindPSM:
			if v.Score < 0 || v.Score > 1 {
				errs = append(errs, &ErrStructural{VertexID: id, Reason: "PSM score out of [0,1]"})
			}
			if v.EvidencesCount <= 0 {
				errs = append(errs, &ErrStructural{VertexID: id, Reason: "PSM evidences count not positive"})
			}
		case KindProtein:
			// no structural constraint beyond existing
		default:
			if len(g.SmallerKindNeighbors(id)) == 0 {
				errs = append(errs, &ErrStructural{VertexID: id, Reason: "no smaller-kind neighbor"})
			}
		}
	}
	return errs
}

// BuildGraph finalizes the graph for inference per the
// top_psms_per_spectrum config option (spec.md §6): for every distinct
// SpectrumID seen on a PSM vertex, it keeps only the topPSMsPerSpectrum
// highest-scoring PSMs and removes the rest (ties broken by ascending
// vertex id, for determinism); 0 means keep every PSM regardless of
// spectrum. PSMs with SpectrumID == "" are never deduplicated against one
// another, since there is nothing to group them by.
func (g *Graph) BuildGraph(topPSMsPerSpectrum int) error {
	if topPSMsPerSpectrum < 0 {
		return fmt.Errorf("idgraph: BuildGraph: top_psms_per_spectrum=%d must be >= 0: %w", topPSMsPerSpectrum, ErrInvalidArgument)
	}
	if topPSMsPerSpectrum == 0 {
		return nil
	}

	bySpectrum := make(map[string][]int)
	for _, id := range g.VertexIDs() {
		v := g.vertices[id]
		if v.Kind != KindPSM || v.SpectrumID == "" {
			continue
		}
		bySpectrum[v.SpectrumID] = append(bySpectrum[v.SpectrumID], id)
	}

	for _, ids := range bySpectrum {
		if len(ids) <= topPSMsPerSpectrum {
			continue
		}
		sort.Slice(ids, func(i, j int) bool {
			vi, vj := g.vertices[ids[i]], g.vertices[ids[j]]
			if vi.Score != vj.Score {
				return vi.Score > vj.Score
			}
			return ids[i] < ids[j]
		})
		for _, drop := range ids[topPSMsPerSpectrum:] {
			g.removeVertex(drop)
		}
	}
	return nil
}
