package idgraph

import "sort"

// CC is a read/write view onto one connected component of a Graph: the
// subset of vertex ids belonging to it, plus the neighbor and write-back
// operations ccdriver needs without ever seeing another component's ids.
// Adapted from this codebase's BFS connected-components scan, which
// produces the same kind of disjoint id partition for an unrelated graph
// kind.
type CC struct {
	g   *Graph
	ids []int
}

// VertexIDs returns the component's vertex ids in ascending order.
func (c *CC) VertexIDs() []int {
	out := make([]int, len(c.ids))
	copy(out, c.ids)
	return out
}

// Vertex delegates to the underlying graph; it is never asked about a
// vertex outside this component since ccdriver only iterates VertexIDs.
func (c *CC) Vertex(id int) (Vertex, bool) { return c.g.Vertex(id) }

// Neighbors delegates to the underlying graph.
func (c *CC) Neighbors(id int) []int { return c.g.Neighbors(id) }

// SmallerKindNeighbors delegates to the underlying graph.
func (c *CC) SmallerKindNeighbors(id int) []int { return c.g.SmallerKindNeighbors(id) }

// SetScore delegates to the underlying graph; components partition vertex
// ids disjointly, so concurrent CCs writing through distinct *CC values
// never race on the same id.
func (c *CC) SetScore(id int, score float64) error { return c.g.SetScore(id, score) }

// ConnectedComponents partitions the graph's vertices into connected
// components via breadth-first search, one BFS per unvisited vertex,
// visiting neighbors in ascending id order for determinism. Components
// are returned sorted by their smallest member id.
func (g *Graph) ConnectedComponents() []*CC {
	visited := make(map[int]bool, len(g.vertices))
	var ccs []*CC
	for _, start := range g.VertexIDs() {
		if visited[start] {
			continue
		}
		queue := []int{start}
		visited[start] = true
		var members []int
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for _, n := range g.Neighbors(cur) {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		sort.Ints(members)
		ccs = append(ccs, &CC{g: g, ids: members})
	}
	sort.Slice(ccs, func(i, j int) bool { return ccs[i].ids[0] < ccs[j].ids[0] })
	return ccs
}
