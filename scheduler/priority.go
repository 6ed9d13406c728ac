package scheduler

import (
	"container/heap"

	"github.com/pscheil/fido/factorgraph"
)

// direction selects which of an edge's two messages a job recomputes.
type direction int

const (
	varToFactor direction = iota
	factorToVar
)

type job struct {
	edgeIdx  int
	dir      direction
	priority float64 // current residual estimate; larger pops first
}

// jobHeap is a max-heap on priority, the same container/heap shape this
// codebase's dijkstra scheduler uses for its min-heap on distance, just
// with the comparison inverted.
type jobHeap []*job

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].priority > h[j].priority }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap) Push(x interface{}) { *h = append(*h, x.(*job)) }
func (h *jobHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Priority always recomputes the queued directed message with the largest
// pending residual (the L∞ delta of the input commit that queued it),
// grounded on this codebase's dijkstra priority-queue idiom. Every directed
// message is initially scheduled with infinite priority so the first round
// behaves like one FIFO sweep; afterward a message is queued again only
// when a commit changes one of its inputs, and the queue empties once no
// commit changes anything.
type Priority struct {
	// roundSize bounds how many pops constitute one reported "round" for
	// onIteration/epsilon purposes; it defaults to 2*EdgeCount (one pass
	// over every directed message) when left at zero.
	roundSize int
}

// NewPriority returns a Priority scheduler with the default round size.
func NewPriority() *Priority { return &Priority{} }

const infPriority = 1e308

func (s *Priority) Converge(g *factorgraph.Graph, lambda, epsilon float64, maxIterations int, onIteration OnIterationFunc) (Result, error) {
	if err := g.SeedAbInitio(); err != nil {
		return Result{}, wrapErr("Priority.Converge", err)
	}
	n := g.EdgeCount()
	round := s.roundSize
	if round <= 0 {
		round = 2 * n
	}
	if round == 0 {
		return Result{Iterations: 0, MaxDelta: 0, Converged: true}, nil
	}

	h := make(jobHeap, 0, 2*n)
	pending := make([]bool, 2*n)
	slot := func(ref jobRef) int { return ref.edgeIdx*2 + int(ref.dir) }
	for i := 0; i < n; i++ {
		h = append(h, &job{edgeIdx: i, dir: varToFactor, priority: infPriority})
		h = append(h, &job{edgeIdx: i, dir: factorToVar, priority: infPriority})
		pending[slot(jobRef{i, varToFactor})] = true
		pending[slot(jobRef{i, factorToVar})] = true
	}
	heap.Init(&h)

	var last Result
	for iter := 1; iter <= maxIterations; iter++ {
		maxDelta := 0.0
		for step := 0; step < round && h.Len() > 0; step++ {
			j := heap.Pop(&h).(*job)
			pending[slot(jobRef{j.edgeIdx, j.dir})] = false
			delta, affected, err := s.apply(g, j, lambda)
			if err != nil {
				return Result{}, wrapErr("Priority.Converge", err)
			}
			if delta > maxDelta {
				maxDelta = delta
			}
			if delta == 0 {
				continue
			}
			for _, aff := range affected {
				if pending[slot(aff)] {
					continue
				}
				heap.Push(&h, &job{edgeIdx: aff.edgeIdx, dir: aff.dir, priority: delta})
				pending[slot(aff)] = true
			}
		}
		if onIteration != nil {
			onIteration(iter, maxDelta)
		}
		last = Result{Iterations: iter, MaxDelta: maxDelta, Converged: maxDelta < epsilon}
		if last.Converged {
			return last, nil
		}
	}
	return last, nil
}

type jobRef struct {
	edgeIdx int
	dir     direction
}

// apply performs the directed update the job names and returns the
// residual delta plus the jobs whose input just changed and should be
// revisited promptly: updating v→f on an edge invalidates f→v on every
// OTHER edge of the same factor; updating f→v on an edge invalidates v→f
// on every other edge of the same variable.
func (s *Priority) apply(g *factorgraph.Graph, j *job, lambda float64) (float64, []jobRef, error) {
	e := g.Edge(j.edgeIdx)
	switch j.dir {
	case varToFactor:
		raw, err := g.UpdateVarToFactor(j.edgeIdx)
		if err != nil {
			return 0, nil, err
		}
		delta, err := g.CommitVarToFactor(j.edgeIdx, raw, lambda)
		if err != nil {
			return 0, nil, err
		}
		node := g.Factors()[e.FactorIdx]
		var affected []jobRef
		for _, otherIdx := range node.Edges() {
			if otherIdx != j.edgeIdx {
				affected = append(affected, jobRef{edgeIdx: otherIdx, dir: factorToVar})
			}
		}
		return delta, affected, nil
	default: // factorToVar
		raw, err := g.UpdateFactorToVar(j.edgeIdx)
		if err != nil {
			return 0, nil, err
		}
		delta, err := g.CommitFactorToVar(j.edgeIdx, raw, lambda)
		if err != nil {
			return 0, nil, err
		}
		v, _ := g.Variable(e.VarID)
		var affected []jobRef
		for _, otherIdx := range v.Edges() {
			if otherIdx != j.edgeIdx {
				affected = append(affected, jobRef{edgeIdx: otherIdx, dir: varToFactor})
			}
		}
		return delta, affected, nil
	}
}
