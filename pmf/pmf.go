// Package pmf implements finite-support discrete probability mass functions
// over a contiguous integer domain, with the pointwise and convolutional
// operations the belief-propagation engine needs: product, convolution,
// marginalization, L-infinity distance, and dampening.
//
// A PMF stores a dense probability vector indexed by integers
// [FirstSupport, LastSupport] inclusive. Any index outside that range has
// probability zero. Every exported constructor and combinator returns a PMF
// normalized to sum to 1, except where documented otherwise (e.g. raw
// factor-table lookups).
//
// Numerical policy: values live in linear space for the small binary/low-
// arity domains this package is built for. NoisyOR-style accumulation over
// higher arity (see package model) switches to log space internally before
// handing back a PMF; this package itself only ever materializes linear
// probabilities.
package pmf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptySupport is returned when an operation would produce a PMF with no
// support at all (e.g. intersecting two disjoint supports under Product).
var ErrEmptySupport = errors.New("pmf: empty support")

// ErrZeroMass is returned when normalization would divide by zero — the
// model has assigned zero probability mass everywhere in the support.
var ErrZeroMass = errors.New("pmf: normalization by zero mass")

// ErrSupportMismatch is returned when two PMFs are combined under an
// operation that requires a specific support relationship the inputs don't
// satisfy.
var ErrSupportMismatch = errors.New("pmf: support mismatch")

// PMF is a dense probability vector over [first, first+len(p)-1].
type PMF struct {
	first int
	p     []float64
}

// New constructs a PMF with the given first-support index and probability
// values. The values are copied; New does not normalize — callers that need
// a normalized result should call Normalize explicitly.
func New(first int, values []float64) PMF {
	p := make([]float64, len(values))
	copy(p, values)
	return PMF{first: first, p: p}
}

// Uniform returns a PMF uniform over the inclusive integer range [lo, hi].
func Uniform(lo, hi int) PMF {
	n := hi - lo + 1
	if n <= 0 {
		return PMF{first: lo, p: nil}
	}
	p := make([]float64, n)
	mass := 1.0 / float64(n)
	for i := range p {
		p[i] = mass
	}
	return PMF{first: lo, p: p}
}

// Delta returns a PMF placing all mass on the single value x.
func Delta(x int) PMF {
	return PMF{first: x, p: []float64{1}}
}

// Bernoulli returns a PMF over {0,1} with P(1) = p1.
func Bernoulli(p1 float64) PMF {
	return PMF{first: 0, p: []float64{1 - p1, p1}}
}

// FirstSupport returns the smallest index with potentially nonzero mass.
func (m PMF) FirstSupport() int { return m.first }

// LastSupport returns the largest index with potentially nonzero mass.
func (m PMF) LastSupport() int { return m.first + len(m.p) - 1 }

// Len reports the width of the dense support window.
func (m PMF) Len() int { return len(m.p) }

// At returns the probability at index i, or 0 if i falls outside the
// dense support window.
func (m PMF) At(i int) float64 {
	j := i - m.first
	if j < 0 || j >= len(m.p) {
		return 0
	}
	return m.p[j]
}

// Values returns a copy of the dense probability vector, indexed from
// FirstSupport().
func (m PMF) Values() []float64 {
	out := make([]float64, len(m.p))
	copy(out, m.p)
	return out
}

// Sum returns the total probability mass currently stored (should be ~1 for
// any PMF returned by an exported operation, but may differ for raw tables
// fed in by a caller before normalization).
func (m PMF) Sum() float64 {
	return floats.Sum(m.p)
}

// Normalize rescales m so its mass sums to 1. It returns ErrZeroMass if the
// total mass is zero (a fatal model error per the belief-propagation
// engine's numerical policy: any normalization by zero is treated as a
// structural failure of the factor graph, not a transient numerical issue).
func (m PMF) Normalize() (PMF, error) {
	total := m.Sum()
	if total == 0 {
		return PMF{}, ErrZeroMass
	}
	out := make([]float64, len(m.p))
	floats.ScaleTo(out, 1/total, m.p)
	return PMF{first: m.first, p: out}, nil
}

// Product computes the pointwise product of a and b over the intersection
// of their supports, then normalizes. It returns ErrEmptySupport if the
// supports do not overlap at all.
func Product(a, b PMF) (PMF, error) {
	lo := max(a.first, b.first)
	hi := min(a.LastSupport(), b.LastSupport())
	if hi < lo {
		return PMF{}, fmt.Errorf("pmf: Product: %w", ErrEmptySupport)
	}
	out := make([]float64, hi-lo+1)
	for i := range out {
		x := lo + i
		out[i] = a.At(x) * b.At(x)
	}
	raw := PMF{first: lo, p: out}
	normalized, err := raw.Normalize()
	if err != nil {
		return PMF{}, fmt.Errorf("pmf: Product: %w", err)
	}
	return normalized, nil
}

// Convolve computes the discrete convolution of a and b: the distribution of
// the sum of two independent integer random variables with distributions a
// and b. The result's support is [a.first+b.first, a.Last+b.Last]. Convolve
// does not require normalized inputs and returns an unnormalized result
// scaled by the product of the input masses; callers that need a proper
// distribution should Normalize the result.
func Convolve(a, b PMF) PMF {
	if len(a.p) == 0 || len(b.p) == 0 {
		return PMF{first: a.first + b.first, p: nil}
	}
	out := make([]float64, len(a.p)+len(b.p)-1)
	for i, av := range a.p {
		if av == 0 {
			continue
		}
		for j, bv := range b.p {
			out[i+j] += av * bv
		}
	}
	return PMF{first: a.first + b.first, p: out}
}

// Deconvolve recovers the distribution of one binary convolution operand
// given the convolved sum's distribution `sum` and the other operand's
// distribution `otherSum`, i.e. it solves sum = Convolve(result, otherSum)
// for a result over {0,1} and returns (result(0), result(1)).
//
// The operand is binary, so sum(k) = result(0)·other(k) + result(1)·other(k-1)
// and the two unknowns follow by forward substitution from the lowest index
// where otherSum has mass. Only that index and the next one of `sum` are
// read, so the inputs must actually be related by convolution for the
// result to be meaningful. If otherSum has no mass at all, Deconvolve
// returns (0, 0).
func Deconvolve(sum PMF, otherSum PMF) (p0, p1 float64) {
	// At the lowest index f with other(f) > 0, other(f-1) is zero, so
	//   sum(f)   = result(0)·other(f)
	//   sum(f+1) = result(0)·other(f+1) + result(1)·other(f)
	for f := otherSum.FirstSupport(); f <= otherSum.LastSupport(); f++ {
		of := otherSum.At(f)
		if of == 0 {
			continue
		}
		p0 = sum.At(f) / of
		p1 = (sum.At(f+1) - p0*otherSum.At(f+1)) / of
		return p0, p1
	}
	return 0, 0
}

// Marginalize sums a dense multi-dimensional factor table along one axis,
// returning a PMF over the remaining axis's support. table[i][j] indexes
// the factor's two adjacent variables; axis selects which index is summed
// away (0 sums over i for each j, 1 sums over j for each i). The result is
// not normalized: its mass equals the table's total mass.
func Marginalize(table [][]float64, axis int, firstOut int) (PMF, error) {
	if len(table) == 0 {
		return PMF{}, fmt.Errorf("pmf: Marginalize: %w", ErrEmptySupport)
	}
	switch axis {
	case 0:
		n := len(table[0])
		out := make([]float64, n)
		for _, row := range table {
			for j, v := range row {
				out[j] += v
			}
		}
		return PMF{first: firstOut, p: out}, nil
	case 1:
		out := make([]float64, len(table))
		for i, row := range table {
			out[i] = floats.Sum(row)
		}
		return PMF{first: firstOut, p: out}, nil
	default:
		return PMF{}, fmt.Errorf("pmf: Marginalize: invalid axis %d: %w", axis, ErrSupportMismatch)
	}
}

// LInfDistance returns max |a_i - b_i| over the union of a and b's supports,
// the convergence metric the scheduler uses to decide whether an edge's
// outgoing message has stabilized.
func LInfDistance(a, b PMF) float64 {
	lo := min(a.first, b.first)
	hi := max(a.LastSupport(), b.LastSupport())
	maxDiff := 0.0
	for i := lo; i <= hi; i++ {
		d := math.Abs(a.At(i) - b.At(i))
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}

// Dampen blends old and new pointwise as λ·old + (1-λ)·new over the union of
// their supports, then renormalizes. λ=0 reproduces new exactly (the
// undamped update); λ approaching 1 slows convergence but never changes a
// tree's fixed point.
func Dampen(old, new PMF, lambda float64) (PMF, error) {
	lo := min(old.first, new.first)
	hi := max(old.LastSupport(), new.LastSupport())
	out := make([]float64, hi-lo+1)
	for i := range out {
		x := lo + i
		out[i] = lambda*old.At(x) + (1-lambda)*new.At(x)
	}
	blended := PMF{first: lo, p: out}
	normalized, err := blended.Normalize()
	if err != nil {
		return PMF{}, fmt.Errorf("pmf: Dampen: %w", err)
	}
	return normalized, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
