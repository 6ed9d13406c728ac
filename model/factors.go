package model

import (
	"fmt"
	"math"

	"github.com/pscheil/fido/factorgraph"
	"github.com/pscheil/fido/pmf"
)

// unaryFactor is a fixed Bernoulli distribution attached to exactly one
// variable, independent of any incoming message. Both ProteinFactor and
// PeptideEvidenceFactor are this shape.
type unaryFactor struct {
	varID int
	dist  pmf.PMF
}

func (u unaryFactor) Vars() []int { return []int{u.varID} }

func (u unaryFactor) MessageTo(idx int, incoming []pmf.PMF) (pmf.PMF, error) {
	return u.dist, nil
}

// ProteinFactor returns the unary prior on a Protein variable: P(v=1)=γ,
// P(v=0)=1-γ. If the factory was built WithMissingPeptidePrior, the hook is
// consulted for a per-protein override of γ; by default it is a no-op.
func (f *Factory) ProteinFactor(varID int) factorgraph.Factor {
	gamma := f.params.Gamma
	if f.priorOverride != nil {
		gamma = f.priorOverride(varID)
	}
	return unaryFactor{varID: varID, dist: pmf.Bernoulli(gamma)}
}

// PeptideEvidenceFactor returns the unary evidence factor on a PSM
// variable: P(v=1)=score, P(v=0)=1-score, interpreting score as a
// pre-computed peptide-level probability. score must lie in [0,1].
func (f *Factory) PeptideEvidenceFactor(varID int, score float64) (factorgraph.Factor, error) {
	if score < 0 || score > 1 {
		return nil, fmt.Errorf("model: PeptideEvidenceFactor(var=%d): score=%v: %w", varID, score, ErrParamOutOfRange)
	}
	return unaryFactor{varID: varID, dist: pmf.Bernoulli(score)}, nil
}

// channelFactor is the dense 2x2 table behind SumEvidenceFactor: table[a][b]
// = P(child=b | parent=a).
type channelFactor struct {
	parentID, childID int
	table             [2][2]float64
}

func (c channelFactor) Vars() []int { return []int{c.parentID, c.childID} }

func (c channelFactor) MessageTo(idx int, incoming []pmf.PMF) (pmf.PMF, error) {
	switch idx {
	case 0: // message to parent: sum over child's incoming message
		child := incoming[1]
		p0 := c.table[0][0]*child.At(0) + c.table[0][1]*child.At(1)
		p1 := c.table[1][0]*child.At(0) + c.table[1][1]*child.At(1)
		return normalizeTwo(p0, p1)
	case 1: // message to child: sum over parent's incoming message
		parent := incoming[0]
		p0 := c.table[0][0]*parent.At(0) + c.table[1][0]*parent.At(1)
		p1 := c.table[0][1]*parent.At(0) + c.table[1][1]*parent.At(1)
		return normalizeTwo(p0, p1)
	default:
		return pmf.PMF{}, fmt.Errorf("model: channelFactor.MessageTo: invalid idx %d", idx)
	}
}

func normalizeTwo(p0, p1 float64) (pmf.PMF, error) {
	raw := pmf.New(0, []float64{p0, p1})
	return raw.Normalize()
}

// SumEvidenceFactor returns the noisy-OR channel factor linking a binary
// "parent" variable (the peptide explaining this PSM) to the binary
// "child" PSM variable, parameterized by n, the number of independent
// evidence entries for this PSM:
//
//	P(child=1 | parent=0) = β
//	P(child=1 | parent=1) = 1 - (1-α)^n·(1-β)
//
// n must be positive (spec.md §3: PSM vertices carry a positive count of
// peptide-evidence entries).
func (f *Factory) SumEvidenceFactor(n int, parentID, childID int) (factorgraph.Factor, error) {
	if n <= 0 {
		return nil, fmt.Errorf("model: SumEvidenceFactor(parent=%d,child=%d): n=%d: %w", parentID, childID, n, ErrParamOutOfRange)
	}
	alpha, beta := f.params.Alpha, f.params.Beta
	var oneMinusAlphaToN float64
	if n > noisyORLogSpaceThreshold {
		// log-space accumulation to avoid underflow for large evidence counts
		oneMinusAlphaToN = math.Exp(float64(n) * math.Log1p(-alpha))
	} else {
		oneMinusAlphaToN = math.Pow(1-alpha, float64(n))
	}
	pChildGivenPresent := 1 - oneMinusAlphaToN*(1-beta)
	table := [2][2]float64{
		{1 - beta, beta},                         // parent=0 (absent)
		{1 - pChildGivenPresent, pChildGivenPresent}, // parent=1 (present)
	}
	return channelFactor{parentID: parentID, childID: childID, table: table}, nil
}

// noisyORLogSpaceThreshold is the incident-arity cutoff above which
// SumEvidenceFactor accumulates (1-α)^n in log space rather than with
// math.Pow, per spec.md §4.1's numerical policy.
const noisyORLogSpaceThreshold = 16

// adderFactor is the parametric noisy-OR combiner behind
// PeptideProbabilisticAdderFactor: its output variable is the deterministic
// indicator that at least one of its binary parents is present. It is never
// materialized as a 2^k table; MessageTo convolves (for a query into the
// output) or directly combines parent zero-probabilities (for a query into
// one parent), per spec.md's Design Notes.
type adderFactor struct {
	parentIDs []int
	outID     int
}

func (a adderFactor) Vars() []int {
	vars := make([]int, len(a.parentIDs)+1)
	copy(vars, a.parentIDs)
	vars[len(a.parentIDs)] = a.outID
	return vars
}

func (a adderFactor) MessageTo(idx int, incoming []pmf.PMF) (pmf.PMF, error) {
	k := len(a.parentIDs)
	if idx == k {
		// Message to the output: convolve every parent's incoming belief
		// into the integer sum distribution, then collapse sum=0 vs sum≥1.
		sum := pmf.Delta(0)
		for i := 0; i < k; i++ {
			sum = pmf.Convolve(sum, incoming[i])
		}
		normalized, err := sum.Normalize()
		if err != nil {
			return pmf.PMF{}, fmt.Errorf("model: adderFactor.MessageTo(out): %w", err)
		}
		return normalizeTwo(normalized.At(0), 1-normalized.At(0))
	}
	// Message to parent idx: needs the product of P(parent_j=0) over every
	// OTHER parent j, combined with the output's incoming message out.
	out := incoming[k]
	otherZeroProd := 1.0
	for i := 0; i < k; i++ {
		if i == idx {
			continue
		}
		otherZeroProd *= incoming[i].At(0)
	}
	// P(this parent=1) = out.At(1): once this parent is present the sum is
	// always ≥1 regardless of the others, so the output is always
	// explained.
	p1 := out.At(1)
	// P(this parent=0) = P(others all 0)*out.At(0) + P(others not all 0)*out.At(1)
	p0 := otherZeroProd*out.At(0) + (1-otherZeroProd)*out.At(1)
	return normalizeTwo(p0, p1)
}

// PeptideProbabilisticAdderFactor returns the deterministic noisy-OR
// combiner whose output variable (a ProteinGroup, PeptideGroup or Peptide
// node, or any other kind between Protein and PSM) is present iff at least one of parentIDs is present. Internally this is the
// distribution of the integer sum of the parents' indicators, collapsed at
// the sum=0 vs sum≥1 boundary; parentIDs must be non-empty.
func (f *Factory) PeptideProbabilisticAdderFactor(parentIDs []int, outID int) (factorgraph.Factor, error) {
	if len(parentIDs) == 0 {
		return nil, fmt.Errorf("model: PeptideProbabilisticAdderFactor(out=%d): %w", outID, ErrParamOutOfRange)
	}
	ids := make([]int, len(parentIDs))
	copy(ids, parentIDs)
	return adderFactor{parentIDs: ids, outID: outID}, nil
}
