// Package model implements the message-passer factory: the four factor
// kinds the Bethe builder attaches to a factor graph (ProteinFactor,
// PeptideEvidenceFactor, SumEvidenceFactor, PeptideProbabilisticAdderFactor),
// parameterized by the three model hyperparameters γ, α, β and the
// marginalization exponent p.
package model

import (
	"errors"
	"fmt"
)

// ErrParamOutOfRange is returned by Params.Validate (and by NewFactory,
// which calls it) when γ, α, or β falls outside [0,1].
var ErrParamOutOfRange = errors.New("model: parameter out of range [0,1]")

// ErrExponentUnsupported is returned when Exponent is anything but 1: only
// sum–product marginalization is implemented; max–product (p→∞) is
// reserved for future use per spec.
var ErrExponentUnsupported = errors.New("model: only the sum-product exponent (1) is implemented")

// Params holds the three Bayesian-network hyperparameters and the
// marginalization exponent.
type Params struct {
	Gamma    float64 // protein prior: P(protein present) absent other evidence
	Alpha    float64 // peptide emission: P(an existing protein yields this peptide)
	Beta     float64 // spurious emission: P(an absent protein yields this peptide anyway)
	Exponent float64 // marginalization exponent; 1 = sum-product (only supported value)
}

// DefaultParams returns the configuration defaults from spec.md §6.
func DefaultParams() Params {
	return Params{Gamma: 0.9, Alpha: 0.1, Beta: 0.001, Exponent: 1}
}

// Validate checks that every probability parameter lies in [0,1] and that
// Exponent selects the implemented sum-product semiring.
func (p Params) Validate() error {
	for name, v := range map[string]float64{"Gamma": p.Gamma, "Alpha": p.Alpha, "Beta": p.Beta} {
		if v < 0 || v > 1 {
			return fmt.Errorf("model: Validate: %s=%v: %w", name, v, ErrParamOutOfRange)
		}
	}
	if p.Exponent != 1 {
		return fmt.Errorf("model: Validate: Exponent=%v: %w", p.Exponent, ErrExponentUnsupported)
	}
	return nil
}
