package model

import "fmt"

// MissingPeptidePrior is the extension point the spec's Design Notes mark
// as an upstream TODO: given a protein variable id, it may override the
// flat γ prior (e.g. for proteins the current search database shows to
// have zero candidate peptides). The default factory leaves this nil,
// which ProteinFactor treats as "always use γ unchanged".
type MissingPeptidePrior func(proteinVarID int) float64

// Factory holds the resolved hyperparameters and constructs the four
// factor kinds the Bethe builder attaches to a factor graph. A Factory is
// immutable after construction and safe to share across CCs.
type Factory struct {
	params        Params
	priorOverride MissingPeptidePrior
}

// FactoryOption configures a Factory at construction time.
type FactoryOption func(*Factory)

// WithMissingPeptidePrior installs the ProteinFactor prior-override hook.
// A nil hook is a no-op (the factory keeps its previous hook, if any).
func WithMissingPeptidePrior(hook MissingPeptidePrior) FactoryOption {
	return func(f *Factory) {
		if hook != nil {
			f.priorOverride = hook
		}
	}
}

// NewFactory validates params and returns a Factory, or ErrParamOutOfRange /
// ErrExponentUnsupported wrapped with call context.
func NewFactory(params Params, opts ...FactoryOption) (*Factory, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("model: NewFactory: %w", err)
	}
	f := &Factory{params: params}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Params returns the factory's resolved hyperparameters.
func (f *Factory) Params() Params { return f.params }
