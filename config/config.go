// Package config loads and validates the run configuration described in
// spec.md §6, mirroring this codebase's struct-plus-yaml.v3 settings
// pattern: a plain exported struct with `yaml:"..."` tags, a Default
// constructor, and a Validate method returning every violation found
// rather than the first.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scheduler names one of the three message-update disciplines package
// scheduler implements.
type Scheduler string

const (
	SchedulerPriority           Scheduler = "priority"
	SchedulerFIFO                Scheduler = "fifo"
	SchedulerRandomSpanningTree Scheduler = "random_spanning_tree"
)

// GridRange is an inclusive, evenly-stepped scan range for one
// hyperparameter during grid search.
type GridRange struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Config is the full set of tunables a run accepts.
type Config struct {
	// Model hyperparameters (model.Params), used directly when GridSearch
	// is disabled.
	Gamma    float64 `yaml:"gamma"`
	Alpha    float64 `yaml:"alpha"`
	Beta     float64 `yaml:"beta"`
	Exponent float64 `yaml:"exponent"`

	// Belief-propagation controls.
	Scheduler     Scheduler `yaml:"scheduler"`
	Lambda        float64   `yaml:"lambda"`
	Epsilon       float64   `yaml:"epsilon"`
	MaxIterations int       `yaml:"max_iterations"`

	// Identification-graph preprocessing.
	TopPSMsPerSpectrum int  `yaml:"top_psms_per_spectrum"`
	GroupPeptides      bool `yaml:"group_peptides"`

	// CC-driver concurrency.
	Workers int `yaml:"workers"`

	// Grid search, enabled only when GridSearch.Enabled is true; when
	// enabled, Gamma/Alpha/Beta above are ignored in favor of the scan
	// ranges and the argmax over FDRScorer.
	GridSearch GridSearchConfig `yaml:"grid_search"`
}

// GridSearchConfig configures gridsearch.Scan.
type GridSearchConfig struct {
	Enabled bool      `yaml:"enabled"`
	Gamma   GridRange `yaml:"gamma"`
	Alpha   GridRange `yaml:"alpha"`
	Beta    GridRange `yaml:"beta"`
	Workers int       `yaml:"workers"`
}

// Default returns the default configuration: γ=0.9, α=0.1, β=0.001,
// exponent=1, priority scheduler, λ=1e-3, ε=1e-5, max_iterations=100,
// top_psms_per_spectrum=1, group_peptides=false, workers=1, grid search
// disabled.
func Default() Config {
	return Config{
		Gamma:              0.9,
		Alpha:              0.1,
		Beta:               0.001,
		Exponent:           1,
		Scheduler:          SchedulerPriority,
		Lambda:             1e-3,
		Epsilon:            1e-5,
		MaxIterations:      100,
		TopPSMsPerSpectrum: 1,
		GroupPeptides:      false,
		Workers:            1,
	}
}

// Load reads and parses a YAML configuration file, starting from Default
// and overwriting only the fields present in the file, then validates the
// result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: Load(%s): %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: Load(%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field spec.md §6 constrains and returns a *Error
// listing every violation, or nil.
func (c Config) Validate() error {
	var violations []string
	inRange := func(name string, v, lo, hi float64) {
		if v < lo || v > hi {
			violations = append(violations, fieldf("%s=%v out of [%v,%v]", name, v, lo, hi))
		}
	}
	inRange("gamma", c.Gamma, 0, 1)
	inRange("alpha", c.Alpha, 0, 1)
	inRange("beta", c.Beta, 0, 1)
	if c.Exponent != 1 {
		violations = append(violations, fieldf("exponent=%v unsupported, only 1 is implemented", c.Exponent))
	}
	switch c.Scheduler {
	case SchedulerPriority, SchedulerFIFO, SchedulerRandomSpanningTree:
	default:
		violations = append(violations, fieldf("scheduler=%q not one of priority|fifo|random_spanning_tree", c.Scheduler))
	}
	if c.Lambda < 0 || c.Lambda >= 1 {
		violations = append(violations, fieldf("lambda=%v out of [0,1)", c.Lambda))
	}
	if c.Epsilon <= 0 {
		violations = append(violations, fieldf("epsilon=%v must be positive", c.Epsilon))
	}
	if c.MaxIterations <= 0 {
		violations = append(violations, fieldf("max_iterations=%v must be positive", c.MaxIterations))
	}
	if c.TopPSMsPerSpectrum < 0 {
		violations = append(violations, fieldf("top_psms_per_spectrum=%v must be >= 0 (0 means keep all)", c.TopPSMsPerSpectrum))
	}
	if c.Workers <= 0 {
		violations = append(violations, fieldf("workers=%v must be positive", c.Workers))
	}
	if c.GridSearch.Enabled {
		checkRange := func(name string, r GridRange) {
			if r.Step <= 0 {
				violations = append(violations, fieldf("grid_search.%s.step=%v must be positive", name, r.Step))
			}
			if r.Min > r.Max {
				violations = append(violations, fieldf("grid_search.%s: min=%v > max=%v", name, r.Min, r.Max))
			}
		}
		checkRange("gamma", c.GridSearch.Gamma)
		checkRange("alpha", c.GridSearch.Alpha)
		checkRange("beta", c.GridSearch.Beta)
		if c.GridSearch.Workers <= 0 {
			violations = append(violations, "grid_search.workers must be positive")
		}
	}

	if len(violations) > 0 {
		return &Error{Violations: violations}
	}
	return nil
}
