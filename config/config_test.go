package config_test

import (
	"testing"

	"github.com/pscheil/fido/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestValidateCollectsMultipleViolations(t *testing.T) {
	c := config.Default()
	c.Gamma = 2
	c.Epsilon = -1
	c.Scheduler = "bogus"

	err := c.Validate()
	require.Error(t, err)
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Violations, 3)
}

func TestValidateRejectsUnsupportedExponent(t *testing.T) {
	c := config.Default()
	c.Exponent = 2
	require.Error(t, c.Validate())
}

func TestValidateAcceptsZeroTopPSMsPerSpectrumAsKeepAll(t *testing.T) {
	c := config.Default()
	c.TopPSMsPerSpectrum = 0
	require.NoError(t, c.Validate())
}

func TestValidateRejectsNegativeTopPSMsPerSpectrum(t *testing.T) {
	c := config.Default()
	c.TopPSMsPerSpectrum = -1
	require.Error(t, c.Validate())
}
