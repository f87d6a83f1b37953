package constants_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pqc-lab/kembench/internal/constants"
)

func TestLimitsAreSane(t *testing.T) {
	assert.Greater(t, constants.MaxLatencySamples, 0)
	assert.Greater(t, constants.DefaultSampleInterval.Seconds(), 0.0)
	assert.Greater(t, constants.SamplerStopTimeout, constants.DefaultSampleInterval)
	assert.EqualValues(t, 1<<32-1, constants.MaxSeed)
}

func TestHybridLabelsAreFixed(t *testing.T) {
	// These are derivation inputs; a change here silently changes every
	// hybrid shared secret.
	assert.Equal(t, "pqc-lab-hybrid", constants.HybridSalt)
	assert.Equal(t, "crypto-agility-hybrid", constants.HybridInfo)
	assert.Equal(t, 32, constants.HybridOutputLen)
	assert.Equal(t, 2, constants.HybridComponents)
}

func TestDomainSeparatorsAreDistinct(t *testing.T) {
	assert.NotEqual(t, constants.DomainSeparatorKeyGen, constants.DomainSeparatorEncap)
}

func TestDefaultPercentilesAscending(t *testing.T) {
	for i := 1; i < len(constants.DefaultPercentiles); i++ {
		assert.Less(t, constants.DefaultPercentiles[i-1], constants.DefaultPercentiles[i])
	}
}
