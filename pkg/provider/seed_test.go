package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandSeedDeterministic(t *testing.T) {
	a := expandSeed("domain", 42, 0, "ML-KEM-768", 64)
	b := expandSeed("domain", 42, 0, "ML-KEM-768", 64)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestExpandSeedSeparation(t *testing.T) {
	base := expandSeed("domain", 42, 0, "label", 32)

	assert.NotEqual(t, base, expandSeed("other", 42, 0, "label", 32), "domain must separate")
	assert.NotEqual(t, base, expandSeed("domain", 43, 0, "label", 32), "seed must separate")
	assert.NotEqual(t, base, expandSeed("domain", 42, 1, "label", 32), "index must separate")
	assert.NotEqual(t, base, expandSeed("domain", 42, 0, "other", 32), "label must separate")
}

func TestExpandSeedPrefixUnambiguous(t *testing.T) {
	// Length prefixes keep ("ab", "c") distinct from ("a", "bc").
	a := expandSeed("ab", 0, 0, "c", 32)
	b := expandSeed("a", 0, 0, "bc", 32)
	assert.NotEqual(t, a, b)
}
