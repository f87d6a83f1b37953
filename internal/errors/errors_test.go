package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/pqc-lab/kembench/internal/errors"
)

func TestProviderErrorWrapping(t *testing.T) {
	err := kerrors.NewProviderError("circl", "Encapsulate", kerrors.ErrSecretMismatch)

	assert.Equal(t, "circl: Encapsulate: provider: shared secret mismatch", err.Error())
	assert.True(t, stderrors.Is(err, kerrors.ErrSecretMismatch))

	var provErr *kerrors.ProviderError
	require.True(t, stderrors.As(err, &provErr))
	assert.Equal(t, "circl", provErr.Provider)
	assert.Equal(t, "Encapsulate", provErr.Op)
}

func TestProviderErrorThroughFmtWrap(t *testing.T) {
	inner := kerrors.NewProviderError("mock", "Exchange", kerrors.ErrInjectedFailure)
	outer := fmt.Errorf("repeat 2: %w", inner)

	assert.True(t, stderrors.Is(outer, kerrors.ErrInjectedFailure))

	var provErr *kerrors.ProviderError
	assert.True(t, stderrors.As(outer, &provErr))
}

func TestProfileErrorWrapping(t *testing.T) {
	err := kerrors.NewProfileError("run.concurrency", kerrors.ErrInvalidConcurrency)

	assert.Equal(t, `profile field "run.concurrency": profile: concurrency must be > 0`, err.Error())
	assert.True(t, stderrors.Is(err, kerrors.ErrInvalidConcurrency))

	var profErr *kerrors.ProfileError
	require.True(t, stderrors.As(err, &profErr))
	assert.Equal(t, "run.concurrency", profErr.Field)
}

func TestConvenienceWrappers(t *testing.T) {
	err := kerrors.NewProviderError("circl", "Decapsulate", kerrors.ErrSecretMismatch)

	assert.True(t, kerrors.Is(err, kerrors.ErrSecretMismatch))
	assert.False(t, kerrors.Is(err, kerrors.ErrInjectedFailure))

	var provErr *kerrors.ProviderError
	assert.True(t, kerrors.As(err, &provErr))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		kerrors.ErrProfileNotFound,
		kerrors.ErrInvalidProfile,
		kerrors.ErrInvalidConcurrency,
		kerrors.ErrInvalidDuration,
		kerrors.ErrInvalidWarmup,
		kerrors.ErrInvalidRepeats,
		kerrors.ErrInvalidPercentile,
		kerrors.ErrInvalidSeed,
		kerrors.ErrInvalidSeedMode,
		kerrors.ErrUnknownProvider,
		kerrors.ErrUnknownAlgorithm,
		kerrors.ErrSecretMismatch,
		kerrors.ErrHybridArity,
		kerrors.ErrInjectedFailure,
		kerrors.ErrNoMeasurement,
		kerrors.ErrRunAborted,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, stderrors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
