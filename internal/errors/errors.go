// Package errors defines custom error types for the kembench harness.
// These errors separate fatal configuration failures, which abort a run
// before it starts, from per-operation provider failures, which are recorded
// as data and never stop the run.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for profile loading and validation
var (
	// ErrProfileNotFound indicates the profile path could not be read
	ErrProfileNotFound = errors.New("profile: not found")

	// ErrInvalidProfile indicates the profile failed validation
	ErrInvalidProfile = errors.New("profile: invalid")

	// ErrInvalidConcurrency indicates a non-positive worker count
	ErrInvalidConcurrency = errors.New("profile: concurrency must be > 0")

	// ErrInvalidDuration indicates a non-positive measurement duration
	ErrInvalidDuration = errors.New("profile: duration must be > 0")

	// ErrInvalidWarmup indicates a negative warmup duration
	ErrInvalidWarmup = errors.New("profile: warmup must be >= 0")

	// ErrInvalidRepeats indicates a non-positive repeat count
	ErrInvalidRepeats = errors.New("profile: repeats must be >= 1")

	// ErrInvalidPercentile indicates a percentile outside (0, 100]
	ErrInvalidPercentile = errors.New("profile: percentiles must be in (0, 100]")

	// ErrInvalidSeed indicates a seed outside the accepted 32-bit range
	ErrInvalidSeed = errors.New("profile: seed out of range")

	// ErrInvalidSeedMode indicates an unrecognized seed mode
	ErrInvalidSeedMode = errors.New("profile: seed_mode must be 'deterministic' or 'random'")
)

// Sentinel errors for provider construction and operation
var (
	// ErrUnknownProvider indicates the profile named an unregistered provider
	ErrUnknownProvider = errors.New("provider: unknown provider")

	// ErrUnknownAlgorithm indicates the algorithm is not in the KEM registry
	ErrUnknownAlgorithm = errors.New("provider: unknown algorithm")

	// ErrSecretMismatch indicates encapsulation and decapsulation disagreed
	ErrSecretMismatch = errors.New("provider: shared secret mismatch")

	// ErrHybridArity indicates a hybrid profile without exactly two algorithms
	ErrHybridArity = errors.New("provider: hybrid requires exactly two algorithms")

	// ErrInjectedFailure is the synthetic failure raised by the mock provider
	// when failure injection fires
	ErrInjectedFailure = errors.New("provider: injected failure")
)

// Sentinel errors for harness execution
var (
	// ErrNoMeasurement indicates the measurement window produced no operations
	ErrNoMeasurement = errors.New("harness: no operations completed")

	// ErrRunAborted indicates the run context was canceled before the window
	// closed
	ErrRunAborted = errors.New("harness: run aborted")
)

// ProviderError wraps an operation failure with the provider and operation
// that raised it. It marks a failed handshake attempt, not a fatal condition.
type ProviderError struct {
	Provider string // Provider name (e.g. "circl", "mock")
	Op       string // Operation that failed (e.g. "Encapsulate")
	Err      error  // Underlying error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider, op string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Err: err}
}

// ProfileError wraps a validation error with the profile field that failed.
// Profile errors are fatal and reported before any run starts.
type ProfileError struct {
	Field string // Profile field that failed validation
	Err   error  // Underlying error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile field %q: %v", e.Field, e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

// NewProfileError creates a new ProfileError
func NewProfileError(field string, err error) *ProfileError {
	return &ProfileError{Field: field, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
