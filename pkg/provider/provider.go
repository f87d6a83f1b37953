// Package provider adapts external key-exchange libraries behind a uniform
// operation interface for the harness.
//
// A Provider performs one complete key-exchange handshake per call: key
// generation, encapsulation, decapsulation, and a shared-secret consistency
// check. Failures are returned as *errors.ProviderError values so the harness
// can count them as data; a provider never panics the run.
//
// Three variants are available, selected by the profile:
//
//   - circl: any KEM in the cloudflare/circl registry (ML-KEM, Kyber,
//     FrodoKEM, hybrids, ...)
//   - hybrid: two circl KEMs whose secrets are combined with HKDF-SHA256
//   - mock: no real cryptography, deterministic secrets and optional
//     failure injection, for tests and smoke profiles
//
// In deterministic mode a provider derives per-iteration seed material from
// the profile seed, so the n-th exchange of a run is reproducible across
// processes. Determinism covers key material and shared secrets only, never
// timing.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/pqc-lab/kembench/internal/constants"
	kerrors "github.com/pqc-lab/kembench/internal/errors"
	"github.com/pqc-lab/kembench/pkg/profile"
)

// Exchange is the outcome of one successful key-exchange handshake.
type Exchange struct {
	// SharedSecret is the secret both sides derived.
	SharedSecret []byte

	// Elapsed is the wall time the handshake took, measured inside the
	// provider so queueing in the harness is excluded.
	Elapsed time.Duration
}

// Provider is the capability interface the harness drives.
type Provider interface {
	// Name identifies the backend ("circl", "hybrid", "mock").
	Name() string

	// Algorithm identifies the KEM(s) under test.
	Algorithm() string

	// SharedSecretSize is the expected secret length in bytes.
	SharedSecretSize() int

	// Exchange performs one full handshake. It returns a *ProviderError on
	// failure; the harness records it and continues.
	Exchange(ctx context.Context) (*Exchange, error)
}

// New constructs the provider a validated profile names.
func New(p *profile.Profile) (Provider, error) {
	switch p.Provider {
	case profile.ProviderMock:
		return newMockProvider(p)
	case profile.ProviderCIRCL:
		if p.KeyExchange.Hybrid != nil {
			return newHybridProvider(p)
		}
		return newCIRCLProvider(p)
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownProvider, p.Provider)
	}
}

// iterationSeed carries the deterministic seed plan for one exchange.
type iterationSeed struct {
	seed  uint64
	index uint64
}

// keyGenSeed expands seed material for key generation.
func (s iterationSeed) keyGenSeed(label string, n int) []byte {
	return expandSeed(constants.DomainSeparatorKeyGen, s.seed, s.index, label, n)
}

// encapSeed expands seed material for deterministic encapsulation.
func (s iterationSeed) encapSeed(label string, n int) []byte {
	return expandSeed(constants.DomainSeparatorEncap, s.seed, s.index, label, n)
}

func checkContext(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return kerrors.NewProviderError(name, "Exchange", err)
	}
	return nil
}
