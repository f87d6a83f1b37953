package provider

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	kerrors "github.com/pqc-lab/kembench/internal/errors"
	"github.com/pqc-lab/kembench/pkg/profile"
)

// Mock algorithm names. The mock provider performs no real cryptography; it
// exists so the harness, reports, and failure accounting can be exercised
// without a KEM in the loop.
const (
	MockAlgorithmECDH = "mock_ecdh"
	MockAlgorithmKEM  = "mock_pqc_kem"

	// mockFailureRate is the injected failure probability when the profile
	// enables failure_injection.
	mockFailureRate = 0.1
)

// mockProvider derives each shared secret as SHA-256(seed:index:algorithm),
// matching what a deterministic smoke profile commits to. With failure
// injection on, a seeded RNG fails roughly one exchange in ten.
type mockProvider struct {
	algorithm string
	seed      uint64
	iter      atomic.Uint64

	mu  sync.Mutex
	rng *rand.Rand // nil unless failure injection is enabled
}

func newMockProvider(p *profile.Profile) (*mockProvider, error) {
	alg := p.KeyExchange.Algorithm
	if p.KeyExchange.Hybrid != nil {
		return nil, fmt.Errorf("%w: mock provider has no hybrid mode", kerrors.ErrUnknownAlgorithm)
	}
	switch alg {
	case MockAlgorithmECDH, MockAlgorithmKEM:
	default:
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownAlgorithm, alg)
	}

	m := &mockProvider{algorithm: alg, seed: p.KeyExchange.Seed}
	if p.KeyExchange.FailureInjection {
		m.rng = rand.New(rand.NewSource(int64(p.KeyExchange.Seed)))
	}
	return m, nil
}

func (m *mockProvider) Name() string { return profile.ProviderMock }

func (m *mockProvider) Algorithm() string { return m.algorithm }

func (m *mockProvider) SharedSecretSize() int { return sha256.Size }

func (m *mockProvider) Exchange(ctx context.Context) (*Exchange, error) {
	if err := checkContext(ctx, m.Name()); err != nil {
		return nil, err
	}

	start := time.Now()
	index := m.iter.Add(1) - 1

	h := sha256.New()
	fmt.Fprintf(h, "%d:%d:%s", m.seed, index, m.algorithm)
	ss := h.Sum(nil)

	if m.rng != nil {
		m.mu.Lock()
		fail := m.rng.Float64() < mockFailureRate
		m.mu.Unlock()
		if fail {
			return nil, kerrors.NewProviderError(m.Name(), "Exchange", kerrors.ErrInjectedFailure)
		}
	}

	return &Exchange{SharedSecret: ss, Elapsed: time.Since(start)}, nil
}
