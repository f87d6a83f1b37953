package provider

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"

	kerrors "github.com/pqc-lab/kembench/internal/errors"
	"github.com/pqc-lab/kembench/pkg/profile"
)

// circlProvider drives a single KEM from the cloudflare/circl registry.
//
// Each Exchange call runs a full handshake against fresh keys:
//
//	(pk, sk) <- KeyGen()
//	(ct, ss_enc) <- Encapsulate(pk)
//	ss_dec <- Decapsulate(sk, ct)
//	require ss_enc == ss_dec
//
// In deterministic mode KeyGen and Encapsulate take SHAKE-256-expanded seed
// material instead of system randomness; the iteration counter makes every
// handshake of a run distinct yet reproducible.
type circlProvider struct {
	scheme        kem.Scheme
	deterministic bool
	seed          uint64
	iter          atomic.Uint64
}

func newCIRCLProvider(p *profile.Profile) (*circlProvider, error) {
	name := p.KeyExchange.Algorithm
	scheme := schemes.ByName(name)
	if scheme == nil {
		return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownAlgorithm, name)
	}
	return &circlProvider{
		scheme:        scheme,
		deterministic: p.Deterministic(),
		seed:          p.KeyExchange.Seed,
	}, nil
}

func (c *circlProvider) Name() string { return profile.ProviderCIRCL }

func (c *circlProvider) Algorithm() string { return c.scheme.Name() }

func (c *circlProvider) SharedSecretSize() int { return c.scheme.SharedKeySize() }

func (c *circlProvider) Exchange(ctx context.Context) (*Exchange, error) {
	if err := checkContext(ctx, c.Name()); err != nil {
		return nil, err
	}

	start := time.Now()
	ss, err := c.handshake()
	if err != nil {
		return nil, err
	}
	return &Exchange{SharedSecret: ss, Elapsed: time.Since(start)}, nil
}

func (c *circlProvider) handshake() ([]byte, error) {
	var (
		pk    kem.PublicKey
		sk    kem.PrivateKey
		ct    []byte
		ssEnc []byte
		err   error
	)

	if c.deterministic {
		it := iterationSeed{seed: c.seed, index: c.iter.Add(1) - 1}
		pk, sk = c.scheme.DeriveKeyPair(it.keyGenSeed(c.scheme.Name(), c.scheme.SeedSize()))
		ct, ssEnc, err = c.scheme.EncapsulateDeterministically(
			pk, it.encapSeed(c.scheme.Name(), c.scheme.EncapsulationSeedSize()))
	} else {
		pk, sk, err = c.scheme.GenerateKeyPair()
		if err != nil {
			return nil, kerrors.NewProviderError(c.Name(), "GenerateKeyPair", err)
		}
		ct, ssEnc, err = c.scheme.Encapsulate(pk)
	}
	if err != nil {
		return nil, kerrors.NewProviderError(c.Name(), "Encapsulate", err)
	}

	ssDec, err := c.scheme.Decapsulate(sk, ct)
	if err != nil {
		return nil, kerrors.NewProviderError(c.Name(), "Decapsulate", err)
	}
	if !bytes.Equal(ssEnc, ssDec) {
		return nil, kerrors.NewProviderError(c.Name(), "Exchange", kerrors.ErrSecretMismatch)
	}
	return ssDec, nil
}
