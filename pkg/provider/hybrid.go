package provider

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"
	"golang.org/x/crypto/hkdf"

	"github.com/pqc-lab/kembench/internal/constants"
	kerrors "github.com/pqc-lab/kembench/internal/errors"
	"github.com/pqc-lab/kembench/pkg/profile"
)

// hybridProvider composes two KEMs per handshake and derives a single hybrid
// secret from both component secrets:
//
//	ss = HKDF-SHA256(ss_1 || ss_2, salt, info, output_len)
//
// The derived secret is secure if either component is; a failure in either
// component fails the whole handshake. Component order follows the profile
// and is part of the derivation input.
type hybridProvider struct {
	components    [constants.HybridComponents]kem.Scheme
	outputLen     int
	deterministic bool
	seed          uint64
	iter          atomic.Uint64
	label         string
}

func newHybridProvider(p *profile.Profile) (*hybridProvider, error) {
	h := p.KeyExchange.Hybrid
	hp := &hybridProvider{
		outputLen:     h.OutputLen,
		deterministic: p.Deterministic(),
		seed:          p.KeyExchange.Seed,
	}
	for i, name := range h.Algorithms {
		scheme := schemes.ByName(name)
		if scheme == nil {
			return nil, fmt.Errorf("%w: %q", kerrors.ErrUnknownAlgorithm, name)
		}
		hp.components[i] = scheme
	}
	hp.label = hp.components[0].Name() + "+" + hp.components[1].Name()
	return hp, nil
}

func (h *hybridProvider) Name() string { return "hybrid" }

func (h *hybridProvider) Algorithm() string { return h.label }

func (h *hybridProvider) SharedSecretSize() int { return h.outputLen }

func (h *hybridProvider) Exchange(ctx context.Context) (*Exchange, error) {
	if err := checkContext(ctx, h.Name()); err != nil {
		return nil, err
	}

	start := time.Now()
	it := iterationSeed{seed: h.seed, index: h.iter.Add(1) - 1}

	secrets := make([][]byte, 0, len(h.components))
	for i, scheme := range h.components {
		ss, err := h.componentHandshake(scheme, it, componentLabel(scheme, i))
		if err != nil {
			return nil, err
		}
		secrets = append(secrets, ss)
	}

	ss, err := combineSecrets(secrets, h.outputLen)
	if err != nil {
		return nil, kerrors.NewProviderError(h.Name(), "DeriveSecret", err)
	}
	return &Exchange{SharedSecret: ss, Elapsed: time.Since(start)}, nil
}

func (h *hybridProvider) componentHandshake(scheme kem.Scheme, it iterationSeed, label string) ([]byte, error) {
	var (
		pk    kem.PublicKey
		sk    kem.PrivateKey
		ct    []byte
		ssEnc []byte
		err   error
	)

	if h.deterministic {
		pk, sk = scheme.DeriveKeyPair(it.keyGenSeed(label, scheme.SeedSize()))
		ct, ssEnc, err = scheme.EncapsulateDeterministically(
			pk, it.encapSeed(label, scheme.EncapsulationSeedSize()))
	} else {
		pk, sk, err = scheme.GenerateKeyPair()
		if err != nil {
			return nil, kerrors.NewProviderError(h.Name(), label+".GenerateKeyPair", err)
		}
		ct, ssEnc, err = scheme.Encapsulate(pk)
	}
	if err != nil {
		return nil, kerrors.NewProviderError(h.Name(), label+".Encapsulate", err)
	}

	ssDec, err := scheme.Decapsulate(sk, ct)
	if err != nil {
		return nil, kerrors.NewProviderError(h.Name(), label+".Decapsulate", err)
	}
	if !bytes.Equal(ssEnc, ssDec) {
		return nil, kerrors.NewProviderError(h.Name(), label+".Exchange", kerrors.ErrSecretMismatch)
	}
	return ssDec, nil
}

// componentLabel disambiguates seed expansion when a hybrid pairs the same
// scheme with itself.
func componentLabel(scheme kem.Scheme, index int) string {
	return fmt.Sprintf("%d:%s", index, scheme.Name())
}

// combineSecrets runs the component secrets through HKDF-SHA256 with the
// fixed hybrid salt and info labels.
func combineSecrets(secrets [][]byte, outputLen int) ([]byte, error) {
	var ikm []byte
	for _, ss := range secrets {
		ikm = append(ikm, ss...)
	}

	r := hkdf.New(sha256.New, ikm,
		[]byte(constants.HybridSalt), []byte(constants.HybridInfo))
	out := make([]byte, outputLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}
