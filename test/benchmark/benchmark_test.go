// Package benchmark provides performance benchmarks for the kembench
// providers and the report statistics.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./test/benchmark/
package benchmark

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/pqc-lab/kembench/pkg/profile"
	"github.com/pqc-lab/kembench/pkg/provider"
	"github.com/pqc-lab/kembench/pkg/report"
)

func newProvider(b *testing.B, p *profile.Profile) provider.Provider {
	b.Helper()
	prov, err := provider.New(p)
	if err != nil {
		b.Fatal(err)
	}
	return prov
}

func circlProfile(algorithm string) *profile.Profile {
	return &profile.Profile{
		Name:     "bench",
		Provider: profile.ProviderCIRCL,
		KeyExchange: profile.KeyExchange{
			Algorithm: algorithm,
			SeedMode:  profile.SeedModeRandom,
		},
	}
}

// --- Provider Exchange Benchmarks ---

func BenchmarkMockExchange(b *testing.B) {
	prov := newProvider(b, &profile.Profile{
		Name:     "bench",
		Provider: profile.ProviderMock,
		KeyExchange: profile.KeyExchange{
			Algorithm: provider.MockAlgorithmKEM,
			SeedMode:  profile.SeedModeDeterministic,
		},
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := prov.Exchange(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMLKEM512Exchange(b *testing.B) {
	benchmarkExchange(b, circlProfile("ML-KEM-512"))
}

func BenchmarkMLKEM768Exchange(b *testing.B) {
	benchmarkExchange(b, circlProfile("ML-KEM-768"))
}

func BenchmarkMLKEM1024Exchange(b *testing.B) {
	benchmarkExchange(b, circlProfile("ML-KEM-1024"))
}

func BenchmarkHybridExchange(b *testing.B) {
	benchmarkExchange(b, &profile.Profile{
		Name:     "bench",
		Provider: profile.ProviderCIRCL,
		KeyExchange: profile.KeyExchange{
			SeedMode: profile.SeedModeRandom,
			Hybrid: &profile.Hybrid{
				Algorithms: []string{"X25519-ML-KEM-768", "ML-KEM-768"},
				KDF:        "hkdf-sha256",
				OutputLen:  32,
			},
		},
	})
}

func benchmarkExchange(b *testing.B, p *profile.Profile) {
	prov := newProvider(b, p)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := prov.Exchange(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Statistics Benchmarks ---

func BenchmarkPercentile(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	sorted := make([]float64, 100_000)
	for i := range sorted {
		sorted[i] = rng.Float64() * 100
	}
	sort.Float64s(sorted)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		report.Percentile(sorted, 99.9)
	}
}

func BenchmarkSummarize(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	latencies := make([]float64, 100_000)
	for i := range latencies {
		latencies[i] = rng.Float64() * 100
	}
	percentiles := []float64{50, 95, 99, 99.9}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		report.Summarize(latencies, percentiles)
	}
}
