// Package fuzz provides fuzz tests for the profile parsing surface.
//
// Run fuzz tests with:
//
//	go test -fuzz=FuzzLoadProfile -fuzztime=30s ./test/fuzz/
//	go test -fuzz=FuzzParsePercentiles -fuzztime=30s ./test/fuzz/
package fuzz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pqc-lab/kembench/pkg/profile"
)

// FuzzLoadProfile fuzzes the TOML profile loader. Profiles are operator
// input, so the loader must reject garbage with an error, never a panic,
// and anything it accepts must satisfy the validated invariants.
func FuzzLoadProfile(f *testing.F) {
	// Seed corpus
	f.Add(`name = "x"
provider = "mock"
[key_exchange]
algorithm = "mock_ecdh"
[run]
concurrency = 1
duration = "1s"
`)
	f.Add(`name = "x"`)
	f.Add(``)
	f.Add(`provider = 3`)
	f.Add(`[run]
concurrency = -1`)
	f.Add(`[key_exchange.hybrid]
algorithms = ["a"]`)

	f.Fuzz(func(t *testing.T, contents string) {
		path := filepath.Join(t.TempDir(), "fuzz.toml")
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Skip()
		}

		p, err := profile.Load(path, profile.Overrides{})
		if err != nil {
			return
		}

		// Accepted profiles must be runnable.
		if p.Name == "" {
			t.Error("Accepted profile with empty name")
		}
		if p.Run.Concurrency < 1 {
			t.Errorf("Accepted profile with concurrency %d", p.Run.Concurrency)
		}
		if p.Run.Duration.Std() <= 0 {
			t.Errorf("Accepted profile with duration %v", p.Run.Duration.Std())
		}
		if p.Run.Repeats < 1 {
			t.Errorf("Accepted profile with repeats %d", p.Run.Repeats)
		}
		for _, q := range p.Run.Percentiles {
			if !(q > 0 && q <= 100) {
				t.Errorf("Accepted out-of-range percentile %v", q)
			}
		}
	})
}

// FuzzParsePercentiles fuzzes the CLI percentile list parser.
func FuzzParsePercentiles(f *testing.F) {
	f.Add("50,95,99,99.9")
	f.Add("")
	f.Add("0")
	f.Add("101")
	f.Add("abc")
	f.Add("50,,99")
	f.Add("1e2")

	f.Fuzz(func(t *testing.T, input string) {
		values, err := profile.ParsePercentiles(input)
		if err != nil {
			return
		}
		// Range checking happens during profile validation; the parser only
		// guarantees one value per comma-separated field.
		if strings.TrimSpace(input) != "" && len(values) != strings.Count(input, ",")+1 {
			t.Errorf("Parsed %d values from %q", len(values), input)
		}
	})
}
