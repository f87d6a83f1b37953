// Package kembench provides a capacity benchmarking and reproducibility
// harness for post-quantum key-exchange providers.
//
// Kembench drives repeated KEM handshakes through a pluggable provider
// interface, orchestrates concurrency sweeps, samples CPU utilization during
// the measurement window, and emits structured JSON reports. It measures
// orchestration-level capacity (throughput, latency percentiles, CPU); the
// cryptographic primitives themselves are delegated to cloudflare/circl.
//
// # Quick Start
//
// Run a single profile:
//
//	kembench run --profile profiles/mlkem768.toml --concurrency 4 \
//	    --duration 30s --warmup 5s --out reports/mlkem768_c4.json
//
// Sweep concurrency levels to find the knee point:
//
//	kembench sweep --profile profiles/mlkem768.toml \
//	    --concurrency 1,2,4,8,16 --out reports/sweep
//
// For programmatic use:
//
//	import (
//	    "github.com/pqc-lab/kembench/pkg/harness"
//	    "github.com/pqc-lab/kembench/pkg/profile"
//	    "github.com/pqc-lab/kembench/pkg/provider"
//	)
//
//	p, _ := profile.Load("profiles/mlkem768.toml", profile.Overrides{})
//	prov, _ := provider.New(p)
//	engine, _ := harness.New(prov, 4, 5*time.Second, 30*time.Second)
//	result, _ := engine.Run(ctx)
//
// # Package Structure
//
//   - pkg/profile: TOML profile loading and validation
//   - pkg/provider: key-exchange backends (circl single-KEM, hybrid, mock)
//   - pkg/harness: warmup/measure phase machine and worker pool
//   - pkg/sampler: best-effort CPU utilization sampling
//   - pkg/report: percentile aggregation and JSON/Markdown artifacts
//   - internal/constants: harness limits and defaults
//   - internal/errors: fatal vs. per-operation error types
//
// # Determinism
//
// With seed_mode = "deterministic" a profile's n-th handshake is
// reproducible across processes: key generation and encapsulation consume
// SHAKE-256-expanded seed material instead of system randomness. The
// guarantee covers key material and shared secrets, never timing; concurrent
// capacity runs remain timing non-deterministic by nature.
//
// # Failure Model
//
// Handshake failures are data, not faults: they are counted by error
// signature and reported, and the process still exits zero. Only profile
// validation, provider construction, and artifact write errors are fatal.
package kembench
