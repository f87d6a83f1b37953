// Package constants defines harness limits and defaults for the kembench
// capacity benchmarking tool.
package constants

import "time"

// Latency collection limits
const (
	// MaxLatencySamples caps the number of per-operation latency samples kept
	// across all workers in a single measurement window. Beyond this the run
	// is marked truncated and further latencies are dropped; success and
	// failure counters keep advancing.
	MaxLatencySamples = 2_000_000
)

// CPU sampler parameters
const (
	// DefaultSampleInterval is the cadence at which the CPU sampler polls
	// process and system utilization.
	DefaultSampleInterval = 500 * time.Millisecond

	// SamplerStopTimeout bounds how long a run waits for the sampler
	// goroutine to drain after the measurement window closes.
	SamplerStopTimeout = 2 * time.Second
)

// Seed parameters for deterministic runs
const (
	// MaxSeed is the largest profile seed value accepted. Seeds are expanded
	// into scheme-sized seed material with SHAKE-256, so a 32-bit seed space
	// is what profiles commit to.
	MaxSeed = 1<<32 - 1
)

// Hybrid key-exchange derivation labels. These are fixed protocol constants;
// changing them changes every derived hybrid secret.
const (
	// HybridSalt is the HKDF-SHA256 salt used when combining two component
	// shared secrets into one hybrid secret.
	HybridSalt = "pqc-lab-hybrid"

	// HybridInfo is the HKDF-SHA256 info string for hybrid derivation.
	HybridInfo = "crypto-agility-hybrid"

	// HybridOutputLen is the default derived hybrid secret length in bytes.
	HybridOutputLen = 32

	// HybridComponents is the number of component algorithms a hybrid
	// exchange composes.
	HybridComponents = 2
)

// Seed expansion domain separators for deterministic provider operation.
const (
	// DomainSeparatorKeyGen labels seed material for key generation.
	DomainSeparatorKeyGen = "kembench-keygen-v1"

	// DomainSeparatorEncap labels seed material for deterministic
	// encapsulation.
	DomainSeparatorEncap = "kembench-encap-v1"
)

// Profile run defaults applied when the profile omits the run section and the
// CLI does not override it.
const (
	DefaultConcurrency = 1
	DefaultDuration    = 30 * time.Second
	DefaultWarmup      = 5 * time.Second
	DefaultRepeats     = 1
)

// DefaultPercentiles are the latency quantiles reported when a profile does
// not name its own list.
var DefaultPercentiles = []float64{50, 95, 99, 99.9}

// ErrorHashLen is the number of hex characters of the SHA-256 digest kept
// when grouping operation failures by message. Full messages never reach the
// report, so provider internals cannot leak through it.
const ErrorHashLen = 12
