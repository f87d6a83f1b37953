// Package profile loads and validates benchmark profiles.
//
// A profile is a TOML document describing which provider and algorithm to
// benchmark, how the run is seeded, and how the measurement is shaped
// (concurrency, duration, warmup, repeats, percentiles). Profiles are
// immutable once validated; CLI overrides are applied before validation so a
// report always reflects a profile that passed the same checks.
//
// Example:
//
//	name = "mlkem768-capacity"
//	provider = "circl"
//
//	[key_exchange]
//	algorithm = "ML-KEM-768"
//	seed_mode = "deterministic"
//	seed = 42
//
//	[run]
//	concurrency = 4
//	duration = "30s"
//	warmup = "5s"
//	repeats = 3
//	percentiles = [50.0, 95.0, 99.0, 99.9]
//
//	[metadata]
//	owner = "capacity-team"
package profile

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pqc-lab/kembench/internal/constants"
	kerrors "github.com/pqc-lab/kembench/internal/errors"
)

// Seed modes accepted in the key_exchange section.
const (
	SeedModeDeterministic = "deterministic"
	SeedModeRandom        = "random"
)

// Provider names accepted in a profile.
const (
	ProviderCIRCL = "circl"
	ProviderMock  = "mock"
)

// Duration is a time.Duration that unmarshals from TOML strings like "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Hybrid describes a two-algorithm hybrid key exchange whose component
// shared secrets are combined with HKDF-SHA256.
type Hybrid struct {
	// Algorithms names the two component KEMs, classical-or-PQ pairing is up
	// to the profile author.
	Algorithms []string `toml:"algorithms"`

	// KDF names the combining function. Only "hkdf-sha256" is supported.
	KDF string `toml:"kdf"`

	// OutputLen is the derived secret length in bytes.
	OutputLen int `toml:"output_len"`
}

// KeyExchange configures the key-exchange operation under test.
type KeyExchange struct {
	// Algorithm is the KEM name resolved against the provider's registry,
	// e.g. "ML-KEM-768". Ignored when Hybrid is set.
	Algorithm string `toml:"algorithm"`

	// SeedMode selects deterministic (seeded) or random operation.
	SeedMode string `toml:"seed_mode"`

	// Seed is the 32-bit deterministic seed.
	Seed uint64 `toml:"seed"`

	// FailureInjection enables the mock provider's synthetic 10% failure
	// rate. Rejected for real providers.
	FailureInjection bool `toml:"failure_injection"`

	// Hybrid, when present, switches the provider to a two-KEM hybrid
	// exchange.
	Hybrid *Hybrid `toml:"hybrid"`
}

// Run shapes the measurement itself.
type Run struct {
	// Concurrency is the fixed worker pool size.
	Concurrency int `toml:"concurrency"`

	// Duration is the measurement window length.
	Duration Duration `toml:"duration"`

	// Warmup is the discarded warmup window length.
	Warmup Duration `toml:"warmup"`

	// Repeats is the number of measured runs aggregated into the summary.
	Repeats int `toml:"repeats"`

	// Percentiles are the latency quantiles reported, in percent.
	Percentiles []float64 `toml:"percentiles"`
}

// Profile is a fully validated benchmark profile. Treat as immutable.
type Profile struct {
	// Name identifies the profile in reports.
	Name string `toml:"name"`

	// Provider selects the key-exchange backend: "circl" or "mock".
	Provider string `toml:"provider"`

	// KeyExchange configures the operation under test.
	KeyExchange KeyExchange `toml:"key_exchange"`

	// Run shapes the measurement.
	Run Run `toml:"run"`

	// Metadata is copied verbatim into reports. Values are restricted to
	// strings, integers, and booleans.
	Metadata map[string]interface{} `toml:"metadata"`

	// Path records where the profile was loaded from, for the report.
	Path string `toml:"-"`
}

// Overrides carries CLI flag values that replace the corresponding run
// section fields before validation. Zero values mean "keep the profile's".
type Overrides struct {
	Concurrency int
	Duration    time.Duration
	Warmup      time.Duration
	WarmupSet   bool
	Repeats     int
	Percentiles []float64
}

// Load reads, overrides, defaults, and validates a profile.
func Load(path string, ov Overrides) (*Profile, error) {
	var p Profile
	meta, err := toml.DecodeFile(path, &p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrProfileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidProfile, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: unknown fields: %s",
			kerrors.ErrInvalidProfile, strings.Join(keys, ", "))
	}
	p.Path = path

	applyOverrides(&p, ov)
	applyDefaults(&p)

	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func applyOverrides(p *Profile, ov Overrides) {
	if ov.Concurrency > 0 {
		p.Run.Concurrency = ov.Concurrency
	}
	if ov.Duration > 0 {
		p.Run.Duration = Duration(ov.Duration)
	}
	if ov.WarmupSet {
		p.Run.Warmup = Duration(ov.Warmup)
	}
	if ov.Repeats > 0 {
		p.Run.Repeats = ov.Repeats
	}
	if len(ov.Percentiles) > 0 {
		p.Run.Percentiles = ov.Percentiles
	}
}

func applyDefaults(p *Profile) {
	if p.Provider == "" {
		p.Provider = ProviderCIRCL
	}
	if p.KeyExchange.SeedMode == "" {
		p.KeyExchange.SeedMode = SeedModeRandom
	}
	if p.Run.Concurrency == 0 {
		p.Run.Concurrency = constants.DefaultConcurrency
	}
	if p.Run.Duration == 0 {
		p.Run.Duration = Duration(constants.DefaultDuration)
	}
	if p.Run.Repeats == 0 {
		p.Run.Repeats = constants.DefaultRepeats
	}
	if len(p.Run.Percentiles) == 0 {
		p.Run.Percentiles = append([]float64(nil), constants.DefaultPercentiles...)
	}
	if h := p.KeyExchange.Hybrid; h != nil {
		if h.KDF == "" {
			h.KDF = "hkdf-sha256"
		}
		if h.OutputLen == 0 {
			h.OutputLen = constants.HybridOutputLen
		}
	}
}

func (p *Profile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return kerrors.NewProfileError("name", kerrors.ErrInvalidProfile)
	}
	switch p.Provider {
	case ProviderCIRCL, ProviderMock:
	default:
		return kerrors.NewProfileError("provider", kerrors.ErrUnknownProvider)
	}

	ke := &p.KeyExchange
	switch ke.SeedMode {
	case SeedModeDeterministic, SeedModeRandom:
	default:
		return kerrors.NewProfileError("key_exchange.seed_mode", kerrors.ErrInvalidSeedMode)
	}
	if ke.Seed > constants.MaxSeed {
		return kerrors.NewProfileError("key_exchange.seed", kerrors.ErrInvalidSeed)
	}
	if ke.FailureInjection && p.Provider != ProviderMock {
		return kerrors.NewProfileError("key_exchange.failure_injection",
			fmt.Errorf("%w: only the mock provider injects failures", kerrors.ErrInvalidProfile))
	}
	if ke.Hybrid != nil {
		h := ke.Hybrid
		if len(h.Algorithms) != constants.HybridComponents {
			return kerrors.NewProfileError("key_exchange.hybrid.algorithms", kerrors.ErrHybridArity)
		}
		for _, alg := range h.Algorithms {
			if strings.TrimSpace(alg) == "" {
				return kerrors.NewProfileError("key_exchange.hybrid.algorithms", kerrors.ErrInvalidProfile)
			}
		}
		if h.KDF != "hkdf-sha256" {
			return kerrors.NewProfileError("key_exchange.hybrid.kdf",
				fmt.Errorf("%w: unsupported kdf %q", kerrors.ErrInvalidProfile, h.KDF))
		}
		if h.OutputLen <= 0 || h.OutputLen > 255*32 {
			return kerrors.NewProfileError("key_exchange.hybrid.output_len",
				fmt.Errorf("%w: output_len out of HKDF-SHA256 range", kerrors.ErrInvalidProfile))
		}
	} else if strings.TrimSpace(ke.Algorithm) == "" {
		return kerrors.NewProfileError("key_exchange.algorithm", kerrors.ErrInvalidProfile)
	}

	r := &p.Run
	if r.Concurrency <= 0 {
		return kerrors.NewProfileError("run.concurrency", kerrors.ErrInvalidConcurrency)
	}
	if r.Duration <= 0 {
		return kerrors.NewProfileError("run.duration", kerrors.ErrInvalidDuration)
	}
	if r.Warmup < 0 {
		return kerrors.NewProfileError("run.warmup", kerrors.ErrInvalidWarmup)
	}
	if r.Repeats < 1 {
		return kerrors.NewProfileError("run.repeats", kerrors.ErrInvalidRepeats)
	}
	for _, q := range r.Percentiles {
		// The negated form keeps NaN out as well.
		if !(q > 0 && q <= 100) {
			return kerrors.NewProfileError("run.percentiles", kerrors.ErrInvalidPercentile)
		}
	}

	for k, v := range p.Metadata {
		switch v.(type) {
		case string, int64, bool:
		default:
			return kerrors.NewProfileError("metadata."+k,
				fmt.Errorf("%w: metadata values must be string, int, or bool", kerrors.ErrInvalidProfile))
		}
	}
	return nil
}

// Mode reports "hybrid" when the profile composes two KEMs, "single"
// otherwise.
func (p *Profile) Mode() string {
	if p.KeyExchange.Hybrid != nil {
		return "hybrid"
	}
	return "single"
}

// Deterministic reports whether the profile requests seeded operation.
func (p *Profile) Deterministic() bool {
	return p.KeyExchange.SeedMode == SeedModeDeterministic
}

// AlgorithmLabel returns the algorithm name for reports: a single KEM name
// or "a+b" for hybrids.
func (p *Profile) AlgorithmLabel() string {
	if h := p.KeyExchange.Hybrid; h != nil {
		return strings.Join(h.Algorithms, "+")
	}
	return p.KeyExchange.Algorithm
}

// ParsePercentiles parses a CLI percentile list like "50,95,99,99.9".
func ParsePercentiles(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		q, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", kerrors.ErrInvalidPercentile, part)
		}
		out = append(out, q)
	}
	return out, nil
}
