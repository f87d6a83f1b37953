// Package report aggregates raw harness samples into summary statistics and
// emits structured artifacts.
//
// One Report covers one profile invocation: per-repeat run blocks plus an
// aggregate summary (means and sample stdev across repeats). The JSON layout
// is stable field-for-field, so two runs of the same deterministic profile
// produce byte-identical artifacts once timing-derived fields are removed.
package report

import (
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/pqc-lab/kembench/pkg/harness"
	"github.com/pqc-lab/kembench/pkg/profile"
	"github.com/pqc-lab/kembench/pkg/sampler"
)

// ErrorCount is one aggregated failure signature.
type ErrorCount struct {
	Type    string `json:"type"`
	MsgHash string `json:"msg_hash"`
	Count   uint64 `json:"count"`
}

// RunReport holds the statistics of a single measurement window.
type RunReport struct {
	SuccessCount       uint64          `json:"success_count"`
	FailureCount       uint64          `json:"failure_count"`
	ThroughputHsPerSec float64         `json:"throughput_hs_per_sec"`
	MeasuredDurationS  float64         `json:"measured_duration_s"`
	Latency            LatencySummary  `json:"latency_ms"`
	LatencyTruncated   bool            `json:"latency_truncated"`
	Errors             []ErrorCount    `json:"errors"`
	CPU                sampler.Summary `json:"cpu"`
}

// Report is the persisted artifact of one benchmark invocation.
type Report struct {
	ProfilePath   string                 `json:"profile_path"`
	ProfileName   string                 `json:"profile_name"`
	Provider      string                 `json:"provider"`
	Algorithm     string                 `json:"algorithm"`
	Mode          string                 `json:"mode"`
	Deterministic bool                   `json:"deterministic"`
	Concurrency   int                    `json:"concurrency"`
	WarmupS       float64                `json:"warmup_s"`
	DurationS     float64                `json:"duration_s"`
	Repeats       int                    `json:"repeats"`
	TimestampUTC  string                 `json:"timestamp_utc"`
	GitCommit     string                 `json:"git_commit"`
	Environment   Environment            `json:"environment"`
	Runs          []RunReport            `json:"runs"`
	Summary       map[string]float64     `json:"summary"`
	CPU           sampler.Summary        `json:"cpu"`
	Metadata      map[string]interface{} `json:"metadata"`
	Notes         []string               `json:"notes"`
}

// Builder turns harness results into a Report for one profile.
type Builder struct {
	profile *profile.Profile
	env     Environment
	now     func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithEnvironment replaces the captured environment, used by tests that need
// reproducible artifacts.
func WithEnvironment(env Environment) BuilderOption {
	return func(b *Builder) {
		b.env = env
	}
}

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) {
		b.now = now
	}
}

// NewBuilder creates a builder for the given validated profile.
func NewBuilder(p *profile.Profile, opts ...BuilderOption) *Builder {
	b := &Builder{
		profile: p,
		env:     CaptureEnvironment(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build aggregates one run result per repeat into a Report.
func (b *Builder) Build(runs []*harness.RunResult) *Report {
	p := b.profile

	r := &Report{
		ProfilePath:   p.Path,
		ProfileName:   p.Name,
		Provider:      p.Provider,
		Algorithm:     p.AlgorithmLabel(),
		Mode:          p.Mode(),
		Deterministic: p.Deterministic(),
		Concurrency:   p.Run.Concurrency,
		WarmupS:       p.Run.Warmup.Std().Seconds(),
		DurationS:     p.Run.Duration.Std().Seconds(),
		Repeats:       p.Run.Repeats,
		TimestampUTC:  b.now().UTC().Format(time.RFC3339Nano),
		GitCommit:     b.env.GitCommit,
		Environment:   b.env,
		Runs:          make([]RunReport, 0, len(runs)),
		Metadata:      p.Metadata,
		Notes:         []string{},
	}
	if r.Metadata == nil {
		r.Metadata = map[string]interface{}{}
	}

	truncated := false
	for _, run := range runs {
		rr := buildRunReport(run, p.Run.Percentiles)
		r.Runs = append(r.Runs, rr)
		if run.Truncated {
			truncated = true
		}
	}

	r.Summary = buildSummary(r.Runs, p.Run.Percentiles)
	r.CPU = aggregateCPU(runs)

	if p.Run.Warmup > 0 {
		r.Notes = append(r.Notes, "Warmup completed; warmup metrics discarded.")
	}
	if truncated {
		r.Notes = append(r.Notes, "Latency sample cap reached; additional latencies were dropped.")
	}
	if r.CPU.SampleCount == 0 {
		r.Notes = append(r.Notes, "CPU sampling unavailable; cpu percent fields set to null.")
	}
	return r
}

func buildRunReport(run *harness.RunResult, percentiles []float64) RunReport {
	keys := make([]harness.ErrorKey, 0, len(run.Errors))
	for k := range run.Errors {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := run.Errors[keys[i]], run.Errors[keys[j]]
		if ci != cj {
			return ci > cj
		}
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].MsgHash < keys[j].MsgHash
	})
	errs := make([]ErrorCount, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, ErrorCount{Type: k.Type, MsgHash: k.MsgHash, Count: run.Errors[k]})
	}

	return RunReport{
		SuccessCount:       run.SuccessCount,
		FailureCount:       run.FailureCount,
		ThroughputHsPerSec: run.Throughput(),
		MeasuredDurationS:  run.MeasuredDuration.Seconds(),
		Latency:            Summarize(run.LatenciesMs, percentiles),
		LatencyTruncated:   run.Truncated,
		Errors:             errs,
		CPU:                run.CPU,
	}
}

// buildSummary computes the cross-repeat aggregate: throughput mean and
// sample stdev, the mean of each configured percentile, and the maximum
// observed latency across all repeats.
func buildSummary(runs []RunReport, percentiles []float64) map[string]float64 {
	summary := make(map[string]float64, len(percentiles)+3)

	throughputs := make([]float64, 0, len(runs))
	maxLatency := 0.0
	for _, run := range runs {
		throughputs = append(throughputs, run.ThroughputHsPerSec)
		if run.Latency.Max > maxLatency {
			maxLatency = run.Latency.Max
		}
	}
	summary["throughput_mean"] = mean(throughputs)
	summary["throughput_stdev"] = stdev(throughputs)
	summary["max_latency_max"] = maxLatency

	for _, q := range percentiles {
		label := PercentileLabel(q)
		values := make([]float64, 0, len(runs))
		for _, run := range runs {
			if v, ok := run.Latency.Percentiles[label]; ok {
				values = append(values, v)
			}
		}
		summary[label+"_mean"] = mean(values)
	}
	return summary
}

// aggregateCPU folds per-repeat sampler summaries into one block: averages
// of the per-run averages, maxima of the peaks.
func aggregateCPU(runs []*harness.RunResult) sampler.Summary {
	out := sampler.Summary{}
	var procAvg, sysAvg []float64

	for _, run := range runs {
		cpu := run.CPU
		out.SampleCount += cpu.SampleCount
		if cpu.SampleIntervalS > 0 {
			out.SampleIntervalS = cpu.SampleIntervalS
		}
		if cpu.ProcessAvgPercent != nil {
			procAvg = append(procAvg, *cpu.ProcessAvgPercent)
		}
		if cpu.SystemAvgPercent != nil {
			sysAvg = append(sysAvg, *cpu.SystemAvgPercent)
		}
		out.ProcessPeakPercent = maxPtr(out.ProcessPeakPercent, cpu.ProcessPeakPercent)
		out.SystemPeakPercent = maxPtr(out.SystemPeakPercent, cpu.SystemPeakPercent)
		out.Loadavg1m = maxPtr(out.Loadavg1m, cpu.Loadavg1m)
	}

	if len(procAvg) > 0 {
		v := mean(procAvg)
		out.ProcessAvgPercent = &v
	}
	if len(sysAvg) > 0 {
		v := mean(sysAvg)
		out.SystemAvgPercent = &v
	}
	return out
}

func maxPtr(a, b *float64) *float64 {
	if b == nil {
		return a
	}
	if a == nil || *b > *a {
		v := *b
		return &v
	}
	return a
}

// WriteJSON writes the report with 2-space indentation and a trailing
// newline.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
