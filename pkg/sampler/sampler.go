// Package sampler collects CPU utilization samples alongside a benchmark
// run.
//
// The sampler polls process and system CPU percent on its own ticker cadence
// while the measurement window is open. Sampling is strictly best-effort: a
// failed poll is skipped and the run continues; if no samples land at all the
// summary carries nulls rather than zeros so a report never fabricates CPU
// data.
package sampler

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/pqc-lab/kembench/internal/constants"
)

// Summary aggregates the samples of one measurement window. Percent fields
// are nil when nothing was sampled.
type Summary struct {
	ProcessAvgPercent  *float64 `json:"process_avg_percent"`
	ProcessPeakPercent *float64 `json:"process_peak_percent"`
	SystemAvgPercent   *float64 `json:"system_avg_percent"`
	SystemPeakPercent  *float64 `json:"system_peak_percent"`
	Loadavg1m          *float64 `json:"loadavg_1m"`
	SampleIntervalS    float64  `json:"sample_interval_s"`
	SampleCount        int      `json:"sample_count"`
}

// Sampler polls CPU utilization until stopped.
type Sampler struct {
	interval time.Duration
	proc     *process.Process

	stop chan struct{}
	done chan struct{}

	mu          sync.Mutex
	procSamples []float64
	sysSamples  []float64
}

// New creates a sampler with the given poll interval. A non-positive
// interval falls back to the default cadence.
func New(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = constants.DefaultSampleInterval
	}
	s := &Sampler{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	// Process handle lookup can fail on restricted systems; the sampler then
	// degrades to system-wide samples only.
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.proc = proc
	}
	return s
}

// Start launches the sampling goroutine. The first poll primes the delta
// counters and is discarded, matching how interval-less CPU percent APIs
// behave.
func (s *Sampler) Start() {
	s.prime()
	go s.run()
}

func (s *Sampler) prime() {
	_, _ = cpu.Percent(0, false)
	if s.proc != nil {
		_, _ = s.proc.Percent(0)
	}
}

func (s *Sampler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sampleOnce()
		}
	}
}

func (s *Sampler) sampleOnce() {
	var sys, proc *float64

	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		v := pcts[0]
		sys = &v
	}
	if s.proc != nil {
		if pct, err := s.proc.Percent(0); err == nil {
			proc = &pct
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sys != nil {
		s.sysSamples = append(s.sysSamples, *sys)
	}
	if proc != nil {
		s.procSamples = append(s.procSamples, *proc)
	}
}

// Stop halts sampling and returns the window summary. Stop blocks until the
// sampling goroutine drains or the stop timeout elapses, whichever is first.
func (s *Sampler) Stop() Summary {
	close(s.stop)
	select {
	case <-s.done:
	case <-time.After(constants.SamplerStopTimeout):
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	summary := Summary{
		SampleIntervalS: s.interval.Seconds(),
		SampleCount:     len(s.sysSamples),
	}
	summary.SystemAvgPercent, summary.SystemPeakPercent = avgPeak(s.sysSamples)
	summary.ProcessAvgPercent, summary.ProcessPeakPercent = avgPeak(s.procSamples)

	if avg, err := load.Avg(); err == nil && avg != nil {
		v := avg.Load1
		summary.Loadavg1m = &v
	}
	return summary
}

func avgPeak(samples []float64) (avg, peak *float64) {
	if len(samples) == 0 {
		return nil, nil
	}
	sum := 0.0
	max := samples[0]
	for _, v := range samples {
		sum += v
		if v > max {
			max = v
		}
	}
	a := sum / float64(len(samples))
	return &a, &max
}
