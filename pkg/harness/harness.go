// Package harness drives repeated key-exchange operations through a provider
// and collects per-operation results.
//
// A run moves through a fixed phase machine:
//
//	WARMUP -> MEASURE -> DONE
//
// During WARMUP operations execute but their results are discarded. During
// MEASURE a fixed pool of workers issues operations continuously until the
// window deadline; an operation started before the deadline completes and is
// counted exactly once. Workers record into per-worker buffers that are
// merged after the window closes, so no shared mutable state exists while
// operations are in flight.
//
// Operation failures are data: they are counted by error signature and the
// run continues. A run as a whole fails only when its context is canceled or
// the measurement window produced nothing at all.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	kerrors "github.com/pqc-lab/kembench/internal/errors"
	"github.com/pqc-lab/kembench/pkg/provider"
	"github.com/pqc-lab/kembench/pkg/sampler"
)

// Phase identifies where a run is in its lifecycle.
type Phase int32

const (
	// PhaseIdle means the engine has not started.
	PhaseIdle Phase = iota
	// PhaseWarmup means operations run but results are discarded.
	PhaseWarmup
	// PhaseMeasure means results accumulate until the window deadline.
	PhaseMeasure
	// PhaseDone means the run finished.
	PhaseDone
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseWarmup:
		return "WARMUP"
	case PhaseMeasure:
		return "MEASURE"
	case PhaseDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// RunResult holds the merged outcome of one measurement window.
type RunResult struct {
	// SuccessCount and FailureCount partition every completed operation.
	SuccessCount uint64
	FailureCount uint64

	// LatenciesMs holds per-operation wall latency in milliseconds, success
	// and failure alike, capped at the global sample limit.
	LatenciesMs []float64

	// Truncated reports that the latency cap was hit; counters above remain
	// exact.
	Truncated bool

	// Errors counts failures by signature.
	Errors map[ErrorKey]uint64

	// MeasuredDuration is the actual wall length of the measure phase.
	MeasuredDuration time.Duration

	// CPU summarizes sampler output over the measure phase.
	CPU sampler.Summary
}

// Attempts returns the total operation count of the window.
func (r *RunResult) Attempts() uint64 {
	return r.SuccessCount + r.FailureCount
}

// Throughput returns completed operations per second over the measured
// window.
func (r *RunResult) Throughput() float64 {
	if r.MeasuredDuration <= 0 {
		return 0
	}
	return float64(r.Attempts()) / r.MeasuredDuration.Seconds()
}

// Engine coordinates one or more benchmark runs against a provider.
type Engine struct {
	provider       provider.Provider
	concurrency    int
	warmup         time.Duration
	duration       time.Duration
	sampleInterval time.Duration
	logger         *slog.Logger
	tracer         trace.Tracer

	phase atomic.Int32
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards nothing and writes
// through slog's default handler.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSampleInterval overrides the CPU sampler cadence.
func WithSampleInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.sampleInterval = interval
	}
}

// New creates an engine. Concurrency and duration must be positive and
// warmup non-negative; the profile layer validates these before an engine is
// built, so violations here are programmer errors.
func New(p provider.Provider, concurrency int, warmup, duration time.Duration, opts ...Option) (*Engine, error) {
	if concurrency <= 0 {
		return nil, kerrors.ErrInvalidConcurrency
	}
	if duration <= 0 {
		return nil, kerrors.ErrInvalidDuration
	}
	if warmup < 0 {
		return nil, kerrors.ErrInvalidWarmup
	}

	e := &Engine{
		provider:    p,
		concurrency: concurrency,
		warmup:      warmup,
		duration:    duration,
		logger:      slog.Default(),
		tracer:      otel.Tracer("kembench/harness"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(
		slog.String("provider", p.Name()),
		slog.String("algorithm", p.Algorithm()),
	)
	return e, nil
}

// Phase reports the engine's current phase.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

// Run executes one warmup+measure cycle and returns the merged results.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	ctx, span := e.tracer.Start(ctx, "harness.run", trace.WithAttributes(
		attribute.String("kembench.provider", e.provider.Name()),
		attribute.String("kembench.algorithm", e.provider.Algorithm()),
		attribute.Int("kembench.concurrency", e.concurrency),
		attribute.Float64("kembench.duration_s", e.duration.Seconds()),
		attribute.Float64("kembench.warmup_s", e.warmup.Seconds()),
	))
	defer span.End()

	result, err := e.run(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("kembench.success_count", int64(result.SuccessCount)),
		attribute.Int64("kembench.failure_count", int64(result.FailureCount)),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}

func (e *Engine) run(ctx context.Context) (*RunResult, error) {
	defer e.phase.Store(int32(PhaseDone))

	if e.warmup > 0 {
		e.phase.Store(int32(PhaseWarmup))
		e.logger.Info("warmup started", slog.Duration("warmup", e.warmup))

		warmupCtx, span := e.tracer.Start(ctx, "harness.warmup")
		e.runPhase(warmupCtx, time.Now().Add(e.warmup), nil)
		span.End()

		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrRunAborted, err)
		}
		e.logger.Info("warmup completed, results discarded")
	}

	e.phase.Store(int32(PhaseMeasure))
	e.logger.Info("measurement started",
		slog.Int("concurrency", e.concurrency),
		slog.Duration("duration", e.duration),
	)

	smp := sampler.New(e.sampleInterval)
	smp.Start()

	measureCtx, span := e.tracer.Start(ctx, "harness.measure")
	col := newCollector(e.concurrency)
	start := time.Now()
	e.runPhase(measureCtx, start.Add(e.duration), col)
	measured := time.Since(start)
	span.End()

	cpu := smp.Stop()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrRunAborted, err)
	}

	result := col.result()
	result.MeasuredDuration = measured
	result.CPU = cpu

	if result.Attempts() == 0 {
		return nil, kerrors.ErrNoMeasurement
	}

	e.logger.Info("measurement completed",
		slog.Uint64("success", result.SuccessCount),
		slog.Uint64("failure", result.FailureCount),
		slog.Duration("measured", result.MeasuredDuration),
	)
	return result, nil
}

// runPhase drives the worker pool until the deadline. A nil collector
// discards results, which is how warmup runs.
func (e *Engine) runPhase(ctx context.Context, deadline time.Time, col *collector) {
	var wg sync.WaitGroup
	for i := 0; i < e.concurrency; i++ {
		var buf *workerBuffer
		if col != nil {
			buf = col.newWorkerBuffer()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.workerLoop(ctx, deadline, buf)
			if col != nil {
				col.merge(buf)
			}
		}()
	}
	wg.Wait()
}

// workerLoop issues operations back to back until the deadline passes or the
// context is canceled. The deadline check happens before each operation; an
// operation already started runs to completion.
func (e *Engine) workerLoop(ctx context.Context, deadline time.Time, buf *workerBuffer) {
	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		_, err := e.provider.Exchange(ctx)
		latencyMs := float64(time.Since(start)) / float64(time.Millisecond)

		if buf == nil {
			continue
		}
		buf.record(latencyMs, err)
	}
}
