package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pqc-lab/kembench/pkg/harness"
	"github.com/pqc-lab/kembench/pkg/profile"
	"github.com/pqc-lab/kembench/pkg/provider"
	"github.com/pqc-lab/kembench/pkg/report"
)

// benchFlags are the run-shaping flags shared by run and sweep. Zero values
// defer to the profile.
type benchFlags struct {
	profilePath    string
	duration       time.Duration
	warmup         time.Duration
	repeats        int
	percentiles    string
	sampleInterval time.Duration
	out            string
}

func (f *benchFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.profilePath, "profile", "",
		"Path to the TOML benchmark profile (required)")
	flags.DurationVar(&f.duration, "duration", 0,
		"Measurement duration (overrides profile)")
	flags.DurationVar(&f.warmup, "warmup", 0,
		"Warmup duration (overrides profile)")
	flags.IntVar(&f.repeats, "repeats", 0,
		"Measured runs to aggregate (overrides profile)")
	flags.StringVar(&f.percentiles, "percentiles", "",
		`Latency percentiles, e.g. "50,95,99,99.9" (overrides profile)`)
	flags.DurationVar(&f.sampleInterval, "sample-interval", 0,
		"CPU sampler cadence (default 500ms)")
	_ = cmd.MarkFlagRequired("profile")
}

// overrides assembles profile overrides from the parsed flags. Warmup is
// only an override when the flag was set, so a profile can keep a zero
// warmup distinct from "not specified".
func (f *benchFlags) overrides(cmd *cobra.Command, concurrency int) (profile.Overrides, error) {
	pcts, err := profile.ParsePercentiles(f.percentiles)
	if err != nil {
		return profile.Overrides{}, err
	}
	return profile.Overrides{
		Concurrency: concurrency,
		Duration:    f.duration,
		Warmup:      f.warmup,
		WarmupSet:   cmd.Flags().Changed("warmup"),
		Repeats:     f.repeats,
		Percentiles: pcts,
	}, nil
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		flags       benchFlags
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a capacity benchmark for one profile",
		Long: `Load a profile, drive its key-exchange provider with a fixed worker pool
through warmup and measurement windows, and emit a JSON report.

Handshake-level failures are recorded in the report and do not affect the
exit code; only configuration and provider-initialization errors are fatal.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ov, err := flags.overrides(cmd, concurrency)
			if err != nil {
				return err
			}
			rep, err := executeProfile(cmd.Context(), logger, flags.profilePath, ov, flags.sampleInterval)
			if err != nil {
				return err
			}
			return writeReport(cmd, rep, flags.out)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&concurrency, "concurrency", 0,
		"Worker count (overrides profile)")
	cmd.Flags().StringVar(&flags.out, "out", "",
		"Output JSON path (default: stdout)")

	return cmd
}

// executeProfile runs every repeat of one validated profile and builds the
// report.
func executeProfile(
	ctx context.Context,
	logger *slog.Logger,
	path string,
	ov profile.Overrides,
	sampleInterval time.Duration,
) (*report.Report, error) {
	p, err := profile.Load(path, ov)
	if err != nil {
		return nil, err
	}

	prov, err := provider.New(p)
	if err != nil {
		return nil, err
	}

	engine, err := harness.New(prov, p.Run.Concurrency,
		p.Run.Warmup.Std(), p.Run.Duration.Std(),
		harness.WithLogger(logger),
		harness.WithSampleInterval(sampleInterval),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("profile loaded",
		slog.String("profile", p.Name),
		slog.String("provider", p.Provider),
		slog.String("algorithm", p.AlgorithmLabel()),
		slog.Int("concurrency", p.Run.Concurrency),
		slog.Int("repeats", p.Run.Repeats),
	)

	runs := make([]*harness.RunResult, 0, p.Run.Repeats)
	for i := 0; i < p.Run.Repeats; i++ {
		logger.Info("repeat started", slog.Int("repeat", i+1), slog.Int("of", p.Run.Repeats))
		result, err := engine.Run(ctx)
		if err != nil {
			return nil, err
		}
		runs = append(runs, result)
	}

	return report.NewBuilder(p).Build(runs), nil
}

// writeReport emits the report to the path or, with no path, to stdout.
func writeReport(cmd *cobra.Command, rep *report.Report, out string) error {
	if out == "" {
		return rep.WriteJSON(cmd.OutOrStdout())
	}

	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := rep.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	// A close failure can swallow buffered report bytes, so it is fatal too.
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
