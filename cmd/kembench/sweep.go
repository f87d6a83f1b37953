package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pqc-lab/kembench/pkg/report"
)

func newSweepCmd(logger *slog.Logger) *cobra.Command {
	var (
		flags         benchFlags
		concurrencies []int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run a concurrency sweep and summarize the knee point data",
		Long: `Run the same profile at each requested concurrency level, writing one
JSON report per level plus a Markdown comparison table. The table makes the
knee point visible: the level where throughput stops scaling linearly while
tail latency climbs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(concurrencies) == 0 {
				return fmt.Errorf("at least one --concurrency level is required")
			}
			if err := os.MkdirAll(flags.out, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			reports := make([]*report.Report, 0, len(concurrencies))
			for _, c := range concurrencies {
				ov, err := flags.overrides(cmd, c)
				if err != nil {
					return err
				}
				rep, err := executeProfile(cmd.Context(), logger, flags.profilePath, ov, flags.sampleInterval)
				if err != nil {
					return err
				}

				path := filepath.Join(flags.out, fmt.Sprintf("%s_c%d.json", rep.ProfileName, c))
				if err := writeReportFile(rep, path); err != nil {
					return err
				}
				logger.Info("sweep level finished",
					slog.Int("concurrency", c),
					slog.String("report", path),
				)
				reports = append(reports, rep)
			}

			summaryPath := filepath.Join(flags.out, "summary.md")
			f, err := os.Create(summaryPath)
			if err != nil {
				return fmt.Errorf("create summary: %w", err)
			}
			if err := report.WriteMarkdown(f, reports); err != nil {
				f.Close()
				return fmt.Errorf("write summary: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close summary: %w", err)
			}

			return report.WriteMarkdown(cmd.OutOrStdout(), reports)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntSliceVar(&concurrencies, "concurrency", nil,
		"Concurrency levels to sweep, e.g. 1,2,4,8 (required)")
	cmd.Flags().StringVar(&flags.out, "out", "reports",
		"Output directory for per-level reports and summary.md")
	_ = cmd.MarkFlagRequired("concurrency")

	return cmd
}

func writeReportFile(rep *report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := rep.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}
