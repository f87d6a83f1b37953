package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteMarkdown renders a sweep comparison table across reports, one row per
// concurrency level. Missing summary values render as "null" so gaps are
// visible instead of silently zeroed.
func WriteMarkdown(w io.Writer, reports []*Report) error {
	if len(reports) == 0 {
		return fmt.Errorf("no reports to summarize")
	}

	columns := []string{
		"profile",
		"concurrency",
		"throughput_mean",
		"throughput_stdev",
		"p99_mean",
		"p99_9_mean",
		"max_latency_max",
		"cpu_process_peak",
		"cpu_system_peak",
		"loadavg_1m",
	}

	header := "| " + strings.Join(columns, " | ") + " |"
	rule := "|" + strings.Repeat(" --- |", len(columns))
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, rule); err != nil {
		return err
	}

	for _, r := range reports {
		cells := []string{
			strings.ReplaceAll(r.ProfileName, "|", "\\|"),
			strconv.Itoa(r.Concurrency),
			summaryCell(r, "throughput_mean"),
			summaryCell(r, "throughput_stdev"),
			summaryCell(r, "p99_mean"),
			summaryCell(r, "p99_9_mean"),
			summaryCell(r, "max_latency_max"),
			ptrCell(r.CPU.ProcessPeakPercent),
			ptrCell(r.CPU.SystemPeakPercent),
			ptrCell(r.CPU.Loadavg1m),
		}
		if _, err := fmt.Fprintln(w, "| "+strings.Join(cells, " | ")+" |"); err != nil {
			return err
		}
	}
	return nil
}

func summaryCell(r *Report, key string) string {
	v, ok := r.Summary[key]
	if !ok {
		return "null"
	}
	return formatFloat(v)
}

func ptrCell(v *float64) string {
	if v == nil {
		return "null"
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
