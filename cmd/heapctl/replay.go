package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/metrics"
	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/internal/trace"
)

var (
	replayVerify  bool
	replayWalk    bool
	replayMetrics bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayVerify, "verify", true, "Check every live payload for damage and overlap after each operation")
	cmd.Flags().BoolVar(&replayWalk, "walk", false, "Print the heap block by block after the replay")
	cmd.Flags().BoolVar(&replayMetrics, "metrics", false, "Print allocator metrics in Prometheus text format after the replay")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace",
		Long: `The replay command runs every operation of a trace file against a fresh
allocator, fills each payload with a per-id pattern and checks that the
patterns survive. It reports utilization and allocator statistics.

Trace lines:
  a <id> <size>   allocate
  r <id> <size>   resize
  f <id>          free

Example:
  heapctl replay workload.trace
  heapctl replay workload.trace --check --walk
  heapctl replay workload.trace --metrics --max-heap 1MiB`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.OutOrStdout(), args)
		},
	}
	return cmd
}

// ReplayReport is the JSON form of a replay result.
type ReplayReport struct {
	Trace       string      `json:"trace"`
	Ops         int         `json:"ops"`
	Allocs      int         `json:"allocs"`
	Frees       int         `json:"frees"`
	Reallocs    int         `json:"reallocs"`
	PeakPayload int64       `json:"peak_payload"`
	RegionSize  int         `json:"region_size"`
	Utilization float64     `json:"utilization"`
	Stats       alloc.Stats `json:"stats"`
}

func runReplay(w io.Writer, args []string) error {
	path := args[0]

	a, res, err := replayFile(w, path, replayVerify)
	if err != nil {
		return err
	}
	defer a.Close()

	if jsonOut {
		if err := printJSON(w, ReplayReport{
			Trace:       path,
			Ops:         res.Ops,
			Allocs:      res.Allocs,
			Frees:       res.Frees,
			Reallocs:    res.Reallocs,
			PeakPayload: res.PeakPayload,
			RegionSize:  res.RegionSize,
			Utilization: res.Utilization,
			Stats:       res.Stats,
		}); err != nil {
			return err
		}
	} else {
		printReplay(w, path, res)
	}

	if replayWalk {
		opts := printer.DefaultOptions()
		if jsonOut {
			opts.Format = printer.FormatJSON
		}
		if err := printer.New(a, w, opts).Print(); err != nil {
			return err
		}
	}
	if replayMetrics {
		return writeMetrics(w, a)
	}
	return nil
}

// replayFile parses path and replays it against a fresh allocator, which the
// caller must close.
func replayFile(w io.Writer, path string, verify bool) (*alloc.Allocator, trace.Result, error) {
	printVerbose(w, "Reading trace: %s\n", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, trace.Result{}, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	tr, err := trace.Parse(f)
	if err != nil {
		return nil, trace.Result{}, fmt.Errorf("%s: %w", path, err)
	}
	printVerbose(w, "Parsed %d operations over %d ids\n", len(tr.Ops), tr.IDs)

	a, err := newAllocator()
	if err != nil {
		return nil, trace.Result{}, err
	}
	res, err := trace.Replay(a, tr, trace.Options{Verify: verify, Logger: newLogger()})
	if err != nil {
		a.Close()
		return nil, res, fmt.Errorf("%s: %w", path, err)
	}
	return a, res, nil
}

func printReplay(w io.Writer, path string, res trace.Result) {
	st := res.Stats
	printInfo(w, "Trace: %s\n", path)
	printInfo(w, "  Operations:  %s (%s alloc, %s free, %s realloc)\n",
		humanize.Comma(int64(res.Ops)), humanize.Comma(int64(res.Allocs)),
		humanize.Comma(int64(res.Frees)), humanize.Comma(int64(res.Reallocs)))
	printInfo(w, "  Peak payload: %s\n", humanize.IBytes(uint64(res.PeakPayload)))
	printInfo(w, "  Region:      %s\n", humanize.IBytes(uint64(res.RegionSize)))
	printInfo(w, "  Utilization: %.1f%%\n", 100*res.Utilization)
	printInfo(w, "  Resizes:     %d in place, %d moved\n", st.ReallocInPlace, st.ReallocMoved)
	printInfo(w, "  Extends:     %d (%s)\n", st.ExtendCalls, humanize.IBytes(uint64(st.ExtendBytes)))
	printInfo(w, "  Splits:      %d, coalesces: %d\n", st.Splits, st.Coalesces)
}

// writeMetrics prints the allocator's metrics in the Prometheus text format.
func writeMetrics(w io.Writer, a *alloc.Allocator) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector(a, "heapctl", nil)); err != nil {
		return err
	}
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
