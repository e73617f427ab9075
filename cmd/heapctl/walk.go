package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/printer"
)

var (
	walkFreeOnly      bool
	walkAllocatedOnly bool
	walkLimit         int
	walkNoSummary     bool
)

func init() {
	cmd := newWalkCmd()
	cmd.Flags().BoolVar(&walkFreeOnly, "free", false, "List only free blocks")
	cmd.Flags().BoolVar(&walkAllocatedOnly, "allocated", false, "List only allocated blocks")
	cmd.Flags().IntVar(&walkLimit, "limit", 0, "List at most this many blocks (0 = all)")
	cmd.Flags().BoolVar(&walkNoSummary, "no-summary", false, "Omit the summary")
	rootCmd.AddCommand(cmd)
}

func newWalkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walk <trace>",
		Short: "Replay a trace and print the resulting heap",
		Long: `The walk command replays a trace without payload checks and prints every
block of the final heap in address order with its size and state.

Example:
  heapctl walk workload.trace
  heapctl walk workload.trace --free --limit 20
  heapctl walk workload.trace --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWalk(cmd.OutOrStdout(), args)
		},
	}
	return cmd
}

func runWalk(w io.Writer, args []string) error {
	a, _, err := replayFile(w, args[0], false)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	opts.ShowFree = !walkAllocatedOnly
	opts.ShowAllocated = !walkFreeOnly
	opts.MaxBlocks = walkLimit
	opts.Summary = !walkNoSummary
	return printer.New(a, w, opts).Print()
}
