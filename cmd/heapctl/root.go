package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/internal/format"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	// Allocator flags
	initialHeap    int
	smallThreshold int
	maxHeap        string
	checkHeap      bool
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay allocation traces and inspect the resulting heap",
	Long: `heapctl drives the boundary-tag allocator with allocation trace files.
It verifies payload integrity while replaying, reports utilization and
allocator statistics, and prints the final heap block by block.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	rootCmd.PersistentFlags().IntVar(&initialHeap, "initial-heap", format.DefaultInitialHeap, "Initial free block size in bytes (multiple of 8, 0 disables)")
	rootCmd.PersistentFlags().IntVar(&smallThreshold, "small-threshold", format.DefaultSmallThreshold, "Block size below which requests are carved from the low end")
	rootCmd.PersistentFlags().StringVar(&maxHeap, "max-heap", "40MiB", "Region size ceiling (e.g. 64KiB, 40MiB)")
	rootCmd.PersistentFlags().BoolVar(&checkHeap, "check", false, "Verify the whole heap after every allocator call")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns a stderr logger at debug level in verbose mode and one
// that only reports warnings otherwise.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose && !quiet {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newAllocator builds an allocator from the global flags.
func newAllocator() (*alloc.Allocator, error) {
	ceiling, err := humanize.ParseBytes(maxHeap)
	if err != nil {
		return nil, fmt.Errorf("invalid --max-heap %q: %w", maxHeap, err)
	}
	if ceiling > format.MaxAddressable {
		return nil, fmt.Errorf("--max-heap %s exceeds the %s addressable limit",
			maxHeap, humanize.IBytes(format.MaxAddressable))
	}

	cfg := alloc.DefaultConfig
	cfg.InitialHeap = initialHeap
	cfg.SmallThreshold = smallThreshold
	cfg.Check = checkHeap
	cfg.Logger = newLogger()
	cfg.Region = &region.Config{MaxSize: format.Align8(int(ceiling))}
	return alloc.New(&cfg)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(w io.Writer, format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(w, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(w io.Writer, format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(w, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
