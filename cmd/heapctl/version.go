package main

import (
	"fmt"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/format"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// BuildInfo is the version command's output: the build stamp plus the heap
// layout this binary was compiled with.
type BuildInfo struct {
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	Built          string `json:"built"`
	Go             string `json:"go"`
	Alignment      int    `json:"alignment"`
	MinBlockSize   int    `json:"min_block_size"`
	SmallThreshold int    `json:"small_threshold"`
	InitialHeap    int    `json:"initial_heap"`
	DefaultMaxHeap uint64 `json:"default_max_heap"`
	AddressLimit   uint64 `json:"address_limit"`
}

func buildInfo() BuildInfo {
	return BuildInfo{
		Version:        version,
		Commit:         commit,
		Built:          date,
		Go:             runtime.Version(),
		Alignment:      format.Alignment,
		MinBlockSize:   format.MinBlockSize,
		SmallThreshold: format.DefaultSmallThreshold,
		InitialHeap:    format.DefaultInitialHeap,
		DefaultMaxHeap: uint64(format.DefaultMaxHeap),
		AddressLimit:   format.MaxAddressable,
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and heap layout information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := buildInfo()
		w := cmd.OutOrStdout()
		if jsonOut {
			return printJSON(w, info)
		}
		fmt.Fprintf(w, "heapctl %s (%s, built %s, %s)\n", info.Version, info.Commit, info.Built, info.Go)
		fmt.Fprintf(w, "  alignment:       %d\n", info.Alignment)
		fmt.Fprintf(w, "  min block:       %d\n", info.MinBlockSize)
		fmt.Fprintf(w, "  small threshold: %d\n", info.SmallThreshold)
		fmt.Fprintf(w, "  initial heap:    %d\n", info.InitialHeap)
		fmt.Fprintf(w, "  max heap:        %s of %s addressable\n",
			humanize.IBytes(info.DefaultMaxHeap), humanize.IBytes(info.AddressLimit))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
