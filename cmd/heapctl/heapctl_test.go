package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/testutil"
)

// run executes heapctl with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose, quiet, jsonOut = false, false, false
	initialHeap, smallThreshold, maxHeap, checkHeap = format.DefaultInitialHeap, format.DefaultSmallThreshold, "40MiB", false
	replayVerify, replayWalk, replayMetrics = true, false, false
	walkFreeOnly, walkAllocatedOnly, walkLimit, walkNoSummary = false, false, 0, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReplayCommand(t *testing.T) {
	out, err := run(t, "replay", testutil.TracePath(t, testutil.TraceMixed), "--check")
	require.NoError(t, err)
	require.Contains(t, out, "Operations:  19 (7 alloc, 7 free, 5 realloc)")
	require.Contains(t, out, "Utilization:")
}

func TestReplayCommand_JSON(t *testing.T) {
	out, err := run(t, "replay", testutil.TracePath(t, testutil.TraceMixed), "--json")
	require.NoError(t, err)

	var report ReplayReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 19, report.Ops)
	require.Equal(t, 5, report.Reallocs)
	require.Zero(t, report.Stats.AllocatedBlocks)
}

func TestReplayCommand_WalkAndMetrics(t *testing.T) {
	out, err := run(t, "replay", testutil.TracePath(t, testutil.TraceMixed), "--walk", "--metrics")
	require.NoError(t, err)
	require.Contains(t, out, "ADDRESS")
	require.Contains(t, out, "# TYPE heapctl_heap_calls_total counter")
	require.Contains(t, out, `heapctl_heap_calls_total{op="alloc"} 7`)
}

func TestReplayCommand_OutOfMemory(t *testing.T) {
	_, err := run(t, "replay", testutil.TracePath(t, testutil.TraceMixed), "--max-heap", "2KiB")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no free block large enough")
}

func TestReplayCommand_BadFlags(t *testing.T) {
	_, err := run(t, "replay", testutil.TracePath(t, testutil.TraceMixed), "--max-heap", "lots")
	require.ErrorContains(t, err, "invalid --max-heap")

	_, err = run(t, "replay", testutil.TracePath(t, testutil.TraceMixed), "--initial-heap", "13")
	require.ErrorContains(t, err, "bad config")
}

func TestReplayCommand_MissingFile(t *testing.T) {
	_, err := run(t, "replay", filepath.Join(t.TempDir(), "nope.trace"))
	require.ErrorContains(t, err, "failed to open trace")
}

func TestReplayCommand_ParseError(t *testing.T) {
	path := testutil.WriteTrace(t, "a 0 8\nf 9\n")

	_, err := run(t, "replay", path)
	require.ErrorContains(t, err, "line 2")
}

func TestWalkCommand(t *testing.T) {
	path := testutil.WriteTrace(t, "a 0 16\na 1 8\na 2 8\nf 1\n")

	out, err := run(t, "walk", path, "--free", "--no-summary")
	require.NoError(t, err)
	require.Equal(t, "ADDRESS             SIZE  STATE\n"+
		"0x00000024            16  free\n"+
		"0x00000044           472  free\n", out)
}

func TestWalkCommand_JSON(t *testing.T) {
	out, err := run(t, "walk", testutil.TracePath(t, testutil.TraceMixed), "--json")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Contains(t, doc, "blocks")
	require.Contains(t, doc, "summary")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "heapctl dev")
	require.Contains(t, out, "min block:       16")
	require.Contains(t, out, "max heap:        40 MiB")
}

func TestVersionCommand_JSON(t *testing.T) {
	out, err := run(t, "version", "--json")
	require.NoError(t, err)

	var info BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Equal(t, "dev", info.Version)
	require.Equal(t, 8, info.Alignment)
	require.Equal(t, 96, info.SmallThreshold)
	require.Equal(t, 528, info.InitialHeap)
}
