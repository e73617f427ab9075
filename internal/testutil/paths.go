package testutil

// Test trace paths relative to the repository root.
// These constants should be used instead of hardcoding paths in test files.
const (
	// TraceMixed mixes small and large blocks, in-place and moving resizes,
	// a zero-size allocation and id reuse. Every id is freed at the end.
	TraceMixed = "testdata/traces/mixed.trace"
)
