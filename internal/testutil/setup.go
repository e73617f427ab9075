// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// SetupAllocator returns an allocator with heap verification after every
// call, closed when the test ends. opts adjust the configuration first.
//
// Example:
//
//	a := testutil.SetupAllocator(t, func(c *alloc.Config) { c.InitialHeap = 0 })
func SetupAllocator(t *testing.T, opts ...func(*alloc.Config)) *alloc.Allocator {
	t.Helper()

	cfg := alloc.DefaultConfig
	cfg.Check = true
	for _, opt := range opts {
		opt(&cfg)
	}

	a, err := alloc.New(&cfg)
	if err != nil {
		t.Fatalf("Failed to create allocator: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// TracePath resolves a trace path given relative to the repository root.
// Calls t.Skip if the file is not found.
func TracePath(t *testing.T, relativePath string) string {
	t.Helper()
	return resolveTestPath(t, relativePath)
}

// WriteTrace writes body to a trace file in a temporary directory and
// returns its path.
func WriteTrace(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.trace")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write trace: %v", err)
	}
	return path
}

// resolveTestPath attempts to find a test file by trying multiple path resolutions.
// This handles the fact that tests may be run from different working directories.
func resolveTestPath(t *testing.T, relativePath string) string {
	t.Helper()

	// Try paths in order of likelihood
	candidates := []string{
		relativePath,                  // Direct path (from repo root)
		"../" + relativePath,          // From package one level deep
		"../../" + relativePath,       // From package two levels deep (e.g., internal/trace/)
		"../../../" + relativePath,    // From package three levels deep
		"../../../../" + relativePath, // From package four levels deep
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	// If not found, skip the test
	t.Skipf("Test file not found at any candidate path starting from: %s", relativePath)
	return "" // unreachable
}
