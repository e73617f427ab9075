// Package printer renders a heap walk: every block's address, size and state
// in address order, followed by a summary.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/block"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs a human-readable table.
	FormatText Format = "text"

	// FormatJSON outputs a single JSON document.
	FormatJSON Format = "json"
)

// Heap is the part of an allocator the printer reads.
type Heap interface {
	Walk(fn func(block.Info) bool)
	Stats() alloc.Stats
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// ShowAllocated and ShowFree select which blocks are listed. The summary
	// always covers every block.
	// Default: true
	ShowAllocated bool
	ShowFree      bool

	// MaxBlocks limits how many blocks are listed (0 = unlimited).
	// Default: 0
	MaxBlocks int

	// Summary appends occupancy and counter totals.
	// Default: true
	Summary bool

	// Language selects digit grouping for text output.
	// Default: language.English
	Language language.Tag
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:        FormatText,
		ShowAllocated: true,
		ShowFree:      true,
		Summary:       true,
		Language:      language.English,
	}
}

// Printer writes heap walks.
type Printer struct {
	opts   Options
	writer io.Writer
	heap   Heap
	msg    *message.Printer
}

// New creates a Printer reading h and writing to w.
//
// Example:
//
//	p := printer.New(a, os.Stdout, printer.DefaultOptions())
//	err := p.Print()
func New(h Heap, w io.Writer, opts Options) *Printer {
	return &Printer{
		opts:   opts,
		writer: w,
		heap:   h,
		msg:    message.NewPrinter(opts.Language),
	}
}

// Print writes the heap walk in the configured format.
func (p *Printer) Print() error {
	switch p.opts.Format {
	case FormatText, "":
		return p.printText()
	case FormatJSON:
		return p.printJSON()
	default:
		return fmt.Errorf("printer: unsupported format %q", p.opts.Format)
	}
}

// blocks collects the listed blocks and reports whether the listing was cut
// short by MaxBlocks.
func (p *Printer) blocks() ([]block.Info, bool) {
	var (
		out       []block.Info
		truncated bool
	)
	p.heap.Walk(func(b block.Info) bool {
		if b.Allocated && !p.opts.ShowAllocated || !b.Allocated && !p.opts.ShowFree {
			return true
		}
		if p.opts.MaxBlocks > 0 && len(out) == p.opts.MaxBlocks {
			truncated = true
			return false
		}
		out = append(out, b)
		return true
	})
	return out, truncated
}

func state(allocated bool) string {
	if allocated {
		return "allocated"
	}
	return "free"
}
