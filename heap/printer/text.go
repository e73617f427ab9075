package printer

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// printText prints the walk as an aligned table.
func (p *Printer) printText() error {
	blocks, truncated := p.blocks()

	if _, err := fmt.Fprintf(p.writer, "%-10s  %12s  %s\n", "ADDRESS", "SIZE", "STATE"); err != nil {
		return err
	}
	for _, b := range blocks {
		addr := fmt.Sprintf("0x%08X", uint32(b.Addr))
		if _, err := fmt.Fprintf(p.writer, "%-10s  %12s  %s\n", addr, p.msg.Sprintf("%d", b.Size), state(b.Allocated)); err != nil {
			return err
		}
	}
	if truncated {
		fmt.Fprintf(p.writer, "... (limited to %d blocks)\n", p.opts.MaxBlocks)
	}

	if !p.opts.Summary {
		return nil
	}
	st := p.heap.Stats()
	fmt.Fprintln(p.writer)
	p.msg.Fprintf(p.writer, "Region:     %s (%d bytes)\n", humanize.IBytes(uint64(st.RegionSize)), st.RegionSize)
	p.msg.Fprintf(p.writer, "Allocated:  %d blocks, %s\n", st.AllocatedBlocks, humanize.IBytes(uint64(st.AllocatedBytes)))
	p.msg.Fprintf(p.writer, "Free:       %d blocks, %s (largest %s)\n",
		st.FreeBlocks, humanize.IBytes(uint64(st.FreeBytes)), humanize.IBytes(uint64(st.LargestFree)))
	fmt.Fprintf(p.writer, "Utilization: %.1f%%, fragmentation: %.1f%%\n", 100*st.Utilization(), 100*st.Fragmentation())
	_, err := p.msg.Fprintf(p.writer, "Calls:      %d alloc, %d free, %d realloc (%d in place, %d moved), %d extend\n",
		st.AllocCalls, st.FreeCalls, st.ReallocCalls, st.ReallocInPlace, st.ReallocMoved, st.ExtendCalls)
	return err
}
