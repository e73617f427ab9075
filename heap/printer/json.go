package printer

import (
	"encoding/json"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// jsonBlock represents one block in JSON format.
type jsonBlock struct {
	Addr      uint32 `json:"addr"`
	Size      uint32 `json:"size"`
	Allocated bool   `json:"allocated"`
}

// jsonHeap is the JSON document.
type jsonHeap struct {
	Blocks    []jsonBlock  `json:"blocks"`
	Truncated bool         `json:"truncated,omitempty"`
	Summary   *jsonSummary `json:"summary,omitempty"`
}

// jsonSummary adds the derived ratios to the statistics.
type jsonSummary struct {
	alloc.Stats
	Utilization   float64 `json:"utilization"`
	Fragmentation float64 `json:"fragmentation"`
}

// printJSON prints the walk as one indented JSON document.
func (p *Printer) printJSON() error {
	blocks, truncated := p.blocks()

	doc := jsonHeap{
		Blocks:    make([]jsonBlock, 0, len(blocks)),
		Truncated: truncated,
	}
	for _, b := range blocks {
		doc.Blocks = append(doc.Blocks, jsonBlock{Addr: uint32(b.Addr), Size: b.Size, Allocated: b.Allocated})
	}
	if p.opts.Summary {
		st := p.heap.Stats()
		doc.Summary = &jsonSummary{Stats: st, Utilization: st.Utilization(), Fragmentation: st.Fragmentation()}
	}

	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
