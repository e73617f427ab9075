// Package metrics exports allocator statistics as Prometheus metrics.
//
// The collector takes a fresh Stats snapshot on every scrape. Stats walks the
// heap, and the allocator is not safe for concurrent use, so callers that
// scrape while allocating must serialize the two.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/heapkit/heap/alloc"
)

// Source supplies statistics snapshots.
type Source interface {
	Stats() alloc.Stats
}

// Collector implements prometheus.Collector over a Source.
type Collector struct {
	src Source

	regionBytes *prometheus.Desc
	blocks      *prometheus.Desc
	blockBytes  *prometheus.Desc
	payload     *prometheus.Desc
	largestFree *prometheus.Desc
	extends     *prometheus.Desc
	extendBytes *prometheus.Desc
	calls       *prometheus.Desc
	reallocs    *prometheus.Desc
	splits      *prometheus.Desc
	coalesces   *prometheus.Desc
}

// NewCollector returns a collector for src. constLabels are attached to every
// metric, e.g. to tell several heaps apart.
func NewCollector(src Source, namespace string, constLabels prometheus.Labels) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "heap", name), help, labels, constLabels)
	}
	return &Collector{
		src:         src,
		regionBytes: desc("region_bytes", "Committed region size in bytes."),
		blocks:      desc("blocks", "Number of blocks by state.", "state"),
		blockBytes:  desc("block_bytes", "Bytes held in blocks by state, tags included.", "state"),
		payload:     desc("payload_bytes", "Usable bytes inside allocated blocks."),
		largestFree: desc("largest_free_block_bytes", "Size of the largest free block."),
		extends:     desc("extends_total", "Region extensions."),
		extendBytes: desc("extend_bytes_total", "Bytes added to the region by extensions."),
		calls:       desc("calls_total", "Allocator calls by operation.", "op"),
		reallocs:    desc("reallocs_total", "Resizes by outcome.", "outcome"),
		splits:      desc("splits_total", "Free blocks split during placement or resize."),
		coalesces:   desc("coalesces_total", "Merges of adjacent free blocks."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.regionBytes, c.blocks, c.blockBytes, c.payload, c.largestFree,
		c.extends, c.extendBytes, c.calls, c.reallocs, c.splits, c.coalesces,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	st := c.src.Stats()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}
	counter := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, labels...)
	}

	gauge(c.regionBytes, float64(st.RegionSize))
	gauge(c.blocks, float64(st.AllocatedBlocks), "allocated")
	gauge(c.blocks, float64(st.FreeBlocks), "free")
	gauge(c.blockBytes, float64(st.AllocatedBytes), "allocated")
	gauge(c.blockBytes, float64(st.FreeBytes), "free")
	gauge(c.payload, float64(st.PayloadBytes))
	gauge(c.largestFree, float64(st.LargestFree))

	counter(c.extends, float64(st.ExtendCalls))
	counter(c.extendBytes, float64(st.ExtendBytes))
	counter(c.calls, float64(st.AllocCalls), "alloc")
	counter(c.calls, float64(st.FreeCalls), "free")
	counter(c.calls, float64(st.ReallocCalls), "realloc")
	counter(c.reallocs, float64(st.ReallocInPlace), "in_place")
	counter(c.reallocs, float64(st.ReallocMoved), "moved")
	counter(c.splits, float64(st.Splits))
	counter(c.coalesces, float64(st.Coalesces))
}
