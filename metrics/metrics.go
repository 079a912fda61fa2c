// Package metrics exports lsmkit statistics as Prometheus collectors.
//
// Collectors are pull-based: they snapshot the wrapped component on every
// scrape, so nothing runs on the component's hot paths.
//
//	c, _ := cache.LRU(64 << 20).Build()
//	prometheus.MustRegister(metrics.NewCacheCollector(c, "myapp"))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/lsmkit/cache"
	"github.com/hupe1980/lsmkit/sstable"
)

// CacheCollector exposes a cache's counters and usage as Prometheus metrics.
// Safe for concurrent use; the cache's snapshot accessors are goroutine-safe.
type CacheCollector struct {
	c cache.Cache

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	inserts   *prometheus.Desc
	evictions *prometheus.Desc
	usage     *prometheus.Desc
	pinned    *prometheus.Desc
	capacity  *prometheus.Desc
}

// Compile-time check: ensure CacheCollector implements prometheus.Collector.
var _ prometheus.Collector = (*CacheCollector)(nil)

// NewCacheCollector constructs a collector over c. The namespace prefixes
// every metric name; the eviction flavor is attached as a "policy" label.
// Register the result with a prometheus.Registerer.
func NewCacheCollector(c cache.Cache, namespace string) *CacheCollector {
	labels := prometheus.Labels{"policy": c.Name()}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "cache", name), help, nil, labels)
	}
	return &CacheCollector{
		c:         c,
		hits:      desc("hits_total", "Lookups that found a resident entry."),
		misses:    desc("misses_total", "Lookups that found nothing."),
		inserts:   desc("inserts_total", "Values accepted into the cache."),
		evictions: desc("evictions_total", "Values pushed out to make room."),
		usage:     desc("usage", "Total charge the cache currently owns, pinned values included."),
		pinned:    desc("pinned_usage", "Charge held by values with outstanding handles."),
		capacity:  desc("capacity", "Configured capacity in charge units."),
	}
}

// Describe implements prometheus.Collector.
func (cc *CacheCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- cc.hits
	ch <- cc.misses
	ch <- cc.inserts
	ch <- cc.evictions
	ch <- cc.usage
	ch <- cc.pinned
	ch <- cc.capacity
}

// Collect implements prometheus.Collector.
func (cc *CacheCollector) Collect(ch chan<- prometheus.Metric) {
	st := cc.c.Stats()
	ch <- prometheus.MustNewConstMetric(cc.hits, prometheus.CounterValue, float64(st.Hits))
	ch <- prometheus.MustNewConstMetric(cc.misses, prometheus.CounterValue, float64(st.Misses))
	ch <- prometheus.MustNewConstMetric(cc.inserts, prometheus.CounterValue, float64(st.Inserts))
	ch <- prometheus.MustNewConstMetric(cc.evictions, prometheus.CounterValue, float64(st.Evictions))
	ch <- prometheus.MustNewConstMetric(cc.usage, prometheus.GaugeValue, float64(cc.c.Usage()))
	ch <- prometheus.MustNewConstMetric(cc.pinned, prometheus.GaugeValue, float64(cc.c.PinnedUsage()))
	ch <- prometheus.MustNewConstMetric(cc.capacity, prometheus.GaugeValue, float64(cc.c.Capacity()))
}

// WriterCollector tracks an in-flight table build. The table path travels as
// a label so one registry can watch several builds under distinct paths.
type WriterCollector struct {
	w *sstable.Writer

	bytes   *prometheus.Desc
	entries *prometheus.Desc
}

var _ prometheus.Collector = (*WriterCollector)(nil)

// NewWriterCollector constructs a collector over w. Register it after Open
// so the path label is stable, and unregister it once the build finishes;
// the final numbers live in the build's FileSummary.
func NewWriterCollector(w *sstable.Writer, namespace string) *WriterCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "sstable", name), help, []string{"path"}, nil)
	}
	return &WriterCollector{
		w:       w,
		bytes:   desc("build_bytes_written", "Bytes the build has pushed toward the file so far."),
		entries: desc("build_entries", "Records accepted by the build so far."),
	}
}

// Describe implements prometheus.Collector.
func (wc *WriterCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- wc.bytes
	ch <- wc.entries
}

// Collect implements prometheus.Collector.
func (wc *WriterCollector) Collect(ch chan<- prometheus.Metric) {
	path := wc.w.Path()
	ch <- prometheus.MustNewConstMetric(wc.bytes, prometheus.GaugeValue, float64(wc.w.FileSize()), path)
	ch <- prometheus.MustNewConstMetric(wc.entries, prometheus.GaugeValue, float64(wc.w.EntryCount()), path)
}
