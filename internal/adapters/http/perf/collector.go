// Package perf keeps recent request and query timings in memory and turns
// them into the aggregate served by the perf snapshot endpoint. There is no
// external metrics backend; the ring buffer is the whole store.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the ring capacity used when none is given.
const DefaultRingSize = 10000

// EntryKind separates HTTP requests from store queries so the snapshot can
// report them as distinct lists.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is one recorded timing. Path carries "METHOD /route" for requests
// and the store operation name for queries.
type Entry struct {
	Kind       EntryKind
	Path       string
	StatusCode int // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring of timing entries. Record overwrites the
// oldest entry once the ring is full and never blocks on aggregation;
// all the math happens in Snapshot.
type Collector struct {
	mu      sync.Mutex
	ring    []Entry
	next    int
	written int64 // lifetime total, read atomically
}

// NewCollector creates a collector holding at most size entries.
// POST: Returns a collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores one timing entry, overwriting the oldest when full.
// The lock covers a single slot write so this is safe on the hot path.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	atomic.AddInt64(&c.written, 1)
}

// TotalRecorded returns the lifetime entry count, including entries the
// ring has already overwritten.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.written)
}

// Snapshot is the aggregate served by GET /api/perf.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRequests  int64      `json:"total_requests"`
	RequestP50Ms   float64    `json:"request_p50_ms"`
	RequestP95Ms   float64    `json:"request_p95_ms"`
	RequestP99Ms   float64    `json:"request_p99_ms"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// PathStat aggregates the timings of one route or store operation.
type PathStat struct {
	Path    string  `json:"path"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Count   int     `json:"count"`
	TotalMs float64 `json:"total_ms"`
}

// Snapshot aggregates the entries recorded at or after since: request
// percentiles plus the topN slowest routes and store operations by average
// duration. It sorts, so callers keep it off the hot path; the snapshot
// endpoint is the only production caller.
// POST: Returns percentiles over requests and top-N lists per kind
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.ring))
	copy(buf, c.ring)
	c.mu.Unlock()

	var requestDurations []float64
	requestStats := make(map[string]*PathStat)
	queryStats := make(map[string]*PathStat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requestDurations = append(requestDurations, e.DurationMs)
			accumulate(requestStats, e)
		case KindQuery:
			accumulate(queryStats, e)
		}
	}

	snap := Snapshot{
		Since:          since,
		TotalRequests:  c.TotalRecorded(),
		SlowestPaths:   slowest(requestStats, topN),
		SlowestQueries: slowest(queryStats, topN),
	}
	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}
	return snap
}

func accumulate(stats map[string]*PathStat, e Entry) {
	s, ok := stats[e.Path]
	if !ok {
		s = &PathStat{Path: e.Path}
		stats[e.Path] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
}

// percentile interpolates the p-th percentile from an ascending slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// slowest flattens the per-path stats, fills in averages and keeps the n
// worst by average duration.
func slowest(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].AvgMs > list[j].AvgMs
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
