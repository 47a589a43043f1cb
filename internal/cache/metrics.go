package cache

import "sync/atomic"

// Metrics counts cache traffic; all counters are safe for concurrent use.
type Metrics struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Errors  int64 `json:"errors"`
	Sets    int64 `json:"sets"`
	Deletes int64 `json:"deletes"`
}

func (m *Metrics) RecordHit() {
	atomic.AddInt64(&m.Hits, 1)
}

func (m *Metrics) RecordMiss() {
	atomic.AddInt64(&m.Misses, 1)
}

func (m *Metrics) RecordError() {
	atomic.AddInt64(&m.Errors, 1)
}

func (m *Metrics) RecordSet() {
	atomic.AddInt64(&m.Sets, 1)
}

func (m *Metrics) RecordDelete() {
	atomic.AddInt64(&m.Deletes, 1)
}

func (m *Metrics) HitRate() float64 {
	hits := atomic.LoadInt64(&m.Hits)
	misses := atomic.LoadInt64(&m.Misses)
	total := hits + misses

	if total == 0 {
		return 0.0
	}

	return float64(hits) / float64(total) * 100.0
}

func (m *Metrics) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"hits":     atomic.LoadInt64(&m.Hits),
		"misses":   atomic.LoadInt64(&m.Misses),
		"errors":   atomic.LoadInt64(&m.Errors),
		"sets":     atomic.LoadInt64(&m.Sets),
		"deletes":  atomic.LoadInt64(&m.Deletes),
		"hit_rate": m.HitRate(),
	}
}

func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.Hits, 0)
	atomic.StoreInt64(&m.Misses, 0)
	atomic.StoreInt64(&m.Errors, 0)
	atomic.StoreInt64(&m.Sets, 0)
	atomic.StoreInt64(&m.Deletes, 0)
}
