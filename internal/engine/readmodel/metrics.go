package readmodel

// Metrics is a snapshot of a store's counters. Stale hits count as hits in
// the ratio.
type Metrics struct {
	Hits          uint64
	Misses        uint64
	StaleHits     uint64
	Evictions     uint64
	Invalidations uint64
}

// HitRatio returns hits / (hits + misses), with stale hits counted as hits.
// It returns zero when nothing has been recorded yet.
func (m Metrics) HitRatio() float64 {
	hits := m.Hits + m.StaleHits
	total := hits + m.Misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
