package cache

import (
	"strconv"
	"time"

	"salesdash/internal/analytics"
	"salesdash/internal/core"
)

// DashboardCache memoizes BuildDashboard per record-set generation and data
// key. Chart type is not part of the key since it does not change the view.
type DashboardCache struct {
	lru *LRUCache[analytics.Dashboard]
}

func NewDashboardCache(size int, ttl time.Duration) *DashboardCache {
	return &DashboardCache{lru: NewLRUCache[analytics.Dashboard](size, ttl)}
}

// Get returns the cached view or builds and stores it. The boolean reports
// a cache hit. generation identifies the record set, e.g. its load time.
func (d *DashboardCache) Get(records []core.SalesRecord, generation time.Time, spec core.FilterSpec) (analytics.Dashboard, bool) {
	key := strconv.FormatInt(generation.UnixNano(), 36) + "#" + spec.DataKey()
	if v, ok := d.lru.Get(key); ok {
		return v, true
	}
	v := analytics.BuildDashboard(records, spec)
	d.lru.Set(key, v)
	return v, false
}

func (d *DashboardCache) CleanExpired() int { return d.lru.CleanExpired() }

func (d *DashboardCache) Stats() Stats { return d.lru.Stats() }
