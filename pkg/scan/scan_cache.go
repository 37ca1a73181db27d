package scan

import (
	"Durian-Scanner/domain"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "durian_scan_cache_hits_total",
		Help: "Scan lookups served from the in-memory cache.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "durian_scan_cache_misses_total",
		Help: "Scan lookups that went to the database.",
	})
)

// ScanCache holds shaped scan responses by scan id. Entries are dropped on
// delete; scans are otherwise immutable so no other invalidation is needed.
type ScanCache struct {
	cache *expirable.LRU[string, domain.ScanResponse]
}

func NewScanCache(maxSize int, ttl time.Duration) *ScanCache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &ScanCache{cache: expirable.NewLRU[string, domain.ScanResponse](maxSize, nil, ttl)}
}

func (c *ScanCache) Get(id string) (domain.ScanResponse, bool) {
	val, ok := c.cache.Get(id)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return domain.ScanResponse{}, false
}

// Set copies id before storing it; callers may pass strings backed by a
// reused request buffer.
func (c *ScanCache) Set(id string, scan domain.ScanResponse) {
	c.cache.Add(strings.Clone(id), scan)
}

func (c *ScanCache) Delete(id string) {
	c.cache.Remove(id)
}
