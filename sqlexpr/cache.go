package sqlexpr

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// CacheEntry is a parsed query with its insertion time
type CacheEntry struct {
	Query     *Query
	CreatedAt time.Time
	TTL       time.Duration
}

// CacheConfig holds configuration for the plan cache
type CacheConfig struct {
	MaxEntries int           // Entries kept before LRU eviction
	DefaultTTL time.Duration // Zero keeps entries until evicted
	Enabled    bool
}

// DefaultCacheConfig keeps the last 128 parsed queries
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{MaxEntries: 128, Enabled: true}
}

// PlanCache is an LRU cache of parsed queries keyed by statement text
type PlanCache struct {
	config   CacheConfig
	entries  map[uint64]*CacheEntry
	keyOrder []uint64 // least recently used first
	mutex    sync.Mutex
	stats    CacheStats
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits over lookups, 0 before the first lookup
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// NewPlanCache creates a plan cache with the given configuration
func NewPlanCache(config CacheConfig) *PlanCache {
	return &PlanCache{
		config:  config,
		entries: make(map[uint64]*CacheEntry),
	}
}

// Get returns the cached parse of sql if present and not expired
func (pc *PlanCache) Get(sql string) (*Query, bool) {
	if !pc.config.Enabled {
		return nil, false
	}
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	key := xxhash.Sum64String(sql)
	entry, exists := pc.entries[key]
	if !exists || entry.Query.RawSQL != sql {
		pc.stats.Misses++
		return nil, false
	}
	if entry.TTL > 0 && time.Since(entry.CreatedAt) > entry.TTL {
		pc.removeEntry(key)
		pc.stats.Misses++
		return nil, false
	}

	pc.moveToEnd(key)
	pc.stats.Hits++
	return entry.Query, true
}

// Put stores a parsed query
func (pc *PlanCache) Put(query *Query) {
	if !pc.config.Enabled {
		return
	}
	pc.mutex.Lock()
	defer pc.mutex.Unlock()

	key := xxhash.Sum64String(query.RawSQL)
	if _, exists := pc.entries[key]; exists {
		pc.removeEntry(key)
	}
	pc.entries[key] = &CacheEntry{Query: query, CreatedAt: time.Now(), TTL: pc.config.DefaultTTL}
	pc.keyOrder = append(pc.keyOrder, key)

	for pc.config.MaxEntries > 0 && len(pc.keyOrder) > pc.config.MaxEntries {
		pc.removeEntry(pc.keyOrder[0])
		pc.stats.Evictions++
	}
}

// Stats returns a snapshot of the cache counters
func (pc *PlanCache) Stats() CacheStats {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	return pc.stats
}

// Len returns the number of cached queries
func (pc *PlanCache) Len() int {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	return len(pc.entries)
}

// Clear removes all entries from the cache
func (pc *PlanCache) Clear() {
	pc.mutex.Lock()
	defer pc.mutex.Unlock()
	pc.entries = make(map[uint64]*CacheEntry)
	pc.keyOrder = nil
}

func (pc *PlanCache) moveToEnd(key uint64) {
	for i, k := range pc.keyOrder {
		if k == key {
			pc.keyOrder = append(pc.keyOrder[:i], pc.keyOrder[i+1:]...)
			break
		}
	}
	pc.keyOrder = append(pc.keyOrder, key)
}

func (pc *PlanCache) removeEntry(key uint64) {
	if _, exists := pc.entries[key]; !exists {
		return
	}
	delete(pc.entries, key)
	for i, k := range pc.keyOrder {
		if k == key {
			pc.keyOrder = append(pc.keyOrder[:i], pc.keyOrder[i+1:]...)
			break
		}
	}
}
