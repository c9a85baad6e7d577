package application

import (
	"strings"
	"sync"
	"time"
)

// summaryCache stores recently computed compliance summaries so repeated
// dashboard queries do not rescan the task table while nothing has changed.
// Task mutations invalidate the whole cache.
type summaryCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]summaryCacheEntry
}

type summaryCacheEntry struct {
	rows      []ComplianceRow
	expiresAt time.Time
}

func newSummaryCache(ttl time.Duration, maxEntries int, now func() time.Time) *summaryCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &summaryCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]summaryCacheEntry),
	}
}

func (c *summaryCache) Get(key string) ([]ComplianceRow, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneRows(entry.rows), true
}

func (c *summaryCache) Store(key string, rows []ComplianceRow) {
	if c == nil {
		return
	}
	cloned := cloneRows(rows)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = summaryCacheEntry{rows: cloned, expiresAt: expiry}
}

func (c *summaryCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]summaryCacheEntry)
	c.mu.Unlock()
}

func (c *summaryCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *summaryCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneRows(rows []ComplianceRow) []ComplianceRow {
	if len(rows) == 0 {
		return nil
	}
	out := make([]ComplianceRow, len(rows))
	copy(out, rows)
	return out
}

func buildSummaryCacheKey(window ComplianceWindow) string {
	builder := strings.Builder{}
	builder.WriteString(window.From.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(window.To.UTC().Format(time.RFC3339Nano))
	return builder.String()
}
