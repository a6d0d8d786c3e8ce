// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services contains the business logic for the application. This file
// implements the in-memory result cache that backs the synchronous analysis
// path: a completed report is stored under its analysis id so the follow-up
// detail and status fetches never re-run the pipeline.
package services

import (
	"sync"
	"time"
)

// Default sizing for the report cache, used when the configuration leaves the
// values unset.
const (
	DefaultCacheMaxEntries  = 100
	DefaultCacheExpireHours = 24
)

// CacheResult classifies the outcome of a cache lookup. Callers treat
// anything other than CacheHit as "not found", but the distinction is kept
// for logging and tests.
type CacheResult int

const (
	CacheHit CacheResult = iota
	CacheMiss
	CacheExpired
)

// cacheEntry pairs a stored value with its insertion time so the sweep can
// age entries out and evict the oldest first.
type cacheEntry struct {
	value     any
	createdAt time.Time
}

// ReportCache is a bounded, expiring, in-memory map of analysis results. It
// is safe for concurrent use by the request handlers.
//
// Two limits apply, both enforced by a sweep that runs before every insert:
// entries older than the expiry window are removed, and when the map is at
// capacity the oldest entries are evicted until the insert fits.
type ReportCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	maxEntries int
	expiry     time.Duration
	now        func() time.Time
}

// NewReportCache is the constructor for the ReportCache.
//
// Inputs:
//   - maxEntries: The capacity of the cache. Values <= 0 fall back to the default.
//   - expireHours: The entry lifetime in hours. Values <= 0 fall back to the default.
//
// Outputs:
//   - *ReportCache: A pointer to the newly instantiated cache.
func NewReportCache(maxEntries int, expireHours int) *ReportCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	if expireHours <= 0 {
		expireHours = DefaultCacheExpireHours
	}
	return &ReportCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: maxEntries,
		expiry:     time.Duration(expireHours) * time.Hour,
		now:        time.Now,
	}
}

// SetClock replaces the cache's time source. Used by tests to control
// expiry without sleeping.
func (c *ReportCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get looks up a stored value by analysis id. An entry past its expiry is
// removed on the spot and reported as CacheExpired.
func (c *ReportCache) Get(id string) (any, CacheResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, CacheMiss
	}
	if c.now().Sub(entry.createdAt) > c.expiry {
		delete(c.entries, id)
		return nil, CacheExpired
	}
	return entry.value, CacheHit
}

// Put stores a value under the given analysis id, sweeping first so the
// cache never grows past its capacity.
func (c *ReportCache) Put(id string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep()
	c.entries[id] = &cacheEntry{value: value, createdAt: c.now()}
}

// Len reports the current number of stored entries.
func (c *ReportCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// sweep removes expired entries, then evicts the oldest entries until one
// more insert fits under the capacity. Callers must hold the mutex.
func (c *ReportCache) sweep() {
	now := c.now()
	for id, entry := range c.entries {
		if now.Sub(entry.createdAt) > c.expiry {
			delete(c.entries, id)
		}
	}

	for len(c.entries) >= c.maxEntries {
		oldestId := ""
		var oldestAt time.Time
		for id, entry := range c.entries {
			if oldestId == "" || entry.createdAt.Before(oldestAt) {
				oldestId = id
				oldestAt = entry.createdAt
			}
		}
		delete(c.entries, oldestId)
	}
}
