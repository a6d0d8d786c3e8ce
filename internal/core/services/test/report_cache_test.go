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

// Package services_test contains the test suite for the services package.
// This file tests the bounded, expiring report cache with a substituted
// clock, so no test ever sleeps.
package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/services"
	"github.com/zeebo/assert"
)

// testClock is a manually advanced time source.
type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newCacheWithClock(maxEntries int, expireHours int) (*services.ReportCache, *testClock) {
	clock := &testClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := services.NewReportCache(maxEntries, expireHours)
	cache.SetClock(clock.now)
	return cache, clock
}

// TestCacheHit verifies the basic store and fetch round trip.
func TestCacheHit(t *testing.T) {
	cache, _ := newCacheWithClock(100, 24)
	cache.Put("analysis_1", "report-1")

	value, result := cache.Get("analysis_1")
	assert.Equal(t, services.CacheHit, result)
	assert.Equal(t, "report-1", value)
}

// TestCacheMiss verifies an id that was never stored reports a plain miss.
func TestCacheMiss(t *testing.T) {
	cache, _ := newCacheWithClock(100, 24)

	value, result := cache.Get("analysis_unknown")
	assert.Equal(t, services.CacheMiss, result)
	assert.Nil(t, value)
}

// TestCacheCapacityEviction verifies inserting one entry past capacity
// evicts exactly the oldest entry and nothing else.
func TestCacheCapacityEviction(t *testing.T) {
	cache, clock := newCacheWithClock(100, 24)

	for i := 0; i <= 100; i++ {
		cache.Put(fmt.Sprintf("analysis_%d", i), i)
		clock.advance(time.Second)
	}

	assert.Equal(t, 100, cache.Len())

	_, result := cache.Get("analysis_0")
	assert.Equal(t, services.CacheMiss, result)

	_, result = cache.Get("analysis_1")
	assert.Equal(t, services.CacheHit, result)

	_, result = cache.Get("analysis_100")
	assert.Equal(t, services.CacheHit, result)
}

// TestCacheExpiryBoundary verifies an entry is still served just inside the
// expiry window and reported expired just past it.
func TestCacheExpiryBoundary(t *testing.T) {
	cache, clock := newCacheWithClock(100, 24)
	cache.Put("analysis_1", "report-1")

	clock.advance(23*time.Hour + 59*time.Minute)
	_, result := cache.Get("analysis_1")
	assert.Equal(t, services.CacheHit, result)

	clock.advance(2 * time.Minute)
	_, result = cache.Get("analysis_1")
	assert.Equal(t, services.CacheExpired, result)

	// The expired entry was deleted on lookup, so a second fetch is a
	// plain miss.
	_, result = cache.Get("analysis_1")
	assert.Equal(t, services.CacheMiss, result)
}

// TestCacheSweepRemovesExpiredOnPut verifies the pre-insert sweep drops aged
// entries rather than counting them against capacity.
func TestCacheSweepRemovesExpiredOnPut(t *testing.T) {
	cache, clock := newCacheWithClock(100, 24)
	cache.Put("analysis_old_1", 1)
	cache.Put("analysis_old_2", 2)

	clock.advance(25 * time.Hour)
	cache.Put("analysis_new", 3)

	assert.Equal(t, 1, cache.Len())
	_, result := cache.Get("analysis_new")
	assert.Equal(t, services.CacheHit, result)
}
