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

// This file tests the analysis route handlers that can run without cloud
// clients, using an in-process Gin router. The synchronous id family never
// touches BigQuery or Pub/Sub, so these routes are exercised end to end.
package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/services"
	"github.com/stretchr/testify/assert"
)

// newAnalysisRouter builds a router with the analysis routes mounted the way
// main does, backed by a report cache with a controllable clock.
func newAnalysisRouter(clock *time.Time) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cache := services.NewReportCache(10, 24)
	cache.SetClock(func() time.Time { return *clock })
	state.reportCache = cache

	r := gin.New()
	apiV1 := r.Group("/api/v1")
	AnalysisRouter(apiV1)
	return r
}

func getJSON(t *testing.T, r *gin.Engine, path string) (int, *Response) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)

	var resp Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, &resp
}

// TestSyncStatusIsAlwaysCompleted verifies the status route answers completed
// for any synchronous id without consulting the cache: the id format alone
// means the inline analysis already finished.
func TestSyncStatusIsAlwaysCompleted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newAnalysisRouter(&now)

	// An id that was never stored still reports completed.
	code, resp := getJSON(t, r, "/api/v1/analysis/analysis_1718000000000/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, CodeOk, resp.Code)

	data := resp.Data.(map[string]any)
	assert.Equal(t, services.ExternalStatusCompleted, data["status"])
	assert.Equal(t, float64(100), data["progress"])
}

// TestSyncStatusSurvivesCacheExpiry verifies a polling client still sees
// completed after the cached report ages out, while the report route reports
// the expiry.
func TestSyncStatusSurvivesCacheExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newAnalysisRouter(&now)
	state.reportCache.Put("analysis_1", &model.Report{Id: "analysis_1"})

	now = now.Add(25 * time.Hour)

	code, resp := getJSON(t, r, "/api/v1/analysis/analysis_1/status")
	assert.Equal(t, http.StatusOK, code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, services.ExternalStatusCompleted, data["status"])

	code, resp = getJSON(t, r, "/api/v1/analysis/analysis_1")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, CodeResourceNotFound, resp.Code)
	assert.Equal(t, "analysis result expired", resp.Message)
}

// TestSyncReportFetch verifies the cached report round trip and the miss
// message for ids that were never stored.
func TestSyncReportFetch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newAnalysisRouter(&now)
	state.reportCache.Put("analysis_1", &model.Report{Id: "analysis_1", Title: "clip"})

	code, resp := getJSON(t, r, "/api/v1/analysis/analysis_1")
	assert.Equal(t, http.StatusOK, code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "analysis_1", data["id"])
	assert.Equal(t, "clip", data["title"])

	code, resp = getJSON(t, r, "/api/v1/analysis/analysis_2")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "analysis result not found", resp.Message)
}
