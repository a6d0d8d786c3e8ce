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
// This file tests the projection of stored job states onto the external
// status vocabulary and the analysis id family dispatch.
package services_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/services"
	"github.com/zeebo/assert"
)

// TestIsSyncAnalysisId verifies the prefix dispatch between the two id
// families.
func TestIsSyncAnalysisId(t *testing.T) {
	assert.True(t, services.IsSyncAnalysisId("analysis_1718000000000"))
	assert.False(t, services.IsSyncAnalysisId("f2c9a7d4-6f2e-4f1a-9d3b-8f5f0b1c2d3e"))
	assert.False(t, services.IsSyncAnalysisId(""))
}

// TestProjectStatus verifies the stored-to-external status mapping.
func TestProjectStatus(t *testing.T) {
	queued := services.ProjectStatus(&model.JobRecord{Status: model.JobStatusQueued, Progress: 0})
	assert.Equal(t, services.ExternalStatusQueued, queued.Status)

	running := services.ProjectStatus(&model.JobRecord{
		Status:      model.JobStatusRunning,
		Progress:    25,
		CurrentStep: "deriving judgment",
	})
	assert.Equal(t, services.ExternalStatusProcessing, running.Status)
	assert.Equal(t, 25, running.Progress)
	assert.Equal(t, "deriving judgment", running.CurrentStep)

	succeeded := services.ProjectStatus(&model.JobRecord{Status: model.JobStatusSucceeded, Progress: 90})
	assert.Equal(t, services.ExternalStatusCompleted, succeeded.Status)
	assert.Equal(t, 100, succeeded.Progress)

	failed := services.ProjectStatus(&model.JobRecord{
		Status:       model.JobStatusFailed,
		ErrorMessage: "analysis job failed",
		ErrorDetails: `{"step":"build-segment-prompt"}`,
	})
	assert.Equal(t, services.ExternalStatusFailed, failed.Status)
	assert.Equal(t, "analysis job failed", failed.Message)
	assert.Equal(t, `{"step":"build-segment-prompt"}`, failed.ErrorDetails)
}

// TestProjectStatusFailedDetailsOnWire verifies the stored error details
// survive all the way into the marshaled status payload a polling client
// receives.
func TestProjectStatusFailedDetailsOnWire(t *testing.T) {
	projection := services.ProjectStatus(&model.JobRecord{
		Status:       model.JobStatusFailed,
		ErrorMessage: "analysis job failed",
		ErrorDetails: "build-segment-prompt: template failure",
	})

	payload, err := json.Marshal(projection)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(payload), "template failure"))
	assert.True(t, strings.Contains(string(payload), `"errorDetails"`))
}

// TestProjectStatusUnknownState verifies an unrecognized stored state
// projects as queued rather than leaking storage vocabulary to clients.
func TestProjectStatusUnknownState(t *testing.T) {
	projection := services.ProjectStatus(&model.JobRecord{Status: "migrating"})
	assert.Equal(t, services.ExternalStatusQueued, projection.Status)
}

// TestCompletedStatus verifies the fixed projection for finished synchronous
// analyses.
func TestCompletedStatus(t *testing.T) {
	projection := services.CompletedStatus()
	assert.Equal(t, services.ExternalStatusCompleted, projection.Status)
	assert.Equal(t, 100, projection.Progress)
}
