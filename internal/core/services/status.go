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
// maps internal job lifecycle states to the vocabulary the HTTP API exposes,
// and classifies analysis ids into the synchronous and asynchronous families.
package services

import (
	"strings"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// SyncAnalysisPrefix marks ids minted by the synchronous analysis endpoint.
// Results for these ids live only in the in-memory report cache, never in
// the job table.
const SyncAnalysisPrefix = "analysis_"

// External status values returned by the status endpoint. These are decoupled
// from the stored job states so the storage vocabulary can evolve without
// breaking API clients.
const (
	ExternalStatusQueued     = "queued"
	ExternalStatusProcessing = "processing"
	ExternalStatusCompleted  = "completed"
	ExternalStatusFailed     = "failed"
)

// StatusProjection is the externally visible view of a job's progress. Failed
// jobs carry both the short message and the structured details recorded when
// the job was marked failed.
type StatusProjection struct {
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	CurrentStep  string `json:"currentStep,omitempty"`
	Message      string `json:"message,omitempty"`
	ErrorDetails string `json:"errorDetails,omitempty"`
}

// IsSyncAnalysisId reports whether an analysis id belongs to the synchronous
// family, whose results are served from the report cache.
func IsSyncAnalysisId(id string) bool {
	return strings.HasPrefix(id, SyncAnalysisPrefix)
}

// CompletedStatus returns the projection for a finished synchronous analysis.
// Synchronous results exist only once complete, so there is nothing to track.
func CompletedStatus() *StatusProjection {
	return &StatusProjection{Status: ExternalStatusCompleted, Progress: 100}
}

// ProjectStatus translates a stored job record into the external status
// vocabulary. Unknown stored states project as queued, the most conservative
// answer a polling client can receive.
func ProjectStatus(record *model.JobRecord) *StatusProjection {
	out := &StatusProjection{
		Progress:    record.Progress,
		CurrentStep: record.CurrentStep,
	}
	switch record.Status {
	case model.JobStatusRunning:
		out.Status = ExternalStatusProcessing
	case model.JobStatusSucceeded:
		out.Status = ExternalStatusCompleted
		out.Progress = 100
	case model.JobStatusFailed:
		out.Status = ExternalStatusFailed
		out.Message = record.ErrorMessage
		out.ErrorDetails = record.ErrorDetails
	default:
		out.Status = ExternalStatusQueued
	}
	return out
}
