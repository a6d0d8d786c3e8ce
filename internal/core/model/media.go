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

// Package model defines the core data structures for the application.
// This file contains the timeline inputs to the analysis pipeline (sampled
// frames for the synchronous path, annotated segments for the asynchronous
// path) and the persisted analysis job record.
package model

import "time"

// Job status values as persisted in the job table. The client-facing status
// vocabulary is a projection of these, produced by the services package.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// Frame is a single timestamped image sampled from a video. Frames are
// produced in timestamp order and are owned by the pipeline invocation that
// requested them; the image files live in request-scoped temp storage.
type Frame struct {
	TimestampMs int64  `json:"timestamp_ms"` // Offset into the video in milliseconds.
	ImagePath   string `json:"image_path"`   // Path to the extracted frame image on local disk.
}

// SegmentFeature is a single detected characteristic of a video segment, such
// as a camera motion or lighting observation.
type SegmentFeature struct {
	Category   string  `json:"category"`   // The feature family (e.g., "camera_motion", "lighting").
	Type       string  `json:"type"`       // The specific observation within the family (e.g., "pan").
	Value      string  `json:"value"`      // A descriptive value (e.g., "slow left-to-right").
	Confidence float64 `json:"confidence"` // Detection confidence, 0.0-1.0.
}

// Segment is a pre-computed time range of a video annotated with detected
// features. The asynchronous analysis path judges videos from segments rather
// than raw frames.
type Segment struct {
	StartMs    int64             `json:"start_ms"`    // Segment start offset in milliseconds.
	EndMs      int64             `json:"end_ms"`      // Segment end offset in milliseconds.
	DurationMs int64             `json:"duration_ms"` // Segment length in milliseconds.
	Features   []*SegmentFeature `json:"features"`    // Detected features, possibly empty.
}

// JobRecord is the persisted representation of an asynchronous analysis job,
// stored in BigQuery. Segments and the cached judgment are stored as JSON
// strings so the table schema stays flat.
type JobRecord struct {
	Id           string    `json:"id" bigquery:"id"`                       // The opaque job identifier (a UUID).
	Title        string    `json:"title" bigquery:"title"`                 // Display title for the video.
	SourceUri    string    `json:"source_uri" bigquery:"source_uri"`       // GCS URI of the uploaded source video.
	ThumbnailUri string    `json:"thumbnail_uri" bigquery:"thumbnail_uri"` // Reference to the cover image.
	Status       string    `json:"status" bigquery:"status"`               // One of the JobStatus constants.
	Progress     int       `json:"progress" bigquery:"progress"`           // Completion percentage, 0-100.
	CurrentStep  string    `json:"current_step" bigquery:"current_step"`   // Human-readable description of the active step.
	ErrorMessage string    `json:"error_message" bigquery:"error_message"` // Failure summary when Status is failed.
	ErrorDetails string    `json:"error_details" bigquery:"error_details"` // Structured failure details as JSON.
	SegmentsJson string    `json:"segments_json" bigquery:"segments_json"` // The job's Segment list serialized as JSON.
	JudgmentJson string    `json:"judgment_json" bigquery:"judgment_json"` // The cached Judgment serialized as JSON, empty until first derived.
	CreateTime   time.Time `json:"create_time" bigquery:"create_time"`     // When the job record was created.
	UpdateTime   time.Time `json:"update_time" bigquery:"update_time"`     // When the job record was last modified.
}
