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

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file defines the Pub/Sub message payloads exchanged over the analysis job topic.
//
// Structs:
//   - JobTriggerMessage: Maps to the JSON payload published when an analysis job is queued.
//
// Functions:
//   - GetJobTriggerName: Returns a constant key used for storing the trigger in a workflow context.
package cloud

// GetJobTriggerName returns a constant string that is used as a key within the
// Chain of Responsibility (CoR) context. This key allows different commands in a
// workflow to consistently access the `JobTriggerMessage` being processed.
//
// Outputs:
//   - string: A constant placeholder string "__JOB__TRIGGER__".
func GetJobTriggerName() string {
	return "__JOB__TRIGGER__"
}

// JobTriggerMessage is the structure that maps to the JSON message payload
// published to the analysis jobs topic when a job is submitted. The background
// listener decodes it to find which job record to process.
type JobTriggerMessage struct {
	JobId string `json:"job_id"` // The identifier of the queued analysis job record.
}
