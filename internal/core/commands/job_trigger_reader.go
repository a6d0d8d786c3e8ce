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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. This file defines the
// initial command of the background job workflow.
//
// Logic Flow:
// When an analysis job is submitted, a small JSON trigger naming the job id
// is published to the jobs topic. This command parses that message so the
// rest of the chain knows which job record to process.
//
//  1. The command receives the raw Pub/Sub message data as a JSON string from the context.
//  2. It unmarshals the JSON into a `cloud.JobTriggerMessage`.
//  3. The trigger is stored under a well-known key, and the job id becomes
//     the piped input of the next command.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
)

// JobTriggerReader is a command that parses an analysis job trigger message
// and extracts the job identifier for downstream commands.
type JobTriggerReader struct {
	cor.BaseCommand
}

// NewJobTriggerReader is the constructor for the JobTriggerReader command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *JobTriggerReader: A pointer to the newly instantiated command.
func NewJobTriggerReader(name string) *JobTriggerReader {
	return &JobTriggerReader{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute contains the core logic for parsing the trigger message.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution, containing
//     the raw message data in the input parameter.
func (c *JobTriggerReader) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var trigger cloud.JobTriggerMessage
	if err := json.Unmarshal([]byte(in), &trigger); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal job trigger: %w", err))
		return
	}
	if trigger.JobId == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("job trigger missing job_id"))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cloud.GetJobTriggerName(), &trigger)
	context.Add(c.GetOutputParam(), trigger.JobId)
}
