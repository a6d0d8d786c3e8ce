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
// command that loads an analysis job record and materializes its segment
// timeline onto the workflow context.
package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// JobRecordParamName is the well-known context key for the loaded job record.
const JobRecordParamName = "__JOB_RECORD__"

// JobGetter is the narrow read interface this command needs from the job
// store. Defined here so the command can be tested with a fake.
type JobGetter interface {
	GetJob(ctx context.Context, id string) (*model.JobRecord, error)
}

// JobSegmentsLoader is a command that fetches a job record by id and places
// its segments, identity fields, and the record itself onto the context.
type JobSegmentsLoader struct {
	cor.BaseCommand
	store JobGetter
}

// NewJobSegmentsLoader is the constructor for the JobSegmentsLoader command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - store: The job store to read records from.
//
// Outputs:
//   - *JobSegmentsLoader: A pointer to the newly instantiated command.
func NewJobSegmentsLoader(name string, store JobGetter) *JobSegmentsLoader {
	return &JobSegmentsLoader{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

// Execute loads the record and prepares the context for the segment prompt
// builder. A missing record or undecodable segment payload is fatal to the
// workflow: with no timeline at all there is nothing the fallback generator
// could work from.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution, holding
//     the job id in the input parameter.
func (c *JobSegmentsLoader) Execute(context cor.Context) {
	jobId := context.Get(c.GetInputParam()).(string)

	record, err := c.store.GetJob(context.GetContext(), jobId)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to load job %s: %w", jobId, err))
		return
	}
	if record == nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("job %s not found", jobId))
		return
	}

	segments, err := DecodeSegments(record.SegmentsJson)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to decode segments for job %s: %w", jobId, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(JobRecordParamName, record)
	context.Add(IdentityParamName, &ReportIdentity{
		Id:       record.Id,
		Title:    record.Title,
		CoverUrl: record.ThumbnailUri,
	})
	context.Add(SegmentsParamName, segments)
	context.Add(c.GetOutputParam(), segments)
}

// DecodeSegments unmarshals a job record's segment JSON. An empty payload
// decodes to an empty timeline rather than an error.
//
// Inputs:
//   - segmentsJson: The serialized segment list, possibly empty.
//
// Outputs:
//   - []*model.Segment: The decoded segments in stored order.
//   - error: An error when the payload is present but malformed.
func DecodeSegments(segmentsJson string) ([]*model.Segment, error) {
	if segmentsJson == "" {
		return []*model.Segment{}, nil
	}
	segments := make([]*model.Segment, 0)
	if err := json.Unmarshal([]byte(segmentsJson), &segments); err != nil {
		return nil, err
	}
	return segments, nil
}
