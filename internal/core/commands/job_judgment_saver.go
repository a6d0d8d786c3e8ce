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
// command that persists a derived judgment back onto its job record so the
// expensive model call happens at most once per job.
package commands

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// JudgmentSaver is the narrow write interface this command needs from the
// job store.
type JudgmentSaver interface {
	SaveCachedJudgment(ctx context.Context, id string, judgment *model.Judgment) error
}

// JobJudgmentSaver is a command that writes the judgment on the context back
// to the job record. The write is best effort: a storage failure is logged
// and swallowed because the in-flight judgment is still used for the current
// response, and a later fetch will simply re-derive and retry the save.
type JobJudgmentSaver struct {
	cor.BaseCommand
	store JudgmentSaver
}

// NewJobJudgmentSaver is the constructor for the JobJudgmentSaver command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - store: The job store to persist judgments to.
//
// Outputs:
//   - *JobJudgmentSaver: A pointer to the newly instantiated command.
func NewJobJudgmentSaver(name string, store JudgmentSaver) *JobJudgmentSaver {
	out := &JobJudgmentSaver{BaseCommand: *cor.NewBaseCommand(name), store: store}
	out.InputParamName = JudgmentParamName
	return out
}

// Execute persists the judgment keyed by the loaded job record's id.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *JobJudgmentSaver) Execute(context cor.Context) {
	judgment := context.Get(c.GetInputParam()).(*model.Judgment)
	record := context.Get(JobRecordParamName).(*model.JobRecord)

	if err := c.store.SaveCachedJudgment(context.GetContext(), record.Id, judgment); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.Warn("failed to cache judgment on job record", "command", c.GetName(), "job_id", record.Id, "error", err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), judgment)
}
