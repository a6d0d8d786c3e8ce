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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the background job runner triggered by Pub/Sub.
package workflow

import (
	"fmt"
	"log/slog"
	"text/template"

	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/services"
)

// JobRunnerWorkflow processes an analysis job end to end when its trigger
// message arrives on the jobs topic: load the job's segment timeline, derive
// a judgment from it, and persist the judgment back onto the record.
//
// The workflow also owns the job's lifecycle transitions. The record is
// marked running before the judgment work starts, succeeded once the chain
// completes, and failed with the collected error when it does not. Status
// writes themselves are best effort so a flaky metadata update never loses a
// derived judgment.
type JobRunnerWorkflow struct {
	cor.BaseCommand
	config          *cloud.Config
	jobService      *services.JobService
	genaiModel      *cloud.QuotaAwareGenerativeAIModel
	segmentTemplate *template.Template
	trigger         cor.Command // Parses the Pub/Sub trigger into a job id.
	chain           cor.Chain   // The judgment derivation chain for the loaded job.
}

// Execute runs the full job workflow: trigger parsing, lifecycle marking,
// judgment derivation, and persistence.
//
// Inputs:
//   - context: The chain of responsibility context, carrying the raw Pub/Sub
//     message data as the chain input.
func (m *JobRunnerWorkflow) Execute(context cor.Context) {
	m.trigger.Execute(context)
	if context.HasErrors() {
		return
	}
	jobId := context.Get(cor.CtxOut).(string)

	if err := m.jobService.UpdateStatus(context.GetContext(), jobId, model.JobStatusRunning, 25, "deriving judgment"); err != nil {
		slog.Warn("failed to mark job running", "job_id", jobId, "error", err)
	}

	// Pipe the job id into the derivation chain.
	context.Add(cor.CtxIn, jobId)
	context.Remove(cor.CtxOut)
	m.chain.Execute(context)

	if context.HasErrors() {
		message := "analysis job failed"
		details := ""
		for name, err := range context.GetErrors() {
			details = fmt.Sprintf("%s: %v", name, err)
			break
		}
		if err := m.jobService.MarkFailed(context.GetContext(), jobId, message, details); err != nil {
			slog.Warn("failed to mark job failed", "job_id", jobId, "error", err)
		}
		return
	}

	if err := m.jobService.UpdateStatus(context.GetContext(), jobId, model.JobStatusSucceeded, 100, "report ready"); err != nil {
		slog.Warn("failed to mark job succeeded", "job_id", jobId, "error", err)
	}
}

// initializeChain builds the judgment derivation chain that runs once the
// trigger has resolved to a job id.
func (m *JobRunnerWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Step 1: Load the job record and place its segment timeline and
	// identity fields on the context.
	out.AddCommand(commands.NewJobSegmentsLoader("load-job-segments", m.jobService))

	// Step 2: Render the segment analysis prompt from the timeline.
	out.AddCommand(commands.NewSegmentPromptBuilder("build-segment-prompt", m.segmentTemplate))

	// Step 3: Send the prompt to Gemini and parse the judgment from the
	// response. Failures here are soft so the fallback can take over.
	out.AddCommand(commands.NewJudgmentExtractor("generate-judgment", m.genaiModel))

	// Step 4: Derive a deterministic judgment from the segment features when
	// the model produced nothing usable.
	out.AddCommand(commands.NewFallbackJudgment("fallback-judgment"))

	// Step 5: Persist the judgment onto the job record so report fetches
	// never repeat the model call.
	out.AddCommand(commands.NewJobJudgmentSaver("save-judgment", m.jobService))

	m.chain = out
}

// NewJobRunnerPipeline is the constructor for the JobRunnerWorkflow. It
// compiles the segment prompt template and initializes the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - jobService: The persistence layer for job records.
//   - agentModelName: The name of the Vertex AI agent model config to use.
//
// Returns:
//   - A pointer to a newly created and fully initialized JobRunnerWorkflow.
func NewJobRunnerPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	jobService *services.JobService,
	agentModelName string) *JobRunnerWorkflow {

	segmentPrompt, err := template.New("segment-prompt").Parse(config.PromptTemplates.SegmentPrompt)
	if err != nil {
		panic(err)
	}

	pipeline := &JobRunnerWorkflow{
		BaseCommand:     *cor.NewBaseCommand("job-runner-pipeline"),
		config:          config,
		jobService:      jobService,
		genaiModel:      serviceClients.AgentModels[agentModelName],
		segmentTemplate: segmentPrompt,
		trigger:         commands.NewJobTriggerReader("read-job-trigger"),
	}
	pipeline.initializeChain()
	return pipeline
}
