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
// the segment judgment workflow shared by the background job runner and the
// on-demand report service.
package workflow

import (
	"text/template"

	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
)

// JobJudgmentWorkflow derives a judgment from a pre-extracted segment
// timeline: render the segment prompt, call the model once, and fall back to
// a deterministic judgment when the model cannot deliver one.
//
// The caller places the segment list on the context, both as the chain input
// and under the segments key, and reads the judgment back from its
// well-known key after execution.
type JobJudgmentWorkflow struct {
	cor.BaseCommand
	config          *cloud.Config
	genaiModel      *cloud.QuotaAwareGenerativeAIModel
	segmentTemplate *template.Template
	chain           cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the segment judgment workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (m *JobJudgmentWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
func (m *JobJudgmentWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Step 1: Render the segment analysis prompt from the timeline.
	out.AddCommand(commands.NewSegmentPromptBuilder("build-segment-prompt", m.segmentTemplate))

	// Step 2: Send the prompt to Gemini and parse the judgment from the
	// response. Failures here are soft so the fallback can take over.
	out.AddCommand(commands.NewJudgmentExtractor("generate-judgment", m.genaiModel))

	// Step 3: Derive a deterministic judgment from the segment features when
	// the model produced nothing usable.
	out.AddCommand(commands.NewFallbackJudgment("fallback-judgment"))

	m.chain = out
}

// NewJobJudgmentPipeline is the constructor for the JobJudgmentWorkflow. It
// compiles the segment prompt template and initializes the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - agentModelName: The name of the Vertex AI agent model config to use.
//
// Returns:
//   - A pointer to a newly created and fully initialized JobJudgmentWorkflow.
func NewJobJudgmentPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *JobJudgmentWorkflow {

	segmentPrompt, err := template.New("segment-prompt").Parse(config.PromptTemplates.SegmentPrompt)
	if err != nil {
		panic(err)
	}

	pipeline := &JobJudgmentWorkflow{
		BaseCommand:     *cor.NewBaseCommand("job-judgment-pipeline"),
		config:          config,
		genaiModel:      serviceClients.AgentModels[agentModelName],
		segmentTemplate: segmentPrompt,
	}
	pipeline.initializeChain()
	return pipeline
}
