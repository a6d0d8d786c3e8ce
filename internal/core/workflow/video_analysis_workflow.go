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
// the synchronous video analysis workflow.
package workflow

import (
	"text/template"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
)

// VideoAnalysisWorkflow orchestrates the full analysis of a single uploaded
// video: sample frames from the file, ask the multimodal model for a
// judgment over those frames, fall back to a deterministic judgment when the
// model cannot deliver one, and assemble the final report.
//
// This workflow runs inline with the HTTP request on the synchronous
// analysis endpoint, so every step works from local state and the single
// model call is the only slow operation.
type VideoAnalysisWorkflow struct {
	cor.BaseCommand
	config        *cloud.Config
	genaiModel    *cloud.QuotaAwareGenerativeAIModel
	storageClient *storage.Client
	frameTemplate *template.Template
	chain         cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the video analysis workflow by invoking the underlying chain.
// The context must carry the video reference (a gs:// URI or local path) as
// the chain input and a `commands.ReportIdentity` under its well-known key.
//
// Inputs:
//   - context: The chain of responsibility context for this execution.
func (m *VideoAnalysisWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
// Each command is an atomic unit of work whose output pipes into the next.
// This method is called by the constructor.
func (m *VideoAnalysisWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Step 1: Resolve the video reference to a local file, downloading from
	// GCS when the reference is a gs:// URI.
	out.AddCommand(commands.NewVideoFetcher("fetch-video", m.storageClient, "viral-analysis-"))

	// Step 2: Sample representative frames from the local file with FFmpeg.
	// The sampled frames land on the context under their well-known key and
	// are tracked as temp files for cleanup.
	out.AddCommand(commands.NewFrameExtractor(
		"extract-frames",
		m.config.FrameSampling.FFMpegPath,
		m.config.FrameSampling.FrameIntervalSeconds,
		m.config.FrameSampling.MaxFrames))

	// Step 3: Render the frame analysis prompt, embedding per-frame timing
	// lines and the example response document.
	out.AddCommand(commands.NewFramePromptBuilder("build-frame-prompt", m.frameTemplate))

	// Step 4: Send the prompt plus inline frame images to Gemini and parse
	// the judgment out of the response. A model or parse failure here is
	// soft: the command leaves no judgment behind rather than failing the
	// chain, so the next step can take over.
	out.AddCommand(commands.NewJudgmentExtractor("generate-judgment", m.genaiModel))

	// Step 5: Derive a deterministic judgment from the sampled frames when
	// the model produced nothing usable.
	out.AddCommand(commands.NewFallbackJudgment("fallback-judgment"))

	// Step 6: Assemble the final report from the judgment, the frame
	// timeline, and the identity fields supplied by the caller.
	out.AddCommand(commands.NewReportAssembler("assemble-report"))

	m.chain = out
}

// NewVideoAnalysisPipeline is the constructor for the VideoAnalysisWorkflow.
// It compiles the frame prompt template and initializes the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - agentModelName: The name of the Vertex AI agent model config to use.
//
// Returns:
//   - A pointer to a newly created and fully initialized VideoAnalysisWorkflow.
func NewVideoAnalysisPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *VideoAnalysisWorkflow {

	framePrompt, err := template.New("frame-prompt").Parse(config.PromptTemplates.FramePrompt)
	if err != nil {
		panic(err) // Panic on failure, as the app cannot run without valid templates.
	}

	pipeline := &VideoAnalysisWorkflow{
		BaseCommand:   *cor.NewBaseCommand("video-analysis-pipeline"),
		config:        config,
		genaiModel:    serviceClients.AgentModels[agentModelName],
		storageClient: serviceClients.StorageClient,
		frameTemplate: framePrompt,
	}
	pipeline.initializeChain()
	return pipeline
}
