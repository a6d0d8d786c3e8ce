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

// Package workflow_test contains integration tests for the core application workflows.
// This file tests the segment judgment pipeline end to end: prompt rendering,
// the Gemini call, and the deterministic fallback that guarantees a judgment
// even when the model response is unusable.
package workflow_test

import (
	"fmt"
	"log"
	"testing"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-viral-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/codes"
)

// TestJobJudgmentChain runs the full segment judgment workflow over the test
// segment timeline. The fallback step guarantees a judgment whenever the
// timeline is present, so the chain must finish without errors and leave a
// normalized judgment on the context regardless of what the model returned.
//
// Inputs:
//   - t: A pointer to the testing.T object, provided by the Go testing framework,
//     used for logging, error reporting, and assertions.
func TestJobJudgmentChain(t *testing.T) {
	// Start a new OpenTelemetry trace span so this test run shows up in
	// Cloud Trace alongside production pipeline executions.
	traceCtx, span := tracer.Start(ctx, "job-judgment-test")
	defer span.End()

	// Initialize the workflow under test with the shared config and cloud
	// clients, using the "judgment" agent model configuration.
	judgmentPipeline := workflow.NewJobJudgmentPipeline(config, cloudClients, "judgment")

	// Create a new chain of responsibility (cor) context to manage state
	// throughout the workflow execution.
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(traceCtx)
	defer chainCtx.Close()

	// The segment timeline rides on the context twice: as the chain input for
	// the prompt builder and under its well-known key for the fallback step.
	segments := test.GetTestSegments()
	chainCtx.Add(commands.SegmentsParamName, segments)
	chainCtx.Add(cor.CtxIn, segments)

	// Execute the entire segment judgment workflow.
	judgmentPipeline.Execute(chainCtx)

	// Print any recorded command errors for debugging.
	for k, err := range chainCtx.GetErrors() {
		fmt.Printf("Error: (%s): %v\n", k, err)
	}

	if chainCtx.HasErrors() {
		span.SetStatus(codes.Error, "failed to execute job judgment test")
	}

	// The chain must finish clean and leave a usable judgment behind.
	assert.False(t, chainCtx.HasErrors())
	judgment, ok := chainCtx.Get(commands.JudgmentParamName).(*model.Judgment)
	assert.True(t, ok)
	assert.NotNil(t, judgment)
	assert.NotEmpty(t, judgment.ViralFactors)
	assert.GreaterOrEqual(t, judgment.HookScore, 0)
	assert.LessOrEqual(t, judgment.HookScore, 100)

	span.SetStatus(codes.Ok, "passed - job judgment test")

	// Log the judgment for manual inspection of the model output.
	log.Println(chainCtx.Get(commands.JudgmentParamName))
}
