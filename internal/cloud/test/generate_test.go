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

// Package cloud_test contains unit tests for the cloud package. This file
// tests the model-call helper with a substituted generator, pinning down the
// single-attempt policy: one invocation per pipeline run, with failures
// surfacing immediately instead of being retried.
package cloud_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"google.golang.org/genai"
)

// fakeGenerator counts invocations so tests can observe how many model calls
// a single helper invocation produces.
type fakeGenerator struct {
	calls    int
	response *genai.GenerateContentResponse
	err      error
}

func (g *fakeGenerator) GenerateContent(_ context.Context, _ []*genai.Content) (*genai.GenerateContentResponse, error) {
	g.calls++
	return g.response, g.err
}

// TestGenerateFailureIsNotRetried verifies a failing model call is made
// exactly once and its error is returned unmodified.
func TestGenerateFailureIsNotRetried(t *testing.T) {
	generator := &fakeGenerator{err: errors.New("resource exhausted")}
	meter := otel.Meter("cloud-test")
	inputCounter, _ := meter.Int64Counter("test.token.input")
	outputCounter, _ := meter.Int64Counter("test.token.output")

	value, err := cloud.GenerateMultiModalResponse(
		context.Background(), inputCounter, outputCounter, generator, cloud.NewTextContent("prompt"))

	assert.Error(t, err)
	assert.Equal(t, "resource exhausted", err.Error())
	assert.Empty(t, value)
	assert.Equal(t, 1, generator.calls)
}

// TestGenerateFlattensResponse verifies a successful call is made exactly
// once and the candidate text is concatenated with markdown fences stripped.
func TestGenerateFlattensResponse(t *testing.T) {
	generator := &fakeGenerator{
		response: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "```json{\"hookScore\""}}}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: ": 72}```"}}}},
			},
		},
	}
	meter := otel.Meter("cloud-test")
	inputCounter, _ := meter.Int64Counter("test.token.input")
	outputCounter, _ := meter.Int64Counter("test.token.output")

	value, err := cloud.GenerateMultiModalResponse(
		context.Background(), inputCounter, outputCounter, generator, cloud.NewTextContent("prompt"))

	assert.NoError(t, err)
	assert.Equal(t, 1, generator.calls)
	assert.Equal(t, "{\"hookScore\": 72}", value)
}
