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

// Package commands_test contains the test suite for the commands package.
// This file tests the prompt builders that flatten a timeline into the text
// instruction sent to the model.
package commands_test

import (
	"context"
	"testing"
	"text/template"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	test "github.com/jaycherian/gcp-go-viral-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// TestRenderSegmentBlocks verifies the per-segment block format: time range,
// duration, and one flattened line per feature.
func TestRenderSegmentBlocks(t *testing.T) {
	blocks := commands.RenderSegmentBlocks(test.GetTestSegments())

	assert.Contains(t, blocks, "Segment 1: 0.0s - 4.0s (duration 4.0s)")
	assert.Contains(t, blocks, "  camera_motion: pan - slow pan right")
	assert.Contains(t, blocks, "Segment 2: 4.0s - 9.0s (duration 5.0s)")
	assert.Contains(t, blocks, "  color_grading: palette - teal and orange")
	assert.Contains(t, blocks, "Segment 3: 9.0s - 15.0s (duration 6.0s)")
}

// TestRenderSegmentBlocksCap verifies long timelines are truncated so the
// prompt stays within a predictable token budget.
func TestRenderSegmentBlocksCap(t *testing.T) {
	segments := make([]*model.Segment, 0, 12)
	for i := 0; i < 12; i++ {
		start := int64(i) * 1000
		segments = append(segments, &model.Segment{StartMs: start, EndMs: start + 1000, DurationMs: 1000})
	}

	blocks := commands.RenderSegmentBlocks(segments)

	assert.Contains(t, blocks, "Segment 10:")
	assert.NotContains(t, blocks, "Segment 11:")
}

// TestFramePromptBuilder verifies the rendered frame prompt carries the frame
// count, the per-frame timing lines, the buffered duration, and the few-shot
// example document.
func TestFramePromptBuilder(t *testing.T) {
	tmpl := template.Must(template.New("frame-prompt").Parse(
		"count={{.FRAME_COUNT}} duration={{.DURATION}}\n{{.FRAME_LINES}}example={{.EXAMPLE_JSON}}"))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, test.GetTestFrames())

	builder := commands.NewFramePromptBuilder("build-frame-prompt", tmpl)
	builder.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	prompt := chainCtx.Get(cor.CtxOut).(string)
	assert.Contains(t, prompt, "count=5 duration=10")
	assert.Contains(t, prompt, "Frame 1 at 0.0 seconds")
	assert.Contains(t, prompt, "Frame 5 at 8.0 seconds")
	assert.Contains(t, prompt, `"viralFactors"`)
}

// TestSegmentPromptBuilder verifies the rendered segment prompt carries the
// total duration, the segment blocks, and the example document.
func TestSegmentPromptBuilder(t *testing.T) {
	tmpl := template.Must(template.New("segment-prompt").Parse(
		"duration={{.DURATION}}\n{{.SEGMENT_BLOCKS}}example={{.EXAMPLE_JSON}}"))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, test.GetTestSegments())

	builder := commands.NewSegmentPromptBuilder("build-segment-prompt", tmpl)
	builder.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	prompt := chainCtx.Get(cor.CtxOut).(string)
	assert.Contains(t, prompt, "duration=15")
	assert.Contains(t, prompt, "Segment 1: 0.0s - 4.0s")
	assert.Contains(t, prompt, `"hookScore"`)
}
