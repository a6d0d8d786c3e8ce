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
// Responsibility (COR) pattern's Command interface. This file defines the two
// prompt-building commands that turn the video's timeline into a single
// natural-language instruction for the generative model.
//
// Logic Flow:
// Both builders render a Go template from the configuration file, populated
// with a description of the input (frame timestamps or segment feature
// blocks) and a few-shot JSON example of the expected response. The template
// carries the identical instruction tail in both modes: return strictly the
// fixed JSON schema, 5-8 prioritized viral factors, scores in range. That
// exact-schema contract is what the judgment extractor depends on.
//
//   - FramePromptBuilder (synchronous path): lists each sampled frame's
//     timestamp; the frame images themselves travel alongside the prompt as
//     inline image parts, attached later by the judgment extractor.
//   - SegmentPromptBuilder (asynchronous path): renders a block for each of
//     the first 10 segments with its time range, duration, and one flattened
//     "category: type - value" line per feature, headed by the video's total
//     duration.
//
// Both are pure functions of their input; no side effects.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// MaxPromptSegments bounds how many segments are rendered into the prompt so
// long videos do not blow up the token budget.
const MaxPromptSegments = 10

// FramePromptBuilder is a command that renders the frame-image analysis
// prompt from the sampled frame timeline.
type FramePromptBuilder struct {
	cor.BaseCommand
	template *template.Template // The Go template for building the prompt.
}

// NewFramePromptBuilder is the constructor for the FramePromptBuilder command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - template: A parsed Go template for the prompt.
//
// Outputs:
//   - *FramePromptBuilder: A pointer to the newly instantiated command.
func NewFramePromptBuilder(name string, template *template.Template) *FramePromptBuilder {
	return &FramePromptBuilder{BaseCommand: *cor.NewBaseCommand(name), template: template}
}

// Execute renders the prompt from the frame list and places it in the context
// as the input for the judgment extractor.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *FramePromptBuilder) Execute(context cor.Context) {
	frames := context.Get(t.GetInputParam()).([]*model.Frame)

	// One line per frame so the model can correlate the attached images with
	// their position on the timeline.
	var frameLines strings.Builder
	for i, frame := range frames {
		frameLines.WriteString(fmt.Sprintf("Frame %d at %.1f seconds\n", i+1, float64(frame.TimestampMs)/1000.0))
	}

	params := promptParams()
	params["FRAME_COUNT"] = len(frames)
	params["FRAME_LINES"] = frameLines.String()
	params["DURATION"] = estimatedDurationSeconds(frames)

	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, params); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute frame prompt template: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), buffer.String())
}

// SegmentPromptBuilder is a command that renders the segment-feature analysis
// prompt from a job's stored segment timeline.
type SegmentPromptBuilder struct {
	cor.BaseCommand
	template *template.Template // The Go template for building the prompt.
}

// NewSegmentPromptBuilder is the constructor for the SegmentPromptBuilder command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - template: A parsed Go template for the prompt.
//
// Outputs:
//   - *SegmentPromptBuilder: A pointer to the newly instantiated command.
func NewSegmentPromptBuilder(name string, template *template.Template) *SegmentPromptBuilder {
	return &SegmentPromptBuilder{BaseCommand: *cor.NewBaseCommand(name), template: template}
}

// Execute renders the prompt from the segment list and places it in the
// context as the input for the judgment extractor.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *SegmentPromptBuilder) Execute(context cor.Context) {
	segments := context.Get(t.GetInputParam()).([]*model.Segment)

	params := promptParams()
	params["SEGMENT_BLOCKS"] = RenderSegmentBlocks(segments)
	params["DURATION"] = totalDurationSeconds(segments)

	var buffer bytes.Buffer
	if err := t.template.Execute(&buffer, params); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute segment prompt template: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), buffer.String())
}

// RenderSegmentBlocks flattens up to MaxPromptSegments segments into the text
// blocks embedded in the prompt. Each block lists the segment's time range,
// duration, and one "category: type - value" line per feature.
//
// Inputs:
//   - segments: The ordered segment list from the job record.
//
// Outputs:
//   - string: The concatenated blocks, in input order.
func RenderSegmentBlocks(segments []*model.Segment) string {
	var blocks strings.Builder
	for i, segment := range segments {
		if i >= MaxPromptSegments {
			break
		}
		blocks.WriteString(fmt.Sprintf("Segment %d: %.1fs - %.1fs (duration %.1fs)\n",
			i+1,
			float64(segment.StartMs)/1000.0,
			float64(segment.EndMs)/1000.0,
			float64(segment.DurationMs)/1000.0))
		for _, feature := range segment.Features {
			blocks.WriteString(fmt.Sprintf("  %s: %s - %s\n", feature.Category, feature.Type, feature.Value))
		}
	}
	return blocks.String()
}

// promptParams seeds the template parameter map with the shared few-shot
// example so both prompt modes request the identical JSON schema.
func promptParams() map[string]interface{} {
	params := make(map[string]interface{})
	exampleJudgment, _ := json.Marshal(model.GetExampleJudgment())
	params["EXAMPLE_JSON"] = string(exampleJudgment)
	return params
}

// estimatedDurationSeconds mirrors the synchronous report duration estimate:
// last frame timestamp plus a 2 second buffer, or a fixed default when no
// frames exist.
func estimatedDurationSeconds(frames []*model.Frame) int {
	if len(frames) == 0 {
		return DefaultDurationSeconds
	}
	return int(frames[len(frames)-1].TimestampMs/1000) + DurationBufferSeconds
}

// totalDurationSeconds is the asynchronous duration: the end of the last
// segment, zero when the job has no segments.
func totalDurationSeconds(segments []*model.Segment) int {
	if len(segments) == 0 {
		return 0
	}
	return int(segments[len(segments)-1].EndMs / 1000)
}
