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
// deterministic fallback judgment generator.
//
// Logic Flow:
// The `FallbackJudgment` command runs right after the judgment extractor. If
// the extractor produced a judgment it passes through untouched. Otherwise a
// substitute judgment is computed purely from the timeline the pipeline
// already holds, so a model outage degrades gracefully instead of failing the
// request. Both variants are pure, deterministic, and total: identical input
// always yields an identical judgment, and every Judgment field is filled so
// the report assembler never sees missing keys.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// Feature categories the segment fallback counts, and its tuning constants.
const (
	fallbackFactorThreshold = 2  // A category must appear more than this many times to become a factor.
	fallbackMinFactors      = 3  // Below this count a generic presentation factor is appended.
	fallbackFrameHookScore  = 72 // Fixed hook score for the frame-only fallback.
)

var fallbackCategories = []string{"camera_motion", "lighting", "color_grading"}

// FallbackJudgment is a command that guarantees a judgment is present on the
// context by the time the report assembler runs.
type FallbackJudgment struct {
	cor.BaseCommand
}

// NewFallbackJudgment is the constructor for the FallbackJudgment command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *FallbackJudgment: A pointer to the newly instantiated command.
func NewFallbackJudgment(name string) *FallbackJudgment {
	return &FallbackJudgment{BaseCommand: *cor.NewBaseCommand(name)}
}

// IsExecutable runs whenever a timeline is available, regardless of whether
// the extractor succeeded; the default input check would skip this command
// exactly when it is needed most.
func (c *FallbackJudgment) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil &&
		(context.Get(FramesParamName) != nil || context.Get(SegmentsParamName) != nil)
}

// Execute passes an existing judgment through, or computes the deterministic
// substitute from whichever timeline the context carries.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *FallbackJudgment) Execute(context cor.Context) {
	if existing := context.Get(JudgmentParamName); existing != nil {
		context.Add(c.GetOutputParam(), existing)
		return
	}

	var judgment *model.Judgment
	if raw := context.Get(SegmentsParamName); raw != nil {
		judgment = FallbackFromSegments(raw.([]*model.Segment))
	} else {
		judgment = FallbackFromFrames(context.Get(FramesParamName).([]*model.Frame))
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("substituted fallback judgment", "command", c.GetName(), "hook_score", judgment.HookScore)
	context.Add(JudgmentParamName, judgment)
	context.Add(c.GetOutputParam(), judgment)
}

// FallbackFromFrames produces the substitute judgment for the synchronous
// path, where only sampled frames are available. The factors are generic but
// reference the measured duration and frame count; the hook score is fixed.
//
// Inputs:
//   - frames: The ordered sampled frames, possibly empty.
//
// Outputs:
//   - *model.Judgment: A complete judgment with every field populated.
func FallbackFromFrames(frames []*model.Frame) *model.Judgment {
	duration := estimatedDurationSeconds(frames)
	return &model.Judgment{
		ViralFactors: []*model.ViralFactor{
			{
				Category:    "pacing",
				Description: fmt.Sprintf("Consistent pacing across roughly %d seconds of footage", duration),
				Intensity:   6,
			},
			{
				Category:    "scene structure",
				Description: fmt.Sprintf("%d sampled scenes show a clear visual progression", len(frames)),
				Intensity:   5,
			},
			{
				Category:    model.DefaultFactorCategory,
				Description: "Clean composition holds attention through the video",
				Intensity:   5,
			},
		},
		NarrativeStructure: "Linear progression from opening to close",
		HookScore:          fallbackFrameHookScore,
		CoreStrengths: []string{
			"Steady visual rhythm",
			"Coherent scene-to-scene flow",
			"Accessible subject framing",
		},
		ReusablePoints: []string{
			"Keep the opening shot simple and legible",
			"Maintain an even cutting rhythm",
			"Close on a memorable final frame",
		},
		VisualHook:        "Direct opening shot establishing the subject",
		EditingPacing:     "Even, unhurried cutting",
		ColorPalette:      "Natural tones",
		AudienceSentiment: "Neutral to positive",
		KeyTriggers:       []string{"curiosity"},
	}
}

// FallbackFromSegments produces the substitute judgment for the asynchronous
// path from detected segment features. Categories that repeat across the
// timeline become factors; the hook score grows with the factor count within
// a fixed band.
//
// Inputs:
//   - segments: The job's segment list, possibly empty.
//
// Outputs:
//   - *model.Judgment: A complete judgment with every field populated.
func FallbackFromSegments(segments []*model.Segment) *model.Judgment {
	counts := make(map[string]int)
	for _, segment := range segments {
		for _, feature := range segment.Features {
			counts[feature.Category]++
		}
	}

	factors := make([]*model.ViralFactor, 0, fallbackMinFactors)
	for _, category := range fallbackCategories {
		count := counts[category]
		if count > fallbackFactorThreshold {
			intensity := count
			if intensity > 10 {
				intensity = 10
			}
			factors = append(factors, &model.ViralFactor{
				Category:    category,
				Description: fmt.Sprintf("Recurring %s observed across %d segments", category, count),
				Intensity:   intensity,
			})
		}
	}
	if len(factors) < fallbackMinFactors {
		factors = append(factors, &model.ViralFactor{
			Category:    "content presentation",
			Description: "Overall presentation quality carries the video",
			Intensity:   model.DefaultFactorIntensity,
		})
	}

	hookScore := len(factors) * 15
	if hookScore < 50 {
		hookScore = 50
	}
	if hookScore > 100 {
		hookScore = 100
	}

	return &model.Judgment{
		ViralFactors:       factors,
		NarrativeStructure: "Segment-driven progression with feature-led emphasis",
		HookScore:          hookScore,
		CoreStrengths: []string{
			"Detectable visual variety across segments",
			"Feature-rich composition",
			"Stable production quality",
		},
		ReusablePoints: []string{
			"Lead with the most feature-dense segment",
			"Vary camera treatment between segments",
			"Keep segment lengths short and regular",
		},
		VisualHook:        "Feature-forward opening segment",
		EditingPacing:     "Segment-based rhythm",
		ColorPalette:      "Consistent grade across segments",
		AudienceSentiment: "Engaged",
		KeyTriggers:       []string{"visual novelty"},
	}
}
