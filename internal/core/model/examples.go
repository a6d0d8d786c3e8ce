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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are crucial for "few-shot" prompting with the
// generative AI models. By providing a concrete example of the desired JSON
// output structure within the prompt itself, we guide the AI to return data
// that is consistent, correctly formatted, and easily parsable.
package model

// GetExampleJudgment creates a sample Judgment object. This is embedded in the
// analysis prompt as a "few-shot" learning example so the generative AI model
// returns JSON matching the exact key set and value ranges the extractor
// expects, including the nested viral factor array.
//
// Outputs:
//   - *Judgment: A pointer to a hardcoded Judgment object.
func GetExampleJudgment() *Judgment {
	return &Judgment{
		ViralFactors: []*ViralFactor{
			{Category: "visual impact", Description: "Rapid product reveal in the first two seconds grabs attention", Intensity: 9},
			{Category: "camera motion", Description: "Handheld whip pans keep energy high between cuts", Intensity: 7},
			{Category: "color grading", Description: "High-saturation teal and orange palette pops on mobile feeds", Intensity: 6},
			{Category: "pacing", Description: "Cuts land on the beat roughly every 1.5 seconds", Intensity: 8},
			{Category: "emotional trigger", Description: "Surprise ending invites rewatching and sharing", Intensity: 7},
		},
		NarrativeStructure: "Hook, escalation, payoff with a twist in the final beat",
		HookScore:          84,
		CoreStrengths: []string{
			"Immediate visual hook before any branding",
			"Consistent rhythm between cuts and music",
			"Clear single message per shot",
		},
		ReusablePoints: []string{
			"Open on the most striking frame of the video",
			"Match cut frequency to the soundtrack tempo",
			"Save one surprise for the last second",
		},
		VisualHook:        "Macro close-up with fast pull-back reveal",
		EditingPacing:     "Fast, beat-synchronized cutting",
		ColorPalette:      "Saturated teal and orange with deep shadows",
		AudienceSentiment: "Energized and curious",
		KeyTriggers:       []string{"surprise", "anticipation", "visual novelty"},
	}
}
