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

// Package model defines the core data structures for the application.
// This file defines the Judgment, the canonical intermediate result of a video
// analysis. A Judgment is produced either by the generative model (parsed from
// its JSON response) or by the deterministic fallback generator, and is the
// single input the report assembler expands into the full client-facing report.
package model

// Limits and defaults applied when coercing a raw model response into a
// well-formed Judgment. The JSON returned by the model is untrusted; every
// field gets a default so downstream code never sees missing keys.
const (
	MaxViralFactors        = 8
	DefaultFactorCategory  = "visual element"
	DefaultFactorIntensity = 5
)

// ViralFactor is a single engagement driver the model (or fallback) identified
// in the video, with an intensity on a 1-10 scale.
type ViralFactor struct {
	Category    string `json:"category"`    // The factor family (e.g., "camera motion", "visual element").
	Description string `json:"description"` // A one-line description of what was observed.
	Intensity   int    `json:"intensity"`   // The strength of the factor, 1-10.
}

// Judgment is the structured opinion about a video's engagement qualities.
// The JSON field names form the wire contract with the model prompt: the
// prompt instructs the model to return exactly this key set.
type Judgment struct {
	ViralFactors       []*ViralFactor `json:"viralFactors"`       // Ordered, prioritized engagement drivers.
	NarrativeStructure string         `json:"narrativeStructure"` // Short description of the video's narrative arc.
	HookScore          int            `json:"hookScore"`          // Overall hook strength, 0-100.
	CoreStrengths      []string       `json:"coreStrengths"`      // What the video does well.
	ReusablePoints     []string       `json:"reusablePoints"`     // Techniques worth reusing in other videos.
	VisualHook         string         `json:"visualHook"`         // Description of the opening visual hook.
	EditingPacing      string         `json:"editingPacing"`      // Observed cutting rhythm.
	ColorPalette       string         `json:"colorPalette"`       // Dominant color treatment.
	AudienceSentiment  string         `json:"audienceSentiment"`  // Expected audience emotional response.
	KeyTriggers        []string       `json:"keyTriggers"`        // Emotional or behavioral triggers present.
}

// Normalize coerces a freshly parsed Judgment into the fixed shape the report
// assembler depends on: the factor list is capped at MaxViralFactors, each
// factor gets defaults for missing category and out-of-range intensity, and an
// empty factor list receives exactly one default entry. Returns the receiver
// for chaining.
func (j *Judgment) Normalize() *Judgment {
	if len(j.ViralFactors) > MaxViralFactors {
		j.ViralFactors = j.ViralFactors[:MaxViralFactors]
	}
	for _, f := range j.ViralFactors {
		if f.Category == "" {
			f.Category = DefaultFactorCategory
		}
		if f.Intensity < 1 || f.Intensity > 10 {
			f.Intensity = DefaultFactorIntensity
		}
	}
	if len(j.ViralFactors) == 0 {
		j.ViralFactors = []*ViralFactor{{
			Category:    DefaultFactorCategory,
			Description: "overall content presentation",
			Intensity:   DefaultFactorIntensity,
		}}
	}
	if j.HookScore < 0 {
		j.HookScore = 0
	}
	if j.HookScore > 100 {
		j.HookScore = 100
	}
	return j
}
