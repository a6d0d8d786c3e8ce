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
// This file defines the Report, the fully expanded analysis structure returned
// to clients. A Report is a pure function of a Judgment plus the frame or
// segment timeline, so re-deriving it for the same inputs always yields the
// same result.
package model

// RhythmPoint is one entry in the report's pacing timeline. There is exactly
// one point per input frame or segment, in input order.
type RhythmPoint struct {
	Time      int    `json:"time"`            // Offset into the video in whole seconds.
	Intensity int    `json:"intensity"`       // Pacing intensity, 0-100.
	Label     string `json:"label,omitempty"` // Optional marker: "opening", "climax", or "ending".
}

// RadarItem is one axis of the six-axis engagement radar chart.
type RadarItem struct {
	Subject string `json:"subject"` // The axis name (e.g., "hook intensity").
	Score   int    `json:"score"`   // The axis value, clamped to 0-100.
}

// EvaluationReport is the summary block of the report: an overall star rating
// plus the top strengths and reusable techniques.
type EvaluationReport struct {
	StarRating     int      `json:"starRating"`     // Overall rating, 1-5 stars.
	CoreStrengths  []string `json:"coreStrengths"`  // Up to three strengths taken from the Judgment.
	ReusablePoints []string `json:"reusablePoints"` // Up to three reusable techniques.
}

// HookDetails describes the video's opening hook across modalities. Audio and
// text analysis are not performed; those fields carry fixed placeholder text.
type HookDetails struct {
	Visual string `json:"visual"`
	Audio  string `json:"audio"`
	Text   string `json:"text"`
}

// EditingStyle describes the observed editing characteristics.
type EditingStyle struct {
	Pacing         string `json:"pacing"`
	TransitionType string `json:"transitionType"`
	ColorPalette   string `json:"colorPalette"`
}

// AudienceResponse describes the expected audience reaction.
type AudienceResponse struct {
	Sentiment   string   `json:"sentiment"`
	KeyTriggers []string `json:"keyTriggers"`
}

// Report is the complete client-facing analysis structure.
type Report struct {
	Id                 string            `json:"id"`                 // The analysis or job identifier.
	Title              string            `json:"title"`              // Display title derived from the source.
	CoverUrl           string            `json:"coverUrl"`           // Reference to a cover/thumbnail image.
	Duration           int               `json:"duration"`           // Estimated video duration in seconds.
	ViralFactors       []*ViralFactor    `json:"viralFactors"`       // At most MaxViralFactors entries, never empty.
	RhythmData         []*RhythmPoint    `json:"rhythmData"`         // One point per timeline entry.
	RadarData          []*RadarItem      `json:"radarData"`          // The six fixed radar axes.
	NarrativeStructure string            `json:"narrativeStructure"` // Carried from the Judgment.
	HookScore          int               `json:"hookScore"`          // Carried from the Judgment.
	EvaluationReport   *EvaluationReport `json:"evaluationReport"`
	HookDetails        *HookDetails      `json:"hookDetails"`
	EditingStyle       *EditingStyle     `json:"editingStyle"`
	AudienceResponse   *AudienceResponse `json:"audienceResponse"`
}
