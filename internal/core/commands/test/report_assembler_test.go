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
// This file tests the deterministic expansion of a judgment into the full
// report: radar axes, star rating, rhythm timeline, and detail blocks.
package commands_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	test "github.com/jaycherian/gcp-go-viral-insights/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func judgmentWithHook(hookScore int) *model.Judgment {
	return &model.Judgment{
		ViralFactors: []*model.ViralFactor{
			{Category: "visual element", Description: "strong opener", Intensity: 7},
		},
		HookScore: hookScore,
	}
}

var identity = &commands.ReportIdentity{Id: "analysis_1", Title: "clip", CoverUrl: "gs://covers/clip.jpg"}

// TestRadarOffsets verifies the six fixed axes and their offsets from the
// hook score.
func TestRadarOffsets(t *testing.T) {
	report := commands.AssembleFromFrames(judgmentWithHook(90), test.GetTestFrames(), identity)

	assert.Len(t, report.RadarData, 6)
	expected := map[string]int{
		"hook intensity":       90,
		"emotional tension":    80,
		"visual impact":        95,
		"narrative logic":      85,
		"conversion potential": 90,
		"innovation index":     75,
	}
	for _, item := range report.RadarData {
		assert.Equal(t, expected[item.Subject], item.Score, item.Subject)
	}
}

// TestRadarClamping verifies offset scores never leave [0, 100].
func TestRadarClamping(t *testing.T) {
	low := commands.AssembleFromFrames(judgmentWithHook(5), test.GetTestFrames(), identity)
	for _, item := range low.RadarData {
		assert.GreaterOrEqual(t, item.Score, 0, item.Subject)
	}

	high := commands.AssembleFromFrames(judgmentWithHook(100), test.GetTestFrames(), identity)
	for _, item := range high.RadarData {
		assert.LessOrEqual(t, item.Score, 100, item.Subject)
	}
}

// TestStarRating verifies the integer-division star mapping with its 1-5
// clamp.
func TestStarRating(t *testing.T) {
	cases := []struct {
		hookScore int
		stars     int
	}{
		{0, 1},
		{19, 1},
		{20, 1},
		{59, 2},
		{60, 3},
		{84, 4},
		{100, 5},
	}
	for _, tc := range cases {
		report := commands.AssembleFromFrames(judgmentWithHook(tc.hookScore), nil, identity)
		assert.Equal(t, tc.stars, report.EvaluationReport.StarRating, "hook score %d", tc.hookScore)
	}
}

// TestRhythmFromFrames verifies the synchronous rhythm timeline for a
// five-frame sample: fixed opening/climax/ending intensities with the
// repeating pattern in between, and the buffered duration estimate.
func TestRhythmFromFrames(t *testing.T) {
	report := commands.AssembleFromFrames(judgmentWithHook(80), test.GetTestFrames(), identity)

	assert.Equal(t, 10, report.Duration)
	assert.Len(t, report.RhythmData, 5)

	times := []int{0, 2, 4, 6, 8}
	intensities := []int{80, 70, 90, 60, 85}
	labels := []string{"opening", "", "climax", "", "ending"}
	for i, point := range report.RhythmData {
		assert.Equal(t, times[i], point.Time, "point %d time", i)
		assert.Equal(t, intensities[i], point.Intensity, "point %d intensity", i)
		assert.Equal(t, labels[i], point.Label, "point %d label", i)
	}
}

// TestRhythmDefaultTimeline verifies an empty timeline still renders the
// fixed three-point rhythm chart and the default duration.
func TestRhythmDefaultTimeline(t *testing.T) {
	report := commands.AssembleFromFrames(judgmentWithHook(80), nil, identity)

	assert.Equal(t, commands.DefaultDurationSeconds, report.Duration)
	assert.Len(t, report.RhythmData, 3)
	assert.Equal(t, "opening", report.RhythmData[0].Label)
	assert.Equal(t, 80, report.RhythmData[0].Intensity)
	assert.Equal(t, 65, report.RhythmData[1].Intensity)
	assert.Equal(t, "ending", report.RhythmData[2].Label)
	assert.Equal(t, 85, report.RhythmData[2].Intensity)
}

// TestAssembleFromSegments verifies the asynchronous duration and the
// feature/confidence driven rhythm intensities.
func TestAssembleFromSegments(t *testing.T) {
	report := commands.AssembleFromSegments(judgmentWithHook(75), test.GetTestSegments(), identity)

	// Last segment ends at 15000ms.
	assert.Equal(t, 15, report.Duration)
	assert.Len(t, report.RhythmData, 3)

	// Each segment: features*15 + summed confidence*20.
	assert.Equal(t, 64, report.RhythmData[0].Intensity)
	assert.Equal(t, "opening", report.RhythmData[0].Label)
	assert.Equal(t, 63, report.RhythmData[1].Intensity)
	assert.Equal(t, "", report.RhythmData[1].Label)
	assert.Equal(t, 58, report.RhythmData[2].Intensity)
	assert.Equal(t, "ending", report.RhythmData[2].Label)

	assert.Equal(t, 0, report.RhythmData[0].Time)
	assert.Equal(t, 4, report.RhythmData[1].Time)
	assert.Equal(t, 9, report.RhythmData[2].Time)
}

// TestFactorNormalization verifies the factor cap and per-factor defaults
// applied during assembly.
func TestFactorNormalization(t *testing.T) {
	judgment := &model.Judgment{HookScore: 80}
	for i := 0; i < 10; i++ {
		judgment.ViralFactors = append(judgment.ViralFactors, &model.ViralFactor{Description: "factor"})
	}

	report := commands.AssembleFromFrames(judgment, test.GetTestFrames(), identity)

	assert.Len(t, report.ViralFactors, model.MaxViralFactors)
	for _, factor := range report.ViralFactors {
		assert.Equal(t, model.DefaultFactorCategory, factor.Category)
		assert.Equal(t, model.DefaultFactorIntensity, factor.Intensity)
	}
}

// TestDetailBlockDefaults verifies a sparse judgment still produces fully
// populated detail blocks, with the fixed placeholders for the modalities
// the pipeline does not analyze.
func TestDetailBlockDefaults(t *testing.T) {
	report := commands.AssembleFromFrames(&model.Judgment{HookScore: 40}, test.GetTestFrames(), identity)

	assert.Equal(t, "analysis_1", report.Id)
	assert.Equal(t, "clip", report.Title)
	assert.Equal(t, "Single-arc narrative", report.NarrativeStructure)
	assert.Equal(t, "Strong visual opening", report.HookDetails.Visual)
	assert.Contains(t, report.HookDetails.Audio, "under development")
	assert.Contains(t, report.HookDetails.Text, "under development")
	assert.Equal(t, "Direct cuts", report.EditingStyle.TransitionType)
	assert.Equal(t, []string{"Engaging content"}, report.EvaluationReport.CoreStrengths)
	assert.Equal(t, []string{"curiosity"}, report.AudienceResponse.KeyTriggers)
}

// TestListCapping verifies evaluation lists are capped at three entries.
func TestListCapping(t *testing.T) {
	judgment := judgmentWithHook(70)
	judgment.CoreStrengths = []string{"a", "b", "c", "d", "e"}
	judgment.ReusablePoints = []string{"p", "q", "r", "s"}
	judgment.KeyTriggers = []string{"x", "y", "z", "w"}

	report := commands.AssembleFromFrames(judgment, test.GetTestFrames(), identity)

	assert.Equal(t, []string{"a", "b", "c"}, report.EvaluationReport.CoreStrengths)
	assert.Equal(t, []string{"p", "q", "r"}, report.EvaluationReport.ReusablePoints)
	assert.Equal(t, []string{"x", "y", "z"}, report.AudienceResponse.KeyTriggers)
}
