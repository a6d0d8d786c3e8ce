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

// Package model_test contains unit tests for the data models defined in the
// model package. This file tests the normalization that coerces untrusted
// model output into the fixed Judgment shape the report assembler expects.
package model_test

import (
	"fmt"
	"testing"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestNormalizeCapsFactorList verifies the viral factor list is truncated to
// the maximum the report carries, preserving the leading entries.
func TestNormalizeCapsFactorList(t *testing.T) {
	judgment := &model.Judgment{HookScore: 70}
	for i := 0; i < 12; i++ {
		judgment.ViralFactors = append(judgment.ViralFactors, &model.ViralFactor{
			Category:    "pacing",
			Description: fmt.Sprintf("factor %d", i),
			Intensity:   6,
		})
	}

	judgment.Normalize()

	assert.Len(t, judgment.ViralFactors, model.MaxViralFactors)
	assert.Equal(t, "factor 0", judgment.ViralFactors[0].Description)
	assert.Equal(t, "factor 7", judgment.ViralFactors[7].Description)
}

// TestNormalizeAppliesFactorDefaults verifies missing categories and
// out-of-range intensities are replaced with the documented defaults.
func TestNormalizeAppliesFactorDefaults(t *testing.T) {
	judgment := &model.Judgment{
		ViralFactors: []*model.ViralFactor{
			{Description: "no category", Intensity: 7},
			{Category: "pacing", Description: "too hot", Intensity: 99},
			{Category: "pacing", Description: "too cold", Intensity: 0},
		},
		HookScore: 50,
	}

	judgment.Normalize()

	assert.Equal(t, model.DefaultFactorCategory, judgment.ViralFactors[0].Category)
	assert.Equal(t, 7, judgment.ViralFactors[0].Intensity)
	assert.Equal(t, model.DefaultFactorIntensity, judgment.ViralFactors[1].Intensity)
	assert.Equal(t, model.DefaultFactorIntensity, judgment.ViralFactors[2].Intensity)
}

// TestNormalizeInjectsDefaultFactor verifies an empty factor list receives
// exactly one default entry so the report never renders empty.
func TestNormalizeInjectsDefaultFactor(t *testing.T) {
	judgment := &model.Judgment{HookScore: 40}

	judgment.Normalize()

	assert.Len(t, judgment.ViralFactors, 1)
	assert.Equal(t, model.DefaultFactorCategory, judgment.ViralFactors[0].Category)
	assert.Equal(t, model.DefaultFactorIntensity, judgment.ViralFactors[0].Intensity)
}

// TestNormalizeClampsHookScore verifies the hook score is clamped to [0, 100]
// and in-range values are untouched.
func TestNormalizeClampsHookScore(t *testing.T) {
	assert.Equal(t, 100, (&model.Judgment{HookScore: 150}).Normalize().HookScore)
	assert.Equal(t, 0, (&model.Judgment{HookScore: -5}).Normalize().HookScore)
	assert.Equal(t, 61, (&model.Judgment{HookScore: 61}).Normalize().HookScore)
}
