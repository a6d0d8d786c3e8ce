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

// Package test provides utility functions and mock data to support the application's
// test suite. It helps in setting up a consistent test environment, loading
// test-specific configurations, and providing sample data for workflows and services.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// StateManager acts as a simple in-memory cache for the application configuration
// during test runs. This prevents the need to reload configuration files for every
// test, speeding up the test suite.
type StateManager struct {
	config *cloud.Config
}

// state is a package-level variable that holds the singleton instance of StateManager,
// ensuring that the configuration is loaded only once per test run.
var state = &StateManager{}

// HandleErr is a simple test helper function that checks if an error is not nil.
// If an error exists, it fails the test immediately by calling t.Errorf.
// This is a convenience function to reduce boilerplate error-checking code in tests.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestFrames returns a five-frame timeline sampled at two-second
// intervals, matching what the frame extractor produces for a short clip.
func GetTestFrames() []*model.Frame {
	return []*model.Frame{
		{TimestampMs: 0, ImagePath: "frame_0001.jpg"},
		{TimestampMs: 2000, ImagePath: "frame_0002.jpg"},
		{TimestampMs: 4000, ImagePath: "frame_0003.jpg"},
		{TimestampMs: 6000, ImagePath: "frame_0004.jpg"},
		{TimestampMs: 8000, ImagePath: "frame_0005.jpg"},
	}
}

// GetTestSegments returns a three-segment timeline with the visual feature
// families the fallback judgment counts.
func GetTestSegments() []*model.Segment {
	return []*model.Segment{
		{
			StartMs: 0, EndMs: 4000, DurationMs: 4000,
			Features: []*model.SegmentFeature{
				{Category: "camera_motion", Type: "pan", Value: "slow pan right", Confidence: 0.92},
				{Category: "lighting", Type: "key", Value: "high key", Confidence: 0.81},
			},
		},
		{
			StartMs: 4000, EndMs: 9000, DurationMs: 5000,
			Features: []*model.SegmentFeature{
				{Category: "camera_motion", Type: "zoom", Value: "punch in", Confidence: 0.88},
				{Category: "color_grading", Type: "palette", Value: "teal and orange", Confidence: 0.77},
			},
		},
		{
			StartMs: 9000, EndMs: 15000, DurationMs: 6000,
			Features: []*model.SegmentFeature{
				{Category: "camera_motion", Type: "handheld", Value: "handheld shake", Confidence: 0.69},
				{Category: "lighting", Type: "practical", Value: "neon practicals", Confidence: 0.73},
			},
		},
	}
}

// GetTestJobMessageText returns a hardcoded JSON string that simulates the
// Pub/Sub trigger published when an analysis job is submitted. This mock data
// is used to test the background job workflow trigger.
//
// Returns:
//   - A string containing the JSON payload of a job trigger message.
func GetTestJobMessageText() string {
	return `{ "job_id": "f2c9a7d4-6f2e-4f1a-9d3b-8f5f0b1c2d3e" }`
}

// SetupOS configures the necessary environment variables that the configuration
// loader (`cloud.LoadConfig`) depends on. By setting these variables, we can
// direct the loader to use the test-specific configuration files (e.g.,
// `configs/.env.test.toml`) instead of production or development ones.
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	// Set the directory where the configuration files are located.
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// Set the runtime environment identifier to "test". This causes the loader
	// to look for a file named ".env.test.toml" for overrides.
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration.
// It ensures that the configuration is loaded from TOML files only once and
// is cached in the package-level `state` variable for subsequent calls.
// This is the primary way tests should retrieve their configuration.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	// Check if the config is already cached.
	if state.config == nil {
		// If not cached, set up the OS environment for the test configuration.
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		// Create a new, empty config struct.
		config := cloud.NewConfig()
		// Load the configuration from the TOML files into the struct.
		// `LoadConfig` handles the hierarchical loading (base file + test override).
		cloud.LoadConfig(&config)
		// Cache the loaded config in our state manager.
		state.config = config
	}
	// Return the cached configuration.
	return state.config
}
