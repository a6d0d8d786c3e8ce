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
// This file tests the frame extractor with a substituted process runner, so
// no ffmpeg binary is required.
package commands_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// fakeFrameWriter simulates a successful ffmpeg run by writing numbered jpg
// files into the output directory embedded in the final argument.
func fakeFrameWriter(frameCount int) commands.CommandRunner {
	return func(name string, args ...string) error {
		frameDir := filepath.Dir(args[len(args)-1])
		for i := 1; i <= frameCount; i++ {
			path := filepath.Join(frameDir, fmt.Sprintf(commands.FrameFilePattern, i))
			if err := os.WriteFile(path, []byte{0xFF, 0xD8}, 0o644); err != nil {
				return err
			}
		}
		return nil
	}
}

// TestFrameExtractor verifies that produced frame files become an ordered,
// timestamped timeline tracked for cleanup.
func TestFrameExtractor(t *testing.T) {
	extractor := commands.NewFrameExtractor("extract-frames", "/usr/bin/ffmpeg", 2, 5)
	extractor.SetRunner(fakeFrameWriter(3))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, "/tmp/sample.mp4")
	defer chainCtx.Close()

	extractor.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	frames := chainCtx.Get(commands.FramesParamName).([]*model.Frame)
	assert.Len(t, frames, 3)
	for i, frame := range frames {
		assert.Equal(t, int64(i)*2000, frame.TimestampMs)
		assert.FileExists(t, frame.ImagePath)
	}
	assert.Len(t, chainCtx.GetTempFiles(), 3)
}

// TestFrameExtractorCapsFrameCount verifies a run that produces more files
// than the configured maximum still hands the model only the first maxFrames.
func TestFrameExtractorCapsFrameCount(t *testing.T) {
	extractor := commands.NewFrameExtractor("extract-frames", "/usr/bin/ffmpeg", 2, 4)
	extractor.SetRunner(fakeFrameWriter(6))

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, "/tmp/sample.mp4")
	defer chainCtx.Close()

	extractor.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	frames := chainCtx.Get(commands.FramesParamName).([]*model.Frame)
	assert.Len(t, frames, 4)
}

// TestFrameExtractorRunnerFailure verifies a failed ffmpeg run surfaces as a
// chain error.
func TestFrameExtractorRunnerFailure(t *testing.T) {
	extractor := commands.NewFrameExtractor("extract-frames", "/usr/bin/ffmpeg", 2, 5)
	extractor.SetRunner(func(name string, args ...string) error {
		return errors.New("exit status 1")
	})

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, "/tmp/sample.mp4")
	defer chainCtx.Close()

	extractor.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get(commands.FramesParamName))
}

// TestFrameExtractorNoFrames verifies a run that produces nothing is an
// error: the pipeline has no timeline to work from.
func TestFrameExtractorNoFrames(t *testing.T) {
	extractor := commands.NewFrameExtractor("extract-frames", "/usr/bin/ffmpeg", 2, 5)
	extractor.SetRunner(func(name string, args ...string) error { return nil })

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, "/tmp/sample.mp4")
	defer chainCtx.Close()

	extractor.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
}
