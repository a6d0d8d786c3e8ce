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
// command for sampling representative frames from a video with FFmpeg.
//
// Logic Flow:
// The `FrameExtractor` is the entry point of the synchronous analysis chain.
// It takes a local video file and samples one frame every N seconds, capped at
// a maximum frame count, producing the ordered timeline the rest of the
// pipeline works from.
//
//  1. Get the path of the input video file from the COR context.
//  2. Create a temporary directory for the extracted frame images.
//  3. Build and execute the `ffmpeg` command with an fps filter
//     (`fps=1/interval`) and a frame-count cap.
//  4. Collect the produced JPEG files in order, assigning each a timestamp of
//     index * interval * 1000 milliseconds.
//  5. Track every frame file in the context for cleanup when the request ends.
//  6. Place the ordered frame list into the context for the prompt builder.
package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// Constants used for the FFmpeg frame sampling execution.
const (
	// DefaultFrameArgs is a format string for the FFmpeg command.
	// -analyzeduration 0 -probesize 5000000: Optimizations for faster probing of the input file.
	// -y: Overwrite output files without asking.
	// -hide_banner: Suppresses the printing of the FFmpeg banner.
	// -i %s: Specifies the input video file.
	// -vf fps=1/%d: Samples one frame every N seconds.
	// -frames:v %d: Stops after the maximum number of frames.
	// -q:v 2 %s: High-quality JPEG output to the numbered file pattern.
	DefaultFrameArgs = "-analyzeduration 0 -probesize 5000000 -y -hide_banner -i %s -vf fps=1/%d -frames:v %d -q:v 2 %s"
	FrameFilePattern = "frame_%04d.jpg"
	FrameDirPrefix   = "frame-extract-"
	CommandSeparator = " "
)

// FrameExtractor is a command implementation that wraps the execution of the
// FFmpeg tool to sample timestamped frames from a local video file.
type FrameExtractor struct {
	cor.BaseCommand
	commandPath     string        // The path to the FFmpeg executable (e.g., "/usr/bin/ffmpeg").
	intervalSeconds int           // Seconds between sampled frames.
	maxFrames       int           // Upper bound on the number of frames produced.
	runner          CommandRunner // Executes the assembled ffmpeg invocation.
}

// CommandRunner executes an external command. It exists so tests can substitute
// a fake that writes frame files without a real ffmpeg binary.
type CommandRunner func(name string, args ...string) error

// NewFrameExtractor is the constructor for creating a new FrameExtractor.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - commandPath: The file system path to the FFmpeg executable.
//   - intervalSeconds: The sampling interval between frames.
//   - maxFrames: The maximum number of frames to hand to the model.
//
// Outputs:
//   - *FrameExtractor: A pointer to the newly instantiated command.
func NewFrameExtractor(name string, commandPath string, intervalSeconds int, maxFrames int) *FrameExtractor {
	if intervalSeconds <= 0 {
		intervalSeconds = 2
	}
	if maxFrames <= 0 {
		maxFrames = 5
	}
	out := &FrameExtractor{
		BaseCommand:     *cor.NewBaseCommand(name),
		commandPath:     commandPath,
		intervalSeconds: intervalSeconds,
		maxFrames:       maxFrames,
	}
	out.runner = out.runFFMpeg
	return out
}

// SetRunner replaces the process runner. Test hook only.
func (c *FrameExtractor) SetRunner(runner CommandRunner) {
	c.runner = runner
}

func (c *FrameExtractor) runFFMpeg(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Execute contains the core logic for the command. It handles the temp
// directory, command building, and execution of FFmpeg.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *FrameExtractor) Execute(context cor.Context) {
	videoPath := context.Get(c.GetInputParam()).(string)

	frameDir, err := os.MkdirTemp("", FrameDirPrefix)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create frame directory: %w", err))
		return
	}

	outputPattern := filepath.Join(frameDir, FrameFilePattern)
	args := fmt.Sprintf(DefaultFrameArgs, videoPath, c.intervalSeconds, c.maxFrames, outputPattern)
	if err := c.runner(c.commandPath, strings.Split(args, CommandSeparator)...); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("error running ffmpeg: %w", err))
		return
	}

	// Collect the produced frame files in name order. The fps filter emits
	// frame_0001.jpg, frame_0002.jpg, ... so lexical order is timeline order.
	entries, err := os.ReadDir(frameDir)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to read frame directory: %w", err))
		return
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".jpg") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("ffmpeg produced no frames for %s", videoPath))
		return
	}

	frames := make([]*model.Frame, 0, len(names))
	for i, name := range names {
		if i >= c.maxFrames {
			break
		}
		path := filepath.Join(frameDir, name)
		context.AddTempFile(path)
		frames = append(frames, &model.Frame{
			TimestampMs: int64(i) * int64(c.intervalSeconds) * 1000,
			ImagePath:   path,
		})
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(FramesParamName, frames)
	context.Add(c.GetOutputParam(), frames)
}
