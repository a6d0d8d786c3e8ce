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
// Responsibility (COR) pattern's Command interface. This file defines a
// command that bridges the GCS-based upload flow and the local-file-based
// frame extractor.
//
// Logic Flow:
// The synchronous analysis request references a video by either a gs:// URI
// (the usual case, produced by the upload endpoint) or a local path (used in
// development). FFmpeg needs a local file, so for GCS references this command
// streams the object down to a temporary file first.
//
//  1. Receive the video reference string from the context.
//  2. For a gs:// reference, parse the bucket and object name, create a GCS
//     reader, and stream it into a local temp file with `io.Copy`.
//  3. Track the temp file on the context for cleanup when the request ends.
//  4. Pass the local path to the next command in the chain.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
)

const gcsUriPrefix = "gs://"

// VideoFetcher is a command implementation that resolves a video reference to
// a local file path, downloading from GCS when necessary.
type VideoFetcher struct {
	cor.BaseCommand
	client         *storage.Client // The GCS client for interacting with the storage service.
	tempFilePrefix string          // A prefix to use when naming the temporary file.
}

// NewVideoFetcher is the constructor for creating a new VideoFetcher command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - client: An initialized *storage.Client for communicating with GCS.
//   - tempFilePrefix: A string prefix for the temporary file's name.
//
// Outputs:
//   - *VideoFetcher: A pointer to the newly instantiated command.
func NewVideoFetcher(name string, client *storage.Client, tempFilePrefix string) *VideoFetcher {
	return &VideoFetcher{
		BaseCommand:    *cor.NewBaseCommand(name),
		client:         client,
		tempFilePrefix: tempFilePrefix,
	}
}

// Execute resolves the video reference from the context to a local path.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *VideoFetcher) Execute(context cor.Context) {
	reference := context.Get(c.GetInputParam()).(string)

	// Local paths pass straight through to the frame extractor.
	if !strings.HasPrefix(reference, gcsUriPrefix) {
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(c.GetOutputParam(), reference)
		return
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(reference, gcsUriPrefix), "/")
	if !ok || bucket == "" || object == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("malformed video reference: %s", reference))
		return
	}

	reader, err := c.client.Bucket(bucket).Object(object).NewReader(context.GetContext())
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to create GCS reader for %s: %w", reference, err))
		return
	}
	defer func(reader *storage.Reader) {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close GCS reader", "error", err)
		}
	}(reader)

	tempFile, err := os.CreateTemp("", c.tempFilePrefix)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not create temp file: %w", err))
		return
	}

	written, err := io.Copy(tempFile, reader)
	if err != nil {
		_ = tempFile.Close()
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to download %s after %d bytes: %w", reference, written, err))
		return
	}
	_ = tempFile.Close()

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("downloaded video for analysis", "reference", reference, "bytes", written)
	context.AddTempFile(tempFile.Name())
	context.Add(c.GetOutputParam(), tempFile.Name())
}
