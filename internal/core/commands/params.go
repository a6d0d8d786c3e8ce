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
// well-known context keys the analysis commands use to share state beyond the
// default input/output piping. Several commands need access to the same data
// (the frame list, the judgment) regardless of their position in the chain,
// so that data is stored under fixed keys in addition to the piped output.
package commands

// Well-known context parameter names shared across the analysis pipeline.
const (
	// FramesParamName holds the ordered []*model.Frame sampled from the video.
	FramesParamName = "__FRAMES__"
	// SegmentsParamName holds the ordered []*model.Segment for the async path.
	SegmentsParamName = "__SEGMENTS__"
	// JudgmentParamName holds the *model.Judgment produced by either the
	// extractor or the fallback generator.
	JudgmentParamName = "__JUDGMENT__"
	// IdentityParamName holds the *ReportIdentity supplied by the caller.
	IdentityParamName = "__IDENTITY__"
	// ReportParamName holds the assembled *model.Report.
	ReportParamName = "__REPORT__"
)
