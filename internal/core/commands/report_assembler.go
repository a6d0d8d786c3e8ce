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
// report assembler, which deterministically expands a Judgment into the full
// client-facing report.
//
// Logic Flow:
// The assembler is the last step of both analysis paths. Given the judgment
// (model-produced or fallback), the timeline (frames or segments), and the
// caller-supplied identity fields, it derives every secondary structure:
// rhythm timeline, radar scores, star rating, and the detail blocks. The
// expansion is a pure function; re-running it on the same inputs always
// yields the same report.
package commands

import (
	"log/slog"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// Duration estimation constants shared by the prompt builder and assembler.
const (
	// DefaultDurationSeconds is used when no frames were sampled.
	DefaultDurationSeconds = 15
	// DurationBufferSeconds pads the last frame timestamp, since the video
	// continues past the final sampled frame.
	DurationBufferSeconds = 2
)

// climaxIntensityThreshold marks interior segments as "climax" on the
// asynchronous rhythm timeline.
const climaxIntensityThreshold = 70

// Fixed placeholder text for analysis modalities this pipeline does not
// perform.
const (
	audioHookPlaceholder = "Audio analysis feature under development"
	textHookPlaceholder  = "Text analysis feature under development"
)

// radarSubjects are the six fixed radar axes, paired with the offset applied
// to the judgment's hook score for that axis.
var radarSubjects = []struct {
	subject string
	offset  int
}{
	{"hook intensity", 0},
	{"emotional tension", -10},
	{"visual impact", 5},
	{"narrative logic", -5},
	{"conversion potential", 0},
	{"innovation index", -15},
}

// ReportIdentity carries the caller-supplied identity fields of a report.
// These come from the source path or job record, never from the pipeline.
type ReportIdentity struct {
	Id       string // The analysis or job identifier.
	Title    string // Display title for the video.
	CoverUrl string // Reference to a cover/thumbnail image.
}

// ReportAssembler is a command that expands the judgment on the context into
// the final report using whichever timeline the pipeline carries.
type ReportAssembler struct {
	cor.BaseCommand
}

// NewReportAssembler is the constructor for the ReportAssembler command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *ReportAssembler: A pointer to the newly instantiated command.
func NewReportAssembler(name string) *ReportAssembler {
	out := &ReportAssembler{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = JudgmentParamName
	return out
}

// Execute expands the judgment into the report and stores it on the context.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *ReportAssembler) Execute(context cor.Context) {
	judgment := context.Get(c.GetInputParam()).(*model.Judgment)

	identity := &ReportIdentity{}
	if raw := context.Get(IdentityParamName); raw != nil {
		identity = raw.(*ReportIdentity)
	}

	var report *model.Report
	if raw := context.Get(SegmentsParamName); raw != nil {
		report = AssembleFromSegments(judgment, raw.([]*model.Segment), identity)
	} else {
		var frames []*model.Frame
		if raw := context.Get(FramesParamName); raw != nil {
			frames = raw.([]*model.Frame)
		}
		report = AssembleFromFrames(judgment, frames, identity)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("report assembled", "command", c.GetName(), "id", report.Id, "hook_score", report.HookScore)
	context.Add(ReportParamName, report)
	context.Add(c.GetOutputParam(), report)
}

// AssembleFromFrames expands a judgment using the synchronous frame timeline.
//
// Inputs:
//   - judgment: The judgment from either the extractor or the fallback.
//   - frames: The ordered sampled frames, possibly empty.
//   - identity: The caller-supplied identity fields.
//
// Outputs:
//   - *model.Report: The complete report.
func AssembleFromFrames(judgment *model.Judgment, frames []*model.Frame, identity *ReportIdentity) *model.Report {
	report := baseReport(judgment, identity)
	report.Duration = estimatedDurationSeconds(frames)
	report.RhythmData = rhythmFromFrames(frames)
	return report
}

// AssembleFromSegments expands a judgment using the asynchronous segment
// timeline.
//
// Inputs:
//   - judgment: The judgment from either the extractor or the fallback.
//   - segments: The job's ordered segments, possibly empty.
//   - identity: The caller-supplied identity fields.
//
// Outputs:
//   - *model.Report: The complete report.
func AssembleFromSegments(judgment *model.Judgment, segments []*model.Segment, identity *ReportIdentity) *model.Report {
	report := baseReport(judgment, identity)
	report.Duration = totalDurationSeconds(segments)
	report.RhythmData = rhythmFromSegments(segments)
	return report
}

// baseReport derives every timeline-independent structure from the judgment.
func baseReport(judgment *model.Judgment, identity *ReportIdentity) *model.Report {
	judgment.Normalize()
	return &model.Report{
		Id:                 identity.Id,
		Title:              identity.Title,
		CoverUrl:           identity.CoverUrl,
		ViralFactors:       judgment.ViralFactors,
		RadarData:          radarFromHookScore(judgment.HookScore),
		NarrativeStructure: defaultString(judgment.NarrativeStructure, "Single-arc narrative"),
		HookScore:          judgment.HookScore,
		EvaluationReport: &model.EvaluationReport{
			StarRating:     starRating(judgment.HookScore),
			CoreStrengths:  capWithDefault(judgment.CoreStrengths, 3, "Engaging content"),
			ReusablePoints: capWithDefault(judgment.ReusablePoints, 3, "Study the pacing of the strongest moment"),
		},
		HookDetails: &model.HookDetails{
			Visual: defaultString(judgment.VisualHook, "Strong visual opening"),
			Audio:  audioHookPlaceholder,
			Text:   textHookPlaceholder,
		},
		EditingStyle: &model.EditingStyle{
			Pacing:         defaultString(judgment.EditingPacing, "Moderate pacing"),
			TransitionType: "Direct cuts",
			ColorPalette:   defaultString(judgment.ColorPalette, "Balanced palette"),
		},
		AudienceResponse: &model.AudienceResponse{
			Sentiment:   defaultString(judgment.AudienceSentiment, "Positive"),
			KeyTriggers: capWithDefault(judgment.KeyTriggers, 3, "curiosity"),
		},
	}
}

// rhythmFromFrames builds the synchronous rhythm timeline: one point per
// frame with fixed intensities for the opening, closing, and middle frames
// and a repeating 60/70/80 pattern elsewhere. Zero frames produce a fixed
// three-point default so the chart always renders.
func rhythmFromFrames(frames []*model.Frame) []*model.RhythmPoint {
	if len(frames) == 0 {
		return []*model.RhythmPoint{
			{Time: 0, Intensity: 80, Label: "opening"},
			{Time: 5, Intensity: 65},
			{Time: 10, Intensity: 85, Label: "ending"},
		}
	}
	points := make([]*model.RhythmPoint, 0, len(frames))
	middle := len(frames) / 2
	for i, frame := range frames {
		point := &model.RhythmPoint{Time: int(frame.TimestampMs / 1000)}
		switch {
		case i == 0:
			point.Intensity = 80
			point.Label = "opening"
		case i == len(frames)-1:
			point.Intensity = 85
			point.Label = "ending"
		case i == middle:
			point.Intensity = 90
			point.Label = "climax"
		default:
			point.Intensity = 60 + (i%3)*10
		}
		points = append(points, point)
	}
	return points
}

// rhythmFromSegments builds the asynchronous rhythm timeline. Intensity grows
// with feature count and detection confidence; interior segments crossing the
// climax threshold get labeled.
func rhythmFromSegments(segments []*model.Segment) []*model.RhythmPoint {
	if len(segments) == 0 {
		return []*model.RhythmPoint{
			{Time: 0, Intensity: 80, Label: "opening"},
			{Time: 5, Intensity: 65},
			{Time: 10, Intensity: 85, Label: "ending"},
		}
	}
	points := make([]*model.RhythmPoint, 0, len(segments))
	for i, segment := range segments {
		confidenceSum := 0.0
		for _, feature := range segment.Features {
			confidenceSum += feature.Confidence
		}
		intensity := int(float64(len(segment.Features))*15 + confidenceSum*20)
		if intensity > 100 {
			intensity = 100
		}
		point := &model.RhythmPoint{Time: int(segment.StartMs / 1000), Intensity: intensity}
		switch {
		case i == 0:
			point.Label = "opening"
		case i == len(segments)-1:
			point.Label = "ending"
		case intensity > climaxIntensityThreshold:
			point.Label = "climax"
		}
		points = append(points, point)
	}
	return points
}

// radarFromHookScore derives the six radar axes by applying each axis's fixed
// offset to the hook score, clamped to [0,100].
func radarFromHookScore(hookScore int) []*model.RadarItem {
	items := make([]*model.RadarItem, 0, len(radarSubjects))
	for _, axis := range radarSubjects {
		score := hookScore + axis.offset
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		items = append(items, &model.RadarItem{Subject: axis.subject, Score: score})
	}
	return items
}

// starRating maps the hook score onto 1-5 stars with integer division.
func starRating(hookScore int) int {
	stars := hookScore / 20
	if stars < 1 {
		stars = 1
	}
	if stars > 5 {
		stars = 5
	}
	return stars
}

// capWithDefault returns at most max entries of in, substituting a single
// fixed default when the list is empty.
func capWithDefault(in []string, max int, fallback string) []string {
	if len(in) == 0 {
		return []string{fallback}
	}
	if len(in) > max {
		in = in[:max]
	}
	return in
}

func defaultString(in string, fallback string) string {
	if in == "" {
		return fallback
	}
	return in
}
