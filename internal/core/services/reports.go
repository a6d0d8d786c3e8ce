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

// Package services contains the business logic for the application. This file
// defines the ReportService, which turns a finished asynchronous job into a
// full analysis report.
//
// Logic Flow:
// The report for a job is derived from a judgment, and the judgment comes
// from exactly one of two places: the copy stored on the job record, or a
// fresh run of the judgment pipeline over the job's segment timeline. A
// freshly derived judgment is written back to the record on a best-effort
// basis, so across repeated fetches of the same job the model is called at
// most once.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// ErrJobNotFound is returned when a report is requested for a job id with no
// stored record.
var ErrJobNotFound = errors.New("analysis job not found")

// JobStore is the narrow persistence interface the report service needs.
// *JobService satisfies it; tests substitute a fake.
type JobStore interface {
	GetJob(ctx context.Context, id string) (*model.JobRecord, error)
	GetCachedJudgment(ctx context.Context, id string) (*model.Judgment, error)
	SaveCachedJudgment(ctx context.Context, id string, judgment *model.Judgment) error
}

// ReportService assembles analysis reports for asynchronous jobs.
type ReportService struct {
	store    JobStore
	pipeline cor.Command // The segment judgment chain: prompt, model, fallback.
}

// NewReportService is the constructor for the ReportService.
//
// Inputs:
//   - store: The job persistence layer.
//   - pipeline: A command that derives a judgment from a segment timeline.
//
// Outputs:
//   - *ReportService: A pointer to the newly instantiated service.
func NewReportService(store JobStore, pipeline cor.Command) *ReportService {
	return &ReportService{store: store, pipeline: pipeline}
}

// GetJobReport produces the full report for a job, deriving and persisting
// the judgment when the record does not already carry one.
//
// Inputs:
//   - ctx: The request context.
//   - id: The job id.
//
// Outputs:
//   - *model.Report: The assembled report.
//   - error: ErrJobNotFound for unknown ids, or a derivation failure.
func (s *ReportService) GetJobReport(ctx context.Context, id string) (*model.Report, error) {
	record, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}
	if record == nil {
		return nil, ErrJobNotFound
	}

	segments, err := commands.DecodeSegments(record.SegmentsJson)
	if err != nil {
		return nil, fmt.Errorf("failed to decode segments for job %s: %w", id, err)
	}

	judgment, err := s.store.GetCachedJudgment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored judgment for job %s: %w", id, err)
	}

	if judgment == nil {
		judgment, err = s.deriveJudgment(ctx, segments)
		if err != nil {
			return nil, fmt.Errorf("failed to derive judgment for job %s: %w", id, err)
		}
		// Best effort: the in-flight judgment still serves this response,
		// and a later fetch re-derives and retries the save.
		if err := s.store.SaveCachedJudgment(ctx, id, judgment); err != nil {
			slog.Warn("failed to store judgment on job record", "job_id", id, "error", err)
		}
	}

	identity := &commands.ReportIdentity{
		Id:       record.Id,
		Title:    record.Title,
		CoverUrl: record.ThumbnailUri,
	}
	return commands.AssembleFromSegments(judgment, segments, identity), nil
}

// deriveJudgment runs the judgment pipeline over a segment timeline. The
// pipeline's fallback step guarantees a judgment whenever the timeline key is
// present, so a missing result means the chain failed before reaching it.
func (s *ReportService) deriveJudgment(ctx context.Context, segments []*model.Segment) (*model.Judgment, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	defer chainCtx.Close()

	chainCtx.Add(commands.SegmentsParamName, segments)
	chainCtx.Add(cor.CtxIn, segments)
	s.pipeline.Execute(chainCtx)

	if judgment, ok := chainCtx.Get(commands.JudgmentParamName).(*model.Judgment); ok && judgment != nil {
		return judgment, nil
	}
	for name, err := range chainCtx.GetErrors() {
		return nil, fmt.Errorf("judgment pipeline step %s: %w", name, err)
	}
	return nil, errors.New("judgment pipeline produced no result")
}
