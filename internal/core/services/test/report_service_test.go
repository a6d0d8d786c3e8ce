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

// Package services_test contains the test suite for the services package.
// This file tests the report service's judgment amortization policy with a
// fake store and a counting fake pipeline, so no BigQuery or model access
// is needed.
package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-viral-insights/internal/core/commands"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/services"
	test "github.com/jaycherian/gcp-go-viral-insights/internal/testutil"
	"github.com/zeebo/assert"
)

// fakeJobStore is an in-memory stand-in for the BigQuery-backed job service.
type fakeJobStore struct {
	records   map[string]*model.JobRecord
	judgments map[string]*model.Judgment
	saveCalls int
	saveErr   error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		records:   make(map[string]*model.JobRecord),
		judgments: make(map[string]*model.Judgment),
	}
}

func (s *fakeJobStore) GetJob(_ context.Context, id string) (*model.JobRecord, error) {
	return s.records[id], nil
}

func (s *fakeJobStore) GetCachedJudgment(_ context.Context, id string) (*model.Judgment, error) {
	judgment := s.judgments[id]
	if judgment == nil || len(judgment.ViralFactors) == 0 {
		return nil, nil
	}
	return judgment, nil
}

func (s *fakeJobStore) SaveCachedJudgment(_ context.Context, id string, judgment *model.Judgment) error {
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.judgments[id] = judgment
	return nil
}

// fakePipeline stands in for the segment judgment chain and counts how often
// it runs, which is how the tests observe the model-call amortization.
type fakePipeline struct {
	cor.BaseCommand
	calls    int
	judgment *model.Judgment
	fail     bool
}

func newFakePipeline(judgment *model.Judgment) *fakePipeline {
	return &fakePipeline{BaseCommand: *cor.NewBaseCommand("fake-judgment-pipeline"), judgment: judgment}
}

func (p *fakePipeline) Execute(chainCtx cor.Context) {
	p.calls++
	if p.fail {
		chainCtx.AddError(p.GetName(), errors.New("prompt template failure"))
		return
	}
	chainCtx.Add(commands.JudgmentParamName, p.judgment)
}

func storedJobRecord(id string) *model.JobRecord {
	segments, _ := json.Marshal(test.GetTestSegments())
	return &model.JobRecord{
		Id:           id,
		Title:        "stored clip",
		ThumbnailUri: "gs://covers/stored.jpg",
		Status:       model.JobStatusSucceeded,
		SegmentsJson: string(segments),
	}
}

// TestReportServiceDerivesAndSaves verifies the first fetch of a job with no
// stored judgment runs the pipeline once and persists the result.
func TestReportServiceDerivesAndSaves(t *testing.T) {
	store := newFakeJobStore()
	store.records["job-1"] = storedJobRecord("job-1")
	pipeline := newFakePipeline(&model.Judgment{
		ViralFactors: []*model.ViralFactor{{Category: "pacing", Description: "fast cuts", Intensity: 8}},
		HookScore:    82,
	})
	service := services.NewReportService(store, pipeline)

	report, err := service.GetJobReport(context.Background(), "job-1")
	assert.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, 1, pipeline.calls)
	assert.Equal(t, 1, store.saveCalls)
	assert.Equal(t, "job-1", report.Id)
	assert.Equal(t, "stored clip", report.Title)
	assert.Equal(t, 82, report.HookScore)
	// Duration comes from the stored segment timeline.
	assert.Equal(t, 15, report.Duration)
}

// TestReportServiceAmortizesModelCall verifies repeated fetches of the same
// job never run the pipeline again once a judgment is stored.
func TestReportServiceAmortizesModelCall(t *testing.T) {
	store := newFakeJobStore()
	store.records["job-1"] = storedJobRecord("job-1")
	pipeline := newFakePipeline(&model.Judgment{
		ViralFactors: []*model.ViralFactor{{Category: "pacing", Description: "fast cuts", Intensity: 8}},
		HookScore:    82,
	})
	service := services.NewReportService(store, pipeline)

	_, err := service.GetJobReport(context.Background(), "job-1")
	assert.NoError(t, err)

	report, err := service.GetJobReport(context.Background(), "job-1")
	assert.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, 1, pipeline.calls)
	assert.Equal(t, 1, store.saveCalls)
}

// TestReportServiceIgnoresEmptyStoredJudgment verifies a stored payload
// without viral factors is not treated as a reusable judgment.
func TestReportServiceIgnoresEmptyStoredJudgment(t *testing.T) {
	store := newFakeJobStore()
	store.records["job-1"] = storedJobRecord("job-1")
	store.judgments["job-1"] = &model.Judgment{HookScore: 50}
	pipeline := newFakePipeline(&model.Judgment{
		ViralFactors: []*model.ViralFactor{{Category: "pacing", Description: "fast cuts", Intensity: 8}},
		HookScore:    82,
	})
	service := services.NewReportService(store, pipeline)

	_, err := service.GetJobReport(context.Background(), "job-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, pipeline.calls)
}

// TestReportServiceSaveFailureIsNotFatal verifies a failed judgment save
// still serves the freshly derived report; the next fetch re-derives.
func TestReportServiceSaveFailureIsNotFatal(t *testing.T) {
	store := newFakeJobStore()
	store.records["job-1"] = storedJobRecord("job-1")
	store.saveErr = errors.New("streaming buffer conflict")
	pipeline := newFakePipeline(&model.Judgment{
		ViralFactors: []*model.ViralFactor{{Category: "pacing", Description: "fast cuts", Intensity: 8}},
		HookScore:    82,
	})
	service := services.NewReportService(store, pipeline)

	report, err := service.GetJobReport(context.Background(), "job-1")
	assert.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, 1, store.saveCalls)

	// Nothing was stored, so the next fetch derives again.
	_, err = service.GetJobReport(context.Background(), "job-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, pipeline.calls)
}

// TestReportServiceUnknownJob verifies the sentinel error for unknown ids.
func TestReportServiceUnknownJob(t *testing.T) {
	service := services.NewReportService(newFakeJobStore(), newFakePipeline(nil))

	_, err := service.GetJobReport(context.Background(), "missing")
	assert.True(t, errors.Is(err, services.ErrJobNotFound))
}

// TestReportServicePipelineFailure verifies a pipeline that produced neither
// judgment nor fallback surfaces as an error.
func TestReportServicePipelineFailure(t *testing.T) {
	store := newFakeJobStore()
	store.records["job-1"] = storedJobRecord("job-1")
	pipeline := newFakePipeline(nil)
	pipeline.fail = true
	service := services.NewReportService(store, pipeline)

	_, err := service.GetJobReport(context.Background(), "job-1")
	assert.Error(t, err)
	assert.Equal(t, 0, store.saveCalls)
}
