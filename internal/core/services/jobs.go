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
// defines the JobService, which owns the persistence of asynchronous analysis
// job records in BigQuery: creation, lookup, lifecycle updates, and the
// stored-judgment round trip that lets a job's model call happen at most once.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
	"google.golang.org/api/iterator"
)

// JobService provides methods for interacting with analysis job records
// stored in BigQuery. It satisfies the commands package's JobGetter and
// JudgmentSaver interfaces.
type JobService struct {
	BigqueryClient *bigquery.Client // The client for making BigQuery API calls.
	DatasetName    string           // The name of the BigQuery dataset.
	JobTable       string           // The name of the table holding job records.
}

// NewJobService is the constructor for the JobService.
//
// Inputs:
//   - bigqueryClient: An initialized BigQuery client.
//   - datasetName: The name of the dataset containing the job table.
//   - jobTable: The name of the job table.
//
// Outputs:
//   - *JobService: A pointer to the newly instantiated service.
func NewJobService(bigqueryClient *bigquery.Client, datasetName string, jobTable string) *JobService {
	return &JobService{
		BigqueryClient: bigqueryClient,
		DatasetName:    datasetName,
		JobTable:       jobTable,
	}
}

// GetFQN returns the fully qualified name of the job table formatted for use
// in a SQL query (project.dataset.table).
func (s *JobService) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.JobTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// CreateJob inserts a new job record via the streaming inserter. The record's
// timestamps are stamped here so callers only fill the descriptive fields.
func (s *JobService) CreateJob(ctx context.Context, record *model.JobRecord) error {
	now := time.Now().UTC()
	record.CreateTime = now
	record.UpdateTime = now
	if record.Status == "" {
		record.Status = model.JobStatusQueued
	}
	inserter := s.BigqueryClient.Dataset(s.DatasetName).Table(s.JobTable).Inserter()
	return inserter.Put(ctx, record)
}

// GetJob looks up a single job record by id.
//
// Outputs:
//   - *model.JobRecord: The record, or nil when no row matches.
//   - error: An error if the query itself failed.
func (s *JobService) GetJob(ctx context.Context, id string) (*model.JobRecord, error) {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryFindJobById, s.GetFQN()))
	query.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	itr, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}

	var record model.JobRecord
	err = itr.Next(&record)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateStatus advances a job's lifecycle fields.
func (s *JobService) UpdateStatus(ctx context.Context, id string, status string, progress int, currentStep string) error {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryUpdateJobStatus, s.GetFQN()))
	query.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: status},
		{Name: "progress", Value: progress},
		{Name: "current_step", Value: currentStep},
		{Name: "id", Value: id},
	}
	return s.runDML(ctx, query)
}

// MarkFailed terminates a job with an error message and structured details.
func (s *JobService) MarkFailed(ctx context.Context, id string, message string, details string) error {
	query := s.BigqueryClient.Query(fmt.Sprintf(QryMarkJobFailed, s.GetFQN()))
	query.Parameters = []bigquery.QueryParameter{
		{Name: "error_message", Value: message},
		{Name: "error_details", Value: details},
		{Name: "id", Value: id},
	}
	return s.runDML(ctx, query)
}

// GetCachedJudgment returns the judgment previously stored on a job record.
// A record whose stored payload has no viral factors is treated as having no
// reusable judgment at all, so the caller re-derives it.
//
// Outputs:
//   - *model.Judgment: The stored judgment, or nil when absent or unusable.
//   - error: An error if the record lookup failed.
func (s *JobService) GetCachedJudgment(ctx context.Context, id string) (*model.Judgment, error) {
	record, err := s.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil || record.JudgmentJson == "" {
		return nil, nil
	}

	var judgment model.Judgment
	if err := json.Unmarshal([]byte(record.JudgmentJson), &judgment); err != nil {
		return nil, nil
	}
	if len(judgment.ViralFactors) == 0 {
		return nil, nil
	}
	return &judgment, nil
}

// SaveCachedJudgment serializes a judgment and writes it onto the job record.
func (s *JobService) SaveCachedJudgment(ctx context.Context, id string, judgment *model.Judgment) error {
	data, err := json.Marshal(judgment)
	if err != nil {
		return err
	}
	query := s.BigqueryClient.Query(fmt.Sprintf(QrySaveJudgment, s.GetFQN()))
	query.Parameters = []bigquery.QueryParameter{
		{Name: "judgment_json", Value: string(data)},
		{Name: "id", Value: id},
	}
	return s.runDML(ctx, query)
}

// runDML executes a mutation query and waits for it to finish so callers see
// write failures synchronously.
func (s *JobService) runDML(ctx context.Context, query *bigquery.Query) error {
	job, err := query.Run(ctx)
	if err != nil {
		return err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return err
	}
	return status.Err()
}
