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

// Package services contains the business logic for interacting with data sources.
// This file, `queries.go`, centralizes all the BigQuery SQL query strings used
// by the application's services. Storing queries as constants in a dedicated
// file improves maintainability, readability, and reusability. Each query takes
// the fully qualified job table name via `fmt.Sprintf` and its dynamic values
// via named query parameters, so user-provided strings (titles, error text,
// judgment JSON) never get spliced into SQL.
package services

const (
	// QryFindJobById looks up a complete analysis job record by its unique id.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the job table.
	// - `@id`: The unique id of the job to find.
	QryFindJobById = "SELECT * FROM `%s` WHERE id = @id"

	// QryUpdateJobStatus advances a job's lifecycle state and progress fields.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the job table.
	// - `@status`, `@progress`, `@current_step`, `@id`: The new state.
	QryUpdateJobStatus = "UPDATE `%s` SET status = @status, progress = @progress, current_step = @current_step, update_time = CURRENT_TIMESTAMP() WHERE id = @id"

	// QryMarkJobFailed terminates a job with a stored error message and
	// structured error details.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the job table.
	// - `@error_message`, `@error_details`, `@id`: The failure description.
	QryMarkJobFailed = "UPDATE `%s` SET status = 'failed', error_message = @error_message, error_details = @error_details, update_time = CURRENT_TIMESTAMP() WHERE id = @id"

	// QrySaveJudgment writes the derived judgment JSON back onto the job
	// record so later report fetches can reuse it without another model call.
	//
	// Placeholders:
	// - `%s`: The fully qualified name of the job table.
	// - `@judgment_json`, `@id`: The serialized judgment and target job.
	QrySaveJudgment = "UPDATE `%s` SET judgment_json = @judgment_json, update_time = CURRENT_TIMESTAMP() WHERE id = @id"
)
