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

// Package main contains the logic for setting up and starting the Pub/Sub message listeners.
// These listeners are responsible for initiating backend processing workflows in response to
// events, such as newly submitted analysis jobs.
//
// Functions:
//   - SetupListeners: Initializes and starts the listener for the jobs topic,
//     attaching the background job runner workflow.
package main

import (
	"context"

	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/services"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/workflow"
)

// SetupListeners configures and starts the background Pub/Sub listeners.
// It creates the job runner workflow and attaches it to the jobs topic
// listener.
//
// Inputs:
//   - config: The application's configuration, containing topic and model settings.
//   - cloudClients: A struct containing all the initialized Google Cloud service clients.
//   - jobService: The persistence layer for job records.
//   - ctx: The application's root context, used to manage the lifecycle of the listeners.
//
// Outputs:
//   - This function does not return any value. It starts the listeners as background goroutines.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, jobService *services.JobService, ctx context.Context) {
	// Create the workflow that pre-warms judgments for submitted jobs.
	// It loads the job's segment timeline, derives a judgment with the
	// configured agent model, and stores the result back on the record.
	jobRunner := workflow.NewJobRunnerPipeline(config, cloudClients, jobService, JudgmentAgentModel)

	// Assign the job runner as the command executed by the jobs topic listener.
	cloudClients.PubSubListeners["JobsTopic"].SetCommand(jobRunner)
	// Start the listener in a background goroutine. It will now begin receiving
	// and processing messages from its subscription.
	cloudClients.PubSubListeners["JobsTopic"].Listen(ctx)
}
