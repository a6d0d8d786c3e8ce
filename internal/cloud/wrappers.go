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

// Package cloud provides components for interacting with Google Cloud services.
// This file implements a wrapper around the standard Generative AI client.
// This wrapper uses the Decorator design pattern to add extra functionality
// to an existing object without altering its code. Specifically, it adds
// rate limiting to the Generative AI model.
//
// Why this is important:
//   - Rate Limiting: Services like Vertex AI have quotas on how many requests
//     you can make per minute. This wrapper prevents the application from
//     exceeding those limits, which would otherwise result in errors.
//   - Single attempt: the wrapper never retries. Every judgment pipeline makes
//     at most one model call per invocation, and a failed call immediately
//     yields to the deterministic fallback rather than blocking the request.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: A struct that wraps the base model handle
//     and adds a rate limiter.
//
// Functions:
//   - NewQuotaAwareModel: A constructor to create a new instance of the wrapped model.
//   - GenerateContent: An overridden method that intercepts calls to the AI model
//     to enforce rate limiting.
package cloud

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// QuotaAwareGenerativeAIModel is a decorator struct that wraps a Vertex AI
// model handle together with its generation config and adds rate-limiting
// capabilities. Calls go through `GenerateContent`, which enforces the
// limiter before delegating to the underlying model.
type QuotaAwareGenerativeAIModel struct {
	GenerativeContentConfig *genai.GenerateContentConfig // The generation config applied to every call.
	ModelName               string                       // The Vertex AI model identifier (e.g., "gemini-2.0-flash").
	ModelHandle             *genai.Models                // The underlying client handle used to issue calls.
	RateLimit               rate.Limiter                 // A rate limiter to control request frequency.
}

// NewQuotaAwareModel is a constructor function that creates a new
// QuotaAwareGenerativeAIModel. It takes the base model and a rate limit
// (in requests per second) and returns our enhanced, quota-aware model.
//
// Inputs:
//   - wrapped: The generation config to apply on every call.
//   - name: The Vertex AI model identifier.
//   - modelHandle: The genai Models handle calls are delegated to.
//   - requestsPerSecond: An integer specifying the maximum number of API calls allowed per second.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: A pointer to the newly created wrapper.
func NewQuotaAwareModel(wrapped *genai.GenerateContentConfig, name string, modelHandle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	return &QuotaAwareGenerativeAIModel{
		GenerativeContentConfig: wrapped,
		ModelName:               name,
		ModelHandle:             modelHandle,
		// Creates a new rate limiter that allows a burst of `requestsPerSecond` events
		// and replenishes the "token bucket" at a rate of 1 token per second.
		RateLimit: *rate.NewLimiter(rate.Every(time.Second/1), requestsPerSecond),
	}
}

// GenerateContent issues exactly one model call through the rate limiter.
//
// The limiter wait honors the request context, so a cancelled or timed-out
// request stops queueing instead of holding a connection. The call itself is
// never retried: any failure propagates to the caller, where the judgment
// pipeline's fallback step takes over.
//
// Inputs:
//   - ctx: The context for the request.
//   - content: The parts of the multi-modal prompt (text, images, etc.).
//
// Outputs:
//   - *genai.GenerateContentResponse: The response from the AI model if successful.
//   - error: The limiter wait error or the model call error, unwrapped.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (*genai.GenerateContentResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	return q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerativeContentConfig)
}
