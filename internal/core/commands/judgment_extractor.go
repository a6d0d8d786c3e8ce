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
// command that invokes the generative model and parses a Judgment out of its
// free-form response.
//
// Logic Flow:
//  1. Receive the rendered prompt text from the context. If sampled frames
//     are present on the context, read each frame image and attach it to the
//     request as an inline JPEG part.
//  2. Make exactly one model call through the quota-aware wrapper.
//  3. Scan the response text for the first balanced JSON object substring and
//     unmarshal it into a `model.Judgment`, then normalize field defaults.
//  4. On any failure (call error, no JSON found, parse error) the command
//     logs the outcome and returns WITHOUT adding a chain error and WITHOUT
//     placing a judgment on the context. The absent judgment key is the
//     visible signal that makes the downstream fallback command generate a
//     substitute; a model failure never fails the request.
package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-viral-insights/internal/cloud"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/cor"
	"github.com/jaycherian/gcp-go-viral-insights/internal/core/model"
)

// JudgmentExtractor is a command that sends the analysis prompt (and any
// sampled frames) to the generative model and parses the returned JSON.
type JudgmentExtractor struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
}

// NewJudgmentExtractor is the constructor for the JudgmentExtractor command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - generativeAIModel: The rate-limited wrapper for the generative model client.
//
// Outputs:
//   - *JudgmentExtractor: A pointer to the newly instantiated command, including initialized telemetry counters.
func NewJudgmentExtractor(name string, generativeAIModel *cloud.QuotaAwareGenerativeAIModel) *JudgmentExtractor {
	out := &JudgmentExtractor{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: generativeAIModel,
	}
	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	return out
}

// Execute makes the single model call and attempts to parse a Judgment from
// the response. Failure is soft: the command records the error counter and
// leaves the judgment key absent so the fallback command takes over.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *JudgmentExtractor) Execute(context cor.Context) {
	prompt := context.Get(t.GetInputParam()).(string)

	contents := cloud.NewTextContent(prompt)

	// When the synchronous path sampled frames, attach them as inline JPEG
	// data so the model sees the actual images alongside the prompt text.
	if raw := context.Get(FramesParamName); raw != nil {
		frames := raw.([]*model.Frame)
		for _, frame := range frames {
			data, err := os.ReadFile(frame.ImagePath)
			if err != nil {
				slog.Warn("skipping unreadable frame image", "path", frame.ImagePath, "error", err)
				continue
			}
			contents[0].Parts = append(contents[0].Parts, cloud.NewInlineImage(data, "image/jpeg"))
		}
	}

	out, err := cloud.GenerateMultiModalResponse(
		context.GetContext(),
		t.geminiInputTokenCounter,
		t.geminiOutputTokenCounter,
		t.generativeAIModel,
		contents)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		slog.Warn("model call failed, falling back to deterministic judgment", "command", t.GetName(), "error", err)
		return
	}

	judgment, ok := ParseJudgment(out)
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		slog.Warn("no parsable judgment in model response", "command", t.GetName(), "response_bytes", len(out))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.Info("judgment extracted", "command", t.GetName(), "hook_score", judgment.HookScore, "factors", len(judgment.ViralFactors))
	context.Add(JudgmentParamName, judgment)
	context.Add(t.GetOutputParam(), judgment)
}

// ParseJudgment scans free-form model output for the first balanced JSON
// object substring and coerces it into a normalized Judgment.
//
// Inputs:
//   - text: The raw response text, possibly wrapped in prose or fences.
//
// Outputs:
//   - *model.Judgment: The parsed and normalized judgment.
//   - bool: False when no valid JSON object could be located or parsed.
func ParseJudgment(text string) (*model.Judgment, bool) {
	raw, ok := ScanJSONObject(text)
	if !ok {
		return nil, false
	}
	judgment := &model.Judgment{}
	if err := json.Unmarshal([]byte(raw), judgment); err != nil {
		return nil, false
	}
	return judgment.Normalize(), true
}

// ScanJSONObject finds the first balanced `{...}` substring in the input,
// respecting string literals and escapes so braces inside values do not
// unbalance the scan.
//
// Inputs:
//   - text: The text to scan.
//
// Outputs:
//   - string: The candidate JSON object substring.
//   - bool: False when the text contains no balanced object.
func ScanJSONObject(text string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i, r := range text {
		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}
	return "", false
}
