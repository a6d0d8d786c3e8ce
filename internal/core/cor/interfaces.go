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

// Package cor (Chain of Responsibility) is the pipeline framework every
// analysis workflow in this repo is built on: the synchronous video analysis
// chain, the segment judgment chain, and the background job runner are all
// sequences of commands executed over a shared context. This file defines
// the interfaces those pieces implement.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the reserved keys that carry the primary value
// flowing through a chain.
const (
	// CtxIn is the default input key. Between commands the chain moves the
	// previous command's output here, so a video URL piped in by a handler
	// becomes a local file path, then a frame list, then a prompt, as the
	// chain advances.
	CtxIn = "__IN__"
	// CtxOut is the default output key. A command that produces a primary
	// value for its successor places it here.
	CtxOut = "__OUT__"
)

// Context is the shared state for one pipeline execution. It carries the
// values commands exchange, the errors they record, and the temporary files
// (downloaded videos, sampled frames) that must be removed when the
// execution finishes.
type Context interface {
	// SetContext stores the request-scoped Go context, which carries
	// cancellation and the active OpenTelemetry span.
	SetContext(context context.Context)

	// GetContext returns the stored Go context.
	GetContext() context.Context

	// Add stores a value under a key and returns the Context for chaining.
	Add(key string, value interface{}) Context

	// AddError records a command failure. The key is the name of the
	// command that failed.
	AddError(key string, err error)

	// GetErrors returns every recorded failure, keyed by command name.
	GetErrors() map[string]error

	// Get returns the value stored under a key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under a key.
	Remove(key string)

	// HasErrors reports whether any command recorded a failure.
	HasErrors() bool

	// AddTempFile registers a file to delete when the execution finishes.
	AddTempFile(file string)

	// GetTempFiles returns every registered temporary file path.
	GetTempFiles() []string

	// Close removes the registered temporary files. Callers defer it as
	// soon as the context is created.
	Close()
}

// Executable is anything with a single unit of pipeline work.
type Executable interface {
	// Execute reads its inputs from the Context and writes its results back.
	Execute(context Context)
}

// Command is an atomic pipeline step: fetch a video, extract frames, render
// a prompt, call the model. Commands are instrumented and self-describing so
// a chain can run, trace, and meter them uniformly.
type Command interface {
	Executable

	// GetName identifies the command in logs, traces, and error maps.
	GetName() string

	// GetInputParam names the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam names the context key the command writes its primary
	// output to.
	GetOutputParam() string

	// IsExecutable reports whether the context holds what the command
	// needs. A chain skips commands whose preconditions are not met.
	IsExecutable(context Context) bool

	// GetTracer returns the command's OpenTelemetry tracer.
	GetTracer() trace.Tracer

	// GetMeter returns the command's OpenTelemetry meter.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter incremented on success.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter incremented on failure.
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands, itself a Command so pipelines
// can nest. A chain stops at the first command that records an error;
// soft-failure steps (like the model call) signal by leaving their output
// absent instead of recording an error.
type Chain interface {
	Command

	// AddCommand appends a command to the execution sequence and returns
	// the chain for fluent construction.
	AddCommand(command Command) Chain
}
