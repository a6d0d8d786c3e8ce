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

// Package cor (Chain of Responsibility) is the pipeline framework the
// analysis workflows are built on. This file defines `BaseChain`, the
// default Chain implementation.
//
// Logic Flow:
//  1. `Execute` opens an OpenTelemetry span covering the whole chain run.
//  2. Commands run in order. Each gets its own child span, and the shared
//     context's Go context is swapped to that span for the duration of the
//     command, then restored, so command traces sit side by side under the
//     chain span rather than nesting into each other.
//  3. A recorded error stops the chain: remaining commands are skipped with
//     an error status on their span. Steps that must not stop the pipeline
//     (the model call, whose failure hands over to the fallback) signal by
//     leaving their output absent instead of recording an error.
//  4. Between commands the chain pipes data forward: whatever the finished
//     command left under `CtxOut` becomes the next command's `CtxIn`, and
//     both keys are cleared of stale values.
//  5. When the loop ends the chain span status reflects whether the context
//     collected any errors.
package cor

import (
	"fmt"

	"go.opentelemetry.io/otel/codes"
)

// BaseChain executes an ordered list of commands over one shared context.
type BaseChain struct {
	BaseCommand
	commands []Command // The commands, in execution order.
}

// NewBaseChain is the constructor for BaseChain.
//
// Inputs:
//   - name: The chain name used for its span and metrics.
//
// Outputs:
//   - *BaseChain: A pointer to the newly instantiated chain.
func NewBaseChain(name string) *BaseChain {
	return &BaseChain{BaseCommand: *NewBaseCommand(name)}
}

// AddCommand appends a command to the execution sequence.
//
// Inputs:
//   - command: A component that implements the `Command` interface.
//
// Outputs:
//   - Chain: The chain itself, so construction reads as a fluent sequence.
func (c *BaseChain) AddCommand(command Command) Chain {
	c.commands = append(c.commands, command)
	return c
}

// IsExecutable reports whether the chain can run, which only requires a live
// Go context on the shared state.
func (c *BaseChain) IsExecutable(context Context) bool {
	return context.GetContext() != nil
}

// Execute runs every command in order, handling tracing, the stop-on-error
// rule, and the output-to-input piping between steps.
//
// Inputs:
//   - chCtx: The shared `cor.Context` for this pipeline execution.
func (c *BaseChain) Execute(chCtx Context) {
	parentCtx := chCtx.GetContext()

	outerCtx, chainSpan := c.Tracer.Start(parentCtx, fmt.Sprintf("%s_execute", c.GetName()))
	defer chainSpan.End()

	for _, command := range c.commands {
		commandContext, commandSpan := c.Tracer.Start(outerCtx, command.GetName())
		commandSpan.SetName(command.GetName())

		// A recorded failure from an earlier step ends the run.
		if chCtx.HasErrors() {
			commandSpan.SetStatus(codes.Error, "previous error on chain; skipping execution")
			commandSpan.End()
			break
		}

		if command.IsExecutable(chCtx) {
			// Run the command under its own span, then restore the chain's
			// context so the next command's span is a sibling, not a child.
			chCtx.SetContext(commandContext)
			command.Execute(chCtx)
			chCtx.SetContext(outerCtx)
		} else {
			// Preconditions not met. The skip is visible in the trace but is
			// not a chain error.
			commandSpan.SetStatus(codes.Error, fmt.Sprintf("command not executable: %s", command.GetName()))
		}

		if chCtx.HasErrors() {
			commandSpan.SetStatus(codes.Error, "error during or after command execution")
		} else {
			commandSpan.SetStatus(codes.Ok, "command completed successfully")
		}
		commandSpan.End()

		// Pipe the finished command's output into the next command's input
		// and clear both reserved keys of stale values.
		outputValue := chCtx.Get(CtxOut)
		chCtx.Remove(CtxIn)
		if outputValue != nil {
			chCtx.Add(CtxIn, outputValue)
		}
		chCtx.Remove(CtxOut)
	}

	if !chCtx.HasErrors() {
		chainSpan.SetStatus(codes.Ok, "chain completed successfully")
	} else {
		chainSpan.SetStatus(codes.Error, "chain failed to execute")
	}
}
