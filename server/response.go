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

// Package main contains the response envelope shared by all API handlers.
// Every endpoint answers with the same {code, message, data} shape so
// clients can branch on the code without inspecting HTTP status text.
package main

// Machine-readable response codes.
const (
	CodeOk                = "OK"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeAnalysisFailed    = "ANALYSIS_FAILED"
	CodeResourceNotFound  = "RESOURCE_NOT_FOUND"
	CodeInternalError     = "INTERNAL_ERROR"
)

// Response is the envelope returned by every API endpoint.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OkResponse wraps a payload in a success envelope.
func OkResponse(data any) Response {
	return Response{Code: CodeOk, Message: "success", Data: data}
}

// ErrResponse builds an error envelope with no payload.
func ErrResponse(code string, message string) Response {
	return Response{Code: code, Message: message}
}
