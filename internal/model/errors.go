// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

// ErrorKind classifies a tool failure into one of a fixed set of buckets so
// the orchestrator can present a friendly, non-leaky message regardless of
// which backend produced the failure.
type ErrorKind string

const (
	ErrorKindNone             ErrorKind = ""
	ErrorKindTimeout          ErrorKind = "timeout"
	ErrorKindProtocolError    ErrorKind = "protocol_error"
	ErrorKindSchemaValidation ErrorKind = "schema_validation"
	ErrorKindAuthError        ErrorKind = "auth_error"
	ErrorKindRateLimit        ErrorKind = "rate_limit"
	ErrorKindConnectionError  ErrorKind = "connection_error"
	ErrorKindToolUnavailable  ErrorKind = "tool_unavailable"
	ErrorKindConflict         ErrorKind = "conflict"
	ErrorKindInternal         ErrorKind = "internal"
)

// friendlyTemplates holds the fixed, user-facing wording for each
// ErrorKind. The raw underlying error is never substituted in; it is only
// ever logged, never returned to the user.
var friendlyTemplates = map[ErrorKind]string{
	ErrorKindTimeout:          "The request took too long to complete. Please try again in a moment.",
	ErrorKindProtocolError:    "Something went wrong while talking to the tool service. Please try again.",
	ErrorKindSchemaValidation: "I couldn't put together valid inputs for that action. Could you rephrase your request?",
	ErrorKindAuthError:        "I wasn't able to authenticate with the tool service. Please check the configured credentials.",
	ErrorKindRateLimit:        "The tool service is rate-limiting requests right now. Please try again shortly.",
	ErrorKindConnectionError:  "I couldn't reach the tool service. Please check connectivity and try again.",
	ErrorKindToolUnavailable:  "That action isn't available right now.",
	ErrorKindConflict:        "That item already seems to exist. The tool service may have succeeded even though this call couldn't confirm it.",
	ErrorKindInternal:         "Something unexpected happened. Please try again.",
}

// FriendlyMessage returns the fixed user-facing template for a kind,
// falling back to the internal-error template for unrecognized kinds.
func (k ErrorKind) FriendlyMessage() string {
	if msg, ok := friendlyTemplates[k]; ok && msg != "" {
		return msg
	}
	return friendlyTemplates[ErrorKindInternal]
}
