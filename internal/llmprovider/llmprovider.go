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

// Package llmprovider defines the single-method LLM collaborator interface
// the orchestrator and classifier depend on, plus one concrete HTTP-based
// adapter for Anthropic. The core depends only on Provider's signature, never
// on a vendor SDK type.
package llmprovider

import "context"

// Provider is the synchronous text-completion collaborator every component
// that needs an LLM call depends on (spec §6 "LLM provider (collaborator)").
type Provider interface {
	// Generate issues one completion call. jsonMode asks the provider to
	// constrain output to a JSON object, when supported.
	Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, jsonMode bool) (string, error)
}
