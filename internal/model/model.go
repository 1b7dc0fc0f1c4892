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

// Package model defines the data shapes threaded through the orchestrator:
// the immutable Request, the mutable AgentState, and the tool-facing
// ToolDescriptor/ToolResult envelopes. Types are tagged structs rather than
// duck-typed maps so the compiler enforces the shapes the router and
// dispatcher depend on.
package model

import "time"

// Role tags a message's author within a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in a conversation.
type Message struct {
	Role    Role
	Content string
}

// Request is the immutable input to a single orchestrator invocation.
type Request struct {
	UserInput     string
	History       []Message
	Deadline      time.Time
	CorrelationID string
}

// Intent is the fixed set of categories the classifier assigns.
type Intent string

const (
	IntentJiraCreation    Intent = "jira_creation"
	IntentRAGQuery        Intent = "rag_query"
	IntentGeneralChat     Intent = "general_chat"
	IntentAgentDelegation Intent = "agent_delegation"
	IntentUnknown         Intent = "unknown"
)

// IntentSource records which stage of the classifier pipeline produced a decision.
type IntentSource string

const (
	SourceKeyword IntentSource = "keyword"
	SourceLLM     IntentSource = "llm"
	SourceCache   IntentSource = "cache"
	SourceDefault IntentSource = "default"
)

// IntentDecision is the classifier's verdict on a single user input.
type IntentDecision struct {
	Intent     Intent
	Confidence float64
	Reason     string
	Source     IntentSource
}

// GeneratedTicket is the shape the ticket-content LLM call produces (spec
// §4.4 step 1). The core never judges its quality, only its shape.
type GeneratedTicket struct {
	Summary           string   `json:"summary"`
	Description       string   `json:"description"`
	Priority          string   `json:"priority"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	BusinessValue     string   `json:"business_value"`
	InvestAnalysis    string   `json:"invest_analysis"`
}

// EvaluationResult is the outcome of scoring a generated ticket. Routing to
// Confluence page creation does not consult it; that edge depends only on
// the ticket result and wiki availability.
type EvaluationResult struct {
	Success  bool
	Score    int
	Feedback string
}

// AgentState is the single mutable record threaded through the routing
// graph. Messages is append-only during a run; Intent is set at most once;
// each handler writes at most one of the *Result fields it owns.
type AgentState struct {
	UserInput string
	Messages  []Message
	History   []Message

	Intent *Intent

	JiraResult       *ToolResult
	ConfluenceResult *ToolResult
	EvaluationResult *EvaluationResult
	RAGContext       *string
	AgentResult      *string

	GeneratedTicket *GeneratedTicket

	// NextAction is the router's private hint for which node to visit next.
	NextAction string

	CorrelationID string
}

// NewAgentState seeds state from a Request, copying at most the most recent
// maxHistory entries into Messages per spec §4.1 step 1.
func NewAgentState(req Request, maxHistory int) *AgentState {
	history := req.History
	if maxHistory > 0 && len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	messages := make([]Message, len(history))
	copy(messages, history)

	return &AgentState{
		UserInput:     req.UserInput,
		Messages:      messages,
		History:       req.History,
		CorrelationID: req.CorrelationID,
	}
}

// AppendMessage enforces the append-only invariant on Messages.
func (s *AgentState) AppendMessage(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// LastAssistantMessage returns the final assistant-tagged message, which the
// orchestrator always returns as its reply (spec §3 invariant d, §8).
func (s *AgentState) LastAssistantMessage() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i].Content, true
		}
	}
	return "", false
}

// SetIntent sets the intent exactly once; later calls are no-ops so handlers
// further down the graph cannot clobber the routing decision.
func (s *AgentState) SetIntent(intent Intent) {
	if s.Intent != nil {
		return
	}
	s.Intent = &intent
}
