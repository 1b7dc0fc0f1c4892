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

// Package orchestrator is the entry point (C1): it owns per-request state,
// drives the routing state machine under a global deadline, and always
// returns a reply — a deadline breach or handler panic becomes a friendly
// apology rather than an error the caller must handle.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/kadirpekel/ticketflow/internal/classifier"
	"github.com/kadirpekel/ticketflow/internal/dispatcher"
	"github.com/kadirpekel/ticketflow/internal/llmprovider"
	"github.com/kadirpekel/ticketflow/internal/model"
	"github.com/kadirpekel/ticketflow/internal/rag"
	"github.com/kadirpekel/ticketflow/internal/router"
)

// maxHistory bounds how many prior messages seed a new run (spec §4.1 step 1).
const maxHistory = 10

// globalDeadline is the hard per-request ceiling regardless of what the
// caller asked for (spec §4.1 step 2, §5 "Global per-request: 5 min").
const globalDeadline = 5 * time.Minute

// DelegationAgent is the optional collaborator the agent_delegation node
// calls out to. It is intentionally minimal: the delegation agent's own
// reasoning is out of core scope.
type DelegationAgent interface {
	Run(ctx context.Context, userInput string) (string, error)
}

// Collaborators bundles every external dependency the node handlers need.
// Ticketing, wiki, RAG, and delegation are individually optional; their
// absence is reflected in Capabilities and the router routes around them.
type Collaborators struct {
	ContentLLM llmprovider.Provider
	Classifier *classifier.Classifier
	Dispatcher *dispatcher.Dispatcher

	TicketAPI TicketCreator
	WikiAPI   WikiCreator
	// WikiSpaceKey is the Confluence space key the wiki tool creates pages
	// in; it seeds resolveSpaceID's getConfluenceSpaces/SpaceInfo lookup.
	WikiSpaceKey string

	RAG        rag.Retriever
	Delegation DelegationAgent

	Capabilities router.Capabilities
}

// Orchestrator drives one Router instance built from a fixed set of
// Collaborators.
type Orchestrator struct {
	collab Collaborators
	graph  *router.Router
}

// New wires the node handlers into a compiled Router.
func New(collab Collaborators) *Orchestrator {
	o := &Orchestrator{collab: collab}
	o.graph = router.New(router.Config{
		Caps:               collab.Capabilities,
		IntentDetection:    o.intentDetectionNode,
		JiraCreation:       o.jiraCreationNode,
		Evaluation:         o.evaluationNode,
		ConfluenceCreation: o.confluenceCreationNode,
		RAGQuery:           o.ragQueryNode,
		GeneralChat:        o.generalChatNode,
		AgentDelegation:    o.agentDelegationNode,
	})
	return o
}

// Handle is the sole inbound contract (spec §6): it never panics or
// returns an error to the caller. The returned AgentState is the
// diagnostics record — its *Result fields and Messages show what happened.
func (o *Orchestrator) Handle(ctx context.Context, req model.Request) (string, *model.AgentState) {
	state := model.NewAgentState(req, maxHistory)

	deadline := time.Now().Add(globalDeadline)
	if !req.Deadline.IsZero() && req.Deadline.Before(deadline) {
		deadline = req.Deadline
	}
	runCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- o.graph.Run(runCtx, state)
	}()

	select {
	case err := <-done:
		if err != nil {
			o.appendFailure(state, err)
		}
	case <-runCtx.Done():
		// Non-blocking shutdown: the Router goroutine is abandoned; its
		// eventual result, if any, is discarded once nothing reads `done`.
		slog.Warn("orchestrator: global deadline exceeded", "correlation_id", req.CorrelationID)
		state.AppendMessage(model.RoleAssistant, "This is taking longer than expected. Please try again in a moment.")
	}

	reply, ok := state.LastAssistantMessage()
	if !ok {
		reply = "Something unexpected happened and I don't have a response to give you. Please try again."
		state.AppendMessage(model.RoleAssistant, reply)
	}
	return reply, state
}

func (o *Orchestrator) appendFailure(state *model.AgentState, err error) {
	slog.Error("orchestrator: router run failed", "error", err, "correlation_id", state.CorrelationID)
	state.AppendMessage(model.RoleAssistant, model.ErrorKindInternal.FriendlyMessage())
}
