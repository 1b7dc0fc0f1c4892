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

// Package router is the conditional-edge graph engine (C3): one entry node,
// a fixed set of handler nodes, and one terminal sink. The graph has no
// cycles, but a hop counter bounds traversal anyway as a defensive backstop
// against a future edge that introduces one.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/kadirpekel/ticketflow/internal/model"
)

// Node names. These are the graph's only vertices; sink ("") is reached by
// any node with no outgoing conditional edge.
const (
	NodeIntentDetection    = "intent_detection"
	NodeJiraCreation       = "jira_creation"
	NodeEvaluation         = "evaluation"
	NodeConfluenceCreation = "confluence_creation"
	NodeRAGQuery           = "rag_query"
	NodeGeneralChat        = "general_chat"
	NodeAgentDelegation    = "agent_delegation"

	sink = ""
)

// HopLimit bounds the number of node transitions a single run may make.
const HopLimit = 10

// ErrHopLimitExceeded is returned when a run would exceed HopLimit
// transitions. The graph is acyclic, so this only fires if a future edge
// introduces a cycle.
var ErrHopLimitExceeded = errors.New("router: hop limit exceeded")

// Handler executes one node's work against the shared state. It must not
// panic across the router boundary; any error it returns ends the run.
type Handler func(ctx context.Context, state *model.AgentState) error

// Capabilities reports which external capabilities are wired up, since the
// entry node and the evaluation node both route around handlers that have
// nothing to act against.
type Capabilities struct {
	Ticketing  bool
	Wiki       bool
	RAG        bool
	Delegation bool
}

// Config supplies one handler per node plus the capability set used to
// resolve conditional edges.
type Config struct {
	Caps Capabilities

	IntentDetection    Handler
	JiraCreation       Handler
	Evaluation         Handler
	ConfluenceCreation Handler
	RAGQuery           Handler
	GeneralChat        Handler
	AgentDelegation    Handler
}

// Router is the compiled state graph.
type Router struct {
	handlers map[string]Handler
	caps     Capabilities
}

// New compiles a Router from cfg.
func New(cfg Config) *Router {
	return &Router{
		caps: cfg.Caps,
		handlers: map[string]Handler{
			NodeIntentDetection:    cfg.IntentDetection,
			NodeJiraCreation:       cfg.JiraCreation,
			NodeEvaluation:         cfg.Evaluation,
			NodeConfluenceCreation: cfg.ConfluenceCreation,
			NodeRAGQuery:           cfg.RAGQuery,
			NodeGeneralChat:        cfg.GeneralChat,
			NodeAgentDelegation:    cfg.AgentDelegation,
		},
	}
}

// Run walks the graph from intent_detection to the sink, running each
// node's handler in turn and resolving the next node from state after each
// one returns. It stops on the first handler error, a missing handler, a
// recovered panic, or HopLimit transitions.
func (r *Router) Run(ctx context.Context, state *model.AgentState) error {
	node := NodeIntentDetection
	hops := HopLimit

	for node != sink {
		if hops <= 0 {
			return ErrHopLimitExceeded
		}
		hops--

		handler, ok := r.handlers[node]
		if !ok || handler == nil {
			return fmt.Errorf("router: no handler registered for node %q", node)
		}

		if err := r.invoke(ctx, handler, node, state); err != nil {
			return err
		}

		node = r.next(node, state)
	}

	return nil
}

// invoke runs a single handler, converting any panic into an error so one
// misbehaving node cannot take down the caller's goroutine.
func (r *Router) invoke(ctx context.Context, handler Handler, node string, state *model.AgentState) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("router: node %q panicked: %v", node, rec)
		}
	}()
	return handler(ctx, state)
}

// next resolves the edge out of the current node.
func (r *Router) next(current string, state *model.AgentState) string {
	switch current {
	case NodeIntentDetection:
		return r.routeByIntent(state)
	case NodeJiraCreation:
		return NodeEvaluation
	case NodeEvaluation:
		if state.JiraResult != nil && state.JiraResult.Success && r.caps.Wiki {
			return NodeConfluenceCreation
		}
		return sink
	default:
		return sink
	}
}

// routeByIntent picks the handler for state.Intent, falling back to
// general_chat when the intent's handler has no backing capability.
func (r *Router) routeByIntent(state *model.AgentState) string {
	if state.Intent == nil {
		return NodeGeneralChat
	}

	switch *state.Intent {
	case model.IntentJiraCreation:
		if r.caps.Ticketing {
			return NodeJiraCreation
		}
	case model.IntentRAGQuery:
		if r.caps.RAG {
			return NodeRAGQuery
		}
	case model.IntentAgentDelegation:
		if r.caps.Delegation {
			return NodeAgentDelegation
		}
	}

	return NodeGeneralChat
}
