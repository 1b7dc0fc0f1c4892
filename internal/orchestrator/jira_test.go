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

package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/ticketflow/internal/dispatcher"
	"github.com/kadirpekel/ticketflow/internal/model"
	"github.com/kadirpekel/ticketflow/internal/ticketapi"
)

const ticketJSON = `{"summary":"Fix login bug","description":"Users can't log in on mobile.",` +
	`"priority":"High","acceptance_criteria":["Login succeeds on iOS","Login succeeds on Android"],` +
	`"business_value":"Restores a core flow for mobile users.","invest_analysis":"Independent and testable."}`

func TestJiraCreationNodeCreatesTicketDirect(t *testing.T) {
	o := &Orchestrator{collab: Collaborators{
		ContentLLM: &fakeLLM{text: ticketJSON},
		TicketAPI:  &fakeTicketAPI{result: ticketapi.Result{ID: "10001", Key: "PROJ-1", Link: "https://example.atlassian.net/browse/PROJ-1"}},
		Dispatcher: dispatcher.New(dispatcher.Config{UseRemote: false}),
	}}

	state := model.NewAgentState(model.Request{UserInput: "please file a ticket for the login bug"}, 10)
	err := o.jiraCreationNode(context.Background(), state)

	require.NoError(t, err)
	require.NotNil(t, state.JiraResult)
	require.True(t, state.JiraResult.Success)
	require.Equal(t, "PROJ-1", state.JiraResult.ID)
	require.NotNil(t, state.GeneratedTicket)
	require.Equal(t, "Fix login bug", state.GeneratedTicket.Summary)
	reply, ok := state.LastAssistantMessage()
	require.True(t, ok)
	require.Contains(t, reply, "PROJ-1")
}

func TestJiraCreationNodeHandlesGenerationFailure(t *testing.T) {
	o := &Orchestrator{collab: Collaborators{
		ContentLLM: &fakeLLM{text: "not json"},
		TicketAPI:  &fakeTicketAPI{},
		Dispatcher: dispatcher.New(dispatcher.Config{UseRemote: false}),
	}}

	state := model.NewAgentState(model.Request{UserInput: "file a ticket"}, 10)
	err := o.jiraCreationNode(context.Background(), state)

	require.NoError(t, err)
	require.NotNil(t, state.JiraResult)
	require.False(t, state.JiraResult.Success)
	require.Nil(t, state.GeneratedTicket)
	_, ok := state.LastAssistantMessage()
	require.True(t, ok)
}

func TestJiraCreationNodeSurfacesDirectAPIFailure(t *testing.T) {
	o := &Orchestrator{collab: Collaborators{
		ContentLLM: &fakeLLM{text: ticketJSON},
		TicketAPI:  &fakeTicketAPI{err: errBoom},
		Dispatcher: dispatcher.New(dispatcher.Config{UseRemote: false}),
	}}

	state := model.NewAgentState(model.Request{UserInput: "file a ticket"}, 10)
	err := o.jiraCreationNode(context.Background(), state)

	require.NoError(t, err)
	require.False(t, state.JiraResult.Success)
}
