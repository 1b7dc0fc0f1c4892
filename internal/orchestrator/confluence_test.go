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
	"github.com/kadirpekel/ticketflow/internal/wikiapi"
)

func TestConfluenceCreationNodeCreatesPageDirect(t *testing.T) {
	o := &Orchestrator{collab: Collaborators{
		WikiAPI:    &fakeWikiAPI{createResult: wikiapi.Result{ID: "98765", Link: "https://example.atlassian.net/wiki/spaces/ENG/pages/98765"}},
		Dispatcher: dispatcher.New(dispatcher.Config{UseRemote: false}),
	}}

	state := model.NewAgentState(model.Request{UserInput: "document the login bug"}, 10)
	state.GeneratedTicket = &model.GeneratedTicket{Summary: "Fix login bug", Description: "details"}
	state.JiraResult = &model.ToolResult{Success: true, ID: "PROJ-1"}

	err := o.confluenceCreationNode(context.Background(), state)

	require.NoError(t, err)
	require.NotNil(t, state.ConfluenceResult)
	require.True(t, state.ConfluenceResult.Success)
	require.Equal(t, "98765", state.ConfluenceResult.ID)
	reply, ok := state.LastAssistantMessage()
	require.True(t, ok)
	require.Contains(t, reply, "98765")
}

func TestConfluenceCreationNodeSurfacesDirectFailure(t *testing.T) {
	o := &Orchestrator{collab: Collaborators{
		WikiAPI:    &fakeWikiAPI{createErr: errBoom},
		Dispatcher: dispatcher.New(dispatcher.Config{UseRemote: false}),
	}}

	state := model.NewAgentState(model.Request{UserInput: "document the login bug"}, 10)
	state.GeneratedTicket = &model.GeneratedTicket{Summary: "Fix login bug"}
	state.JiraResult = &model.ToolResult{Success: true, ID: "PROJ-1"}

	err := o.confluenceCreationNode(context.Background(), state)

	require.NoError(t, err)
	require.False(t, state.ConfluenceResult.Success)
}

func TestIsHostedVariantNameDetectsCamelCase(t *testing.T) {
	require.True(t, isHostedVariantName("createConfluencePage"))
	require.True(t, isHostedVariantName("ConfluenceRovoCreatePage"))
	require.False(t, isHostedVariantName("create_page"))
}

func TestSchemaPrefersMarkdownChecksEnum(t *testing.T) {
	schema := model.NewSchema(
		[]string{"contentFormat"},
		map[string]model.SchemaProperty{
			"contentFormat": {Type: "string", Enum: []string{"storage", "markdown"}},
		},
		nil,
	)
	require.True(t, schemaPrefersMarkdown(schema))

	schema2 := model.NewSchema(
		[]string{"contentFormat"},
		map[string]model.SchemaProperty{"contentFormat": {Type: "string", Enum: []string{"storage"}}},
		nil,
	)
	require.False(t, schemaPrefersMarkdown(schema2))
}

func TestRenderTicketBodyIncludesAllSections(t *testing.T) {
	body := renderTicketBody(&model.GeneratedTicket{
		Summary:            "Title",
		Description:        "Desc",
		AcceptanceCriteria: []string{"A", "B"},
		BusinessValue:      "Value",
		InvestAnalysis:     "Invest",
	})
	require.Contains(t, body, "<h1>Title</h1>")
	require.Contains(t, body, "<li>A</li>")
	require.Contains(t, body, "Business Value")
	require.Contains(t, body, "INVEST Analysis")
}
