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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kadirpekel/ticketflow/internal/dispatcher"
	"github.com/kadirpekel/ticketflow/internal/model"
	"github.com/kadirpekel/ticketflow/internal/ticketapi"
)

// ticketGenerationTimeout bounds the content LLM call (spec §5 "LLM
// content generation calls: 60-90s").
const ticketGenerationTimeout = 90 * time.Second

// ticketCreateTimeout is the per-call timeout for the create_ticket tool
// invocation (spec §4.4 invocation step 1: "60s for ticket creation").
const ticketCreateTimeout = 60 * time.Second

const ticketGenerationSystemPrompt = `You write well-formed ticket content for a software team's backlog. ` +
	`Given the user's request, respond with a single JSON object with exactly these keys: ` +
	`summary, description, priority, acceptance_criteria (a list of short strings), business_value, invest_analysis. ` +
	`priority must be one of: Highest, High, Medium, Low, Lowest.`

// jiraCreationNode asks the content LLM to draft a ticket, then dispatches
// its creation (spec §4.4 "Preparation (ticket creation)").
func (o *Orchestrator) jiraCreationNode(ctx context.Context, state *model.AgentState) error {
	ticket, err := o.generateTicket(ctx, state.UserInput)
	if err != nil {
		state.JiraResult = &model.ToolResult{
			Success:      false,
			ErrorKind:    model.ErrorKindInternal,
			ErrorMessage: err.Error(),
			ToolUsed:     model.ToolUsedDirectAPI,
		}
		state.AppendMessage(model.RoleAssistant, model.ErrorKindInternal.FriendlyMessage())
		return nil
	}
	state.GeneratedTicket = &ticket

	data := map[string]any{
		"summary":             ticket.Summary,
		"description":         ticket.Description,
		"priority":            ticket.Priority,
		"acceptance_criteria": ticket.AcceptanceCriteria,
		"business_value":      ticket.BusinessValue,
		"invest_analysis":     ticket.InvestAnalysis,
	}

	tool, found := o.collab.Dispatcher.FindTool(ctx, model.ToolKindCreateTicket)
	result := o.collab.Dispatcher.Invoke(ctx, dispatcher.InvokeOpts{
		Kind:      model.ToolKindCreateTicket,
		Tool:      tool,
		ToolFound: found,
		Data:      data,
		Timeout:   ticketCreateTimeout,
		Direct:    o.createTicketDirect,
	})
	state.JiraResult = &result

	if result.Success {
		state.AppendMessage(model.RoleAssistant, fmt.Sprintf("Created ticket %s: %s", result.ID, result.Link))
	} else {
		state.AppendMessage(model.RoleAssistant, result.ErrorKind.FriendlyMessage())
	}
	return nil
}

func (o *Orchestrator) generateTicket(ctx context.Context, userInput string) (model.GeneratedTicket, error) {
	llmCtx, cancel := context.WithTimeout(ctx, ticketGenerationTimeout)
	defer cancel()

	text, err := o.collab.ContentLLM.Generate(llmCtx, ticketGenerationSystemPrompt, userInput, 0.3, true)
	if err != nil {
		return model.GeneratedTicket{}, fmt.Errorf("generate ticket content: %w", err)
	}

	return parseGeneratedTicket(text)
}

func parseGeneratedTicket(text string) (model.GeneratedTicket, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var ticket model.GeneratedTicket
	if err := json.Unmarshal([]byte(cleaned), &ticket); err != nil {
		return model.GeneratedTicket{}, fmt.Errorf("parse generated ticket json: %w", err)
	}
	return ticket, nil
}

// createTicketDirect adapts ticketapi.Client onto dispatcher.DirectCall,
// returning the "custom success" shape responseparse.go recognizes.
func (o *Orchestrator) createTicketDirect(ctx context.Context, args map[string]any) (map[string]any, error) {
	if o.collab.TicketAPI == nil {
		return nil, fmt.Errorf("ticket api not configured")
	}

	result, err := o.collab.TicketAPI.CreateTicket(ctx, ticketapi.CreateTicketInput{
		Summary:     stringField(args, "summary"),
		Description: stringField(args, "description"),
		Priority:    stringField(args, "priority"),
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"success": true,
		"id":      result.Key,
		"link":    result.Link,
		"title":   result.Key,
	}, nil
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
