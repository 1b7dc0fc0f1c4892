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
	"strings"

	"github.com/kadirpekel/ticketflow/internal/model"
)

// evaluationNode scores the generated ticket's completeness. It never
// gates the confluence_creation edge itself — the router decides that from
// jira_result.success and the wiki capability alone (spec §4.3) — it only
// records a diagnostic and appends a message summarizing the outcome.
func (o *Orchestrator) evaluationNode(ctx context.Context, state *model.AgentState) error {
	if state.JiraResult == nil || !state.JiraResult.Success {
		return nil
	}

	result := scoreTicket(state.GeneratedTicket)
	state.EvaluationResult = &result

	if result.Success {
		state.AppendMessage(model.RoleAssistant, "The ticket content looks complete.")
	} else {
		state.AppendMessage(model.RoleAssistant, "The ticket was created, though some content fields looked thin: "+result.Feedback)
	}
	return nil
}

// scoreTicket is a fixed, deterministic completeness check: content
// generation quality itself is out of scope (spec §1 Non-goals), so this
// only confirms the shape the LLM was asked for actually came back filled
// in, not whether the wording is good.
func scoreTicket(ticket *model.GeneratedTicket) model.EvaluationResult {
	if ticket == nil {
		return model.EvaluationResult{Success: false, Score: 0, Feedback: "no generated ticket content to evaluate"}
	}

	var missing []string
	checks := []struct {
		name   string
		filled bool
	}{
		{"summary", ticket.Summary != ""},
		{"description", ticket.Description != ""},
		{"priority", ticket.Priority != ""},
		{"acceptance criteria", len(ticket.AcceptanceCriteria) > 0},
		{"business value", ticket.BusinessValue != ""},
		{"INVEST analysis", ticket.InvestAnalysis != ""},
	}

	filledCount := 0
	for _, c := range checks {
		if c.filled {
			filledCount++
		} else {
			missing = append(missing, c.name)
		}
	}

	score := (filledCount * 100) / len(checks)
	return model.EvaluationResult{
		Success:  len(missing) == 0,
		Score:    score,
		Feedback: feedbackFor(missing),
	}
}

func feedbackFor(missing []string) string {
	if len(missing) == 0 {
		return ""
	}
	return "missing " + strings.Join(missing, ", ")
}
