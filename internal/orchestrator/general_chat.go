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
	"time"

	"github.com/kadirpekel/ticketflow/internal/model"
)

// generalChatTimeout bounds the conversational fallback LLM call.
const generalChatTimeout = 60 * time.Second

const generalChatSystemPrompt = `You are a helpful assistant for a software team's ticketing and knowledge ` +
	`tools. Answer the user's message directly and concisely. If it sounds like a ticket or wiki request, ` +
	`you may suggest rephrasing it that way, but still answer what was asked.`

// generalChatNode is the catch-all conversational handler: every other
// intent either doesn't apply or its required capability is unavailable
// (spec §4.3 edge table, default fallback).
func (o *Orchestrator) generalChatNode(ctx context.Context, state *model.AgentState) error {
	if o.collab.ContentLLM == nil {
		state.AppendMessage(model.RoleAssistant, "I'm not sure how to help with that right now.")
		return nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, generalChatTimeout)
	defer cancel()

	reply, err := o.collab.ContentLLM.Generate(llmCtx, generalChatSystemPrompt, state.UserInput, 0.7, false)
	if err != nil {
		state.AppendMessage(model.RoleAssistant, "I'm having trouble answering that right now. Could you try rephrasing?")
		return nil
	}

	state.AppendMessage(model.RoleAssistant, reply)
	return nil
}
