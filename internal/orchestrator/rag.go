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

	"github.com/kadirpekel/ticketflow/internal/model"
)

// ragTopK bounds how many matches GetContext draws from.
const ragTopK = 3

// ragQueryNode answers a question from the configured knowledge base. The
// retrieval algorithm itself is out of core scope (spec §1 Non-goals); this
// node only plumbs the query through and always leaves a reply behind,
// even when nothing relevant was found.
func (o *Orchestrator) ragQueryNode(ctx context.Context, state *model.AgentState) error {
	if o.collab.RAG == nil {
		state.AppendMessage(model.RoleAssistant, "I don't have a knowledge base configured to answer that from.")
		return nil
	}

	context_, found := o.collab.RAG.GetContext(ctx, state.UserInput, ragTopK)
	if !found {
		state.AppendMessage(model.RoleAssistant, "I couldn't find anything relevant to that in the knowledge base.")
		return nil
	}

	state.RAGContext = &context_
	state.AppendMessage(model.RoleAssistant, context_)
	return nil
}
