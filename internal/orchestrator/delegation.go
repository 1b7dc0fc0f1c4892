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

// agentDelegationNode hands the request off to a configured delegation
// agent. The router only routes here when Capabilities.Delegation is true,
// but this handler still checks for a nil collaborator defensively — the
// capability flag and the collaborator are set independently by the
// composition root.
func (o *Orchestrator) agentDelegationNode(ctx context.Context, state *model.AgentState) error {
	if o.collab.Delegation == nil {
		state.AppendMessage(model.RoleAssistant, "Delegation isn't available right now.")
		return nil
	}

	reply, err := o.collab.Delegation.Run(ctx, state.UserInput)
	if err != nil {
		state.AppendMessage(model.RoleAssistant, model.ErrorKindInternal.FriendlyMessage())
		return nil
	}

	state.AgentResult = &reply
	state.AppendMessage(model.RoleAssistant, reply)
	return nil
}
