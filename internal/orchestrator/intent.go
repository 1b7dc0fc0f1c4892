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

// intentDetectionNode is the graph's entry node: it classifies the input
// exactly once (spec §3 invariant c) and never appends a message itself —
// it only decides which handler runs next.
func (o *Orchestrator) intentDetectionNode(ctx context.Context, state *model.AgentState) error {
	decision := o.collab.Classifier.Classify(ctx, state.UserInput)
	state.SetIntent(decision.Intent)
	return nil
}
