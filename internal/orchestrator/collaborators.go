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

	"github.com/kadirpekel/ticketflow/internal/ticketapi"
	"github.com/kadirpekel/ticketflow/internal/wikiapi"
)

// TicketCreator is the direct-API ticket collaborator; *ticketapi.Client
// satisfies it without any adapter.
type TicketCreator interface {
	CreateTicket(ctx context.Context, input ticketapi.CreateTicketInput) (ticketapi.Result, error)
}

// WikiCreator is the direct-API wiki collaborator; *wikiapi.Client
// satisfies it without any adapter.
type WikiCreator interface {
	CreatePage(ctx context.Context, input wikiapi.CreatePageInput) (wikiapi.Result, error)
	TenantInfo(ctx context.Context) (string, error)
	SpaceInfo(ctx context.Context, key string) (string, error)
}
