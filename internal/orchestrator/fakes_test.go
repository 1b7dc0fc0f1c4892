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
	"errors"

	"github.com/kadirpekel/ticketflow/internal/rag"
	"github.com/kadirpekel/ticketflow/internal/ticketapi"
	"github.com/kadirpekel/ticketflow/internal/wikiapi"
)

// errBoom is a generic sentinel for tests that only need a non-nil error.
var errBoom = errors.New("boom")

// fakeLLM is a canned llmprovider.Provider for deterministic tests.
type fakeLLM struct {
	text string
	err  error
	n    int
}

func (f *fakeLLM) Generate(ctx context.Context, systemPrompt, userPrompt string, temperature float64, jsonMode bool) (string, error) {
	f.n++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeTicketAPI is a canned TicketCreator.
type fakeTicketAPI struct {
	result ticketapi.Result
	err    error
	calls  int
}

func (f *fakeTicketAPI) CreateTicket(ctx context.Context, input ticketapi.CreateTicketInput) (ticketapi.Result, error) {
	f.calls++
	if f.err != nil {
		return ticketapi.Result{}, f.err
	}
	return f.result, nil
}

// fakeWikiAPI is a canned WikiCreator.
type fakeWikiAPI struct {
	createResult wikiapi.Result
	createErr    error
	createCalls  int

	tenantID  string
	tenantErr error

	spaceID  string
	spaceErr error
}

func (f *fakeWikiAPI) CreatePage(ctx context.Context, input wikiapi.CreatePageInput) (wikiapi.Result, error) {
	f.createCalls++
	if f.createErr != nil {
		return wikiapi.Result{}, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeWikiAPI) TenantInfo(ctx context.Context) (string, error) {
	if f.tenantErr != nil {
		return "", f.tenantErr
	}
	return f.tenantID, nil
}

func (f *fakeWikiAPI) SpaceInfo(ctx context.Context, key string) (string, error) {
	if f.spaceErr != nil {
		return "", f.spaceErr
	}
	return f.spaceID, nil
}

// fakeDelegation is a canned DelegationAgent.
type fakeDelegation struct {
	reply string
	err   error
}

func (f *fakeDelegation) Run(ctx context.Context, userInput string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeRAG is a canned rag.Retriever.
type fakeRAG struct {
	context string
	found   bool
}

func (f *fakeRAG) GetContext(ctx context.Context, query string, topK int) (string, bool) {
	return f.context, f.found
}

func (f *fakeRAG) Retrieve(ctx context.Context, query string, topK int) ([]rag.SearchResult, error) {
	return nil, nil
}
