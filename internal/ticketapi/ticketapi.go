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

// Package ticketapi is the direct-API fallback collaborator for ticket
// creation, used by the ToolDispatcher when no remote tool matches or the
// remote attempt needs a verified retry.
package ticketapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kadirpekel/ticketflow/internal/httpclient"
)

// Config holds the Jira-style direct-API credentials (spec §6 "Direct
// APIs").
type Config struct {
	BaseURL    string
	AuthUser   string
	AuthToken  string
	ProjectKey string
}

// Client is the direct HTTP client for ticket creation.
type Client struct {
	cfg    Config
	client *httpclient.Client
}

// New builds a Client. baseURL/authUser/authToken must be non-empty.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ticketapi: BaseURL is required")
	}
	if cfg.AuthUser == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("ticketapi: AuthUser and AuthToken are required")
	}

	client := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		httpclient.WithHeaderParser(httpclient.ParseAtlassianHeaders),
	)

	return &Client{cfg: cfg, client: client}, nil
}

// issueRequest is the Jira "create issue" request body.
type issueRequest struct {
	Fields issueFields `json:"fields"`
}

type issueFields struct {
	Project     issueProject `json:"project"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	IssueType   issueType    `json:"issuetype"`
	Priority    *issuePriority `json:"priority,omitempty"`
}

type issueProject struct {
	Key string `json:"key"`
}

type issueType struct {
	Name string `json:"name"`
}

type issuePriority struct {
	Name string `json:"name"`
}

type issueResponse struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// CreateTicketInput is the bound argument set (already passed through
// ArgumentBinder by the caller); fields map directly onto Jira's issue
// shape.
type CreateTicketInput struct {
	Summary     string
	Description string
	Priority    string
}

// Result mirrors the subset of model.ToolResult fields a direct-API client
// can populate; the dispatcher maps this onto the normalized envelope.
type Result struct {
	ID    string
	Key   string
	Link  string
}

// CreateTicket calls `POST {base}/rest/api/2/issue` with HTTP Basic auth
// (spec §6).
func (c *Client) CreateTicket(ctx context.Context, input CreateTicketInput) (Result, error) {
	body := issueRequest{
		Fields: issueFields{
			Project:     issueProject{Key: c.cfg.ProjectKey},
			Summary:     input.Summary,
			Description: input.Description,
			IssueType:   issueType{Name: "Task"},
		},
	}
	if input.Priority != "" {
		body.Fields.Priority = &issuePriority{Name: input.Priority}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("ticketapi: marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/rest/api/2/issue"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("ticketapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.AuthUser, c.cfg.AuthToken)

	resp, err := c.client.Do(req)
	if resp == nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return Result{}, fmt.Errorf("ticketapi: read response: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed issueResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("ticketapi: decode response: %w", err)
	}

	return Result{
		ID:   parsed.ID,
		Key:  parsed.Key,
		Link: c.cfg.BaseURL + "/browse/" + parsed.Key,
	}, nil
}

// StatusError reports a non-2xx HTTP status, carrying enough information
// for the dispatcher's error-kind classifier to distinguish auth, rate
// limit, and conflict outcomes without inspecting a generic error string.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ticketapi: http %d: %s", e.StatusCode, e.Body)
}
