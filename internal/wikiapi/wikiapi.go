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

// Package wikiapi is the direct-API fallback collaborator for wiki page
// creation plus the tenant/space lookups the dispatcher needs when a
// hosted-variant remote tool requires a cloud id or numeric space id.
package wikiapi

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

// Config holds the Confluence-style direct-API credentials.
type Config struct {
	BaseURL   string
	AuthUser  string
	AuthToken string
	SpaceKey  string
}

// Client is the direct HTTP client for wiki operations.
type Client struct {
	cfg    Config
	client *httpclient.Client
}

// New builds a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("wikiapi: BaseURL is required")
	}
	if cfg.AuthUser == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("wikiapi: AuthUser and AuthToken are required")
	}

	client := httpclient.New(
		httpclient.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		httpclient.WithHeaderParser(httpclient.ParseAtlassianHeaders),
	)

	return &Client{cfg: cfg, client: client}, nil
}

// CreatePageInput is the bound argument set for page creation.
type CreatePageInput struct {
	Title   string
	Body    string // storage-representation HTML
	SpaceID string
}

// Result mirrors the subset of fields the dispatcher maps onto ToolResult.
type Result struct {
	ID   string
	Link string
}

type contentRequest struct {
	Type  string        `json:"type"`
	Title string        `json:"title"`
	Space contentSpace  `json:"space"`
	Body  contentBody   `json:"body"`
}

type contentSpace struct {
	Key string `json:"key"`
}

type contentBody struct {
	Storage contentStorage `json:"storage"`
}

type contentStorage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type contentResponse struct {
	ID    string             `json:"id"`
	Links contentResponseLinks `json:"_links"`
}

type contentResponseLinks struct {
	WebUI string `json:"webui"`
	Base  string `json:"base"`
}

// CreatePage calls `POST {base}/wiki/rest/api/content` with HTTP Basic auth
// (spec §6), sending the page body as `body.storage.value` with
// representation `storage`.
func (c *Client) CreatePage(ctx context.Context, input CreatePageInput) (Result, error) {
	body := contentRequest{
		Type:  "page",
		Title: input.Title,
		Space: contentSpace{Key: c.cfg.SpaceKey},
		Body: contentBody{
			Storage: contentStorage{
				Value:          input.Body,
				Representation: "storage",
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, fmt.Errorf("wikiapi: marshal request: %w", err)
	}

	url := c.cfg.BaseURL + "/wiki/rest/api/content"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("wikiapi: build request: %w", err)
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
		return Result{}, fmt.Errorf("wikiapi: read response: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed contentResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("wikiapi: decode response: %w", err)
	}

	link := parsed.Links.WebUI
	if link != "" && parsed.Links.Base != "" {
		link = parsed.Links.Base + link
	} else if link != "" {
		link = c.cfg.BaseURL + "/wiki" + link
	}

	return Result{ID: parsed.ID, Link: link}, nil
}

type tenantInfoResponse struct {
	CloudID string `json:"cloudId"`
}

// TenantInfo calls `GET {base}/_edge/tenant_info` to resolve a cloud id for
// hosted-variant remote tools (spec §4.4 wiki-creation preparation step 1).
func (c *Client) TenantInfo(ctx context.Context) (string, error) {
	url := c.cfg.BaseURL + "/_edge/tenant_info"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("wikiapi: build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AuthUser, c.cfg.AuthToken)

	resp, err := c.client.Do(req)
	if resp == nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", fmt.Errorf("wikiapi: read response: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed tenantInfoResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("wikiapi: decode response: %w", err)
	}
	return parsed.CloudID, nil
}

type spaceInfoResponse struct {
	ID  json.Number `json:"id"`
	Key string      `json:"key"`
}

// SpaceInfo calls `GET {base}/wiki/rest/api/space/{key}` to resolve the
// numeric space id a hosted-variant schema may require.
func (c *Client) SpaceInfo(ctx context.Context, key string) (string, error) {
	url := c.cfg.BaseURL + "/wiki/rest/api/space/" + key
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("wikiapi: build request: %w", err)
	}
	req.SetBasicAuth(c.cfg.AuthUser, c.cfg.AuthToken)

	resp, err := c.client.Do(req)
	if resp == nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", fmt.Errorf("wikiapi: read response: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed spaceInfoResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("wikiapi: decode response: %w", err)
	}
	return parsed.ID.String(), nil
}

// StatusError reports a non-2xx HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wikiapi: http %d: %s", e.StatusCode, e.Body)
}
