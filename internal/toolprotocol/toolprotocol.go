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

// Package toolprotocol is the remote tool client: a thin wrapper over
// mcp-go's stdio transport that lists and calls tools on a subprocess tool
// server. Connection is lazy; the first ListTools call starts the
// subprocess and performs the MCP handshake.
package toolprotocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/ticketflow/internal/model"
)

// Config configures a Client's connection to a single MCP tool server.
type Config struct {
	// Name identifies this tool server in logs.
	Name string

	// Command is the subprocess to launch (stdio transport).
	Command string

	// Args for the subprocess.
	Args []string

	// Env for the subprocess, as KEY=VALUE strings.
	Env map[string]string
}

// Client is a lazily-connected MCP stdio client.
type Client struct {
	cfg Config

	mu        sync.Mutex
	mcpClient *client.Client
	connected bool
}

// New creates a Client. The subprocess is not started until the first call
// that needs it.
func New(cfg Config) (*Client, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("toolprotocol: command is required")
	}
	return &Client{cfg: cfg}, nil
}

// ListTools connects lazily, then returns the tool server's advertised
// tools converted to ToolDescriptor.
func (c *Client) ListTools(ctx context.Context) ([]model.ToolDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		if err := c.connect(ctx); err != nil {
			return nil, fmt.Errorf("toolprotocol: connect to %s: %w", c.cfg.Name, err)
		}
	}

	listResp, err := c.mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("toolprotocol: list tools on %s: %w", c.cfg.Name, err)
	}

	descriptors := make([]model.ToolDescriptor, 0, len(listResp.Tools))
	for _, t := range listResp.Tools {
		descriptors = append(descriptors, model.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: convertSchema(t.InputSchema),
		})
	}
	return descriptors, nil
}

// Call invokes a named tool with the given already-bound arguments and
// returns the raw result as a normalized map: {"result": string} or
// {"results": []string} on success, {"error": string} on failure. Callers
// (the dispatcher) are responsible for shaping this into a ToolResult.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	c.mu.Lock()
	mcpClient := c.mcpClient
	connected := c.connected
	c.mu.Unlock()

	if !connected || mcpClient == nil {
		return nil, fmt.Errorf("toolprotocol: %s not connected", c.cfg.Name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	resp, err := mcpClient.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("toolprotocol: call %s on %s: %w", name, c.cfg.Name, err)
	}

	return parseCallResult(resp), nil
}

// Close shuts down the subprocess, if connected.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mcpClient == nil {
		return nil
	}
	err := c.mcpClient.Close()
	c.mcpClient = nil
	c.connected = false
	return err
}

func (c *Client) connect(ctx context.Context) error {
	mcpClient, err := client.NewStdioMCPClient(c.cfg.Command, envSlice(c.cfg.Env), c.cfg.Args...)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("start subprocess: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ClientInfo = mcp.Implementation{Name: "ticketflow", Version: "1.0.0"}
	initReq.Params.ProtocolVersion = "2024-11-05"

	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		mcpClient.Close()
		return fmt.Errorf("initialize: %w", err)
	}

	c.mcpClient = mcpClient
	c.connected = true

	slog.Info("connected to tool server", "name", c.cfg.Name, "command", c.cfg.Command)
	return nil
}

func envSlice(env map[string]string) []string {
	if env == nil {
		return nil
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

// parseCallResult flattens an mcp.CallToolResult's text content blocks into
// the {"result"|"results"|"error": ...} shape the dispatcher expects,
// mirroring how the teacher's mcptoolset wrapper normalizes tool output.
func parseCallResult(resp *mcp.CallToolResult) map[string]any {
	out := make(map[string]any)

	if resp.IsError {
		for _, content := range resp.Content {
			if tc, ok := content.(mcp.TextContent); ok {
				out["error"] = tc.Text
				break
			}
		}
		if out["error"] == nil {
			out["error"] = "unknown error"
		}
		return out
	}

	var texts []string
	for _, content := range resp.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			texts = append(texts, tc.Text)
		}
	}
	switch len(texts) {
	case 0:
	case 1:
		out["result"] = texts[0]
	default:
		out["results"] = texts
	}
	return out
}

// convertSchema converts an MCP tool's JSON-Schema-shaped input schema into
// model.Schema via a marshal/unmarshal round trip through a generic map.
// The property order it records is that of the marshalled JSON; since
// ToolInputSchema holds properties in a Go map, that is sorted key order,
// not the tool server's declaration order.
func convertSchema(schema mcp.ToolInputSchema) model.Schema {
	data, err := json.Marshal(schema)
	if err != nil {
		return model.Schema{}
	}

	var raw struct {
		Properties map[string]rawProperty `json:"properties"`
		Required   []string               `json:"required"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Schema{}
	}

	order := orderedKeys(data)
	properties := make(map[string]model.SchemaProperty, len(raw.Properties))
	for name, p := range raw.Properties {
		properties[name] = p.toSchemaProperty()
	}

	return model.NewSchema(order, properties, raw.Required)
}

type rawProperty struct {
	Type        string        `json:"type"`
	Enum        []string      `json:"enum"`
	Description string        `json:"description"`
	Default     any           `json:"default"`
	AnyOf       []rawProperty `json:"anyOf"`
}

func (p rawProperty) toSchemaProperty() model.SchemaProperty {
	sp := model.SchemaProperty{
		Type:        p.Type,
		Enum:        p.Enum,
		Description: p.Description,
		Default:     p.Default,
	}
	for _, alt := range p.AnyOf {
		sp.AnyOf = append(sp.AnyOf, alt.toSchemaProperty())
	}
	return sp
}

// orderedKeys recovers the declaration order of the "properties" object
// from the raw JSON bytes, since encoding/json unmarshals objects into Go
// maps with no order guarantee.
func orderedKeys(data []byte) []string {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil
	}
	propsRaw, ok := probe["properties"]
	if !ok {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(propsRaw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var order []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}
		order = append(order, key)

		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil
		}
	}
	return order
}
