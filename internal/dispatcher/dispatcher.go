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

// Package dispatcher is the tool dispatcher (C4): it picks a remote tool
// matching a desired operation kind, invokes it under a timeout, parses its
// response, and falls back to a direct API client on timeout, parse
// failure, or protocol error. Exactly one ToolResult is emitted per call.
package dispatcher

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/kadirpekel/ticketflow/internal/binder"
	"github.com/kadirpekel/ticketflow/internal/model"
)

// RemoteTools is the subset of toolprotocol.Client the dispatcher needs,
// kept as an interface so tests can fake it.
type RemoteTools interface {
	ListTools(ctx context.Context) ([]model.ToolDescriptor, error)
	Call(ctx context.Context, name string, args map[string]any) (map[string]any, error)
}

// DirectCall performs the direct-API equivalent of a remote tool call; the
// ticket/wiki API clients satisfy this.
type DirectCall func(ctx context.Context, args map[string]any) (map[string]any, error)

// namePatterns lists, per tool kind, the ordered substrings (checked
// case-insensitively) a candidate tool name must contain to match. The
// substrings that disqualify a match are kept in rejectSubstrings.
var namePatterns = map[model.ToolKind][]string{
	model.ToolKindCreateTicket: {"createissue", "create_issue", "createjiraissue", "issue", "ticket"},
	model.ToolKindCreateWiki:   {"createpage", "create_page", "createconfluencepage", "page"},
	model.ToolKindFetchWiki:    {"getpage", "get_page", "getconfluencepage", "fetchpage"},
	model.ToolKindTenantInfo:   {"getaccessibleatlassianresources", "tenantinfo", "tenant_info"},
	model.ToolKindSpaceInfo:    {"getconfluencespaces", "spaceinfo", "space_info"},
}

// rejectSubstrings lists, per kind, substrings that disqualify a candidate
// even when a namePatterns entry matches — the cross-kind safety check.
var rejectSubstrings = map[model.ToolKind][]string{
	model.ToolKindCreateTicket: {"wiki", "page", "space"},
	model.ToolKindCreateWiki:   {"issue", "ticket"},
	model.ToolKindFetchWiki:    {"issue", "ticket"},
}

// Dispatcher coordinates remote-vs-direct tool invocation for one class of
// backend (e.g. the Jira+Confluence Atlassian stack).
type Dispatcher struct {
	remote      RemoteTools
	useRemote   bool
	wikiBaseURL string
}

// Config configures a Dispatcher.
type Config struct {
	// Remote is the shared remote-tool-protocol client. May be nil when
	// UseRemote is false.
	Remote RemoteTools
	// UseRemote mirrors the USE_REMOTE_TOOLS option; when false the
	// dispatcher calls only direct clients.
	UseRemote bool
	// WikiBaseURL is used to reconstruct relative links from wiki
	// responses.
	WikiBaseURL string
}

// New builds a Dispatcher.
func New(cfg Config) *Dispatcher {
	return &Dispatcher{remote: cfg.Remote, useRemote: cfg.UseRemote, wikiBaseURL: cfg.WikiBaseURL}
}

// FindTool searches the remote registry for a tool matching kind, applying
// the cross-kind rejection check. Returns ok=false if no remote tool
// matches (or remote tools are disabled), in which case the caller should
// use the direct client.
func (d *Dispatcher) FindTool(ctx context.Context, kind model.ToolKind) (model.ToolDescriptor, bool) {
	if !d.useRemote || d.remote == nil {
		return model.ToolDescriptor{}, false
	}

	tools, err := d.remote.ListTools(ctx)
	if err != nil {
		slog.Warn("dispatcher: list tools failed, falling back to direct api", "error", err)
		return model.ToolDescriptor{}, false
	}

	patterns := namePatterns[kind]
	rejects := rejectSubstrings[kind]

	for _, t := range tools {
		lower := strings.ToLower(t.Name)
		if containsAny(lower, rejects) {
			continue
		}
		if containsAny(lower, patterns) {
			return t, true
		}
	}
	return model.ToolDescriptor{}, false
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// InvokeOpts bounds a single tool invocation.
type InvokeOpts struct {
	Kind       model.ToolKind
	Tool       model.ToolDescriptor
	ToolFound  bool
	Data       map[string]any
	Context    map[string]any
	Timeout    time.Duration
	Direct     DirectCall
}

// wrapSlack is added atop the inner per-call timeout so the wrapping
// goroutine can always observe cancellation before the caller's own
// deadline, per spec's "await with a wrapping timeout slightly greater
// than the inner timeout" invocation rule.
const wrapSlack = 15 * time.Second

// Invoke runs the remote-then-fallback state machine for one tool call and
// returns exactly one ToolResult.
func (d *Dispatcher) Invoke(ctx context.Context, opts InvokeOpts) model.ToolResult {
	if !opts.ToolFound {
		return d.invokeDirect(ctx, opts, "")
	}

	bound, err := binder.New(opts.Tool.InputSchema).Build(opts.Data, opts.Context)
	if err != nil {
		slog.Warn("dispatcher: argument binding failed", "tool", opts.Tool.Name, "error", err)
		return model.ToolResult{
			Success:      false,
			ErrorKind:    model.ErrorKindSchemaValidation,
			ErrorMessage: err.Error(),
			ToolUsed:     model.ToolUsedRemoteProtocol,
		}
	}

	result, fallbackReason := d.invokeRemote(ctx, opts, bound)
	if fallbackReason == "" || result.ErrorKind == model.ErrorKindConflict {
		return result
	}

	slog.Info("dispatcher: falling back to direct api", "tool", opts.Tool.Name, "reason", fallbackReason)
	direct := d.invokeDirect(ctx, opts, fallbackReason)
	if direct.Success {
		direct.ToolUsed = model.ToolUsedDirectAPIFallback
		return direct
	}

	return model.ToolResult{
		Success:      false,
		ErrorKind:    direct.ErrorKind,
		ErrorMessage: joinErrors(fallbackReason, direct.ErrorMessage),
		ToolUsed:     model.ToolUsedDirectAPIFallback,
	}
}

// invokeRemote calls the remote tool under a timeout. An empty second
// return means success; otherwise it names the fallback trigger. A
// "conflict" return carries a final conflict result that Invoke returns
// without calling the direct API.
func (d *Dispatcher) invokeRemote(ctx context.Context, opts InvokeOpts, args map[string]any) (model.ToolResult, string) {
	innerCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	wrapCtx, wrapCancel := context.WithTimeout(ctx, opts.Timeout+wrapSlack)
	defer wrapCancel()

	type outcome struct {
		raw map[string]any
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		raw, err := d.remote.Call(innerCtx, opts.Tool.Name, args)
		done <- outcome{raw: raw, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if isConflictError(res.err.Error()) {
				return model.ToolResult{
					Success:     false,
					ErrorKind:   model.ErrorKindConflict,
					ToolUsed:    model.ToolUsedRemoteProtocol,
					OutcomeNote: "remote reported a possible duplicate; could not verify",
				}, "conflict"
			}
			return model.ToolResult{}, "protocol-err: " + res.err.Error()
		}

		raw, ok := extractRawResult(res.raw)
		if !ok {
			return model.ToolResult{}, "protocol-err: no result field in tool response"
		}

		parsed := parseRawResult(raw, d.wikiBaseURL)
		if !parsed.success {
			return model.ToolResult{}, "parse-err: " + parsed.errorMessage
		}
		return parsed.toToolResult(model.ToolUsedRemoteProtocol, res.raw), ""

	case <-innerCtx.Done():
		// Non-blocking shutdown: the remote call goroutine is abandoned;
		// its eventual result (if any) lands in done and is discarded by
		// the GC once nothing reads it further.
		return model.ToolResult{}, "timeout"

	case <-wrapCtx.Done():
		return model.ToolResult{}, "timeout"
	}
}

// extractRawResult pulls the tool-protocol result payload out of the
// {"result"|"results"|"error": ...} envelope toolprotocol.Call returns.
func extractRawResult(raw map[string]any) (any, bool) {
	if raw == nil {
		return nil, false
	}
	if errMsg, ok := raw["error"]; ok {
		return map[string]any{"error": errMsg}, true
	}
	if result, ok := raw["result"]; ok {
		return result, true
	}
	if results, ok := raw["results"]; ok {
		return map[string]any{"results": results}, true
	}
	return nil, false
}

func (d *Dispatcher) invokeDirect(ctx context.Context, opts InvokeOpts, priorReason string) model.ToolResult {
	if opts.Direct == nil {
		return model.ToolResult{
			Success:      false,
			ErrorKind:    model.ErrorKindToolUnavailable,
			ErrorMessage: "no direct api client configured for this operation",
			ToolUsed:     model.ToolUsedDirectAPI,
		}
	}

	raw, err := opts.Direct(ctx, opts.Data)
	if err != nil {
		if isConflictError(err.Error()) {
			return model.ToolResult{
				Success:     false,
				ErrorKind:   model.ErrorKindConflict,
				ToolUsed:    model.ToolUsedDirectAPI,
				OutcomeNote: "direct api reported a possible duplicate",
			}
		}
		return model.ToolResult{
			Success:      false,
			ErrorKind:    classifyDirectError(err),
			ErrorMessage: err.Error(),
			ToolUsed:     model.ToolUsedDirectAPI,
		}
	}

	if priorReason != "" {
		slog.Debug("dispatcher: direct api call follows remote fallback", "reason", priorReason)
	}

	parsed := parseObject(raw, d.wikiBaseURL)
	return parsed.toToolResult(model.ToolUsedDirectAPI, raw)
}

func isConflictError(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "already exists") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "same title")
}

func classifyDirectError(err error) model.ErrorKind {
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return model.ErrorKindTimeout
	case strings.Contains(lower, "401") || strings.Contains(lower, "403") || strings.Contains(lower, "unauthorized"):
		return model.ErrorKindAuthError
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit"):
		return model.ErrorKindRateLimit
	case strings.Contains(lower, "connection") || strings.Contains(lower, "dial"):
		return model.ErrorKindConnectionError
	default:
		return model.ErrorKindInternal
	}
}

func joinErrors(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "; " + b
}
