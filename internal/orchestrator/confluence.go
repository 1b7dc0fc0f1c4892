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
	"fmt"
	"strings"
	"time"

	"github.com/kadirpekel/ticketflow/internal/dispatcher"
	"github.com/kadirpekel/ticketflow/internal/htmlmd"
	"github.com/kadirpekel/ticketflow/internal/model"
	"github.com/kadirpekel/ticketflow/internal/wikiapi"
)

// wikiCreateTimeout is the per-call timeout for the create_wiki_page tool
// invocation (spec §4.4 invocation step 1: "60s for wiki creation").
const wikiCreateTimeout = 60 * time.Second

// wikiInfoTimeout bounds the cloud_id/space_id resolution calls, which are
// cheap lookups rather than content-creating operations.
const wikiInfoTimeout = 30 * time.Second

// confluenceCreationNode creates the wiki page once ticket creation has
// succeeded (spec §4.4 "Preparation (wiki creation)"). The router already
// decided to visit this node based on jira_result.success and the wiki
// capability, so this handler does not re-check either.
func (o *Orchestrator) confluenceCreationNode(ctx context.Context, state *model.AgentState) error {
	tool, found := o.collab.Dispatcher.FindTool(ctx, model.ToolKindCreateWiki)

	bindCtx := map[string]any{}
	if found && isHostedVariantName(tool.Name) {
		bindCtx["cloud_id"] = o.resolveCloudID(ctx)
	}
	if found && schemaWantsSpaceID(tool.InputSchema) {
		bindCtx["space_id"] = o.resolveSpaceID(ctx)
	}

	body := renderTicketBody(state.GeneratedTicket)
	if found && schemaPrefersMarkdown(tool.InputSchema) {
		bindCtx["content_format"] = "markdown"
		body = htmlmd.Convert(body)
	} else {
		bindCtx["content_format"] = "storage"
	}

	data := map[string]any{
		"title":   wikiTitle(state.GeneratedTicket, state.JiraResult),
		"content": body,
	}

	result := o.collab.Dispatcher.Invoke(ctx, dispatcher.InvokeOpts{
		Kind:      model.ToolKindCreateWiki,
		Tool:      tool,
		ToolFound: found,
		Data:      data,
		Context:   bindCtx,
		Timeout:   wikiCreateTimeout,
		Direct:    o.createWikiPageDirect,
	})
	state.ConfluenceResult = &result

	if result.Success {
		state.AppendMessage(model.RoleAssistant, fmt.Sprintf("Created wiki page %s: %s", result.ID, result.Link))
	} else {
		state.AppendMessage(model.RoleAssistant, result.ErrorKind.FriendlyMessage())
	}
	return nil
}

// isHostedVariantName reports whether a tool's name looks like a hosted
// "Rovo"-style camelCase variant rather than the plain REST-shaped name a
// direct API mirrors — such tools expect a cloud_id the direct API never
// needs (spec §4.4 step 2).
func isHostedVariantName(name string) bool {
	if strings.Contains(name, "Rovo") {
		return true
	}
	if name == "" || strings.Contains(name, "_") {
		return false
	}
	first := name[0]
	return first >= 'a' && first <= 'z' && name != strings.ToLower(name)
}

func schemaWantsSpaceID(schema model.Schema) bool {
	prop, ok := schema.Properties["spaceId"]
	if !ok {
		return false
	}
	return prop.Type == "integer" || prop.Type == "number"
}

func schemaPrefersMarkdown(schema model.Schema) bool {
	prop, ok := schema.Properties["contentFormat"]
	if !ok {
		return false
	}
	for _, v := range prop.EnumValues() {
		if strings.EqualFold(v, "markdown") {
			return true
		}
	}
	return false
}

// resolveCloudID finds the tenant's cloud_id via a remote getAccessibleAtlassianResources
// tool if one is registered, falling back to the direct tenant-info endpoint
// (spec §4.4 step 2).
func (o *Orchestrator) resolveCloudID(ctx context.Context) string {
	tool, found := o.collab.Dispatcher.FindTool(ctx, model.ToolKindTenantInfo)
	result := o.collab.Dispatcher.Invoke(ctx, dispatcher.InvokeOpts{
		Kind:      model.ToolKindTenantInfo,
		Tool:      tool,
		ToolFound: found,
		Data:      map[string]any{},
		Timeout:   wikiInfoTimeout,
		Direct:    o.tenantInfoDirect,
	})
	return result.ID
}

// resolveSpaceID finds the target space's numeric id via a remote
// getConfluenceSpaces tool if one is registered, falling back to the direct
// space-info endpoint (spec §4.4 step 3).
func (o *Orchestrator) resolveSpaceID(ctx context.Context) string {
	tool, found := o.collab.Dispatcher.FindTool(ctx, model.ToolKindSpaceInfo)
	result := o.collab.Dispatcher.Invoke(ctx, dispatcher.InvokeOpts{
		Kind:      model.ToolKindSpaceInfo,
		Tool:      tool,
		ToolFound: found,
		Data:      map[string]any{"space_key": o.collab.WikiSpaceKey},
		Timeout:   wikiInfoTimeout,
		Direct:    o.spaceInfoDirect,
	})
	return result.ID
}

// createWikiPageDirect adapts wikiapi.Client onto dispatcher.DirectCall.
func (o *Orchestrator) createWikiPageDirect(ctx context.Context, args map[string]any) (map[string]any, error) {
	if o.collab.WikiAPI == nil {
		return nil, fmt.Errorf("wiki api not configured")
	}

	result, err := o.collab.WikiAPI.CreatePage(ctx, wikiapi.CreatePageInput{
		Title: stringField(args, "title"),
		Body:  stringField(args, "content"),
	})
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"success": true,
		"id":      result.ID,
		"link":    result.Link,
		"title":   stringField(args, "title"),
	}, nil
}

func (o *Orchestrator) tenantInfoDirect(ctx context.Context, args map[string]any) (map[string]any, error) {
	if o.collab.WikiAPI == nil {
		return nil, fmt.Errorf("wiki api not configured")
	}
	id, err := o.collab.WikiAPI.TenantInfo(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": true, "id": id}, nil
}

func (o *Orchestrator) spaceInfoDirect(ctx context.Context, args map[string]any) (map[string]any, error) {
	if o.collab.WikiAPI == nil {
		return nil, fmt.Errorf("wiki api not configured")
	}
	id, err := o.collab.WikiAPI.SpaceInfo(ctx, stringField(args, "space_key"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": true, "id": id}, nil
}

// wikiTitle derives the page title from the ticket, falling back to the
// ticket key when no summary was generated.
func wikiTitle(ticket *model.GeneratedTicket, jira *model.ToolResult) string {
	if ticket != nil && ticket.Summary != "" {
		return ticket.Summary
	}
	if jira != nil {
		return jira.ID
	}
	return "Untitled"
}

// renderTicketBody builds the Confluence storage-format HTML body from the
// generated ticket content, the same content the ticket itself carries.
func renderTicketBody(ticket *model.GeneratedTicket) string {
	if ticket == nil {
		return "<p>No ticket content was generated.</p>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>", ticket.Summary)
	fmt.Fprintf(&b, "<p>%s</p>", ticket.Description)
	if len(ticket.AcceptanceCriteria) > 0 {
		b.WriteString("<h2>Acceptance Criteria</h2><ul>")
		for _, c := range ticket.AcceptanceCriteria {
			fmt.Fprintf(&b, "<li>%s</li>", c)
		}
		b.WriteString("</ul>")
	}
	if ticket.BusinessValue != "" {
		fmt.Fprintf(&b, "<h2>Business Value</h2><p>%s</p>", ticket.BusinessValue)
	}
	if ticket.InvestAnalysis != "" {
		fmt.Fprintf(&b, "<h2>INVEST Analysis</h2><p>%s</p>", ticket.InvestAnalysis)
	}
	return b.String()
}
