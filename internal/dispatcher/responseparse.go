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

package dispatcher

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kadirpekel/ticketflow/internal/model"
)

// responseShape is the auto-detected wire shape of a remote tool's result.
type responseShape string

const (
	shapeRovo    responseShape = "rovo"
	shapeCustom  responseShape = "custom"
	shapeGeneric responseShape = "generic"
)

// parsedResponse is the dispatcher's normalized view of a tool call's raw
// result, independent of which shape produced it.
type parsedResponse struct {
	success bool

	id    string
	title string
	link  string

	errorMessage string
	errorDetail  string
	errorType    string
}

var balancedBraceRegex = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)

// parseRawResult parses a remote tool's raw output (string, map, or nested
// primitives) into a parsedResponse, auto-detecting the Rovo/Custom/Generic
// shape when raw is a JSON object, and a wiki base URL for relative link
// reconstruction.
func parseRawResult(raw any, wikiBaseURL string) parsedResponse {
	switch v := raw.(type) {
	case string:
		obj, ok := parseStringResponse(v)
		if !ok {
			return parsedResponse{success: false, errorMessage: "could not parse response as JSON"}
		}
		return parseObject(obj, wikiBaseURL)

	case map[string]any:
		return parseObject(v, wikiBaseURL)

	case bool:
		// A bare boolean result is itself ambiguous at the protocol level.
		return parsedResponse{success: false, errorMessage: "protocol error: boolean result value"}

	default:
		return parsedResponse{success: false, errorMessage: fmt.Sprintf("unexpected response type: %T", raw)}
	}
}

// parseStringResponse strips markdown code fences and attempts a JSON
// object parse, falling back to balanced-brace regex extraction.
func parseStringResponse(s string) (map[string]any, bool) {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```") {
		lines := strings.Split(cleaned, "\n")
		kept := lines[:0:0]
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		cleaned = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj, true
	}

	if match := balancedBraceRegex.FindString(cleaned); match != "" {
		if err := json.Unmarshal([]byte(match), &obj); err == nil {
			return obj, true
		}
	}

	return nil, false
}

func parseObject(obj map[string]any, wikiBaseURL string) parsedResponse {
	switch detectShape(obj) {
	case shapeRovo:
		return parseRovo(obj, wikiBaseURL)
	case shapeCustom:
		return parseCustom(obj, wikiBaseURL)
	default:
		return parseGeneric(obj, wikiBaseURL)
	}
}

// detectShape picks Rovo when an id is present with no success flag, Custom
// when a success flag is explicitly present, else Generic.
func detectShape(obj map[string]any) responseShape {
	_, hasID := obj["id"]
	_, hasSuccess := obj["success"]
	if hasID && !hasSuccess {
		return shapeRovo
	}
	if hasSuccess {
		return shapeCustom
	}
	return shapeGeneric
}

func parseRovo(obj map[string]any, wikiBaseURL string) parsedResponse {
	id := firstString(obj, "id", "pageId", "page_id")
	if id == "" {
		if version, ok := obj["version"].(map[string]any); ok {
			id = firstString(version, "id")
		}
	}
	if id == "" {
		return parsedResponse{success: false, errorMessage: "no resource id found in rovo-format response"}
	}

	return parsedResponse{
		success: true,
		id:      id,
		title:   firstString(obj, "title"),
		link:    extractLink(obj, id, wikiBaseURL),
	}
}

func parseCustom(obj map[string]any, wikiBaseURL string) parsedResponse {
	if truthy(obj["success"]) {
		id := firstString(obj, "id", "page_id")
		link := firstString(obj, "link")
		if link == "" {
			link = extractLink(obj, id, wikiBaseURL)
		}
		return parsedResponse{
			success: true,
			id:      id,
			title:   firstString(obj, "title"),
			link:    link,
		}
	}

	return parsedResponse{
		success:      false,
		errorMessage: firstStringOr(obj, "unknown error", "error"),
		errorDetail:  firstString(obj, "error_detail"),
		errorType:    firstString(obj, "error_type"),
	}
}

func parseGeneric(obj map[string]any, wikiBaseURL string) parsedResponse {
	if hasAny(obj, "error", "errorMessage", "failure") {
		return parsedResponse{
			success:      false,
			errorMessage: firstStringOr(obj, "unknown error", "error", "errorMessage"),
		}
	}

	if id, ok := obj["id"]; ok {
		idStr := fmt.Sprintf("%v", id)
		return parsedResponse{
			success: true,
			id:      idStr,
			title:   firstString(obj, "title"),
			link:    extractLink(obj, idStr, wikiBaseURL),
		}
	}

	// Ambiguous generic shape with no error indicator: optimistic success,
	// matching the original parser's "assume success" default.
	return parsedResponse{success: true}
}

// extractLink resolves a resource URL from a direct field, a HAL _links
// structure (absolute as-is, relative joined onto wikiBaseURL), or by
// constructing a Confluence page-view URL from the id when the object looks
// like a wiki page.
func extractLink(obj map[string]any, resourceID, wikiBaseURL string) string {
	if link := firstString(obj, "link"); link != "" {
		return link
	}

	if links, ok := obj["_links"].(map[string]any); ok {
		if webui := firstString(links, "webui"); webui != "" {
			if strings.HasPrefix(webui, "http") {
				return webui
			}
			if wikiBaseURL != "" {
				return strings.TrimRight(wikiBaseURL, "/") + webui
			}
		}
	}

	if resourceID != "" && wikiBaseURL != "" && hasAny(obj, "spaceId", "pageId") {
		return fmt.Sprintf("%s/wiki/pages/viewpage.action?pageId=%s", strings.TrimRight(wikiBaseURL, "/"), resourceID)
	}

	return ""
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func firstStringOr(obj map[string]any, fallback string, keys ...string) string {
	if s := firstString(obj, keys...); s != "" {
		return s
	}
	return fallback
}

func hasAny(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// toToolResult converts a parsedResponse into the envelope the orchestrator
// consumes, attaching which backend produced it.
func (p parsedResponse) toToolResult(used model.ToolUsed, raw any) model.ToolResult {
	if p.success {
		return model.ToolResult{
			Success:  true,
			ID:       p.id,
			Link:     p.link,
			Title:    p.title,
			ToolUsed: used,
			Raw:      raw,
		}
	}
	return model.ToolResult{
		Success:      false,
		ErrorKind:    model.ErrorKindProtocolError,
		ErrorMessage: p.errorMessage,
		ToolUsed:     used,
		Raw:          raw,
	}
}
