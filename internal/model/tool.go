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

package model

// SchemaProperty describes one declared input parameter of a tool, in the
// JSON-Schema-shaped form the remote tool registry publishes.
type SchemaProperty struct {
	Type        string
	Enum        []string
	Description string
	Default     any
	// AnyOf holds nested alternatives some schemas declare their enum under
	// instead of a top-level Enum (spec §4.5 step 5).
	AnyOf []SchemaProperty
}

// EnumValues returns the property's enum, looking under AnyOf if the
// top-level Enum is empty.
func (p SchemaProperty) EnumValues() []string {
	if len(p.Enum) > 0 {
		return p.Enum
	}
	for _, alt := range p.AnyOf {
		if len(alt.Enum) > 0 {
			return alt.Enum
		}
	}
	return nil
}

// Schema is a tool's declared input shape.
type Schema struct {
	Properties map[string]SchemaProperty
	Required   []string

	// order preserves property declaration order from the source tool
	// descriptor; unset for Schema literals built without NewSchema.
	order []string
}

// IsRequired reports whether a named property must be supplied.
func (s Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// OrderedPropertyNames returns schema property names in a stable order
// (insertion order is not preserved by a Go map, so callers that must emit
// arguments in declaration order should build Schema via NewSchema, which
// tracks order separately).
func (s Schema) OrderedPropertyNames() []string {
	if s.order != nil {
		return s.order
	}
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	return names
}

// NewSchema builds a Schema that preserves property declaration order.
func NewSchema(order []string, properties map[string]SchemaProperty, required []string) Schema {
	return Schema{Properties: properties, Required: required, order: append([]string(nil), order...)}
}

// ToolDescriptor is a tool as declared by a remote tool server (spec §3).
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema Schema
}

// ToolKind is the operation category a dispatcher search is filtered by
// (spec §4.4 "tool selection contract").
type ToolKind string

const (
	ToolKindCreateTicket  ToolKind = "create_ticket"
	ToolKindCreateWiki    ToolKind = "create_wiki_page"
	ToolKindFetchWiki     ToolKind = "fetch_wiki_page"
	ToolKindTenantInfo    ToolKind = "tenant_info"
	ToolKindSpaceInfo     ToolKind = "space_info"
)

// ToolUsed is the pure method enum a ToolResult carries. Per spec §9 design
// notes, conflict/duplicate sub-outcomes are NOT folded into this value;
// see ToolResult.OutcomeNote.
type ToolUsed string

const (
	ToolUsedRemoteProtocol    ToolUsed = "remote_protocol"
	ToolUsedDirectAPI         ToolUsed = "direct_api"
	ToolUsedDirectAPIFallback ToolUsed = "direct_api_fallback"
)

// ToolResult is the normalized envelope the dispatcher emits regardless of
// which backend (remote protocol or direct API) produced it.
type ToolResult struct {
	Success bool

	ID    string
	Link  string
	Title string

	ErrorKind    ErrorKind
	ErrorMessage string

	ToolUsed ToolUsed
	// OutcomeNote carries a sub-outcome (e.g. "duplicate title detected")
	// without conflating it into ToolUsed.
	OutcomeNote string

	Raw any
}
