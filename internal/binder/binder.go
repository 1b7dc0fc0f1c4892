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

// Package binder turns a loosely-shaped data mapping (the orchestrator's
// intent-derived fields) into the exact, typed argument set a tool schema
// requires: it resolves parameter aliases, coerces types, validates enums
// and required fields, and never leaves a schema-invalid call to reach the
// wire.
package binder

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kadirpekel/ticketflow/internal/model"
)

// commonAliases mirrors the naming conventions Jira/Confluence-style tool
// schemas use interchangeably for the same conceptual field.
var commonAliases = map[string][]string{
	"title":         {"name", "pageTitle", "page_title", "summary"},
	"content":       {"body", "html", "text", "description"},
	"space":         {"spaceKey", "space_key", "spaceId", "space_id"},
	"spaceId":       {"space_id", "spaceKey", "space_key"},
	"cloudId":       {"cloud_id"},
	"contentFormat": {"content_format", "format"},
}

// Binder builds a tool call's arguments from a single ToolDescriptor's
// schema, reused across calls to that tool.
type Binder struct {
	schema  model.Schema
	aliases map[string][]string
}

// New builds a Binder bound to one tool's input schema.
func New(schema model.Schema) *Binder {
	return &Binder{schema: schema, aliases: buildAliasTable(schema)}
}

// BindError reports a schema-binding failure: a required parameter is
// missing, a value cannot be coerced, or an enum constraint is violated.
// It maps directly to model.ErrorKindSchemaValidation at the dispatcher
// layer.
type BindError struct {
	Param string
	Msg   string
}

func (e *BindError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Param, e.Msg)
}

// Build resolves data (and, failing that, context) against the bound
// schema, producing a fully typed, validated argument map. Property
// iteration order follows the schema's declared order so repeated calls
// with identical inputs produce identical argument maps.
func (b *Binder) Build(data map[string]any, context map[string]any) (map[string]any, error) {
	if context == nil {
		context = map[string]any{}
	}
	args := make(map[string]any, len(b.schema.Properties))

	for _, name := range b.orderedNames() {
		def := b.schema.Properties[name]

		value := b.findValue(name, data, context)
		if value == nil {
			if b.schema.IsRequired(name) {
				if v, ok := context[name]; ok && v != nil {
					value = v
				} else if def.Default != nil {
					value = def.Default
				} else {
					return nil, &BindError{Param: name, Msg: fmt.Sprintf("required parameter not provided (required: %v)", b.schema.Required)}
				}
			} else if def.Default != nil && len(def.Enum) > 0 {
				value = def.Default
			} else {
				continue
			}
		}

		converted, err := convertType(value, def.Type, name)
		if err != nil {
			return nil, err
		}

		if err := validateEnum(converted, def, name); err != nil {
			return nil, err
		}

		args[name] = converted
	}

	return args, nil
}

func (b *Binder) orderedNames() []string {
	if names := b.schema.OrderedPropertyNames(); len(names) > 0 {
		return names
	}
	names := make([]string, 0, len(b.schema.Properties))
	for name := range b.schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// findValue resolves a schema parameter's value by trying, in order: a
// direct key match in data, a direct key match in context, each known
// alias against data then context, and finally a case-insensitive scan of
// data's keys.
func (b *Binder) findValue(name string, data, context map[string]any) any {
	if v, ok := data[name]; ok {
		return v
	}
	if v, ok := context[name]; ok {
		return v
	}
	for _, alt := range b.aliases[name] {
		if v, ok := data[alt]; ok {
			return v
		}
		if v, ok := context[alt]; ok {
			return v
		}
	}

	lower := strings.ToLower(name)
	for key, v := range data {
		if strings.ToLower(key) == lower {
			return v
		}
	}
	return nil
}

// buildAliasTable generates, per schema property, the set of alternative
// names a caller might have used instead: matches against the common
// alias table plus Id/Key and snake_case/camelCase variants. A property
// that has its own entry in the table takes only that entry; any other
// property takes every entry whose key its name contains.
func buildAliasTable(schema model.Schema) map[string][]string {
	mapping := make(map[string][]string, len(schema.Properties))

	for name := range schema.Properties {
		seen := map[string]struct{}{}
		var alts []string
		add := func(s string) {
			if s == "" || s == name {
				return
			}
			if _, ok := seen[s]; ok {
				return
			}
			seen[s] = struct{}{}
			alts = append(alts, s)
		}

		lower := strings.ToLower(name)
		if own, ok := commonAliases[name]; ok {
			for _, a := range own {
				add(a)
			}
		} else {
			for pattern, patternAlts := range commonAliases {
				pl := strings.ToLower(pattern)
				if pl == lower || strings.Contains(lower, pl) {
					for _, a := range patternAlts {
						add(a)
					}
				}
			}
		}

		if strings.Contains(lower, "id") {
			add(strings.Replace(name, "Id", "_id", 1))
			add(strings.Replace(name, "id", "ID", 1))
			add(strings.Replace(name, "Id", "Key", 1))
		}
		if strings.Contains(lower, "key") {
			add(strings.Replace(name, "Key", "_key", 1))
			add(strings.Replace(name, "key", "ID", 1))
		}

		mapping[name] = alts
	}

	return mapping
}

// convertType coerces value to the schema-declared type for param, matching
// the original argument builder's permissive numeric/boolean parsing.
func convertType(value any, schemaType, param string) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch schemaType {
	case "", "string":
		return fmt.Sprintf("%v", value), nil

	case "integer":
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, &BindError{Param: param, Msg: fmt.Sprintf("cannot convert %q to integer: %v", v, err)}
			}
			return n, nil
		default:
			return nil, &BindError{Param: param, Msg: fmt.Sprintf("cannot convert %v to integer", value)}
		}

	case "number":
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, &BindError{Param: param, Msg: fmt.Sprintf("cannot convert %q to number: %v", v, err)}
			}
			return f, nil
		default:
			return nil, &BindError{Param: param, Msg: fmt.Sprintf("cannot convert %v to number", value)}
		}

	case "boolean":
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.ToLower(v) {
			case "true", "1", "yes", "on":
				return true, nil
			default:
				return false, nil
			}
		default:
			return nil, &BindError{Param: param, Msg: fmt.Sprintf("cannot convert %v to boolean", value)}
		}

	default:
		return value, nil
	}
}

func validateEnum(value any, def model.SchemaProperty, param string) error {
	enum := def.EnumValues()
	if len(enum) == 0 {
		return nil
	}
	s := fmt.Sprintf("%v", value)
	for _, allowed := range enum {
		if allowed == s {
			return nil
		}
	}
	return &BindError{Param: param, Msg: fmt.Sprintf("invalid value %q, allowed values: %v", s, enum)}
}
