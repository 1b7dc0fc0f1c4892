package toolprotocol

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresCommand(t *testing.T) {
	_, err := New(Config{Name: "jira"})
	require.Error(t, err)
}

func TestParseCallResultSuccessSingleText(t *testing.T) {
	resp := &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "issue created"}},
	}
	out := parseCallResult(resp)
	require.Equal(t, "issue created", out["result"])
}

func TestParseCallResultSuccessMultipleText(t *testing.T) {
	resp := &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: "a"},
			mcp.TextContent{Type: "text", Text: "b"},
		},
	}
	out := parseCallResult(resp)
	require.Equal(t, []string{"a", "b"}, out["results"])
}

func TestParseCallResultError(t *testing.T) {
	resp := &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: "boom"}},
	}
	out := parseCallResult(resp)
	require.Equal(t, "boom", out["error"])
}

func TestParseCallResultErrorWithNoTextContent(t *testing.T) {
	resp := &mcp.CallToolResult{IsError: true}
	out := parseCallResult(resp)
	require.Equal(t, "unknown error", out["error"])
}

func TestConvertSchemaKeepsPropertiesAndFields(t *testing.T) {
	schema := mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]any{
			"title":   map[string]any{"type": "string", "description": "page title"},
			"spaceId": map[string]any{"type": "string"},
		},
		Required: []string{"title"},
	}

	converted := convertSchema(schema)
	require.True(t, converted.IsRequired("title"))
	require.False(t, converted.IsRequired("spaceId"))
	require.Equal(t, "page title", converted.Properties["title"].Description)
	require.ElementsMatch(t, []string{"title", "spaceId"}, converted.OrderedPropertyNames())
}
