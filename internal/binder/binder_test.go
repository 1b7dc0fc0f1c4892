package binder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/ticketflow/internal/model"
)

func confluenceSchema() model.Schema {
	return model.NewSchema(
		[]string{"title", "spaceId", "content", "contentFormat"},
		map[string]model.SchemaProperty{
			"title":         {Type: "string"},
			"spaceId":       {Type: "string"},
			"content":       {Type: "string"},
			"contentFormat": {Type: "string", Enum: []string{"storage", "markdown"}, Default: "storage"},
		},
		[]string{"title", "spaceId", "content"},
	)
}

func TestBuildDirectMatch(t *testing.T) {
	b := New(confluenceSchema())
	args, err := b.Build(map[string]any{
		"title":   "My Page",
		"spaceId": "SPACE1",
		"content": "<p>hi</p>",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "My Page", args["title"])
	require.Equal(t, "SPACE1", args["spaceId"])
	require.Equal(t, "<p>hi</p>", args["content"])
	require.Equal(t, "storage", args["contentFormat"])
}

func TestBuildResolvesAliases(t *testing.T) {
	b := New(confluenceSchema())
	args, err := b.Build(map[string]any{
		"pageTitle": "Aliased Page",
		"space_id":  "SPACE2",
		"body":      "content body",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "Aliased Page", args["title"])
	require.Equal(t, "SPACE2", args["spaceId"])
	require.Equal(t, "content body", args["content"])
}

func TestBuildFallsBackToContext(t *testing.T) {
	b := New(confluenceSchema())
	args, err := b.Build(
		map[string]any{"title": "Page", "content": "body"},
		map[string]any{"spaceId": "CTXSPACE"},
	)
	require.NoError(t, err)
	require.Equal(t, "CTXSPACE", args["spaceId"])
}

func TestBuildMissingRequiredErrors(t *testing.T) {
	b := New(confluenceSchema())
	_, err := b.Build(map[string]any{"title": "Page"}, nil)
	require.Error(t, err)
	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	require.Equal(t, "spaceId", bindErr.Param)
}

func TestBuildEnumValidation(t *testing.T) {
	b := New(confluenceSchema())
	_, err := b.Build(map[string]any{
		"title": "Page", "spaceId": "S1", "content": "c", "contentFormat": "docx",
	}, nil)
	require.Error(t, err)
}

func TestBuildTypeCoercion(t *testing.T) {
	schema := model.NewSchema(
		[]string{"storyPoints", "escalate"},
		map[string]model.SchemaProperty{
			"storyPoints": {Type: "integer"},
			"escalate":    {Type: "boolean"},
		},
		nil,
	)
	b := New(schema)
	args, err := b.Build(map[string]any{"storyPoints": "5", "escalate": "yes"}, nil)
	require.NoError(t, err)
	require.Equal(t, 5, args["storyPoints"])
	require.Equal(t, true, args["escalate"])
}

func TestBuildCaseInsensitiveMatch(t *testing.T) {
	b := New(confluenceSchema())
	args, err := b.Build(map[string]any{
		"Title":   "Page",
		"SpaceId": "SPACE3",
		"Content": "body",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "Page", args["title"])
	require.Equal(t, "SPACE3", args["spaceId"])
}

func TestBuildOptionalParamSkippedWhenAbsent(t *testing.T) {
	schema := model.NewSchema(
		[]string{"title", "priority"},
		map[string]model.SchemaProperty{
			"title":    {Type: "string"},
			"priority": {Type: "string"},
		},
		[]string{"title"},
	)
	b := New(schema)
	args, err := b.Build(map[string]any{"title": "t"}, nil)
	require.NoError(t, err)
	_, ok := args["priority"]
	require.False(t, ok)
}
