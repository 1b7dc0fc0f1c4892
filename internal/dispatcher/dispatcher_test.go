package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/ticketflow/internal/model"
)

type fakeRemote struct {
	tools    []model.ToolDescriptor
	callFn   func(ctx context.Context, name string, args map[string]any) (map[string]any, error)
	listErr  error
}

func (f *fakeRemote) ListTools(ctx context.Context) ([]model.ToolDescriptor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tools, nil
}

func (f *fakeRemote) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	return f.callFn(ctx, name, args)
}

func ticketSchema() model.Schema {
	return model.NewSchema(
		[]string{"summary", "description"},
		map[string]model.SchemaProperty{
			"summary":     {Type: "string"},
			"description": {Type: "string"},
		},
		[]string{"summary"},
	)
}

func TestFindToolRejectsCrossKindMatches(t *testing.T) {
	d := New(Config{UseRemote: true, Remote: &fakeRemote{tools: []model.ToolDescriptor{
		{Name: "createConfluencePage", InputSchema: model.Schema{}},
		{Name: "createJiraIssue", InputSchema: ticketSchema()},
	}}})

	tool, ok := d.FindTool(context.Background(), model.ToolKindCreateTicket)
	require.True(t, ok)
	require.Equal(t, "createJiraIssue", tool.Name)
}

func TestFindToolReturnsFalseWhenRemoteDisabled(t *testing.T) {
	d := New(Config{UseRemote: false})
	_, ok := d.FindTool(context.Background(), model.ToolKindCreateTicket)
	require.False(t, ok)
}

func TestInvokeRemoteSuccess(t *testing.T) {
	remote := &fakeRemote{
		callFn: func(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
			return map[string]any{"result": map[string]any{"id": "JIRA-1", "success": true}}, nil
		},
	}
	d := New(Config{UseRemote: true, Remote: remote})

	result := d.Invoke(context.Background(), InvokeOpts{
		Kind:      model.ToolKindCreateTicket,
		Tool:      model.ToolDescriptor{Name: "createJiraIssue", InputSchema: ticketSchema()},
		ToolFound: true,
		Data:      map[string]any{"summary": "s"},
		Timeout:   time.Second,
	})

	require.True(t, result.Success)
	require.Equal(t, "JIRA-1", result.ID)
	require.Equal(t, model.ToolUsedRemoteProtocol, result.ToolUsed)
}

func TestInvokeTimeoutFallsBackToDirect(t *testing.T) {
	remote := &fakeRemote{
		callFn: func(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	d := New(Config{UseRemote: true, Remote: remote})

	result := d.Invoke(context.Background(), InvokeOpts{
		Tool:      model.ToolDescriptor{Name: "createJiraIssue", InputSchema: ticketSchema()},
		ToolFound: true,
		Data:      map[string]any{"summary": "s"},
		Timeout:   10 * time.Millisecond,
		Direct: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"id": "DIRECT-1", "success": true}, nil
		},
	})

	require.True(t, result.Success)
	require.Equal(t, model.ToolUsedDirectAPIFallback, result.ToolUsed)
	require.Equal(t, "DIRECT-1", result.ID)
}

func TestInvokeSchemaBindingFailureSurfacesWithoutFallback(t *testing.T) {
	d := New(Config{UseRemote: true, Remote: &fakeRemote{}})

	direct := func(ctx context.Context, args map[string]any) (map[string]any, error) {
		t.Fatal("direct api must not be called when local argument binding fails")
		return nil, nil
	}

	result := d.Invoke(context.Background(), InvokeOpts{
		Tool:      model.ToolDescriptor{Name: "createJiraIssue", InputSchema: ticketSchema()},
		ToolFound: true,
		Data:      map[string]any{"description": "missing the required summary field"},
		Timeout:   time.Second,
		Direct:    direct,
	})

	require.False(t, result.Success)
	require.Equal(t, model.ErrorKindSchemaValidation, result.ErrorKind)
	require.NotEmpty(t, result.ErrorMessage)
}

func TestInvokeConflictIsNonFatal(t *testing.T) {
	remote := &fakeRemote{
		callFn: func(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
			return nil, errors.New("page with same title already exists")
		},
	}
	d := New(Config{UseRemote: true, Remote: remote})

	result := d.Invoke(context.Background(), InvokeOpts{
		Tool:      model.ToolDescriptor{Name: "createConfluencePage", InputSchema: model.Schema{}},
		ToolFound: true,
		Data:      map[string]any{},
		Timeout:   time.Second,
	})

	require.False(t, result.Success)
	require.Equal(t, model.ErrorKindConflict, result.ErrorKind)
	require.NotEmpty(t, result.OutcomeNote)
}

func TestInvokeNoToolFoundUsesDirect(t *testing.T) {
	d := New(Config{UseRemote: false})

	result := d.Invoke(context.Background(), InvokeOpts{
		ToolFound: false,
		Data:      map[string]any{"summary": "s"},
		Direct: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{"id": "DIRECT-2", "success": true}, nil
		},
	})

	require.True(t, result.Success)
	require.Equal(t, model.ToolUsedDirectAPI, result.ToolUsed)
}

func TestInvokeBothFailJoinsErrors(t *testing.T) {
	remote := &fakeRemote{
		callFn: func(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
			return map[string]any{"result": "not json and no brace"}, nil
		},
	}
	d := New(Config{UseRemote: true, Remote: remote})

	result := d.Invoke(context.Background(), InvokeOpts{
		Tool:      model.ToolDescriptor{Name: "createJiraIssue", InputSchema: ticketSchema()},
		ToolFound: true,
		Data:      map[string]any{"summary": "s"},
		Timeout:   time.Second,
		Direct: func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return nil, errors.New("direct api unauthorized: 401")
		},
	})

	require.False(t, result.Success)
	require.Equal(t, model.ToolUsedDirectAPIFallback, result.ToolUsed)
	require.Contains(t, result.ErrorMessage, "parse-err")
}
