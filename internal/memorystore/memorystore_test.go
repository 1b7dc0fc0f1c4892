package memorystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/ticketflow/internal/model"
)

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}

func TestAppendMessageCreatesConversationLazily(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.AppendMessage(ctx, "conv-1", model.RoleUser, "hello"))
	require.NoError(t, store.AppendMessage(ctx, "conv-1", model.RoleAssistant, "hi there"))

	messages, err := store.GetConversation(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, model.RoleUser, messages[0].Role)
	require.Equal(t, "hello", messages[0].Content)
	require.Equal(t, model.RoleAssistant, messages[1].Role)
}

func TestGetConversationReturnsInSequenceOrder(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendMessage(ctx, "conv-2", model.RoleUser, "m"))
	}

	messages, err := store.GetConversation(ctx, "conv-2")
	require.NoError(t, err)
	require.Len(t, messages, 5)
}

func TestGetConversationEmptyForUnknownID(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	messages, err := store.GetConversation(context.Background(), "does-not-exist")
	require.NoError(t, err)
	require.Empty(t, messages)
}
