package llmprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAnthropicRequiresAPIKey(t *testing.T) {
	_, err := NewAnthropic(AnthropicConfig{})
	require.Error(t, err)
}

func TestAnthropicGenerateReturnsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		var body anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "hello", body.Messages[0].Content)

		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicContentBlock{{Type: "text", Text: `{"intent":"general_chat"}`}},
		})
	}))
	defer srv.Close()

	client, err := NewAnthropic(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := client.Generate(context.Background(), "system", "hello", 0.1, true)
	require.NoError(t, err)
	require.Equal(t, `{"intent":"general_chat"}`, out)
}

func TestAnthropicGenerateSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(anthropicResponse{
			Error: &anthropicError{Type: "invalid_request_error", Message: "bad model"},
		})
	}))
	defer srv.Close()

	client, err := NewAnthropic(AnthropicConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "system", "hello", 0.1, false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "bad model")
}
