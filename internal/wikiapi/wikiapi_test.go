package wikiapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequiresBaseURLAndCredentials(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestCreatePageReturnsIDAndAbsoluteLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wiki/rest/api/content", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"98765","_links":{"webui":"/spaces/S/pages/98765/Integrate-MCP","base":"https://x.atlassian.net"}}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, AuthUser: "bot", AuthToken: "tok", SpaceKey: "S"})
	require.NoError(t, err)

	result, err := client.CreatePage(context.Background(), CreatePageInput{Title: "Integrate MCP", Body: "<p>body</p>"})
	require.NoError(t, err)
	require.Equal(t, "98765", result.ID)
	require.Equal(t, "https://x.atlassian.net/spaces/S/pages/98765/Integrate-MCP", result.Link)
}

func TestTenantInfoReturnsCloudID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/_edge/tenant_info", r.URL.Path)
		_, _ = w.Write([]byte(`{"cloudId":"abc-123"}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, AuthUser: "bot", AuthToken: "tok"})
	require.NoError(t, err)

	cloudID, err := client.TenantInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, "abc-123", cloudID)
}

func TestSpaceInfoReturnsNumericID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wiki/rest/api/space/ENG", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":55,"key":"ENG"}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, AuthUser: "bot", AuthToken: "tok"})
	require.NoError(t, err)

	id, err := client.SpaceInfo(context.Background(), "ENG")
	require.NoError(t, err)
	require.Equal(t, "55", id)
}

func TestCreatePageSurfacesConflictStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"A page with this title already exists"}`))
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, AuthUser: "bot", AuthToken: "tok", SpaceKey: "S"})
	require.NoError(t, err)

	_, err = client.CreatePage(context.Background(), CreatePageInput{Title: "dup"})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Contains(t, statusErr.Body, "already exists")
}
