package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, LLMProviderAnthropic, cfg.ContentLLM.Provider)
	require.Equal(t, 0.7, cfg.Intent.ConfidenceThreshold)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
ticket_api:
  base_url: https://example.atlassian.net
  project_key: ENG
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "https://example.atlassian.net", cfg.TicketAPI.BaseURL)
	require.Equal(t, "ENG", cfg.TicketAPI.ProjectKey)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	t.Setenv("TICKETFLOW_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
}
