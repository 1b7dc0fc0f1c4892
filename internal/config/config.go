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

// Package config loads ticketflow's configuration from a YAML file layered
// with environment overrides via koanf, the way the teacher's own
// pkg/config loader does, trimmed to the file+env providers this module
// actually needs (no Consul/etcd/Zookeeper backends in scope).
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LLMProvider identifies which LLM vendor adapter to instantiate.
type LLMProvider string

const (
	LLMProviderAnthropic LLMProvider = "anthropic"
	LLMProviderOpenAI    LLMProvider = "openai"
)

// LLMConfig configures one LLM role (content generation or intent
// classification each get their own, since they have different latency
// budgets per spec §5).
type LLMConfig struct {
	Provider    LLMProvider `koanf:"provider" yaml:"provider"`
	Model       string      `koanf:"model" yaml:"model"`
	APIKey      string      `koanf:"api_key" yaml:"api_key"`
	BaseURL     string      `koanf:"base_url" yaml:"base_url"`
	Temperature float64     `koanf:"temperature" yaml:"temperature"`
}

// SetDefaults fills unset fields with the teacher-style provider defaults.
func (c *LLMConfig) SetDefaults() {
	if c.Provider == "" {
		c.Provider = LLMProviderAnthropic
	}
	if c.Model == "" {
		switch c.Provider {
		case LLMProviderOpenAI:
			c.Model = "gpt-4o"
		default:
			c.Model = "claude-sonnet-4-20250514"
		}
	}
	if c.Temperature == 0 {
		c.Temperature = 0.3
	}
}

// IntentConfig configures the classifier's LLM-fallback stage (spec §6
// option table: INTENT_USE_LLM, INTENT_LLM_TIMEOUT, etc.).
type IntentConfig struct {
	UseLLM             bool    `koanf:"use_llm" yaml:"use_llm"`
	LLMTimeoutSeconds   int     `koanf:"llm_timeout_seconds" yaml:"llm_timeout_seconds"`
	ConfidenceThreshold float64 `koanf:"confidence_threshold" yaml:"confidence_threshold"`
	LLMTemperature      float64 `koanf:"llm_temperature" yaml:"llm_temperature"`
	CacheSize           int     `koanf:"cache_size" yaml:"cache_size"`
}

// SetDefaults applies spec §6's documented defaults.
func (c *IntentConfig) SetDefaults() {
	if c.LLMTimeoutSeconds == 0 {
		c.LLMTimeoutSeconds = 5
	}
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = 0.7
	}
	if c.LLMTemperature == 0 {
		c.LLMTemperature = 0.1
	}
	if c.CacheSize == 0 {
		c.CacheSize = 100
	}
}

// TicketAPIConfig configures the direct ticket (Jira) API client.
type TicketAPIConfig struct {
	BaseURL    string `koanf:"base_url" yaml:"base_url"`
	AuthUser   string `koanf:"auth_user" yaml:"auth_user"`
	AuthToken  string `koanf:"auth_token" yaml:"auth_token"`
	ProjectKey string `koanf:"project_key" yaml:"project_key"`
}

// WikiAPIConfig configures the direct wiki (Confluence) API client.
type WikiAPIConfig struct {
	BaseURL  string `koanf:"base_url" yaml:"base_url"`
	AuthUser string `koanf:"auth_user" yaml:"auth_user"`
	AuthToken string `koanf:"auth_token" yaml:"auth_token"`
	SpaceKey string `koanf:"space_key" yaml:"space_key"`
}

// RemoteToolConfig configures the shared MCP-style tool subprocess.
type RemoteToolConfig struct {
	Enabled bool              `koanf:"enabled" yaml:"enabled"`
	Command string            `koanf:"command" yaml:"command"`
	Args    []string          `koanf:"args" yaml:"args"`
	Env     map[string]string `koanf:"env" yaml:"env"`
}

// MemoryConfig configures the optional persistent conversation store.
type MemoryConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	DSN     string `koanf:"dsn" yaml:"dsn"`
}

// RAGConfig configures the optional keyword-retrieval collaborator. Seeds
// is a list of plain-text document paths loaded into the keyword store at
// startup; the retrieval algorithm itself is a fixed keyword-overlap score,
// not a new indexing engine.
type RAGConfig struct {
	Enabled bool     `koanf:"enabled" yaml:"enabled"`
	Seeds   []string `koanf:"seeds" yaml:"seeds"`
}

// Config is the fully-resolved, defaulted configuration tree ticketflow
// loads once at startup and threads through every collaborator by
// parameter (no package-level singletons, per the teacher's newer pkg/
// style of avoiding globals outside of logger/slog).
type Config struct {
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	ContentLLM LLMConfig    `koanf:"content_llm" yaml:"content_llm"`
	IntentLLM  LLMConfig    `koanf:"intent_llm" yaml:"intent_llm"`
	Intent     IntentConfig `koanf:"intent" yaml:"intent"`

	TicketAPI TicketAPIConfig `koanf:"ticket_api" yaml:"ticket_api"`
	WikiAPI   WikiAPIConfig   `koanf:"wiki_api" yaml:"wiki_api"`

	RemoteTools RemoteToolConfig `koanf:"remote_tools" yaml:"remote_tools"`
	Memory      MemoryConfig     `koanf:"memory" yaml:"memory"`
	RAG         RAGConfig        `koanf:"rag" yaml:"rag"`

	AgentDelegationEnabled bool `koanf:"agent_delegation_enabled" yaml:"agent_delegation_enabled"`
}

// SetDefaults applies every sub-config's defaults.
func (c *Config) SetDefaults() {
	c.ContentLLM.SetDefaults()
	c.IntentLLM.SetDefaults()
	c.Intent.SetDefaults()
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads a YAML config file, overlays environment variables prefixed
// TICKETFLOW_ (double underscore as the nested-key separator, e.g.
// TICKETFLOW_TICKET_API__AUTH_TOKEN), and applies defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("TICKETFLOW_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "TICKETFLOW_")
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}
