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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kadirpekel/ticketflow/internal/classifier"
	"github.com/kadirpekel/ticketflow/internal/config"
	"github.com/kadirpekel/ticketflow/internal/dispatcher"
	"github.com/kadirpekel/ticketflow/internal/llmprovider"
	"github.com/kadirpekel/ticketflow/internal/logger"
	"github.com/kadirpekel/ticketflow/internal/memorystore"
	"github.com/kadirpekel/ticketflow/internal/orchestrator"
	"github.com/kadirpekel/ticketflow/internal/rag"
	"github.com/kadirpekel/ticketflow/internal/router"
	"github.com/kadirpekel/ticketflow/internal/ticketapi"
	"github.com/kadirpekel/ticketflow/internal/toolprotocol"
	"github.com/kadirpekel/ticketflow/internal/wikiapi"
)

// app bundles the composed orchestrator with the collaborators main.go's
// commands need to close over directly (the conversation store, for
// persistence; the tool client, for a clean shutdown).
type app struct {
	orchestrator *orchestrator.Orchestrator
	memory       *memorystore.Store
	toolClient   *toolprotocol.Client
}

// buildApp wires every collaborator named in cfg into one Orchestrator,
// the way cmd/hector/main.go wires pkg/runtime's collaborators from its own
// Config tree.
func buildApp(cfg *config.Config, logLevelOverride string) (*app, error) {
	level := logger.ParseLevel(cfg.LogLevel)
	if logLevelOverride != "" {
		level = logger.ParseLevel(logLevelOverride)
	}
	logger.Init(level, os.Stderr)

	contentLLM, err := llmprovider.NewAnthropic(llmprovider.AnthropicConfig{
		APIKey:      resolveAPIKey(cfg.ContentLLM),
		Model:       cfg.ContentLLM.Model,
		BaseURL:     cfg.ContentLLM.BaseURL,
		MaxTokens:   4096,
		Timeout:     90 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("build content llm: %w", err)
	}

	var intentLLM llmprovider.Provider
	if cfg.Intent.UseLLM {
		intentLLM, err = llmprovider.NewAnthropic(llmprovider.AnthropicConfig{
			APIKey:    resolveAPIKey(cfg.IntentLLM),
			Model:     cfg.IntentLLM.Model,
			BaseURL:   cfg.IntentLLM.BaseURL,
			MaxTokens: 256,
			Timeout:   time.Duration(cfg.Intent.LLMTimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("build intent llm: %w", err)
		}
	}

	classifierCaps := classifier.Capabilities{
		TicketingEnabled:  cfg.TicketAPI.BaseURL != "",
		RetrievalEnabled:  cfg.RAG.Enabled,
		DelegationEnabled: cfg.AgentDelegationEnabled,
	}
	intentClassifier := classifier.New(classifier.Config{
		UseLLM:              cfg.Intent.UseLLM,
		LLMTimeout:          time.Duration(cfg.Intent.LLMTimeoutSeconds) * time.Second,
		ConfidenceThreshold: cfg.Intent.ConfidenceThreshold,
		LLMTemperature:      cfg.Intent.LLMTemperature,
		CacheSize:           cfg.Intent.CacheSize,
	}, classifierCaps, intentLLM)

	var toolClient *toolprotocol.Client
	var remote dispatcher.RemoteTools
	if cfg.RemoteTools.Enabled {
		toolClient, err = toolprotocol.New(toolprotocol.Config{
			Name:    "ticketflow-tools",
			Command: cfg.RemoteTools.Command,
			Args:    cfg.RemoteTools.Args,
			Env:     cfg.RemoteTools.Env,
		})
		if err != nil {
			return nil, fmt.Errorf("build remote tool client: %w", err)
		}
		remote = toolClient
	}

	dispatch := dispatcher.New(dispatcher.Config{
		Remote:      remote,
		UseRemote:   cfg.RemoteTools.Enabled,
		WikiBaseURL: cfg.WikiAPI.BaseURL,
	})

	var ticketClient orchestrator.TicketCreator
	if cfg.TicketAPI.BaseURL != "" {
		c, err := ticketapi.New(ticketapi.Config{
			BaseURL:    cfg.TicketAPI.BaseURL,
			AuthUser:   cfg.TicketAPI.AuthUser,
			AuthToken:  cfg.TicketAPI.AuthToken,
			ProjectKey: cfg.TicketAPI.ProjectKey,
		})
		if err != nil {
			return nil, fmt.Errorf("build ticket api client: %w", err)
		}
		ticketClient = c
	}

	var wikiClient orchestrator.WikiCreator
	wikiEnabled := cfg.WikiAPI.BaseURL != ""
	if wikiEnabled {
		c, err := wikiapi.New(wikiapi.Config{
			BaseURL:   cfg.WikiAPI.BaseURL,
			AuthUser:  cfg.WikiAPI.AuthUser,
			AuthToken: cfg.WikiAPI.AuthToken,
			SpaceKey:  cfg.WikiAPI.SpaceKey,
		})
		if err != nil {
			return nil, fmt.Errorf("build wiki api client: %w", err)
		}
		wikiClient = c
	}

	var retriever rag.Retriever
	if cfg.RAG.Enabled {
		docs, err := loadRAGDocuments(cfg.RAG.Seeds)
		if err != nil {
			return nil, fmt.Errorf("load rag seed documents: %w", err)
		}
		retriever = rag.NewKeywordStore(docs)
	}

	var store *memorystore.Store
	if cfg.Memory.Enabled {
		store, err = memorystore.Open(cfg.Memory.DSN)
		if err != nil {
			return nil, fmt.Errorf("open conversation memory: %w", err)
		}
	}

	orch := orchestrator.New(orchestrator.Collaborators{
		ContentLLM:   contentLLM,
		Classifier:   intentClassifier,
		Dispatcher:   dispatch,
		TicketAPI:    ticketClient,
		WikiAPI:      wikiClient,
		WikiSpaceKey: cfg.WikiAPI.SpaceKey,
		RAG:          retriever,
		Delegation:   nil,
		Capabilities: router.Capabilities{
			Ticketing:  cfg.TicketAPI.BaseURL != "",
			Wiki:       wikiEnabled,
			RAG:        cfg.RAG.Enabled,
			Delegation: cfg.AgentDelegationEnabled,
		},
	})

	slog.Info("ticketflow: collaborators wired",
		"ticketing", cfg.TicketAPI.BaseURL != "",
		"wiki", wikiEnabled,
		"remote_tools", cfg.RemoteTools.Enabled,
		"memory", cfg.Memory.Enabled)

	return &app{orchestrator: orch, memory: store, toolClient: toolClient}, nil
}

func (a *app) Close() {
	if a.memory != nil {
		_ = a.memory.Close()
	}
	if a.toolClient != nil {
		_ = a.toolClient.Close()
	}
}

// resolveAPIKey follows the teacher's convention of letting an explicit
// config value win but falling back to the provider's standard environment
// variable name.
func resolveAPIKey(cfg config.LLMConfig) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	switch cfg.Provider {
	case config.LLMProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
}

// loadRAGDocuments reads each seed path as a plain-text document, keyed by
// its base filename, for the keyword store to score queries against.
func loadRAGDocuments(seeds []string) ([]rag.Document, error) {
	docs := make([]rag.Document, 0, len(seeds))
	for _, path := range seeds {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed %s: %w", path, err)
		}
		docs = append(docs, rag.Document{
			ID:      filepath.Base(path),
			Content: string(content),
		})
	}
	return docs, nil
}
