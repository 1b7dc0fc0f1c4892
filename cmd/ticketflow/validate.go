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

	"github.com/kadirpekel/ticketflow/internal/config"
)

// ValidateCmd loads and defaults the configuration file without wiring any
// collaborators, to catch YAML/env mistakes before a real run.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("config is invalid: %w", err)
	}

	fmt.Println("config OK")
	fmt.Printf("  content llm: %s / %s\n", cfg.ContentLLM.Provider, cfg.ContentLLM.Model)
	fmt.Printf("  ticketing:   %v\n", cfg.TicketAPI.BaseURL != "")
	fmt.Printf("  wiki:        %v\n", cfg.WikiAPI.BaseURL != "")
	fmt.Printf("  remote tools: %v\n", cfg.RemoteTools.Enabled)
	fmt.Printf("  rag:         %v\n", cfg.RAG.Enabled)
	fmt.Printf("  memory:      %v\n", cfg.Memory.Enabled)
	fmt.Printf("  delegation:  %v\n", cfg.AgentDelegationEnabled)
	return nil
}
