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
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/kadirpekel/ticketflow/internal/config"
	"github.com/kadirpekel/ticketflow/internal/model"
)

// ChatCmd starts an interactive REPL session against the orchestrator.
type ChatCmd struct{}

// Run drives a read-eval-print loop: each line is one orchestrator
// request, seeded with the running conversation's history when a
// conversation store is configured.
func (c *ChatCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := buildApp(cfg, cli.LogLevel)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer a.Close()

	conversationID := uuid.NewString()
	if a.memory != nil {
		if err := a.memory.CreateConversation(context.Background(), conversationID, "chat session"); err != nil {
			return fmt.Errorf("create conversation: %w", err)
		}
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Println("Type your message, or /quit to end the session.")

	for {
		fmt.Print("you> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		history, err := c.loadHistory(a, conversationID)
		if err != nil {
			slog.Warn("chat: failed to load conversation history", "error", err)
		}

		reply, _ := a.orchestrator.Handle(context.Background(), model.Request{
			UserInput:     line,
			History:       history,
			CorrelationID: uuid.NewString(),
		})
		fmt.Printf("ticketflow> %s\n", reply)

		if a.memory != nil {
			if err := a.memory.AppendMessage(context.Background(), conversationID, model.RoleUser, line); err != nil {
				slog.Warn("chat: failed to persist user message", "error", err)
			}
			if err := a.memory.AppendMessage(context.Background(), conversationID, model.RoleAssistant, reply); err != nil {
				slog.Warn("chat: failed to persist assistant message", "error", err)
			}
		}
	}
}

func (c *ChatCmd) loadHistory(a *app, conversationID string) ([]model.Message, error) {
	if a.memory == nil {
		return nil, nil
	}
	return a.memory.GetConversation(context.Background(), conversationID)
}
