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
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kadirpekel/ticketflow/internal/config"
	"github.com/kadirpekel/ticketflow/internal/model"
)

// AskCmd answers a single request non-interactively, for scripting and
// one-shot invocations.
type AskCmd struct {
	Message []string `arg:"" help:"The request to send."`
}

func (c *AskCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := buildApp(cfg, cli.LogLevel)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	defer a.Close()

	reply, _ := a.orchestrator.Handle(context.Background(), model.Request{
		UserInput:     strings.Join(c.Message, " "),
		CorrelationID: uuid.NewString(),
	})
	fmt.Println(reply)
	return nil
}
