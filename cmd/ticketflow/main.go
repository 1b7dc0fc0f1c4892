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

// Command ticketflow is the CLI for the intent-routed ticket/wiki
// orchestrator.
//
// Usage:
//
//	ticketflow chat --config config.yaml
//	ticketflow ask --config config.yaml "create a ticket for the login bug"
//	ticketflow validate --config config.yaml
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// CLI defines the command-line interface.
type CLI struct {
	Chat     ChatCmd     `cmd:"" help:"Start an interactive chat session."`
	Ask      AskCmd      `cmd:"" help:"Answer a single request and exit."`
	Validate ValidateCmd `cmd:"" help:"Validate configuration file."`
	Schema   SchemaCmd   `cmd:"" help:"Print the JSON Schema for the configuration file."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config   string `short:"c" help:"Path to config file." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	fmt.Printf("ticketflow version %s\n", version)
	return nil
}

func main() {
	// A missing .env is not an error; it's the common case in production
	// where configuration arrives via real environment variables instead.
	_ = godotenv.Load()

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("ticketflow"),
		kong.Description("Intent-routed ticket and wiki creation assistant."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
