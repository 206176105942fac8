// Copyright 2026 The Botvisor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command botvisord runs one child program under supervision and serves a
// liveness endpoint so that an uptime monitor can keep the host awake.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/botvisor/botvisor/config"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var manifest string
	var name string

	cmd := &cobra.Command{
		Use:   "botvisord [flags]",
		Short: "Supervise a bot process and answer uptime checks",
		Long: `botvisord launches one child program (python bot.py by default),
forwards its output to the log, and serves GET / on $PORT (3000 by default)
so that an uptime monitor can tell the host is alive.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(manifest, os.Getenv)
			if err != nil {
				return err
			}
			if name != "" {
				cfg.Name = name
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, os.Stdout, os.Stderr)
		},
	}
	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "manifest file (.yaml, .toml or .json)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "name used in log messages")
	return cmd
}

func loadConfig(manifest string, getenv func(string) string) (*config.Config, error) {
	cfg := config.Default()
	if manifest != "" {
		var err error
		if cfg, err = config.Load(manifest); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Printf("botvisord: %v", err)
		os.Exit(1)
	}
}
