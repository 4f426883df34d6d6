// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/petrify/internal/mcptools"
	"github.com/pdiddy/petrify/internal/notefile"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve conversion tools over MCP (stdio)",
	Long: `Mcp runs a Model Context Protocol server on stdin/stdout exposing the
convert_note tool, plus conversion_history when the ledger is enabled.
Conversion defaults come from the config file and PETRIFY_* variables.`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(viper.GetViper())
	if err != nil {
		return err
	}

	deps := mcptools.Deps{Reader: notefile.NewReader(nil), Defaults: cfg.Conversion}
	store, err := openLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
		deps.History = store
	}

	s := mcptools.NewServer("petrify", version, deps)
	if err := server.ServeStdio(s); err != nil {
		return fmt.Errorf("petrify mcp: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
