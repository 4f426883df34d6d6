// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/petrify/internal/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the conversion ledger as YAML or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(viper.GetViper())
	if err != nil {
		return err
	}
	store, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml":
		err = store.ExportYAML(cmd.Context(), args[0])
	case "json":
		err = store.ExportJSON(cmd.Context(), args[0])
	default:
		return fmt.Errorf("unknown export format %q (want yaml or json)", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("exported ledger to %s\n", args[0])
	return nil
}

func init() {
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	rootCmd.AddCommand(exportCmd)
}
