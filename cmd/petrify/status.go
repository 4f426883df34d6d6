// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/petrify/internal/ledger"
	"github.com/pdiddy/petrify/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded conversions from the ledger",
	Long: `Status lists every note the ledger has seen with its last outcome, page
and stroke counts, and output path. Use --failed to show only failures.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := pipelineConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cfg.Ledger.Disabled {
		return fmt.Errorf("ledger is disabled")
	}
	store, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	var status types.ConversionStatus
	if failed, _ := cmd.Flags().GetBool("failed"); failed {
		status = types.ConversionFailed
	}
	entries, err := store.List(cmd.Context(), status)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No conversions recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tPAGES\tSTROKES\tCONVERTED\tINPUT\tOUTPUT / ERROR")
	for _, e := range entries {
		detail := e.OutputPath
		if e.Error != "" {
			detail = e.Error
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			e.Status, e.Pages, e.Strokes, e.ConvertedAt.Local().Format("2006-01-02 15:04"), e.InputPath, detail)
	}
	return tw.Flush()
}

func init() {
	statusCmd.Flags().Bool("failed", false, "show only failed conversions")
	rootCmd.AddCommand(statusCmd)
}
