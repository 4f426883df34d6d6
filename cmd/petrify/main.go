// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the petrify CLI, which converts
// handwritten .note archives into Excalidraw drawings.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/petrify/internal/logging"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the petrify CLI.
var rootCmd = &cobra.Command{
	Use:   "petrify",
	Short: "Convert handwritten notes into Excalidraw drawings",
	Long: `petrify turns .note archives (zip containers of pen samples and page
rasters) into Excalidraw scenes. Strokes are rebuilt from the raw samples
and their color, opacity and width are read back from the page raster.

Output is either a plain .excalidraw JSON file or a .excalidraw.md file for
the Obsidian Excalidraw plugin. Conversions are recorded in a local ledger
so unchanged notes are skipped on the next run.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetLogger(logging.NewTextLogger(os.Stderr, viper.GetBool("verbose")))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./petrify.yaml or ~/.config/petrify/petrify.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log reconstruction details to stderr")
	rootCmd.PersistentFlags().String("ledger", "", "conversion ledger database (default: "+defaultLedgerHint+")")
	rootCmd.PersistentFlags().Bool("no-ledger", false, "neither read nor write the conversion ledger")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("ledger.path", rootCmd.PersistentFlags().Lookup("ledger"))
	_ = viper.BindPFlag("ledger.disabled", rootCmd.PersistentFlags().Lookup("no-ledger"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("petrify")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "petrify"))
		}
	}

	viper.SetEnvPrefix("PETRIFY")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()
	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
