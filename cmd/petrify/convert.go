// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/petrify/internal/convert"
	"github.com/pdiddy/petrify/internal/notefile"
	"github.com/pdiddy/petrify/internal/reconstruct"
	"github.com/pdiddy/petrify/internal/segment"
)

var convertCmd = &cobra.Command{
	Use:   "convert [notes...]",
	Short: "Convert .note archives to Excalidraw drawings",
	Long: `Convert reads each .note archive (or extracted note directory), rebuilds
its strokes and writes an Excalidraw drawing. Directory arguments are
scanned for *.note files.

By default the output is <name>.excalidraw.md next to the input, with page
rasters written as <name>.excalidraw_bg_<page>.png sidecars. Use --format
json for a self-contained .excalidraw file.

With -o the single input is written to exactly that path instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("no-background") {
		noBg, _ := cmd.Flags().GetBool("no-background")
		viper.Set("conversion.include_background", !noBg)
	}
	cfg, err := pipelineConfig(viper.GetViper())
	if err != nil {
		return err
	}

	gap, _ := cmd.Flags().GetInt64("gap-threshold")
	reader := notefile.NewReader(reconstruct.WithSegmenter(segment.Segmenter{GapThreshold: gap}))

	output, _ := cmd.Flags().GetString("output")
	if output != "" {
		if len(args) != 1 {
			return fmt.Errorf("--output takes exactly one input, got %d", len(args))
		}
		c, err := convert.New(reader, cfg.Conversion, nil)
		if err != nil {
			return err
		}
		res, err := c.ConvertFile(args[0], output)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "converted: %s -> %s (%d pages, %d strokes)\n", args[0], res.Output, res.Pages, res.Strokes)
		return nil
	}

	inputs, err := convert.ResolveInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .note files found in %v", args)
	}

	store, err := openLedger(cfg.Ledger)
	if err != nil {
		return err
	}
	var l convert.Ledger
	if store != nil {
		defer store.Close()
		l = store
	}

	c, err := convert.New(reader, cfg.Conversion, l)
	if err != nil {
		return err
	}
	result := c.ConvertBatch(cmd.Context(), inputs, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d note(s) failed conversion", result.Failed)
	}
	return nil
}

func init() {
	f := convertCmd.Flags()
	f.StringP("output", "o", "", "output file for a single input (suffix .md selects Markdown)")
	f.String("output-dir", "", "directory for converted files (default: next to each input)")
	f.String("format", "markdown", "output format: markdown or json")
	f.String("stroke-color", "", "hex color applied to every stroke, e.g. #1e1e1e")
	f.Float64("stroke-width", 0, "stroke width in raster pixels applied to every stroke")
	f.Float64("stroke-width-divisor", 6, "divide raster pixel widths by this for Excalidraw widths")
	f.Bool("no-background", false, "do not embed page rasters")
	f.Bool("force", false, "reconvert notes the ledger marks unchanged")
	f.StringSlice("tag", nil, "frontmatter tag for Markdown output (repeatable)")
	f.Int64("gap-threshold", segment.DefaultGapThreshold, "timestamp gap (device ticks) that starts a new stroke")

	_ = viper.BindPFlag("conversion.output_dir", f.Lookup("output-dir"))
	_ = viper.BindPFlag("conversion.format", f.Lookup("format"))
	_ = viper.BindPFlag("conversion.stroke_color", f.Lookup("stroke-color"))
	_ = viper.BindPFlag("conversion.stroke_width", f.Lookup("stroke-width"))
	_ = viper.BindPFlag("conversion.stroke_width_divisor", f.Lookup("stroke-width-divisor"))
	_ = viper.BindPFlag("conversion.force", f.Lookup("force"))
	_ = viper.BindPFlag("conversion.tags", f.Lookup("tag"))

	rootCmd.AddCommand(convertCmd)
}
