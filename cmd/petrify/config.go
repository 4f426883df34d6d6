// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/petrify/internal/excalidraw"
	"github.com/pdiddy/petrify/internal/ledger"
	"github.com/pdiddy/petrify/pkg/types"
)

const defaultLedgerHint = ledger.DefaultPath

// envKeyReplacer maps nested keys such as conversion.output_dir to
// PETRIFY_CONVERSION_OUTPUT_DIR.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("conversion.format", string(types.OutputMarkdown))
	v.SetDefault("conversion.include_background", true)
	v.SetDefault("conversion.stroke_width_divisor", excalidraw.DefaultStrokeWidthDivisor)
	v.SetDefault("ledger.path", ledger.DefaultPath)
}

// parseFormat accepts "markdown"/"md" and "json"/"excalidraw".
func parseFormat(s string) (types.OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return types.OutputMarkdown, nil
	case "json", "excalidraw":
		return types.OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want markdown or json)", s)
	}
}

// pipelineConfig reads every configuration section from v: flags bound
// into it, PETRIFY_* environment variables, the config file and defaults.
func pipelineConfig(v *viper.Viper) (types.PipelineConfig, error) {
	format, err := parseFormat(v.GetString("conversion.format"))
	if err != nil {
		return types.PipelineConfig{}, err
	}
	return types.PipelineConfig{
		Conversion: types.ConversionConfig{
			Overrides: types.Overrides{
				StrokeColor: v.GetString("conversion.stroke_color"),
				StrokeWidth: v.GetFloat64("conversion.stroke_width"),
			},
			OutputDir:          v.GetString("conversion.output_dir"),
			Format:             format,
			IncludeBackground:  v.GetBool("conversion.include_background"),
			StrokeWidthDivisor: v.GetFloat64("conversion.stroke_width_divisor"),
			Force:              v.GetBool("conversion.force"),
			Tags:               v.GetStringSlice("conversion.tags"),
		},
		Ledger: types.LedgerConfig{
			Path:     v.GetString("ledger.path"),
			Disabled: v.GetBool("ledger.disabled"),
		},
	}, nil
}

// openLedger opens the configured ledger, or returns nil when disabled.
func openLedger(cfg types.LedgerConfig) (*ledger.Store, error) {
	if cfg.Disabled {
		return nil, nil
	}
	return ledger.Open(cfg)
}
