// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mcptools exposes note conversion as Model Context Protocol tools.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pdiddy/petrify/internal/convert"
	"github.com/pdiddy/petrify/internal/ledger"
	"github.com/pdiddy/petrify/pkg/types"
)

// History lists past conversions. *ledger.Store implements it.
type History interface {
	List(ctx context.Context, status types.ConversionStatus) ([]ledger.Entry, error)
}

// Deps are the collaborators the tools run against.
type Deps struct {
	Reader convert.NoteReader
	// Defaults seeds each convert_note call; tool arguments override it.
	Defaults types.ConversionConfig
	// History may be nil, in which case conversion_history is not
	// registered.
	History History
}

// NewServer returns an MCP server with every tool registered.
func NewServer(name, version string, deps Deps) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(true))
	RegisterTools(s, deps)
	return s
}

// RegisterTools adds the conversion tools to s.
func RegisterTools(s *server.MCPServer, deps Deps) {
	s.AddTool(pingTool(), pingHandler)
	s.AddTool(convertTool(), convertHandler(deps))
	if deps.History != nil {
		s.AddTool(historyTool(), historyHandler(deps.History))
	}
}

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

// --- ping ---

func pingTool() mcp.Tool {
	return mcp.NewTool("ping",
		mcp.WithDescription("Health check, returns pong"),
	)
}

func pingHandler(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong"), nil
}

// --- convert_note ---

func convertTool() mcp.Tool {
	return mcp.NewTool("convert_note",
		mcp.WithDescription("Convert a handwritten .note archive (or extracted note directory) into an Excalidraw drawing. Output ending in .md is written as an Obsidian Excalidraw file, anything else as plain Excalidraw JSON."),
		mcp.WithString("input",
			mcp.Description("Path to the .note file or extracted note directory"),
			mcp.Required(),
		),
		mcp.WithString("output",
			mcp.Description("Output path. Omit to write <name>.excalidraw.md next to the input."),
		),
		mcp.WithString("stroke_color",
			mcp.Description("Hex color applied to every stroke (e.g. #1e1e1e). Omit to keep colors sampled from the page raster."),
		),
		mcp.WithNumber("stroke_width",
			mcp.Description("Stroke width in raster pixels applied to every stroke. Omit to keep estimated widths."),
		),
		mcp.WithBoolean("include_background",
			mcp.Description("Embed page rasters as background images (default from configuration)"),
		),
	)
}

func convertHandler(deps Deps) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input := req.GetString("input", "")
		if input == "" {
			return toolError(fmt.Errorf("input is required"))
		}

		cfg := deps.Defaults
		cfg.StrokeColor = req.GetString("stroke_color", cfg.StrokeColor)
		cfg.StrokeWidth = req.GetFloat("stroke_width", cfg.StrokeWidth)
		cfg.IncludeBackground = req.GetBool("include_background", cfg.IncludeBackground)

		output := req.GetString("output", "")
		if output == "" {
			output = convert.OutputPath(input, cfg.OutputDir, cfg.Format)
		}

		c, err := convert.New(deps.Reader, cfg, nil)
		if err != nil {
			return toolError(err)
		}
		res, err := c.ConvertFile(input, output)
		if err != nil {
			return toolError(err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Converted %s -> %s (%d pages, %d strokes)", input, res.Output, res.Pages, res.Strokes)
		for _, p := range res.Sidecars {
			fmt.Fprintf(&sb, "\nbackground: %s", p)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- conversion_history ---

func historyTool() mcp.Tool {
	return mcp.NewTool("conversion_history",
		mcp.WithDescription("List recorded conversions from the ledger."),
		mcp.WithString("status",
			mcp.Description("Filter by status: converted or failed. Omit for all."),
		),
	)
}

func historyHandler(h History) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status := types.ConversionStatus(req.GetString("status", ""))
		entries, err := h.List(ctx, status)
		if err != nil {
			return toolError(err)
		}
		if len(entries) == 0 {
			return mcp.NewToolResultText("No conversions recorded."), nil
		}

		var sb strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&sb, "%s  %s  %s", e.Status, e.InputPath, e.ConvertedAt.Format("2006-01-02 15:04"))
			if e.Error != "" {
				fmt.Fprintf(&sb, "  (%s)", e.Error)
			}
			sb.WriteString("\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
