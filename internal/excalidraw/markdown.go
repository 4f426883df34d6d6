// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package excalidraw

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// EmbeddedFile links an image element's file id to a sidecar file name
// in the Markdown container's Embedded Files section.
type EmbeddedFile struct {
	FileID string
	Name   string
}

// frontmatter is the YAML header the plugin looks for.
type frontmatter struct {
	Plugin string   `yaml:"excalidraw-plugin"`
	Tags   []string `yaml:"tags"`
}

// JSON renders doc as indented Excalidraw JSON.
func JSON(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding excalidraw document: %w", err)
	}
	return append(data, '\n'), nil
}

// Markdown renders doc as a .excalidraw.md container: frontmatter, the
// Text Elements and Embedded Files sections, and the drawing as
// LZ-string compressed JSON inside a %% comment block.
func Markdown(doc Document, embedded []EmbeddedFile, tags []string) (string, error) {
	head, err := yaml.Marshal(frontmatter{Plugin: "parsed", Tags: tags})
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	scene, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding excalidraw document: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString("# Excalidraw Data\n\n")
	b.WriteString("## Text Elements\n")
	b.WriteString("## Embedded Files\n")
	b.WriteString(embeddedSection(embedded))
	b.WriteString("\n%%\n")
	b.WriteString("## Drawing\n")
	b.WriteString("```compressed-json\n")
	b.WriteString(CompressToBase64(string(scene)))
	b.WriteString("\n```\n")
	b.WriteString("%%\n")
	return b.String(), nil
}

func embeddedSection(files []EmbeddedFile) string {
	if len(files) == 0 {
		return "\n"
	}
	var b strings.Builder
	b.WriteString("\n")
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: [[%s]]", f.FileID, f.Name)
	}
	b.WriteString("\n")
	return b.String()
}

// ParseMarkdown extracts and decompresses the drawing of a .excalidraw.md
// container.
func ParseMarkdown(content string) (Document, error) {
	const open, closing = "```compressed-json\n", "\n```"
	start := strings.Index(content, open)
	if start < 0 {
		return Document{}, fmt.Errorf("no compressed-json block")
	}
	rest := content[start+len(open):]
	end := strings.Index(rest, closing)
	if end < 0 {
		return Document{}, fmt.Errorf("unterminated compressed-json block")
	}
	scene, ok := DecompressFromBase64(rest[:end])
	if !ok {
		return Document{}, fmt.Errorf("corrupt compressed-json block")
	}
	var doc Document
	if err := json.Unmarshal([]byte(scene), &doc); err != nil {
		return Document{}, fmt.Errorf("decoding excalidraw document: %w", err)
	}
	return doc, nil
}
