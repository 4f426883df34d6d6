package types

// OutputFormat selects the conversion output container.
type OutputFormat string

const (
	// OutputMarkdown writes the .excalidraw.md container used by the
	// Obsidian Excalidraw plugin.
	OutputMarkdown OutputFormat = "markdown"
	// OutputJSON writes a plain .excalidraw JSON document.
	OutputJSON OutputFormat = "json"
)

// Extension returns the file suffix written for the format.
func (f OutputFormat) Extension() string {
	if f == OutputJSON {
		return ".excalidraw"
	}
	return ".excalidraw.md"
}

// Overrides replace estimated stroke attributes on every stroke of every
// page. Zero values mean "no override".
type Overrides struct {
	// StrokeColor is a hex color such as "#1e1e1e".
	StrokeColor string `json:"stroke_color,omitempty" yaml:"stroke_color,omitempty"`

	// StrokeWidth is a positive width in raster pixels.
	StrokeWidth float64 `json:"stroke_width,omitempty" yaml:"stroke_width,omitempty"`
}

// Empty reports whether no override is set.
func (o Overrides) Empty() bool {
	return o.StrokeColor == "" && o.StrokeWidth == 0
}

// ConversionConfig holds settings for the convert stage.
type ConversionConfig struct {
	Overrides `yaml:",inline"`

	// OutputDir is the directory that receives converted files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Format selects markdown or json output.
	Format OutputFormat `json:"format" yaml:"format"`

	// IncludeBackground embeds page rasters as image elements.
	IncludeBackground bool `json:"include_background" yaml:"include_background"`

	// StrokeWidthDivisor scales raster pixel widths down to Excalidraw
	// stroke widths (default 6).
	StrokeWidthDivisor float64 `json:"stroke_width_divisor" yaml:"stroke_width_divisor"`

	// Force reconverts inputs even when the ledger marks them unchanged.
	Force bool `json:"force" yaml:"force"`

	// Tags are written to the Markdown frontmatter.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// LedgerConfig holds settings for the conversion ledger.
type LedgerConfig struct {
	// Path is the SQLite database file (default .petrify/ledger.db).
	Path string `json:"path" yaml:"path"`

	// Disabled turns off ledger reads and writes.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// PipelineConfig groups all configuration sections.
type PipelineConfig struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Ledger     LedgerConfig     `json:"ledger" yaml:"ledger"`
}
