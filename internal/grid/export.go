package grid

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat normalizes an export format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (expected csv|json|yaml)", s)
	}
}

// Document is the structured form of a grid used by the json and yaml
// exports.
type Document struct {
	Rows  int      `json:"rows" yaml:"rows"`
	Cols  int      `json:"cols" yaml:"cols"`
	Cells [][]Cell `json:"cells" yaml:"cells,flow"`
}

// NewDocument wraps g for export.
func NewDocument(g Grid) Document {
	cells := [][]Cell(g.Clone())
	if cells == nil {
		cells = [][]Cell{}
	}
	return Document{Rows: g.Rows(), Cols: g.Cols(), Cells: cells}
}

// Export writes g to w in the given format.
func Export(w io.Writer, g Grid, format Format) error {
	switch format {
	case FormatCSV:
		return Encode(w, g)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(NewDocument(g)); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewDocument(g)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
