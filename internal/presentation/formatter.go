// Package presentation renders CLI output.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	format string
}

// NewFormatter creates a formatter writing format ("json" or "yaml") to writer.
func NewFormatter(writer io.Writer, format string) (*Formatter, error) {
	switch format {
	case FormatJSON, FormatYAML:
	case "":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return &Formatter{writer: writer, format: format}, nil
}

// FormatReport writes report.
func (f *Formatter) FormatReport(report ReportDTO) error {
	return f.encode(report)
}

// FormatValue writes any value in the configured format.
func (f *Formatter) FormatValue(v any) error {
	return f.encode(v)
}

func (f *Formatter) encode(v any) error {
	if f.format == FormatYAML {
		encoder := yaml.NewEncoder(f.writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	}
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
