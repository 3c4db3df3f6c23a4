// Package output serializes extracted records for the one-shot extract
// command.
package output

import (
	"fmt"
	"io"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Writer handles output serialization. JSON and YAML buffer until Flush so
// a batch renders as one document; JSONL streams.
type Writer interface {
	// Write outputs a single record.
	Write(data any) error

	// Flush ensures all buffered data is written.
	Flush() error

	// Close flushes and releases resources.
	Close() error
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(w), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
