package output

import (
	"bufio"
	"encoding/json"
	"io"
)

const jsonIndent = "  "

// JSONWriter writes pretty-printed JSON: one object for a single record,
// an array for several.
type JSONWriter struct {
	w     *bufio.Writer
	items []any
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{
		w:     bufio.NewWriter(w),
		items: make([]any, 0),
	}
}

// Write buffers a single item for JSON output.
func (w *JSONWriter) Write(data any) error {
	w.items = append(w.items, data)
	return nil
}

// Flush writes the buffered items.
func (w *JSONWriter) Flush() error {
	var out any = w.items
	if len(w.items) == 1 {
		out = w.items[0]
	}

	encoded, err := json.MarshalIndent(out, "", jsonIndent)
	if err != nil {
		return err
	}

	if _, err := w.w.Write(encoded); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONWriter) Close() error {
	return w.Flush()
}

// JSONLWriter writes newline-delimited JSON, one record per line.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{w: bufio.NewWriter(w)}
}

// Write writes a single item as a JSON line.
func (w *JSONLWriter) Write(data any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := w.w.Write(encoded); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}
