package report

import (
	"encoding/json"
	"io"
)

// JSONWriter outputs the deduplicated product list as a JSON array.
// This format is designed for downstream tooling and programmatic use.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indentString is the indentation string for each nesting level.
	// Empty produces compact output.
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the indentation string used for each nesting level.
// An empty string produces compact output.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentString = indent
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
// Output is indented with four spaces by default.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter:   newBaseWriter(output),
		indentString: "    ",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result's deduplicated products as a JSON array.
func (w *JSONWriter) Write(result *Result) (int, error) {
	var data []byte
	var err error

	if w.indentString != "" {
		data, err = json.MarshalIndent(result.Products, "", w.indentString)
	} else {
		data, err = json.Marshal(result.Products)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
