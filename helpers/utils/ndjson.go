package utils

import (
	"encoding/json"
	"io"
	"net/http"
)

// NDJSONWriter writes one JSON document per line, flushing after each when
// the underlying writer supports it.
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter wraps w
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	return &NDJSONWriter{w: w, encoder: encoder}
}

// Write encodes v followed by a newline
func (nw *NDJSONWriter) Write(v any) error {
	if err := nw.encoder.Encode(v); err != nil {
		return err
	}
	if flusher, ok := nw.w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
