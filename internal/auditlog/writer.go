// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package auditlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Writer emits one JSON record per line.
type Writer struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter returns a buffered Writer. Callers must Flush when done.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &Writer{w: bw, enc: enc}
}

// Write appends ev to the stream.
func (w *Writer) Write(ev *Event) error {
	if err := w.enc.Encode(ev); err != nil {
		return fmt.Errorf("failed to write audit event %s: %w", ev.AuditID(), err)
	}
	return nil
}

// Flush writes any buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
