// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package auditlog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// MaxLineSize bounds a single audit record. Request and response bodies can
// make records far larger than bufio's default.
const MaxLineSize = 64 << 20

// ParseError reports a line that is not a valid audit record.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader yields events from a line-delimited stream.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Reader{scanner: scanner}
}

// Next returns the next event. It returns io.EOF at the end of the stream and
// a *ParseError for a malformed line; reading may continue after a
// *ParseError.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		r.line++
		data := bytes.TrimSpace(r.scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		ev, err := ParseEvent(data)
		if err != nil {
			return nil, &ParseError{Line: r.line, Err: err}
		}
		return ev, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return nil, io.EOF
}

// Line returns the number of the last line read.
func (r *Reader) Line() int {
	return r.line
}
