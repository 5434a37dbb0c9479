// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package auditlog

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoLogs is returned when no file in the directory matches the pattern.
var ErrNoLogs = errors.New("no audit logs matched")

// Match returns the files under dir matching pattern in reverse lexical order.
// Patterns may use ** to descend into subdirectories.
func Match(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("invalid log pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoLogs, pattern, dir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	for i, m := range matches {
		matches[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	return matches, nil
}

// Combine concatenates every log under dir matching pattern into w, inserting
// a newline between files. Files whose name ends in "z" are gunzipped.
func Combine(w io.Writer, dir, pattern string) ([]string, error) {
	files, err := Match(dir, pattern)
	if err != nil {
		return nil, err
	}
	for i, name := range files {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return nil, err
			}
		}
		if err := copyLog(w, name); err != nil {
			return nil, err
		}
	}
	return files, nil
}

func copyLog(w io.Writer, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(name, "z") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to decompress %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	}

	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("failed to copy %s: %w", name, err)
	}
	return nil
}
