// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package auditlog

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGzip(t *testing.T, path, content string) {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
}

func TestCombine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audit.log"), []byte(`{"auditID":"3"}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audit-2022-10-01T10-00-00.000.log"), []byte(`{"auditID":"2"}`), 0o600))
	writeGzip(t, filepath.Join(dir, "audit-2022-09-30T10-00-00.000.log.gz"), `{"auditID":"1"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "kube-apiserver.log"), []byte("unrelated"), 0o600))

	var out bytes.Buffer
	files, err := Combine(&out, dir, "audit*")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "audit.log"),
		filepath.Join(dir, "audit-2022-10-01T10-00-00.000.log"),
		filepath.Join(dir, "audit-2022-09-30T10-00-00.000.log.gz"),
	}, files)
	assert.Equal(t, "{\"auditID\":\"3\"}\n{\"auditID\":\"2\"}\n{\"auditID\":\"1\"}", out.String())
}

func TestCombine_NestedPattern(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "node-1", "logs")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "kube-apiserver-audit.log"), []byte(`{}`), 0o600))

	var out bytes.Buffer
	files, err := Combine(&out, dir, "**/*kube-apiserver-audit*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(nested, "kube-apiserver-audit.log")}, files)
}

func TestCombine_NoMatches(t *testing.T) {
	var out bytes.Buffer
	_, err := Combine(&out, t.TempDir(), "audit*log")
	assert.ErrorIs(t, err, ErrNoLogs)
}
