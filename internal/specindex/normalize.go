// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specindex

import (
	"net/url"
	"slices"
	"strings"
)

const (
	separator = "/"

	proxySegment      = "proxy"
	namespacesSegment = "namespaces"
	statusSegment     = "status"
	finalizeSegment   = "finalize"

	// namePlaceholder is how the Kubernetes specification names a namespace in
	// its status and finalize endpoints.
	namePlaceholder = "{name}"
)

// splitPath trims separators at both ends and splits on the separator. An
// empty path yields a single empty segment.
func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, separator), separator)
}

// NormalizePath splits a request path into segments and applies at most one
// rewrite, checked in order:
//   - everything behind a proxy segment is joined into one opaque tail segment
//   - /api/v1/namespaces/<ns>/status becomes .../namespaces/{name}/status
//   - /api/v1/namespaces/<ns>/finalize becomes .../namespaces/{name}/finalize
func NormalizePath(p string) []string {
	segments := splitPath(p)
	switch {
	case slices.Contains(segments, proxySegment):
		return collapseProxy(segments)
	case isNamespaceSubresource(segments, statusSegment):
		return namespaceSubresource(segments, statusSegment)
	case isNamespaceSubresource(segments, finalizeSegment):
		return namespaceSubresource(segments, finalizeSegment)
	default:
		return segments
	}
}

func collapseProxy(segments []string) []string {
	i := slices.Index(segments, proxySegment)
	out := slices.Clone(segments[:i+1])
	if tail := segments[i+1:]; len(tail) > 0 {
		out = append(out, strings.Join(tail, separator))
	}
	return out
}

func isNamespaceSubresource(segments []string, sub string) bool {
	return len(segments) == 5 && segments[2] == namespacesSegment && segments[4] == sub
}

func namespaceSubresource(segments []string, sub string) []string {
	out := slices.Clone(segments[:3])
	return append(out, namePlaceholder, sub)
}

// requestPath returns the path of a request URI, dropping query and fragment.
func requestPath(uri string) string {
	if u, err := url.Parse(uri); err == nil {
		return u.EscapedPath()
	}
	p, _, _ := strings.Cut(uri, "?")
	p, _, _ = strings.Cut(p, "#")
	return p
}
