// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specindex

import (
	"fmt"
	"strings"
)

// Canonical HTTP methods used as terminal keys of the index.
const (
	MethodGet     = "get"
	MethodHead    = "head"
	MethodProxy   = "proxy"
	MethodOptions = "options"
	MethodPost    = "post"
	MethodPut     = "put"
	MethodPatch   = "patch"
	MethodConnect = "connect"
	MethodDelete  = "delete"
)

// KnownMethods returns every canonical method a verb table may map to.
func KnownMethods() []string {
	return []string{
		MethodGet, MethodHead, MethodProxy, MethodOptions, MethodPost,
		MethodPut, MethodPatch, MethodConnect, MethodDelete,
	}
}

// headSuffix marks a get request that the API server recorded for a HEAD call.
const headSuffix = "HEAD"

// MethodMapping lists the audit verbs that map to one canonical method.
type MethodMapping struct {
	Method string   `koanf:"method" yaml:"method"`
	Verbs  []string `koanf:"verbs" yaml:"verbs"`
}

// DefaultMethodMappings returns the verb table of the Kubernetes API server.
// The empty verb is recorded for OPTIONS requests.
func DefaultMethodMappings() []MethodMapping {
	return []MethodMapping{
		{Method: MethodGet, Verbs: []string{"get", "list", "watch"}},
		{Method: MethodProxy, Verbs: []string{"proxy"}},
		{Method: MethodOptions, Verbs: []string{""}},
		{Method: MethodPost, Verbs: []string{"create", "post"}},
		{Method: MethodPut, Verbs: []string{"update", "put"}},
		{Method: MethodPatch, Verbs: []string{"patch"}},
		{Method: MethodConnect, Verbs: []string{"connect"}},
		{Method: MethodDelete, Verbs: []string{"delete", "delete_collection", "deletecollection"}},
	}
}

// MethodTable maps recorded audit verbs to canonical HTTP methods.
// It is immutable once built.
type MethodTable struct {
	byVerb map[string]string
}

// NewMethodTable builds a table from mappings. When a verb is listed under more
// than one method the first mapping wins.
func NewMethodTable(mappings []MethodMapping) (*MethodTable, error) {
	t := &MethodTable{byVerb: make(map[string]string)}
	for i, m := range mappings {
		method := strings.ToLower(strings.TrimSpace(m.Method))
		if method == "" {
			return nil, fmt.Errorf("method mapping %d: method must not be empty", i)
		}
		for _, verb := range m.Verbs {
			if _, seen := t.byVerb[verb]; !seen {
				t.byVerb[verb] = method
			}
		}
	}
	return t, nil
}

// Canonical returns the canonical method for verb. A get whose URI ends with
// HEAD is reported as head. ok is false when the verb is not in the table.
func (t *MethodTable) Canonical(verb, uri string) (method string, ok bool) {
	if verb == "get" && strings.HasSuffix(uri, headSuffix) {
		return MethodHead, true
	}
	method, ok = t.byVerb[verb]
	return method, ok
}

// DefaultIgnoredSegments returns path segments that mark infrastructure or
// test-fixture endpoints that no specification is expected to explain.
func DefaultIgnoredSegments() []string {
	return []string{
		"metrics",
		"readyz",
		"livez",
		"healthz",
		"example.com",
		"kope.io",
		"snapshot.storage.k8s.io",
		"metrics.k8s.io",
		"wardle.k8s.io",
	}
}

// DefaultIgnoredPaths returns whole paths that are ignored.
func DefaultIgnoredPaths() []string {
	return []string{"openapi/v2"}
}

// IgnoreSet classifies normalized paths as known non-API endpoints.
type IgnoreSet struct {
	segments map[string]struct{}
	paths    map[string]struct{}
}

// NewIgnoreSet builds a set from literal segments and whole paths. Paths are
// compared after trimming separators, so "/openapi/v2" and "openapi/v2" are equal.
func NewIgnoreSet(segments, paths []string) *IgnoreSet {
	s := &IgnoreSet{
		segments: make(map[string]struct{}, len(segments)),
		paths:    make(map[string]struct{}, len(paths)),
	}
	for _, seg := range segments {
		s.segments[seg] = struct{}{}
	}
	for _, p := range paths {
		s.paths[strings.Trim(p, "/")] = struct{}{}
	}
	return s
}

// Match reports whether any segment is ignored or the whole path is.
func (s *IgnoreSet) Match(segments []string) bool {
	for _, seg := range segments {
		if _, ok := s.segments[seg]; ok {
			return true
		}
	}
	_, ok := s.paths[strings.Join(segments, "/")]
	return ok
}

// Rules is the static configuration an Index resolves with.
type Rules struct {
	Methods *MethodTable
	Ignored *IgnoreSet
}

// DefaultRules returns the Kubernetes verb table and ignore set.
func DefaultRules() Rules {
	methods, _ := NewMethodTable(DefaultMethodMappings())
	return Rules{
		Methods: methods,
		Ignored: NewIgnoreSet(DefaultIgnoredSegments(), DefaultIgnoredPaths()),
	}
}
