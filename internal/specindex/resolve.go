// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specindex

// Request is the part of an audit event that operation lookup reads.
type Request interface {
	RequestVerb() string
	RequestURI() string
}

// Call is a Request built from literal values.
type Call struct {
	Verb string
	URI  string
}

// RequestVerb implements Request.
func (c Call) RequestVerb() string { return c.Verb }

// RequestURI implements Request.
func (c Call) RequestURI() string { return c.URI }

// Resolve returns the operation identifier declared for the request, or a
// *ResolutionError describing why there is none. Only successful resolutions
// are memoized, keyed by the request path as recorded and the canonical method.
//
// At each depth a literal child is preferred; otherwise the walk descends into
// the node's first variable child. There is no backtracking, so a template that
// is reachable only through a second variable name at the same depth is never
// matched.
func (idx *Index) Resolve(req Request) (string, error) {
	verb, uri := req.RequestVerb(), req.RequestURI()

	method, ok := idx.rules.Methods.Canonical(verb, uri)
	if !ok {
		return "", &ResolutionError{Reason: ReasonUnmappableVerb, Verb: verb}
	}

	path := requestPath(uri)
	key := routeKey{path: path, method: method}
	if opID, ok := idx.cache.get(key); ok {
		idx.cacheHits.Add(1)
		return opID, nil
	}

	fail := func(reason Reason) (string, error) {
		return "", &ResolutionError{Reason: reason, Verb: verb, Method: method, Path: path}
	}

	segments := NormalizePath(path)
	root, ok := idx.buckets[len(segments)]
	if !ok {
		return fail(ReasonSegmentCountUncovered)
	}
	if idx.rules.Ignored.Match(segments) {
		return fail(ReasonIgnoredEndpoint)
	}

	idx.walks.Add(1)
	n := root
	last := len(segments) - 1
	for i, seg := range segments {
		if next, ok := n.children[seg]; ok {
			n = next
			continue
		}
		if n.wildcard == "" {
			return fail(ReasonUnknownEndpointShape)
		}
		n = n.children[n.wildcard]
		// Build only inserts templates with operations, so a terminal
		// wildcard always carries methods on an index it produced.
		if i == last && n.methods == nil {
			return fail(ReasonVariableLevelMissing)
		}
	}

	opID, ok := n.methods[method]
	if !ok {
		return fail(ReasonMethodNotDeclared)
	}

	idx.cache.put(key, opID)
	return opID, nil
}
