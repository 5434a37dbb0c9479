// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specindex

import (
	"slices"
	"sort"
	"strings"
	"sync/atomic"
)

// node is one segment level of the index tree.
type node struct {
	children map[string]*node
	// wildcard is the first variable key inserted under this node by a template
	// that declares at least one operation. Templates that
	// use a different variable name at the same depth are reachable only through
	// their literal siblings.
	wildcard string
	// methods maps canonical method to operation identifier; nil on nodes that
	// end no template with declared operations.
	methods map[string]string
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// child returns the child for key, creating it if needed.
func (n *node) child(key string) *node {
	c, ok := n.children[key]
	if !ok {
		c = newNode()
		n.children[key] = c
		if n.wildcard == "" && isVariable(key) {
			n.wildcard = key
		}
	}
	return c
}

// isVariable reports whether a template segment stands for an arbitrary value.
func isVariable(segment string) bool {
	return strings.Contains(segment, "{")
}

// Index maps path templates, bucketed by segment count, to their operations,
// and memoizes resolved request paths. One Index serves one specification
// version; drop it once the events recorded against that version are processed.
//
// An Index is safe for concurrent Resolve calls.
type Index struct {
	buckets   map[int]*node
	templates int
	rules     Rules
	cache     *hitCache

	walks     atomic.Int64
	cacheHits atomic.Int64
}

// Option configures Build.
type Option func(*Index)

// WithRules replaces the verb table and ignore set.
func WithRules(rules Rules) Option {
	return func(idx *Index) {
		if rules.Methods != nil {
			idx.rules.Methods = rules.Methods
		}
		if rules.Ignored != nil {
			idx.rules.Ignored = rules.Ignored
		}
	}
}

// Build indexes every path template of doc that declares at least one
// operation; templates carrying only shared parameters are skipped. Templates
// are inserted in sorted order so the same document always yields the same
// index.
func Build(doc Document, opts ...Option) *Index {
	idx := &Index{
		buckets: make(map[int]*node),
		rules:   DefaultRules(),
		cache:   newHitCache(),
	}
	for _, opt := range opts {
		opt(idx)
	}

	paths := make([]string, 0, len(doc))
	for p := range doc {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		idx.insert(splitPath(p), doc[p])
	}
	return idx
}

func (idx *Index) insert(segments []string, ops map[string]Operation) {
	methods := make(map[string]string, len(ops))
	for method, op := range ops {
		method = strings.ToLower(method)
		if method == parametersKey {
			continue
		}
		methods[method] = op.OperationID
	}
	if len(methods) == 0 {
		return
	}

	root, ok := idx.buckets[len(segments)]
	if !ok {
		root = newNode()
		idx.buckets[len(segments)] = root
	}

	n := root
	for _, seg := range segments {
		n = n.child(seg)
	}
	idx.templates++

	if n.methods == nil {
		n.methods = methods
		return
	}
	for method, opID := range methods {
		n.methods[method] = opID
	}
}

// Stats describes an Index.
type Stats struct {
	// Templates is the number of path templates indexed.
	Templates int
	// Buckets lists the covered segment counts in ascending order.
	Buckets []int
	// CacheEntries is the number of memoized (path, method) pairs.
	CacheEntries int
	// CacheHits counts resolutions answered from the cache.
	CacheHits int64
	// Walks counts resolutions that walked the tree.
	Walks int64
}

// Stats returns counters and shape information of the index.
func (idx *Index) Stats() Stats {
	buckets := make([]int, 0, len(idx.buckets))
	for n := range idx.buckets {
		buckets = append(buckets, n)
	}
	slices.Sort(buckets)

	return Stats{
		Templates:    idx.templates,
		Buckets:      buckets,
		CacheEntries: idx.cache.len(),
		CacheHits:    idx.cacheHits.Load(),
		Walks:        idx.walks.Load(),
	}
}
