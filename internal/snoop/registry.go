// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package snoop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/apisnoop/apisnoop/internal/specindex"
	"github.com/apisnoop/apisnoop/internal/specsource"
	"github.com/apisnoop/apisnoop/pkg/hash"
)

// Registry hands out one index per specification revision. Concurrent
// requests for the same revision share a single build, and an index is
// dropped once its last holder releases it.
type Registry struct {
	source  specsource.Source
	opts    []specindex.Option
	metrics *Metrics
	logger  *slog.Logger

	sf      singleflight.Group
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	idx  *specindex.Index
	refs int
}

// NewRegistry returns a registry that loads specifications from source and
// builds them with opts.
func NewRegistry(source specsource.Source, metrics *Metrics, logger *slog.Logger, opts ...specindex.Option) *Registry {
	return &Registry{
		source:  source,
		opts:    opts,
		metrics: metrics,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Acquire returns the index for revision, building it if no other holder has
// it. The caller must call release exactly once when done with the index.
func (r *Registry) Acquire(ctx context.Context, revision string) (*specindex.Index, func(), error) {
	if idx, ok := r.retain(revision, nil); ok {
		return idx, r.releaser(revision), nil
	}

	v, err, shared := r.sf.Do(revision, func() (interface{}, error) {
		return r.build(ctx, revision)
	})
	if err != nil {
		return nil, nil, err
	}
	if shared {
		r.logger.Debug("Shared specification index build", "revision", revision)
	}

	idx, _ := r.retain(revision, v.(*specindex.Index))
	return idx, r.releaser(revision), nil
}

// retain takes a reference on the resident index for revision. When none is
// resident and built is non-nil, built becomes the resident index.
func (r *Registry) retain(revision string, built *specindex.Index) (*specindex.Index, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[revision]; ok {
		e.refs++
		return e.idx, true
	}
	if built == nil {
		return nil, false
	}
	r.entries[revision] = &entry{idx: built, refs: 1}
	return built, true
}

func (r *Registry) releaser(revision string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			e, ok := r.entries[revision]
			if !ok {
				return
			}
			e.refs--
			if e.refs <= 0 {
				delete(r.entries, revision)
				r.logger.Debug("Released specification index", "revision", revision)
			}
		})
	}
}

func (r *Registry) build(ctx context.Context, revision string) (*specindex.Index, error) {
	start := time.Now()

	doc, err := r.source.Load(ctx, revision)
	if err != nil {
		return nil, fmt.Errorf("failed to load specification at %q: %w", revision, err)
	}
	idx := specindex.Build(doc, r.opts...)

	elapsed := time.Since(start)
	if r.metrics != nil {
		r.metrics.indexBuilds.Inc()
		r.metrics.indexBuildDuration.Observe(elapsed.Seconds())
	}
	r.logger.Info("Built specification index",
		"revision", revision,
		"templates", idx.Stats().Templates,
		"fingerprint", hash.Fingerprint(doc),
		"duration", elapsed)
	return idx, nil
}

// Resident returns the number of indexes currently held.
func (r *Registry) Resident() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
