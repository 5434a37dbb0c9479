// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package specsource loads API specification documents from files, URLs, git
// clones and running clusters.
package specsource

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/apisnoop/apisnoop/internal/specindex"
)

// Source loads the specification published at a source-control revision.
// Sources that are not revision-aware ignore the revision.
type Source interface {
	Load(ctx context.Context, revision string) (specindex.Document, error)
}

// Kind names a Source implementation.
type Kind string

const (
	KindFile    Kind = "file"
	KindURL     Kind = "url"
	KindGit     Kind = "git"
	KindCluster Kind = "cluster"
)

// Kinds lists every supported source kind.
func Kinds() []string {
	return []string{string(KindFile), string(KindURL), string(KindGit), string(KindCluster)}
}

// DefaultRevision is used by revision-aware sources when none is given.
const DefaultRevision = "master"

// Config selects and configures a Source.
type Config struct {
	Kind        Kind
	Path        string
	URLTemplate string
	RepoPath    string
	File        string
	Kubeconfig  string
	TokenFile   string
	HTTPClient  *http.Client
}

// New returns the Source described by cfg. A cluster source without a usable
// cluster configuration falls back to the published schema at DefaultRevision.
func New(cfg Config, logger *slog.Logger) (Source, error) {
	switch cfg.Kind {
	case KindFile:
		return File{Path: cfg.Path}, nil
	case KindURL:
		return URL{Template: cfg.URLTemplate, Client: cfg.HTTPClient}, nil
	case KindGit:
		return Git{RepoPath: cfg.RepoPath, File: cfg.File}, nil
	case KindCluster:
		ctrl.SetLogger(logr.FromSlogHandler(logger.Handler()))
		cluster, err := NewCluster(cfg.Kubeconfig, cfg.TokenFile)
		if err != nil {
			logger.Warn("No cluster configuration available, using published schema",
				"revision", DefaultRevision, "error", err)
			return Pinned{
				Source:   URL{Template: cfg.URLTemplate, Client: cfg.HTTPClient},
				Revision: DefaultRevision,
			}, nil
		}
		return cluster, nil
	default:
		return nil, fmt.Errorf("unknown specification source kind %q", cfg.Kind)
	}
}

// Pinned loads Source at a fixed revision regardless of the requested one.
type Pinned struct {
	Source   Source
	Revision string
}

// Load implements Source.
func (p Pinned) Load(ctx context.Context, _ string) (specindex.Document, error) {
	return p.Source.Load(ctx, p.Revision)
}

// File reads a specification from the local filesystem.
type File struct {
	Path string
}

// Load implements Source.
func (f File) Load(_ context.Context, _ string) (specindex.Document, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification file: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return doc, nil
}
