// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specsource

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/apisnoop/apisnoop/internal/specindex"
)

// DefaultSpecFile is where the Kubernetes repository keeps its swagger document.
const DefaultSpecFile = "api/openapi-spec/swagger.json"

// Git reads a specification file at a revision of a local clone.
type Git struct {
	RepoPath string
	File     string
}

// Load implements Source. The revision may be a commit hash, branch or tag.
func (g Git) Load(_ context.Context, revision string) (specindex.Document, error) {
	if revision == "" {
		revision = plumbing.HEAD.String()
	}
	file := g.File
	if file == "" {
		file = DefaultSpecFile
	}

	repo, err := git.PlainOpen(g.RepoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", g.RepoPath, err)
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %s: %w", revision, err)
	}

	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read commit %s: %w", hash, err)
	}

	f, err := commit.File(file)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s at %s: %w", file, hash, err)
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", file, hash, err)
	}
	return Decode([]byte(contents))
}
