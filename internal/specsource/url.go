// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specsource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/apisnoop/apisnoop/internal/specindex"
)

// DefaultURLTemplate points at the swagger document committed to the
// Kubernetes repository.
const DefaultURLTemplate = "https://raw.githubusercontent.com/kubernetes/kubernetes/{revision}/api/openapi-spec/swagger.json"

const revisionPlaceholder = "{revision}"

// URL downloads a specification over HTTP. Every {revision} in Template is
// replaced with the requested revision.
type URL struct {
	Template string
	Client   *http.Client
}

// Location returns the URL the specification at revision is fetched from.
func (u URL) Location(revision string) string {
	tmpl := u.Template
	if tmpl == "" {
		tmpl = DefaultURLTemplate
	}
	if revision == "" {
		revision = DefaultRevision
	}
	return strings.ReplaceAll(tmpl, revisionPlaceholder, revision)
}

// Load implements Source.
func (u URL) Load(ctx context.Context, revision string) (specindex.Document, error) {
	client := u.Client
	if client == nil {
		client = http.DefaultClient
	}

	location := u.Location(revision)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch specification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch specification from %s: unexpected status %s", location, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification: %w", err)
	}
	return Decode(data)
}
