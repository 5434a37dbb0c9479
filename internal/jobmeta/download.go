// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package jobmeta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"
)

// DefaultConcurrency bounds parallel log downloads.
const DefaultConcurrency = 4

// Download fetches every link into dir, at most concurrency at a time, and
// returns the local paths in link order. Files that already exist are not
// downloaded again. The first failure cancels the remaining downloads.
func (c *Client) Download(ctx context.Context, links []string, dir string, concurrency int) ([]string, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	files := make([]string, len(links))
	for i, link := range links {
		u, err := url.Parse(link)
		if err != nil {
			return nil, fmt.Errorf("invalid log link %q: %w", link, err)
		}
		files[i] = filepath.Join(dir, path.Base(u.Path))
	}

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(concurrency)

	for i, link := range links {
		local := files[i]
		p.Go(func(ctx context.Context) error {
			if _, err := os.Stat(local); err == nil {
				c.Logger.Debug("Skipping existing log", "path", local)
				return nil
			}
			return c.downloadFile(ctx, link, local)
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) downloadFile(ctx context.Context, link, local string) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", link, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %s: unexpected status %s", link, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(local), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to download %s: %w", link, err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), local); err != nil {
		return fmt.Errorf("failed to store %s: %w", local, err)
	}
	c.Logger.Debug("Downloaded log", "url", link, "path", local)
	return nil
}
