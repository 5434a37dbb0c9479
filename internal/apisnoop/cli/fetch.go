// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/apisnoop/apisnoop/internal/auditlog"
	"github.com/apisnoop/apisnoop/internal/jobmeta"
	"github.com/apisnoop/apisnoop/internal/logging"
	"github.com/apisnoop/apisnoop/internal/store"
)

const (
	combinedLog = "combined-audit.log"
	resolvedLog = combinedLog + "+opid"
)

func newFetchCmd(a *app) *cobra.Command {
	var bucketName, job string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download and resolve the audit logs of a CI run",
		Long: "Look up a CI run, download its API server audit logs, combine them and resolve\n" +
			"every event against the specification at the commit the run was built from.",
		Example: "  apisnoop fetch --bucket akc\n" +
			"  apisnoop fetch -b kgcl --job 1790093431357509632 --workdir /var/tmp/apisnoop",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bucket, err := jobmeta.LookupBucket(bucketName)
			if err != nil {
				return err
			}
			out, err := a.fetch(cmd.Context(), bucket, job)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&bucketName, Bucket.Name, Bucket.Shorthand, jobmeta.AKC.Short, Bucket.Usage)
	fs.StringVar(&job, Job.Name, "", Job.Usage)
	addString(fs, WorkDir, "")

	return cmd
}

// fetch runs the whole pipeline for one CI run and returns the path of the
// resolved log.
func (a *app) fetch(ctx context.Context, bucket jobmeta.Bucket, job string) (string, error) {
	jobs := a.cfg.Jobs
	logger := logging.FromContext(ctx)
	client := jobmeta.NewClient(&http.Client{Timeout: jobs.Timeout}, logger.With("component", "jobmeta"))
	client.HistoryURL = jobs.HistoryURL
	client.LogsURL = jobs.LogsURL
	client.ArtifactsURL = jobs.ArtifactsURL

	meta, err := client.Meta(ctx, bucket, job)
	if err != nil {
		return "", err
	}
	logger.Info("Found CI run", "bucket", meta.Bucket, "job", meta.Job,
		"version", meta.Version, "commit", meta.Commit, "logs", len(meta.LogLinks))

	workDir := jobs.WorkDir
	if workDir == "" {
		if workDir, err = os.MkdirTemp("", "apisnoop-"); err != nil {
			return "", fmt.Errorf("failed to create work directory: %w", err)
		}
	}
	dir := filepath.Join(workDir, meta.Bucket, meta.Job)

	if _, err := client.Download(ctx, meta.LogLinks, dir, jobs.Concurrency); err != nil {
		return "", err
	}

	combined := filepath.Join(dir, combinedLog)
	if err := combine(combined, dir, bucket.LogPattern); err != nil {
		return "", err
	}

	in, err := os.Open(combined)
	if err != nil {
		return "", fmt.Errorf("failed to open combined log: %w", err)
	}
	defer in.Close()

	resolved := filepath.Join(dir, resolvedLog)
	out, err := os.Create(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to create output: %w", err)
	}

	summary, err := a.runBatch(ctx, meta.Commit, in, out, store.RunInfo{
		Bucket:   meta.Bucket,
		Job:      meta.Job,
		Revision: meta.Commit,
		Version:  meta.Version,
	})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	logger.Info("Processed CI run", "job", meta.Job, "events", summary.Events,
		"resolved", summary.Resolved, "ignored", summary.Ignored, "failed", summary.Failed())
	return resolved, nil
}

func combine(dst, dir, pattern string) (err error) {
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create combined log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = auditlog.Combine(f, dir, pattern)
	return err
}
