// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package jobmeta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html"
)

// Default endpoints of the Kubernetes CI infrastructure.
const (
	DefaultHistoryURL   = "https://prow.k8s.io/job-history/kubernetes-jenkins/logs/"
	DefaultLogsURL      = "https://storage.googleapis.com/kubernetes-jenkins/logs/"
	DefaultArtifactsURL = "https://gcsweb.k8s.io/gcs/kubernetes-jenkins/logs/"
)

const kindVersionFile = "artifacts/logs/kind-control-plane/kubernetes-version.txt"

var (
	// ErrNoBuildScript is returned when a job history page has no build list.
	ErrNoBuildScript = errors.New("no build list found in job history page")
	// ErrNoSuccess is returned when no listed build succeeded.
	ErrNoSuccess = errors.New("no successful build found")
	// ErrNoMasterListing is returned when a GCE job has no master artifacts.
	ErrNoMasterListing = errors.New("no master artifact listing found")
)

// Meta describes one CI run.
type Meta struct {
	Bucket    string   `json:"bucket" validate:"required"`
	Job       string   `json:"job" validate:"required"`
	Version   string   `json:"version" validate:"required"`
	Commit    string   `json:"commit" validate:"required,alphanum"`
	LogLinks  []string `json:"logLinks" validate:"dive,url"`
	Timestamp int64    `json:"timestamp"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the metadata identifies a run.
func (m *Meta) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("invalid job metadata: %w", err)
	}
	return nil
}

// Build is one entry of a job history page.
type Build struct {
	ID      string `json:"ID"`
	Result  string `json:"Result"`
	Started string `json:"Started,omitempty"`
}

// Client reads CI job history and artifacts.
type Client struct {
	HTTP         *http.Client
	HistoryURL   string
	LogsURL      string
	ArtifactsURL string
	Logger       *slog.Logger
}

// NewClient returns a client for the public Kubernetes CI endpoints.
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		HTTP:         httpClient,
		HistoryURL:   DefaultHistoryURL,
		LogsURL:      DefaultLogsURL,
		ArtifactsURL: DefaultArtifactsURL,
		Logger:       logger,
	}
}

// LatestSuccess returns the id of the newest successful run of bucket.
func (c *Client) LatestSuccess(ctx context.Context, bucket Bucket) (string, error) {
	page, err := c.get(ctx, joinURL(c.HistoryURL, bucket.Name))
	if err != nil {
		return "", err
	}
	builds, err := parseBuilds(page)
	if err != nil {
		return "", fmt.Errorf("%s: %w", bucket, err)
	}
	for _, b := range builds {
		if b.Result == "SUCCESS" {
			return b.ID, nil
		}
	}
	return "", fmt.Errorf("%s: %w", bucket, ErrNoSuccess)
}

// Meta collects the metadata of job. An empty job selects the latest
// successful run.
func (c *Client) Meta(ctx context.Context, bucket Bucket, job string) (*Meta, error) {
	if job == "" {
		latest, err := c.LatestSuccess(ctx, bucket)
		if err != nil {
			return nil, err
		}
		job = latest
	}

	meta := &Meta{Bucket: bucket.Name, Job: job}
	var err error
	switch bucket.Layout {
	case LayoutKind:
		err = c.kindMeta(ctx, bucket, meta)
	case LayoutGCE:
		err = c.gceMeta(ctx, bucket, meta)
	default:
		err = fmt.Errorf("unsupported layout %d", bucket.Layout)
	}
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", bucket, job, err)
	}

	c.Logger.Debug("Resolved job metadata",
		"bucket", meta.Bucket, "job", meta.Job, "version", meta.Version,
		"commit", meta.Commit, "logs", len(meta.LogLinks))
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

func (c *Client) kindMeta(ctx context.Context, bucket Bucket, meta *Meta) error {
	var started struct {
		Timestamp  int64  `json:"timestamp"`
		RepoCommit string `json:"repo-commit"`
	}
	if err := c.getJSON(ctx, joinURL(c.LogsURL, bucket.Name, meta.Job, "started.json"), &started); err != nil {
		return err
	}
	meta.Commit = started.RepoCommit
	meta.Timestamp = started.Timestamp

	versionFile, err := c.get(ctx, joinURL(c.LogsURL, bucket.Name, meta.Job, kindVersionFile))
	if err != nil {
		return err
	}
	if meta.Version, err = ParseVersion(strings.TrimSpace(string(versionFile))); err != nil {
		return err
	}

	listing := joinURL(c.ArtifactsURL, bucket.Name, meta.Job, "artifacts", "audit") + "/"
	meta.LogLinks, err = c.links(ctx, listing, bucket.linkRe.MatchString)
	return err
}

func (c *Client) gceMeta(ctx context.Context, bucket Bucket, meta *Meta) error {
	var finished struct {
		Timestamp int64 `json:"timestamp"`
		Metadata  struct {
			JobVersion string `json:"job-version"`
		} `json:"metadata"`
	}
	if err := c.getJSON(ctx, joinURL(c.LogsURL, bucket.Name, meta.Job, "finished.json"), &finished); err != nil {
		return err
	}
	meta.Timestamp = finished.Timestamp

	var err error
	meta.Version, meta.Commit, err = ParseJobVersion(finished.Metadata.JobVersion)
	if err != nil {
		return err
	}

	listing := joinURL(c.ArtifactsURL, bucket.Name, meta.Job, "artifacts") + "/"
	masters, err := c.links(ctx, listing, func(href string) bool {
		return strings.Contains(href, "master")
	})
	if err != nil {
		return err
	}
	if len(masters) == 0 {
		return ErrNoMasterListing
	}
	meta.LogLinks, err = c.links(ctx, masters[0], bucket.linkRe.MatchString)
	return err
}

// links returns the absolute targets of the anchors on page whose href
// satisfies match, in document order.
func (c *Client) links(ctx context.Context, page string, match func(string) bool) ([]string, error) {
	base, err := url.Parse(page)
	if err != nil {
		return nil, err
	}
	body, err := c.get(ctx, page)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", page, err)
	}

	var out []string
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.Data != "a" {
			continue
		}
		href, ok := attr(n, "href")
		if !ok || !match(href) {
			continue
		}
		ref, err := url.Parse(href)
		if err != nil {
			continue
		}
		out = append(out, base.ResolveReference(ref).String())
	}
	return out, nil
}

// parseBuilds extracts the allBuilds array that the job history page embeds
// in an inline script.
func parseBuilds(page []byte) ([]Build, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse job history: %w", err)
	}

	const marker = "allBuilds = "
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.Data != "script" || n.FirstChild == nil {
			continue
		}
		if _, hasSrc := attr(n, "src"); hasSrc {
			continue
		}
		text := n.FirstChild.Data
		start := strings.Index(text, marker)
		if start < 0 {
			continue
		}
		text = text[start+len(marker):]
		end := strings.LastIndex(text, "]")
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated build list", ErrNoBuildScript)
		}
		var builds []Build
		if err := json.Unmarshal([]byte(text[:end+1]), &builds); err != nil {
			return nil, fmt.Errorf("invalid build list: %w", err)
		}
		return builds, nil
	}
	return nil, ErrNoBuildScript
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", u, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u, err)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	body, err := c.get(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", u, err)
	}
	return nil
}

func joinURL(base string, elem ...string) string {
	u, err := url.JoinPath(base, elem...)
	if err != nil {
		return strings.TrimSuffix(base, "/") + "/" + strings.Join(elem, "/")
	}
	return u
}
