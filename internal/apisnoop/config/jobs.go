// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	coreconfig "github.com/apisnoop/apisnoop/internal/config"
	"github.com/apisnoop/apisnoop/internal/jobmeta"
)

// JobsConfig configures CI discovery and downloads.
type JobsConfig struct {
	HistoryURL   string `koanf:"history_url"`
	LogsURL      string `koanf:"logs_url"`
	ArtifactsURL string `koanf:"artifacts_url"`
	// Concurrency bounds parallel log downloads.
	Concurrency int `koanf:"concurrency"`
	// WorkDir holds downloaded logs. Empty means a new temporary directory per run.
	WorkDir string        `koanf:"work_dir"`
	Timeout time.Duration `koanf:"timeout"`
}

// JobsDefaults returns the public Kubernetes CI endpoints.
func JobsDefaults() JobsConfig {
	return JobsConfig{
		HistoryURL:   jobmeta.DefaultHistoryURL,
		LogsURL:      jobmeta.DefaultLogsURL,
		ArtifactsURL: jobmeta.DefaultArtifactsURL,
		Concurrency:  jobmeta.DefaultConcurrency,
		Timeout:      10 * time.Minute,
	}
}

// Validate validates the jobs configuration.
func (c *JobsConfig) Validate(path *coreconfig.Path) coreconfig.ValidationErrors {
	var errs coreconfig.ValidationErrors

	if err := coreconfig.MustNotBeEmpty(path.Child("history_url"), c.HistoryURL); err != nil {
		errs = append(errs, err)
	}
	if err := coreconfig.MustNotBeEmpty(path.Child("logs_url"), c.LogsURL); err != nil {
		errs = append(errs, err)
	}
	if err := coreconfig.MustNotBeEmpty(path.Child("artifacts_url"), c.ArtifactsURL); err != nil {
		errs = append(errs, err)
	}
	if err := coreconfig.MustBeInRange(path.Child("concurrency"), c.Concurrency, 1, 64); err != nil {
		errs = append(errs, err)
	}
	if err := coreconfig.MustBeNonNegative(path.Child("timeout"), c.Timeout); err != nil {
		errs = append(errs, err)
	}

	return errs
}
