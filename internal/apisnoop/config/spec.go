// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"net/http"
	"time"

	coreconfig "github.com/apisnoop/apisnoop/internal/config"
	"github.com/apisnoop/apisnoop/internal/specsource"
)

// SpecConfig selects the specification source.
type SpecConfig struct {
	// Kind is one of file, url, git or cluster.
	Kind string `koanf:"kind"`
	// Path is the document read by the file source.
	Path string `koanf:"path"`
	// URLTemplate is fetched by the url source; {revision} is substituted.
	URLTemplate string `koanf:"url_template"`
	// RepoPath is the local clone read by the git source.
	RepoPath string `koanf:"repo_path"`
	// File is the document path inside the clone.
	File string `koanf:"file"`
	// Kubeconfig is used by the cluster source. Empty means in-cluster or $KUBECONFIG.
	Kubeconfig string `koanf:"kubeconfig"`
	// TokenFile holds a bearer token for the cluster source.
	TokenFile string `koanf:"token_file"`
	// Timeout bounds a single specification download.
	Timeout time.Duration `koanf:"timeout"`
}

// SpecDefaults returns the default specification source configuration.
func SpecDefaults() SpecConfig {
	return SpecConfig{
		Kind:        string(specsource.KindURL),
		URLTemplate: specsource.DefaultURLTemplate,
		File:        specsource.DefaultSpecFile,
		Timeout:     2 * time.Minute,
	}
}

// Validate validates the specification source configuration.
func (c *SpecConfig) Validate(path *coreconfig.Path) coreconfig.ValidationErrors {
	var errs coreconfig.ValidationErrors

	if err := coreconfig.MustBeOneOf(path.Child("kind"), c.Kind, specsource.Kinds()); err != nil {
		errs = append(errs, err)
	}

	switch specsource.Kind(c.Kind) {
	case specsource.KindFile:
		if err := coreconfig.MustNotBeEmpty(path.Child("path"), c.Path); err != nil {
			errs = append(errs, err)
		}
	case specsource.KindURL:
		if err := coreconfig.MustNotBeEmpty(path.Child("url_template"), c.URLTemplate); err != nil {
			errs = append(errs, err)
		}
	case specsource.KindGit:
		if c.RepoPath == "" {
			errs = append(errs, coreconfig.Required(path.Child("repo_path")))
		}
	}

	if err := coreconfig.MustBeNonNegative(path.Child("timeout"), c.Timeout); err != nil {
		errs = append(errs, err)
	}

	return errs
}

// ToSourceConfig converts to the specsource factory config.
func (c *SpecConfig) ToSourceConfig() specsource.Config {
	return specsource.Config{
		Kind:        specsource.Kind(c.Kind),
		Path:        c.Path,
		URLTemplate: c.URLTemplate,
		RepoPath:    c.RepoPath,
		File:        c.File,
		Kubeconfig:  c.Kubeconfig,
		TokenFile:   c.TokenFile,
		HTTPClient:  &http.Client{Timeout: c.Timeout},
	}
}
