// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"runtime"

	coreconfig "github.com/apisnoop/apisnoop/internal/config"
	"github.com/apisnoop/apisnoop/internal/specsource"
)

// ProcessingConfig tunes the processing loop.
type ProcessingConfig struct {
	// Workers is the number of events resolved concurrently.
	Workers int `koanf:"workers"`
	// Revision is used when a command is not given one.
	Revision string `koanf:"revision"`
}

// ProcessingDefaults returns the default processing configuration.
func ProcessingDefaults() ProcessingConfig {
	return ProcessingConfig{
		Workers:  runtime.GOMAXPROCS(0),
		Revision: specsource.DefaultRevision,
	}
}

// Validate validates the processing configuration.
func (c *ProcessingConfig) Validate(path *coreconfig.Path) coreconfig.ValidationErrors {
	var errs coreconfig.ValidationErrors

	if err := coreconfig.MustBeInRange(path.Child("workers"), c.Workers, 1, 1024); err != nil {
		errs = append(errs, err)
	}
	if err := coreconfig.MustNotBeEmpty(path.Child("revision"), c.Revision); err != nil {
		errs = append(errs, err)
	}

	return errs
}
