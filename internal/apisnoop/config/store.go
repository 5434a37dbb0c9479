// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	coreconfig "github.com/apisnoop/apisnoop/internal/config"
	"github.com/apisnoop/apisnoop/internal/store"
)

// StoreConfig configures the results database.
type StoreConfig struct {
	// Path of the SQLite database. Empty disables recording.
	Path      string `koanf:"path"`
	BatchSize int    `koanf:"batch_size"`
}

// StoreDefaults returns the default store configuration.
func StoreDefaults() StoreConfig {
	return StoreConfig{
		BatchSize: store.DefaultBatchSize,
	}
}

// Enabled reports whether events should be recorded.
func (c *StoreConfig) Enabled() bool {
	return c.Path != ""
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate(path *coreconfig.Path) coreconfig.ValidationErrors {
	var errs coreconfig.ValidationErrors

	if err := coreconfig.MustBePositive(path.Child("batch_size"), c.BatchSize); err != nil {
		errs = append(errs, err)
	}

	return errs
}
