// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package config defines the apisnoop configuration file and its defaults.
package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	coreconfig "github.com/apisnoop/apisnoop/internal/config"
)

// EnvPrefix prefixes environment overrides: APISNOOP__PROCESSING__WORKERS=8.
const EnvPrefix = "APISNOOP"

// Config is the top-level apisnoop configuration.
type Config struct {
	// Spec selects where specifications are loaded from.
	Spec SpecConfig `koanf:"spec"`
	// Processing tunes the event processing loop.
	Processing ProcessingConfig `koanf:"processing"`
	// Rules holds the verb table and the ignored endpoints.
	Rules RulesConfig `koanf:"rules"`
	// Jobs configures CI job discovery and log downloads.
	Jobs JobsConfig `koanf:"jobs"`
	// Store configures the optional results database.
	Store StoreConfig `koanf:"store"`
	// Metrics configures the Prometheus textfile output.
	Metrics MetricsConfig `koanf:"metrics"`
	// Logging defines logging settings.
	Logging LoggingConfig `koanf:"logging"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Spec:       SpecDefaults(),
		Processing: ProcessingDefaults(),
		Rules:      RulesDefaults(),
		Jobs:       JobsDefaults(),
		Store:      StoreDefaults(),
		Metrics:    MetricsDefaults(),
		Logging:    LoggingDefaults(),
	}
}

// LoadOptions controls Load.
type LoadOptions struct {
	// ConfigPath is an optional YAML file.
	ConfigPath string
	// Flags and FlagMappings apply command-line overrides.
	Flags        *pflag.FlagSet
	FlagMappings map[string]string
	// Dump, when set, receives the merged configuration as YAML.
	Dump   io.Writer
	Logger *slog.Logger
}

// Load merges defaults, the config file, APISNOOP__ environment variables and
// explicitly set flags, in increasing priority, and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	var loaderOpts []coreconfig.Option
	if opts.Logger != nil {
		loaderOpts = append(loaderOpts, coreconfig.WithLogger(opts.Logger))
	}
	loader := coreconfig.NewLoader(EnvPrefix, loaderOpts...)

	if err := loader.LoadWithDefaults(Defaults(), opts.ConfigPath); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Flags != nil {
		if err := loader.LoadFlags(opts.Flags, opts.FlagMappings); err != nil {
			return nil, fmt.Errorf("failed to apply flags: %w", err)
		}
	}
	if opts.Dump != nil {
		if err := loader.DumpYAML(opts.Dump); err != nil {
			return nil, fmt.Errorf("failed to dump config: %w", err)
		}
	}

	var cfg Config
	if err := loader.UnmarshalAndValidate("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs coreconfig.ValidationErrors

	errs = append(errs, c.Spec.Validate(coreconfig.NewPath("spec"))...)
	errs = append(errs, c.Processing.Validate(coreconfig.NewPath("processing"))...)
	errs = append(errs, c.Rules.Validate(coreconfig.NewPath("rules"))...)
	errs = append(errs, c.Jobs.Validate(coreconfig.NewPath("jobs"))...)
	errs = append(errs, c.Store.Validate(coreconfig.NewPath("store"))...)
	errs = append(errs, c.Logging.Validate(coreconfig.NewPath("logging"))...)

	return errs.OrNil()
}
