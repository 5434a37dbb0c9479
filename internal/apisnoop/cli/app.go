// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apisnoop/apisnoop/internal/apisnoop/config"
	"github.com/apisnoop/apisnoop/internal/logging"
	"github.com/apisnoop/apisnoop/internal/snoop"
	"github.com/apisnoop/apisnoop/internal/specindex"
	"github.com/apisnoop/apisnoop/internal/specsource"
	"github.com/apisnoop/apisnoop/internal/store"
)

// app carries the state shared by every subcommand of one invocation. The
// configured logger travels in the command context.
type app struct {
	configPath  string
	printConfig bool

	cfg     *config.Config
	metrics *snoop.Metrics
}

func (a *app) setup(cmd *cobra.Command) error {
	bootstrap := logging.NewWithWriter(logging.Config{Level: "warn"}, cmd.ErrOrStderr())

	opts := config.LoadOptions{
		ConfigPath:   a.configPath,
		Flags:        cmd.Flags(),
		FlagMappings: configMappings(),
		Logger:       bootstrap,
	}
	if a.printConfig {
		opts.Dump = cmd.ErrOrStderr()
	}
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.metrics = snoop.NewMetrics()
	logger := logging.NewWithWriter(cfg.Logging.ToLoggingConfig(), cmd.ErrOrStderr())
	cmd.SetContext(logging.NewContext(cmd.Context(), logger.With("command", cmd.Name())))
	return nil
}

func (a *app) teardown() error {
	if a.cfg == nil || a.cfg.Metrics.TextfilePath == "" {
		return nil
	}
	return a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath)
}

func (a *app) source(ctx context.Context) (specsource.Source, error) {
	return specsource.New(a.cfg.Spec.ToSourceConfig(), logging.FromContext(ctx).With("component", "specsource"))
}

func (a *app) registry(ctx context.Context) (*snoop.Registry, error) {
	src, err := a.source(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := a.cfg.Rules.ToRules()
	if err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	logger := logging.FromContext(ctx).With("component", "registry")
	return snoop.NewRegistry(src, a.metrics, logger, specindex.WithRules(rules)), nil
}

func (a *app) processor(ctx context.Context) (*snoop.Processor, error) {
	reg, err := a.registry(ctx)
	if err != nil {
		return nil, err
	}
	return snoop.NewProcessor(reg,
		snoop.WithWorkers(a.cfg.Processing.Workers),
		snoop.WithMetrics(a.metrics),
		snoop.WithLogger(logging.FromContext(ctx).With("component", "processor")),
	), nil
}

// openStore returns nil when no database is configured.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	if !a.cfg.Store.Enabled() {
		return nil, nil
	}
	logger := logging.FromContext(ctx).With("component", "store")
	return store.Open(a.cfg.Store.Path, logger, store.WithBatchSize(a.cfg.Store.BatchSize))
}
