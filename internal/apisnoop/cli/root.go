// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli implements the apisnoop command line.
package cli

import (
	"github.com/spf13/cobra"
)

// BuildRootCmd assembles the root command with all subcommands.
func BuildRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "apisnoop",
		Short: "Map Kubernetes audit events to API operations",
		Long: "apisnoop resolves the requests recorded in Kubernetes API server audit logs\n" +
			"to the operation identifiers of the OpenAPI specification they were made against.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.teardown()
		},
	}

	fs := rootCmd.PersistentFlags()
	fs.StringVarP(&a.configPath, ConfigFile.Name, ConfigFile.Shorthand, "", ConfigFile.Usage)
	fs.BoolVar(&a.printConfig, PrintConfig.Name, false, PrintConfig.Usage)
	addString(fs, LogLevel, "")
	addString(fs, LogFormat, "")
	addString(fs, SpecKind, "")
	addString(fs, SpecPath, "")
	addString(fs, SpecURL, "")
	addString(fs, RepoPath, "")
	addString(fs, Kubeconfig, "")
	addInt(fs, Workers, 0)
	addString(fs, Database, "")
	addString(fs, MetricsFile, "")

	rootCmd.AddCommand(
		newProcessCmd(a),
		newFetchCmd(a),
		newLookupCmd(a),
		newReportCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}
