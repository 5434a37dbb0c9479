// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"slices"

	"github.com/spf13/pflag"
)

// Flag describes a command-line flag. Flags with a ConfigKey override that
// configuration key when set explicitly.
type Flag struct {
	Name      string
	Shorthand string
	Usage     string
	ConfigKey string
}

var (
	ConfigFile = Flag{
		Name:      "config",
		Shorthand: "c",
		Usage:     "Path to a YAML configuration file",
	}
	PrintConfig = Flag{
		Name:  "print-config",
		Usage: "Print the merged configuration to stderr before running",
	}
	LogLevel = Flag{
		Name:      "log-level",
		Usage:     "Log level (debug, info, warn, error)",
		ConfigKey: "logging.level",
	}
	LogFormat = Flag{
		Name:      "log-format",
		Usage:     "Log format (text, json)",
		ConfigKey: "logging.format",
	}
	SpecKind = Flag{
		Name:      "spec-source",
		Usage:     "Where specifications are loaded from (file, url, git, cluster)",
		ConfigKey: "spec.kind",
	}
	SpecPath = Flag{
		Name:      "spec-file",
		Usage:     "Specification document for the file source",
		ConfigKey: "spec.path",
	}
	SpecURL = Flag{
		Name:      "spec-url",
		Usage:     "URL template for the url source; {revision} is substituted",
		ConfigKey: "spec.url_template",
	}
	RepoPath = Flag{
		Name:      "repo",
		Usage:     "Local kubernetes clone for the git source",
		ConfigKey: "spec.repo_path",
	}
	Kubeconfig = Flag{
		Name:      "kubeconfig",
		Usage:     "Kubeconfig for the cluster source",
		ConfigKey: "spec.kubeconfig",
	}
	Workers = Flag{
		Name:      "workers",
		Usage:     "Number of events resolved concurrently",
		ConfigKey: "processing.workers",
	}
	Database = Flag{
		Name:      "db",
		Usage:     "SQLite database recording processed events",
		ConfigKey: "store.path",
	}
	MetricsFile = Flag{
		Name:      "metrics-file",
		Usage:     "Write Prometheus metrics to this textfile on exit",
		ConfigKey: "metrics.textfile_path",
	}

	Revision = Flag{
		Name:      "revision",
		Shorthand: "r",
		Usage:     "Source-control revision of the specification",
		ConfigKey: "processing.revision",
	}
	Input = Flag{
		Name:      "input",
		Shorthand: "i",
		Usage:     "Audit log to read, - for stdin",
	}
	Output = Flag{
		Name:      "output",
		Shorthand: "o",
		Usage:     "Destination of processed events, - for stdout",
	}
	Bucket = Flag{
		Name:      "bucket",
		Shorthand: "b",
		Usage:     "CI bucket (akc, kgcl, kegg or a full job name)",
	}
	Job = Flag{
		Name:  "job",
		Usage: "CI run id; defaults to the latest successful run",
	}
	WorkDir = Flag{
		Name:      "workdir",
		Usage:     "Directory for downloaded logs",
		ConfigKey: "jobs.work_dir",
	}
	Verb = Flag{
		Name:  "verb",
		Usage: "Audit verb of the request, e.g. list. Empty resolves as OPTIONS",
	}
	URI = Flag{
		Name:  "uri",
		Usage: "Request URI, e.g. /api/v1/namespaces/default/pods",
	}
	Limit = Flag{
		Name:  "limit",
		Usage: "Maximum number of rows, 0 for all",
	}
)

// globalFlags are registered as persistent flags on the root command.
var globalFlags = []Flag{
	LogLevel, LogFormat, SpecKind, SpecPath, SpecURL, RepoPath, Kubeconfig, Workers, Database, MetricsFile,
}

// configMappings returns the flag name to config key mapping of every flag
// that overrides configuration.
func configMappings() map[string]string {
	m := make(map[string]string)
	for _, f := range slices.Concat(globalFlags, []Flag{Revision, WorkDir}) {
		if f.ConfigKey != "" {
			m[f.Name] = f.ConfigKey
		}
	}
	return m
}

func addString(fs *pflag.FlagSet, f Flag, value string) {
	fs.StringP(f.Name, f.Shorthand, value, f.Usage)
}

func addInt(fs *pflag.FlagSet, f Flag, value int) {
	fs.IntP(f.Name, f.Shorthand, value, f.Usage)
}
