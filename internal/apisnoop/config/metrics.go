// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package config

// MetricsConfig configures metrics output.
type MetricsConfig struct {
	// TextfilePath receives the metrics in textfile collector format after
	// each command. Empty disables the output.
	TextfilePath string `koanf:"textfile_path"`
}

// MetricsDefaults returns the default metrics configuration.
func MetricsDefaults() MetricsConfig {
	return MetricsConfig{}
}
