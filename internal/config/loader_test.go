// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

type testProcessingConfig struct {
	Workers       int           `koanf:"workers"`
	FlushInterval time.Duration `koanf:"flush_interval"`
	Ignored       []string      `koanf:"ignored"`
}

type testSpecConfig struct {
	Kind string `koanf:"kind"`
}

type testLoggingConfig struct {
	Level string `koanf:"level"`
}

type testConfig struct {
	Processing testProcessingConfig `koanf:"processing"`
	Spec       testSpecConfig       `koanf:"spec"`
	Logging    testLoggingConfig    `koanf:"logging"`
}

func testDefaults() testConfig {
	return testConfig{
		Processing: testProcessingConfig{
			Workers:       4,
			FlushInterval: 15 * time.Second,
			Ignored:       []string{"healthz"},
		},
		Spec:    testSpecConfig{Kind: "url"},
		Logging: testLoggingConfig{Level: "info"},
	}
}

func load(t *testing.T, configPath string) testConfig {
	t.Helper()
	loader := NewLoader("APISNOOP_TEST")
	if err := loader.LoadWithDefaults(testDefaults(), configPath); err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	var cfg testConfig
	if err := loader.Unmarshal("", &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return cfg
}

func TestLoader_StructDefaults(t *testing.T) {
	cfg := load(t, "")

	if cfg.Processing.Workers != 4 {
		t.Errorf("expected workers 4, got %d", cfg.Processing.Workers)
	}
	if cfg.Processing.FlushInterval != 15*time.Second {
		t.Errorf("expected flush_interval 15s, got %v", cfg.Processing.FlushInterval)
	}
	if cfg.Spec.Kind != "url" {
		t.Errorf("expected kind url, got %s", cfg.Spec.Kind)
	}
}

func TestLoader_ConfigFileOverridesDefaults(t *testing.T) {
	cfg := load(t, filepath.Join("testdata", "test_config.yaml"))

	if cfg.Processing.Workers != 16 {
		t.Errorf("expected workers 16 from config file, got %d", cfg.Processing.Workers)
	}
	if cfg.Processing.FlushInterval != 30*time.Second {
		t.Errorf("expected flush_interval 30s from config file, got %v", cfg.Processing.FlushInterval)
	}
	if cfg.Spec.Kind != "git" {
		t.Errorf("expected kind git from config file, got %s", cfg.Spec.Kind)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug from config file, got %s", cfg.Logging.Level)
	}
}

func TestLoader_EnvVarsOverrideConfigFile(t *testing.T) {
	t.Setenv("APISNOOP_TEST__PROCESSING__WORKERS", "8")
	t.Setenv("APISNOOP_TEST__LOGGING__LEVEL", "warn")

	cfg := load(t, filepath.Join("testdata", "test_config.yaml"))

	if cfg.Processing.Workers != 8 {
		t.Errorf("expected workers 8 from env var, got %d", cfg.Processing.Workers)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected level warn from env var, got %s", cfg.Logging.Level)
	}
	if cfg.Spec.Kind != "git" {
		t.Errorf("expected kind git from config file, got %s", cfg.Spec.Kind)
	}
}

func TestLoader_EnvVarTransformation(t *testing.T) {
	t.Setenv("APISNOOP_TEST__PROCESSING__FLUSH_INTERVAL", "45s")

	cfg := load(t, "")

	if cfg.Processing.FlushInterval != 45*time.Second {
		t.Errorf("expected flush_interval 45s from env var, got %v", cfg.Processing.FlushInterval)
	}
}

func TestLoader_MissingConfigFileFails(t *testing.T) {
	loader := NewLoader("APISNOOP_TEST")
	if err := loader.LoadWithDefaults(testDefaults(), "nonexistent.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoader_Set(t *testing.T) {
	loader := NewLoader("APISNOOP_TEST")
	if err := loader.LoadWithDefaults(testDefaults(), ""); err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if err := loader.Set("processing.workers", 2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var cfg testConfig
	if err := loader.Unmarshal("", &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if cfg.Processing.Workers != 2 {
		t.Errorf("expected workers 2 from Set, got %d", cfg.Processing.Workers)
	}
}

func TestLoader_FlagsOverrideEnvVars(t *testing.T) {
	t.Setenv("APISNOOP_TEST__PROCESSING__WORKERS", "8")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 0, "resolver workers")
	flags.StringSlice("ignore", nil, "ignored segments")
	if err := flags.Parse([]string{"--workers=32", "--ignore=livez,readyz"}); err != nil {
		t.Fatalf("flags.Parse failed: %v", err)
	}

	loader := NewLoader("APISNOOP_TEST")
	if err := loader.LoadWithDefaults(testDefaults(), ""); err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if err := loader.LoadFlags(flags, map[string]string{
		"workers": "processing.workers",
		"ignore":  "processing.ignored",
	}); err != nil {
		t.Fatalf("LoadFlags failed: %v", err)
	}

	var cfg testConfig
	if err := loader.Unmarshal("", &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if cfg.Processing.Workers != 32 {
		t.Errorf("expected workers 32 from flag, got %d", cfg.Processing.Workers)
	}
	if got := strings.Join(cfg.Processing.Ignored, ","); got != "livez,readyz" {
		t.Errorf("expected ignored livez,readyz from flag, got %s", got)
	}
}

func TestLoader_FlagsNotSetDoNotOverride(t *testing.T) {
	t.Setenv("APISNOOP_TEST__PROCESSING__WORKERS", "8")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("workers", 0, "resolver workers")
	if err := flags.Parse(nil); err != nil {
		t.Fatalf("flags.Parse failed: %v", err)
	}

	loader := NewLoader("APISNOOP_TEST")
	if err := loader.LoadWithDefaults(testDefaults(), ""); err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if err := loader.LoadFlags(flags, map[string]string{"workers": "processing.workers"}); err != nil {
		t.Fatalf("LoadFlags failed: %v", err)
	}

	var cfg testConfig
	if err := loader.Unmarshal("", &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if cfg.Processing.Workers != 8 {
		t.Errorf("expected workers 8 from env var, got %d", cfg.Processing.Workers)
	}
}

type validatingConfig struct {
	Processing testProcessingConfig `koanf:"processing"`
}

func (c *validatingConfig) Validate() error {
	if c.Processing.Workers <= 0 {
		return fmt.Errorf("processing.workers must be positive")
	}
	return nil
}

func TestLoader_UnmarshalAndValidate(t *testing.T) {
	loader := NewLoader("APISNOOP_TEST")
	if err := loader.LoadWithDefaults(testDefaults(), ""); err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	var cfg validatingConfig
	if err := loader.UnmarshalAndValidate("", &cfg); err != nil {
		t.Fatalf("UnmarshalAndValidate failed: %v", err)
	}

	if err := loader.Set("processing.workers", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := loader.UnmarshalAndValidate("", &cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoader_DumpYAML(t *testing.T) {
	loader := NewLoader("APISNOOP_TEST")
	if err := loader.LoadWithDefaults(testDefaults(), ""); err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	var buf bytes.Buffer
	if err := loader.DumpYAML(&buf); err != nil {
		t.Fatalf("DumpYAML failed: %v", err)
	}
	if !strings.Contains(buf.String(), "workers: 4") {
		t.Errorf("expected workers in dump, got:\n%s", buf.String())
	}
}
