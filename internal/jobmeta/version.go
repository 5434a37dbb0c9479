// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package jobmeta

import (
	"fmt"
	"regexp"

	"github.com/blang/semver/v4"
)

var (
	versionRe = regexp.MustCompile(`^v([0-9.]+)-`)
	commitRe  = regexp.MustCompile(`.+\+([0-9a-zA-Z]+)$`)
)

// ParseVersion extracts the release version from a build version string such
// as v1.26.0-alpha.0.378+bcea98234f0fdc-dirty.
func ParseVersion(s string) (string, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("no version in %q", s)
	}
	if _, err := semver.ParseTolerant(m[1]); err != nil {
		return "", fmt.Errorf("invalid version in %q: %w", s, err)
	}
	return m[1], nil
}

// ParseJobVersion splits a job version such as
// v1.26.0-alpha.0.378+bcea98234f0fdc into its release version and commit.
func ParseJobVersion(s string) (version, commit string, err error) {
	version, err = ParseVersion(s)
	if err != nil {
		return "", "", err
	}
	m := commitRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", fmt.Errorf("no commit in %q", s)
	}
	return version, m[1], nil
}
