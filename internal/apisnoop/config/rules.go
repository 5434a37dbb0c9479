// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"

	coreconfig "github.com/apisnoop/apisnoop/internal/config"
	"github.com/apisnoop/apisnoop/internal/specindex"
)

// RulesConfig holds the resolution rules.
type RulesConfig struct {
	// Methods maps audit verbs to canonical HTTP methods.
	Methods []specindex.MethodMapping `koanf:"methods"`
	// IgnoredSegments marks a request as ignored when any path segment matches.
	IgnoredSegments []string `koanf:"ignored_segments"`
	// IgnoredPaths marks a request as ignored when its whole path matches.
	IgnoredPaths []string `koanf:"ignored_paths"`
}

// RulesDefaults returns the Kubernetes API server rules.
func RulesDefaults() RulesConfig {
	return RulesConfig{
		Methods:         specindex.DefaultMethodMappings(),
		IgnoredSegments: specindex.DefaultIgnoredSegments(),
		IgnoredPaths:    specindex.DefaultIgnoredPaths(),
	}
}

// Validate validates the rules.
func (c *RulesConfig) Validate(path *coreconfig.Path) coreconfig.ValidationErrors {
	var errs coreconfig.ValidationErrors

	if len(c.Methods) == 0 {
		errs = append(errs, coreconfig.Required(path.Child("methods")))
	}
	verbs := coreconfig.Claims{}
	for i, m := range c.Methods {
		p := path.Child("methods").Index(i)
		if err := coreconfig.MustBeMethod(p.Child("method"), m.Method, specindex.KnownMethods()); err != nil {
			errs = append(errs, err)
		}
		if len(m.Verbs) == 0 {
			errs = append(errs, coreconfig.Required(p.Child("verbs")))
		}
		// The empty verb is valid: it is what the API server records for OPTIONS.
		for j, verb := range m.Verbs {
			if err := verbs.Claim(p.Child("verbs").Index(j), verb); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for i, seg := range c.IgnoredSegments {
		if err := coreconfig.MustBeSegment(path.Child("ignored_segments").Index(i), seg); err != nil {
			errs = append(errs, err)
		}
	}
	for i, p := range c.IgnoredPaths {
		if strings.Trim(p, "/") == "" {
			errs = append(errs, coreconfig.Invalid(path.Child("ignored_paths").Index(i), "must name at least one segment"))
		}
	}

	return errs
}

// ToRules builds the resolver rules.
func (c *RulesConfig) ToRules() (specindex.Rules, error) {
	methods, err := specindex.NewMethodTable(c.Methods)
	if err != nil {
		return specindex.Rules{}, err
	}
	return specindex.Rules{
		Methods: methods,
		Ignored: specindex.NewIgnoreSet(c.IgnoredSegments, c.IgnoredPaths),
	}, nil
}
