// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/exp/constraints"
)

// Path addresses a config field in error messages, e.g.
// "rules.methods[2].verbs".
type Path struct {
	s string
}

// NewPath starts a path at a top-level config section.
func NewPath(root string) *Path {
	return &Path{s: root}
}

// Child appends a field name.
func (p *Path) Child(name string) *Path {
	if p.s == "" {
		return &Path{s: name}
	}
	return &Path{s: p.s + "." + name}
}

// Index appends a list position to the last field.
func (p *Path) Index(i int) *Path {
	return &Path{s: fmt.Sprintf("%s[%d]", p.s, i)}
}

func (p *Path) String() string {
	return p.s
}

// FieldError is a validation error for one config field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every field error of a config tree.
type ValidationErrors []*FieldError

func (ve ValidationErrors) Error() string {
	lines := make([]string, len(ve))
	for i, e := range ve {
		lines[i] = "- " + e.Error()
	}
	return strings.Join(lines, "\n")
}

// OrNil returns nil for an empty list.
func (ve ValidationErrors) OrNil() error {
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// Required reports a missing field.
func Required(path *Path) *FieldError {
	return Invalid(path, "is required")
}

// Invalid reports a field with a custom message.
func Invalid(path *Path, msg string) *FieldError {
	return &FieldError{Field: path.String(), Message: msg}
}

// MustBeInRange checks min <= value <= max.
func MustBeInRange[T constraints.Ordered](path *Path, value, min, max T) *FieldError {
	if value < min || value > max {
		return Invalid(path, fmt.Sprintf("must be between %v and %v", min, max))
	}
	return nil
}

// MustBeNonNegative checks value >= 0. Durations use it, zero meaning no limit.
func MustBeNonNegative[T constraints.Integer | constraints.Float](path *Path, value T) *FieldError {
	if value < 0 {
		return Invalid(path, "must be non-negative")
	}
	return nil
}

// MustBePositive checks value > 0.
func MustBePositive[T constraints.Integer | constraints.Float](path *Path, value T) *FieldError {
	if value <= 0 {
		return Invalid(path, "must be positive")
	}
	return nil
}

// MustBeOneOf checks that value is listed in allowed.
func MustBeOneOf(path *Path, value string, allowed []string) *FieldError {
	if slices.Contains(allowed, value) {
		return nil
	}
	return Invalid(path, "must be one of: "+strings.Join(allowed, ", "))
}

// MustNotBeEmpty checks that a string field is set.
func MustNotBeEmpty(path *Path, value string) *FieldError {
	if value == "" {
		return Invalid(path, "must not be empty")
	}
	return nil
}

// MustBeMethod checks that value names one of the canonical methods,
// ignoring case and surrounding blanks. Methods are matched against the
// lowercase operation keys of a path item, so "GET" and "get" are the same.
func MustBeMethod(path *Path, value string, known []string) *FieldError {
	method := strings.ToLower(strings.TrimSpace(value))
	if method == "" {
		return Required(path)
	}
	if !slices.Contains(known, method) {
		return Invalid(path, fmt.Sprintf("unknown method %q, must be one of: %s", value, strings.Join(known, ", ")))
	}
	return nil
}

// MustBeSegment checks that value is a single path segment.
func MustBeSegment(path *Path, value string) *FieldError {
	switch {
	case strings.TrimSpace(value) == "":
		return Invalid(path, "must not be empty")
	case strings.Contains(value, "/"):
		return Invalid(path, fmt.Sprintf("%q is not a single path segment", value))
	}
	return nil
}

// Claims records the first field that set each value of a list that must stay
// unique across several config entries, such as audit verbs.
type Claims map[string]*Path

// Claim records value for path, or reports the field that claimed it first.
func (c Claims) Claim(path *Path, value string) *FieldError {
	if first, ok := c[value]; ok {
		return Invalid(path, fmt.Sprintf("%q is already mapped by %s", value, first))
	}
	c[value] = path
	return nil
}
