// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specindex

import (
	"errors"
	"fmt"
)

// Reason classifies why a request could not be resolved to an operation.
type Reason string

const (
	// ReasonUnmappableVerb means the recorded verb has no canonical HTTP method.
	ReasonUnmappableVerb Reason = "UnmappableVerb"
	// ReasonSegmentCountUncovered means no path template has this many segments.
	ReasonSegmentCountUncovered Reason = "SegmentCountUncovered"
	// ReasonIgnoredEndpoint means the path is a known non-API endpoint. It is an
	// expected miss rather than a gap in the specification.
	ReasonIgnoredEndpoint Reason = "IgnoredEndpoint"
	// ReasonUnknownEndpointShape means no literal or variable branch matched at some depth.
	ReasonUnknownEndpointShape Reason = "UnknownEndpointShape"
	// ReasonVariableLevelMissing means the final variable level exists but declares no operations.
	ReasonVariableLevelMissing Reason = "VariableLevelMissing"
	// ReasonMethodNotDeclared means the matched template does not declare the method.
	ReasonMethodNotDeclared Reason = "MethodNotDeclared"
)

var reasonMessages = map[Reason]string{
	ReasonUnmappableVerb:        "could not assign a method from the event verb",
	ReasonSegmentCountUncovered: "no path with this many segments in the specification",
	ReasonIgnoredEndpoint:       "known non-API endpoint, ignored",
	ReasonUnknownEndpointShape:  "endpoint shape not found in the specification",
	ReasonVariableLevelMissing:  "variable level declares no operations in the specification",
	ReasonMethodNotDeclared:     "no operation for this method on the matched path",
}

// Sentinels for errors.Is. They match any ResolutionError with the same Reason.
var (
	ErrUnmappableVerb        = &ResolutionError{Reason: ReasonUnmappableVerb}
	ErrSegmentCountUncovered = &ResolutionError{Reason: ReasonSegmentCountUncovered}
	ErrIgnoredEndpoint       = &ResolutionError{Reason: ReasonIgnoredEndpoint}
	ErrUnknownEndpointShape  = &ResolutionError{Reason: ReasonUnknownEndpointShape}
	ErrVariableLevelMissing  = &ResolutionError{Reason: ReasonVariableLevelMissing}
	ErrMethodNotDeclared     = &ResolutionError{Reason: ReasonMethodNotDeclared}
)

// ResolutionError is a per-request classification, never a fault of the index.
type ResolutionError struct {
	Reason Reason
	// Verb is the verb as recorded on the event.
	Verb string
	// Method is the canonical method, empty for ReasonUnmappableVerb.
	Method string
	// Path is the request path without query string.
	Path string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	msg := reasonMessages[e.Reason]
	if msg == "" {
		msg = string(e.Reason)
	}
	switch {
	case e.Reason == ReasonUnmappableVerb:
		return fmt.Sprintf("%s: verb %q", msg, e.Verb)
	case e.Path != "" && e.Method != "":
		return fmt.Sprintf("%s: %s %s", msg, e.Method, e.Path)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", msg, e.Path)
	default:
		return msg
	}
}

// Is reports whether target is a ResolutionError with the same reason.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	return ok && t.Reason == e.Reason
}

// ReasonOf extracts the Reason from err.
func ReasonOf(err error) (Reason, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Reason, true
	}
	return "", false
}

// IsIgnored reports whether err classifies an ignored endpoint.
func IsIgnored(err error) bool {
	return errors.Is(err, ErrIgnoredEndpoint)
}
