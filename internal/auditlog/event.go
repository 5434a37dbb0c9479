// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package auditlog reads and writes line-delimited Kubernetes audit events.
package auditlog

import (
	"encoding/json"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	utiljson "k8s.io/apimachinery/pkg/util/json"
	auditv1 "k8s.io/apiserver/pkg/apis/audit/v1"
)

// Fields attached to an event once it has been resolved.
const (
	FieldOperationID     = "operationId"
	FieldResolutionError = "resolutionError"
)

// Event is one audit record. Fields the processor does not know about are
// preserved untouched so the record can be written back out verbatim.
type Event struct {
	obj *unstructured.Unstructured
}

// ParseEvent decodes a single JSON audit record. Integral numbers are kept as
// int64.
func ParseEvent(data []byte) (*Event, error) {
	var obj map[string]interface{}
	if err := utiljson.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("audit record is not an object")
	}
	return &Event{obj: &unstructured.Unstructured{Object: obj}}, nil
}

// NewEvent wraps an already decoded record.
func NewEvent(obj map[string]interface{}) *Event {
	return &Event{obj: &unstructured.Unstructured{Object: obj}}
}

func (e *Event) str(fields ...string) string {
	v, _, _ := unstructured.NestedString(e.obj.Object, fields...)
	return v
}

// RequestVerb returns the recorded verb, or "" when absent.
func (e *Event) RequestVerb() string { return e.str("verb") }

// RequestURI returns the recorded request URI, or "" when absent.
func (e *Event) RequestURI() string { return e.str("requestURI") }

// AuditID returns the unique id the API server assigned to the request.
func (e *Event) AuditID() string { return e.str("auditID") }

// Stage returns the audit stage, e.g. ResponseComplete.
func (e *Event) Stage() string { return e.str("stage") }

// UserAgent returns the recorded user agent.
func (e *Event) UserAgent() string { return e.str("userAgent") }

// StageTimestamp returns the raw stageTimestamp value.
func (e *Event) StageTimestamp() string { return e.str("stageTimestamp") }

// SetResolution records the outcome of resolving the event. Exactly one of
// operationId and resolutionError is non-null afterwards.
func (e *Event) SetResolution(operationID string, err error) {
	if err != nil {
		e.obj.Object[FieldOperationID] = nil
		e.obj.Object[FieldResolutionError] = err.Error()
		return
	}
	e.obj.Object[FieldOperationID] = operationID
	e.obj.Object[FieldResolutionError] = nil
}

// OperationID returns the attached operation identifier, if any.
func (e *Event) OperationID() (string, bool) {
	v, ok := e.obj.Object[FieldOperationID].(string)
	return v, ok
}

// ResolutionError returns the attached failure message, if any.
func (e *Event) ResolutionError() (string, bool) {
	v, ok := e.obj.Object[FieldResolutionError].(string)
	return v, ok
}

// Object exposes the underlying record.
func (e *Event) Object() map[string]interface{} {
	return e.obj.Object
}

// Typed converts the record into the audit.k8s.io/v1 Event type. Resolution
// fields have no typed counterpart and are dropped.
func (e *Event) Typed() (*auditv1.Event, error) {
	var ev auditv1.Event
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(e.obj.Object, &ev); err != nil {
		return nil, fmt.Errorf("failed to convert audit event: %w", err)
	}
	return &ev, nil
}

// MarshalJSON implements json.Marshaler.
func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.obj.Object)
}
