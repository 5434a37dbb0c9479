// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package specindex resolves concrete API server request paths to the operation
// identifiers declared by an OpenAPI/Swagger document.
package specindex

// parametersKey is the pseudo-method under which path-level parameters are declared.
const parametersKey = "parameters"

// Document is an API specification reduced to what operation lookup needs:
// path template -> method -> operation.
type Document map[string]map[string]Operation

// Operation holds the metadata of one method on one path template.
type Operation struct {
	OperationID string `json:"operationId,omitempty"`
}

// Paths returns the number of path templates in the document.
func (d Document) Paths() int {
	return len(d)
}
