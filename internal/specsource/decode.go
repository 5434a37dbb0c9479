// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specsource

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"k8s.io/kube-openapi/pkg/validation/spec"
	"sigs.k8s.io/yaml"

	"github.com/apisnoop/apisnoop/internal/specindex"
)

// ErrNoPaths is returned for documents without a paths section.
var ErrNoPaths = errors.New("specification declares no paths")

// Decode parses a JSON or YAML specification. Swagger 2.0 documents are read
// with the Kubernetes OpenAPI types, OpenAPI 3 documents with kin-openapi, and
// anything else as a bare paths mapping that keeps every method key verbatim.
func Decode(data []byte) (specindex.Document, error) {
	var header struct {
		Swagger string          `json:"swagger"`
		OpenAPI string          `json:"openapi"`
		Paths   json.RawMessage `json:"paths"`
	}
	if err := yaml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse specification: %w", err)
	}
	if len(header.Paths) == 0 || string(header.Paths) == "null" {
		return nil, ErrNoPaths
	}

	switch {
	case header.Swagger != "":
		return decodeSwagger(data)
	case strings.HasPrefix(header.OpenAPI, "3."):
		return decodeOpenAPI3(data)
	default:
		return decodePaths(header.Paths)
	}
}

func decodeSwagger(data []byte) (specindex.Document, error) {
	if !json.Valid(data) {
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert swagger document to JSON: %w", err)
		}
		data = converted
	}

	var swagger spec.Swagger
	if err := json.Unmarshal(data, &swagger); err != nil {
		return nil, fmt.Errorf("failed to parse swagger document: %w", err)
	}
	if swagger.Paths == nil {
		return nil, ErrNoPaths
	}

	doc := make(specindex.Document, len(swagger.Paths.Paths))
	for path, item := range swagger.Paths.Paths {
		ops := make(map[string]specindex.Operation)
		for method, op := range map[string]*spec.Operation{
			specindex.MethodGet:     item.Get,
			specindex.MethodPut:     item.Put,
			specindex.MethodPost:    item.Post,
			specindex.MethodDelete:  item.Delete,
			specindex.MethodOptions: item.Options,
			specindex.MethodHead:    item.Head,
			specindex.MethodPatch:   item.Patch,
		} {
			if op != nil {
				ops[method] = specindex.Operation{OperationID: op.ID}
			}
		}
		doc[path] = ops
	}
	return doc, nil
}

func decodeOpenAPI3(data []byte) (specindex.Document, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false

	t, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse openapi document: %w", err)
	}
	if t.Paths == nil {
		return nil, ErrNoPaths
	}

	paths := t.Paths.Map()
	doc := make(specindex.Document, len(paths))
	for path, item := range paths {
		ops := make(map[string]specindex.Operation)
		for method, op := range item.Operations() {
			ops[strings.ToLower(method)] = specindex.Operation{OperationID: op.OperationID}
		}
		doc[path] = ops
	}
	return doc, nil
}

// decodePaths reads {path: {method: {operationId: ...}}}. Keys whose value is
// not an object, such as parameters, are dropped.
func decodePaths(raw json.RawMessage) (specindex.Document, error) {
	var paths map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &paths); err != nil {
		return nil, fmt.Errorf("failed to parse paths: %w", err)
	}

	doc := make(specindex.Document, len(paths))
	for path, methods := range paths {
		ops := make(map[string]specindex.Operation, len(methods))
		for method, body := range methods {
			var op specindex.Operation
			if err := json.Unmarshal(body, &op); err != nil {
				continue
			}
			ops[strings.ToLower(method)] = op
		}
		doc[path] = ops
	}
	return doc, nil
}
