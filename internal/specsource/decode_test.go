// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apisnoop/apisnoop/internal/specindex"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		want    specindex.Document
	}{
		{
			name:    "swagger 2.0",
			fixture: "swagger.json",
			want: specindex.Document{
				"/api/v1/namespaces/{namespace}/pods": {
					"get":  {OperationID: "listCoreV1NamespacedPod"},
					"post": {OperationID: "createCoreV1NamespacedPod"},
				},
				"/api/v1/namespaces/{namespace}/pods/{name}": {
					"get":    {OperationID: "readCoreV1NamespacedPod"},
					"delete": {OperationID: "deleteCoreV1NamespacedPod"},
					"patch":  {OperationID: "patchCoreV1NamespacedPod"},
				},
				"/api/v1/watch/nodes/{name}": {},
				"/version/": {
					"get": {OperationID: "getCodeVersion"},
				},
			},
		},
		{
			name:    "openapi 3",
			fixture: "openapi3.yaml",
			want: specindex.Document{
				"/apis/apps/v1/namespaces/{namespace}/deployments": {
					"get":  {OperationID: "listAppsV1NamespacedDeployment"},
					"post": {OperationID: "createAppsV1NamespacedDeployment"},
				},
				"/apis/apps/v1/namespaces/{namespace}/deployments/{name}": {
					"put": {OperationID: "replaceAppsV1NamespacedDeployment"},
				},
			},
		},
		{
			name:    "bare paths mapping",
			fixture: "paths.yaml",
			want: specindex.Document{
				"/api/v1/nodes": {
					"get": {OperationID: "listCoreV1Node"},
				},
				"/api/v1/nodes/{name}/proxy": {
					"connect": {OperationID: "connectCoreV1GetNodeProxy"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(readFixture(t, tt.fixture))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecode_NoPaths(t *testing.T) {
	_, err := Decode(readFixture(t, "nopaths.json"))
	assert.ErrorIs(t, err, ErrNoPaths)

	_, err = Decode([]byte(`paths: null`))
	assert.ErrorIs(t, err, ErrNoPaths)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := Decode([]byte(`{"paths": [`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoPaths)
}

func TestDecode_IndexesSwagger(t *testing.T) {
	doc, err := Decode(readFixture(t, "swagger.json"))
	require.NoError(t, err)

	idx := specindex.Build(doc)
	opID, err := idx.Resolve(specindex.Call{Verb: "patch", URI: "/api/v1/namespaces/kube-system/pods/etcd-0"})
	require.NoError(t, err)
	assert.Equal(t, "patchCoreV1NamespacedPod", opID)

	_, err = idx.Resolve(specindex.Call{Verb: "watch", URI: "/api/v1/watch/nodes/node-1"})
	assert.ErrorIs(t, err, specindex.ErrUnknownEndpointShape)
}
