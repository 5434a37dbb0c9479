// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specindex

// testDocument is a trimmed copy of the shapes found in the Kubernetes swagger.
func testDocument() Document {
	return Document{
		"/api/v1/namespaces/{namespace}/pods": {
			"get":        {OperationID: "listCoreV1NamespacedPod"},
			"post":       {OperationID: "createCoreV1NamespacedPod"},
			"delete":     {OperationID: "deleteCoreV1CollectionNamespacedPod"},
			"parameters": {},
		},
		"/api/v1/namespaces/{namespace}/pods/{name}": {
			"get":    {OperationID: "readCoreV1NamespacedPod"},
			"put":    {OperationID: "replaceCoreV1NamespacedPod"},
			"patch":  {OperationID: "patchCoreV1NamespacedPod"},
			"delete": {OperationID: "deleteCoreV1NamespacedPod"},
		},
		"/api/v1/namespaces/{namespace}/pods/{name}/status": {
			"get": {OperationID: "readCoreV1NamespacedPodStatus"},
		},
		"/api/v1/namespaces/{namespace}/pods/{name}/proxy": {
			"get": {OperationID: "connectCoreV1GetNamespacedPodProxy"},
		},
		"/api/v1/namespaces/{namespace}/pods/{name}/proxy/{path}": {
			"get":  {OperationID: "connectCoreV1GetNamespacedPodProxyWithPath"},
			"head": {OperationID: "connectCoreV1HeadNamespacedPodProxyWithPath"},
		},
		"/api/v1/namespaces/{name}": {
			"get": {OperationID: "readCoreV1Namespace"},
		},
		"/api/v1/namespaces/{name}/status": {
			"get":   {OperationID: "readCoreV1NamespaceStatus"},
			"patch": {OperationID: "patchCoreV1NamespaceStatus"},
		},
		"/api/v1/namespaces/{name}/finalize": {
			"put": {OperationID: "replaceCoreV1NamespaceFinalize"},
		},
		"/api/v1/nodes": {
			"get": {OperationID: "listCoreV1Node"},
		},
		"/api/v1/watch/nodes/{name}": {
			"parameters": {},
		},
		"/api/v1": {
			"get": {OperationID: "getCoreV1APIResources"},
		},
		"/openapi/v2": {
			"get": {OperationID: "getOpenAPIV2"},
		},
		"/version/": {
			"get": {},
		},
	}
}
