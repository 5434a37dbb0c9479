// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specindex

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want []string
	}{
		{
			name: "plain path",
			path: "/api/v1/namespaces/default/pods",
			want: []string{"api", "v1", "namespaces", "default", "pods"},
		},
		{
			name: "trailing separator",
			path: "/api/v1/nodes/",
			want: []string{"api", "v1", "nodes"},
		},
		{
			name: "root",
			path: "/",
			want: []string{""},
		},
		{
			name: "proxy tail collapsed",
			path: "/api/v1/namespaces/ns/pods/p:80/proxy/some/deep/path",
			want: []string{"api", "v1", "namespaces", "ns", "pods", "p:80", "proxy", "some/deep/path"},
		},
		{
			name: "proxy without tail",
			path: "/api/v1/namespaces/ns/services/svc/proxy",
			want: []string{"api", "v1", "namespaces", "ns", "services", "svc", "proxy"},
		},
		{
			name: "proxy takes precedence over namespace status",
			path: "/api/v1/proxy/x/status",
			want: []string{"api", "v1", "proxy", "x/status"},
		},
		{
			name: "namespace status",
			path: "/api/v1/namespaces/kube-system/status",
			want: []string{"api", "v1", "namespaces", "{name}", "status"},
		},
		{
			name: "namespace finalize",
			path: "/api/v1/namespaces/e2e-1234/finalize",
			want: []string{"api", "v1", "namespaces", "{name}", "finalize"},
		},
		{
			name: "status with six segments untouched",
			path: "/api/v1/namespaces/ns/pods/status",
			want: []string{"api", "v1", "namespaces", "ns", "pods", "status"},
		},
		{
			name: "status outside namespaces untouched",
			path: "/apis/apps/deployments/x/status",
			want: []string{"apis", "apps", "deployments", "x", "status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePath(tt.path)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("NormalizePath(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestNormalizePath_SameShapeForAnyNamespace(t *testing.T) {
	a := NormalizePath("/api/v1/namespaces/alpha/status")
	b := NormalizePath("/api/v1/namespaces/beta/status")
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("namespace status paths normalize differently (-a +b):\n%s", diff)
	}
}

func TestRequestPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"/api/v1/pods?limit=500&resourceVersion=0", "/api/v1/pods"},
		{"/api/v1/pods", "/api/v1/pods"},
		{"/api/v1/namespaces/a/pods/b%2Fc", "/api/v1/namespaces/a/pods/b%2Fc"},
		{"/api/v1/x?%zz", "/api/v1/x"},
		{"/api/v1/%zz?watch=1", "/api/v1/%zz"},
	}
	for _, tt := range tests {
		if got := requestPath(tt.uri); got != tt.want {
			t.Errorf("requestPath(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
