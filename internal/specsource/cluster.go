// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package specsource

import (
	"context"
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/apisnoop/apisnoop/internal/specindex"
)

const openAPIV2Path = "/openapi/v2"

// Cluster fetches the schema served by a running API server. The revision is
// ignored: a cluster serves exactly one.
type Cluster struct {
	Config *rest.Config
}

// NewCluster builds a cluster source from kubeconfig, or from the standard
// in-cluster and KUBECONFIG discovery when kubeconfig is empty. A non-empty
// tokenFile replaces the configured credentials with a bearer token.
func NewCluster(kubeconfig, tokenFile string) (*Cluster, error) {
	var (
		cfg *rest.Config
		err error
	)
	if kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		cfg, err = ctrl.GetConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes config: %w", err)
	}

	if tokenFile != "" {
		cfg = rest.CopyConfig(cfg)
		cfg.BearerToken = ""
		cfg.BearerTokenFile = tokenFile
	}
	return &Cluster{Config: cfg}, nil
}

// Load implements Source.
func (c *Cluster) Load(ctx context.Context, _ string) (specindex.Document, error) {
	clientset, err := kubernetes.NewForConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	data, err := clientset.Discovery().RESTClient().
		Get().
		AbsPath(openAPIV2Path).
		SetHeader("Accept", "application/json").
		Do(ctx).
		Raw()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", openAPIV2Path, err)
	}
	return Decode(data)
}
