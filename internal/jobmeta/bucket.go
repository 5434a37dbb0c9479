// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package jobmeta discovers conformance CI runs and the audit logs they
// produced.
package jobmeta

import (
	"fmt"
	"regexp"
	"strings"
)

// Layout describes where a bucket publishes its run metadata.
type Layout int

const (
	// LayoutKind jobs publish started.json and a kubernetes-version.txt
	// artifact, with audit logs under artifacts/audit.
	LayoutKind Layout = iota
	// LayoutGCE jobs publish finished.json, with audit logs under the
	// master node's artifact directory.
	LayoutGCE
)

// Bucket is a CI job whose runs record API server audit logs.
type Bucket struct {
	Name  string
	Short string
	// LogPattern selects the downloaded files that hold audit events.
	LogPattern string
	Layout     Layout
	linkRe     *regexp.Regexp
}

var (
	// AKC runs the conformance suite against a kind cluster.
	AKC = Bucket{
		Name:       "ci-audit-kind-conformance",
		Short:      "akc",
		LogPattern: "audit*log",
		Layout:     LayoutKind,
		linkRe:     regexp.MustCompile(`.log`),
	}
	// KGCL runs the conformance suite against the latest GCE build.
	KGCL = Bucket{
		Name:       "ci-kubernetes-gce-conformance-latest",
		Short:      "kgcl",
		LogPattern: "*kube-apiserver-audit*",
		Layout:     LayoutGCE,
		linkRe:     regexp.MustCompile(`audit.log`),
	}
	// KEGG runs the full e2e suite on GCE.
	KEGG = Bucket{
		Name:       "ci-kubernetes-e2e-gci-gce",
		Short:      "kegg",
		LogPattern: "*kube-apiserver-audit*",
		Layout:     LayoutGCE,
		linkRe:     regexp.MustCompile(`audit.log`),
	}
)

// Buckets lists every known bucket.
func Buckets() []Bucket {
	return []Bucket{AKC, KGCL, KEGG}
}

// LookupBucket finds a bucket by full or short name.
func LookupBucket(name string) (Bucket, error) {
	for _, b := range Buckets() {
		if strings.EqualFold(name, b.Name) || strings.EqualFold(name, b.Short) {
			return b, nil
		}
	}
	return Bucket{}, fmt.Errorf("unknown bucket %q", name)
}

func (b Bucket) String() string {
	return b.Name
}
