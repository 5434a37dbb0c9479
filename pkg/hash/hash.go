// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package hash fingerprints arbitrary values.
package hash

import (
	"fmt"
	"hash/fnv"

	"k8s.io/apimachinery/pkg/util/dump"
	"k8s.io/apimachinery/pkg/util/rand"
)

// Fingerprint returns a short stable digest of obj. Map keys are visited in
// sorted order, so equal values always share a fingerprint.
func Fingerprint(obj any) string {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(dump.ForHash(obj)))
	return rand.SafeEncodeString(fmt.Sprint(hasher.Sum64()))
}
