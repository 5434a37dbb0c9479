// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
)

// OperationHit is the number of recorded events resolved to an operation.
type OperationHit struct {
	OperationID string
	Hits        int64
}

// OperationHits returns operations ordered by descending hit count. A
// non-positive limit returns every operation.
func (s *Store) OperationHits(ctx context.Context, limit int) ([]OperationHit, error) {
	q := s.db.WithContext(ctx).
		Model(&AuditEvent{}).
		Select("operation_id, count(*) AS hits").
		Where("operation_id IS NOT NULL AND operation_id <> ''").
		Group("operation_id").
		Order("hits DESC, operation_id")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var hits []OperationHit
	if err := q.Scan(&hits).Error; err != nil {
		return nil, fmt.Errorf("failed to query operation hits: %w", err)
	}
	return hits, nil
}

// ReasonCount is the number of recorded events that failed for a reason.
type ReasonCount struct {
	Reason string
	Events int64
}

// FailureReasons returns unresolved event counts per failure reason.
func (s *Store) FailureReasons(ctx context.Context) ([]ReasonCount, error) {
	var counts []ReasonCount
	err := s.db.WithContext(ctx).
		Model(&AuditEvent{}).
		Select("resolution_reason AS reason, count(*) AS events").
		Where("resolution_reason IS NOT NULL").
		Group("resolution_reason").
		Order("events DESC, reason").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query failure reasons: %w", err)
	}
	return counts, nil
}

// Runs returns the recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	var runs []Run
	if err := s.db.WithContext(ctx).Order("started_at DESC").Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}
