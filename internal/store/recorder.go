// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"k8s.io/utils/ptr"

	"github.com/apisnoop/apisnoop/internal/auditlog"
	"github.com/apisnoop/apisnoop/internal/specindex"
)

// RunInfo identifies the audit log being recorded.
type RunInfo struct {
	Bucket   string
	Job      string
	Revision string
	Version  string
}

// Recorder buffers the events of one run and inserts them in batches.
type Recorder struct {
	store *Store
	run   Run

	mu      sync.Mutex
	pending []AuditEvent
}

// Begin registers a new run and returns its recorder.
func (s *Store) Begin(ctx context.Context, info RunInfo) (*Recorder, error) {
	run := Run{
		ID:        uuid.NewString(),
		Bucket:    info.Bucket,
		Job:       info.Job,
		Revision:  info.Revision,
		Version:   info.Version,
		StartedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	s.logger.Debug("Recording run", "run", run.ID, "revision", run.Revision)
	return &Recorder{store: s, run: run, pending: make([]AuditEvent, 0, s.batchSize)}, nil
}

// RunID returns the id of the run being recorded.
func (r *Recorder) RunID() string {
	return r.run.ID
}

// Record buffers ev, writing the buffer once it reaches the batch size.
func (r *Recorder) Record(ctx context.Context, ev *auditlog.Event, resolution error) error {
	row := AuditEvent{
		RunID:      r.run.ID,
		AuditID:    ev.AuditID(),
		Stage:      ev.Stage(),
		Verb:       ev.RequestVerb(),
		RequestURI: ev.RequestURI(),
		UserAgent:  ev.UserAgent(),
	}
	if opID, ok := ev.OperationID(); ok {
		row.OperationID = ptr.To(opID)
	}
	if resolution != nil {
		row.ResolutionError = ptr.To(resolution.Error())
		if reason, ok := specindex.ReasonOf(resolution); ok {
			row.ResolutionReason = ptr.To(string(reason))
		}
	}
	if typed, err := ev.Typed(); err == nil && !typed.StageTimestamp.IsZero() {
		row.StageTimestamp = ptr.To(typed.StageTimestamp.UTC())
	}

	r.mu.Lock()
	r.pending = append(r.pending, row)
	full := len(r.pending) >= r.store.batchSize
	r.mu.Unlock()

	if full {
		return r.Flush(ctx)
	}
	return nil
}

// Flush writes every buffered event. The events and the run's event count are
// committed together; on failure nothing is written and the buffer is kept for
// another attempt.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pending) == 0 {
		return nil
	}
	n := int64(len(r.pending))
	err := r.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(r.pending, r.store.batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert audit events: %w", err)
		}
		if err := tx.Model(&Run{}).Where("id = ?", r.run.ID).
			UpdateColumn("events", gorm.Expr("events + ?", n)).Error; err != nil {
			return fmt.Errorf("failed to update run %s: %w", r.run.ID, err)
		}
		return nil
	})
	if err != nil {
		// Rolled back rows keep the ids assigned by the insert.
		for i := range r.pending {
			r.pending[i].ID = 0
		}
		return err
	}
	r.pending = r.pending[:0]
	return nil
}
