// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists processed audit events in SQLite for reporting.
package store

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultBatchSize is the number of rows written per insert statement.
const DefaultBatchSize = 500

// Run is one processed audit log.
type Run struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Bucket    string    `gorm:"type:text;index"`
	Job       string    `gorm:"type:text"`
	Revision  string    `gorm:"type:text;not null"`
	Version   string    `gorm:"type:text"`
	StartedAt time.Time `gorm:"not null"`
	Events    int64
}

// AuditEvent is one event of a run with its resolution.
type AuditEvent struct {
	ID               uint       `gorm:"primaryKey;autoIncrement"`
	RunID            string     `gorm:"type:text;index;not null"`
	AuditID          string     `gorm:"type:text;index"`
	Stage            string     `gorm:"type:text"`
	Verb             string     `gorm:"type:text"`
	RequestURI       string     `gorm:"type:text"`
	UserAgent        string     `gorm:"type:text"`
	OperationID      *string    `gorm:"type:text;index"`
	ResolutionReason *string    `gorm:"type:text;index"`
	ResolutionError  *string    `gorm:"type:text"`
	StageTimestamp   *time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db        *gorm.DB
	batchSize int
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBatchSize sets how many events are buffered and inserted together.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// Open opens or creates the database at path and migrates its schema.
func Open(path string, logger *slog.Logger, opts ...Option) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.AutoMigrate(&Run{}, &AuditEvent{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate tables: %w", err)
	}

	s := &Store{db: db, batchSize: DefaultBatchSize, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
