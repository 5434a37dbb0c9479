// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

// Package snoop attaches operation identifiers to streams of audit events.
package snoop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/sourcegraph/conc/stream"

	"github.com/apisnoop/apisnoop/internal/auditlog"
	"github.com/apisnoop/apisnoop/internal/specindex"
)

// Recorder receives every processed event together with its resolution
// failure, if any.
type Recorder interface {
	Record(ctx context.Context, ev *auditlog.Event, resolution error) error
}

// Batch is one audit log to process against the specification at Revision.
type Batch struct {
	Revision string
	Input    io.Reader
	Output   io.Writer
	// Recorder is optional.
	Recorder Recorder
}

// Summary counts what happened to the events of a batch.
type Summary struct {
	Revision  string                   `json:"revision"`
	Events    int                      `json:"events"`
	Resolved  int                      `json:"resolved"`
	Ignored   int                      `json:"ignored"`
	Malformed int                      `json:"malformed"`
	Failures  map[specindex.Reason]int `json:"failures,omitempty"`
	Duration  time.Duration            `json:"duration"`
}

// Failed returns the number of events that could not be resolved, excluding
// ignored endpoints.
func (s Summary) Failed() int {
	n := 0
	for _, c := range s.Failures {
		n += c
	}
	return n
}

// Processor resolves batches of audit events.
type Processor struct {
	registry *Registry
	workers  int
	metrics  *Metrics
	logger   *slog.Logger
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets how many events are resolved concurrently.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithMetrics records processing metrics on m.
func WithMetrics(m *Metrics) ProcessorOption {
	return func(p *Processor) {
		p.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor returns a Processor that takes indexes from registry.
func NewProcessor(registry *Registry, opts ...ProcessorOption) *Processor {
	p := &Processor{
		registry: registry,
		workers:  runtime.GOMAXPROCS(0),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process reads every event of b.Input, attaches its resolution and writes it
// to b.Output in input order. Malformed lines are counted and skipped.
// Resolution failures are recorded on the events and never stop the batch.
func (p *Processor) Process(ctx context.Context, b Batch) (Summary, error) {
	start := time.Now()
	summary := Summary{Revision: b.Revision, Failures: make(map[specindex.Reason]int)}

	idx, release, err := p.registry.Acquire(ctx, b.Revision)
	if err != nil {
		return summary, err
	}
	defer release()

	reader := auditlog.NewReader(b.Input)
	writer := auditlog.NewWriter(b.Output)

	var (
		errOnce  sync.Once
		firstErr error
		failed   = make(chan struct{})
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			close(failed)
		})
	}

	s := stream.New().WithMaxGoroutines(p.workers)

read:
	for {
		select {
		case <-ctx.Done():
			fail(ctx.Err())
			break read
		case <-failed:
			break read
		default:
		}

		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var perr *auditlog.ParseError
		if errors.As(err, &perr) {
			summary.Malformed++
			if p.metrics != nil {
				p.metrics.malformedLines.Inc()
			}
			p.logger.Warn("Skipping malformed audit record", "line", perr.Line, "error", perr.Err)
			continue
		}
		if err != nil {
			fail(err)
			break
		}

		s.Go(func() stream.Callback {
			opID, rerr := idx.Resolve(ev)
			return func() {
				select {
				case <-failed:
					return
				default:
				}
				ev.SetResolution(opID, rerr)
				p.count(&summary, rerr)
				if rerr != nil && !specindex.IsIgnored(rerr) {
					p.logger.Debug("Unresolved audit event", "auditID", ev.AuditID(), "error", rerr)
				}
				if err := writer.Write(ev); err != nil {
					fail(err)
					return
				}
				if b.Recorder != nil {
					if err := b.Recorder.Record(ctx, ev, rerr); err != nil {
						fail(fmt.Errorf("failed to record event %s: %w", ev.AuditID(), err))
					}
				}
			}
		})
	}
	s.Wait()

	summary.Duration = time.Since(start)
	if firstErr != nil {
		return summary, firstErr
	}
	if err := writer.Flush(); err != nil {
		return summary, fmt.Errorf("failed to flush output: %w", err)
	}

	p.logger.Info("Processed audit log",
		"revision", b.Revision,
		"events", summary.Events,
		"resolved", summary.Resolved,
		"ignored", summary.Ignored,
		"failed", summary.Failed(),
		"malformed", summary.Malformed,
		"duration", summary.Duration)
	return summary, nil
}

// count runs on the stream's callback goroutine, one event at a time.
func (p *Processor) count(summary *Summary, err error) {
	summary.Events++
	outcome := OutcomeResolved
	switch {
	case err == nil:
		summary.Resolved++
	case specindex.IsIgnored(err):
		summary.Ignored++
		outcome = OutcomeIgnored
	default:
		outcome = OutcomeFailed
		reason, _ := specindex.ReasonOf(err)
		summary.Failures[reason]++
		if p.metrics != nil {
			p.metrics.resolutionFailures.WithLabelValues(string(reason)).Inc()
		}
	}
	if p.metrics != nil {
		p.metrics.eventsProcessed.WithLabelValues(outcome).Inc()
	}
}
