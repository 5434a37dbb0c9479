// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package snoop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/apisnoop/apisnoop/internal/auditlog"
	"github.com/apisnoop/apisnoop/internal/specindex"
)

func auditLine(id, verb, uri string) string {
	return fmt.Sprintf(`{"auditID":%q,"stage":"ResponseComplete","verb":%q,"requestURI":%q}`, id, verb, uri)
}

func readAll(data []byte) []*auditlog.Event {
	r := auditlog.NewReader(bytes.NewReader(data))
	var events []*auditlog.Event
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			return events
		}
		Expect(err).NotTo(HaveOccurred())
		events = append(events, ev)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errBoom }

var _ = Describe("Processor", func() {
	var (
		source    *fakeSource
		metrics   *Metrics
		registry  *Registry
		processor *Processor
	)

	BeforeEach(func() {
		source = &fakeSource{}
		metrics = NewMetrics()
		registry = NewRegistry(source, metrics, testLogger)
		processor = NewProcessor(registry,
			WithWorkers(4),
			WithMetrics(metrics),
			WithLogger(testLogger))
	})

	It("attaches resolutions in input order", func() {
		input := strings.Join([]string{
			auditLine("1", "list", "/api/v1/namespaces/default/pods"),
			auditLine("2", "get", "/api/v1/namespaces/default/pods/web-0"),
			`{"auditID": "broken"`,
			auditLine("3", "get", "/healthz"),
			auditLine("4", "escalate", "/api/v1/nodes"),
			auditLine("5", "create", "/api/v1/nodes"),
			"",
			auditLine("6", "list", "/api/v1/nodes?limit=500"),
		}, "\n")

		var out bytes.Buffer
		recorder := &memoryRecorder{}
		summary, err := processor.Process(context.Background(), Batch{
			Revision: "abc",
			Input:    strings.NewReader(input),
			Output:   &out,
			Recorder: recorder,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(summary.Events).To(Equal(6))
		Expect(summary.Resolved).To(Equal(3))
		Expect(summary.Ignored).To(Equal(1))
		Expect(summary.Malformed).To(Equal(1))
		Expect(summary.Failed()).To(Equal(2))
		Expect(summary.Failures).To(Equal(map[specindex.Reason]int{
			specindex.ReasonUnmappableVerb:    1,
			specindex.ReasonMethodNotDeclared: 1,
		}))

		events := readAll(out.Bytes())
		Expect(events).To(HaveLen(6))

		var ids []string
		for _, ev := range events {
			ids = append(ids, ev.AuditID())
		}
		Expect(ids).To(Equal([]string{"1", "2", "3", "4", "5", "6"}))

		opID, ok := events[0].OperationID()
		Expect(ok).To(BeTrue())
		Expect(opID).To(Equal("listCoreV1NamespacedPod"))

		_, ok = events[2].OperationID()
		Expect(ok).To(BeFalse())
		msg, ok := events[2].ResolutionError()
		Expect(ok).To(BeTrue())
		Expect(msg).NotTo(BeEmpty())

		Expect(recorder.events).To(HaveLen(6))
		Expect(recorder.events[5].AuditID()).To(Equal("6"))

		Expect(testutil.ToFloat64(metrics.eventsProcessed.WithLabelValues(OutcomeResolved))).To(Equal(3.0))
		Expect(testutil.ToFloat64(metrics.eventsProcessed.WithLabelValues(OutcomeIgnored))).To(Equal(1.0))
		Expect(testutil.ToFloat64(metrics.eventsProcessed.WithLabelValues(OutcomeFailed))).To(Equal(2.0))
		Expect(testutil.ToFloat64(metrics.resolutionFailures.WithLabelValues(string(specindex.ReasonUnmappableVerb)))).To(Equal(1.0))
		Expect(testutil.ToFloat64(metrics.malformedLines)).To(Equal(1.0))
	})

	It("releases the index after the batch", func() {
		_, err := processor.Process(context.Background(), Batch{
			Revision: "abc",
			Input:    strings.NewReader(auditLine("1", "list", "/api/v1/nodes")),
			Output:   io.Discard,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(registry.Resident()).To(Equal(0))
	})

	It("preserves order across many events", func() {
		var in strings.Builder
		for i := range 500 {
			in.WriteString(auditLine(fmt.Sprint(i), "get", fmt.Sprintf("/api/v1/namespaces/ns-%d/pods/p", i%7)))
			in.WriteString("\n")
		}

		var out bytes.Buffer
		summary, err := processor.Process(context.Background(), Batch{
			Revision: "abc",
			Input:    strings.NewReader(in.String()),
			Output:   &out,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Resolved).To(Equal(500))

		for i, ev := range readAll(out.Bytes()) {
			Expect(ev.AuditID()).To(Equal(fmt.Sprint(i)))
		}
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := processor.Process(ctx, Batch{
			Revision: "abc",
			Input:    strings.NewReader(auditLine("1", "list", "/api/v1/nodes")),
			Output:   io.Discard,
		})
		Expect(err).To(MatchError(context.Canceled))
	})

	It("fails the batch when the recorder fails", func() {
		_, err := processor.Process(context.Background(), Batch{
			Revision: "abc",
			Input:    strings.NewReader(auditLine("1", "list", "/api/v1/nodes")),
			Output:   io.Discard,
			Recorder: &memoryRecorder{err: errBoom},
		})
		Expect(err).To(MatchError(errBoom))
	})

	It("fails the batch when output cannot be written", func() {
		var in strings.Builder
		for i := range 10000 {
			in.WriteString(auditLine(fmt.Sprint(i), "list", "/api/v1/nodes"))
			in.WriteString("\n")
		}

		_, err := processor.Process(context.Background(), Batch{
			Revision: "abc",
			Input:    strings.NewReader(in.String()),
			Output:   failingWriter{},
		})
		Expect(err).To(HaveOccurred())
	})

	It("returns specification load failures", func() {
		source.err = errBoom
		_, err := processor.Process(context.Background(), Batch{
			Revision: "abc",
			Input:    strings.NewReader(""),
			Output:   io.Discard,
		})
		Expect(err).To(MatchError(errBoom))
	})
})

var _ = Describe("Metrics", func() {
	It("writes a textfile", func() {
		m := NewMetrics()
		m.indexBuilds.Inc()

		path := filepath.Join(GinkgoT().TempDir(), "apisnoop.prom")
		Expect(m.WriteTextfile(path)).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("apisnoop_index_builds_total 1"))
	})
})
