// Copyright 2026 The APISnoop Authors
// SPDX-License-Identifier: Apache-2.0

package snoop

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/apisnoop/apisnoop/internal/specindex"
)

var _ = Describe("Registry", func() {
	var (
		source   *fakeSource
		metrics  *Metrics
		registry *Registry
	)

	BeforeEach(func() {
		source = &fakeSource{}
		metrics = NewMetrics()
		registry = NewRegistry(source, metrics, testLogger)
	})

	It("reuses a resident index for the same revision", func() {
		idx1, release1, err := registry.Acquire(context.Background(), "abc")
		Expect(err).NotTo(HaveOccurred())
		idx2, release2, err := registry.Acquire(context.Background(), "abc")
		Expect(err).NotTo(HaveOccurred())

		Expect(idx2).To(BeIdenticalTo(idx1))
		Expect(source.loads.Load()).To(BeEquivalentTo(1))
		Expect(registry.Resident()).To(Equal(1))

		release1()
		Expect(registry.Resident()).To(Equal(1))
		release2()
		Expect(registry.Resident()).To(Equal(0))
	})

	It("keeps one index per revision", func() {
		a, releaseA, err := registry.Acquire(context.Background(), "a")
		Expect(err).NotTo(HaveOccurred())
		defer releaseA()
		b, releaseB, err := registry.Acquire(context.Background(), "b")
		Expect(err).NotTo(HaveOccurred())
		defer releaseB()

		Expect(a).NotTo(BeIdenticalTo(b))
		Expect(registry.Resident()).To(Equal(2))
		Expect(testutil.ToFloat64(metrics.indexBuilds)).To(Equal(2.0))
	})

	It("ignores repeated releases", func() {
		_, release1, err := registry.Acquire(context.Background(), "abc")
		Expect(err).NotTo(HaveOccurred())
		_, release2, err := registry.Acquire(context.Background(), "abc")
		Expect(err).NotTo(HaveOccurred())

		release1()
		release1()
		Expect(registry.Resident()).To(Equal(1))
		release2()
		Expect(registry.Resident()).To(Equal(0))
	})

	It("rebuilds after the last holder releases", func() {
		_, release, err := registry.Acquire(context.Background(), "abc")
		Expect(err).NotTo(HaveOccurred())
		release()

		_, release, err = registry.Acquire(context.Background(), "abc")
		Expect(err).NotTo(HaveOccurred())
		release()
		Expect(source.loads.Load()).To(BeEquivalentTo(2))
	})

	It("shares one build between concurrent callers", func() {
		source.gate = make(chan struct{})

		const callers = 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			indexes  []*specindex.Index
			releases []func()
		)
		for range callers {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				idx, release, err := registry.Acquire(context.Background(), "abc")
				Expect(err).NotTo(HaveOccurred())
				mu.Lock()
				indexes = append(indexes, idx)
				releases = append(releases, release)
				mu.Unlock()
			}()
		}

		Eventually(source.loads.Load).Should(BeEquivalentTo(1))
		close(source.gate)
		wg.Wait()

		Expect(indexes).To(HaveLen(callers))
		for _, idx := range indexes {
			Expect(idx).To(BeIdenticalTo(indexes[0]))
		}
		Expect(registry.Resident()).To(Equal(1))
		for _, release := range releases {
			release()
		}
		Expect(registry.Resident()).To(Equal(0))
	})

	It("returns load failures", func() {
		source.err = errBoom

		_, _, err := registry.Acquire(context.Background(), "abc")
		Expect(err).To(MatchError(errBoom))
		Expect(registry.Resident()).To(Equal(0))
	})
})
