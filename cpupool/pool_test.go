/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package cpupool_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/cpupool"
	"github.com/nabbar/reactor/fiber"
)

type inlineScheduler struct {
	mu sync.Mutex
	fn []func()
}

func (s *inlineScheduler) AddCallback(fn func()) {
	s.mu.Lock()
	s.fn = append(s.fn, fn)
	s.mu.Unlock()
	fn()
}

var _ = Describe("Pool", func() {
	It("runs a submitted task and reports it in Stats", func() {
		p, err := cpupool.New(2)
		Expect(err).NotTo(HaveOccurred())
		defer p.Release()

		done := make(chan struct{})
		Expect(p.Submit(func() { close(done) })).To(Succeed())

		Eventually(done, time.Second).Should(BeClosed())
		Eventually(func() int64 { return p.Stats().Succeeded }, time.Second).Should(Equal(int64(1)))
		Expect(p.Stats().Submitted).To(Equal(int64(1)))
	})

	It("exposes Prometheus collectors for submitted/succeeded/failed/running/workers", func() {
		p, err := cpupool.New(4)
		Expect(err).NotTo(HaveOccurred())
		defer p.Release()

		cols := p.PrometheusCollector()
		Expect(cols).To(HaveLen(5))
	})
})

var _ = Describe("Offload", func() {
	It("suspends the calling fiber until the CPU task completes, then delivers its result", func() {
		p, err := cpupool.New(2)
		Expect(err).NotTo(HaveOccurred())
		defer p.Release()

		rt := fiber.New("loop-0")
		sched := &inlineScheduler{}

		var got any
		var gotErr error

		f := rt.Spawn(context.Background(), func(ctx context.Context) {
			ctx = cpupool.WithPool(ctx, p)
			got, gotErr = cpupool.Offload(ctx, rt, sched, func() (any, error) {
				return 42, nil
			})
		})

		Eventually(func() fiber.State { return f.State() }, time.Second).Should(Equal(fiber.Done))
		Expect(gotErr).NotTo(HaveOccurred())
		Expect(got).To(Equal(42))
	})

	It("runs synchronously when called outside a fiber", func() {
		ran := false
		v, err := cpupool.Offload(context.Background(), fiber.New("loop-0"), &inlineScheduler{}, func() (any, error) {
			ran = true
			return "ok", nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(ran).To(BeTrue())
		Expect(v).To(Equal("ok"))
	})
})
