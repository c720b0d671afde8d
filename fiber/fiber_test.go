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

package fiber_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/fiber"
)

var _ = Describe("Runtime", func() {
	var rt *fiber.Runtime

	BeforeEach(func() {
		rt = fiber.New("loop-0")
	})

	It("runs a fiber with no yields to completion synchronously", func() {
		ran := false
		f := rt.Spawn(context.Background(), func(ctx context.Context) {
			ran = true
		})
		Expect(ran).To(BeTrue())
		Expect(f.State()).To(Equal(fiber.Done))
		Expect(rt.Count()).To(Equal(0))
	})

	It("suspends at Yield and resumes FIFO on Resume", func() {
		var order []string
		f := rt.Spawn(context.Background(), func(ctx context.Context) {
			order = append(order, "before-yield")
			self, ok := fiber.Current(ctx)
			Expect(ok).To(BeTrue())
			resumed := self.Yield()
			Expect(resumed).To(BeTrue())
			order = append(order, "after-yield")
		})

		Expect(order).To(Equal([]string{"before-yield"}))
		Expect(f.State()).To(Equal(fiber.Suspended))

		done := rt.Resume(f, false)
		Expect(done).To(BeTrue())
		Expect(order).To(Equal([]string{"before-yield", "after-yield"}))
		Expect(f.State()).To(Equal(fiber.Done))
	})

	It("reports cancellation through Yield's return value", func() {
		var cancelled bool
		f := rt.Spawn(context.Background(), func(ctx context.Context) {
			self, _ := fiber.Current(ctx)
			cancelled = !self.Yield()
		})
		rt.Resume(f, true)
		Expect(cancelled).To(BeTrue())
	})

	It("tracks live fiber count while suspended and removes it once done", func() {
		f := rt.Spawn(context.Background(), func(ctx context.Context) {
			self, _ := fiber.Current(ctx)
			self.Yield()
		})
		Expect(rt.Count()).To(Equal(1))
		_, ok := rt.Lookup(f.ID())
		Expect(ok).To(BeTrue())

		rt.Resume(f, false)
		Expect(rt.Count()).To(Equal(0))
		_, ok = rt.Lookup(f.ID())
		Expect(ok).To(BeFalse())
	})

	It("allows several fibers to interleave independently", func() {
		results := make(chan int, 2)
		f1 := rt.Spawn(context.Background(), func(ctx context.Context) {
			self, _ := fiber.Current(ctx)
			self.Yield()
			results <- 1
		})
		f2 := rt.Spawn(context.Background(), func(ctx context.Context) {
			self, _ := fiber.Current(ctx)
			self.Yield()
			results <- 2
		})

		rt.Resume(f2, false)
		rt.Resume(f1, false)

		Eventually(results, time.Second).Should(Receive(Equal(2)))
		Eventually(results, time.Second).Should(Receive(Equal(1)))
	})

	It("resuming an already-done fiber is a harmless no-op", func() {
		f := rt.Spawn(context.Background(), func(ctx context.Context) {})
		Expect(f.State()).To(Equal(fiber.Done))
		Expect(rt.Resume(f, false)).To(BeTrue())
	})
})
