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

package eventloop_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/event"
	"github.com/nabbar/reactor/eventloop"
)

var _ = Describe("Pool", func() {
	It("picks loops round-robin", func() {
		noop := func(*eventloop.EventLoop, event.ID, *event.Event, eventloop.Kind, event.DeadlineKind) {}
		p := eventloop.NewPool(3, func(i int) *eventloop.EventLoop {
			return eventloop.New(fmt.Sprintf("loop-%d", i), noop)
		})

		seen := map[*eventloop.EventLoop]int{}
		for i := 0; i < 6; i++ {
			l, ok := p.Pick()
			Expect(ok).To(BeTrue())
			seen[l]++
		}

		Expect(p.Len()).To(Equal(3))
		for _, n := range seen {
			Expect(n).To(Equal(2))
		}
	})

	It("reports no loop available on an empty pool", func() {
		p := eventloop.NewPool(0, func(int) *eventloop.EventLoop { return nil })
		_, ok := p.Pick()
		Expect(ok).To(BeFalse())
	})
})
