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
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/event"
	"github.com/nabbar/reactor/eventloop"
)

var _ = Describe("Listener", func() {
	It("registers its synthetic Listen Event on the loop goroutine and accepts connections", func() {
		loop := eventloop.New("listener-t1", func(*eventloop.EventLoop, event.ID, *event.Event, eventloop.Kind, event.DeadlineKind) {})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		Expect(loop.Start(ctx)).To(Succeed())
		Eventually(loop.IsRunning).Should(BeTrue())

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())

		accepted := make(chan event.ID, 1)
		lst := eventloop.Listen(loop, ln, func(l *eventloop.EventLoop, id event.ID, ev *event.Event) {
			accepted <- id
		})
		Expect(lst.Start(ctx)).To(Succeed())

		conn, err := net.Dial("tcp", lst.Addr().String())
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		var gotID event.ID
		Eventually(accepted, 2*time.Second).Should(Receive(&gotID))

		_, ok := loop.Lookup(gotID)
		Expect(ok).To(BeTrue())

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer stopCancel()
		Expect(lst.Stop(stopCtx)).To(Succeed())
		Expect(loop.Stop(stopCtx)).To(Succeed())
	})
})
