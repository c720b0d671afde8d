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
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/event"
	"github.com/nabbar/reactor/eventloop"
)

type fakeSocket struct{ closed bool }

func (f *fakeSocket) Read([]byte) (int, error)  { return 0, errors.New("eof") }
func (f *fakeSocket) Write([]byte) (int, error) { return 0, errors.New("eof") }
func (f *fakeSocket) Close() error              { f.closed = true; return nil }
func (f *fakeSocket) LocalAddr() string         { return "" }
func (f *fakeSocket) RemoteAddr() string        { return "" }

var _ = Describe("EventLoop", func() {
	It("runs a queued callback on its next iteration", func() {
		loop := eventloop.New("t1", func(*eventloop.EventLoop, event.ID, *event.Event, eventloop.Kind, event.DeadlineKind) {})

		done := make(chan struct{})
		loop.AddCallback(func() { close(done) })

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		loop.RunOnce(ctx)

		Eventually(done).Should(BeClosed())
	})

	It("dispatches a timeout to the handler once the deadline passes", func() {
		var gotKind eventloop.Kind
		var gotDeadline event.DeadlineKind
		calls := 0

		loop := eventloop.New("t2", func(l *eventloop.EventLoop, id event.ID, ev *event.Event, kind eventloop.Kind, dl event.DeadlineKind) {
			calls++
			gotKind = kind
			gotDeadline = dl
		})

		ev := event.New(&fakeSocket{}, event.RoleServer)
		ev.ArmDeadline(event.DeadlineRead, time.Now().Add(-time.Millisecond))
		loop.Register(ev)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		loop.RunOnce(ctx)

		Expect(calls).To(Equal(1))
		Expect(gotKind).To(Equal(eventloop.TimeoutKind))
		Expect(gotDeadline).To(Equal(event.DeadlineRead))
	})

	It("resolves a registered Event back to itself via Lookup", func() {
		loop := eventloop.New("t3", func(*eventloop.EventLoop, event.ID, *event.Event, eventloop.Kind, event.DeadlineKind) {})

		ev := event.New(&fakeSocket{}, event.RoleServer)
		id := loop.Register(ev)

		got, ok := loop.Lookup(id)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(ev))

		loop.Unregister(id)
		_, ok = loop.Lookup(id)
		Expect(ok).To(BeFalse())
	})

	It("bounds the poll wait to the earliest armed deadline", func() {
		loop := eventloop.New("t4", func(*eventloop.EventLoop, event.ID, *event.Event, eventloop.Kind, event.DeadlineKind) {},
			eventloop.WithMaxPollWait(time.Hour))

		ev := event.New(&fakeSocket{}, event.RoleServer)
		ev.ArmDeadline(event.DeadlineWrite, time.Now().Add(10*time.Millisecond))
		loop.Register(ev)

		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		loop.RunOnce(ctx)

		Expect(time.Since(start)).To(BeNumerically("<", time.Second))
	})
})

var _ = Describe("runner.Runner lifecycle", func() {
	It("starts and stops cleanly", func() {
		loop := eventloop.New("t5", func(*eventloop.EventLoop, event.ID, *event.Event, eventloop.Kind, event.DeadlineKind) {})

		ctx := context.Background()
		Expect(loop.Start(ctx)).To(Succeed())
		Eventually(loop.IsRunning).Should(BeTrue())

		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		Expect(loop.Stop(stopCtx)).To(Succeed())
		Expect(loop.IsRunning()).To(BeFalse())
	})
})
