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

package dispatch

import (
	"context"

	"github.com/nabbar/reactor/event"
	"github.com/nabbar/reactor/eventloop"
	"github.com/nabbar/reactor/fiber"
	"github.com/nabbar/reactor/transport"
)

// Handle implements eventloop.Handler (C6): it is the single function
// every EventLoop in a protocol server's pool is constructed with
// (eventloop.New(name, dispatcher.Handle)). It reads ev's current state,
// performs the transport work the readiness kind calls for, and notifies
// a bound fiber on terminal transitions — exactly the "handler is
// stateless" contract in spec.md §4.3.
func (d *Dispatcher) Handle(loop *eventloop.EventLoop, id event.ID, ev *event.Event, kind eventloop.Kind, dl event.DeadlineKind) {
	switch kind {
	case eventloop.TimeoutKind:
		d.handleTimeout(loop, id, ev)
		return
	case eventloop.Writable:
		// Writes are drained synchronously from writeResponse/Offload
		// call sites via loop.WriteEvent, not from a separate
		// writable-readiness dispatch; see the eventloop package's
		// Go-native adaptation note. Nothing to do here.
		return
	case eventloop.Readable:
		d.handleReadable(loop, id, ev)
	}
}

func (d *Dispatcher) handleTimeout(loop *eventloop.EventLoop, id event.ID, ev *event.Event) {
	if ev.State().Terminal() {
		return
	}
	d.logWarn("connection timed out, closing", nil)
	ev.Cancelled = true
	ev.Transition(event.Timeout)
	ev.Transition(event.Fail)
	d.finish(loop, id, ev)
}

func (d *Dispatcher) handleReadable(loop *eventloop.EventLoop, id event.ID, ev *event.Event) {
	switch ev.State() {
	case event.ToRead, event.Next:
		ev.Transition(event.Reading)
	case event.Connect:
		ev.Transition(event.ToWrite)
		return
	case event.Reading:
		// Already mid-frame from a previous short read; keep going.
	default:
		return
	}

	tr, ok := ev.Transport.(transport.Transport)
	if !ok {
		d.logWarn("connection has no transport bound, closing", nil)
		ev.Transition(event.Error)
		d.finish(loop, id, ev)
		return
	}

	state, err := tr.ProcessReadData(&ev.Read, func(f transport.Frame) {
		d.onFrame(loop, id, ev, f)
	})
	if err != nil || state == transport.Error {
		d.logWarn("connection framing failed, closing", err)
		ev.Transition(event.Error)
		d.finish(loop, id, ev)
		return
	}

	// One or more complete frames were emitted above (Readed, briefly,
	// per frame); whether more remain buffered or not, a connection
	// that hasn't failed goes back to waiting for the next readiness
	// callback.
	if ev.State() == event.Reading {
		ev.Transition(event.Readed)
		ev.Transition(event.ToRead)
	}
}

func (d *Dispatcher) onFrame(loop *eventloop.EventLoop, id event.ID, ev *event.Event, f transport.Frame) {
	d.metrics.framesIn.Inc()

	if ev.Role() == event.RoleClient {
		if d.replySink != nil {
			d.replySink.HandleFrame(id, ev, f)
		}
		return
	}

	rt := d.runtimeFor(loop.Name())
	baseCtx := fiber.WithRuntime(fiber.WithLoop(context.Background(), loop), rt)

	rt.Spawn(baseCtx, func(ctx context.Context) {
		if self, ok := fiber.Current(ctx); ok {
			ev.FiberID = self.ID()
		}
		resp := d.invoke(ctx, f)
		ev.FiberID = 0
		d.writeResponse(loop, id, ev, f, resp)
	})
}

func (d *Dispatcher) invoke(ctx context.Context, req transport.Frame) (resp transport.Frame) {
	fn, ok := d.registry.Lookup(req.Key)
	if !ok {
		d.metrics.notFound.Inc()
		return d.notFound(req)
	}

	defer func() {
		if r := recover(); r != nil {
			d.metrics.handlerErrors.Inc()
			p := handlerPanic{r}
			d.logError("handler panicked", p)
			resp = d.onError(req, p)
		}
	}()

	out, err := fn(ctx, req)
	if err != nil {
		d.metrics.handlerErrors.Inc()
		d.logError("handler returned error", err)
		return d.onError(req, err)
	}
	return out
}

type handlerPanic struct{ v any }

func (p handlerPanic) Error() string {
	if e, ok := p.v.(error); ok {
		return e.Error()
	}
	return "handler panic"
}

func (d *Dispatcher) writeResponse(loop *eventloop.EventLoop, id event.ID, ev *event.Event, req, resp transport.Frame) {
	ev, ok := loop.Lookup(id)
	if !ok {
		return
	}

	if !ev.Transition(event.ToWrite) {
		return
	}
	ev.Transition(event.Writing)

	tr := ev.Transport.(transport.Transport)
	if err := tr.SendHeader(&ev.Write, resp, len(resp.Payload)); err == nil {
		_ = tr.SendBody(&ev.Write, resp)
	}
	if _, err := loop.WriteEvent(ev); err != nil {
		d.logWarn("connection write failed, closing", err)
		ev.Transition(event.Error)
		d.finish(loop, id, ev)
		return
	}

	ev.Transition(event.Writed)
	d.metrics.framesOut.Inc()

	if resp.Keepalive && tr.Keepalive() {
		ev.Transition(event.Next)
		loop.ScheduleTimeout(ev, event.DeadlineRead, d.readTimeout)
	} else {
		ev.Transition(event.Fail)
		d.finish(loop, id, ev)
	}
}

func (d *Dispatcher) finish(loop *eventloop.EventLoop, id event.ID, ev *event.Event) {
	if ev.Role() == event.RoleClient && d.replySink != nil {
		d.replySink.HandleTerminal(id, ev)
	}
	if f := ev.FiberID; f != 0 {
		d.rtMu.Lock()
		rt, ok := d.runtimes[loop.Name()]
		d.rtMu.Unlock()
		if ok {
			if fb, ok := rt.Lookup(f); ok {
				rt.Resume(fb, true)
			}
		}
	}
	_ = ev.Close()
	loop.Unregister(id)
}
