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
	"sync"
	"time"

	"github.com/nabbar/reactor/errors"
	"github.com/nabbar/reactor/event"
	"github.com/nabbar/reactor/eventloop"
	"github.com/nabbar/reactor/fiber"
	"github.com/nabbar/reactor/logger"
	"github.com/nabbar/reactor/transport"
)

// ReplySink is how a RoleClient Event's inbound Frames and terminal
// transitions reach the outbound client (C12) instead of the request
// registry. The client package's reply registry, returned by
// Client.ReplySink, implements this; Dispatcher
// holds it as an interface so the two packages don't import each other.
type ReplySink interface {
	HandleFrame(id event.ID, ev *event.Event, f transport.Frame)
	HandleTerminal(id event.ID, ev *event.Event)
}

// TransportFactory builds the Transport a new server-side Event should
// be framed with. One Dispatcher serves exactly one protocol; a process
// hosting several protocol servers (spec.md §1) constructs one
// Dispatcher, Registry and EventLoop pool per protocol.
type TransportFactory func() transport.Transport

// NotFoundFunc builds the protocol-appropriate error response for a key
// with no registered handler (HTTP 404, a Thrift application exception
// frame, ...).
type NotFoundFunc func(req transport.Frame) transport.Frame

// ErrorFunc builds the protocol-appropriate error response for a
// handler that returned an error or panicked (mapped to a 500 /
// internal-error response per spec.md §7).
type ErrorFunc func(req transport.Frame, err error) transport.Frame

// Dispatcher is the request dispatcher (C11). It is constructed once per
// protocol server and handed to eventloop.New as that protocol's
// Handler.
type Dispatcher struct {
	registry    *Registry
	newTransport TransportFactory
	notFound    NotFoundFunc
	onError     ErrorFunc
	readTimeout time.Duration
	log         logger.FuncLog

	// replySink, if set, receives RoleClient Events' frames and
	// terminal transitions instead of the request Registry.
	replySink ReplySink

	rtMu     sync.Mutex
	runtimes map[string]*fiber.Runtime
	metrics  *Metrics
}

// Option configures a Dispatcher at construction.
type Option func(*Dispatcher)

// WithReadTimeout bounds how long a connection may sit in ToRead/Next
// before it is closed as idle (spec.md's idle-keepalive eviction,
// supplemented in SPEC_FULL.md).
func WithReadTimeout(d time.Duration) Option {
	return func(d2 *Dispatcher) { d2.readTimeout = d }
}

// WithNotFound overrides the default NotFoundFunc.
func WithNotFound(fn NotFoundFunc) Option {
	return func(d *Dispatcher) { d.notFound = fn }
}

// WithErrorFunc overrides the default ErrorFunc.
func WithErrorFunc(fn ErrorFunc) Option {
	return func(d *Dispatcher) { d.onError = fn }
}

// WithLogger attaches a structured logger.
func WithLogger(fn logger.FuncLog) Option {
	return func(d *Dispatcher) { d.log = fn }
}

// WithReplySink wires a RoleClient reply router (the outbound client's
// connection registry) into this Dispatcher's Handle.
func WithReplySink(sink ReplySink) Option {
	return func(d *Dispatcher) { d.replySink = sink }
}

// New returns a Dispatcher serving registry's handlers, framing new
// connections with newTransport.
func New(registry *Registry, newTransport TransportFactory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:     registry,
		newTransport: newTransport,
		readTimeout:  30 * time.Second,
		runtimes:     make(map[string]*fiber.Runtime),
		metrics:      newMetrics(),
	}
	for _, o := range opts {
		o(d)
	}
	if d.notFound == nil {
		d.notFound = defaultNotFound
	}
	if d.onError == nil {
		d.onError = defaultOnError
	}
	return d
}

func defaultNotFound(req transport.Frame) transport.Frame {
	return transport.Frame{
		Key:       req.Key,
		Payload:   []byte("not found"),
		SeqID:     req.SeqID,
		HasSeqID:  req.HasSeqID,
		Keepalive: req.Keepalive,
	}
}

func defaultOnError(req transport.Frame, err error) transport.Frame {
	return transport.Frame{
		Key:       req.Key,
		Payload:   []byte(errors.Make(err).Error()),
		SeqID:     req.SeqID,
		HasSeqID:  req.HasSeqID,
		Keepalive: req.Keepalive,
	}
}

// logWarn emits a warn-level entry for a connection-fatal error (spec.md
// §7: "log at warn"). It is a no-op when WithLogger was not given.
func (d *Dispatcher) logWarn(message string, err error) {
	if d.log == nil {
		return
	}
	if lg := d.log(); lg != nil {
		lg.Warning(message, err)
	}
}

// logError emits an error-level entry for a caught handler panic or
// handler-returned error (spec.md §7: "handler exceptions are caught,
// logged, and mapped to a ... error response").
func (d *Dispatcher) logError(message string, err error) {
	if d.log == nil {
		return
	}
	if lg := d.log(); lg != nil {
		lg.Error(message, err)
	}
}

// runtimeFor returns (creating if necessary) the fiber.Runtime pinned to
// loopName. One Runtime per EventLoop, matching spec.md's "a fiber is
// pinned to the EventLoop that created it; it never migrates."
func (d *Dispatcher) runtimeFor(loopName string) *fiber.Runtime {
	d.rtMu.Lock()
	defer d.rtMu.Unlock()

	rt, ok := d.runtimes[loopName]
	if !ok {
		rt = fiber.New(loopName)
		d.runtimes[loopName] = rt
	}
	return rt
}

// OnAccept is the eventloop.AcceptFunc a Listener should be constructed
// with: it binds a fresh Transport to ev, arms the Event's read
// deadline, and transitions it into ToRead so the next readiness
// callback starts framing.
func (d *Dispatcher) OnAccept(loop *eventloop.EventLoop, id event.ID, ev *event.Event) {
	ev.Transport = d.newTransport()
	ev.Transition(event.ToRead)
	loop.ScheduleTimeout(ev, event.DeadlineRead, d.readTimeout)
}
