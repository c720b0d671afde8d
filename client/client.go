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

// Package client implements the outbound RPC caller (C12): call(peer,
// request) -> reply, semantically blocking but actually suspending the
// calling fiber between "write sent" and "reply received" (spec.md §4.6).
// It shares the EventLoop pool and Dispatcher its calling handlers run on —
// a dialed connection is just another RoleClient Event driven by the same
// Handler, whose Dispatcher is wired with this package's ReplySink instead
// of its request Registry for such Events.
package client

import (
	"context"
	"net"
	"time"

	"github.com/nabbar/reactor/errors"
	"github.com/nabbar/reactor/event"
	"github.com/nabbar/reactor/eventloop"
	"github.com/nabbar/reactor/fiber"
	"github.com/nabbar/reactor/logger"
	"github.com/nabbar/reactor/transport"
)

// TransportFactory builds the Transport a freshly dialed outbound Event is
// framed with. Shaped identically to dispatch.TransportFactory, declared
// again here so client does not import dispatch.
type TransportFactory func() transport.Transport

// Peer is a resolved transport-layer endpoint (spec.md's glossary: "a
// resolved transport-layer endpoint, host + port, optional TLS config").
// TLS dialing is left for a Dialer option; Addr is dialed over TCP.
type Peer struct {
	Addr string
}

// Option configures a Client at construction.
type Option func(*Client)

// WithDialTimeout bounds how long acquiring a fresh connection may take.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

// WithCallTimeout bounds how long a Call waits for a reply after its
// request is fully written, armed as the Event's DeadlineRead.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) { c.callTimeout = d }
}

// WithIdleTTL overrides how long an unused pooled connection is kept
// before the pool's cache evicts it.
func WithIdleTTL(d time.Duration) Option {
	return func(c *Client) { c.idleTTL = d }
}

// WithLogger attaches a structured logger, matching the teacher's
// FuncLog-at-construction convention (httpserver.New, logger.New).
func WithLogger(fn logger.FuncLog) Option {
	return func(c *Client) { c.log = fn }
}

// Client is the outbound RPC caller (C12), shared across every fiber
// making calls from loops in one EventLoop pool.
type Client struct {
	newTransport TransportFactory
	dialTimeout  time.Duration
	callTimeout  time.Duration
	idleTTL      time.Duration

	pool     *connPool
	registry *replyRegistry
	metrics  *Metrics
	log      logger.FuncLog
}

// logWarn emits a warn-level entry for a connection-fatal error (spec.md
// §7: "log at warn"). It is a no-op when WithLogger was not given.
func (c *Client) logWarn(message string, err error) {
	if c.log == nil {
		return
	}
	if lg := c.log(); lg != nil {
		lg.Warning(message, err)
	}
}

// New returns a Client dialing peers over TCP and framing them with
// newTransport. ctx bounds the lifetime of the pool's background idle
// eviction (cache.New's own contract).
func New(ctx context.Context, newTransport TransportFactory, opts ...Option) *Client {
	c := &Client{
		newTransport: newTransport,
		dialTimeout:  5 * time.Second,
		callTimeout:  10 * time.Second,
		idleTTL:      60 * time.Second,
		registry:     newReplyRegistry(),
		metrics:      newMetrics(),
	}
	for _, o := range opts {
		o(c)
	}
	c.registry.log = c.log
	c.pool = newConnPool(ctx, c.idleTTL)
	return c
}

// replySink is the structural shape dispatch.ReplySink expects. Declared
// here only for the doc comment on ReplySink below; Dispatcher's own
// ReplySink interface is what callers actually assign this to.
type replySink interface {
	HandleFrame(id event.ID, ev *event.Event, f transport.Frame)
	HandleTerminal(id event.ID, ev *event.Event)
}

// ReplySink returns c's reply router, satisfying dispatch.ReplySink
// structurally: wire it with dispatch.WithReplySink(c.ReplySink()) when
// constructing the Dispatcher shared by c's EventLoop pool.
func (c *Client) ReplySink() replySink {
	return c.registry
}

// Call implements spec.md §4.6's outbound contract. It must run inside a
// fiber spawned by a Dispatcher on the same EventLoop pool this Client's
// ReplySink is wired into — Call recovers that fiber, its Runtime, and the
// owning EventLoop from ctx (fiber.Current, fiber.CurrentRuntime,
// fiber.CurrentLoop), set by dispatch.onFrame.
func (c *Client) Call(ctx context.Context, peer Peer, req transport.Frame) (transport.Frame, error) {
	fb, ok := fiber.Current(ctx)
	if !ok {
		return transport.Frame{}, ErrNoFiber.Error(nil)
	}
	rt, ok := fiber.CurrentRuntime(ctx)
	if !ok {
		return transport.Frame{}, ErrNoFiber.Error(nil)
	}
	loopAny, ok := fiber.CurrentLoop(ctx)
	if !ok {
		return transport.Frame{}, ErrNoFiber.Error(nil)
	}
	loop, ok := loopAny.(*eventloop.EventLoop)
	if !ok {
		return transport.Frame{}, ErrNoFiber.Error(nil)
	}

	c.metrics.callsInFlight.Inc()
	defer c.metrics.callsInFlight.Dec()

	id, pc, fresh, err := c.acquire(loop, fb, rt, peer)
	if err != nil {
		c.metrics.dialErrors.Inc()
		return transport.Frame{}, err
	}
	if fresh {
		c.metrics.dialsTotal.Inc()
	} else {
		c.metrics.poolHits.Inc()
	}

	ev, ok := loop.Lookup(id)
	if !ok {
		c.logWarn("outbound connection vanished before send, evicting", nil)
		c.pool.evict(loop.Name(), peer.Addr)
		return transport.Frame{}, ErrConnClosed.Error(nil)
	}

	tr, ok := ev.Transport.(transport.Transport)
	if !ok {
		c.logWarn("outbound connection has no transport bound, evicting", nil)
		c.pool.evict(loop.Name(), peer.Addr)
		return transport.Frame{}, ErrDial.Error(nil)
	}

	req.SeqID = pc.nextSeqID()
	req.HasSeqID = true

	c.registry.register(id, &waiter{fb: fb, rt: rt, seqID: req.SeqID})

	if err := c.send(loop, ev, tr, req); err != nil {
		c.logWarn("outbound send failed, tearing down connection", err)
		c.registry.pop(id)
		c.teardown(loop, id, ev, peer)
		c.metrics.callErrors.Inc()
		return transport.Frame{}, err
	}

	loop.ScheduleTimeout(ev, event.DeadlineRead, c.callTimeout)

	fb.Yield()

	w, ok := c.registry.pop(id)
	if ok && w.err == nil {
		c.pool.release(pc)
	} else if ok {
		c.logWarn("outbound call failed", w.err)
		c.metrics.callErrors.Inc()
		return transport.Frame{}, w.err
	} else {
		// Resumed without a registered waiter: HandleFrame/HandleTerminal
		// already popped it and decided the outcome, which Call can no
		// longer see here. This only happens if Call is invoked again for
		// the same id concurrently, which callers must not do.
		c.logWarn("outbound call resumed with no registered waiter", nil)
		c.metrics.callErrors.Inc()
		return transport.Frame{}, ErrConnClosed.Error(nil)
	}

	return w.frame, nil
}

// send frames req onto ev's write chain and drains it, transitioning the
// Event through ToWrite/Writing/Writed/ToRead so the same Dispatcher.Handle
// that serves inbound requests also drives this Event's reply.
func (c *Client) send(loop *eventloop.EventLoop, ev *event.Event, tr transport.Transport, req transport.Frame) error {
	if !ev.Transition(event.ToWrite) {
		return ErrConnClosed.Error(nil)
	}
	ev.Transition(event.Writing)

	if err := tr.SendHeader(&ev.Write, req, len(req.Payload)); err != nil {
		ev.Transition(event.Error)
		return errors.Make(err)
	}
	if err := tr.SendBody(&ev.Write, req); err != nil {
		ev.Transition(event.Error)
		return errors.Make(err)
	}
	if _, err := loop.WriteEvent(ev); err != nil {
		ev.Transition(event.Error)
		return errors.Make(err)
	}

	ev.Transition(event.Writed)
	ev.Transition(event.ToRead)
	return nil
}

// teardown fails and closes ev directly. Used only for a send error Call
// observes before any reply (or terminal notification through ReplySink)
// could possibly arrive — at that point nothing else owns ev's lifecycle.
func (c *Client) teardown(loop *eventloop.EventLoop, id event.ID, ev *event.Event, peer Peer) {
	ev.Transition(event.Fail)
	_ = ev.Close()
	loop.Unregister(id)
	c.pool.evict(loop.Name(), peer.Addr)
}

// acquire returns a ready-to-use connection to peer on loop: a pooled idle
// one if available, otherwise a freshly dialed one, registered as a new
// RoleClient Event on loop. fresh reports which.
func (c *Client) acquire(loop *eventloop.EventLoop, fb *fiber.Fiber, rt *fiber.Runtime, peer Peer) (event.ID, *pooledConn, bool, error) {
	if pc, ok := c.pool.acquire(loop.Name(), peer.Addr); ok {
		return pc.id, pc, false, nil
	}

	conn, err := c.dialAsync(loop, fb, rt, peer.Addr)
	if err != nil {
		c.logWarn("dialing peer "+peer.Addr+" failed", err)
		return event.ID{}, nil, false, ErrDial.Error(err)
	}

	id, ev := loop.DialConn(conn)
	ev.Transport = c.newTransport()
	pc := c.pool.put(loop.Name(), peer.Addr, id)
	return id, pc, true, nil
}

type dialResult struct {
	conn net.Conn
	err  error
}

// dialAsync performs the actual blocking net.DialTimeout off the loop
// goroutine, then hops back onto it via AddCallback before resuming fb —
// mirroring cpupool.Offload's pattern — so a slow or hanging dial never
// stalls every other Event on loop. Safe to call only from within fb's own
// body (the fiber currently executing), matching Offload's contract.
func (c *Client) dialAsync(loop *eventloop.EventLoop, fb *fiber.Fiber, rt *fiber.Runtime, addr string) (net.Conn, error) {
	resCh := make(chan dialResult, 1)

	go func() {
		conn, err := net.DialTimeout("tcp", addr, c.dialTimeout)
		loop.AddCallback(func() {
			resCh <- dialResult{conn: conn, err: err}
			rt.Resume(fb, false)
		})
	}()

	fb.Yield()

	select {
	case r := <-resCh:
		return r.conn, r.err
	default:
		return nil, ErrConnClosed.Error(nil)
	}
}
