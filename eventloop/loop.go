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

// Package eventloop implements the reactor core (C5, C6, C7, C8): a
// single-threaded event loop that owns an arena of Events, a cross-thread
// callback queue, and per-Event deadlines, plus the listener (Acceptor) and
// multi-loop pool built on top of it. Only the loop's own goroutine ever
// touches an Event's state; everything else communicates through
// AddCallback or the readiness channel.
package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/nabbar/reactor/event"
	"github.com/nabbar/reactor/logger"
)

// Kind identifies why the handler is being invoked for an Event.
type Kind uint8

const (
	// Readable means the socket has data available (or, for a Listen
	// Event, a pending connection).
	Readable Kind = iota
	// Writable means the socket can accept more bytes without blocking.
	Writable
	// TimeoutKind means one of the Event's deadlines has expired.
	TimeoutKind
)

func (k Kind) String() string {
	switch k {
	case Readable:
		return "readable"
	case Writable:
		return "writable"
	case TimeoutKind:
		return "timeout"
	default:
		return "unknown"
	}
}

// Handler is invoked on the loop goroutine once per readiness or timeout
// callback for ev. Handlers may Register, Modify (via ev.Transition/
// ArmDeadline), or Unregister Events; those edits are only visible to the
// arena from the next iteration onward, since the handler itself runs
// between arena reads.
type Handler func(loop *EventLoop, id event.ID, ev *event.Event, kind Kind, deadline event.DeadlineKind)

type readyEvt struct {
	id       event.ID
	kind     Kind
	deadline event.DeadlineKind
}

// defaultMaxPollWait bounds how long a single iteration's poll step can
// block even with no armed deadlines, so a Stop or AddCallback is never
// starved for long.
const defaultMaxPollWait = 1 * time.Second

// defaultCallbackBatch bounds how many queued callbacks one iteration
// drains before moving on to polling, so a callback storm cannot starve
// I/O indefinitely.
const defaultCallbackBatch = 256

// EventLoop is a single-threaded reactor (C5): it owns an Arena of Events,
// accepts thread-safe callback and readiness submissions, and drives
// registered Events through their EventHandler (C6) on deadline expiry or
// external readiness notification.
type EventLoop struct {
	name    string
	handler Handler
	log     logger.FuncLog

	arena *event.Arena

	mu        sync.Mutex
	callbacks []func()
	wake      chan struct{}

	ready chan readyEvt

	maxPollWait time.Duration

	stopped chan struct{}
	done    chan struct{}

	metrics *Metrics
}

// Option configures an EventLoop at construction.
type Option func(*EventLoop)

// WithMaxPollWait overrides the default clamp on how long one iteration's
// poll step may block.
func WithMaxPollWait(d time.Duration) Option {
	return func(l *EventLoop) { l.maxPollWait = d }
}

// WithLogger attaches a structured logger, matching the teacher's
// FuncLog-at-construction convention (httpserver.New, logger.New).
func WithLogger(fn logger.FuncLog) Option {
	return func(l *EventLoop) { l.log = fn }
}

// New returns an EventLoop that dispatches readiness and timeout callbacks
// to handler. The loop does not start running until Start (runner.Runner)
// or RunForever is called.
func New(name string, handler Handler, opts ...Option) *EventLoop {
	l := &EventLoop{
		name:        name,
		handler:     handler,
		arena:       event.NewArena(),
		wake:        make(chan struct{}, 1),
		ready:       make(chan readyEvt, 1024),
		maxPollWait: defaultMaxPollWait,
		stopped:     make(chan struct{}),
		done:        make(chan struct{}),
		metrics:     newMetrics(name),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// logWarn emits a warn-level entry tagged with the loop's name when a
// logger is attached (spec.md §7: connection-fatal errors "log at warn").
// It is a no-op when no WithLogger option was given, matching the
// teacher's FuncLog-may-be-nil convention.
func (l *EventLoop) logWarn(message string, err error) {
	if l.log == nil {
		return
	}
	if fn := l.log; fn != nil {
		if lg := fn(); lg != nil {
			lg.Warning(message+" (loop="+l.name+")", err)
		}
	}
}

// Name returns the loop's construction-time identifier, used to key
// per-loop resources (a fiber.Runtime, log fields, metrics labels) that
// must not migrate with an Event between loops.
func (l *EventLoop) Name() string { return l.name }

// Register inserts ev into the loop's arena and returns its address.
// Safe to call only from the loop goroutine (typically from within a
// Handler, e.g. an Acceptor accepting a new connection).
func (l *EventLoop) Register(ev *event.Event) event.ID {
	id := l.arena.Insert(ev)
	l.metrics.eventsRegistered.Inc()
	return id
}

// RegisterConn inserts ev into the arena and launches its read pump, so
// subsequent bytes from ev's socket arrive as Readable dispatches. Use this
// for every connected (non-Listen) Event; use Register directly only for
// the synthetic Event a Listener uses to represent its own Listen state.
func (l *EventLoop) RegisterConn(ev *event.Event) event.ID {
	id := l.Register(ev)
	l.startReadPump(id, ev.Socket())
	return id
}

// Unregister removes id from the arena. Safe to call only from the loop
// goroutine.
func (l *EventLoop) Unregister(id event.ID) {
	l.arena.Remove(id)
	l.metrics.eventsUnregistered.Inc()
}

// Lookup resolves id against the arena, failing cleanly if the slot has
// been recycled since id was issued.
func (l *EventLoop) Lookup(id event.ID) (*event.Event, bool) {
	return l.arena.Get(id)
}

// AddCallback enqueues fn to run on the loop goroutine at the start of its
// next iteration. Safe to call from any goroutine; this is the loop's
// cross-thread submission point (spec.md §4.4 add_callback).
func (l *EventLoop) AddCallback(fn func()) {
	l.mu.Lock()
	l.callbacks = append(l.callbacks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// notifyReady is a cross-thread readiness submission point onto the ready
// channel; the read pump and the Listener's accept loop do not call it, they
// submit through AddCallback. It never blocks: when the ready channel is
// full the notification is dropped.
func (l *EventLoop) notifyReady(id event.ID, kind Kind) {
	select {
	case l.ready <- readyEvt{id: id, kind: kind}:
	default:
	}
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// ScheduleTimeout arms one of ev's three deadlines, duration d from now. A
// zero Duration clears the deadline instead (spec.md §8: "deadline 0 means
// none").
func (l *EventLoop) ScheduleTimeout(ev *event.Event, kind event.DeadlineKind, d time.Duration) {
	if d <= 0 {
		ev.ClearDeadline(kind)
		return
	}
	ev.ArmDeadline(kind, time.Now().Add(d))
}

// Start implements runner.Runner: it launches the loop goroutine and
// returns immediately.
func (l *EventLoop) Start(ctx context.Context) error {
	go l.run(ctx)
	return nil
}

// Stop signals the loop to finish its current iteration and exit, then
// waits for it to do so or for ctx to expire.
func (l *EventLoop) Stop(ctx context.Context) error {
	select {
	case <-l.stopped:
	default:
		close(l.stopped)
	}
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Restart implements runner.Runner by recreating the stop signal and
// relaunching the loop goroutine.
func (l *EventLoop) Restart(ctx context.Context) error {
	if err := l.Stop(ctx); err != nil {
		return err
	}
	l.stopped = make(chan struct{})
	l.done = make(chan struct{})
	return l.Start(ctx)
}

// IsRunning reports whether the loop goroutine is still active.
func (l *EventLoop) IsRunning() bool {
	select {
	case <-l.done:
		return false
	default:
		select {
		case <-l.stopped:
			return false
		default:
			return true
		}
	}
}

// RunForever drives iterations until Stop is called or ctx is cancelled.
// It blocks the calling goroutine; Start runs this in a new goroutine
// instead.
func (l *EventLoop) RunForever(ctx context.Context) {
	l.run(ctx)
}

func (l *EventLoop) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.stopped:
			return
		default:
		}
		l.RunOnce(ctx)
	}
}

// RunOnce executes exactly one loop iteration: drain callbacks, poll for
// readiness bounded by the next deadline, dispatch ready Events, expire
// passed deadlines. Exposed for tests and for callers embedding the loop
// in their own scheduler.
func (l *EventLoop) RunOnce(ctx context.Context) {
	l.drainCallbacks()

	wait := l.nextWait()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-l.wake:
	case <-timer.C:
	}

	l.drainReady()
	l.expireDeadlines()
}

func (l *EventLoop) drainCallbacks() {
	l.mu.Lock()
	batch := l.callbacks
	if len(batch) > defaultCallbackBatch {
		l.callbacks = append([]func(){}, batch[defaultCallbackBatch:]...)
		batch = batch[:defaultCallbackBatch]
	} else {
		l.callbacks = nil
	}
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
}

func (l *EventLoop) drainReady() {
	for {
		select {
		case r := <-l.ready:
			l.dispatch(r.id, r.kind, 0)
		default:
			return
		}
	}
}

func (l *EventLoop) dispatch(id event.ID, kind Kind, dl event.DeadlineKind) {
	ev, ok := l.arena.Get(id)
	if !ok {
		return
	}
	l.metrics.dispatched.Inc()
	l.handler(l, id, ev, kind, dl)
}

func (l *EventLoop) expireDeadlines() {
	now := time.Now()
	var expired []struct {
		id event.ID
		k  event.DeadlineKind
	}

	l.arena.Range(func(id event.ID, ev *event.Event) bool {
		for _, k := range []event.DeadlineKind{event.DeadlineConnect, event.DeadlineRead, event.DeadlineWrite} {
			if ev.Expired(k, now) {
				expired = append(expired, struct {
					id event.ID
					k  event.DeadlineKind
				}{id, k})
			}
		}
		return true
	})

	for _, e := range expired {
		l.metrics.timeouts.Inc()
		l.dispatch(e.id, TimeoutKind, e.k)
	}
}

func (l *EventLoop) nextWait() time.Duration {
	best := l.maxPollWait
	now := time.Now()

	l.arena.Range(func(_ event.ID, ev *event.Event) bool {
		d, ok := ev.NextDeadline()
		if !ok {
			return true
		}
		until := d.Sub(now)
		if until < 0 {
			until = 0
		}
		if until < best {
			best = until
		}
		return true
	})

	if best < 0 {
		best = 0
	}
	return best
}
