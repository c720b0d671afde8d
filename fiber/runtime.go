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

package fiber

import (
	"context"
	"sync"
	"sync/atomic"
)

type ctxKey struct{}

// WithFiber attaches f to ctx so code deep inside a handler (in
// particular the outbound client and CPU pool) can recover it via
// Current without a global, goroutine-local lookup table. This is the
// Go-native substitute for spec.md §4.4's current() — explicit
// propagation through context.Context rather than implicit thread-local
// state, matching the teacher's own context package's stance that
// ambient state is threaded, not global.
func WithFiber(ctx context.Context, f *Fiber) context.Context {
	return context.WithValue(ctx, ctxKey{}, f)
}

// Current returns the Fiber bound to ctx, and false if ctx was not
// derived from a fiber.Spawn callback (e.g. code running on the loop
// goroutine directly, outside any fiber).
func Current(ctx context.Context) (*Fiber, bool) {
	f, ok := ctx.Value(ctxKey{}).(*Fiber)
	return f, ok
}

// Runtime owns the fibers pinned to one EventLoop. It is the C9 surface
// an EventLoop's dispatcher uses to turn a framed request into a running
// handler body, and the surface the outbound client and CPU pool use to
// suspend/resume that body around an async operation.
type Runtime struct {
	loopName string
	nextID   atomic.Uint64

	mu     sync.Mutex
	fibers map[uint64]*Fiber
}

// New returns a Runtime for the EventLoop named loopName. The name is
// carried on every Fiber it spawns purely for logging/metrics
// correlation; Runtime does not import eventloop to avoid a cycle.
func New(loopName string) *Runtime {
	return &Runtime{
		loopName: loopName,
		fibers:   make(map[uint64]*Fiber),
	}
}

// Spawn creates a Runnable fiber running fn and immediately runs it to
// its first Yield or completion — on the EventLoop implementation this
// module ships, Spawn is always called from within the owning loop's
// Handler (spec.md's "dispatcher... spawns a fiber (C9) running the
// handler"), so folding "enqueue on the runnable queue" and "the loop
// drains the runnable queue" into one synchronous call preserves the
// normative ordering (a fiber runs until its next yield, one at a time)
// without requiring a second queue the loop would have to poll.
//
// fn receives a context carrying the fiber itself (see WithFiber) so it
// can call outbound/CPU-offload helpers that need to Yield.
func (r *Runtime) Spawn(ctx context.Context, fn func(ctx context.Context)) *Fiber {
	f := &Fiber{
		id:       r.nextID.Add(1),
		loopName: r.loopName,
		resumeCh: make(chan resumeMsg),
		backCh:   make(chan backMsg, 1),
	}
	f.state.Store(uint32(Runnable))

	r.mu.Lock()
	r.fibers[f.id] = f
	r.mu.Unlock()

	fctx := WithFiber(ctx, f)

	go func() {
		f.state.Store(uint32(Running))
		fn(fctx)
		f.state.Store(uint32(Done))
		f.backCh <- backMsg{done: true}
	}()

	<-f.backCh
	if f.State() == Done {
		r.remove(f.id)
	}
	return f
}

// Resume marks f Runnable and runs it until its next Yield or
// completion, blocking the caller meanwhile. Per spec.md §4.4 this must
// be invoked from the EventLoop that owns f (directly, or scheduled onto
// it via AddCallback); Runtime does not enforce that itself since it has
// no handle on the loop, matching the "weak reference" design in §9 —
// callers are expected to resolve the bound Event by id before calling
// Resume, so a stale reference never reaches here.
func (r *Runtime) Resume(f *Fiber, cancelled bool) (done bool) {
	if f.State() == Done {
		return true
	}
	f.resumeCh <- resumeMsg{cancelled: cancelled}
	msg := <-f.backCh
	if msg.done {
		r.remove(f.id)
	}
	return msg.done
}

// Lookup resolves id against the runtime's live fiber table.
func (r *Runtime) Lookup(id uint64) (*Fiber, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fibers[id]
	return f, ok
}

// Count returns the number of fibers currently tracked (Runnable,
// Running, or Suspended — never Done, which is removed eagerly).
func (r *Runtime) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fibers)
}

func (r *Runtime) remove(id uint64) {
	r.mu.Lock()
	delete(r.fibers, id)
	r.mu.Unlock()
}
