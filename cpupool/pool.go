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

// Package cpupool implements the CPU-bound task offload pool (C10): a
// fixed-size goroutine pool (panjf2000/ants) that fiber bodies hand
// blocking, CPU-heavy work to instead of running it inline on an
// EventLoop goroutine, plus the per-task statistics spec.md's C10
// requires ("reports per-task stats").
package cpupool

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/nabbar/reactor/fiber"
)

// Scheduler is the minimal surface cpupool needs from an EventLoop: a
// thread-safe way to run a function back on the loop goroutine once an
// offloaded task finishes, so the fiber is resumed from the right place
// (spec.md §5: "no locking on the hot path" — the pool's own worker
// goroutines never touch an Event or Fiber directly).
type Scheduler interface {
	AddCallback(fn func())
}

// Stats are the per-task counters spec.md's C10 asks for.
type Stats struct {
	Submitted int64
	Succeeded int64
	Failed    int64
	Running   int64
}

// Pool wraps an ants.Pool as the CPU thread pool (C10).
type Pool struct {
	inner *ants.Pool

	submitted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	running   atomic.Int64
}

// Option configures a Pool at construction.
type Option func(*ants.Options)

// WithAntsLogger installs log as ants' internal diagnostic logger. Pass
// the *log.Logger returned by logger.Logger.GetStdLogger — it already
// satisfies ants.Logger's Printf(format string, args ...any) contract.
func WithAntsLogger(log ants.Logger) Option {
	return func(o *ants.Options) { o.Logger = log }
}

// WithNonblocking makes Submit return ants.ErrPoolOverload instead of
// blocking when every worker is busy and size is capped.
func WithNonblocking(nonblocking bool) Option {
	return func(o *ants.Options) { o.Nonblocking = nonblocking }
}

// New constructs a Pool with size workers (<=0 means ants.DefaultAntsPoolSize).
func New(size int, opts ...Option) (*Pool, error) {
	var o ants.Options
	for _, f := range opts {
		f(&o)
	}
	if size <= 0 {
		size = ants.DefaultAntsPoolSize
	}
	inner, err := ants.NewPool(size, ants.WithOptions(o))
	if err != nil {
		return nil, fmt.Errorf("cpupool: %w", err)
	}
	return &Pool{inner: inner}, nil
}

// Submit enqueues task to run on a pool worker goroutine, tracking it in
// Stats. It does not block the caller beyond ants' own backpressure.
func (p *Pool) Submit(task func()) error {
	p.submitted.Add(1)
	p.running.Add(1)
	err := p.inner.Submit(func() {
		defer p.running.Add(-1)
		task()
		p.succeeded.Add(1)
	})
	if err != nil {
		p.running.Add(-1)
		p.failed.Add(1)
	}
	return err
}

// Stats returns a snapshot of the pool's per-task counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Submitted: p.submitted.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
		Running:   p.running.Load(),
	}
}

// Cap returns the pool's configured worker count.
func (p *Pool) Cap() int { return p.inner.Cap() }

// Running returns the number of workers currently executing a task,
// per ants' own accounting.
func (p *Pool) Running() int { return p.inner.Running() }

// Release shuts the pool down, letting in-flight tasks finish.
func (p *Pool) Release() { p.inner.Release() }

// result carries a CPU-bound task's outcome back across the Yield/Resume
// boundary in Offload.
type result struct {
	val any
	err error
}

// Offload runs task on the CPU pool and suspends the calling fiber until
// it completes, implementing spec.md §4.4's "CPU-offload calls that
// enqueue work on the CPU pool and wait" suspension point. f must be the
// fiber currently executing (fiber.Current(ctx)); sched is the EventLoop
// f is pinned to, used to hop the completion back onto the loop
// goroutine before Resume is called, per spec.md §5's single-writer
// discipline.
func Offload(ctx context.Context, rt *fiber.Runtime, sched Scheduler, task func() (any, error)) (any, error) {
	f, ok := fiber.Current(ctx)
	if !ok {
		// No fiber bound (called directly on a loop or plain goroutine):
		// run synchronously rather than silently deadlocking on a Yield
		// nothing will ever Resume.
		return task()
	}

	p, _ := ctx.Value(poolCtxKey{}).(*Pool)
	if p == nil {
		return task()
	}

	resCh := make(chan result, 1)
	err := p.Submit(func() {
		v, e := task()
		sched.AddCallback(func() {
			resCh <- result{val: v, err: e}
			rt.Resume(f, false)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("cpupool: submit: %w", err)
	}

	f.Yield()

	select {
	case r := <-resCh:
		return r.val, r.err
	default:
		return nil, fmt.Errorf("cpupool: resumed before task result was posted")
	}
}

type poolCtxKey struct{}

// WithPool attaches p to ctx so Offload can find it without every caller
// threading a *Pool argument through handler signatures.
func WithPool(ctx context.Context, p *Pool) context.Context {
	return context.WithValue(ctx, poolCtxKey{}, p)
}
