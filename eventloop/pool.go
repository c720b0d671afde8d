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

package eventloop

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Pool is the I/O thread pool (C8): N EventLoops, each the sole owner of
// its own Events, picked round-robin for new connections so load spreads
// evenly across I/O threads.
type Pool struct {
	loops []*EventLoop
	next  uint64
}

// NewPool constructs n EventLoops via newLoop (index i in [0, n)) and
// returns a Pool over them. newLoop is a factory rather than a Handler so
// callers can give each loop a distinct name for metrics/logging.
func NewPool(n int, newLoop func(i int) *EventLoop) *Pool {
	p := &Pool{loops: make([]*EventLoop, n)}
	for i := 0; i < n; i++ {
		p.loops[i] = newLoop(i)
	}
	return p
}

// Pick returns the next EventLoop in round-robin order, and false if the
// pool has no loops. This is the Go-idiomatic answer to "get_event_loop()
// with no loops registered": a sentinel boolean, not a panic, matching the
// decision recorded in the design ledger.
func (p *Pool) Pick() (*EventLoop, bool) {
	if len(p.loops) == 0 {
		return nil, false
	}
	i := atomic.AddUint64(&p.next, 1) - 1
	return p.loops[i%uint64(len(p.loops))], true
}

// Len returns the number of loops in the pool.
func (p *Pool) Len() int {
	return len(p.loops)
}

// Each calls fn for every loop in the pool, in index order.
func (p *Pool) Each(fn func(*EventLoop)) {
	for _, l := range p.loops {
		fn(l)
	}
}

// Start implements runner.Runner across the whole pool: every loop is
// started, and the first startup error (if any) is returned after
// attempting all of them.
func (p *Pool) Start(ctx context.Context) error {
	var firstErr error
	for i, l := range p.loops {
		if err := l.Start(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("eventloop pool: loop %d: %w", i, err)
		}
	}
	return firstErr
}

// Stop stops every loop in the pool, waiting for each in turn.
func (p *Pool) Stop(ctx context.Context) error {
	var firstErr error
	for i, l := range p.loops {
		if err := l.Stop(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("eventloop pool: loop %d: %w", i, err)
		}
	}
	return firstErr
}

// Restart stops and restarts every loop in the pool.
func (p *Pool) Restart(ctx context.Context) error {
	if err := p.Stop(ctx); err != nil {
		return err
	}
	return p.Start(ctx)
}

// IsRunning reports whether every loop in the pool is running.
func (p *Pool) IsRunning() bool {
	for _, l := range p.loops {
		if !l.IsRunning() {
			return false
		}
	}
	return true
}
