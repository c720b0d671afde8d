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

// Package dispatch implements the request dispatcher (C11): it binds a
// Transport to each accepted Event, turns complete inbound Frames into
// running fibers, and serializes a handler's response back through the
// same Transport. It is also the single eventloop.Handler every loop in
// the pool is constructed with — RoleServer Events are routed to a
// registered HandlerFunc, RoleClient Events are routed to the outbound
// client's reply sink.
package dispatch

import (
	"context"
	"sync"

	"github.com/nabbar/reactor/transport"
)

// HandlerFunc handles one decoded request Frame and produces the
// response Frame, running inside a fiber (ctx carries it — see
// fiber.Current) so it may call the outbound client or CPU pool as if
// they were blocking.
type HandlerFunc func(ctx context.Context, req transport.Frame) (transport.Frame, error)

// Registry maps a protocol key (HTTP "METHOD path", a Thrift method
// name, a custom opcode rendered as a string) to a HandlerFunc. Stable
// after server start; Lookup is read-only on the hot path, matching
// spec.md §3's "stable after server start" contract.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register binds key to fn. Intended to be called during server setup,
// before any loop starts running; Register itself is safe for
// concurrent use but the dispatcher gives no ordering guarantee between
// a late Register and in-flight Lookups.
func (r *Registry) Register(key string, fn HandlerFunc) {
	r.mu.Lock()
	r.handlers[key] = fn
	r.mu.Unlock()
}

// Lookup resolves key to its HandlerFunc.
func (r *Registry) Lookup(key string) (HandlerFunc, bool) {
	r.mu.RLock()
	fn, ok := r.handlers[key]
	r.mu.RUnlock()
	return fn, ok
}
