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

import "context"

type loopCtxKey struct{}
type runtimeCtxKey struct{}

// WithLoop attaches the owning EventLoop to ctx alongside the fiber
// itself (see WithFiber), so the outbound client (C12) can dial and
// register a new Event on the same loop its calling fiber is pinned to
// without a second, fiber-package-specific handle. Declared as any here
// so fiber does not import eventloop; callers type-assert back to
// *eventloop.EventLoop, exactly as event.Event.Transport is any to avoid
// importing transport.
func WithLoop(ctx context.Context, loop any) context.Context {
	return context.WithValue(ctx, loopCtxKey{}, loop)
}

// CurrentLoop returns the EventLoop bound to ctx, and false if ctx was
// not derived from a dispatcher-spawned fiber.
func CurrentLoop(ctx context.Context) (any, bool) {
	v := ctx.Value(loopCtxKey{})
	return v, v != nil
}

// WithRuntime attaches the Runtime that spawned the current fiber to ctx,
// so the outbound client can stash a waiter's Runtime without importing
// the dispatcher that owns the per-loop Runtime table.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeCtxKey{}, rt)
}

// CurrentRuntime returns the Runtime bound to ctx, and false if absent.
func CurrentRuntime(ctx context.Context) (*Runtime, bool) {
	rt, ok := ctx.Value(runtimeCtxKey{}).(*Runtime)
	return rt, ok
}
