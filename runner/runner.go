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

// Package runner provides a minimal idempotent start/stop lifecycle used by
// long-running components: the event loops and the event loop pool expose
// this same contract so they can be supervised uniformly.
package runner

import "context"

// Runner is the lifecycle contract shared by the reactor's long-running
// components: eventloop.EventLoop and eventloop.Pool implement it.
type Runner interface {
	// Start begins the component's work. Calling Start while already running
	// is a no-op and returns nil.
	Start(ctx context.Context) error

	// Stop halts the component's work. Calling Stop while not running is a
	// no-op and returns nil. Stop must be safe to call concurrently with Start.
	Stop(ctx context.Context) error

	// Restart stops then starts the component.
	Restart(ctx context.Context) error

	// IsRunning reports whether the component is currently started.
	IsRunning() bool
}
