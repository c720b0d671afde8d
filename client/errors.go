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

package client

import "github.com/nabbar/reactor/errors"

// Typed failures a Call may resolve to (spec.md §4.6 step 6 and §7's
// "fiber-local failures surface as typed results from the outbound
// client"), following the teacher's coded-error convention
// (errors.NewCodeError + CodeError.Error).
var (
	// ErrDial means the outbound connection could not be established.
	ErrDial = errors.NewCodeError(1300)
	// ErrTimeout means the call's read or connect deadline expired
	// before a reply arrived.
	ErrTimeout = errors.NewCodeError(1301)
	// ErrConnClosed means the Event backing the call failed or was
	// closed before a reply arrived, for a reason other than timeout.
	ErrConnClosed = errors.NewCodeError(1302)
	// ErrSeqMismatch means the reply's sequence id did not match the
	// request's, per spec.md §4.6 step 6's "validate the sequence id
	// matches".
	ErrSeqMismatch = errors.NewCodeError(1303)
	// ErrNoPeer means rendezvous selection was asked to choose among
	// zero nodes.
	ErrNoPeer = errors.NewCodeError(1304)
	// ErrNoFiber means Call was invoked from outside a fiber spawned by
	// a Dispatcher on this Client's EventLoop pool, so there is no
	// suspension point to yield/resume on.
	ErrNoFiber = errors.NewCodeError(1305)
)
