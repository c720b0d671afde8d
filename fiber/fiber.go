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

// Package fiber implements the stackful cooperative coroutine runtime
// (C9): each Fiber is a goroutine paired with a synchronous channel
// handoff, so that — despite Go having no user-space stack-switch
// primitive to call directly — at most one of {the owning loop goroutine,
// a given fiber's goroutine} ever runs at a time. Resume blocks its caller
// until the fiber reaches its next Yield or returns, which is what lets an
// EventLoop treat "run this fiber" as a single synchronous step of its own
// iteration (spec.md §4.4) even though the fiber body lives on its own
// goroutine stack.
package fiber

import (
	"sync/atomic"
)

// State mirrors spec.md §3's fiber lifecycle vocabulary.
type State uint8

const (
	// Runnable means the fiber is enqueued but not currently executing.
	Runnable State = iota
	// Running means the fiber's goroutine currently holds control.
	Running
	// Suspended means the fiber is blocked in Yield, waiting for Resume.
	Suspended
	// Done means the fiber's body has returned; it cannot be resumed again.
	Done
)

func (s State) String() string {
	switch s {
	case Runnable:
		return "runnable"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

type resumeMsg struct {
	cancelled bool
}

type backMsg struct {
	done bool
}

// Fiber is one stackful cooperative task (C9), pinned to the EventLoop
// (identified here only by LoopName, to avoid an import cycle with
// eventloop) that created it via Runtime.Spawn. BoundEvent is the weak
// reference to the event.ID the fiber is currently suspended on, if any;
// no package of this module sets it.
type Fiber struct {
	id       uint64
	loopName string

	state atomic.Uint32

	resumeCh chan resumeMsg
	backCh   chan backMsg

	// BoundEvent is opaque here (any) so fiber does not import event;
	// concrete callers store an event.ID and type-assert it back.
	BoundEvent any
}

// ID returns the fiber's runtime-local identity.
func (f *Fiber) ID() uint64 { return f.id }

// LoopName returns the name of the EventLoop this fiber is pinned to.
func (f *Fiber) LoopName() string { return f.loopName }

// State reports the fiber's current lifecycle state.
func (f *Fiber) State() State { return State(f.state.Load()) }

// Yield suspends the calling goroutine until the owning Runtime calls
// Resume on this fiber again. It returns true if the resumption was
// normal, false if the loop cancelled it (e.g. a bound Event's deadline
// expired). A fiber must suspend only at an explicit Yield call — never
// implicitly — per spec.md §4.4's suspension-point contract.
func (f *Fiber) Yield() bool {
	f.state.Store(uint32(Suspended))
	f.backCh <- backMsg{done: false}
	msg := <-f.resumeCh
	f.state.Store(uint32(Running))
	return !msg.cancelled
}
