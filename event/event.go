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

package event

import (
	"io"
	"time"

	"github.com/nabbar/reactor/buffer"
)

// Socket is the minimum surface an Event needs from C1 to drive reads and
// writes; eventloop and socket provide the concrete implementation. Kept
// narrow here so event does not import socket and create a cycle.
type Socket interface {
	io.ReadWriteCloser
	LocalAddr() string
	RemoteAddr() string
}

// Event is the per-connection control block (C3): socket, buffers,
// transport linkage, the three deadlines, and the current State. An Event
// lives in exactly one Arena at a time and is addressed from the outside by
// its ID, never by a stored pointer that might outlive the slot.
type Event struct {
	id   ID
	role Role

	sock Socket

	Read  buffer.Chain
	Write buffer.Chain

	state State

	deadlines [3]time.Time

	// Transport is the protocol framing state machine bound to this
	// Event (C4). Declared as any so event does not import transport;
	// the concrete type always satisfies transport.Transport.
	Transport any

	// FiberID is a weak reference to the fiber suspended on this Event,
	// if any. Zero means no fiber is bound. Resolved through the fiber
	// runtime's own table, never dereferenced here.
	FiberID uint64

	// SeqID is the correlation id for binary framed protocols (C12).
	SeqID uint32

	// Cancelled is set exactly once, by a timeout transition, before the
	// bound fiber is resumed.
	Cancelled bool
}

// New constructs an Event bound to sock, in state Init, with the given
// role. It must be registered with an Arena (Arena.Insert) before it can be
// addressed by ID.
func New(sock Socket, role Role) *Event {
	return &Event{sock: sock, role: role, state: Init}
}

// ID returns the Event's current arena address. Zero value until Insert.
func (e *Event) ID() ID { return e.id }

// Role reports whether this Event was accepted (server) or dialed (client).
func (e *Event) Role() Role { return e.role }

// Socket returns the bound non-blocking handle.
func (e *Event) Socket() Socket { return e.sock }

// State returns the Event's current lifecycle state.
func (e *Event) State() State { return e.state }

// transitions enumerates the legal next-state sets per spec.md §4.3. A
// transition not present here is a programmer error in the handler, not a
// recoverable runtime condition.
var transitions = map[State]map[State]bool{
	Init:    {Listen: true, Connect: true, ToRead: true, ToWrite: true, Timeout: true, Error: true, Fail: true},
	Listen:  {Fail: true},
	Connect: {ToWrite: true, Timeout: true, Error: true, Fail: true},
	ToRead:  {Reading: true, Timeout: true, Error: true, Fail: true},
	Reading: {Readed: true, Reading: true, Timeout: true, Error: true, Fail: true},
	Readed:  {ToWrite: true, ToRead: true, Fail: true, Error: true},
	ToWrite: {Writing: true, Timeout: true, Error: true, Fail: true},
	Writing: {Writed: true, Writing: true, Timeout: true, Error: true, Fail: true},
	Writed:  {Next: true, ToRead: true, Fail: true, Error: true},
	Next:    {ToRead: true, Timeout: true, Fail: true, Error: true},
	Timeout: {Fail: true},
	Error:   {Fail: true},
	Fail:    {},
}

// CanTransition reports whether moving from the Event's current state to to
// is a legal edge of the state machine in spec.md §4.3.
func (e *Event) CanTransition(to State) bool {
	edges, ok := transitions[e.state]
	if !ok {
		return false
	}
	return edges[to]
}

// Transition moves the Event to state to, returning false without changing
// anything if the edge is not legal. Timeout and Error are always reachable
// from any non-terminal state, matching "any state may jump to Timeout on
// deadline expiry."
func (e *Event) Transition(to State) bool {
	if e.state.Terminal() {
		return false
	}
	if to == Timeout || to == Error || to == Fail {
		e.state = to
		return true
	}
	if !e.CanTransition(to) {
		return false
	}
	e.state = to
	return true
}

// Deadline returns the absolute deadline of kind k, or the zero Time if
// none is armed.
func (e *Event) Deadline(k DeadlineKind) time.Time {
	return e.deadlines[k]
}

// ArmDeadline sets the absolute deadline of kind k. A zero Time clears
// it (deadline "none" per spec.md §8).
func (e *Event) ArmDeadline(k DeadlineKind, at time.Time) {
	e.deadlines[k] = at
}

// ClearDeadline removes the deadline of kind k.
func (e *Event) ClearDeadline(k DeadlineKind) {
	e.deadlines[k] = time.Time{}
}

// Expired reports whether the deadline of kind k is armed and has passed
// as of now.
func (e *Event) Expired(k DeadlineKind, now time.Time) bool {
	d := e.deadlines[k]
	return !d.IsZero() && !d.After(now)
}

// NextDeadline returns the earliest armed deadline across all three kinds,
// and false if none are armed. The loop uses this to bound its poll wait.
func (e *Event) NextDeadline() (time.Time, bool) {
	var (
		best  time.Time
		found bool
	)
	for _, d := range e.deadlines {
		if d.IsZero() {
			continue
		}
		if !found || d.Before(best) {
			best, found = d, true
		}
	}
	return best, found
}

// Close releases the underlying socket exactly once; repeated calls after
// the first are no-ops that return nil.
func (e *Event) Close() error {
	if e.sock == nil {
		return nil
	}
	err := e.sock.Close()
	e.sock = nil
	return err
}
