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

// Package event implements the reactor's per-connection control block (C3):
// the state machine an EventHandler drives in response to readiness and
// timeout callbacks from an EventLoop. Events are addressed by a generational
// id rather than a raw pointer, so a stale reference from a prior loop
// iteration is a recoverable lookup failure instead of a dangling pointer.
package event

// State is one point in the Event lifecycle. Transitions are driven
// exclusively by the owning EventLoop's handler dispatch; nothing outside
// the loop thread mutates an Event's State directly.
type State uint8

const (
	// Init is the state of a freshly created Event, before any I/O has
	// been armed.
	Init State = iota
	// Listen is held by the Event backing an Acceptor's listening socket.
	Listen
	// Connect is held by a client-side Event between dial and the
	// connection becoming writable.
	Connect
	// ToRead means the Event has read interest armed and is waiting for
	// a readability callback.
	ToRead
	// Reading means a readability callback is being serviced; the
	// Transport is consuming bytes but has not yet seen a full frame.
	Reading
	// Readed means the Transport reported a complete inbound frame.
	Readed
	// ToWrite means a response (or request) has been framed and is
	// waiting for writability.
	ToWrite
	// Writing means a writability callback is draining the write buffer.
	Writing
	// Writed means the write buffer fully drained.
	Writed
	// Next means the Event is idle-keepalive: retained, read interest
	// re-armed, awaiting either new data or idle eviction.
	Next
	// Timeout means a deadline fired before the corresponding I/O
	// completed.
	Timeout
	// Error means a connection-fatal or protocol error occurred.
	Error
	// Fail is terminal: the Event is being torn down and its socket
	// closed exactly once.
	Fail
)

// String renders the state name, matching the vocabulary of spec.md §4.3.
func (s State) String() string {
	switch s {
	case Init:
		return "Init"
	case Listen:
		return "Listen"
	case Connect:
		return "Connect"
	case ToRead:
		return "ToRead"
	case Reading:
		return "Reading"
	case Readed:
		return "Readed"
	case ToWrite:
		return "ToWrite"
	case Writing:
		return "Writing"
	case Writed:
		return "Writed"
	case Next:
		return "Next"
	case Timeout:
		return "Timeout"
	case Error:
		return "Error"
	case Fail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is expected other than
// teardown; the bound fiber, if any, is resumed exactly once on reaching
// one of these.
func (s State) Terminal() bool {
	return s == Fail
}

// Role distinguishes a server-accepted Event from one created by the
// outbound client.
type Role uint8

const (
	// RoleServer is a connection accepted by a Listener (C7).
	RoleServer Role = iota
	// RoleClient is a connection dialed by the outbound client (C12).
	RoleClient
)

func (r Role) String() string {
	if r == RoleClient {
		return "client"
	}
	return "server"
}

// DeadlineKind selects which of an Event's three deadlines a timer refers
// to.
type DeadlineKind uint8

const (
	// DeadlineConnect bounds time-to-connect for client Events.
	DeadlineConnect DeadlineKind = iota
	// DeadlineRead bounds time between arming read interest and seeing a
	// complete frame.
	DeadlineRead
	// DeadlineWrite bounds time to drain the write buffer.
	DeadlineWrite
)

func (k DeadlineKind) String() string {
	switch k {
	case DeadlineConnect:
		return "connect"
	case DeadlineRead:
		return "read"
	case DeadlineWrite:
		return "write"
	default:
		return "unknown"
	}
}
