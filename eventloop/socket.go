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
	"net"
	"sync"

	"github.com/nabbar/reactor/event"
)

// connSocket adapts a net.Conn to event.Socket (C1): a non-blocking stream
// endpoint with peer/local address and exactly-once Close. The reactor
// treats every transport (TCP, Unix, or otherwise) the same way once it is
// wrapped here, matching the teacher's socket package's stance that the
// handler code is protocol-agnostic above this layer.
type connSocket struct {
	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

// newConnSocket wraps conn for use as an Event's Socket.
func newConnSocket(conn net.Conn) *connSocket {
	return &connSocket{conn: conn}
}

func (s *connSocket) Read(p []byte) (int, error) {
	return s.conn.Read(p)
}

func (s *connSocket) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

func (s *connSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func (s *connSocket) LocalAddr() string {
	if a := s.conn.LocalAddr(); a != nil {
		return a.String()
	}
	return ""
}

func (s *connSocket) RemoteAddr() string {
	if a := s.conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return ""
}

// DialConn wraps an already-established outbound net.Conn as a new
// RoleClient Event on l: registers it in the arena and starts its read
// pump, exactly like an accepted connection. Callers (the outbound
// client, C12) are expected to call this only from the loop's own
// exclusive synchronous section — the loop goroutine itself, or a fiber
// it is currently blocked resuming — never from an unrelated goroutine;
// use AddCallback to hop onto the loop first otherwise.
func (l *EventLoop) DialConn(conn net.Conn) (event.ID, *event.Event) {
	sock := newConnSocket(conn)
	ev := event.New(sock, event.RoleClient)
	id := l.RegisterConn(ev)
	return id, ev
}
