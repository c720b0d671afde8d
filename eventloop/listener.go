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
	"net"

	"github.com/nabbar/reactor/event"
)

// AcceptFunc is called on the owning loop's goroutine for every accepted
// connection, with the new Event already registered and its read pump
// running. Typically a dispatcher binds a Transport to ev here.
type AcceptFunc func(loop *EventLoop, id event.ID, ev *event.Event)

// Listener is the Acceptor (C7): a listening socket lifecycle that
// produces new server-side Events on the EventLoop it is bound to. The
// actual accept(2) call happens on its own goroutine (Go's runtime
// poller already makes net.Listener.Accept non-blocking under the hood);
// each accepted connection is handed to the owning loop via AddCallback so
// registration happens on the loop goroutine like everything else.
type Listener struct {
	loop    *EventLoop
	ln      net.Listener
	onAccept AcceptFunc
	ev       *event.Event
	id       event.ID

	stop chan struct{}
	done chan struct{}
}

// Listen binds ln to loop: every accepted connection becomes a new
// RoleServer Event registered on loop, then handed to onAccept. loop must
// already be running (Start called) before Listen is: the synthetic Listen
// Event is registered via AddCallback like every other cross-goroutine
// submission into the loop, and Listen blocks until that registration has
// actually run on the loop goroutine.
func Listen(loop *EventLoop, ln net.Listener, onAccept AcceptFunc) *Listener {
	l := &Listener{
		loop:     loop,
		ln:       ln,
		onAccept: onAccept,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	l.ev = event.New(nil, event.RoleServer)
	l.ev.Transition(event.Listen)

	registered := make(chan struct{})
	loop.AddCallback(func() {
		l.id = loop.Register(l.ev)
		close(registered)
	})
	<-registered

	return l
}

// Start launches the accept loop goroutine.
func (l *Listener) Start(ctx context.Context) error {
	go l.run(ctx)
	return nil
}

// Stop closes the listening socket, ending the accept loop, and waits for
// it to exit or ctx to expire.
func (l *Listener) Stop(ctx context.Context) error {
	select {
	case <-l.stop:
	default:
		close(l.stop)
	}
	_ = l.ln.Close()
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Addr returns the bound listen address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.stop:
				return
			case <-ctx.Done():
				return
			default:
			}
			l.loop.logWarn("accept failed, stopping listener", err)
			return
		}

		sock := newConnSocket(conn)
		ev := event.New(sock, event.RoleServer)

		l.loop.AddCallback(func() {
			id := l.loop.RegisterConn(ev)
			l.onAccept(l.loop, id, ev)
		})
	}
}
