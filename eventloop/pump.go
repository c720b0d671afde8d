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
	"github.com/nabbar/reactor/event"
)

// readChunkSize is 4000 bytes, matching buffer.maxSegmentCap so a pump read
// fills exactly one fresh segment.
const readChunkSize = 4000

// startReadPump launches the goroutine that performs the actual blocking
// Read syscall for a connected Event's socket off the loop goroutine. Each
// chunk it reads is handed back to the loop thread via AddCallback, which
// appends it to the Event's read chain and invokes the handler with
// Readable — preserving the invariant that only the loop goroutine
// touches an Event's buffers or state, while the syscall itself never
// blocks the loop.
func (l *EventLoop) startReadPump(id event.ID, sock event.Socket) {
	go func() {
		for {
			buf := make([]byte, readChunkSize)
			n, err := sock.Read(buf)
			if n > 0 {
				data := buf[:n]
				l.AddCallback(func() {
					ev, ok := l.arena.Get(id)
					if !ok {
						return
					}
					ev.Read.Append(data)
					l.dispatch(id, Readable, 0)
				})
			}
			if err != nil {
				l.logWarn("connection read failed, closing", err)
				l.AddCallback(func() {
					ev, ok := l.arena.Get(id)
					if !ok {
						return
					}
					ev.Transition(event.Error)
					l.dispatch(id, Readable, 0)
				})
				return
			}
		}
	}()
}

// WriteEvent drains ev's write chain to its socket. It is meant to be
// called from the loop goroutine (inside a Handler) after a Transport has
// queued response bytes; a short write leaves the remainder queued for the
// next call, matching spec.md's "write_data() calls writev until EAGAIN or
// drained."
func (l *EventLoop) WriteEvent(ev *event.Event) (int64, error) {
	sock := ev.Socket()
	if sock == nil {
		return 0, nil
	}
	n, err := ev.Write.WriteTo(sock)
	return n, err
}
