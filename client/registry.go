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

import (
	"sync"

	"github.com/nabbar/reactor/event"
	"github.com/nabbar/reactor/fiber"
	"github.com/nabbar/reactor/logger"
	"github.com/nabbar/reactor/transport"
)

// waiter is the pending-reply entry spec.md §4.6 step 4 describes:
// keyed by the Event backing the outbound connection, carrying the
// fiber to resume and the Runtime to resume it on. frame/err are
// populated by whichever of HandleFrame/HandleTerminal fires first;
// Call reads them back only after its own Yield returns.
type waiter struct {
	fb    *fiber.Fiber
	rt    *fiber.Runtime
	seqID uint32

	frame transport.Frame
	err   error
}

// replyRegistry is the outbound client's half of the dispatcher/client
// hookup: it implements dispatch.ReplySink so a Dispatcher shared across
// a protocol server's loop pool can route RoleClient Events' inbound
// frames and terminal transitions here instead of into its own request
// Registry, without client importing dispatch.
type replyRegistry struct {
	mu      sync.Mutex
	waiters map[event.ID]*waiter
	log     logger.FuncLog
}

func newReplyRegistry() *replyRegistry {
	return &replyRegistry{waiters: make(map[event.ID]*waiter)}
}

func (r *replyRegistry) logWarn(message string, err error) {
	if r.log == nil {
		return
	}
	if lg := r.log(); lg != nil {
		lg.Warning(message, err)
	}
}

func (r *replyRegistry) register(id event.ID, w *waiter) {
	r.mu.Lock()
	r.waiters[id] = w
	r.mu.Unlock()
}

func (r *replyRegistry) pop(id event.ID) (*waiter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.waiters[id]
	if ok {
		delete(r.waiters, id)
	}
	return w, ok
}

// HandleFrame implements dispatch.ReplySink. It validates the reply's
// sequence id against the waiter's request (spec.md §4.6 step 6) before
// resuming the waiting fiber.
func (r *replyRegistry) HandleFrame(id event.ID, ev *event.Event, f transport.Frame) {
	w, ok := r.pop(id)
	if !ok {
		return
	}
	if f.HasSeqID && f.SeqID != w.seqID {
		w.err = ErrSeqMismatch.Error(nil)
	} else {
		w.frame = f
	}
	w.rt.Resume(w.fb, false)
}

// HandleTerminal implements dispatch.ReplySink. It fires for a
// RoleClient Event reaching Fail without ever producing a frame this
// registry consumed — a dial/read/write failure or an expired deadline
// — and resumes the waiting fiber with a cancellation so Call can
// return a typed failure instead of hanging.
func (r *replyRegistry) HandleTerminal(id event.ID, ev *event.Event) {
	w, ok := r.pop(id)
	if !ok {
		return
	}
	if ev.Cancelled {
		w.err = ErrTimeout.Error(nil)
		r.logWarn("outbound call timed out, closing connection", nil)
	} else {
		w.err = ErrConnClosed.Error(nil)
		r.logWarn("outbound connection closed before reply, failing call", nil)
	}
	w.rt.Resume(w.fb, true)
}
