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

// Package transport defines the protocol framing contract (C4) shared by
// the HTTP/1.x, binary Thrift-like, and length-prefixed codecs in its
// subpackages. A Transport is a two-sided state machine bound to one
// event.Event: it turns bytes in the Event's read chain into complete
// Frames, and turns outbound Frames into bytes queued on the write chain.
package transport

import "github.com/nabbar/reactor/buffer"

// IngressState is the Transport's own parsing state, distinct from but
// driven alongside the owning Event's State (event.State).
type IngressState uint8

const (
	// Init means no bytes of the next frame have been seen yet.
	Init IngressState = iota
	// OnReading means a partial frame is buffered; more bytes are
	// needed before a complete Frame can be produced.
	OnReading
	// Finish means the most recent ProcessReadData call produced a
	// complete Frame.
	Finish
	// Error means the byte stream could not be parsed as this protocol;
	// the Transport (and its Event) are done.
	Error
)

// Frame is one complete inbound or outbound message as seen by the
// dispatcher: an opaque protocol-specific key used for handler lookup, the
// payload bytes, an optional correlation SeqID (binary protocols), and
// whether the transport can keep the connection open for another Frame.
type Frame struct {
	Key       string
	Payload   []byte
	SeqID     uint32
	HasSeqID  bool
	Keepalive bool

	// Meta carries protocol-specific metadata the payload alone doesn't:
	// httpframe stores its parsed *httpframe.Message here so a handler
	// can see method, URL, and headers without re-parsing the payload.
	Meta any
}

// Transport is the contract every framing codec satisfies. ProcessReadData
// consumes as many complete frames as the read chain currently holds,
// calling each through emit in order; it must leave any trailing partial
// frame in the chain unconsumed and return with state OnReading. SendHeader
// and SendBody queue an outbound Frame's wire representation onto the write
// chain.
type Transport interface {
	// ProcessReadData parses read, calling emit once per complete frame
	// and consuming exactly the bytes belonging to frames it emits. It
	// returns the resulting IngressState.
	ProcessReadData(read *buffer.Chain, emit func(Frame)) (IngressState, error)

	// SendHeader queues the protocol-specific header/prefix for an
	// outbound Frame whose body is contentLength bytes, onto write.
	SendHeader(write *buffer.Chain, f Frame, contentLength int) error

	// SendBody queues f's payload bytes onto write, after SendHeader.
	SendBody(write *buffer.Chain, f Frame) error

	// Keepalive reports whether the connection may serve another frame
	// after the most recently emitted one, per the protocol's own rules.
	Keepalive() bool
}
