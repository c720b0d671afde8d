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

// Package lenprefix implements the reactor's custom length-prefixed
// protocol: a 4-byte big-endian length prefix followed by an opaque
// payload, with no sequence id. One request per connection unless the
// caller explicitly marks frames keepalive.
package lenprefix

import (
	"encoding/binary"
	"fmt"

	"github.com/nabbar/reactor/buffer"
	"github.com/nabbar/reactor/transport"
)

// prefixSize is the width of the length prefix in bytes.
const prefixSize = 4

// MaxFrameSize bounds a single frame's payload to guard against a
// corrupt or hostile length prefix exhausting memory.
const MaxFrameSize = 64 << 20

// Codec implements transport.Transport for the length-prefixed protocol.
// The zero value is ready to use.
type Codec struct {
	keepalive bool
}

// New returns a Codec whose Keepalive() reports keepalive.
func New(keepalive bool) *Codec {
	return &Codec{keepalive: keepalive}
}

// ProcessReadData consumes as many complete length-prefixed frames as read
// currently holds.
func (c *Codec) ProcessReadData(read *buffer.Chain, emit func(transport.Frame)) (transport.IngressState, error) {
	for {
		if read.Len() < prefixSize {
			return transport.OnReading, nil
		}

		head := read.Peek(prefixSize)
		n := binary.BigEndian.Uint32(head)
		if n > MaxFrameSize {
			return transport.Error, fmt.Errorf("lenprefix: frame size %d exceeds limit %d", n, MaxFrameSize)
		}

		total := prefixSize + int(n)
		if read.Len() < total {
			return transport.OnReading, nil
		}

		full := read.Peek(total)
		payload := make([]byte, n)
		copy(payload, full[prefixSize:])
		read.Consume(total)

		emit(transport.Frame{Payload: payload, Keepalive: c.keepalive})
	}
}

// SendHeader queues the 4-byte big-endian length prefix for f.
func (c *Codec) SendHeader(write *buffer.Chain, f transport.Frame, contentLength int) error {
	var prefix [prefixSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(contentLength))
	write.Append(prefix[:])
	return nil
}

// SendBody queues f's payload bytes, which were already sized by the
// SendHeader call that preceded it.
func (c *Codec) SendBody(write *buffer.Chain, f transport.Frame) error {
	write.AppendSegment(f.Payload)
	return nil
}

// Keepalive reports whether another frame may follow on this connection.
func (c *Codec) Keepalive() bool {
	return c.keepalive
}
