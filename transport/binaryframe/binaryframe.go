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

// Package binaryframe implements the reactor's binary framed Thrift-like
// protocol: a 4-byte big-endian length prefix followed by a 4-byte
// big-endian sequence id and an opaque payload, used by the outbound
// client (C12) to correlate replies with requests.
package binaryframe

import (
	"encoding/binary"
	"fmt"

	"github.com/nabbar/reactor/buffer"
	"github.com/nabbar/reactor/transport"
)

const (
	lengthSize = 4
	seqSize    = 4
	headerSize = lengthSize + seqSize
)

// MaxFrameSize bounds a single frame's payload.
const MaxFrameSize = 64 << 20

// Codec implements transport.Transport for the binary framed protocol.
type Codec struct{}

// New returns a ready-to-use Codec.
func New() *Codec { return &Codec{} }

// ProcessReadData consumes as many complete frames as read currently
// holds, emitting each with its sequence id.
func (c *Codec) ProcessReadData(read *buffer.Chain, emit func(transport.Frame)) (transport.IngressState, error) {
	for {
		if read.Len() < headerSize {
			return transport.OnReading, nil
		}

		head := read.Peek(headerSize)
		n := binary.BigEndian.Uint32(head[:lengthSize])
		if n > MaxFrameSize {
			return transport.Error, fmt.Errorf("binaryframe: frame size %d exceeds limit %d", n, MaxFrameSize)
		}
		seq := binary.BigEndian.Uint32(head[lengthSize:headerSize])

		total := headerSize + int(n)
		if read.Len() < total {
			return transport.OnReading, nil
		}

		full := read.Peek(total)
		payload := make([]byte, n)
		copy(payload, full[headerSize:])
		read.Consume(total)

		emit(transport.Frame{Payload: payload, SeqID: seq, HasSeqID: true, Keepalive: true})
	}
}

// SendHeader queues the length prefix and f's sequence id.
func (c *Codec) SendHeader(write *buffer.Chain, f transport.Frame, contentLength int) error {
	var head [headerSize]byte
	binary.BigEndian.PutUint32(head[:lengthSize], uint32(contentLength))
	binary.BigEndian.PutUint32(head[lengthSize:], f.SeqID)
	write.Append(head[:])
	return nil
}

// SendBody queues f's payload.
func (c *Codec) SendBody(write *buffer.Chain, f transport.Frame) error {
	write.AppendSegment(f.Payload)
	return nil
}

// Keepalive is always true: sequence ids let several in-flight requests
// share one connection.
func (c *Codec) Keepalive() bool { return true }
