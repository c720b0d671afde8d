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

package httpframe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nabbar/reactor/buffer"
	"github.com/nabbar/reactor/transport"
	"github.com/nabbar/reactor/transport/header"
)

// Side selects whether a Codec parses request-lines (server, reading
// inbound requests) or status-lines (client, reading inbound responses).
type Side uint8

const (
	// Server parses request-lines on read and writes status-lines.
	Server Side = iota
	// Client parses status-lines on read and writes request-lines.
	Client
)

// Codec implements transport.Transport for HTTP/1.x. One Codec is bound to
// one Event and accumulates partial-body state across ProcessReadData
// calls so a frame split across several reads is parsed once its bytes are
// all available.
type Codec struct {
	side Side

	keepalive bool

	pendingBody   bool
	pendingMsg    *Message
	pendingChunk  bool
	bodyRemaining int // for Content-Length bodies; -1 once switched to chunked bookkeeping
}

// New returns a Codec for the given side. keepalive is the connection's
// initial default (HTTP/1.1 implies keepalive unless overridden by the
// Connection header on a parsed message).
func New(side Side, keepalive bool) *Codec {
	return &Codec{side: side, keepalive: keepalive}
}

// Keepalive reports whether another frame may follow on this connection,
// reflecting the most recently parsed message's Connection header.
func (c *Codec) Keepalive() bool { return c.keepalive }

// ProcessReadData parses as many complete HTTP messages as read currently
// holds.
func (c *Codec) ProcessReadData(read *buffer.Chain, emit func(transport.Frame)) (transport.IngressState, error) {
	for {
		if c.pendingBody {
			done, err := c.continueBody(read)
			if err != nil {
				return transport.Error, err
			}
			if !done {
				return transport.OnReading, nil
			}
			c.emitPending(emit)
			continue
		}

		idx := read.Index('\n')
		if idx < 0 {
			return transport.OnReading, nil
		}

		// Need the full header block: find the blank-line terminator
		// "\r\n\r\n" across the buffered bytes.
		headEnd := findHeaderEnd(read)
		if headEnd < 0 {
			return transport.OnReading, nil
		}

		raw := read.Peek(headEnd + 4)
		block := string(raw)
		read.Consume(headEnd + 4)

		msg, err := c.parseHead(block)
		if err != nil {
			return transport.Error, err
		}

		c.applyConnectionHeader(msg)

		if cl, ok := contentLength(msg.Headers); ok {
			c.pendingMsg = msg
			c.bodyRemaining = cl
			c.pendingBody = cl > 0
			if cl == 0 {
				c.emitPending(emit)
				continue
			}
			done, err := c.continueBody(read)
			if err != nil {
				return transport.Error, err
			}
			if !done {
				return transport.OnReading, nil
			}
			c.emitPending(emit)
			continue
		}

		if isChunked(msg.Headers) {
			c.pendingMsg = msg
			c.pendingChunk = true
			c.pendingBody = true
			done, err := c.continueChunked(read)
			if err != nil {
				return transport.Error, err
			}
			if !done {
				return transport.OnReading, nil
			}
			c.emitPending(emit)
			continue
		}

		// No body.
		c.pendingMsg = msg
		c.emitPending(emit)
	}
}

func (c *Codec) emitPending(emit func(transport.Frame)) {
	msg := c.pendingMsg
	c.pendingMsg = nil
	c.pendingBody = false
	c.pendingChunk = false
	c.bodyRemaining = 0

	key := msg.Key()
	if c.side == Client {
		key = fmt.Sprintf("%d", msg.Status)
	}

	emit(transport.Frame{
		Key:       key,
		Payload:   msg.Body,
		Keepalive: c.keepalive,
		Meta:      msg,
	})
}

func (c *Codec) continueBody(read *buffer.Chain) (bool, error) {
	if c.pendingChunk {
		return c.continueChunked(read)
	}
	if read.Len() < c.bodyRemaining {
		return false, nil
	}
	body := read.Peek(c.bodyRemaining)
	c.pendingMsg.Body = append([]byte(nil), body...)
	read.Consume(c.bodyRemaining)
	return true, nil
}

// continueChunked attempts to fully decode a chunked body from the buffered
// bytes. It is simplified to require the complete chunked body (including
// the terminating zero-length chunk) to already be buffered; a partial
// chunked stream defers to the next readiness callback.
func (c *Codec) continueChunked(read *buffer.Chain) (bool, error) {
	read.Coalesce()
	data := read.Bytes()

	var body []byte
	pos := 0
	for {
		nl := indexCRLF(data[pos:])
		if nl < 0 {
			return false, nil
		}
		sizeLine := string(data[pos : pos+nl])
		sizeLine = strings.TrimSpace(strings.SplitN(sizeLine, ";", 2)[0])
		size, err := strconv.ParseInt(sizeLine, 16, 64)
		if err != nil {
			return false, fmt.Errorf("httpframe: bad chunk size %q: %w", sizeLine, err)
		}
		pos += nl + 2

		if size == 0 {
			// trailer section, terminated by a blank line.
			end := indexCRLF(data[pos:])
			if end < 0 {
				return false, nil
			}
			pos += end + 2
			break
		}

		if pos+int(size)+2 > len(data) {
			return false, nil
		}
		body = append(body, data[pos:pos+int(size)]...)
		pos += int(size) + 2
	}

	c.pendingMsg.Body = body
	read.Consume(pos)
	return true, nil
}

func indexCRLF(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' {
			return i
		}
	}
	return -1
}

func findHeaderEnd(read *buffer.Chain) int {
	read.Coalesce()
	data := read.Bytes()
	for i := 0; i+3 < len(data); i++ {
		if data[i] == '\r' && data[i+1] == '\n' && data[i+2] == '\r' && data[i+3] == '\n' {
			return i
		}
	}
	return -1
}

func (c *Codec) parseHead(block string) (*Message, error) {
	lines := strings.SplitN(block, "\r\n", 2)
	startLine := lines[0]
	var headerBlock string
	if len(lines) > 1 {
		headerBlock = strings.TrimSuffix(lines[1], "\r\n\r\n")
	}

	hdrs, err := header.Parse(headerBlock)
	if err != nil {
		return nil, err
	}

	if c.side == Server {
		parts := strings.SplitN(startLine, " ", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("httpframe: malformed request line %q", startLine)
		}
		return &Message{Method: parts[0], URL: parts[1], Proto: parts[2], Headers: hdrs}, nil
	}

	parts := strings.SplitN(startLine, " ", 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("httpframe: malformed status line %q", startLine)
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("httpframe: malformed status code %q: %w", parts[1], err)
	}
	text := ""
	if len(parts) == 3 {
		text = parts[2]
	}
	return &Message{Proto: parts[0], Status: status, StatusText: text, Headers: hdrs}, nil
}

func (c *Codec) applyConnectionHeader(msg *Message) {
	v, ok := msg.Headers.Get("Connection")
	if !ok {
		return
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "close":
		c.keepalive = false
	case "keep-alive":
		c.keepalive = true
	}
}

func contentLength(h *header.Headers) (int, bool) {
	v, ok := h.Get("Content-Length")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

func isChunked(h *header.Headers) bool {
	v, ok := h.Get("Transfer-Encoding")
	return ok && strings.EqualFold(strings.TrimSpace(v), "chunked")
}

// SendHeader queues the request-line or status-line plus header block for
// msg onto write, setting Content-Length to contentLength. A 304 response
// gets no Content-Length; its entity headers are stripped instead.
func (c *Codec) SendHeader(write *buffer.Chain, f transport.Frame, contentLength int) error {
	msg, _ := f.Meta.(*Message)
	if msg == nil {
		return fmt.Errorf("httpframe: frame has no *Message in Meta")
	}
	if msg.Headers == nil {
		msg.Headers = header.New()
	}
	if msg.Status == 304 {
		msg.Headers.Strip304EntityHeaders()
	} else {
		msg.Headers.Set("Content-Length", strconv.Itoa(contentLength))
	}

	var b strings.Builder
	if c.side == Server {
		text := msg.StatusText
		if text == "" {
			text = "OK"
		}
		b.WriteString(fmt.Sprintf("%s %d %s\r\n", defaultProto(msg.Proto), msg.Status, text))
	} else {
		b.WriteString(fmt.Sprintf("%s %s %s\r\n", msg.Method, msg.URL, defaultProto(msg.Proto)))
	}
	msg.Headers.WriteString(&b)
	b.WriteString("\r\n")

	write.Append([]byte(b.String()))
	return nil
}

func defaultProto(p string) string {
	if p == "" {
		return "HTTP/1.1"
	}
	return p
}

// SendBody queues f's payload bytes.
func (c *Codec) SendBody(write *buffer.Chain, f transport.Frame) error {
	write.AppendSegment(f.Payload)
	return nil
}
