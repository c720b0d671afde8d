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

// Package httpframe implements RFC 7230-compliant HTTP/1.x request and
// response framing (C4): request-line/status-line, header block terminated
// by a blank line, and a body delimited by Content-Length or
// Transfer-Encoding: chunked. It exposes a parsed Message to handlers and
// consumes one to build a response, sharing the header.Headers
// representation used for hop-by-hop and 304 stripping.
package httpframe

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/nabbar/reactor/transport/header"
)

// Message is the parsed form of either an HTTP request or response handed
// to/from a handler: method+URL (requests) or status (responses), the
// header set, and the body bytes.
type Message struct {
	// Method and URL are set for requests; Status is set for responses.
	Method string
	URL    string
	Proto  string

	Status     int
	StatusText string

	Headers *header.Headers
	Body    []byte
}

// Key returns the dispatcher lookup key for a request Message: "METHOD
// URL", matching the protocol key the request dispatcher (C11) maps to a
// handler.
func (m *Message) Key() string {
	return m.Method + " " + m.URL
}

// ComputeETag returns the quoted hex SHA-1 of body, the framework's ETag
// convention per spec.md §6.
func ComputeETag(body []byte) string {
	sum := sha1.Sum(body)
	return fmt.Sprintf("%q", hex.EncodeToString(sum[:]))
}

// NewRequest builds a request Message ready for framing.
func NewRequest(method, url string) *Message {
	return &Message{Method: method, URL: url, Proto: "HTTP/1.1", Headers: header.New()}
}

// NewResponse builds a response Message with the given status.
func NewResponse(status int, text string) *Message {
	return &Message{Status: status, StatusText: text, Proto: "HTTP/1.1", Headers: header.New()}
}
