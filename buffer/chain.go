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

package buffer

import (
	"errors"
	"io"
)

// ErrEmpty is returned by operations that require at least one byte of data.
var ErrEmpty = errors.New("buffer: chain is empty")

// Chain is an ordered sequence of byte segments forming a single logical
// byte stream. A Chain has unique ownership at any point in time: pass it
// by moving the pointer, never by sharing across goroutines. The zero value
// is a valid empty Chain.
type Chain struct {
	head *segment
	tail *segment
	len  int
}

// Len returns the total number of unconsumed bytes in the chain.
func (c *Chain) Len() int {
	return c.len
}

// Empty reports whether the chain currently holds no data.
func (c *Chain) Empty() bool {
	return c.len == 0
}

// Append copies p onto the end of the chain in O(1) amortized time: it
// reuses the tail segment's spare capacity when unshared, or links a new
// segment otherwise.
func (c *Chain) Append(p []byte) {
	if len(p) == 0 {
		return
	}

	if c.tail != nil && !c.tail.shared() && cap(c.tail.buf)-len(c.tail.buf) >= len(p) {
		c.tail.buf = append(c.tail.buf, p...)
		c.len += len(p)
		return
	}

	s := newSegment(growthHint(len(p)))
	s.buf = append(s.buf, p...)
	c.linkTail(s)
	c.len += len(p)
}

// AppendSegment links a pre-built, possibly shared, byte slice onto the
// chain without copying. Used by the write side of a Transport to queue a
// response body without duplicating it into the chain's own storage.
func (c *Chain) AppendSegment(p []byte) {
	if len(p) == 0 {
		return
	}
	c.linkTail(wrapSegment(p))
	c.len += len(p)
}

func (c *Chain) linkTail(s *segment) {
	if c.tail == nil {
		c.head, c.tail = s, s
		return
	}
	c.tail.next = s
	c.tail = s
}

// Prepend pushes p onto the front of the chain, for example to re-queue
// unconsumed bytes after a partial parse. O(1): it never shifts existing
// segments.
func (c *Chain) Prepend(p []byte) {
	if len(p) == 0 {
		return
	}
	s := wrapSegment(append([]byte(nil), p...))
	s.next = c.head
	c.head = s
	if c.tail == nil {
		c.tail = s
	}
	c.len += len(p)
}

// growthHint picks a read-buffer size between kMinReadSize and kMaxReadSize,
// per spec.md §8, biased toward the requested size.
func growthHint(want int) int {
	switch {
	case want < minSegmentCap:
		return minSegmentCap
	case want > maxSegmentCap:
		return maxSegmentCap
	default:
		return want
	}
}

// ReadFrom reads from r into a freshly grown tail segment and appends it to
// the chain, returning the number of bytes read. It performs at most one
// underlying Read call, matching the Transport contract of driving exactly
// one readv per readiness callback.
func (c *Chain) ReadFrom(r io.Reader) (int64, error) {
	s := newSegment(maxSegmentCap)
	s.buf = s.buf[:cap(s.buf)]
	n, err := r.Read(s.buf)
	if n > 0 {
		s.buf = s.buf[:n]
		c.linkTail(s)
		c.len += n
	}
	return int64(n), err
}

// Bytes coalesces the chain into a single contiguous slice and returns it.
// The chain is left unmodified; callers that want to also consume should
// follow with Consume(len(result)).
func (c *Chain) Bytes() []byte {
	if c.head == nil {
		return nil
	}
	if c.head == c.tail {
		return c.head.buf[c.head.off:]
	}

	out := make([]byte, 0, c.len)
	for s := c.head; s != nil; s = s.next {
		out = append(out, s.buf[s.off:]...)
	}
	return out
}

// Coalesce merges the entire chain into a single segment in place, so that
// subsequent Bytes() calls are O(1). Used by parsers that need a contiguous
// view more than once (e.g. re-scanning for a header terminator).
func (c *Chain) Coalesce() {
	if c.head == nil || c.head == c.tail {
		return
	}
	merged := c.Bytes()
	c.head = wrapSegment(merged)
	c.tail = c.head
}

// Consume drops the first n bytes from the chain, releasing any segment that
// becomes fully drained. It is the counterpart to a successful parse: once a
// complete frame has been handed to the dispatcher, the Transport consumes
// exactly its length.
func (c *Chain) Consume(n int) {
	if n <= 0 {
		return
	}
	if n > c.len {
		n = c.len
	}
	c.len -= n

	for n > 0 && c.head != nil {
		avail := c.head.size()
		if avail > n {
			c.head.off += n
			n = 0
			break
		}

		n -= avail
		drained := c.head
		c.head = c.head.next
		if c.head == nil {
			c.tail = nil
		}
		drained.next = nil
		drained.release()
	}
}

// WriteTo drains the chain into w, consuming bytes as they are written,
// until the chain is empty, w returns an error, or a write is short.
// Implements io.WriterTo so a Chain can be passed directly to
// writev-style sinks.
func (c *Chain) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for c.head != nil {
		s := c.head
		want := s.size()
		n, err := w.Write(s.buf[s.off:])
		total += int64(n)
		c.Consume(n)
		if err != nil {
			return total, err
		}
		if n < want {
			// short write: stop here, let the caller rearm write interest
			// and retry the remainder on the next writable callback.
			break
		}
	}

	return total, nil
}

// Peek returns up to n unconsumed bytes without removing them from the
// chain, coalescing as needed. Used by parsers scanning for a delimiter
// across a segment boundary.
func (c *Chain) Peek(n int) []byte {
	if n <= 0 {
		return nil
	}
	if n > c.len {
		n = c.len
	}
	if c.head != nil && c.head.size() >= n {
		return c.head.buf[c.head.off : c.head.off+n]
	}
	c.Coalesce()
	if c.head == nil {
		return nil
	}
	end := c.head.off + n
	if end > len(c.head.buf) {
		end = len(c.head.buf)
	}
	return c.head.buf[c.head.off:end]
}

// Index returns the position of the first occurrence of b in the unconsumed
// portion of the chain, or -1 if not present.
func (c *Chain) Index(b byte) int {
	pos := 0
	for s := c.head; s != nil; s = s.next {
		data := s.buf[s.off:]
		for i, v := range data {
			if v == b {
				return pos + i
			}
		}
		pos += len(data)
	}
	return -1
}
