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

// Package buffer implements the reactor's I/O buffer chain (C2): an ordered
// sequence of reference-counted byte segments with O(1) append/prepend,
// in-place coalesce, and cursor reads. A Chain is owned by exactly one Event
// at a time and is moved between read/write sides, never shared.
package buffer

import "sync/atomic"

// minSegmentCap is the smallest capacity a freshly allocated segment gets
// when growing a Chain, matching spec.md's kMinReadSize.
const minSegmentCap = 1460

// maxSegmentCap bounds a single read's growth, matching spec.md's kMaxReadSize.
const maxSegmentCap = 4000

// segment is a reference-counted byte buffer. Content between off and len(buf)
// is valid data; content before off has already been consumed. Segments are
// never mutated once shared across more than one owner except by appending
// past len(buf) while cap allows and refs == 1 (the common single-writer path).
type segment struct {
	buf  []byte
	off  int
	refs int32
	next *segment
}

func newSegment(capHint int) *segment {
	if capHint < minSegmentCap {
		capHint = minSegmentCap
	}
	return &segment{buf: make([]byte, 0, capHint), refs: 1}
}

func wrapSegment(b []byte) *segment {
	return &segment{buf: b, refs: 1}
}

func (s *segment) size() int {
	return len(s.buf) - s.off
}

func (s *segment) retain() *segment {
	atomic.AddInt32(&s.refs, 1)
	return s
}

// release decrements the refcount and returns true if this was the last
// reference, allowing the caller to drop the segment from the chain.
func (s *segment) release() bool {
	return atomic.AddInt32(&s.refs, -1) == 0
}

func (s *segment) shared() bool {
	return atomic.LoadInt32(&s.refs) > 1
}
