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

package header

import (
	"fmt"
	"strings"
)

// Headers is an ordered HTTP header set stored as three parallel sequences:
// codes, names (only populated for Other), and values. Removal sets the
// code to Absent instead of shifting the slices, so Len is O(1) via a
// running deleted count and iteration order of surviving headers is
// preserved.
type Headers struct {
	codes   []Code
	names   []string
	values  []string
	deleted int
}

// New returns an empty Headers ready for Add.
func New() *Headers {
	return &Headers{}
}

// Add appends name/value as a new entry, even if name is already present;
// HTTP headers are a multiset, not a map (spec.md §8 property 4).
func (h *Headers) Add(name, value string) {
	c := CodeForName(name)
	h.codes = append(h.codes, c)
	if c == Other {
		h.names = append(h.names, name)
	} else {
		h.names = append(h.names, "")
	}
	h.values = append(h.values, value)
}

// Set removes every existing entry named name, then adds it once with
// value.
func (h *Headers) Set(name, value string) {
	h.Remove(name)
	h.Add(name, value)
}

// nameAt returns the display name of the entry at index i, resolving
// well-known codes through the interned table.
func (h *Headers) nameAt(i int) string {
	if h.codes[i] == Other {
		return h.names[i]
	}
	return h.codes[i].CanonicalName()
}

// Get returns the first surviving value for name and whether it was found.
func (h *Headers) Get(name string) (string, bool) {
	c := CodeForName(name)
	for i := range h.codes {
		if h.codes[i] == Absent {
			continue
		}
		if c != Other {
			if h.codes[i] == c {
				return h.values[i], true
			}
			continue
		}
		if h.codes[i] == Other && strings.EqualFold(h.names[i], name) {
			return h.values[i], true
		}
	}
	return "", false
}

// Values returns every surviving value for name, in insertion order.
func (h *Headers) Values(name string) []string {
	c := CodeForName(name)
	var out []string
	for i := range h.codes {
		if h.codes[i] == Absent {
			continue
		}
		if c != Other && h.codes[i] == c {
			out = append(out, h.values[i])
		} else if c == Other && h.codes[i] == Other && strings.EqualFold(h.names[i], name) {
			out = append(out, h.values[i])
		}
	}
	return out
}

// Remove tombstones every surviving entry named name and reports whether
// anything was removed.
func (h *Headers) Remove(name string) bool {
	c := CodeForName(name)
	removed := false
	for i := range h.codes {
		if h.codes[i] == Absent {
			continue
		}
		match := false
		if c != Other {
			match = h.codes[i] == c
		} else {
			match = h.codes[i] == Other && strings.EqualFold(h.names[i], name)
		}
		if match {
			h.codes[i] = Absent
			h.names[i] = ""
			h.values[i] = ""
			h.deleted++
			removed = true
		}
	}
	return removed
}

// RemoveCode tombstones every surviving entry with the given well-known
// Code, used internally by hop-by-hop and 304 stripping.
func (h *Headers) RemoveCode(c Code) bool {
	removed := false
	for i := range h.codes {
		if h.codes[i] == c {
			h.codes[i] = Absent
			h.names[i] = ""
			h.values[i] = ""
			h.deleted++
			removed = true
		}
	}
	return removed
}

// RemoveAll tombstones every entry. After RemoveAll, Len is zero and no
// owned "other" name is retained.
func (h *Headers) RemoveAll() {
	for i := range h.codes {
		h.codes[i] = Absent
		h.names[i] = ""
		h.values[i] = ""
	}
	h.deleted = len(h.codes)
}

// Len reports the number of surviving (non-tombstoned) entries in O(1).
func (h *Headers) Len() int {
	return len(h.codes) - h.deleted
}

// Range calls fn for every surviving entry in insertion order, stopping
// early if fn returns false.
func (h *Headers) Range(fn func(name, value string) bool) {
	for i := range h.codes {
		if h.codes[i] == Absent {
			continue
		}
		if !fn(h.nameAt(i), h.values[i]) {
			return
		}
	}
}

// Clone returns a deep, independent copy with tombstones compacted away.
func (h *Headers) Clone() *Headers {
	out := New()
	h.Range(func(name, value string) bool {
		out.Add(name, value)
		return true
	})
	return out
}

// StripHopByHop removes the fixed per-hop header set plus whatever the
// Connection header(s) list, per RFC 7230 §6.1 and spec.md §4.2. The Open
// Question on local-origin messages is decided in favor of unconditional
// stripping; see the design ledger.
func (h *Headers) StripHopByHop() {
	for _, v := range h.Values("Connection") {
		for _, tok := range strings.Split(v, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			h.Remove(tok)
		}
	}
	h.RemoveCode(Connection)
	for _, c := range perHopFixed {
		h.RemoveCode(c)
	}
}

// Strip304EntityHeaders removes the entity headers a 304 response must not
// carry, per spec.md §4.2 and §6.
func (h *Headers) Strip304EntityHeaders() {
	for _, c := range entityHeaders304 {
		h.RemoveCode(c)
	}
}

// WriteString appends the CRLF-terminated wire form of every surviving
// header to b, in insertion order. Does not write the terminating blank
// line; the framer does that once after the full header block.
func (h *Headers) WriteString(b *strings.Builder) {
	h.Range(func(name, value string) bool {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
		return true
	})
}

func (h *Headers) String() string {
	var b strings.Builder
	h.WriteString(&b)
	return b.String()
}

// Parse decodes a CRLF-delimited header block (without the request/status
// line and without the terminating blank line) into a fresh Headers.
// Folded (obsolete multi-line) header values are not supported, matching
// RFC 7230's deprecation of line folding.
func Parse(block string) (*Headers, error) {
	h := New()
	if block == "" {
		return h, nil
	}
	for _, line := range strings.Split(block, "\r\n") {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			return nil, fmt.Errorf("header: malformed line %q", line)
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		h.Add(name, value)
	}
	return h, nil
}
