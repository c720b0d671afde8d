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

package header_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/transport/header"
)

var _ = Describe("Headers", func() {
	It("preserves the multiset of pairs through add/remove/copy", func() {
		h := header.New()
		h.Add("X-Custom", "a")
		h.Add("X-Custom", "b")
		h.Add("Host", "example.com")

		Expect(h.Len()).To(Equal(3))
		Expect(h.Values("X-Custom")).To(Equal([]string{"a", "b"}))

		clone := h.Clone()
		Expect(clone.Len()).To(Equal(3))
		Expect(clone.Values("X-Custom")).To(Equal([]string{"a", "b"}))
	})

	It("is case-insensitive on lookup and removal", func() {
		h := header.New()
		h.Add("Content-Type", "text/html")

		v, ok := h.Get("content-type")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("text/html"))

		Expect(h.Remove("CONTENT-TYPE")).To(BeTrue())
		Expect(h.Len()).To(Equal(0))
	})

	It("reports size in O(1) after removal without leaking owned names", func() {
		h := header.New()
		h.Add("X-A", "1")
		h.Add("X-B", "2")
		h.Remove("X-A")

		Expect(h.Len()).To(Equal(1))

		var names []string
		h.Range(func(name, _ string) bool {
			names = append(names, name)
			return true
		})
		Expect(names).To(Equal([]string{"X-B"}))
	})

	It("RemoveAll zeroes the size and leaves no owned names", func() {
		h := header.New()
		h.Add("X-A", "1")
		h.Add("X-B", "2")
		h.RemoveAll()

		Expect(h.Len()).To(Equal(0))
		count := 0
		h.Range(func(string, string) bool { count++; return true })
		Expect(count).To(Equal(0))
	})

	It("round-trips Parse(serialize(H)) for headers without CR/LF in values", func() {
		h := header.New()
		h.Add("Host", "example.com")
		h.Add("X-Custom", "v")

		parsed, err := header.Parse(h.String())
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.Len()).To(Equal(h.Len()))

		v, ok := parsed.Get("Host")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("example.com"))
	})

	It("strips the fixed hop-by-hop set plus whatever Connection lists", func() {
		h := header.New()
		h.Add("Connection", "X-Custom, keep-alive")
		h.Add("X-Custom", "v")
		h.Add("Host", "x")

		h.StripHopByHop()

		_, hasConn := h.Get("Connection")
		_, hasKeepAlive := h.Get("Keep-Alive")
		_, hasCustom := h.Get("X-Custom")
		Expect(hasConn).To(BeFalse())
		Expect(hasKeepAlive).To(BeFalse())
		Expect(hasCustom).To(BeFalse())

		_, hasHost := h.Get("Host")
		Expect(hasHost).To(BeTrue())
	})

	It("strips entity headers forbidden on a 304 response", func() {
		h := header.New()
		h.Add("Content-Type", "text/html")
		h.Add("ETag", `"abc"`)

		h.Strip304EntityHeaders()

		_, hasType := h.Get("Content-Type")
		Expect(hasType).To(BeFalse())

		v, hasETag := h.Get("ETag")
		Expect(hasETag).To(BeTrue())
		Expect(v).To(Equal(`"abc"`))
	})
})
