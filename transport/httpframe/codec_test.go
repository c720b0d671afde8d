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

package httpframe_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/buffer"
	"github.com/nabbar/reactor/transport"
	"github.com/nabbar/reactor/transport/httpframe"
)

var _ = Describe("Codec", func() {
	Context("server side", func() {
		It("parses two pipelined keepalive requests into two frames, in order", func() {
			c := httpframe.New(httpframe.Server, true)
			read := &buffer.Chain{}
			read.Append([]byte("GET /a HTTP/1.1\r\nHost: x\r\n\r\nGET /b HTTP/1.1\r\nHost: x\r\n\r\n"))

			var frames []transport.Frame
			state, err := c.ProcessReadData(read, func(f transport.Frame) {
				frames = append(frames, f)
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(transport.OnReading))
			Expect(frames).To(HaveLen(2))
			Expect(frames[0].Key).To(Equal("GET /a"))
			Expect(frames[1].Key).To(Equal("GET /b"))
			Expect(c.Keepalive()).To(BeTrue())
		})

		It("waits for more bytes when the header block is incomplete", func() {
			c := httpframe.New(httpframe.Server, true)
			read := &buffer.Chain{}
			read.Append([]byte("GET /a HTTP/1.1\r\nHost: x\r\n"))

			var frames []transport.Frame
			state, err := c.ProcessReadData(read, func(f transport.Frame) { frames = append(frames, f) })

			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(transport.OnReading))
			Expect(frames).To(BeEmpty())
		})

		It("buffers a Content-Length body across reads", func() {
			c := httpframe.New(httpframe.Server, true)
			read := &buffer.Chain{}
			read.Append([]byte("POST /x HTTP/1.1\r\nContent-Length: 5\r\n\r\nhel"))

			var frames []transport.Frame
			state, _ := c.ProcessReadData(read, func(f transport.Frame) { frames = append(frames, f) })
			Expect(state).To(Equal(transport.OnReading))
			Expect(frames).To(BeEmpty())

			read.Append([]byte("lo"))
			state, err := c.ProcessReadData(read, func(f transport.Frame) { frames = append(frames, f) })

			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(transport.OnReading))
			Expect(frames).To(HaveLen(1))
			Expect(frames[0].Payload).To(Equal([]byte("hello")))
		})

		It("decodes a chunked body", func() {
			c := httpframe.New(httpframe.Server, true)
			read := &buffer.Chain{}
			read.Append([]byte("POST /x HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"))

			var frames []transport.Frame
			_, err := c.ProcessReadData(read, func(f transport.Frame) { frames = append(frames, f) })

			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(HaveLen(1))
			Expect(frames[0].Payload).To(Equal([]byte("Wikipedia")))
		})

		It("turns off keepalive on Connection: close", func() {
			c := httpframe.New(httpframe.Server, true)
			read := &buffer.Chain{}
			read.Append([]byte("GET /a HTTP/1.1\r\nConnection: close\r\n\r\n"))

			c.ProcessReadData(read, func(transport.Frame) {})
			Expect(c.Keepalive()).To(BeFalse())
		})
	})

	Context("SendHeader", func() {
		It("strips entity headers from a 304 response", func() {
			c := httpframe.New(httpframe.Server, true)
			msg := httpframe.NewResponse(304, "Not Modified")
			msg.Headers.Add("Content-Type", "text/html")
			msg.Headers.Add("ETag", `"abc"`)

			write := &buffer.Chain{}
			err := c.SendHeader(write, transport.Frame{Meta: msg}, 0)
			Expect(err).NotTo(HaveOccurred())

			wire := string(write.Bytes())
			Expect(wire).To(ContainSubstring("304 Not Modified"))
			Expect(wire).To(ContainSubstring("ETag"))
			Expect(wire).NotTo(ContainSubstring("Content-Type"))
		})

		It("sets Content-Length on a normal response", func() {
			c := httpframe.New(httpframe.Server, true)
			msg := httpframe.NewResponse(200, "OK")

			write := &buffer.Chain{}
			Expect(c.SendHeader(write, transport.Frame{Meta: msg}, 11)).To(Succeed())

			Expect(string(write.Bytes())).To(ContainSubstring("Content-Length: 11"))
		})
	})
})
