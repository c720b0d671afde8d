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

package rendezvous_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/client/rendezvous"
)

var _ = Describe("Table", func() {
	It("is deterministic for the same key, nodes, weights and rank", func() {
		nodes := []rendezvous.Node{
			{Name: "a", Weight: 100},
			{Name: "b", Weight: 400},
			{Name: "c", Weight: 500},
		}
		t1 := rendezvous.New(nodes)
		t2 := rendezvous.New(nodes)

		n1, i1, ok1 := t1.Pick("10240", 0)
		n2, i2, ok2 := t2.Pick("10240", 0)

		Expect(ok1).To(BeTrue())
		Expect(ok2).To(BeTrue())
		Expect(i1).To(Equal(i2))
		Expect(n1.Name).To(Equal(n2.Name))
	})

	It("is stable under adding an unrelated zero-weight node", func() {
		nodes := []rendezvous.Node{
			{Name: "a", Weight: 100},
			{Name: "b", Weight: 400},
			{Name: "c", Weight: 500},
		}
		before := rendezvous.New(nodes)
		n1, _, _ := before.Pick("10240", 0)

		withExtra := rendezvous.New(append(append([]rendezvous.Node{}, nodes...), rendezvous.Node{Name: "d", Weight: 0}))
		n2, _, _ := withExtra.Pick("10240", 0)

		Expect(n2.Name).To(Equal(n1.Name))
	})

	It("always picks the positive-weight node when the other has weight 0", func() {
		nodes := []rendezvous.Node{
			{Name: "zero", Weight: 0},
			{Name: "positive", Weight: 10},
		}
		table := rendezvous.New(nodes)

		for _, key := range []string{"k1", "k2", "k3", "another-key"} {
			n, _, ok := table.Pick(key, 0)
			Expect(ok).To(BeTrue())
			Expect(n.Name).To(Equal("positive"))
		}
	})

	It("only selects among zero-weight nodes when every weight is zero", func() {
		nodes := []rendezvous.Node{
			{Name: "a", Weight: 0},
			{Name: "b", Weight: 0},
		}
		table := rendezvous.New(nodes)

		n, _, ok := table.Pick("k", 0)
		Expect(ok).To(BeTrue())
		Expect(n.Weight).To(Equal(float64(0)))
	})

	It("wraps rank modulo the node count", func() {
		nodes := []rendezvous.Node{
			{Name: "a", Weight: 1},
			{Name: "b", Weight: 1},
		}
		table := rendezvous.New(nodes)

		n0, _, _ := table.Pick("k", 0)
		n2, _, _ := table.Pick("k", 2)
		Expect(n2.Name).To(Equal(n0.Name))
	})

	It("reports false for an empty table", func() {
		table := rendezvous.New(nil)
		_, _, ok := table.Pick("k", 0)
		Expect(ok).To(BeFalse())
	})
})
