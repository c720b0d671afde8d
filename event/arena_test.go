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

package event_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/reactor/event"
)

var _ = Describe("Arena", func() {
	var a *event.Arena

	BeforeEach(func() {
		a = event.NewArena()
	})

	It("assigns increasing slots and resolves them back to the same Event", func() {
		e1 := event.New(&fakeSocket{}, event.RoleServer)
		e2 := event.New(&fakeSocket{}, event.RoleServer)

		id1 := a.Insert(e1)
		id2 := a.Insert(e2)

		Expect(id1.Slot).To(Equal(uint32(0)))
		Expect(id2.Slot).To(Equal(uint32(1)))
		Expect(a.Len()).To(Equal(2))

		got, ok := a.Get(id1)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(e1))
	})

	It("fails a lookup by a stale id once the slot is recycled", func() {
		e1 := event.New(&fakeSocket{}, event.RoleServer)
		id1 := a.Insert(e1)

		a.Remove(id1)
		_, ok := a.Get(id1)
		Expect(ok).To(BeFalse())

		e2 := event.New(&fakeSocket{}, event.RoleServer)
		id2 := a.Insert(e2)

		Expect(id2.Slot).To(Equal(id1.Slot))
		Expect(id2.Gen).NotTo(Equal(id1.Gen))

		_, ok = a.Get(id1)
		Expect(ok).To(BeFalse())

		got, ok := a.Get(id2)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(e2))
	})

	It("visits every occupied slot exactly once via Range", func() {
		for i := 0; i < 3; i++ {
			a.Insert(event.New(&fakeSocket{}, event.RoleServer))
		}

		seen := 0
		a.Range(func(id event.ID, e *event.Event) bool {
			seen++
			return true
		})
		Expect(seen).To(Equal(3))
	})
})
