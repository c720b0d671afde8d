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

package event

// Arena owns the Events registered with a single EventLoop. It replaces a
// raw pointer graph (Event <-> Transport <-> Socket <-> EventLoop) with a
// slot table addressed by generational id, per the arena redesign: the loop
// thread is the only writer, so Arena itself does no locking. Handlers that
// need to reach an Event from a callback re-resolve it through Get on every
// step rather than holding the *Event across a suspension point.
type Arena struct {
	slots []slot
	free  []uint32
}

type slot struct {
	gen uint32
	ev  *Event
}

// NewArena returns an empty Arena ready to register Events.
func NewArena() *Arena {
	return &Arena{}
}

// Insert allocates a slot for ev, assigns its ID, and returns that ID. The
// generation of a reused slot is incremented past its prior occupant so any
// ID still referencing the old occupant fails Get.
func (a *Arena) Insert(ev *Event) ID {
	var (
		idx uint32
		gen uint32
	)

	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
		gen = a.slots[idx].gen
		a.slots[idx].ev = ev
	} else {
		idx = uint32(len(a.slots))
		gen = 1
		a.slots = append(a.slots, slot{gen: gen, ev: ev})
	}

	id := ID{Slot: idx, Gen: gen}
	ev.id = id
	return id
}

// Get resolves id to its Event, returning ok=false if the slot has been
// recycled (generation mismatch) or was never occupied.
func (a *Arena) Get(id ID) (*Event, bool) {
	if !id.Valid() || int(id.Slot) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[id.Slot]
	if s.gen != id.Gen || s.ev == nil {
		return nil, false
	}
	return s.ev, true
}

// Remove evicts the Event at id, bumping its slot's generation so the id can
// never resolve again, and returns the slot to the free list.
func (a *Arena) Remove(id ID) {
	if int(id.Slot) >= len(a.slots) {
		return
	}
	s := &a.slots[id.Slot]
	if s.gen != id.Gen || s.ev == nil {
		return
	}
	s.ev = nil
	s.gen++
	a.free = append(a.free, id.Slot)
}

// Len reports the number of currently occupied slots.
func (a *Arena) Len() int {
	return len(a.slots) - len(a.free)
}

// Range calls fn for every occupied slot in slot order, stopping early if
// fn returns false. Used by shutdown sweeps that must visit every live
// Event exactly once.
func (a *Arena) Range(fn func(ID, *Event) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.ev == nil {
			continue
		}
		id := ID{Slot: uint32(i), Gen: s.gen}
		if !fn(id, s.ev) {
			return
		}
	}
}
