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

package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nabbar/reactor/cache"
	"github.com/nabbar/reactor/event"
)

// pooledConn is one idle-keepalive outbound connection, keyed in the
// pool by peer address plus loop name (spec.md §4.6 step 1: "keyed by
// peer + transport" — here "transport" means the EventLoop a dialed
// socket is registered on, since an Event cannot migrate loops).
type pooledConn struct {
	loopName string
	id       event.ID
	nextSeq  atomic.Uint32
	inUse    atomic.Bool
}

func (c *pooledConn) nextSeqID() uint32 {
	return c.nextSeq.Add(1)
}

// connPool is the keyed idle-connection cache backing Acquire/Release,
// built on the teacher's generic cache package (SPEC_FULL.md's
// "Connection pool with idle eviction for the outbound client"
// supplemented feature): an idle pooledConn is evicted automatically
// once it outlives idleTTL.
type connPool struct {
	idleTTL time.Duration
	entries cache.Cache[string, *pooledConn]
}

func newConnPool(ctx context.Context, idleTTL time.Duration) *connPool {
	return &connPool{
		idleTTL: idleTTL,
		entries: cache.New[string, *pooledConn](ctx, idleTTL),
	}
}

func poolKey(loopName, peer string) string { return loopName + "|" + peer }

// acquire returns an idle, not-in-use pooledConn for (loopName, peer) if
// one is cached, marking it in-use. A cache miss, or a cached entry
// already in use by a concurrent Call on the same loop, means the
// caller must dial fresh.
func (p *connPool) acquire(loopName, peer string) (*pooledConn, bool) {
	c, _, ok := p.entries.Load(poolKey(loopName, peer))
	if !ok {
		return nil, false
	}
	if !c.inUse.CompareAndSwap(false, true) {
		return nil, false
	}
	return c, true
}

// put registers a freshly dialed connection in the pool, available for
// reuse by a later Call once release marks it not-in-use.
func (p *connPool) put(loopName, peer string, id event.ID) *pooledConn {
	c := &pooledConn{loopName: loopName, id: id}
	c.inUse.Store(true)
	p.entries.Store(poolKey(loopName, peer), c)
	return c
}

// release marks c available for the next Call to the same peer on the
// same loop. It is a no-op if c was already evicted (connection torn
// down) from the pool.
func (p *connPool) release(c *pooledConn) {
	c.inUse.Store(false)
}

// evict removes peer's cached entry for loopName, e.g. after its Event
// reaches Fail.
func (p *connPool) evict(loopName, peer string) {
	p.entries.Delete(poolKey(loopName, peer))
}
