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

	"github.com/nabbar/reactor/client/rendezvous"
	"github.com/nabbar/reactor/transport"
)

// Cluster resolves a Peer for a request key via weighted rendezvous hashing
// across a fixed set of candidate nodes (spec.md §4.6's "logical-cluster
// node selection"): the same key always maps to the same primary node while
// the set is unchanged, and CallCluster falls back to the next-ranked node
// only when the primary choice's Call fails.
type Cluster struct {
	table *rendezvous.Table
	peers []Peer
}

// ClusterNode is one candidate peer plus its rendezvous weight. A Weight of
// 0 is only ever chosen once every node in the Cluster has Weight 0.
type ClusterNode struct {
	Peer   Peer
	Weight float64
}

// NewCluster builds a Cluster over nodes, hashing each node's address once.
func NewCluster(nodes []ClusterNode) *Cluster {
	rn := make([]rendezvous.Node, len(nodes))
	peers := make([]Peer, len(nodes))
	for i, n := range nodes {
		rn[i] = rendezvous.Node{Name: n.Peer.Addr, Weight: n.Weight}
		peers[i] = n.Peer
	}
	return &Cluster{table: rendezvous.New(rn), peers: peers}
}

// Len reports how many peers are in the cluster.
func (c *Cluster) Len() int { return c.table.Len() }

// pick returns the rank-th ranked Peer for key, rank 0 being primary.
func (c *Cluster) pick(key string, rank int) (Peer, bool) {
	_, idx, ok := c.table.Pick(key, rank)
	if !ok {
		return Peer{}, false
	}
	return c.peers[idx], true
}

// CallCluster resolves key's primary peer and calls it; on failure it
// retries against each remaining ranked peer in turn before giving up,
// returning the last error seen. It must be called under the same
// constraints as Call (from within a fiber spawned on this Cluster's
// Client's EventLoop pool).
func (c *Client) CallCluster(ctx context.Context, cluster *Cluster, key string, req transport.Frame) (transport.Frame, error) {
	if cluster.Len() == 0 {
		return transport.Frame{}, ErrNoPeer.Error(nil)
	}

	var lastErr error
	for rank := 0; rank < cluster.Len(); rank++ {
		peer, ok := cluster.pick(key, rank)
		if !ok {
			break
		}
		reply, err := c.Call(ctx, peer, req)
		if err == nil {
			return reply, nil
		}
		lastErr = err
	}
	return transport.Frame{}, lastErr
}
