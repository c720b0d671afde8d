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

// Package rendezvous implements weighted rendezvous (highest-random-weight)
// hashing for the outbound client's (C12) logical-cluster node selection,
// per spec.md §4.6: for each candidate node, combine a precomputed
// per-node hash with the lookup key, scale it into [0,1], raise it to the
// 1/weight power, and pick the node with the largest resulting score —
// deterministically, and stably except for keys that land on a node added
// to or removed from the set.
package rendezvous

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Node is one candidate endpoint: a name (hashed once at Table
// construction) and a non-negative weight. A weight of 0 scores 0 and is
// only chosen once every node in the table has weight 0.
type Node struct {
	Name   string
	Weight float64
}

// Table is a built set of nodes ready for repeated Pick calls. Building
// once and reusing amortizes the per-node name hash across lookups,
// mirroring the teacher pattern (and the original RendezvousHash::build)
// of precomputing what does not depend on the key.
type Table struct {
	nodes []scoredNode
}

type scoredNode struct {
	node Node
	hash uint64
}

// New builds a Table over nodes. The input order is preserved internally
// only to make Pick's tie-break (equal scores, which in practice means
// equal zero weights) deterministic and stable for a given input slice.
func New(nodes []Node) *Table {
	t := &Table{nodes: make([]scoredNode, len(nodes))}
	for i, n := range nodes {
		t.nodes[i] = scoredNode{node: n, hash: xxhash.Sum64String(n.Name)}
	}
	return t
}

// Len reports how many nodes are in the table.
func (t *Table) Len() int { return len(t.nodes) }

// combinedHash mixes a node's precomputed name hash with the lookup
// key's hash, the same two-stage combine as
// RendezvousHash::get/computeHash(uint64): sum the two hashes, then
// rehash the sum so the result is not just their bitwise sum.
func combinedHash(nodeHash, keyHash uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], nodeHash+keyHash)
	return xxhash.Sum64(buf[:])
}

func scaledWeight(nodeHash uint64, keyHash uint64, weight float64) float64 {
	if weight == 0 {
		return 0
	}
	ch := combinedHash(nodeHash, keyHash)
	scaledHash := float64(ch) / float64(math.MaxUint64)
	return math.Pow(scaledHash, 1/weight)
}

// Pick returns the index (into the Node slice New was built from) of the
// rank-th largest score for key, per spec.md §4.6's "for the k-th choice
// (fallback), partial-sort to the k-th largest by descending score".
// rank 0 is the primary choice; rank is taken modulo the node count so
// any non-negative rank is valid. Pick reports false only for an empty
// Table.
func (t *Table) Pick(key string, rank int) (Node, int, bool) {
	if len(t.nodes) == 0 {
		return Node{}, -1, false
	}

	keyHash := xxhash.Sum64String(key)
	type scored struct {
		score float64
		idx   int
	}
	scores := make([]scored, len(t.nodes))
	for i, n := range t.nodes {
		scores[i] = scored{score: scaledWeight(n.hash, keyHash, n.node.Weight), idx: i}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	modRank := rank % len(t.nodes)
	chosen := scores[modRank]
	return t.nodes[chosen.idx].node, chosen.idx, true
}
