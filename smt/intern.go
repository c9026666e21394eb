// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package smt

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/dchest/siphash"
)

// hashKey0/hashKey1 are fixed siphash keys for structural hashing of
// expression nodes. They do not need to be secret: the hash is used
// for hash-consing and cache keys, never for anything
// security-sensitive; siphash is just a fast, well-mixed hash here.
const (
	hashKey0 = 0x736e656c6c657221
	hashKey1 = 0x74762d636f726521
)

// hashNode computes a structural hash for a node, folding in its
// children's already-computed hashes so the cost is linear in the
// term's size rather than quadratic.
func hashNode(n *node) uint64 {
	var buf [9]byte
	buf[0] = byte(n.op)
	binary.LittleEndian.PutUint64(buf[1:], n.constU)
	h := siphash.Hash(hashKey0, hashKey1, buf[:])

	h ^= uint64(n.bits)*31 + uint64(n.fk)
	if n.constB {
		h ^= 0x1
	}
	if n.name != "" {
		h ^= siphash.Hash(hashKey0, hashKey1, []byte(n.name))
	}
	for _, c := range n.children {
		h = h*1099511628211 ^ c.n.hash
	}
	return h
}

// HashKey exposes the structural hash of e, so that a caller can key a
// memoization table off the shape of an expression without holding a
// reference to the Expr itself. (ir/types.Type.CacheKey does not use
// it; it hashes the type's own fields.)
func (e Expr) HashKey() uint64 { return e.n.hash }

// internTable is the process-wide hash-cons table: every node built
// through mk() is looked up here first, so that two structurally
// identical terms share one *node. This is what makes Eq's a.n==b.n
// fast path and IdenticalTo meaningful instead of a coincidence.
var (
	internMu    sync.Mutex
	internTable = make(map[uint64][]*node)
)

// intern returns the canonical *node for n, computing n's structural
// hash and either reusing an existing equal node or inserting n as the
// new representative for its hash bucket.
func intern(n node) *node {
	n.hash = hashNode(&n)
	internMu.Lock()
	defer internMu.Unlock()
	bucket := internTable[n.hash]
	for _, existing := range bucket {
		if nodeEqual(existing, &n) {
			return existing
		}
	}
	canon := new(node)
	*canon = n
	internTable[n.hash] = append(bucket, canon)
	return canon
}

// nodeEqual reports structural equality of two nodes. Children are
// compared by pointer: since every child Expr was itself produced by
// intern(), pointer equality of a child's *node is equivalent to deep
// structural equality, so this stays linear in the node's own arity.
func nodeEqual(a, b *node) bool {
	if a.op != b.op || a.kind != b.kind || a.bits != b.bits || a.fk != b.fk {
		return false
	}
	if a.constU != b.constU || a.constB != b.constB || a.name != b.name {
		return false
	}
	if len(a.children) != len(b.children) {
		return false
	}
	for i, c := range a.children {
		if c.n != b.children[i].n {
			return false
		}
	}
	return true
}

func doubleToBits(v float64) uint64 { return math.Float64bits(v) }
