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

// Subst replaces every occurrence of the free variable v with to. v
// must be a variable (opVar); substituting a compound expression is a
// caller error and returns e unchanged.
func (e Expr) Subst(v, to Expr) Expr {
	if v.n.op != opVar {
		return e
	}
	return e.subst(v.n.name, to)
}

func (e Expr) subst(name string, to Expr) Expr {
	n := e.n
	if n.op == opVar {
		if n.name == name {
			return to
		}
		return e
	}
	if len(n.children) == 0 {
		return e
	}
	// forall shadows its bound variables: if name is one of them, the
	// substitution does not reach into the body.
	if n.op == opForAll {
		for _, v := range n.children[1:] {
			if v.n.name == name {
				return e
			}
		}
	}
	changed := false
	newChildren := make([]Expr, len(n.children))
	for i, c := range n.children {
		nc := c.subst(name, to)
		newChildren[i] = nc
		if nc.n != c.n {
			changed = true
		}
	}
	if !changed {
		return e
	}
	cp := *n
	cp.children = newChildren
	return mk(cp)
}

// Simplify applies constant folding and the handful of algebraic
// identities the checker relies on (double negation, and/or with a
// constant operand, self-equality). It is not a general-purpose
// simplifier; a real backend is expected to do much better, but the
// façade must be able to recognize "isFalse() after simplify" on its
// own so tvcheck.preprocess's instantiation loop can drop dead
// branches without a solver round-trip.
func (e Expr) Simplify() Expr {
	n := e.n
	if len(n.children) == 0 {
		return e
	}
	children := make([]Expr, len(n.children))
	for i, c := range n.children {
		if n.op == opForAll && i > 0 {
			children[i] = c // don't simplify bound variables
			continue
		}
		children[i] = c.Simplify()
	}

	switch n.op {
	case opNot:
		c := children[0]
		if c.IsTrue() {
			return MkFalse()
		}
		if c.IsFalse() {
			return MkTrue()
		}
		if c.n.op == opNot {
			return c.n.children[0]
		}
		return mk(node{op: opNot, kind: SortBool, children: children})

	case opAnd:
		return children[0].And(children[1])

	case opOr:
		return children[0].Or(children[1])

	case opEq:
		return children[0].Eq(children[1])

	case opForAll:
		body := children[0]
		if body.IsConst() {
			return body
		}
		if v, ok := tryDecideForAll(n.children[1:], body); ok {
			return v
		}
		cp := *n
		cp.children = children
		return mk(cp)

	case opIte:
		cond := children[0]
		if cond.IsTrue() {
			return children[1]
		}
		if cond.IsFalse() {
			return children[2]
		}
		cp := *n
		cp.children = children
		return mk(cp)

	case opExtract:
		high := uint(n.constU >> 32)
		low := uint(n.constU & 0xffffffff)
		return children[0].Extract(high, low)

	case opUlt:
		return children[0].Ult(children[1])

	case opUle:
		return children[0].Ule(children[1])

	case opUgt:
		return children[0].Ugt(children[1])

	case opUge:
		return children[0].Uge(children[1])

	case opConcat:
		return children[0].Concat(children[1])

	case opShl:
		return children[0].Shl(children[1])

	case opLshr:
		return children[0].Lshr(children[1])

	case opZExt:
		c := children[0]
		if c.Sort() == SortBool {
			return c.ToBVBool().ZExtOrTrunc(n.bits)
		}
		if v, ok := c.IsUInt(); ok {
			return MkUInt(v, n.bits)
		}
		cp := *n
		cp.children = children
		return mk(cp)

	default:
		cp := *n
		cp.children = children
		return mk(cp)
	}
}

// Bounds for tryDecideForAll: a bound variable wider than
// maxQuantifierVarBits, or a joint domain bigger than
// maxQuantifierAssignments, is left as an unresolved forall node
// rather than enumerated.
const (
	maxQuantifierVarBits     = 10
	maxQuantifierAssignments = 1 << 16
)

// tryDecideForAll brute-forces small, fully bounded quantifiers so
// NaiveSolver (which has no native quantifier support) can still
// discharge the forall-wrapped obligations tvcheck.preprocess
// produces: it substitutes every combination of values for boundVars
// into body and requires each one to collapse to a boolean constant.
// ok is false when the domain is too large to enumerate or some
// instance doesn't fully resolve; in both cases the caller leaves the
// forall opaque rather than risk an unsound answer.
func tryDecideForAll(boundVars []Expr, body Expr) (result Expr, ok bool) {
	total := uint64(1)
	for _, v := range boundVars {
		w := v.Bits()
		if w == 0 || w > maxQuantifierVarBits {
			return Expr{}, false
		}
		total *= uint64(1) << w
		if total > maxQuantifierAssignments {
			return Expr{}, false
		}
	}

	assign := make([]uint64, len(boundVars))
	var rec func(i int) (Expr, bool)
	rec = func(i int) (Expr, bool) {
		if i == len(boundVars) {
			inst := body
			for j, v := range boundVars {
				var c Expr
				if v.Sort() == SortBool {
					c = MkBool(assign[j] != 0)
				} else {
					c = MkUInt(assign[j], v.Bits())
				}
				inst = inst.Subst(v, c)
			}
			inst = inst.Simplify()
			if !inst.IsConst() {
				return Expr{}, false
			}
			return inst, true
		}
		n := uint64(1) << boundVars[i].Bits()
		for val := uint64(0); val < n; val++ {
			assign[i] = val
			r, ok := rec(i + 1)
			if !ok {
				return Expr{}, false
			}
			if r.IsFalse() {
				return MkFalse(), true
			}
		}
		return MkTrue(), true
	}
	return rec(0)
}
