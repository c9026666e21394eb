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

// Package smt is the first-order term façade consumed by the type
// lattice and the refinement checker: fixed-width bit-vectors, floats,
// booleans and quantifiers, with substitution, simplification and a
// pluggable checker. It does not embed an actual decision procedure;
// Solver is an interface so a real backend can be wired in by a caller,
// and NaiveSolver (naive_solver.go) is the in-process reference backend used
// by this repo's own tests.
package smt

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/slices"
)

// Kind distinguishes the sort of an Expr's value.
type Kind uint8

const (
	SortBool Kind = iota
	SortBV
	SortFloat
)

// FloatKind enumerates the supported floating-point formats.
type FloatKind uint8

const (
	Half FloatKind = iota
	Float
	Double
)

func (k FloatKind) Bits() uint {
	switch k {
	case Half:
		return 16
	case Float:
		return 32
	case Double:
		return 64
	}
	panic("unknown float kind")
}

// op is the internal node tag for an Expr's term tree.
type op uint8

const (
	opConstBV op = iota
	opConstBool
	opConstFloat
	opVar
	opForAll
	opNot
	opAnd
	opOr
	opEq
	opUlt
	opUle
	opUgt
	opUge
	opExtract
	opConcat
	opShl
	opLshr
	opZExt
	opSExt
	opTrunc
	opFloat2BV
	opBV2Float
	opIsNaN
	opFPZero
	opFPNeg
	opIsInf
	opFloat2Real
	opUndefMarker
	opIte
)

// node is the shared, immutable representation of one Expr. Expr values
// are thin handles around *node, and every *node reaching this type
// has gone through intern() (see intern.go), so structurally identical
// terms always share one node: Go pointer equality of two Exprs' n
// fields is equivalent to structural equality of the terms they denote.
type node struct {
	op       op
	kind     Kind
	bits     uint      // BV width, when kind == SortBV
	fk       FloatKind // float kind, when kind == SortFloat
	name     string    // variable name, for opVar
	constU   uint64    // constant payload for opConstBV / small values
	constB   bool
	children []Expr
	hash     uint64
}

// Expr is a first-order term. The zero Expr is invalid; always
// construct one through the mk* functions below.
type Expr struct {
	n *node
}

func mk(n node) Expr {
	return Expr{n: intern(n)}
}

// Sort reports the value kind this Expr produces.
func (e Expr) Sort() Kind { return e.n.kind }

// Bits reports the bit-vector width; 0 for non-BV sorts.
func (e Expr) Bits() uint {
	switch e.n.kind {
	case SortBV:
		return e.n.bits
	case SortFloat:
		return e.n.fk.Bits()
	case SortBool:
		return 1
	}
	return 0
}

func (e Expr) IsValid() bool { return e.n != nil }

// --- constructors -----------------------------------------------------

// MkUInt builds a bit-vector constant of the given width.
func MkUInt(v uint64, w uint) Expr {
	if w < 64 {
		v &= (uint64(1) << w) - 1
	}
	return mk(node{op: opConstBV, kind: SortBV, bits: w, constU: v})
}

// MkBool builds a boolean constant.
func MkBool(b bool) Expr {
	return mk(node{op: opConstBool, kind: SortBool, constB: b})
}

var (
	mkTrueExpr  = MkBool(true)
	mkFalseExpr = MkBool(false)
)

func MkTrue() Expr  { return mkTrueExpr }
func MkFalse() Expr { return mkFalseExpr }

// MkVar builds a fresh (named) bit-vector variable of the given width.
func MkVar(name string, w uint) Expr {
	return mk(node{op: opVar, kind: SortBV, bits: w, name: name})
}

// MkBoolVar builds a named boolean variable.
func MkBoolVar(name string) Expr {
	return mk(node{op: opVar, kind: SortBool, name: name})
}

// MkFloatVar/MkHalfVar/MkDoubleVar build named floating-point variables.
func MkFloatVar(name string) Expr  { return mkFPVar(name, Float) }
func MkHalfVar(name string) Expr   { return mkFPVar(name, Half) }
func MkDoubleVar(name string) Expr { return mkFPVar(name, Double) }

func mkFPVar(name string, fk FloatKind) Expr {
	return mk(node{op: opVar, kind: SortFloat, fk: fk, name: name})
}

// MkHalf/MkFloat/MkDouble build floating-point constants from a double
// value (the constant is tagged with its target kind for printing).
func MkHalf(v float64) Expr   { return mkFPConst(v, Half) }
func MkFloatC(v float64) Expr { return mkFPConst(v, Float) }
func MkDouble(v float64) Expr { return mkFPConst(v, Double) }

func mkFPConst(v float64, fk FloatKind) Expr {
	return mk(node{op: opConstFloat, kind: SortFloat, fk: fk, constU: floatBits(v, fk)})
}

func floatBits(v float64, fk FloatKind) uint64 {
	// stored as the IEEE bit pattern widened to 64 bits; this is purely
	// a façade-level placeholder, a real backend encodes it natively.
	switch fk {
	case Double:
		return doubleToBits(v)
	default:
		return doubleToBits(v)
	}
}

// MkForAll builds a universally quantified expression. An empty vars
// slice returns body unchanged (matching the driver's qvars-empty
// short-circuit in tvcheck.preprocess).
func MkForAll(vars []Expr, body Expr) Expr {
	if len(vars) == 0 {
		return body
	}
	children := append([]Expr{body}, vars...)
	return mk(node{op: opForAll, kind: SortBool, children: children})
}

// --- boolean combinators ----------------------------------------------

func (e Expr) Not() Expr {
	if e.IsTrue() {
		return MkFalse()
	}
	if e.IsFalse() {
		return MkTrue()
	}
	return mk(node{op: opNot, kind: SortBool, children: []Expr{e}})
}

func (a Expr) And(b Expr) Expr {
	if a.IsFalse() || b.IsFalse() {
		return MkFalse()
	}
	if a.IsTrue() {
		return b
	}
	if b.IsTrue() {
		return a
	}
	return mk(node{op: opAnd, kind: SortBool, children: []Expr{a, b}})
}

func (a Expr) Or(b Expr) Expr {
	if a.IsTrue() || b.IsTrue() {
		return MkTrue()
	}
	if a.IsFalse() {
		return b
	}
	if b.IsFalse() {
		return a
	}
	return mk(node{op: opOr, kind: SortBool, children: []Expr{a, b}})
}

// MkOr ORs together an arbitrary set of boolean terms (used by
// map_reduce's reduce step). An empty set reduces to false.
func MkOr(terms []Expr) Expr {
	r := MkFalse()
	for _, t := range terms {
		r = r.Or(t)
	}
	return r
}

// Implies is `a => b`.
func (a Expr) Implies(b Expr) Expr { return a.Not().Or(b) }

// NotImplies is `a && !b` (the negation of Implies, used directly by
// the obligation builders so the solver sees the failing predicate).
func (a Expr) NotImplies(b Expr) Expr { return a.And(b.Not()) }

// Eq builds the structural SMT-level equality term `a == b`.
func (a Expr) Eq(b Expr) Expr {
	if a.n == b.n {
		return MkTrue()
	}
	if a.n.op == opConstBV && b.n.op == opConstBV && a.n.bits == b.n.bits {
		return MkBool(a.n.constU == b.n.constU)
	}
	if a.n.op == opConstBool && b.n.op == opConstBool {
		return MkBool(a.n.constB == b.n.constB)
	}
	return mk(node{op: opEq, kind: SortBool, children: []Expr{a, b}})
}

// Neq is the negated equality, used for disequality obligations.
func (a Expr) Neq(b Expr) Expr { return a.Eq(b).Not() }

// --- unsigned bit-vector comparisons & arithmetic ----------------------

func (a Expr) cmp(o op, b Expr) Expr {
	if x, aok := a.IsUInt(); aok {
		if y, bok := b.IsUInt(); bok {
			switch o {
			case opUlt:
				return MkBool(x < y)
			case opUle:
				return MkBool(x <= y)
			case opUgt:
				return MkBool(x > y)
			case opUge:
				return MkBool(x >= y)
			}
		}
	}
	return mk(node{op: o, kind: SortBool, children: []Expr{a, b}})
}

func (a Expr) Ult(b Expr) Expr { return a.cmp(opUlt, b) }
func (a Expr) Ule(b Expr) Expr { return a.cmp(opUle, b) }
func (a Expr) Ugt(b Expr) Expr { return a.cmp(opUgt, b) }
func (a Expr) Uge(b Expr) Expr { return a.cmp(opUge, b) }

// Extract slices bits [high:low] inclusive, matching LLVM/SMT-LIB
// extract ordering (high >= low).
func (e Expr) Extract(high, low uint) Expr {
	w := high - low + 1
	if e.n.op == opConstBV {
		v := (e.n.constU >> low)
		if w < 64 {
			v &= (uint64(1) << w) - 1
		}
		return MkUInt(v, w)
	}
	if low == 0 && e.n.kind == SortBV && w == e.n.bits {
		return e
	}
	// extract over concat narrows to whichever side fully covers the
	// range; this is the rule that lets a lane-by-lane repack of a
	// vector collapse back to the original packed input.
	if e.n.op == opConcat {
		hi, lo := e.n.children[0], e.n.children[1]
		lw := lo.Bits()
		if low >= lw {
			return hi.Extract(high-lw, low-lw)
		}
		if high < lw {
			return lo.Extract(high, low)
		}
	}
	return mk(node{op: opExtract, kind: SortBV, bits: w, constU: uint64(high)<<32 | uint64(low),
		children: []Expr{e}})
}

// Concat concatenates two bit-vectors, a at the high bits.
func (a Expr) Concat(b Expr) Expr {
	w := a.Bits() + b.Bits()
	if a.n.op == opConstBV && b.n.op == opConstBV {
		return MkUInt(a.n.constU<<b.Bits()|b.n.constU, w)
	}
	return mk(node{op: opConcat, kind: SortBV, bits: w, children: []Expr{a, b}})
}

// Shl is a logical left shift by amt (same width as e).
func (e Expr) Shl(amt Expr) Expr {
	if v, eok := e.IsUInt(); eok {
		if s, aok := amt.IsUInt(); aok {
			if s >= uint64(e.Bits()) {
				return MkUInt(0, e.Bits())
			}
			return MkUInt(v<<s, e.Bits())
		}
	}
	return mk(node{op: opShl, kind: SortBV, bits: e.Bits(), children: []Expr{e, amt}})
}

// Lshr is a logical right shift by amt.
func (e Expr) Lshr(amt Expr) Expr {
	if v, eok := e.IsUInt(); eok {
		if s, aok := amt.IsUInt(); aok {
			if s >= uint64(e.Bits()) {
				return MkUInt(0, e.Bits())
			}
			return MkUInt(v>>s, e.Bits())
		}
	}
	return mk(node{op: opLshr, kind: SortBV, bits: e.Bits(), children: []Expr{e, amt}})
}

// ZExtOrTrunc resizes e to width w by zero-extension or truncation.
func (e Expr) ZExtOrTrunc(w uint) Expr {
	if e.Bits() == w {
		return e
	}
	if e.Bits() > w {
		return e.Extract(w-1, 0)
	}
	if v, ok := e.IsUInt(); ok {
		return MkUInt(v, w)
	}
	return mk(node{op: opZExt, kind: SortBV, bits: w, children: []Expr{e}})
}

// Ite is `cond ? a : b`, used by the aggregate type's dynamic-index
// extract (a symbolic vector/array index selects among its elements).
// a and b must share a sort and width.
func (cond Expr) Ite(a, b Expr) Expr {
	if cond.IsTrue() {
		return a
	}
	if cond.IsFalse() {
		return b
	}
	return mk(node{op: opIte, kind: a.n.kind, bits: a.n.bits, fk: a.n.fk, children: []Expr{cond, a, b}})
}

// --- float <-> bit-vector conversions -----------------------------------

func (e Expr) Float2BV() Expr {
	return mk(node{op: opFloat2BV, kind: SortBV, bits: e.n.fk.Bits(), children: []Expr{e}})
}

// BV2Float reinterprets e (a bit-vector) as a float of dummy's kind.
func (e Expr) BV2Float(dummy Expr) Expr {
	return mk(node{op: opBV2Float, kind: SortFloat, fk: dummy.n.fk, children: []Expr{e}})
}

func (e Expr) IsNaN() Expr { return mk(node{op: opIsNaN, kind: SortBool, children: []Expr{e}}) }
func (e Expr) IsFPZero() Expr {
	return mk(node{op: opFPZero, kind: SortBool, children: []Expr{e}})
}
func (e Expr) IsFPNeg() Expr { return mk(node{op: opFPNeg, kind: SortBool, children: []Expr{e}}) }
func (e Expr) IsInf() Expr   { return mk(node{op: opIsInf, kind: SortBool, children: []Expr{e}}) }
func (e Expr) Float2Real() Expr {
	return mk(node{op: opFloat2Real, kind: SortBV, bits: 64, children: []Expr{e}})
}

// ToBVBool converts a boolean into a 1-bit vector (0/1).
func (e Expr) ToBVBool() Expr {
	if e.n.kind == SortBV {
		return e
	}
	if e.IsTrue() {
		return MkUInt(1, 1)
	}
	if e.IsFalse() {
		return MkUInt(0, 1)
	}
	return mk(node{op: opZExt, kind: SortBV, bits: 1, children: []Expr{e}})
}

// --- inspection ---------------------------------------------------------

func (e Expr) IsConst() bool {
	switch e.n.op {
	case opConstBV, opConstBool, opConstFloat:
		return true
	}
	return false
}

func (e Expr) IsTrue() bool  { return e.n.op == opConstBool && e.n.constB }
func (e Expr) IsFalse() bool { return e.n.op == opConstBool && !e.n.constB }

// IsUInt reports whether e is a constant bit-vector and returns its value.
func (e Expr) IsUInt() (uint64, bool) {
	if e.n.op == opConstBV {
		return e.n.constU, true
	}
	return 0, false
}

// IdenticalTo is Go-level identity of the underlying node pointer: since
// every node is hash-consed (intern.go), this is true exactly when a and
// b were built from structurally identical terms, regardless of which
// call site produced them. It is not full semantic equality after
// simplification: x+0 and x are IdenticalTo only once something has
// actually simplified one into the other.
func (a Expr) IdenticalTo(b Expr) bool { return a.n == b.n }

// Vars returns the set of free variables appearing in e, sorted by
// name for deterministic iteration (counterexample text must not
// depend on map iteration order).
func (e Expr) Vars() []Expr {
	seen := map[string]Expr{}
	var walk func(Expr)
	walk = func(x Expr) {
		if x.n.op == opVar {
			seen[x.n.name] = x
			return
		}
		for _, c := range x.n.children {
			walk(c)
		}
	}
	walk(e)
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Expr, 0, len(names))
	for _, n := range names {
		out = append(out, seen[n])
	}
	return out
}

// String renders e in a human-readable infix form, good enough for the
// error reporter and for debugging; it is not SMT-LIB syntax.
func (e Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e Expr) write(b *strings.Builder) {
	n := e.n
	switch n.op {
	case opConstBV:
		fmt.Fprintf(b, "%d", n.constU)
	case opConstBool:
		fmt.Fprintf(b, "%v", n.constB)
	case opConstFloat:
		fmt.Fprintf(b, "%#x", n.constU)
	case opVar:
		b.WriteString(n.name)
	case opForAll:
		b.WriteString("forall ")
		names := make([]string, 0, len(n.children)-1)
		for _, v := range n.children[1:] {
			names = append(names, v.n.name)
		}
		slices.Sort(names)
		b.WriteString(strings.Join(names, ","))
		b.WriteString(" . ")
		n.children[0].write(b)
	case opNot:
		b.WriteString("!(")
		n.children[0].write(b)
		b.WriteString(")")
	case opAnd:
		b.WriteString("(")
		n.children[0].write(b)
		b.WriteString(" && ")
		n.children[1].write(b)
		b.WriteString(")")
	case opOr:
		b.WriteString("(")
		n.children[0].write(b)
		b.WriteString(" || ")
		n.children[1].write(b)
		b.WriteString(")")
	case opEq:
		b.WriteString("(")
		n.children[0].write(b)
		b.WriteString(" == ")
		n.children[1].write(b)
		b.WriteString(")")
	case opIte:
		b.WriteString("ite(")
		n.children[0].write(b)
		b.WriteString(", ")
		n.children[1].write(b)
		b.WriteString(", ")
		n.children[2].write(b)
		b.WriteString(")")
	default:
		fmt.Fprintf(b, "<op %d>", n.op)
	}
}
