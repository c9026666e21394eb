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

package types

import (
	"fmt"
	"io"

	"github.com/tv-core/tvcheck/smt"
)

// SymbolicType is a disjoint-union placeholder: one optional child per
// concrete kind it admits, a 3-bit typeVar selecting among them, and a
// resolved field that Fixup sets once a model has been found.
//
// Array and Struct are deliberately never admitted here: a struct's
// field layout and an array's element count can't be synthesized from
// a bare admitted-kind bitmask the way Int's width or Vector's lane
// count can. NewSymbolicType panics when its mask admits either (see
// DESIGN.md, Open Questions).
type SymbolicType struct {
	name     string
	admitted Mask
	resolved TypeNum

	i *IntType
	f *FloatType
	p *PtrType
	v *VectorType
}

// NewSymbolicType builds an unresolved placeholder admitting exactly
// the kinds in mask. vecElem is only consulted when mask admits
// KVector (the vector's lane type, itself symbolic over
// Int/Float/Ptr); pass nil otherwise.
func NewSymbolicType(name string, mask Mask, vecElem Type) *SymbolicType {
	if mask.Has(KArray) || mask.Has(KStruct) {
		panic("types: symbolic type cannot admit array or struct")
	}
	t := &SymbolicType{name: name, admitted: mask, resolved: Undefined}
	if mask.Has(KInt) {
		t.i = NewSymbolicIntType(name + ".int")
	}
	if mask.Has(KFloat) {
		t.f = NewSymbolicFloatType(name + ".float")
	}
	if mask.Has(KPtr) {
		t.p = &PtrType{name: name + ".ptr"}
	}
	if mask.Has(KVector) {
		if vecElem == nil {
			vecElem = NewSymbolicType(name+".vec.elem", MaskOf(KInt, KFloat, KPtr), nil)
		}
		t.v = &VectorType{AggregateType{
			name: name + ".vec", open: "<", close: ">",
			owned: false, elem: vecElem,
		}}
	}
	return t
}

func (t *SymbolicType) Name() string { return t.name }

// current returns the Type this placeholder currently behaves as: the
// resolved concrete child once Fixup has run, or nil beforehand.
func (t *SymbolicType) current() Type {
	switch t.resolved {
	case KInt:
		return t.i
	case KFloat:
		return t.f
	case KPtr:
		return t.p
	case KVector:
		return t.v
	}
	return nil
}

func (t *SymbolicType) requireResolved(op string) Type {
	c := t.current()
	if c == nil {
		panic(fmt.Sprintf("types: %s on unresolved symbolic type %s", op, t.name))
	}
	return c
}

func (t *SymbolicType) Bits() uint              { return t.requireResolved("bits").Bits() }
func (t *SymbolicType) GetDummyValue() smt.Expr { return t.requireResolved("getDummyValue").GetDummyValue() }

// TypeVar is a free variable only until resolved; afterwards it
// behaves like every other definite type's Defined-gated accessor
// (IntType.SizeVar, PtrType.ASVar, ...) and folds to a constant so
// Equal/GetTypeConstraints collapse to the resolved kind's own terms.
func (t *SymbolicType) TypeVar() smt.Expr {
	if t.resolved != Undefined {
		return smt.MkUInt(uint64(t.resolved), varTypeBits)
	}
	return mkVar(t, "type", varTypeBits)
}

func (t *SymbolicType) SizeVar() smt.Expr {
	if c := t.current(); c != nil {
		return c.SizeVar()
	}
	return mkVar(t, "bw", varBWBits)
}

// GetTypeConstraints is a disjunction, one disjunct per admitted kind:
// typeVar selects the kind, and that kind's own constraints must hold.
// Vector is included (unlike array/struct) because a vector's element
// type is itself recursively constrained by VectorType.GetTypeConstraints.
func (t *SymbolicType) GetTypeConstraints() smt.Expr {
	r := smt.MkFalse()
	tv := t.TypeVar()
	if t.i != nil {
		r = r.Or(tv.Eq(smt.MkUInt(uint64(KInt), varTypeBits)).And(t.i.GetTypeConstraints()))
	}
	if t.f != nil {
		r = r.Or(tv.Eq(smt.MkUInt(uint64(KFloat), varTypeBits)).And(t.f.GetTypeConstraints()))
	}
	if t.p != nil {
		r = r.Or(tv.Eq(smt.MkUInt(uint64(KPtr), varTypeBits)).And(t.p.GetTypeConstraints()))
	}
	if t.v != nil {
		r = r.Or(tv.Eq(smt.MkUInt(uint64(KVector), varTypeBits)).And(t.v.GetTypeConstraints()))
	}
	return r
}

// Equal double-dispatches against every concrete kind the other side
// might be, plus the fully general symbolic/symbolic case.
func (t *SymbolicType) Equal(other Type) smt.Expr {
	if rhs, ok := other.(*SymbolicType); ok {
		return t.equalSymbolic(rhs)
	}
	// A symbolic type equals a concrete type iff its typeVar selects
	// that concrete kind and the matching child is equal to it.
	tv := t.TypeVar()
	switch rhs := other.(type) {
	case *IntType:
		if t.i == nil {
			return smt.MkFalse()
		}
		return tv.Eq(smt.MkUInt(uint64(KInt), varTypeBits)).And(t.i.Equal(rhs))
	case *FloatType:
		if t.f == nil {
			return smt.MkFalse()
		}
		return tv.Eq(smt.MkUInt(uint64(KFloat), varTypeBits)).And(t.f.Equal(rhs))
	case *PtrType:
		if t.p == nil {
			return smt.MkFalse()
		}
		return tv.Eq(smt.MkUInt(uint64(KPtr), varTypeBits)).And(t.p.Equal(rhs))
	case *VectorType:
		if t.v == nil {
			return smt.MkFalse()
		}
		return tv.Eq(smt.MkUInt(uint64(KVector), varTypeBits)).And(t.v.Equal(rhs))
	case *ArrayType, *StructType:
		// Never admitted: a symbolic type can't equal an array or
		// struct (see the constructor's comment and DESIGN.md).
		return smt.MkFalse()
	default:
		return smt.MkFalse()
	}
}

func (t *SymbolicType) equalSymbolic(rhs *SymbolicType) smt.Expr {
	r := smt.MkFalse()
	tv, rv := t.TypeVar(), rhs.TypeVar()
	sameKind := tv.Eq(rv)
	if t.i != nil && rhs.i != nil {
		r = r.Or(sameKind.And(tv.Eq(smt.MkUInt(uint64(KInt), varTypeBits))).And(t.i.Equal(rhs.i)))
	}
	if t.f != nil && rhs.f != nil {
		r = r.Or(sameKind.And(tv.Eq(smt.MkUInt(uint64(KFloat), varTypeBits))).And(t.f.Equal(rhs.f)))
	}
	if t.p != nil && rhs.p != nil {
		r = r.Or(sameKind.And(tv.Eq(smt.MkUInt(uint64(KPtr), varTypeBits))).And(t.p.Equal(rhs.p)))
	}
	if t.v != nil && rhs.v != nil {
		r = r.Or(sameKind.And(tv.Eq(smt.MkUInt(uint64(KVector), varTypeBits))).And(t.v.Equal(rhs.v)))
	}
	return r
}

func (t *SymbolicType) SameType(other Type) smt.Expr {
	if rhs, ok := other.(*SymbolicType); ok {
		return t.TypeVar().Eq(rhs.TypeVar())
	}
	var want TypeNum
	switch other.(type) {
	case *IntType:
		want = KInt
	case *FloatType:
		want = KFloat
	case *PtrType:
		want = KPtr
	case *VectorType:
		want = KVector
	default:
		return smt.MkFalse()
	}
	if !t.admitted.Has(want) {
		return smt.MkFalse()
	}
	return t.TypeVar().Eq(smt.MkUInt(uint64(want), varTypeBits))
}

// Fixup reads the model's choice of kind out of typeVar, then
// delegates to that kind's own Fixup so its width/shape resolves too.
func (t *SymbolicType) Fixup(m smt.Model) {
	t.resolved = TypeNum(m.GetUInt(t.TypeVar()))
	if c := t.current(); c != nil {
		c.Fixup(m)
	}
}

func (t *SymbolicType) IsIntType() bool   { return t.resolved == KInt }
func (t *SymbolicType) IsFloatType() bool { return t.resolved == KFloat }
func (t *SymbolicType) IsPtrType() bool   { return t.resolved == KPtr }

func (t *SymbolicType) EnforceInt(bits uint) smt.Expr {
	if t.i == nil {
		return smt.MkFalse()
	}
	return t.TypeVar().Eq(smt.MkUInt(uint64(KInt), varTypeBits)).And(t.i.EnforceInt(bits))
}

func (t *SymbolicType) EnforceFloat() smt.Expr {
	if t.f == nil {
		return smt.MkFalse()
	}
	return t.TypeVar().Eq(smt.MkUInt(uint64(KFloat), varTypeBits))
}

func (t *SymbolicType) EnforcePtr() smt.Expr {
	if t.p == nil {
		return smt.MkFalse()
	}
	return t.TypeVar().Eq(smt.MkUInt(uint64(KPtr), varTypeBits))
}

func (t *SymbolicType) EnforceIntOrVector() smt.Expr {
	r := smt.MkFalse()
	if t.i != nil {
		r = r.Or(t.TypeVar().Eq(smt.MkUInt(uint64(KInt), varTypeBits)))
	}
	if t.v != nil {
		r = r.Or(t.TypeVar().Eq(smt.MkUInt(uint64(KVector), varTypeBits)))
	}
	return r
}

func (t *SymbolicType) EnforceIntOrPtrOrVector() smt.Expr {
	r := t.EnforceIntOrVector()
	if t.p != nil {
		r = r.Or(t.TypeVar().Eq(smt.MkUInt(uint64(KPtr), varTypeBits)))
	}
	return r
}

func (t *SymbolicType) EnforceStruct() smt.Expr { return smt.MkFalse() }

func (t *SymbolicType) EnforceAggregate(elems []Type) smt.Expr {
	if t.v == nil {
		return smt.MkFalse()
	}
	return t.TypeVar().Eq(smt.MkUInt(uint64(KVector), varTypeBits)).And(t.v.EnforceAggregate(elems))
}

func (t *SymbolicType) MkInput(mem MemoryFacade, name string) (smt.Expr, []smt.Expr) {
	return t.requireResolved("mkInput").MkInput(mem, name)
}

func (t *SymbolicType) PrintVal(w io.Writer, mem MemoryFacade, e smt.Expr) {
	t.requireResolved("printVal").PrintVal(w, mem, e)
}

func (t *SymbolicType) ToBV(v StateValue) StateValue   { return t.requireResolved("toBV").ToBV(v) }
func (t *SymbolicType) FromBV(v StateValue) StateValue { return t.requireResolved("fromBV").FromBV(v) }

func (t *SymbolicType) MapReduce(mapFn func(a, b StateValue) smt.Expr, a, b StateValue) []smt.Expr {
	return t.requireResolved("mapReduce").MapReduce(mapFn, a, b)
}

// CacheKey always folds in t.name: even once resolved, a SymbolicType
// keeps the name-qualified sub-types it was constructed with (Fixup
// narrows which one is current, it doesn't rebuild them), so two
// instances can never safely share a cache entry.
func (t *SymbolicType) CacheKey() uint64 {
	extra := uint64(t.admitted) | uint64(t.resolved)<<8
	var children []uint64
	if t.i != nil {
		children = append(children, t.i.CacheKey())
	}
	if t.f != nil {
		children = append(children, t.f.CacheKey())
	}
	if t.p != nil {
		children = append(children, t.p.CacheKey())
	}
	if t.v != nil {
		children = append(children, t.v.CacheKey())
	}
	return shapeHash(7, extra, t.name, true, children...)
}

func (t *SymbolicType) String() string {
	if c := t.current(); c != nil {
		return c.String()
	}
	return "?" + t.name
}
