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

// AggregateType is the shared base for Array, Vector and Struct: a
// sequence of up to maxAggregateLen element types, flat-packed into a
// single bit-vector (high element first, matching Concat, which puts
// its receiver at the high bits).
//
// Struct owns a distinct Type per field (owned == true); Array and
// Vector instead share one elementType across all numElem slots
// (owned == false) so a symbolic element type is a single SMT
// sub-problem rather than one copy per slot, matching the ground
// truth's aggregate_type holding one child pointer plus a count for
// array/vector and N child pointers for struct.
type AggregateType struct {
	name    string
	open    string // "{" for struct, "<" for array/vector
	close   string // "}" for struct, ">" for array/vector
	owned   bool
	elem    Type   // shared element type; nil when owned
	fields  []Type // per-field types; nil unless owned
	numElem uint
	Defined bool
}

func (t *AggregateType) Name() string { return t.name }

// NumElements is the aggregate's element count (SizeVar's value, once
// resolved).
func (t *AggregateType) NumElements() uint { return t.numElem }

// elemAt returns the type of slot i.
func (t *AggregateType) elemAt(i uint) Type {
	if t.owned {
		return t.fields[i]
	}
	return t.elem
}

func (t *AggregateType) Bits() uint {
	var w uint
	for i := uint(0); i < t.numElem; i++ {
		w += t.elemAt(i).Bits()
	}
	return w
}

func (t *AggregateType) GetDummyValue() smt.Expr {
	v := t.elemAt(0).GetDummyValue()
	for i := uint(1); i < t.numElem; i++ {
		v = v.Concat(t.elemAt(i).GetDummyValue())
	}
	return v
}

func (t *AggregateType) TypeVar() smt.Expr { return mkVar(t, "type", varTypeBits) }

func (t *AggregateType) SizeVar() smt.Expr {
	if t.Defined {
		return smt.MkUInt(uint64(t.numElem), varElementsBits)
	}
	return mkVar(t, "nelem", varElementsBits)
}

// GetTypeConstraints conjoins every distinct element type's own
// constraints with the aggregate's own element-count bound.
func (t *AggregateType) GetTypeConstraints() smt.Expr {
	r := smt.MkTrue()
	if !t.Defined {
		r = t.SizeVar().Ule(smt.MkUInt(maxAggregateLen, varElementsBits)).
			And(t.SizeVar().Neq(smt.MkUInt(0, varElementsBits)))
	}
	if t.owned {
		for _, f := range t.fields {
			r = r.And(f.GetTypeConstraints())
		}
	} else if t.elem != nil {
		r = r.And(t.elem.GetTypeConstraints())
	}
	return r
}

func (t *AggregateType) sameShape(other *AggregateType) smt.Expr {
	if t.owned != other.owned {
		return smt.MkFalse()
	}
	r := t.SizeVar().Eq(other.SizeVar())
	if !t.owned {
		// One shared element type, so this also covers an aggregate
		// whose element count is still a free SizeVar.
		return r.And(t.elem.Equal(other.elem))
	}
	if t.numElem != other.numElem {
		return smt.MkFalse()
	}
	for i := uint(0); i < t.numElem; i++ {
		r = r.And(t.elemAt(i).Equal(other.elemAt(i)))
	}
	return r
}

func (t *AggregateType) Fixup(m smt.Model) {
	if !t.Defined {
		t.numElem = uint(m.GetUInt(t.SizeVar()))
		t.Defined = true
	}
	if t.owned {
		for _, f := range t.fields {
			f.Fixup(m)
		}
	} else if t.elem != nil {
		t.elem.Fixup(m)
	}
}

func (t *AggregateType) IsIntType() bool   { return false }
func (t *AggregateType) IsFloatType() bool { return false }
func (t *AggregateType) IsPtrType() bool   { return false }

func (t *AggregateType) EnforceInt(bits uint) smt.Expr     { return smt.MkFalse() }
func (t *AggregateType) EnforceFloat() smt.Expr            { return smt.MkFalse() }
func (t *AggregateType) EnforcePtr() smt.Expr              { return smt.MkFalse() }
func (t *AggregateType) EnforceIntOrVector() smt.Expr      { return smt.MkFalse() }
func (t *AggregateType) EnforceIntOrPtrOrVector() smt.Expr { return smt.MkFalse() }
func (t *AggregateType) EnforceStruct() smt.Expr           { return smt.MkFalse() }

// EnforceAggregate matches when the number of elements agrees and
// every element slot can itself be forced to the requested type.
func (t *AggregateType) EnforceAggregate(elems []Type) smt.Expr {
	if uint(len(elems)) != t.numElem {
		return smt.MkFalse()
	}
	r := smt.MkTrue()
	for i, want := range elems {
		r = r.And(t.elemAt(uint(i)).Equal(want))
	}
	return r
}

// MkInput synthesizes one input per slot and flat-packs them,
// high-element-first, accumulating every fresh variable introduced.
func (t *AggregateType) MkInput(mem MemoryFacade, name string) (smt.Expr, []smt.Expr) {
	var fresh []smt.Expr
	v, fv := t.elemAt(0).MkInput(mem, fmt.Sprintf("%s.%d", name, 0))
	fresh = append(fresh, fv...)
	for i := uint(1); i < t.numElem; i++ {
		ev, efv := t.elemAt(i).MkInput(mem, fmt.Sprintf("%s.%d", name, i))
		v = v.Concat(ev)
		fresh = append(fresh, efv...)
	}
	return v, fresh
}

// ToBV/FromBV are identity: an aggregate's native StateValue encoding
// is already the flat concatenation MkInput produced.
func (t *AggregateType) ToBV(v StateValue) StateValue   { return v }
func (t *AggregateType) FromBV(v StateValue) StateValue { return v }

// bitOffset returns the [high:low] bit range occupied by slot i within
// the flat encoding (slot 0 is the high end, per Concat's convention).
func (t *AggregateType) bitOffset(i uint) (high, low uint) {
	total := t.Bits()
	var before uint
	for j := uint(0); j < i; j++ {
		before += t.elemAt(j).Bits()
	}
	w := t.elemAt(i).Bits()
	high = total - before - 1
	low = high - w + 1
	return high, low
}

// ExtractStatic reads the StateValue of slot i out of a flat-packed
// aggregate StateValue, for a compile-time-constant index.
func (t *AggregateType) ExtractStatic(v StateValue, i uint) StateValue {
	high, low := t.bitOffset(i)
	return StateValue{
		Value:     v.Value.Extract(high, low),
		NonPoison: v.NonPoison,
	}
}

// ExtractDynamic reads the element at a symbolic index (used by
// Vector, whose index need not be a compile-time constant): it folds
// a chain of Ite guards over every legal index, matching how a real
// backend would lower a symbolic extractelement.
func (t *AggregateType) ExtractDynamic(v StateValue, idx smt.Expr) StateValue {
	if t.numElem == 0 {
		panic("types: extract from empty aggregate")
	}
	result := t.ExtractStatic(v, t.numElem-1).Value
	for i := t.numElem - 1; i > 0; i-- {
		cond := idx.Eq(smt.MkUInt(uint64(i-1), idx.Bits()))
		result = cond.Ite(t.ExtractStatic(v, i-1).Value, result)
	}
	return StateValue{Value: result, NonPoison: v.NonPoison}
}

// MapReduce recurses into every slot and flattens the per-leaf
// results, so a scalar leaf contributes exactly one term and the
// caller (the value obligation) ORs them all together via smt.MkOr.
func (t *AggregateType) MapReduce(mapFn func(a, b StateValue) smt.Expr, a, b StateValue) []smt.Expr {
	var out []smt.Expr
	for i := uint(0); i < t.numElem; i++ {
		ea := t.ExtractStatic(a, i)
		eb := t.ExtractStatic(b, i)
		out = append(out, t.elemAt(i).MapReduce(mapFn, ea, eb)...)
	}
	return out
}

// CacheKey folds in a tag derived from the open bracket (so Array,
// Vector and Struct never collide despite sharing this base), the
// element count and owned-ness, and every child element's own
// CacheKey; the aggregate's own name only matters while undefined,
// same as the scalar types.
func (t *AggregateType) CacheKey() uint64 {
	tag := byte(4)
	if len(t.open) > 0 {
		tag += t.open[0]
	}
	extra := uint64(t.numElem)
	if t.owned {
		extra |= uint64(1) << 32
	}
	var children []uint64
	if t.owned {
		children = make([]uint64, 0, len(t.fields))
		for _, f := range t.fields {
			children = append(children, f.CacheKey())
		}
	} else if t.elem != nil {
		children = []uint64{t.elem.CacheKey()}
	}
	return shapeHash(tag, extra, t.name, !t.Defined, children...)
}

func (t *AggregateType) PrintVal(w io.Writer, mem MemoryFacade, e smt.Expr) {
	sv := StateValue{Value: e, NonPoison: smt.MkTrue()}
	io.WriteString(w, t.open)
	for i := uint(0); i < t.numElem; i++ {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		t.elemAt(i).PrintVal(w, mem, t.ExtractStatic(sv, i).Value)
	}
	io.WriteString(w, t.close)
}
