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

// FloatType is one of Half/Float/Double. Half is accepted as a
// concrete type but GetTypeConstraints refuses to pick it for an
// undefined FloatType; support for it as a resolvable Symbolic kind
// is not yet implemented.
type FloatType struct {
	name    string
	kind    smt.FloatKind
	Defined bool
}

func NewFloatType(name string, k smt.FloatKind) *FloatType {
	return &FloatType{name: name, kind: k, Defined: true}
}

func NewSymbolicFloatType(name string) *FloatType {
	return &FloatType{name: name}
}

func (t *FloatType) Name() string { return t.name }
func (t *FloatType) Bits() uint   { return t.kind.Bits() }

func (t *FloatType) GetDummyValue() smt.Expr {
	switch t.kind {
	case smt.Half:
		return smt.MkHalf(0)
	case smt.Float:
		return smt.MkFloatC(0)
	case smt.Double:
		return smt.MkDouble(0)
	}
	panic("types: unknown float kind")
}

func (t *FloatType) TypeVar() smt.Expr { return mkVar(t, "type", varTypeBits) }

func (t *FloatType) SizeVar() smt.Expr {
	if t.Defined {
		return smt.MkUInt(uint64(t.kind), varBWBits)
	}
	return mkVar(t, "bw", varBWBits)
}

func (t *FloatType) GetTypeConstraints() smt.Expr {
	if t.Defined {
		return smt.MkTrue()
	}
	bw := t.SizeVar()
	isFloat := bw.Eq(smt.MkUInt(uint64(smt.Float), varBWBits))
	isDouble := bw.Eq(smt.MkUInt(uint64(smt.Double), varBWBits))
	return isFloat.Or(isDouble)
}

func (t *FloatType) Equal(other Type) smt.Expr {
	switch rhs := other.(type) {
	case *FloatType:
		return t.SizeVar().Eq(rhs.SizeVar())
	case *SymbolicType:
		return rhs.Equal(t)
	default:
		return smt.MkFalse()
	}
}

func (t *FloatType) SameType(other Type) smt.Expr {
	switch other.(type) {
	case *FloatType:
		return smt.MkTrue()
	case *SymbolicType:
		return other.SameType(t)
	default:
		return smt.MkFalse()
	}
}

func (t *FloatType) Fixup(m smt.Model) {
	if t.Defined {
		return
	}
	t.kind = smt.FloatKind(m.GetUInt(t.SizeVar()))
	t.Defined = true
}

func (t *FloatType) IsIntType() bool   { return false }
func (t *FloatType) IsFloatType() bool { return true }
func (t *FloatType) IsPtrType() bool   { return false }

func (t *FloatType) EnforceInt(bits uint) smt.Expr          { return smt.MkFalse() }
func (t *FloatType) EnforceFloat() smt.Expr                 { return smt.MkTrue() }
func (t *FloatType) EnforcePtr() smt.Expr                   { return smt.MkFalse() }
func (t *FloatType) EnforceIntOrVector() smt.Expr           { return smt.MkFalse() }
func (t *FloatType) EnforceIntOrPtrOrVector() smt.Expr      { return smt.MkFalse() }
func (t *FloatType) EnforceStruct() smt.Expr                { return smt.MkFalse() }
func (t *FloatType) EnforceAggregate(elems []Type) smt.Expr { return smt.MkFalse() }

func (t *FloatType) MkInput(mem MemoryFacade, name string) (smt.Expr, []smt.Expr) {
	var v smt.Expr
	switch t.kind {
	case smt.Half:
		v = smt.MkHalfVar(name)
	case smt.Float:
		v = smt.MkFloatVar(name)
	case smt.Double:
		v = smt.MkDoubleVar(name)
	default:
		panic("types: mkInput on unresolved float kind")
	}
	return v, []smt.Expr{v}
}

func (t *FloatType) ToBV(v StateValue) StateValue {
	return StateValue{Value: v.Value.Float2BV(), NonPoison: v.NonPoison.ToBVBool()}
}

func (t *FloatType) FromBV(v StateValue) StateValue {
	return StateValue{Value: v.Value.BV2Float(t.GetDummyValue()), NonPoison: v.NonPoison.Eq(smt.MkUInt(1, 1))}
}

func (t *FloatType) MapReduce(mapFn func(a, b StateValue) smt.Expr, a, b StateValue) []smt.Expr {
	return []smt.Expr{mapFn(a, b)}
}

func (t *FloatType) PrintVal(w io.Writer, mem MemoryFacade, e smt.Expr) {
	switch {
	case e.IsNaN().Simplify().IsTrue():
		fmt.Fprint(w, "NaN")
	case e.IsFPZero().Simplify().IsTrue():
		if e.IsFPNeg().Simplify().IsTrue() {
			fmt.Fprint(w, "-0.0")
		} else {
			fmt.Fprint(w, "+0.0")
		}
	case e.IsInf().Simplify().IsTrue():
		if e.IsFPNeg().Simplify().IsTrue() {
			fmt.Fprint(w, "-oo")
		} else {
			fmt.Fprint(w, "+oo")
		}
	default:
		e.Float2BV().PrintHexadecimal(w)
		fmt.Fprintf(w, " (%s)", e.Float2Real().Simplify().NumeralString())
	}
}

func (t *FloatType) CacheKey() uint64 {
	return shapeHash(2, uint64(t.kind), t.name, !t.Defined)
}

func (t *FloatType) String() string {
	switch t.kind {
	case smt.Half:
		return "half"
	case smt.Float:
		return "float"
	case smt.Double:
		return "double"
	}
	return ""
}
