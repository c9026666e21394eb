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

// IntType is a fixed-width integer. When !Defined, its width is a
// free SMT variable constrained to [1, 64] by GetTypeConstraints.
type IntType struct {
	name     string
	bitwidth uint
	Defined  bool
}

// NewIntType builds a definite Int[w].
func NewIntType(name string, w uint) *IntType {
	return &IntType{name: name, bitwidth: w, Defined: true}
}

// NewSymbolicIntType builds an Int whose width is not yet resolved.
func NewSymbolicIntType(name string) *IntType {
	return &IntType{name: name}
}

func (t *IntType) Name() string { return t.name }

func (t *IntType) Bits() uint { return t.bitwidth }

func (t *IntType) GetDummyValue() smt.Expr { return smt.MkUInt(0, t.Bits()) }

func (t *IntType) TypeVar() smt.Expr { return mkVar(t, "type", varTypeBits) }

func (t *IntType) SizeVar() smt.Expr {
	if t.Defined {
		return smt.MkUInt(uint64(t.Bits()), varBWBits)
	}
	return mkVar(t, "bw", varBWBits)
}

// GetTypeConstraints: "since size cannot be unbounded, limit it
// between 1 and 64 bits if undefined".
func (t *IntType) GetTypeConstraints() smt.Expr {
	bw := t.SizeVar()
	r := bw.Neq(smt.MkUInt(0, varBWBits))
	if !t.Defined {
		r = r.And(bw.Ule(smt.MkUInt(64, varBWBits)))
	}
	return r
}

func (t *IntType) Equal(other Type) smt.Expr {
	switch rhs := other.(type) {
	case *IntType:
		return t.SizeVar().Eq(rhs.SizeVar())
	case *SymbolicType:
		return rhs.Equal(t)
	default:
		return smt.MkFalse()
	}
}

func (t *IntType) SameType(other Type) smt.Expr {
	switch other.(type) {
	case *IntType:
		return smt.MkTrue()
	case *SymbolicType:
		return other.SameType(t)
	default:
		return smt.MkFalse()
	}
}

func (t *IntType) Fixup(m smt.Model) {
	if !t.Defined {
		t.bitwidth = uint(m.GetUInt(t.SizeVar()))
		t.Defined = true
	}
}

func (t *IntType) IsIntType() bool   { return true }
func (t *IntType) IsFloatType() bool { return false }
func (t *IntType) IsPtrType() bool   { return false }

func (t *IntType) EnforceInt(bits uint) smt.Expr {
	if bits != 0 {
		return t.SizeVar().Eq(smt.MkUInt(uint64(bits), varBWBits))
	}
	return smt.MkTrue()
}

func (t *IntType) EnforceFloat() smt.Expr                 { return smt.MkFalse() }
func (t *IntType) EnforcePtr() smt.Expr                   { return smt.MkFalse() }
func (t *IntType) EnforceIntOrVector() smt.Expr           { return smt.MkTrue() }
func (t *IntType) EnforceIntOrPtrOrVector() smt.Expr      { return smt.MkTrue() }
func (t *IntType) EnforceStruct() smt.Expr                { return smt.MkFalse() }
func (t *IntType) EnforceAggregate(elems []Type) smt.Expr { return smt.MkFalse() }

func (t *IntType) MkInput(mem MemoryFacade, name string) (smt.Expr, []smt.Expr) {
	v := smt.MkVar(name, t.Bits())
	return v, []smt.Expr{v}
}

func (t *IntType) ToBV(v StateValue) StateValue {
	return StateValue{Value: v.Value, NonPoison: v.NonPoison.ToBVBool()}
}

func (t *IntType) FromBV(v StateValue) StateValue {
	return StateValue{Value: v.Value, NonPoison: v.NonPoison.Eq(smt.MkUInt(1, 1))}
}

func (t *IntType) MapReduce(mapFn func(a, b StateValue) smt.Expr, a, b StateValue) []smt.Expr {
	return []smt.Expr{mapFn(a, b)}
}

func (t *IntType) PrintVal(w io.Writer, mem MemoryFacade, e smt.Expr) {
	e.PrintHexadecimal(w)
	fmt.Fprint(w, " (")
	e.PrintUnsigned(w)
	if e.Bits() > 1 && e.IsSigned() {
		fmt.Fprint(w, ", ")
		e.PrintSigned(w)
	}
	fmt.Fprint(w, ")")
}

func (t *IntType) CacheKey() uint64 {
	return shapeHash(1, uint64(t.bitwidth), t.name, !t.Defined)
}

func (t *IntType) String() string {
	if t.Bits() == 0 {
		return ""
	}
	return fmt.Sprintf("i%d", t.Bits())
}
