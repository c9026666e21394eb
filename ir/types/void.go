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
	"io"

	"github.com/tv-core/tvcheck/smt"
)

// VoidType is the type of a function with no return value. Bits() and
// GetDummyValue() are undefined operations on it and panic.
type VoidType struct{}

// Void is the single shared instance: a value type with no fields has
// nothing to race on, so one package-level instance suffices.
var Void = &VoidType{}

func (t *VoidType) Name() string { return "void" }
func (t *VoidType) Bits() uint   { return unreachableBits(t) }

func (t *VoidType) GetDummyValue() smt.Expr {
	panic("types: getDummyValue undefined on void")
}

func (t *VoidType) TypeVar() smt.Expr { return mkVar(t, "type", varTypeBits) }
func (t *VoidType) SizeVar() smt.Expr { return mkVar(t, "bw", varBWBits) }

func (t *VoidType) GetTypeConstraints() smt.Expr { return smt.MkTrue() }

func (t *VoidType) Equal(other Type) smt.Expr {
	if _, ok := other.(*VoidType); ok {
		return smt.MkTrue()
	}
	return smt.MkFalse()
}

func (t *VoidType) SameType(other Type) smt.Expr { return t.Equal(other) }

func (t *VoidType) EnforceInt(bits uint) smt.Expr          { return smt.MkFalse() }
func (t *VoidType) EnforceFloat() smt.Expr                 { return smt.MkFalse() }
func (t *VoidType) EnforcePtr() smt.Expr                   { return smt.MkFalse() }
func (t *VoidType) EnforceIntOrVector() smt.Expr           { return smt.MkFalse() }
func (t *VoidType) EnforceIntOrPtrOrVector() smt.Expr      { return smt.MkFalse() }
func (t *VoidType) EnforceStruct() smt.Expr                { return smt.MkFalse() }
func (t *VoidType) EnforceAggregate(elems []Type) smt.Expr { return smt.MkFalse() }

func (t *VoidType) Fixup(m smt.Model) {}

func (t *VoidType) MkInput(mem MemoryFacade, name string) (smt.Expr, []smt.Expr) {
	panic("types: mkInput undefined on void")
}

func (t *VoidType) PrintVal(w io.Writer, mem MemoryFacade, e smt.Expr) {
	panic("types: printVal undefined on void")
}

func (t *VoidType) ToBV(v StateValue) StateValue   { return v }
func (t *VoidType) FromBV(v StateValue) StateValue { return v }

func (t *VoidType) MapReduce(mapFn func(a, b StateValue) smt.Expr, a, b StateValue) []smt.Expr {
	return []smt.Expr{mapFn(a, b)}
}

func (t *VoidType) CacheKey() uint64 { return shapeHash(0, 0, "", false) }

func (t *VoidType) IsIntType() bool   { return false }
func (t *VoidType) IsFloatType() bool { return false }
func (t *VoidType) IsPtrType() bool   { return false }

func (t *VoidType) String() string { return "void" }
