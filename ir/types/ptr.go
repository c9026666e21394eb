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

// PtrType is a pointer in a given address space. Its flat encoding
// width is a fixed system constant (offset + block id + attrs bits),
// not configurable per instance.
type PtrType struct {
	name      string
	addrSpace uint
	Defined   bool
}

func NewPtrType(addrSpace uint) *PtrType {
	name := "*"
	if addrSpace != 0 {
		name = fmt.Sprintf("as(%d)*", addrSpace)
	}
	return &PtrType{name: name, addrSpace: addrSpace, Defined: true}
}

func (t *PtrType) Name() string { return t.name }
func (t *PtrType) Bits() uint   { return ptrFlatBits }

func (t *PtrType) ASVar() smt.Expr {
	if t.Defined {
		return smt.MkUInt(uint64(t.addrSpace), 2)
	}
	return smt.MkVar(t.name+"_as", 2)
}

func (t *PtrType) GetDummyValue() smt.Expr { return smt.MkUInt(0, t.Bits()) }

func (t *PtrType) TypeVar() smt.Expr { return mkVar(t, "type", varTypeBits) }

func (t *PtrType) SizeVar() smt.Expr {
	if t.Defined {
		return smt.MkUInt(uint64(t.Bits()), varBWBits)
	}
	return mkVar(t, "bw", varBWBits)
}

func (t *PtrType) GetTypeConstraints() smt.Expr {
	return t.SizeVar().Eq(smt.MkUInt(uint64(t.Bits()), varBWBits))
}

func (t *PtrType) Equal(other Type) smt.Expr {
	switch rhs := other.(type) {
	case *PtrType:
		return t.SizeVar().Eq(rhs.SizeVar()).And(t.ASVar().Eq(rhs.ASVar()))
	case *SymbolicType:
		return rhs.Equal(t)
	default:
		return smt.MkFalse()
	}
}

func (t *PtrType) SameType(other Type) smt.Expr {
	if _, ok := other.(*PtrType); ok {
		return smt.MkTrue()
	}
	if _, ok := other.(*SymbolicType); ok {
		return other.SameType(t)
	}
	return smt.MkFalse()
}

func (t *PtrType) Fixup(m smt.Model) {
	if !t.Defined {
		t.addrSpace = uint(m.GetUInt(t.ASVar()))
		t.Defined = true
	}
}

func (t *PtrType) IsIntType() bool   { return false }
func (t *PtrType) IsFloatType() bool { return false }
func (t *PtrType) IsPtrType() bool   { return true }

func (t *PtrType) EnforceInt(bits uint) smt.Expr          { return smt.MkFalse() }
func (t *PtrType) EnforceFloat() smt.Expr                 { return smt.MkFalse() }
func (t *PtrType) EnforcePtr() smt.Expr                   { return smt.MkTrue() }
func (t *PtrType) EnforceIntOrVector() smt.Expr           { return smt.MkFalse() }
func (t *PtrType) EnforceIntOrPtrOrVector() smt.Expr      { return smt.MkTrue() }
func (t *PtrType) EnforceStruct() smt.Expr                { return smt.MkFalse() }
func (t *PtrType) EnforceAggregate(elems []Type) smt.Expr { return smt.MkFalse() }

// MkInput delegates to the external memory model: a pointer's input
// encoding is owned by whatever aliasing model is in play, not by
// this type itself.
func (t *PtrType) MkInput(mem MemoryFacade, name string) (smt.Expr, []smt.Expr) {
	return mem.MkInput(name)
}

func (t *PtrType) ToBV(v StateValue) StateValue {
	return StateValue{Value: v.Value, NonPoison: v.NonPoison.ToBVBool()}
}

func (t *PtrType) FromBV(v StateValue) StateValue {
	return StateValue{Value: v.Value, NonPoison: v.NonPoison.Eq(smt.MkUInt(1, 1))}
}

func (t *PtrType) MapReduce(mapFn func(a, b StateValue) smt.Expr, a, b StateValue) []smt.Expr {
	return []smt.Expr{mapFn(a, b)}
}

func (t *PtrType) CacheKey() uint64 {
	return shapeHash(3, uint64(t.addrSpace), t.name, !t.Defined)
}

func (t *PtrType) PrintVal(w io.Writer, mem MemoryFacade, e smt.Expr) {
	mem.PrintPointer(w, e)
}

func (t *PtrType) String() string {
	if t.addrSpace != 0 {
		return fmt.Sprintf("as(%d)*", t.addrSpace)
	}
	return "*"
}
