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
	"bytes"
	"testing"

	"github.com/tv-core/tvcheck/smt"
)

func mustTrue(t *testing.T, e smt.Expr, msg string) {
	t.Helper()
	if !e.Simplify().IsTrue() {
		t.Fatalf("%s: expected true, got %s", msg, e.Simplify())
	}
}

func mustFalse(t *testing.T, e smt.Expr, msg string) {
	t.Helper()
	if !e.Simplify().IsFalse() {
		t.Fatalf("%s: expected false, got %s", msg, e.Simplify())
	}
}

func TestIntReflexivity(t *testing.T) {
	i32 := NewIntType("a", 32)
	mustTrue(t, i32.Equal(i32), "i32.Equal(i32)")
	mustTrue(t, i32.SameType(i32), "i32.SameType(i32)")

	i64 := NewIntType("b", 64)
	mustFalse(t, i32.Equal(i64), "i32.Equal(i64)")
	mustTrue(t, i32.SameType(i64), "i32.SameType(i64) (same shape, diff width)")
}

func TestFloatReflexivity(t *testing.T) {
	f := NewFloatType("a", smt.Float)
	d := NewFloatType("b", smt.Double)
	mustTrue(t, f.Equal(f), "f.Equal(f)")
	mustFalse(t, f.Equal(d), "f.Equal(d)")
	mustTrue(t, f.SameType(d), "f.SameType(d)")
}

func TestPtrAddrSpace(t *testing.T) {
	p0 := NewPtrType(0)
	p1 := NewPtrType(1)
	mustTrue(t, p0.Equal(p0), "p0.Equal(p0)")
	mustFalse(t, p0.Equal(p1), "p0.Equal(p1) (different address space)")
	mustTrue(t, p0.SameType(p1), "p0.SameType(p1)")
}

// fromBV(toBV(v)) must be the identity for every scalar value, with
// the poison bit surviving the bool <-> 1-bit-vector conversion in
// both polarities.
func TestScalarEncodingRoundTrip(t *testing.T) {
	i8 := NewIntType("x", 8)
	for _, poison := range []bool{false, true} {
		sv := StateValue{Value: smt.MkVar("%x", 8), NonPoison: smt.MkBool(!poison)}
		got := i8.FromBV(i8.ToBV(sv))
		if !got.Value.IdenticalTo(sv.Value) {
			t.Fatalf("value changed across round-trip: %s", got.Value)
		}
		np := got.NonPoison.Simplify()
		if poison && !np.IsFalse() {
			t.Fatalf("poison lost across round-trip: %s", np)
		}
		if !poison && !np.IsTrue() {
			t.Fatalf("non-poison lost across round-trip: %s", np)
		}
	}
}

func TestVectorFlatEncodingRoundTrip(t *testing.T) {
	i8 := NewIntType("e", 8)
	vec := NewVectorType("v", 4, i8)

	var packed smt.Expr
	for i := uint64(0); i < 4; i++ {
		c := smt.MkUInt(i*0x11, 8)
		if i == 0 {
			packed = c
		} else {
			packed = packed.Concat(c)
		}
	}
	sv := StateValue{Value: packed, NonPoison: smt.MkTrue()}
	for i := uint(0); i < 4; i++ {
		got := vec.ExtractStatic(sv, i).Value.Simplify()
		u, ok := got.IsUInt()
		if !ok {
			t.Fatalf("element %d: not constant: %s", i, got)
		}
		want := uint64(i) * 0x11
		if u != want {
			t.Fatalf("element %d: got 0x%x, want 0x%x", i, u, want)
		}
	}
}

func TestVectorDynamicIndex(t *testing.T) {
	i8 := NewIntType("e", 8)
	vec := NewVectorType("v", 3, i8)

	packed := smt.MkUInt(0xAA, 8).Concat(smt.MkUInt(0xBB, 8)).Concat(smt.MkUInt(0xCC, 8))
	sv := StateValue{Value: packed, NonPoison: smt.MkTrue()}

	for i, want := range []uint64{0xAA, 0xBB, 0xCC} {
		idx := smt.MkUInt(uint64(i), 2)
		got := vec.ExtractDynamic(sv, idx).Value.Simplify()
		u, ok := got.IsUInt()
		if !ok || u != want {
			t.Fatalf("index %d: got %v, want 0x%x", i, got, want)
		}
	}
}

func TestStructFieldTypes(t *testing.T) {
	i32 := NewIntType("f0", 32)
	f64 := NewFloatType("f1", smt.Double)
	s := NewStructType("s", []Type{i32, f64})

	if s.NumElements() != 2 {
		t.Fatalf("NumElements: got %d, want 2", s.NumElements())
	}
	if s.Bits() != 32+64 {
		t.Fatalf("Bits: got %d, want 96", s.Bits())
	}
	mustTrue(t, s.EnforceStruct(), "s.EnforceStruct()")
	mustFalse(t, i32.EnforceStruct(), "i32.EnforceStruct()")
}

func TestStructPrintVal(t *testing.T) {
	i8 := NewIntType("a", 8)
	i8b := NewIntType("b", 8)
	s := NewStructType("s", []Type{i8, i8b})

	val := smt.MkUInt(1, 8).Concat(smt.MkUInt(2, 8))
	var buf bytes.Buffer
	s.PrintVal(&buf, nil, val)
	got := buf.String()
	want := "{0x1 (1), 0x2 (2)}"
	if got != want {
		t.Fatalf("PrintVal: got %q, want %q", got, want)
	}
}

func TestArrayUninhabitable(t *testing.T) {
	i32 := NewIntType("e", 32)
	arr := NewArrayType("a", 4, i32)
	mustFalse(t, arr.GetTypeConstraints(), "array.GetTypeConstraints() must be unsatisfiable")
}

func TestSymbolicResolvesToAdmittedKindOnly(t *testing.T) {
	sym := NewSymbolicType("s", MaskOf(KInt, KFloat), nil)
	i16 := NewIntType("x", 16)
	p := NewPtrType(0)

	// Equal against a kind never admitted must be false, not a panic.
	mustFalse(t, sym.Equal(p), "symbolic(Int|Float).Equal(ptr)")

	m := smt.NewModel(map[string]smt.Expr{
		sym.TypeVar().String(): smt.MkUInt(uint64(KInt), varTypeBits),
		sym.i.SizeVar().String(): smt.MkUInt(16, varBWBits),
	})
	sym.Fixup(m)
	if sym.resolved != KInt {
		t.Fatalf("resolved: got %v, want KInt", sym.resolved)
	}
	mustTrue(t, sym.Equal(i16), "resolved symbolic(16).Equal(i16)")
}

func TestSymbolicRejectsArrayAndStruct(t *testing.T) {
	for _, k := range []TypeNum{KArray, KStruct} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic admitting %v", k)
				}
			}()
			NewSymbolicType("s", MaskOf(k), nil)
		}()
	}
}
