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

// Package types is the polymorphic IR type lattice: definite types
// (Void, Int, Float, Ptr, Array, Vector, Struct) and Symbolic, a
// disjoint-union placeholder that resolves to one of them once the
// refinement checker's typing-assignment solver picks a model.
package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"

	"github.com/tv-core/tvcheck/smt"
)

// TypeNum indexes the concrete kinds a Symbolic type can resolve to.
// The numeric values are load-bearing: they are exactly the values a
// Symbolic type's 3-bit typeVar SMT variable ranges over.
type TypeNum uint8

const (
	Undefined TypeNum = iota
	KInt
	KFloat
	KPtr
	KArray
	KVector
	KStruct
)

func (t TypeNum) String() string {
	switch t {
	case KInt:
		return "int"
	case KFloat:
		return "float"
	case KPtr:
		return "ptr"
	case KArray:
		return "array"
	case KVector:
		return "vector"
	case KStruct:
		return "struct"
	default:
		return "undefined"
	}
}

const (
	varTypeBits     = 3
	varBWBits       = 8
	varElementsBits = 10
	maxAggregateLen = 4
	ptrFlatBits     = 64 + 8 + 8 // offset + block id + attrs
)

// Mask is a bitset of TypeNum values, used to describe which kinds a
// Symbolic type admits.
type Mask uint8

func MaskOf(kinds ...TypeNum) Mask {
	var m Mask
	for _, k := range kinds {
		m |= 1 << k
	}
	return m
}

func (m Mask) Has(k TypeNum) bool { return m&(1<<k) != 0 }

// Type is the common interface every lattice member implements. A
// "uniform default" is implemented on a shared base and concrete
// types override only where their semantics differ, expressed here as
// a Go interface rather than the closed type-switch dispatch a
// single-language AST node hierarchy would use.
type Type interface {
	// Name is the human name used to derive SMT variable names
	// ("name_role").
	Name() string

	// Bits is the width of the flat bit-vector encoding. Undefined
	// (panics) on Void and on an unresolved Symbolic.
	Bits() uint

	// GetDummyValue returns any well-typed value of this type.
	GetDummyValue() smt.Expr

	// TypeVar is the 3-bit SMT variable selecting this type's variant.
	// Only meaningful on Symbolic; definite types still expose it
	// (for uniformity) but never read it.
	TypeVar() smt.Expr

	// SizeVar is the 8-bit SMT "width" variable: bitwidth for Int,
	// the FloatKind enum for Float, bits() for Ptr, a fresh var for
	// Symbolic.
	SizeVar() smt.Expr

	// GetTypeConstraints is this type's self-consistency clause: the
	// condition under which its typeVar/sizeVar assignment is legal.
	GetTypeConstraints() smt.Expr

	// Equal is structural SMT equality: when either side is
	// symbolic, the term holds exactly when the kinds match and the
	// selected kind's sub-types are equal.
	Equal(other Type) smt.Expr

	// SameType is weaker than Equal: equality of shape only.
	SameType(other Type) smt.Expr

	// EnforceInt / EnforceFloat / ... are the enforceX family: "this
	// type satisfies predicate X", as an SMT obligation.
	EnforceInt(bits uint) smt.Expr
	EnforceFloat() smt.Expr
	EnforcePtr() smt.Expr
	EnforceIntOrVector() smt.Expr
	EnforceIntOrPtrOrVector() smt.Expr
	EnforceStruct() smt.Expr
	EnforceAggregate(elems []Type) smt.Expr

	// Fixup reads typeVar/sizeVar/numElements out of a satisfying
	// model and mutates this Type into its definite form, recursing
	// into children.
	Fixup(m smt.Model)

	// MkInput builds a fresh input term of this type via the memory
	// collaborator for pointers; returns the term and the fresh SMT
	// variables introduced.
	MkInput(mem MemoryFacade, name string) (smt.Expr, []smt.Expr)

	// PrintVal renders e (a concrete, model-evaluated term of this
	// type) in the type-specific human form used by the error
	// reporter; mem is consulted only by PtrType.
	PrintVal(w io.Writer, mem MemoryFacade, e smt.Expr)

	// ToBV / FromBV are the lossless conversions between this type's
	// native StateValue encoding and the flat bit-vector
	// representation used for aggregate packing.
	ToBV(v StateValue) StateValue
	FromBV(v StateValue) StateValue

	// MapReduce applies mapFn over the (possibly aggregate) structure
	// of a and b and returns the per-element results, leaving the
	// caller to combine them; on scalar types it is just
	// [mapFn(a, b)].
	MapReduce(mapFn func(a, b StateValue) smt.Expr, a, b StateValue) []smt.Expr

	// CacheKey is a structural hash of this type's own shape, used by
	// ConstraintCache (cache.go) to memoize GetTypeConstraints across
	// the many Functions a Transform builds it for. It is computed
	// directly from the type's fields rather than
	// from GetTypeConstraints() itself (that would be circular: you'd
	// have to build the constraint to find out whether you already
	// built it). A Defined type's key depends only on its shape
	// (bitwidth, kind, element types, ...), not its name, since two
	// same-shaped Defined types produce identical constraints; an
	// undefined/unresolved type's key must also fold in its name,
	// since its GetTypeConstraints embeds name-qualified fresh SMT
	// variables that must never be conflated across instances.
	CacheKey() uint64

	// IsIntType / IsFloatType / IsPtrType report the *currently
	// known* concrete kind (false for an unresolved Symbolic).
	IsIntType() bool
	IsFloatType() bool
	IsPtrType() bool

	String() string
}

// MemoryFacade is the subset of an external memory model that the
// type lattice needs in order to synthesize and print a pointer
// input.
type MemoryFacade interface {
	MkInput(name string) (smt.Expr, []smt.Expr)
	PrintPointer(w io.Writer, e smt.Expr)
}

// StateValue is (value, non_poison): a term plus its poison flag,
// where non_poison is either a boolean or a 1-bit vector.
type StateValue struct {
	Value     smt.Expr
	NonPoison smt.Expr
}

type named interface {
	Name() string
}

func varName(base named, role string) string {
	return fmt.Sprintf("%s_%s", base.Name(), role)
}

func mkVar(base named, role string, bits uint) smt.Expr {
	return smt.MkVar(varName(base, role), bits)
}

// AnonName derives a stable SMT variable-name prefix for an anonymous
// aggregate (one with no source-level name of its own, e.g. a vector
// type built fresh over an element type rather than parsed from IR).
// Two anonymous aggregates with different shapes must never collide
// on the same derived name (a collision would merge their SMT
// variables), so the prefix is a blake2b digest of the shape
// descriptor rather than a counter, which would race across
// concurrently-constructed Transforms.
func AnonName(shape string) string {
	sum := blake2b.Sum256([]byte(shape))
	return "anon$" + hex.EncodeToString(sum[:8])
}

// unreachableBits panics: Bits() is undefined on Void and on an
// unresolved Symbolic.
func unreachableBits(t Type) uint {
	panic(fmt.Sprintf("types: bits() undefined on %s", t.String()))
}

// shapeKey0/shapeKey1 are fixed siphash keys for CacheKey's structural
// hash, kept distinct from smt's own hashKey0/hashKey1 so a type's
// cache key never collides with an Expr's HashKey by construction.
const (
	shapeKey0 = 0x61747961732d6b30
	shapeKey1 = 0x61747961732d6b31
)

// shapeHash is the building block every CacheKey implementation uses:
// tag discriminates the concrete Go type (and, for AggregateType, its
// array/vector/struct variant), extra packs any fixed-width scalar
// fields (bitwidth, FloatKind, address space, element count, ...),
// name is folded in only when includeName is true, and children are
// the already-computed CacheKeys of any sub-types, folded in the same
// linear-FNV style smt.hashNode uses for its own children.
func shapeHash(tag byte, extra uint64, name string, includeName bool, children ...uint64) uint64 {
	var buf [9]byte
	buf[0] = tag
	binary.LittleEndian.PutUint64(buf[1:], extra)
	h := siphash.Hash(shapeKey0, shapeKey1, buf[:])
	if includeName {
		h ^= siphash.Hash(shapeKey0, shapeKey1, []byte(name))
	}
	for _, c := range children {
		h = h*1099511628211 ^ c
	}
	return h
}
