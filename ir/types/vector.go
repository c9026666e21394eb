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

	"github.com/tv-core/tvcheck/smt"
)

// NewAnonymousVectorType builds a VectorType with no source-level
// name of its own (e.g. one synthesized by a rewrite rather than
// parsed), deriving a collision-resistant name from its shape via
// AnonName instead of reusing a caller-supplied string that a
// different anonymous vector elsewhere might also pick.
func NewAnonymousVectorType(n uint, elem Type) *VectorType {
	return NewVectorType(AnonName(fmt.Sprintf("vector(%d,%s)", n, elem.String())), n, elem)
}

// VectorType is a SIMD lane of a single Int/Float/Ptr element type.
// Unlike Array, a Symbolic type can resolve to it (see symbolic.go).
type VectorType struct {
	AggregateType
}

func NewVectorType(name string, n uint, elem Type) *VectorType {
	return &VectorType{AggregateType{
		name: name, open: "<", close: ">",
		owned: false, elem: elem, numElem: n, Defined: true,
	}}
}

// GetTypeConstraints restricts the (possibly still-Symbolic) element
// type to Int, Float or Ptr, on top of the base aggregate bound.
func (t *VectorType) GetTypeConstraints() smt.Expr {
	r := t.AggregateType.GetTypeConstraints()
	elemKind := t.elem.EnforceInt(0).Or(t.elem.EnforceFloat()).Or(t.elem.EnforcePtr())
	return r.And(elemKind)
}

func (t *VectorType) Equal(other Type) smt.Expr {
	switch rhs := other.(type) {
	case *VectorType:
		return t.sameShape(&rhs.AggregateType)
	case *SymbolicType:
		return rhs.Equal(t)
	default:
		return smt.MkFalse()
	}
}

func (t *VectorType) SameType(other Type) smt.Expr {
	switch other.(type) {
	case *VectorType:
		return smt.MkTrue()
	case *SymbolicType:
		return other.SameType(t)
	default:
		return smt.MkFalse()
	}
}

func (t *VectorType) EnforceIntOrVector() smt.Expr      { return smt.MkTrue() }
func (t *VectorType) EnforceIntOrPtrOrVector() smt.Expr { return smt.MkTrue() }

func (t *VectorType) String() string {
	return fmt.Sprintf("<%d x %s>", t.numElem, t.elem.String())
}
