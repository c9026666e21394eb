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

// NewAnonymousArrayType mirrors NewAnonymousVectorType for arrays.
func NewAnonymousArrayType(n uint, elem Type) *ArrayType {
	return NewArrayType(AnonName(fmt.Sprintf("array(%d,%s)", n, elem.String())), n, elem)
}

// ArrayType is a fixed-length sequence of a single element type,
// flat-packed like Vector but never treated as a SIMD lane.
//
// GetTypeConstraints intentionally returns false: no self-consistency
// clause is implemented for arrays, so the constraint is permanently
// unsatisfiable and a Symbolic type can never legally resolve to
// Array (see DESIGN.md, Open Questions).
type ArrayType struct {
	AggregateType
}

func NewArrayType(name string, n uint, elem Type) *ArrayType {
	return &ArrayType{AggregateType{
		name: name, open: "[", close: "]",
		owned: false, elem: elem, numElem: n, Defined: true,
	}}
}

func (t *ArrayType) GetTypeConstraints() smt.Expr { return smt.MkFalse() }

func (t *ArrayType) Equal(other Type) smt.Expr {
	switch rhs := other.(type) {
	case *ArrayType:
		return t.sameShape(&rhs.AggregateType)
	case *SymbolicType:
		return rhs.Equal(t)
	default:
		return smt.MkFalse()
	}
}

func (t *ArrayType) SameType(other Type) smt.Expr {
	switch other.(type) {
	case *ArrayType:
		return smt.MkTrue()
	case *SymbolicType:
		return other.SameType(t)
	default:
		return smt.MkFalse()
	}
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("[%d x %s]", t.numElem, t.elem.String())
}
