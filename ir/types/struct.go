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
	"strings"

	"github.com/tv-core/tvcheck/smt"
)

// StructType owns a distinct Type per field and is always Defined: a
// struct's field count and layout are fixed at IR-construction time,
// never solved for.
type StructType struct {
	AggregateType
}

func NewStructType(name string, fields []Type) *StructType {
	return &StructType{AggregateType{
		name: name, open: "{", close: "}",
		owned: true, fields: fields, numElem: uint(len(fields)), Defined: true,
	}}
}

func (t *StructType) EnforceStruct() smt.Expr { return smt.MkTrue() }

func (t *StructType) Equal(other Type) smt.Expr {
	switch rhs := other.(type) {
	case *StructType:
		return t.sameShape(&rhs.AggregateType)
	case *SymbolicType:
		return rhs.Equal(t)
	default:
		return smt.MkFalse()
	}
}

func (t *StructType) SameType(other Type) smt.Expr {
	switch other.(type) {
	case *StructType:
		return smt.MkTrue()
	case *SymbolicType:
		return other.SameType(t)
	default:
		return smt.MkFalse()
	}
}

func (t *StructType) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		parts[i] = f.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
