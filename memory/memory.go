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

// Package memory is a minimal stand-in for a real memory/pointer
// model. It implements ir/types.MemoryFacade just well enough to
// synthesize and print pointer-typed inputs in tests: every pointer
// input is modelled as an opaque flat bit-vector with no aliasing
// relationship to any other pointer, which is sound for refinement
// checking of programs that never dereference a pointer (the only
// kind this repo's symexec can run anyway, see its package doc).
package memory

import (
	"fmt"
	"io"

	"github.com/tv-core/tvcheck/ir/types"
	"github.com/tv-core/tvcheck/smt"
)

// flatBits matches PtrType's flat encoding width so a Model-issued
// input is assignment-compatible with any Ptr-typed SMT variable.
var flatBits = types.NewPtrType(0).Bits()

// Model is the default, single-process MemoryFacade. It carries no
// state of its own today (no pointer ever aliases another in this
// repo's test programs) but exists as a distinct type rather than a
// package-level function so a future aliasing-aware model can be
// swapped in without changing ir/types' consumer interface.
type Model struct{}

func New() *Model { return &Model{} }

// MkInput synthesizes a fresh opaque pointer variable.
func (m *Model) MkInput(name string) (smt.Expr, []smt.Expr) {
	v := smt.MkVar(name, flatBits)
	return v, []smt.Expr{v}
}

// PrintPointer renders a pointer value as its flat hexadecimal
// encoding; a real memory model would resolve it to a (block, offset)
// pair and print the block's origin.
func (m *Model) PrintPointer(w io.Writer, e smt.Expr) {
	if u, ok := e.IsUInt(); ok {
		fmt.Fprintf(w, "pointer(0x%x)", u)
		return
	}
	fmt.Fprint(w, "pointer(?)")
}
