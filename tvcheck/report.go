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

package tvcheck

import (
	"fmt"
	"strings"

	"github.com/tv-core/tvcheck/ir"
	"github.com/tv-core/tvcheck/ir/types"
	"github.com/tv-core/tvcheck/smt"
)

// report renders a sat model into the four-part counterexample text
// and adds it to errs.
func (tv *TransformVerify) report(errs *Errors, msg string, m smt.Model, srcState, tgtState *ir.State, typ types.Type, a, b types.StateValue, perVar bool, varName string) {
	var w strings.Builder

	if perVar {
		fmt.Fprintf(&w, "%s (%s)\n\n", msg, varName)
	} else {
		fmt.Fprintf(&w, "%s\n\n", msg)
	}

	tv.renderExample(&w, m)

	stopBefore := ""
	srcLabel, tgtLabel := "Source:", "Target:"
	if perVar {
		stopBefore = varName
		srcLabel, tgtLabel = "", ""
	}
	seen := map[string]bool{}
	fmt.Fprintln(&w)
	renderInstrs(&w, srcLabel, tv.T.Src, srcState, tv.Memory, m, stopBefore, seen)
	renderInstrs(&w, tgtLabel, tv.T.Tgt, tgtState, tv.Memory, m, stopBefore, seen)

	fmt.Fprintln(&w)
	fmt.Fprint(&w, "Source value: ")
	printStateValue(&w, typ, tv.Memory, m, a)
	fmt.Fprintln(&w)
	fmt.Fprint(&w, "Target value: ")
	printStateValue(&w, typ, tv.Memory, m, b)

	errs.Add("%s", w.String())
}

// renderExample is part 2 of the counterexample: every input of the
// source function, printed poison / undef / its concrete value.
func (tv *TransformVerify) renderExample(w *strings.Builder, m smt.Model) {
	fmt.Fprintln(w, "Example:")
	for _, in := range tv.T.Src.Inputs {
		fmt.Fprintf(w, "  %s = ", in.Name)
		printInput(w, in, tv.Memory, m)
		fmt.Fprintln(w)
	}
}

func printInput(w *strings.Builder, in *ir.Input, mem types.MemoryFacade, m smt.Model) {
	mode, _ := m.Index(in.TyVar()).IsUInt()
	switch {
	case mode&ir.TyVarPoisonBit != 0:
		fmt.Fprint(w, "poison")
	case mode&ir.TyVarUndefBit != 0:
		fmt.Fprint(w, "undef")
	default:
		val, _ := in.Typ.MkInput(mem, in.Name)
		partial := m.Eval(val, false)
		full := m.Eval(val, true)
		in.Typ.PrintVal(w, mem, full)
		if hasUndefVar(partial) {
			fmt.Fprint(w, " [based on undef value]")
		}
	}
}

// hasUndefVar reports whether e still mentions a free variable from
// the undef_* family after an incomplete model evaluation; undef reads
// are modelled by a distinguished family of SMT variables carrying
// that prefix.
func hasUndefVar(e smt.Expr) bool {
	for _, v := range e.Vars() {
		if strings.HasPrefix(v.String(), "undef_") {
			return true
		}
	}
	return false
}

// renderInstrs is part 3 of the counterexample: fn's named, non-input
// values in declaration order, stopping before stopBefore (the empty
// string never matches, so a whole-function report walks everything).
// seen is shared between the Source and Target calls so a name
// printed once is not repeated in per-variable mode; label is empty in
// that mode, since the two walks merge into one listing.
func renderInstrs(w *strings.Builder, label string, fn *ir.Function, state *ir.State, mem types.MemoryFacade, m smt.Model, stopBefore string, seen map[string]bool) {
	if label != "" {
		fmt.Fprintln(w, label)
	}
	for _, name := range state.Order {
		if name == stopBefore {
			break
		}
		if seen[name] {
			continue
		}
		ins := fn.InstrByName(name)
		if ins == nil {
			continue
		}
		seen[name] = true
		fmt.Fprintf(w, "  %s = ", name)
		printStateValue(w, ins.Typ, mem, m, state.At(name))
		fmt.Fprintln(w)
	}
}

// printStateValue prints sv's poison flag, or else its type-specific
// printed value, both evaluated against a complete model.
func printStateValue(w *strings.Builder, typ types.Type, mem types.MemoryFacade, m smt.Model, sv types.StateValue) {
	np := m.Eval(nonPoisonBool(sv.NonPoison), true)
	if np.IsFalse() {
		fmt.Fprint(w, "poison")
		return
	}
	typ.PrintVal(w, mem, m.Eval(sv.Value, true))
}
