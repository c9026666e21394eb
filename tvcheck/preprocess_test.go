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
	"testing"

	"github.com/tv-core/tvcheck/config"
	"github.com/tv-core/tvcheck/ir"
	"github.com/tv-core/tvcheck/ir/types"
	"github.com/tv-core/tvcheck/smt"
)

func TestPreprocessNoQVarsReturnsExprUnchanged(t *testing.T) {
	src := &ir.Function{Name: "f"}
	e := smt.MkVar("free", 8).Eq(smt.MkUInt(1, 8))
	got := preprocess(e, src, nil, nil, nil, nil)
	if !got.IdenticalTo(e) {
		t.Fatalf("expected e to pass through unchanged, got %s", got)
	}
}

func TestPreprocessNoUndefQVarsWrapsForAll(t *testing.T) {
	x := smt.MkVar("%x", 8)
	src := &ir.Function{Name: "f"}
	e := x.Eq(smt.MkUInt(0, 8))
	qvars := []smt.Expr{x}

	got := preprocess(e, src, qvars, nil, nil, nil)
	want := smt.MkForAll(qvars, e)
	if !got.IdenticalTo(want) {
		t.Fatalf("expected mkForAll(qvars, e); got %s, want %s", got, want)
	}
}

func TestPreprocessFalseObligationShortCircuits(t *testing.T) {
	x := smt.MkVar("%x", 8)
	src := &ir.Function{Name: "f"}
	got := preprocess(smt.MkFalse(), src, []smt.Expr{x}, []smt.Expr{x}, nil, nil)
	if !got.IsFalse() {
		t.Fatalf("expected a trivially false obligation to stay false, got %s", got)
	}
}

func TestApplyInputFiltersExcludesDisabledModes(t *testing.T) {
	in := &ir.Input{Name: "%x", Typ: types.NewIntType("x", 8)}
	src := &ir.Function{Name: "f", Inputs: []*ir.Input{in}}
	cfg := &config.Config{DisableUndefInput: true, DisablePoisonInput: true}

	e := applyInputFilters(smt.MkTrue(), src, cfg)
	tv := in.TyVar()

	// ty_var == 1 (undef) must now be excluded.
	undef := e.Subst(tv, smt.MkUInt(1, 2)).Simplify()
	if !undef.IsFalse() {
		t.Fatalf("expected ty_var=1 to be filtered out, got %s", undef)
	}
	// ty_var == 2 (poison) must also be excluded.
	poison := e.Subst(tv, smt.MkUInt(2, 2)).Simplify()
	if !poison.IsFalse() {
		t.Fatalf("expected ty_var=2 to be filtered out, got %s", poison)
	}
	// ty_var == 0 (plain) must still be admitted.
	plain := e.Subst(tv, smt.MkUInt(0, 2)).Simplify()
	if !plain.IsTrue() {
		t.Fatalf("expected ty_var=0 to remain admitted, got %s", plain)
	}
}

// instantiate must stop folding in further inputs once a completed
// fan-out reaches maxInstances, while keeping every instance already
// built: each one is a disjunct of the final obligation, and dropping
// any would hide the counterexamples living only in that branch. With
// six 3-way inputs the cap trips after the fifth (3^5 = 243 >= 128),
// so all 243 instances survive and the sixth input's ty_var is left
// symbolic in them.
func TestInstantiateStopsGrowingAtCap(t *testing.T) {
	var inputs []*ir.Input
	e := smt.MkTrue()
	for i := 0; i < 6; i++ {
		in := &ir.Input{Name: fmt.Sprintf("%%v%d", i), Typ: types.NewIntType(fmt.Sprintf("t%d", i), 8)}
		inputs = append(inputs, in)
		e = e.And(in.TyVar().Ult(smt.MkUInt(3, 2)))
	}

	insts := instantiate(e, inputs, nil, nil)
	if len(insts) < maxInstances {
		t.Fatalf("expected instantiation to reach the cap (%d), got %d", maxInstances, len(insts))
	}
	if want := 3 * 3 * 3 * 3 * 3; len(insts) != want {
		t.Fatalf("expected every instance of the completed rounds to survive (%d), got %d", want, len(insts))
	}
	last := inputs[len(inputs)-1].TyVar()
	for _, inst := range insts {
		if !mentions(inst.expr, last) {
			t.Fatal("expected the uninstantiated input's ty_var to stay symbolic in every surviving instance")
		}
	}
}

func TestMentionsFindsFreeVariableByName(t *testing.T) {
	v := smt.MkVar("%x", 8)
	other := smt.MkVar("%x", 8) // same shape, so hash-consed to v's own node
	e := other.Eq(smt.MkUInt(1, 8))
	if !mentions(e, v) {
		t.Fatal("expected mentions to match by variable name")
	}
	if mentions(e, smt.MkVar("%y", 8)) {
		t.Fatal("expected mentions to report false for an unrelated variable")
	}
}
