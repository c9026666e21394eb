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

package smt

import "testing"

func TestConstFolding(t *testing.T) {
	if !MkUInt(3, 8).Eq(MkUInt(3, 8)).Simplify().IsTrue() {
		t.Fatal("expected 3 == 3 to simplify to true")
	}
	if !MkUInt(3, 8).Eq(MkUInt(4, 8)).Simplify().IsFalse() {
		t.Fatal("expected 3 == 4 to simplify to false")
	}
}

func TestAndOrIdentities(t *testing.T) {
	x := MkBoolVar("x")
	if !x.And(MkTrue()).IdenticalTo(x) {
		t.Fatal("x && true should simplify to x")
	}
	if !x.And(MkFalse()).IsFalse() {
		t.Fatal("x && false should be false")
	}
	if !x.Or(MkTrue()).IsTrue() {
		t.Fatal("x || true should be true")
	}
	if !x.Or(MkFalse()).IdenticalTo(x) {
		t.Fatal("x || false should simplify to x")
	}
}

func TestSubst(t *testing.T) {
	x := MkVar("x", 8)
	e := x.Eq(MkUInt(5, 8))
	got := e.Subst(x, MkUInt(5, 8)).Simplify()
	if !got.IsTrue() {
		t.Fatalf("expected substitution to yield true, got %s", got)
	}
}

func TestForAllEmptyVars(t *testing.T) {
	body := MkBoolVar("p")
	if !MkForAll(nil, body).IdenticalTo(body) {
		t.Fatal("forall with no bound vars should return body unchanged")
	}
}

func TestExtractConcat(t *testing.T) {
	a := MkUInt(0xAB, 8)
	b := MkUInt(0xCD, 8)
	cat := a.Concat(b) // a in high bits
	hi := cat.Extract(15, 8)
	lo := cat.Extract(7, 0)
	if !hi.Eq(a).Simplify().IsTrue() {
		t.Fatalf("high half mismatch: %s", hi)
	}
	if !lo.Eq(b).Simplify().IsTrue() {
		t.Fatalf("low half mismatch: %s", lo)
	}
}

func TestComparisonFolding(t *testing.T) {
	one := MkUInt(1, 2)
	two := MkUInt(2, 2)
	if !two.Ult(two).IsFalse() {
		t.Fatal("2 <u 2 should fold to false")
	}
	if !one.Ult(two).IsTrue() {
		t.Fatal("1 <u 2 should fold to true")
	}
	if !two.Ule(two).IsTrue() {
		t.Fatal("2 <=u 2 should fold to true")
	}
	if !two.Ugt(one).IsTrue() {
		t.Fatal("2 >u 1 should fold to true")
	}
	if !one.Uge(two).IsFalse() {
		t.Fatal("1 >=u 2 should fold to false")
	}
}

func TestComparisonFoldsAfterSubst(t *testing.T) {
	x := MkVar("x", 2)
	e := x.Ult(MkUInt(2, 2))
	if !e.Subst(x, MkUInt(2, 2)).Simplify().IsFalse() {
		t.Fatal("x <u 2 with x=2 should simplify to false")
	}
	if !e.Subst(x, MkUInt(0, 2)).Simplify().IsTrue() {
		t.Fatal("x <u 2 with x=0 should simplify to true")
	}
}

// Extracting a range that falls entirely within one side of a concat
// must narrow to that side, even when the operands are variables: this
// is what lets a lane-by-lane repack of a vector collapse back to the
// original packed value.
func TestExtractOverConcatNarrows(t *testing.T) {
	a := MkVar("a", 4)
	b := MkVar("b", 4)
	cat := a.Concat(b)
	if !cat.Extract(7, 4).IdenticalTo(a) {
		t.Fatalf("high lanes: got %s, want a", cat.Extract(7, 4))
	}
	if !cat.Extract(3, 0).IdenticalTo(b) {
		t.Fatalf("low lanes: got %s, want b", cat.Extract(3, 0))
	}
	if !cat.Extract(7, 0).IdenticalTo(cat) {
		t.Fatal("full-width extract should be the identity")
	}
}

func TestShiftFolding(t *testing.T) {
	v := MkUInt(0x3, 8)
	if u, _ := v.Shl(MkUInt(4, 8)).IsUInt(); u != 0x30 {
		t.Fatalf("3 << 4: got 0x%x, want 0x30", u)
	}
	if u, _ := v.Lshr(MkUInt(1, 8)).IsUInt(); u != 0x1 {
		t.Fatalf("3 >> 1: got 0x%x, want 0x1", u)
	}
	if u, _ := v.Shl(MkUInt(8, 8)).IsUInt(); u != 0 {
		t.Fatal("shift by the full width should fold to zero")
	}
}

func TestVarsDeterministicOrder(t *testing.T) {
	e := MkVar("b", 8).Eq(MkVar("a", 8))
	vars := e.Vars()
	if len(vars) != 2 || vars[0].n.name != "a" || vars[1].n.name != "b" {
		t.Fatalf("expected sorted [a b], got %v", vars)
	}
}
