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

package ir

import (
	"testing"

	"github.com/tv-core/tvcheck/ir/types"
	"github.com/tv-core/tvcheck/smt"
)

func identityFn(name string, bits uint) *Function {
	x := &Input{Name: "%x", Typ: types.NewIntType("x", bits)}
	return &Function{
		Name:       name,
		ReturnType: types.NewIntType(name+".ret", bits),
		Inputs:     []*Input{x},
		Body: func(mem types.MemoryFacade, s *State) error {
			v, _ := x.Typ.MkInput(mem, x.Name)
			s.ReturnVal = types.StateValue{Value: v, NonPoison: smt.MkTrue()}
			s.ReturnDomain = smt.MkTrue()
			s.Returned = true
			return nil
		},
	}
}

func TestTransformTypeConstraintsSatisfiableWhenShapesMatch(t *testing.T) {
	tr := &Transform{Name: "id", Src: identityFn("src", 8), Tgt: identityFn("tgt", 8)}
	c := tr.TypeConstraints(false)
	if c.Simplify().IsFalse() {
		t.Fatal("expected satisfiable type constraints for two matching i8 identity functions")
	}
}

func TestTransformTypeConstraintsUnsatOnReturnTypeMismatch(t *testing.T) {
	tr := &Transform{Name: "id", Src: identityFn("src", 8), Tgt: identityFn("tgt", 16)}
	c := tr.TypeConstraints(false)
	if !c.Simplify().IsFalse() {
		t.Fatalf("expected unsat constraints on i8/i16 return mismatch, got %s", c.Simplify())
	}
}

func TestStateOrderTracksFirstWrite(t *testing.T) {
	s := NewState()
	s.Set("%a", types.StateValue{Value: smt.MkUInt(1, 8), NonPoison: smt.MkTrue()})
	s.Set("%b", types.StateValue{Value: smt.MkUInt(2, 8), NonPoison: smt.MkTrue()})
	s.Set("%a", types.StateValue{Value: smt.MkUInt(3, 8), NonPoison: smt.MkTrue()})
	if len(s.Order) != 2 || s.Order[0] != "%a" || s.Order[1] != "%b" {
		t.Fatalf("expected order [%%a %%b], got %v", s.Order)
	}
	if v, _ := s.At("%a").Value.IsUInt(); v != 3 {
		t.Fatalf("expected last write to win, got %d", v)
	}
}
