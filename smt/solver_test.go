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

import (
	"sync/atomic"
	"testing"
)

// Check/Block must walk every distinct model exactly once: x >u 1 over
// a 2-bit x admits {2, 3} and nothing else.
func TestNaiveSolverEnumeratesModels(t *testing.T) {
	x := MkVar("x", 2)
	s := NewNaiveSolver()
	s.Add(x.Ugt(MkUInt(1, 2)))

	var got []uint64
	for {
		r := s.Check()
		if !r.IsSat() {
			if !r.IsUnsat() {
				t.Fatalf("expected unsat at exhaustion, got %+v", r)
			}
			break
		}
		m := r.GetModel()
		got = append(got, m.GetUInt(x))
		s.Block(m, true)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Fatalf("expected models [2 3], got %v", got)
	}
}

func TestNaiveSolverUnsat(t *testing.T) {
	x := MkVar("x", 2)
	s := NewNaiveSolver()
	s.Add(x.Ult(MkUInt(0, 2)))
	if !s.Check().IsUnsat() {
		t.Fatal("x <u 0 must be unsat")
	}
}

// A quantifier the simplifier could not discharge (here: a 16-bit
// bound variable, past tryDecideForAll's enumeration bound) must come
// back Unknown rather than being brute-forced unsoundly.
func TestNaiveSolverUnresolvedForAllIsUnknown(t *testing.T) {
	x := MkVar("x", 16)
	s := NewNaiveSolver()
	s.Add(MkForAll([]Expr{x}, x.Eq(MkUInt(0, 16))))
	if !s.Check().IsUnknown() {
		t.Fatal("an unresolvable forall should report Unknown")
	}
}

func TestCheckAllRunsEveryQuery(t *testing.T) {
	x := MkVar("x", 2)
	var sat, unsat int32
	queries := []Query{
		{Expr: x.Eq(MkUInt(1, 2)), Handle: func(r Result) {
			if r.IsSat() {
				atomic.AddInt32(&sat, 1)
			}
		}},
		{Expr: MkFalse(), Handle: func(r Result) {
			if r.IsUnsat() {
				atomic.AddInt32(&unsat, 1)
			}
		}},
	}
	CheckAll(func() Solver { return NewNaiveSolver() }, queries)
	if sat != 1 || unsat != 1 {
		t.Fatalf("expected one sat and one unsat callback, got sat=%d unsat=%d", sat, unsat)
	}
}
