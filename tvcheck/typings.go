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

import "github.com/tv-core/tvcheck/smt"

// TypingAssignments enumerates the models of a Transform's type
// constraints: if the constraint simplifies to true there is exactly
// one (empty)
// solution, otherwise it drives a Solver through repeated
// check/block-minimise rounds until unsat. The zero value is not
// usable; construct with NewTypingAssignments.
type TypingAssignments struct {
	solver smt.Solver
	single bool
	done   bool
}

// NewTypingAssignments begins enumerating models of c, using newSolver
// to construct the backing Solver (only invoked when c is not
// trivially true).
func NewTypingAssignments(c smt.Expr, newSolver func() smt.Solver) *TypingAssignments {
	c = c.Simplify()
	if c.IsFalse() {
		return &TypingAssignments{done: true}
	}
	if c.IsTrue() {
		return &TypingAssignments{single: true}
	}
	s := newSolver()
	s.Add(c)
	return &TypingAssignments{solver: s}
}

// Next returns the next satisfying model, or ok==false once the
// constraint set is exhausted (the underlying check came back unsat).
func (ta *TypingAssignments) Next() (smt.Model, bool) {
	if ta.done {
		return smt.Model{}, false
	}
	if ta.single {
		ta.done = true
		return smt.NewModel(nil), true
	}
	r := ta.solver.Check()
	if !r.IsSat() {
		ta.done = true
		return smt.Model{}, false
	}
	m := r.GetModel()
	ta.solver.Block(m, true)
	return m, true
}
