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

// NaiveSolver is a bounded brute-force Solver: it enumerates every
// assignment to the free variables of its conjoined assertions and
// returns the first satisfying one. It exists so this repo's own
// tests can run without linking a real SMT backend; it is deliberately not
// a general-purpose decision procedure, and gives up (Unknown) once
// the search space crosses maxAssignments.
type NaiveSolver struct {
	assertion Expr
	blocked   []map[string]uint64
	lastVars  []Expr
}

const (
	maxVarBits     = 12 // widest single variable this backend will enumerate
	maxAssignments = 1 << 20
)

func NewNaiveSolver() *NaiveSolver {
	return &NaiveSolver{assertion: MkTrue()}
}

func (s *NaiveSolver) Add(e Expr) {
	s.assertion = s.assertion.And(e)
}

func (s *NaiveSolver) Check() Result {
	e := s.assertion.Simplify()
	if e.IsFalse() {
		return UnsatResult()
	}
	if e.IsTrue() && len(s.blocked) == 0 {
		return SatResult(NewModel(nil))
	}
	// A quantifier that survived Simplify (tryDecideForAll gave up on
	// it) cannot be brute-forced here: enumerating its bound variables
	// as if they were free would turn "for all inputs" into "for some
	// input" and report spurious counterexamples.
	if containsForAll(e) {
		return UnknownResult()
	}

	vars := e.Vars()
	s.lastVars = vars
	total := uint64(1)
	for _, v := range vars {
		w := v.Bits()
		if w == 0 {
			w = 1
		}
		if w > maxVarBits {
			return UnknownResult()
		}
		total *= uint64(1) << w
		if total > maxAssignments {
			return UnknownResult()
		}
	}

	assign := make(map[string]uint64, len(vars))
	var rec func(i int) Result
	rec = func(i int) Result {
		if i == len(vars) {
			if s.isBlocked(assign) {
				return UnsatResult()
			}
			m := make(map[string]Expr, len(vars))
			for _, v := range vars {
				if v.Sort() == SortBool {
					m[v.n.name] = MkBool(assign[v.n.name] != 0)
				} else {
					m[v.n.name] = MkUInt(assign[v.n.name], v.Bits())
				}
			}
			model := NewModel(m)
			if model.Eval(e, true).IsTrue() {
				return SatResult(model)
			}
			return UnsatResult()
		}
		v := vars[i]
		w := v.Bits()
		if w == 0 {
			w = 1
		}
		n := uint64(1) << w
		for val := uint64(0); val < n; val++ {
			assign[v.n.name] = val
			if r := rec(i + 1); r.IsSat() {
				return r
			}
		}
		delete(assign, v.n.name)
		return UnsatResult()
	}
	return rec(0)
}

func containsForAll(e Expr) bool {
	if e.n.op == opForAll {
		return true
	}
	for _, c := range e.n.children {
		if containsForAll(c) {
			return true
		}
	}
	return false
}

func (s *NaiveSolver) isBlocked(assign map[string]uint64) bool {
	for _, b := range s.blocked {
		match := true
		for k, v := range b {
			if assign[k] != v {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// Block excludes m from future Check results. minimize is accepted
// for interface parity, but the naive backend always blocks the full
// assignment: it has no notion of an unsat core to shrink against.
func (s *NaiveSolver) Block(m Model, minimize bool) {
	b := make(map[string]uint64, len(s.lastVars))
	for _, v := range s.lastVars {
		if val, ok := m.assign[v.n.name]; ok {
			u, _ := val.IsUInt()
			if val.Sort() == SortBool {
				if val.IsTrue() {
					u = 1
				} else {
					u = 0
				}
			}
			b[v.n.name] = u
		}
	}
	s.blocked = append(s.blocked, b)
}
