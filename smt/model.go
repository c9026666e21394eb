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

// Model is a satisfying assignment: a map from variable name to the
// constant Expr the solver chose for it. It is returned by a Result
// that IsSat and consumed by Type.fixup and by the error reporter.
type Model struct {
	assign map[string]Expr
}

// NewModel builds a Model from an explicit variable->constant map.
func NewModel(assign map[string]Expr) Model {
	cp := make(map[string]Expr, len(assign))
	for k, v := range assign {
		cp[k] = v
	}
	return Model{assign: cp}
}

// GetUInt returns the unsigned value the model assigns to e, which
// must evaluate to a constant bit-vector under this model.
func (m Model) GetUInt(e Expr) uint64 {
	v := m.Eval(e, true)
	u, ok := v.IsUInt()
	if !ok {
		panic("smt: model does not fully constrain " + e.String())
	}
	return u
}

// Eval substitutes every free variable in e with its model assignment
// and simplifies. If complete is false, variables missing from the
// model are left free (used by the error reporter to distinguish
// "genuinely poison" from "the model is partial"); if complete is
// true, missing variables default to zero, matching a real solver's
// `model_completion` evaluation mode.
func (m Model) Eval(e Expr, complete bool) Expr {
	out := e
	for _, v := range e.Vars() {
		val, ok := m.assign[v.n.name]
		if !ok {
			if !complete {
				continue
			}
			val = zeroOf(v)
		}
		out = out.subst(v.n.name, val)
	}
	return out.Simplify()
}

func zeroOf(v Expr) Expr {
	switch v.Sort() {
	case SortBool:
		return MkFalse()
	case SortBV:
		return MkUInt(0, v.Bits())
	case SortFloat:
		return mkFPConst(0, v.n.fk)
	}
	panic("unreachable")
}

// Index is a direct variable lookup: it reads a variable (e.g. an
// Input's 2-bit ty_var) straight out of the model without the
// substitute-and-simplify pass Eval does.
func (m Model) Index(e Expr) Expr {
	if v, ok := m.assign[e.n.name]; ok {
		return v
	}
	return e
}
