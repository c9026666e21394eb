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
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/tv-core/tvcheck/ir"
	"github.com/tv-core/tvcheck/ir/types"
	"github.com/tv-core/tvcheck/smt"
)

// nonPoisonBool normalizes a StateValue's non_poison term (either a
// boolean or a 1-bit vector) to a boolean predicate.
func nonPoisonBool(e smt.Expr) smt.Expr {
	if e.Sort() == smt.SortBool {
		return e
	}
	return e.Eq(smt.MkUInt(1, 1))
}

// poisonPred is the map half of obligation 2's map_reduce: "a is
// non-poison but b is poison".
func poisonPred(a, b types.StateValue) smt.Expr {
	return nonPoisonBool(a.NonPoison).And(nonPoisonBool(b.NonPoison).Not())
}

// valuePred is the map half of obligation 3's map_reduce: "a is
// non-poison but a and b disagree on value".
func valuePred(a, b types.StateValue) smt.Expr {
	return nonPoisonBool(a.NonPoison).And(a.Value.Neq(b.Value))
}

// quantifierVars collects the variables the refinement query must
// universally quantify over: the source state's tracked quantifier
// variables plus the undef variables
// a's value and poison terms were materialised from. Function inputs
// are deliberately NOT collected: they stay free in the query so the
// solver's satisfying assignment is the counterexample input; only the
// source's nondeterministic choices (undef reads and the like) are
// universally quantified, since the target must misbehave under every
// one of them for a failure to be real. The result is deduplicated and
// ordered by name so that two runs over the same Transform report the
// same counterexample text.
func quantifierVars(srcState *ir.State, a types.StateValue) (qvars, undef []smt.Expr) {
	seen := make(map[string]smt.Expr, len(srcState.QVars))
	isUndef := make(map[string]bool, len(srcState.UndefQVars))
	for _, v := range srcState.UndefQVars {
		isUndef[v.String()] = true
	}
	for _, v := range srcState.QVars {
		seen[v.String()] = v
	}
	addUndef := func(v smt.Expr) {
		if name := v.String(); strings.HasPrefix(name, "undef_") {
			seen[name] = v
			isUndef[name] = true
		}
	}
	for _, v := range a.Value.Vars() {
		addUndef(v)
	}
	for _, v := range a.NonPoison.Vars() {
		addUndef(v)
	}

	names := maps.Keys(seen)
	slices.Sort(names)
	qvars = make([]smt.Expr, 0, len(names))
	for _, n := range names {
		v := seen[n]
		qvars = append(qvars, v)
		if isUndef[n] {
			undef = append(undef, v)
		}
	}
	return qvars, undef
}

// obligation names the three refinement checks in reporting order;
// checkRefinement records a verdict for every one whose query is sat,
// unknown or invalid, so a single call yields up to one verdict per
// obligation.
type obligation struct {
	message string
	build   func(domA, domB smt.Expr, typ types.Type, a, b types.StateValue) smt.Expr
}

var obligations = []obligation{
	{
		message: "Source is more defined than target",
		build: func(domA, domB smt.Expr, typ types.Type, a, b types.StateValue) smt.Expr {
			return domA.NotImplies(domB)
		},
	},
	{
		message: "Target is more poisonous than source",
		build: func(domA, domB smt.Expr, typ types.Type, a, b types.StateValue) smt.Expr {
			return domA.And(smt.MkOr(typ.MapReduce(poisonPred, a, b)))
		},
	},
	{
		message: "Value mismatch",
		build: func(domA, domB smt.Expr, typ types.Type, a, b types.StateValue) smt.Expr {
			return domA.And(smt.MkOr(typ.MapReduce(valuePred, a, b)))
		},
	},
}
