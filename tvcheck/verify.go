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
	"io"
	"log"

	"github.com/tv-core/tvcheck/config"
	"github.com/tv-core/tvcheck/internal/idgen"
	"github.com/tv-core/tvcheck/ir"
	"github.com/tv-core/tvcheck/ir/types"
	"github.com/tv-core/tvcheck/memory"
	"github.com/tv-core/tvcheck/smt"
	"github.com/tv-core/tvcheck/symexec"
)

// TransformVerify is the caller-facing verification API: construct
// one per Transform, optionally enumerate typing assignments with
// GetTypings/FixupTypes, and call Verify for each one.
type TransformVerify struct {
	T            *ir.Transform
	CheckEachVar bool

	Config    *config.Config
	Memory    types.MemoryFacade
	NewSolver func() smt.Solver
	Logger    *log.Logger
}

// NewTransformVerify builds a checker for t with config.Default,
// memory.New and smt.NewNaiveSolver filled in. Memory, NewSolver and
// Logger may also be left nil (memory.New, smt.NewNaiveSolver and a
// discarding logger are then used); a nil Config applies neither input
// filter and skips the memory probe.
func NewTransformVerify(t *ir.Transform, checkEachVar bool) *TransformVerify {
	return &TransformVerify{
		T:            t,
		CheckEachVar: checkEachVar,
		Config:       config.Default(),
		Memory:       memory.New(),
		NewSolver:    func() smt.Solver { return smt.NewNaiveSolver() },
	}
}

func (tv *TransformVerify) newSolver() func() smt.Solver {
	if tv.NewSolver != nil {
		return tv.NewSolver
	}
	return func() smt.Solver { return smt.NewNaiveSolver() }
}

// taggedLogger wraps tv.Logger (or a discarding logger, if none was
// configured) with a prefix carrying runID, so every "skipping
// function" line symexec logs during this Verify call can be
// correlated back to it.
func (tv *TransformVerify) taggedLogger(runID string) *log.Logger {
	prefix := fmt.Sprintf("[%s] ", runID)
	if tv.Logger == nil {
		return log.New(io.Discard, prefix, 0)
	}
	return log.New(tv.Logger.Writer(), prefix+tv.Logger.Prefix(), tv.Logger.Flags())
}

// GetTypings returns the TypingAssignments iterator over t's type
// constraints.
func (tv *TransformVerify) GetTypings() *TypingAssignments {
	c := tv.T.TypeConstraints(tv.CheckEachVar)
	return NewTypingAssignments(c, tv.newSolver())
}

// FixupTypes mutates both functions' types in place under m.
func (tv *TransformVerify) FixupTypes(m smt.Model) { tv.T.FixupTypes(m) }

// Verify runs the refinement driver for the Transform's current
// (already fixed-up) types: symbolically execute both functions, then
// check the declared instructions (if CheckEachVar) and finally the
// return value.
func (tv *TransformVerify) Verify() (*Errors, error) {
	// Every call gets its own run id so concurrently-running
	// verifications don't tag each other's log lines.
	logger := tv.taggedLogger(idgen.New().RunID())

	mem := tv.Memory
	if mem == nil {
		mem = memory.New()
	}

	srcState, err := symexec.Exec(tv.T.Src, mem, logger)
	if err != nil {
		return nil, err
	}
	tgtState, err := symexec.Exec(tv.T.Tgt, mem, logger)
	if err != nil {
		return nil, err
	}

	errs := &Errors{}

	if tv.CheckEachVar {
		for _, name := range srcState.Order {
			srcIns := tv.T.Src.InstrByName(name)
			if srcIns == nil {
				continue // not a declared named instruction (e.g. an internal temp)
			}
			tgtVal, ok := tgtState.Values[name]
			if !ok {
				continue
			}
			tv.checkRefinement(errs, srcState, tgtState, srcIns.Typ,
				srcState.Domain, srcState.At(name),
				tgtState.Domain, tgtVal,
				true, name, logger)
			if !errs.Empty() {
				return errs, nil
			}
		}
	}

	switch {
	case srcState.Returned != tgtState.Returned:
		errs.Add("Source/Target returns but the other doesn't")
	case srcState.Returned:
		tv.checkRefinement(errs, srcState, tgtState, tv.T.Src.ReturnType,
			srcState.ReturnDomain, srcState.ReturnVal,
			tgtState.ReturnDomain, tgtState.ReturnVal,
			false, "", logger)
	}

	return errs, nil
}

// checkRefinement is the three-obligation decomposition of
// refinement: it builds the definedness, poison and value queries,
// preprocesses each against the shared precondition and quantifier
// set, dispatches them concurrently via smt.CheckAll, and records a
// verdict for every obligation that is not unsat, so one call can
// report up to three failures (a poison regression and a value
// mismatch at the same program point are both real and both shown).
func (tv *TransformVerify) checkRefinement(errs *Errors, srcState, tgtState *ir.State, typ types.Type, domA smt.Expr, a types.StateValue, domB smt.Expr, b types.StateValue, perVar bool, varName string, logger *log.Logger) {
	defer smt.EnableQueries()()

	pre := tv.T.Src.Precondition().And(tv.T.Tgt.Precondition())
	domA = pre.And(domA)

	qvars, undef := quantifierVars(srcState, a)

	results := make([]smt.Result, len(obligations))
	queries := make([]smt.Query, len(obligations))
	for i, ob := range obligations {
		raw := ob.build(domA, domB, typ, a, b)
		e := preprocess(raw, tv.T.Src, qvars, undef, tv.Config, logger)
		i := i
		queries[i] = smt.Query{
			Expr: e,
			Handle: func(r smt.Result) { results[i] = r },
		}
	}
	smt.CheckAll(tv.newSolver(), queries)

	for i, r := range results {
		switch {
		case r.IsSat():
			tv.report(errs, obligations[i].message, r.GetModel(), srcState, tgtState, typ, a, b, perVar, varName)
		case r.IsUnknown():
			errs.Add("Timeout")
		case r.IsInvalid():
			errs.Add("Invalid expr")
		}
	}
}
