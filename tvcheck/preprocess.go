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
	"bytes"
	"log"

	"github.com/klauspost/compress/zstd"

	"github.com/tv-core/tvcheck/config"
	"github.com/tv-core/tvcheck/ir"
	"github.com/tv-core/tvcheck/smt"
)

// maxInstances is the point at which instantiate stops folding in
// further inputs: once a completed input's fan-out leaves this many
// live instances, the remaining inputs keep their ty_var symbolic.
const maxInstances = 128

// instance pairs one residual obligation with the witness recording
// which ty_var substitutions produced it, so a sat counterexample can
// be reported against the right undef/poison mode.
type instance struct {
	expr    smt.Expr
	witness smt.Expr
}

// preprocess turns a raw refinement obligation into something a
// solver can be asked about directly: configuration filters, then
// either plain universal quantification or, when undef is in play, a
// bounded disjunction of instantiated sub-obligations. logger (may be
// nil) receives a summary whenever instantiate stops at the cap.
func preprocess(e smt.Expr, src *ir.Function, qvars, undefQVars []smt.Expr, cfg *config.Config, logger *log.Logger) smt.Expr {
	e = applyInputFilters(e, src, cfg)

	if len(qvars) == 0 {
		return e
	}
	if e.Simplify().IsFalse() {
		return e
	}
	if len(undefQVars) == 0 || (cfg != nil && cfg.HitHalfMemoryLimit()) {
		return smt.MkForAll(qvars, e)
	}

	instances := instantiate(e, src.Inputs, cfg, logger)
	disj := smt.MkFalse()
	for _, inst := range instances {
		disj = disj.Or(smt.MkForAll(qvars, inst.expr).And(inst.witness))
	}
	return disj
}

// applyInputFilters is preprocess step 1: conjoin the configured
// ty_var restrictions for every one of the source function's inputs.
func applyInputFilters(e smt.Expr, src *ir.Function, cfg *config.Config) smt.Expr {
	if cfg == nil {
		return e
	}
	for _, in := range src.Inputs {
		tv := in.TyVar()
		if cfg.DisableUndefInput {
			e = e.And(tv.Neq(smt.MkUInt(1, 2)))
		}
		if cfg.DisablePoisonInput {
			// ty_var's bit 1 is the poison bit (ir.TyVarPoisonBit); a
			// 2-bit value has that bit clear exactly when it's < 2.
			e = e.And(tv.Ult(smt.MkUInt(2, 2)))
		}
	}
	return e
}

// instantiate is the per-input-kind expansion of a raw obligation:
// enumerate each input's ty_var over its three legal values {none,
// undef, poison} (value 3 is reserved and never produced),
// substituting into every instance produced so far and dropping
// branches that simplify to false. An input whose ty_var does not
// occur in a given instance leaves that instance unchanged rather
// than fanning it out 3x.
//
// Once a completed input's fan-out leaves maxInstances or more live
// instances (or the memory probe trips), no further inputs are folded
// in. The set built so far is returned whole: every instance is a
// disjunct of the final obligation, and discarding one would hide any
// counterexample that only lives in that branch.
func instantiate(e smt.Expr, inputs []*ir.Input, cfg *config.Config, logger *log.Logger) []instance {
	insts := []instance{{expr: e, witness: smt.MkTrue()}}
	for i, in := range inputs {
		tv := in.TyVar()
		var next []instance
		for _, cur := range insts {
			if !mentions(cur.expr, tv) {
				next = append(next, cur)
				continue
			}
			for v := uint64(0); v < 3; v++ {
				sub := cur.expr.Subst(tv, smt.MkUInt(v, 2)).Simplify()
				if sub.IsFalse() {
					continue
				}
				next = append(next, instance{
					expr:    sub,
					witness: cur.witness.And(tv.Eq(smt.MkUInt(v, 2))),
				})
			}
		}
		insts = next
		if len(insts) >= maxInstances || (cfg != nil && cfg.HitHalfMemoryLimit()) {
			logBailout(insts, len(inputs)-i-1, logger)
			break
		}
	}
	return insts
}

// mentions reports whether v's variable appears free in e, comparing
// by name (the same key Subst and Model.Eval use) rather than Expr
// identity, since the caller only has v's name in common with however
// e's copy of that variable was originally built.
func mentions(e, v smt.Expr) bool {
	name := v.String()
	for _, fv := range e.Vars() {
		if fv.String() == name {
			return true
		}
	}
	return false
}

// logBailout records that instantiation stopped growing: the live
// instance set's text form is zstd-compressed and its sizes logged, so
// a post-mortem can see how large the disjunction already was and how
// many inputs were left symbolic when the cap (or the memory probe)
// tripped. Purely diagnostic; the instances themselves all survive
// into the obligation regardless.
func logBailout(insts []instance, inputsLeft int, logger *log.Logger) {
	if logger == nil {
		return
	}
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return
	}
	var raw int
	for _, inst := range insts {
		s := inst.expr.String()
		raw += len(s) + 1
		enc.Write([]byte(s))
		enc.Write([]byte{'\n'})
	}
	enc.Close()
	logger.Printf("preprocess: stopped instantiating at %d instance(s), %d input(s) left symbolic (%d bytes -> %d compressed)",
		len(insts), inputsLeft, raw, buf.Len())
}
