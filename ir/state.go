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

// Package ir is the IR surface the refinement checker consumes:
// Function, Input, Instr, Transform and the runtime State a symbolic
// executor populates. It does not parse or interpret concrete IR
// syntax: a Function's computation is supplied directly as a Body
// closure, the same way a test in this repo or a real frontend would
// build one.
package ir

import (
	"fmt"
	"io"

	"github.com/tv-core/tvcheck/ir/types"
	"github.com/tv-core/tvcheck/smt"
)

// Bit positions within Input.TyVar(): bit 0 selects "this read may
// return undef", bit 1 selects "this read may return poison". Value 3
// (both bits set) is never produced; ty_var is only ever substituted
// with {0,1,2} during preprocess's instantiation loop.
const (
	TyVarUndefBit  = uint64(1)
	TyVarPoisonBit = uint64(2)
)

// Input is a function parameter: a Type plus the 2-bit selector
// deciding whether a read of it may observe undef and/or poison.
type Input struct {
	Name string
	Typ  types.Type
}

// TyVar is the fresh 2-bit SMT variable selecting this input's
// undef/poison admission.
func (in *Input) TyVar() smt.Expr { return smt.MkVar(in.Name+"_tyvar", 2) }

// Instr is a named, non-input value produced by the program.
type Instr struct {
	Name string
	Typ  types.Type
}

// Function is one side of a Transform.
type Function struct {
	Name       string
	ReturnType types.Type
	Inputs     []*Input
	Instrs     []*Instr // declaration order

	// Pre is the precondition under which the function's behavior is
	// specified; the zero Expr means "true".
	Pre smt.Expr

	// Body computes every instruction's StateValue, plus the return
	// value, into s. This is symexec's sole hook into a Function; see
	// the package doc for why no opcode interpreter lives here.
	Body func(mem types.MemoryFacade, s *State) error
}

func (f *Function) HasReturn() bool {
	return f.ReturnType != nil && f.ReturnType != types.Void
}

// Precondition returns f.Pre, defaulting to true.
func (f *Function) Precondition() smt.Expr {
	if !f.Pre.IsValid() {
		return smt.MkTrue()
	}
	return f.Pre
}

// GetTypeConstraints conjoins the return type's and every input's and
// instruction's self-consistency clause, consulting cache so a type
// shape shared across several of this function's slots (or the other
// side of the Transform, if the caller passes the same cache) is only
// ever built once.
func (f *Function) GetTypeConstraints(cache *types.ConstraintCache) smt.Expr {
	c := smt.MkTrue()
	if f.ReturnType != nil {
		c = c.And(cache.Get(f.ReturnType))
	}
	for _, in := range f.Inputs {
		c = c.And(cache.Get(in.Typ))
	}
	for _, ins := range f.Instrs {
		c = c.And(cache.Get(ins.Typ))
	}
	return c
}

// FixupTypes mutates every type owned by f into its definite form
// under m.
func (f *Function) FixupTypes(m smt.Model) {
	if f.ReturnType != nil {
		f.ReturnType.Fixup(m)
	}
	for _, in := range f.Inputs {
		in.Typ.Fixup(m)
	}
	for _, ins := range f.Instrs {
		ins.Typ.Fixup(m)
	}
}

func (f *Function) InputByName(name string) *Input {
	for _, in := range f.Inputs {
		if in.Name == name {
			return in
		}
	}
	return nil
}

func (f *Function) InstrByName(name string) *Instr {
	for _, ins := range f.Instrs {
		if ins.Name == name {
			return ins
		}
	}
	return nil
}

func (f *Function) print(w io.Writer) {
	fmt.Fprintf(w, "  inputs:")
	for _, in := range f.Inputs {
		fmt.Fprintf(w, " %s:%s", in.Name, in.Typ.String())
	}
	fmt.Fprintln(w)
	for _, ins := range f.Instrs {
		fmt.Fprintf(w, "  %s = <instr>:%s\n", ins.Name, ins.Typ.String())
	}
	if f.HasReturn() {
		fmt.Fprintf(w, "  ret %s\n", f.ReturnType.String())
	} else {
		fmt.Fprintln(w, "  ret void")
	}
}

// State is the runtime result of symbolically executing a Function:
// the path predicate reaching the current point, every named
// instruction's (value, non_poison) pair in declaration order, and,
// once the function returns, its return domain and value.
type State struct {
	Domain smt.Expr

	Values map[string]types.StateValue
	Order  []string // declaration order, first-write-wins

	Returned     bool
	ReturnDomain smt.Expr
	ReturnVal    types.StateValue

	// QVars are the nondeterministic SMT variables introduced while
	// computing this state (undef reads, memory nondeterminism);
	// UndefQVars is the subset introduced specifically by undef reads.
	// Both feed tvcheck.preprocess's universal-quantification step.
	// Plain input variables are not tracked here: they stay free in
	// the refinement query so a satisfying assignment binds them to a
	// concrete counterexample input.
	QVars      []smt.Expr
	UndefQVars []smt.Expr
}

func NewState() *State {
	return &State{Domain: smt.MkTrue(), Values: map[string]types.StateValue{}}
}

// Set records v as the value of the named instruction, tracking
// declaration order on first write.
func (s *State) Set(name string, v types.StateValue) {
	if _, ok := s.Values[name]; !ok {
		s.Order = append(s.Order, name)
	}
	s.Values[name] = v
}

func (s *State) At(name string) types.StateValue { return s.Values[name] }

// TrackQVar records a fresh variable the obligation builder must
// universally quantify over; undef marks it as introduced by an undef
// read.
func (s *State) TrackQVar(v smt.Expr, undef bool) {
	s.QVars = append(s.QVars, v)
	if undef {
		s.UndefQVars = append(s.UndefQVars, v)
	}
}

// Transform pairs a source and target Function under one name.
type Transform struct {
	Name string
	Src  *Function
	Tgt  *Function
}

// TypeConstraints builds the conjunction the typing-assignment
// enumerator drives a solver over to find models of. Src and Tgt share
// one ConstraintCache, so a type shape appearing on both sides of the
// Transform (the common case: most rewrites only touch a few values)
// is only built once total, not once per side.
func (t *Transform) TypeConstraints(checkEachVar bool) smt.Expr {
	cache := types.NewConstraintCache()
	c := t.Src.GetTypeConstraints(cache).And(t.Tgt.GetTypeConstraints(cache))
	c = c.And(t.Src.ReturnType.Equal(t.Tgt.ReturnType))

	tgtIn := make(map[string]*Input, len(t.Tgt.Inputs))
	for _, in := range t.Tgt.Inputs {
		tgtIn[in.Name] = in
	}
	for _, in := range t.Src.Inputs {
		if o, ok := tgtIn[in.Name]; ok {
			c = c.And(in.Typ.Equal(o.Typ))
		}
	}

	if checkEachVar {
		tgtInstr := make(map[string]*Instr, len(t.Tgt.Instrs))
		for _, ins := range t.Tgt.Instrs {
			tgtInstr[ins.Name] = ins
		}
		for _, ins := range t.Src.Instrs {
			if o, ok := tgtInstr[ins.Name]; ok {
				c = c.And(ins.Typ.Equal(o.Typ))
			}
		}
	}
	return c
}

// FixupTypes mutates both functions' types under m.
func (t *Transform) FixupTypes(m smt.Model) {
	t.Src.FixupTypes(m)
	t.Tgt.FixupTypes(m)
}

// Print renders the transform's shape (not its semantics, which live
// only in the Body closures) for diagnostics.
func (t *Transform) Print(w io.Writer) {
	fmt.Fprintf(w, "%s:\nsource:\n", t.Name)
	t.Src.print(w)
	fmt.Fprintln(w, "target:")
	t.Tgt.print(w)
}
