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

// Package symexec is a deliberately tiny symbolic executor: it runs a
// Function's Body closure and converts the two conditions a richer
// executor could hit (a loop in the CFG, running out of memory) into
// skip-function errors, without implementing a real control-flow walk
// or per-opcode semantics. A Body that actually contains a
// loop has nowhere to put it (there is no CFG here to loop over); the
// two sentinel errors exist so a future, real frontend's Body can
// report them through the same channel this package's tests exercise.
package symexec

import (
	"errors"
	"fmt"
	"log"

	"github.com/tv-core/tvcheck/ir"
	"github.com/tv-core/tvcheck/ir/types"
)

// ErrLoopInCFG and ErrOutOfMemory are the two conditions a Body may
// return to signal that the function cannot be verified; Exec
// translates either into the user-visible "Skipping function"
// message.
var (
	ErrLoopInCFG   = errors.New("loops are not supported yet")
	ErrOutOfMemory = errors.New("out of memory")
)

// SkipError is returned by Exec when the function could not be
// executed and must be skipped rather than verified.
type SkipError struct {
	Function string
	Cause    error
}

func (e *SkipError) Error() string {
	switch {
	case errors.Is(e.Cause, ErrLoopInCFG):
		return fmt.Sprintf("Loops are not supported yet! Skipping function %q.", e.Function)
	case errors.Is(e.Cause, ErrOutOfMemory):
		return fmt.Sprintf("Out of memory; skipping function %q.", e.Function)
	default:
		return fmt.Sprintf("skipping function %q: %v", e.Function, e.Cause)
	}
}

func (e *SkipError) Unwrap() error { return e.Cause }

// Exec runs fn.Body against a fresh State, logging (via logger, which
// may be nil to discard) and wrapping any Body failure as a
// *SkipError so the driver reports the function as skipped rather
// than verified.
func Exec(fn *ir.Function, mem types.MemoryFacade, logger *log.Logger) (*ir.State, error) {
	s := ir.NewState()
	if fn.Body == nil {
		return s, nil
	}
	if err := fn.Body(mem, s); err != nil {
		if logger != nil {
			logger.Printf("symexec: %s: %v", fn.Name, err)
		}
		return nil, &SkipError{Function: fn.Name, Cause: err}
	}
	return s, nil
}
