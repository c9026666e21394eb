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

package symexec

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/tv-core/tvcheck/ir"
	"github.com/tv-core/tvcheck/ir/types"
	"github.com/tv-core/tvcheck/memory"
	"github.com/tv-core/tvcheck/smt"
)

func okFn() *ir.Function {
	return &ir.Function{
		Name: "ok",
		Body: func(mem types.MemoryFacade, s *ir.State) error {
			s.ReturnVal = types.StateValue{Value: smt.MkUInt(1, 8), NonPoison: smt.MkTrue()}
			s.ReturnDomain = smt.MkTrue()
			s.Returned = true
			return nil
		},
	}
}

func failingFn(name string, cause error) *ir.Function {
	return &ir.Function{
		Name: name,
		Body: func(mem types.MemoryFacade, s *ir.State) error {
			return cause
		},
	}
}

func TestExecNilBodyReturnsEmptyState(t *testing.T) {
	fn := &ir.Function{Name: "noop"}
	s, err := Exec(fn, memory.New(), nil)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if s.Returned {
		t.Fatal("expected a function with no Body to not have returned")
	}
}

func TestExecRunsBody(t *testing.T) {
	s, err := Exec(okFn(), memory.New(), nil)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !s.Returned {
		t.Fatal("expected Returned to be true after a Body that sets it")
	}
	u, ok := s.ReturnVal.Value.IsUInt()
	if !ok || u != 1 {
		t.Fatalf("unexpected return value: %v", s.ReturnVal.Value)
	}
}

func TestExecWrapsLoopInCFG(t *testing.T) {
	_, err := Exec(failingFn("hasloop", ErrLoopInCFG), memory.New(), nil)
	var skip *SkipError
	if !errors.As(err, &skip) {
		t.Fatalf("expected a *SkipError, got %v (%T)", err, err)
	}
	if !errors.Is(skip, ErrLoopInCFG) {
		t.Fatalf("expected Unwrap to expose ErrLoopInCFG, got %v", skip.Cause)
	}
	want := `Loops are not supported yet! Skipping function "hasloop".`
	if skip.Error() != want {
		t.Fatalf("Error(): got %q, want %q", skip.Error(), want)
	}
}

func TestExecWrapsOutOfMemory(t *testing.T) {
	_, err := Exec(failingFn("toobig", ErrOutOfMemory), memory.New(), nil)
	var skip *SkipError
	if !errors.As(err, &skip) {
		t.Fatalf("expected a *SkipError, got %v (%T)", err, err)
	}
	want := `Out of memory; skipping function "toobig".`
	if skip.Error() != want {
		t.Fatalf("Error(): got %q, want %q", skip.Error(), want)
	}
}

func TestExecLogsSkippedFunction(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, "", 0)
	_, err := Exec(failingFn("hasloop", ErrLoopInCFG), memory.New(), logger)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(buf.String(), "hasloop") {
		t.Fatalf("expected the log to mention the skipped function, got %q", buf.String())
	}
}
