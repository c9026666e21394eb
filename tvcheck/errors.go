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

// Package tvcheck is the refinement checker: the three-obligation
// decomposition, preprocess's selective quantifier instantiation, the
// TransformVerify driver and typing-assignment enumeration, and the
// counterexample reporter.
package tvcheck

import (
	"fmt"
	"strings"
)

// Errors accumulates the verdicts a Verify() run collects. It
// satisfies the error interface so a caller
// that only cares "did this pass" can test AsError() == nil.
type Errors struct {
	items []string
}

// Add appends a formatted message.
func (e *Errors) Add(format string, args ...any) {
	e.items = append(e.items, fmt.Sprintf(format, args...))
}

// Empty reports whether no failure has been recorded.
func (e *Errors) Empty() bool { return len(e.items) == 0 }

// Messages returns the recorded failures in the order they were added.
func (e *Errors) Messages() []string { return e.items }

// Error renders every recorded failure, blank-line separated, so a
// multi-paragraph counterexample report reads cleanly when concatenated.
func (e *Errors) Error() string { return strings.Join(e.items, "\n\n") }

// AsError returns e as an error, or nil when nothing was recorded;
// this is the idiom this package's own callers use instead of a bool
// return.
func (e *Errors) AsError() error {
	if e.Empty() {
		return nil
	}
	return e
}
