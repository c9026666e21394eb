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

// Package idgen mints run-scoped identifiers: a fresh TypingContext
// is threaded into each verification run instead of a process-wide
// counter that would have to be reset at the start of every run and
// would race across concurrently-running verifications in the same
// process.
package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// TypingContext owns the identifiers minted during one verification
// run: a correlation id, which TransformVerify.Verify uses to prefix
// that run's log lines so concurrent runs in the same process don't
// interleave unintelligibly, and a run-scoped counter from which
// FreshName derives unique name suffixes.
type TypingContext struct {
	runID   string
	counter uint64
}

// New starts a fresh context, stamped with a random run id.
func New() *TypingContext {
	return &TypingContext{runID: uuid.New().String()}
}

// RunID is the correlation id for this verification run.
func (c *TypingContext) RunID() string { return c.runID }

// Next returns a fresh, run-scoped sequence number.
func (c *TypingContext) Next() uint64 {
	return atomic.AddUint64(&c.counter, 1)
}

// FreshName derives a name guaranteed unique within this run by
// suffixing prefix with the next sequence number.
func (c *TypingContext) FreshName(prefix string) string {
	return fmt.Sprintf("%s$%d", prefix, c.Next())
}
