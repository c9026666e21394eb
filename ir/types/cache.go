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

package types

import "github.com/tv-core/tvcheck/smt"

// ConstraintCache memoizes GetTypeConstraints() by CacheKey, so a
// Transform's two Functions (and the many Inputs/Instrs within each)
// that happen to share a type's shape build its self-consistency
// clause once rather than once per occurrence. It is deliberately not
// safe for concurrent use: one Transform.TypeConstraints call builds
// one cache and uses it sequentially.
type ConstraintCache struct {
	byKey map[uint64]smt.Expr
}

// NewConstraintCache returns an empty cache ready for use.
func NewConstraintCache() *ConstraintCache {
	return &ConstraintCache{byKey: make(map[uint64]smt.Expr)}
}

// Get returns t.GetTypeConstraints(), computing it on first request
// for t's CacheKey and reusing the stored Expr on every subsequent
// request with the same key.
func (c *ConstraintCache) Get(t Type) smt.Expr {
	if t == nil {
		return smt.MkTrue()
	}
	key := t.CacheKey()
	if e, ok := c.byKey[key]; ok {
		return e
	}
	e := t.GetTypeConstraints()
	c.byKey[key] = e
	return e
}
