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

// Package config holds the refinement checker's external knobs: the
// two input-filter flags preprocess consults and the memory-pressure
// probe that decides between the plain-forall and instantiated forms
// of an obligation. It follows the same shape as db.TableDefinition
// (json-tagged struct, decoded through sigs.k8s.io/yaml so either a
// YAML or JSON document loads it) rather than inventing a bespoke
// flag parser.
package config

import (
	"os"

	"sigs.k8s.io/yaml"

	"github.com/tv-core/tvcheck/cgroup"
)

// Config holds the checker's runtime-configurable behavior.
type Config struct {
	// DisableUndefInput, when set, restricts preprocess's
	// instantiation to exclude ty_var==1 (undef) for every source
	// input.
	DisableUndefInput bool `json:"disable_undef_input,omitempty"`
	// DisablePoisonInput similarly excludes ty_var's poison bit.
	DisablePoisonInput bool `json:"disable_poison_input,omitempty"`
	// MemoryLimitFraction is the fraction of the cgroup (or, lacking
	// one, the machine's) memory limit above which
	// HitHalfMemoryLimit reports true. Despite the method's name this
	// is configurable; 0.5 is the default.
	MemoryLimitFraction float64 `json:"memory_limit_fraction,omitempty"`
}

// Default returns the zero-value configuration with every flag off
// and the conventional one-half threshold.
func Default() *Config {
	return &Config{MemoryLimitFraction: 0.5}
}

// Load reads and decodes a YAML (or JSON, which is a YAML subset)
// configuration document from path.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) fraction() float64 {
	if c == nil || c.MemoryLimitFraction <= 0 {
		return 0.5
	}
	return c.MemoryLimitFraction
}

// HitHalfMemoryLimit is the probe preprocess's instantiation loop
// consults before and during each expansion step. It prefers a
// cgroup-v2 memory.current/memory.max reading (accurate under a
// container memory limit) and falls back to a heap-vs-physical-memory
// heuristic via runtime.MemStats and golang.org/x/sys/unix.Sysinfo
// when no cgroup is available (e.g. running outside a container).
func (c *Config) HitHalfMemoryLimit() bool {
	if cur, max, ok := cgroupMemory(); ok {
		return float64(cur) >= c.fraction()*float64(max)
	}
	cur, total, ok := heapMemory()
	if !ok {
		return false
	}
	return float64(cur) >= c.fraction()*float64(total)
}

func cgroupMemory() (cur, max int64, ok bool) {
	self, err := cgroup.Self()
	if err != nil {
		return 0, 0, false
	}
	cur, err = self.ReadInt("memory.current")
	if err != nil {
		return 0, 0, false
	}
	max, err = self.ReadInt("memory.max")
	if err != nil {
		// either unlimited (cgroup.ErrMemoryUnlimited) or unreadable;
		// either way there is no ceiling to compare against.
		return 0, 0, false
	}
	return cur, max, true
}
