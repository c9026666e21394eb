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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultFraction(t *testing.T) {
	c := Default()
	if c.fraction() != 0.5 {
		t.Fatalf("fraction: got %v, want 0.5", c.fraction())
	}
	var zero Config
	if zero.fraction() != 0.5 {
		t.Fatalf("zero-value fraction: got %v, want 0.5", zero.fraction())
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tvcheck.yaml")
	doc := "disable_undef_input: true\nmemory_limit_fraction: 0.75\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !c.DisableUndefInput {
		t.Fatal("expected DisableUndefInput to be true")
	}
	if c.DisablePoisonInput {
		t.Fatal("expected DisablePoisonInput to default false")
	}
	if c.fraction() != 0.75 {
		t.Fatalf("fraction: got %v, want 0.75", c.fraction())
	}
}

func TestHeapMemoryFallback(t *testing.T) {
	cur, total, ok := heapMemory()
	if !ok {
		t.Skip("unix.Sysinfo unavailable in this environment")
	}
	if total == 0 {
		t.Fatal("expected non-zero total memory")
	}
	_ = cur
}
