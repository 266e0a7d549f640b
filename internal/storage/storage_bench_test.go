// Copyright 2025 Chonk Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"testing"
)

// BenchmarkCursorInsert measures the per-child cost of the slab protocol:
// one wide directory, init/finish per entry.
func BenchmarkCursorInsert(b *testing.B) {
	ts, err := NewTreeStore("/bench", Config{ReservedBytes: 1 << 30})
	if err != nil {
		b.Fatal(err)
	}
	defer ts.Close()
	c, err := ts.NewCursorAt("/bench")
	if err != nil {
		b.Fatal(err)
	}

	if err := c.ChildrenBegin(uint32(b.N)); err != nil {
		b.Skipf("reservation too small for b.N=%d: %v", b.N, err)
	}
	name := []byte("bench-file-000000")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := c.ChildInit()
		e.Kind = KindFile
		_ = e.SetName(string(name))
		e.SetCounts(4096, 8)
		c.ChildFinish()
	}
	c.ChildrenEnd()
}

// BenchmarkReadViewChildrenOf measures a sorted listing of a directory with
// a fixed fan-out, reusing the caller buffer as the UI does per frame.
func BenchmarkReadViewChildrenOf(b *testing.B) {
	ts, err := NewTreeStore("/bench", Config{ReservedBytes: 1 << 28})
	if err != nil {
		b.Fatal(err)
	}
	defer ts.Close()
	c, err := ts.NewCursorAt("/bench")
	if err != nil {
		b.Fatal(err)
	}

	const fanout = 1000
	if err := c.ChildrenBegin(fanout); err != nil {
		b.Fatal(err)
	}
	for i := 0; i < fanout; i++ {
		e := c.ChildInit()
		e.Kind = KindFile
		_ = e.SetName(fmt.Sprintf("entry-%04d", i))
		e.SetCounts(uint64(i*7%4096), 1)
		c.ChildFinish()
	}
	c.ChildrenEnd()

	rv := ts.ReadView()
	var out []ChildRecord
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if rv.ChildrenOf(rv.Root(), &out) != Ready {
			b.Fatal("listing not ready")
		}
	}
}
