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

import "sort"

// EntryRef is an opaque reader-side handle to a published entry.
type EntryRef uint32

// ReadStatus is the outcome of a child listing.
type ReadStatus int

const (
	// Ready means out holds the full, sorted child list.
	Ready ReadStatus = iota
	// NotReady means at least one child is still being written; the UI
	// shows no children until all of them are visible.
	NotReady
	// Empty means the entry has no children.
	Empty
)

// ChildRecord is one row of a directory listing.
type ChildRecord struct {
	Name       string
	Kind       Kind
	ByteCount  uint64
	BlockCount uint64
	Ref        EntryRef
}

// ReadView is the thread-safe read side used by the UI. Any number of
// ReadViews may run concurrently with the single writer; they never block
// it and never observe a half-written entry.
//
// Directory byte/block totals may be stale while the writer is still deeper
// in that subtree. Names, kinds, and the child-list shape are exact once a
// listing returns Ready.
type ReadView struct {
	store *TreeStore
}

// Root returns a handle to the root entry.
func (rv *ReadView) Root() EntryRef {
	return EntryRef(rv.store.RootIndex())
}

// Entry resolves a handle obtained from Root or a ChildRecord.
func (rv *ReadView) Entry(ref EntryRef) *Entry {
	return rv.store.Entry(uint32(ref))
}

// ChildrenOf fills out with the children of ref, sorted descending by byte
// count with ties broken by name, reusing out's capacity. The listing is
// aborted with NotReady if the entry itself or any child is still locked:
// conservative, but it guarantees that a visible child implies visible
// names and kinds for all its siblings.
func (rv *ReadView) ChildrenOf(ref EntryRef, out *[]ChildRecord) ReadStatus {
	*out = (*out)[:0]
	e := rv.store.Entry(uint32(ref))
	if e.Locked() {
		return NotReady
	}
	// The acquire above orders these plain loads after the writer's stores.
	start, count := e.ChildrenStart, e.ChildrenCount
	if count == 0 {
		return Empty
	}
	children := rv.store.pool.Slice(start, count)
	for i := range children {
		c := &children[i]
		if c.Locked() {
			*out = (*out)[:0]
			return NotReady
		}
		*out = append(*out, ChildRecord{
			Name:       c.Name(),
			Kind:       c.Kind,
			ByteCount:  c.ByteCount(),
			BlockCount: c.BlockCount(),
			Ref:        EntryRef(start + uint32(i)),
		})
	}
	recs := *out
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ByteCount != recs[j].ByteCount {
			return recs[i].ByteCount > recs[j].ByteCount
		}
		return recs[i].Name < recs[j].Name
	})
	return Ready
}

// Stats returns store-level diagnostics for the UI.
func (rv *ReadView) Stats() StoreStats {
	return rv.store.Stats()
}
