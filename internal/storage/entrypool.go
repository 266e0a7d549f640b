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
	"sync/atomic"
	"unsafe"
)

// EntryPool bump-allocates slabs of Entry records on whole PageStore pages
// past the header. Entries are addressed by global 512-byte slot index
// (offset = index * EntrySize), so slab starts are always page-aligned and
// slot 0 — header metadata — is never a valid entry.
//
// Only Alloc mutates the extent, and only the single writer may call it.
// There is no free path: the design trades reservation capacity for zero
// synchronization between allocation and concurrent readers.
type EntryPool struct {
	ps             *PageStore
	entriesPerPage uint32
	nextPage       uint32

	// allocated counts entry records handed out across all slabs; atomic
	// because readers surface it through Stats while the writer allocates.
	allocated atomic.Uint64
}

// NewEntryPool overlays a pool on the pages past the store header.
func NewEntryPool(ps *PageStore, headerPages uint32) *EntryPool {
	return &EntryPool{
		ps:             ps,
		entriesPerPage: uint32(ps.PageSize() / EntrySize),
		nextPage:       headerPages,
	}
}

// Alloc allocates a zeroed, page-aligned slab of count entries and returns
// its starting slot index. Fails with ErrOutOfCapacity when the reservation
// is exhausted; the extent is unchanged on failure.
func (p *EntryPool) Alloc(count uint32) (uint32, error) {
	if count == 0 {
		panic("storage: zero-length slab")
	}
	pageSize := uint64(p.ps.PageSize())
	pages := (uint64(count)*EntrySize + pageSize - 1) / pageSize
	if err := p.ps.GrowTo(p.nextPage + uint32(pages)); err != nil {
		return 0, fmt.Errorf("alloc slab of %d entries: %w", count, err)
	}
	start := p.nextPage * p.entriesPerPage
	p.nextPage += uint32(pages)
	p.allocated.Add(uint64(count))
	return start, nil
}

// Allocated returns the number of entry records allocated so far.
func (p *EntryPool) Allocated() uint64 {
	return p.allocated.Load()
}

// Entry returns the record at the given global slot index. The index must
// lie within the committed extent; anything else is a programmer error.
func (p *EntryPool) Entry(index uint32) *Entry {
	return (*Entry)(unsafe.Pointer(p.ps.slotPtr(index)))
}

// Slice returns the contiguous run of count entries starting at start.
func (p *EntryPool) Slice(start, count uint32) []Entry {
	if count == 0 {
		return nil
	}
	// The whole run must be committed; checking the last slot covers it.
	p.ps.slotPtr(start + count - 1)
	return unsafe.Slice(p.Entry(start), count)
}
