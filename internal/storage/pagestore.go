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
	"os"

	"chonk/internal/common"
)

const (
	// DefaultReservedBytes is the default size of the address reservation.
	// Entries are never freed or moved, so the reservation bounds the total
	// number of indexable filesystem objects (~2M entries per GiB).
	DefaultReservedBytes = 8 << 30

	// DefaultHeaderPages is the number of pages committed at init: one for
	// store metadata plus the root entry, one for the root path bytes.
	DefaultHeaderPages = 2
)

// Config sizes the backing reservation.
type Config struct {
	// ReservedBytes is the size of the virtual address range to reserve.
	// Rounded down to a whole number of pages.
	ReservedBytes uint64

	// HeaderPages is the number of pages committed up front for store
	// metadata. Must be at least 2.
	HeaderPages uint32

	// PageSize is the commit granularity. Zero means the host page size.
	// Must be a multiple of EntrySize.
	PageSize int
}

// DefaultConfig returns the production sizing.
func DefaultConfig() Config {
	return Config{
		ReservedBytes: DefaultReservedBytes,
		HeaderPages:   DefaultHeaderPages,
	}
}

func (c Config) withDefaults() (Config, error) {
	if c.PageSize == 0 {
		c.PageSize = os.Getpagesize()
	}
	if c.PageSize <= 0 || c.PageSize%EntrySize != 0 {
		return c, fmt.Errorf("page size %d is not a multiple of %d", c.PageSize, EntrySize)
	}
	// The first header page holds the store metadata plus the root entry
	// in its last EntrySize bytes; they must not overlap.
	if c.PageSize < 2*EntrySize {
		return c, fmt.Errorf("page size %d cannot hold header and root entry", c.PageSize)
	}
	if c.HeaderPages == 0 {
		c.HeaderPages = DefaultHeaderPages
	}
	if c.HeaderPages < 2 {
		return c, fmt.Errorf("need at least 2 header pages, got %d", c.HeaderPages)
	}
	if c.ReservedBytes == 0 {
		c.ReservedBytes = DefaultReservedBytes
	}
	if c.ReservedBytes/uint64(c.PageSize) < uint64(c.HeaderPages) {
		return c, fmt.Errorf("reservation of %d bytes cannot hold %d header pages",
			c.ReservedBytes, c.HeaderPages)
	}
	return c, nil
}

// PageStore owns a fixed-address contiguous byte region, reserved up front
// and committed page by page as the entry extent grows. Addresses are stable
// for the store's lifetime, so entry references by index stay valid across
// growth without remapping.
//
// GrowTo is writer-only; Extent and page reads are safe from any goroutine
// that reached the pages through a published entry index (the publication
// release/acquire pair orders the commit before the read).
type PageStore struct {
	pageSize  int
	reserved  uint32 // total pages in the reservation
	committed uint32 // pages currently committed; writer-only
	buf       []byte // whole reserved range; only [0 : committed*pageSize] is accessible
}

// NewPageStore reserves the address range and commits the header pages.
func NewPageStore(cfg Config) (*PageStore, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	pages := uint32(cfg.ReservedBytes / uint64(cfg.PageSize))
	buf, err := reserve(uint64(pages) * uint64(cfg.PageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAddressSpaceReservation, err)
	}
	ps := &PageStore{
		pageSize: cfg.PageSize,
		reserved: pages,
		buf:      buf,
	}
	if err := ps.GrowTo(cfg.HeaderPages); err != nil {
		ps.Close()
		return nil, err
	}
	return ps, nil
}

// PageSize returns the commit granularity in bytes.
func (ps *PageStore) PageSize() int { return ps.pageSize }

// Extent returns the current committed page count.
func (ps *PageStore) Extent() uint32 { return ps.committed }

// Reserved returns the total page count of the reservation.
func (ps *PageStore) Reserved() uint32 { return ps.reserved }

// GrowTo ensures the first pages pages are committed. Idempotent. Fails with
// ErrOutOfCapacity when pages exceeds the reservation.
func (ps *PageStore) GrowTo(pages uint32) error {
	if pages <= ps.committed {
		return nil
	}
	if pages > ps.reserved {
		return fmt.Errorf("%w: need %d pages, reserved %d", common.ErrOutOfCapacity, pages, ps.reserved)
	}
	lo := uint64(ps.committed) * uint64(ps.pageSize)
	hi := uint64(pages) * uint64(ps.pageSize)
	if err := commit(ps.buf[lo:hi]); err != nil {
		return fmt.Errorf("commit pages %d..%d: %w", ps.committed, pages, err)
	}
	ps.committed = pages
	return nil
}

// BytesAt returns the byte slice at the given offset inside a committed
// page. Panics on out-of-extent access; callers only hold offsets derived
// from committed indices.
func (ps *PageStore) BytesAt(page uint32, off, n int) []byte {
	if page >= ps.committed {
		panic(fmt.Sprintf("storage: page %d beyond extent %d", page, ps.committed))
	}
	base := int(page)*ps.pageSize + off
	if off < 0 || n < 0 || off+n > ps.pageSize {
		panic(fmt.Sprintf("storage: byte range %d+%d outside page of %d", off, n, ps.pageSize))
	}
	return ps.buf[base : base+n]
}

// committedBytes returns the size of the accessible prefix.
func (ps *PageStore) committedBytes() uint64 {
	return uint64(ps.committed) * uint64(ps.pageSize)
}

// slotPtr returns the address of the 512-byte slot at the given global
// index. The slot must lie within the committed extent.
func (ps *PageStore) slotPtr(index uint32) *byte {
	off := uint64(index) * EntrySize
	if off+EntrySize > ps.committedBytes() {
		panic(fmt.Sprintf("storage: slot %d beyond extent %d pages", index, ps.committed))
	}
	return &ps.buf[off]
}

// Close releases the reservation. No entry derived from the store may be
// used afterwards.
func (ps *PageStore) Close() error {
	if ps.buf == nil {
		return nil
	}
	err := release(ps.buf)
	ps.buf = nil
	ps.committed = 0
	return err
}
