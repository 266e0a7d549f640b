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
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"chonk/internal/common"
)

// Header page 0 layout. The root entry occupies the last EntrySize bytes of
// the page; the root path string lives in page 1. Index references are
// position-independent, so a future on-disk backing can reuse the format.
const (
	storeMagic   = "CHNK"
	storeVersion = uint16(1)

	headerOffsetMagic       = 0
	headerOffsetVersion     = 4
	headerOffsetPageSize    = 8
	headerOffsetHeaderPages = 12
	headerOffsetRootPathLen = 16
)

// TreeStore composes the page store, the entry pool, one distinguished root
// entry, and the root path. It is the unit handed to the single writer (as a
// Cursor) and to any number of readers (as a ReadView).
type TreeStore struct {
	ps       *PageStore
	pool     *EntryPool
	rootPath string
	rootIdx  uint32

	filesIndexed atomic.Uint64
	dirsIndexed  atomic.Uint64
}

// StoreStats is a diagnostics snapshot for the UI.
type StoreStats struct {
	FilesIndexed   uint64
	DirsIndexed    uint64
	EntriesTotal   uint64
	PagesCommitted uint32
}

// NewTreeStore reserves the backing region, writes the header, and
// initializes the root entry (parent = RootSentinel, locked) for rootPath.
// The path must fit in one page less the trailing NUL.
func NewTreeStore(rootPath string, cfg Config) (*TreeStore, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	ps, err := NewPageStore(cfg)
	if err != nil {
		return nil, err
	}
	if len(rootPath) > ps.PageSize()-1 {
		ps.Close()
		return nil, fmt.Errorf("root path of %d bytes: %w", len(rootPath), common.ErrNameTooLong)
	}

	hdr := ps.BytesAt(0, 0, ps.PageSize())
	copy(hdr[headerOffsetMagic:], storeMagic)
	binary.LittleEndian.PutUint16(hdr[headerOffsetVersion:], storeVersion)
	binary.LittleEndian.PutUint32(hdr[headerOffsetPageSize:], uint32(ps.PageSize()))
	binary.LittleEndian.PutUint32(hdr[headerOffsetHeaderPages:], cfg.HeaderPages)
	binary.LittleEndian.PutUint32(hdr[headerOffsetRootPathLen:], uint32(len(rootPath)))
	copy(ps.BytesAt(1, 0, len(rootPath)), rootPath)

	ts := &TreeStore{
		ps:       ps,
		pool:     NewEntryPool(ps, cfg.HeaderPages),
		rootPath: rootPath,
		rootIdx:  uint32(ps.PageSize()/EntrySize) - 1,
	}

	root := ts.Entry(ts.rootIdx)
	root.Parent = RootSentinel
	root.Kind = KindDir
	if err := root.SetName(common.RootName(rootPath)); err != nil {
		ps.Close()
		return nil, fmt.Errorf("root name: %w", err)
	}
	root.lockInit()
	return ts, nil
}

// RootPath returns the absolute path this store indexes.
func (ts *TreeStore) RootPath() string { return ts.rootPath }

// RootIndex returns the root entry's slot index.
func (ts *TreeStore) RootIndex() uint32 { return ts.rootIdx }

// Root returns the root entry.
func (ts *TreeStore) Root() *Entry { return ts.Entry(ts.rootIdx) }

// Entry resolves a slot index, including the root's.
func (ts *TreeStore) Entry(index uint32) *Entry {
	return ts.pool.Entry(index)
}

// NewCursorAt returns a fresh single-writer cursor positioned at the root.
// Subtree-scoped cursors are a future extension; any path other than the
// store's root path yields ErrNotSupported.
func (ts *TreeStore) NewCursorAt(path string) (*Cursor, error) {
	if path != ts.rootPath {
		return nil, fmt.Errorf("cursor at %q: %w", path, common.ErrNotSupported)
	}
	return newCursor(ts), nil
}

// ReadView returns the thread-safe read side used by the UI.
func (ts *TreeStore) ReadView() *ReadView {
	return &ReadView{store: ts}
}

// Stats returns a diagnostics snapshot.
func (ts *TreeStore) Stats() StoreStats {
	return StoreStats{
		FilesIndexed: ts.filesIndexed.Load(),
		DirsIndexed:  ts.dirsIndexed.Load(),
		// The root lives in the header, outside the pool's slabs.
		EntriesTotal:   ts.pool.Allocated() + 1,
		PagesCommitted: ts.ps.Extent(),
	}
}

// Close releases the backing reservation.
func (ts *TreeStore) Close() error {
	return ts.ps.Close()
}
