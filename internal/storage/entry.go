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
	"io/fs"
	"sync/atomic"
	"unsafe"

	"chonk/internal/common"
)

const (
	// EntrySize is the fixed on-page size of an Entry record. The page size
	// must be a multiple of it; entries never straddle pages.
	EntrySize = 512

	// MaxNameLen is the longest basename an Entry can hold.
	MaxNameLen = 255

	// RootSentinel is the reserved parent index marking the root entry.
	// It is never a valid entry index.
	RootSentinel = ^uint32(0)
)

// Kind classifies a filesystem object held in an Entry.
type Kind uint8

const (
	KindDir      Kind = 0
	KindFile     Kind = 1
	KindLinkSoft Kind = 2
	KindLinkHard Kind = 3
	KindUnknown  Kind = 4
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	case KindLinkSoft:
		return "symlink"
	case KindLinkHard:
		return "hardlink"
	default:
		return "unknown"
	}
}

// KindFromMode derives the Kind from a file mode. Hard links cannot be told
// apart from plain files by mode alone; the walker upgrades them from the
// link count where the platform exposes one.
func KindFromMode(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDir
	case mode.IsRegular():
		return KindFile
	case mode&fs.ModeSymlink != 0:
		return KindLinkSoft
	default:
		return KindUnknown
	}
}

// Entry is a fixed 512-byte node record overlaid on PageStore memory.
//
// An entry is addressed by its global slot index: byte offset = index *
// EntrySize within the reserved region. Slot 0 falls inside the header
// metadata and is never a valid entry, which is why ChildrenStart == 0
// exactly when ChildrenCount == 0.
//
// Scalar fields other than the three atomics are written once by the single
// writer before publication and frozen afterwards; the release store of
// publish and the acquire load of Locked give readers a happens-before edge
// to every prior plain write. The byte/block totals of a directory keep
// growing after the directory itself publishes (deeper subtrees backtrack
// into it), so those two stay atomic for the store's whole lifetime.
//
// The spec'd single-byte lock is widened to a uint32 word: Go has no
// byte-width atomics. The reserved padding shrinks to keep the record at
// exactly 512 bytes with all u64 fields 8-aligned.
type Entry struct {
	Parent        uint32
	ChildrenStart uint32
	ChildrenCount uint32
	Inode         uint32
	byteCount     atomic.Uint64
	blockCount    atomic.Uint64
	Mtime         uint64
	lock          atomic.Uint32
	Kind          Kind
	NameLen       uint8
	_             [210]byte
	name          [256]byte
}

// Entry must stay exactly EntrySize bytes; the overlay arithmetic in
// EntryPool depends on it.
var _ [EntrySize]byte = [unsafe.Sizeof(Entry{})]byte{}

// Name returns the entry's basename.
func (e *Entry) Name() string {
	return string(e.name[:e.NameLen])
}

// SetName stores the basename. Names longer than MaxNameLen are rejected
// with ErrNameTooLong.
func (e *Entry) SetName(name string) error {
	if len(name) > MaxNameLen {
		return common.ErrNameTooLong
	}
	copy(e.name[:], name)
	e.name[len(name)] = 0
	e.NameLen = uint8(len(name))
	return nil
}

// nameEquals avoids the string copy of Name in the recurse-into scan.
func (e *Entry) nameEquals(name string) bool {
	if int(e.NameLen) != len(name) {
		return false
	}
	return string(e.name[:e.NameLen]) == name
}

// ByteCount returns the apparent size in bytes; for directories, the sum
// over all descendants aggregated so far.
func (e *Entry) ByteCount() uint64 { return e.byteCount.Load() }

// BlockCount returns the number of 512-byte blocks; for directories, the
// sum over all descendants aggregated so far.
func (e *Entry) BlockCount() uint64 { return e.blockCount.Load() }

// SetCounts initializes the size counters of a freshly-initialized child.
// Writer only, before publication.
func (e *Entry) SetCounts(bytes, blocks uint64) {
	e.byteCount.Store(bytes)
	e.blockCount.Store(blocks)
}

// addCounts accumulates a child's totals into a directory. Writer only.
func (e *Entry) addCounts(bytes, blocks uint64) {
	e.byteCount.Add(bytes)
	e.blockCount.Add(blocks)
}

// Locked reports whether the entry is still being written. Readers must
// observe Locked() == false before trusting any other field.
func (e *Entry) Locked() bool { return e.lock.Load() != 0 }

// lockInit marks a freshly-allocated entry as being written.
func (e *Entry) lockInit() { e.lock.Store(1) }

// tryPublish performs the 1→0 transition with release semantics. It reports
// whether this call was the one that published, so the transition happens at
// most once even when children_end and a later backtrack both reach it.
func (e *Entry) tryPublish() bool { return e.lock.CompareAndSwap(1, 0) }

// IsRoot reports whether the entry is the store root.
func (e *Entry) IsRoot() bool { return e.Parent == RootSentinel }
