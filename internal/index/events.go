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

// Package index walks a filesystem subtree and feeds the visit events into
// a storage cursor: a Walker emits strict preorder / child-list / postorder
// events, an Indexer turns them into cursor calls. Backtracks are driven
// purely by postorder events — the event stream encodes them, so no
// sibling-name comparison is ever needed.
package index

import "chonk/internal/storage"

// ChildInfo carries one directory entry's metadata from the walker into
// the store.
type ChildInfo struct {
	Name       string
	Kind       storage.Kind
	ByteCount  uint64
	BlockCount uint64
	Mtime      uint64
	Inode      uint32
}

// Visitor receives filesystem visit events in depth-first order. For every
// directory the sequence is EnterDir, Children, zero or more recursive
// visits, LeaveDir. Files and links appear only inside their parent's
// Children event.
type Visitor interface {
	// EnterDir announces a directory in preorder. The first call names
	// the walk root itself.
	EnterDir(name string) error

	// Children delivers the full child list of the directory most
	// recently entered. The slice is only valid during the call.
	Children(children []ChildInfo) error

	// LeaveDir announces the same directory in postorder, after all its
	// subdirectories were visited.
	LeaveDir(name string) error
}
