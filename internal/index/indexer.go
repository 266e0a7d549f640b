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

package index

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"chonk/internal/storage"
)

// Indexer drives a single-writer cursor from visit events. It keeps a stack
// of directory names so postorder events can name the backtrack target, and
// closes Finished exactly once when the walk returns to the root.
type Indexer struct {
	cursor *storage.Cursor
	store  *storage.TreeStore
	scanID uuid.UUID
	stack  []string
	done   chan struct{}
	logger *log.Entry
}

// NewIndexer binds a fresh cursor at the store root.
func NewIndexer(store *storage.TreeStore) (*Indexer, error) {
	cursor, err := store.NewCursorAt(store.RootPath())
	if err != nil {
		return nil, err
	}
	scanID := uuid.New()
	return &Indexer{
		cursor: cursor,
		store:  store,
		scanID: scanID,
		done:   make(chan struct{}),
		logger: log.WithFields(log.Fields{
			"scan_id": scanID,
			"root":    store.RootPath(),
		}),
	}, nil
}

// ScanID identifies this walk in logs and summaries.
func (ix *Indexer) ScanID() uuid.UUID { return ix.scanID }

// Finished is closed once, when the postorder event of the root arrives.
func (ix *Indexer) Finished() <-chan struct{} { return ix.done }

// EnterDir descends the cursor. The first event names the root, where the
// cursor already is.
func (ix *Indexer) EnterDir(name string) error {
	if len(ix.stack) == 0 {
		root := ix.store.Root()
		if root.Name() != name {
			return fmt.Errorf("walk rooted at %q but store root is %q", name, root.Name())
		}
		ix.stack = append(ix.stack, name)
		return nil
	}
	if err := ix.cursor.RecurseInto(name); err != nil {
		return err
	}
	ix.stack = append(ix.stack, name)
	ix.logger.WithField("depth", ix.cursor.Depth()).Tracef("enter %s", name)
	return nil
}

// Children inserts the directory's child list. The walker has already
// classified each child and zeroed the sizes of anything it could not stat,
// so this is a straight transcription into the slab.
func (ix *Indexer) Children(children []ChildInfo) error {
	if err := ix.cursor.ChildrenBegin(uint32(len(children))); err != nil {
		return err
	}
	for i := range children {
		ci := &children[i]
		e := ix.cursor.ChildInit()
		e.Kind = ci.Kind
		e.Inode = ci.Inode
		e.Mtime = ci.Mtime
		e.SetCounts(ci.ByteCount, ci.BlockCount)
		if err := e.SetName(ci.Name); err != nil {
			return fmt.Errorf("child %d of %s: %w", i, ix.top(), err)
		}
		ix.cursor.ChildFinish()
	}
	ix.cursor.ChildrenEnd()
	return nil
}

// LeaveDir pops the directory in postorder. Leaving the root completes the
// walk and fires the one-shot finished event.
func (ix *Indexer) LeaveDir(name string) error {
	if len(ix.stack) == 0 {
		return fmt.Errorf("postorder %q with no directory entered", name)
	}
	if top := ix.top(); top != name {
		return fmt.Errorf("postorder %q but innermost directory is %q", name, top)
	}
	ix.stack = ix.stack[:len(ix.stack)-1]
	if len(ix.stack) == 0 {
		stats := ix.store.Stats()
		ix.logger.WithFields(log.Fields{
			"files": stats.FilesIndexed,
			"dirs":  stats.DirsIndexed,
			"pages": stats.PagesCommitted,
			"bytes": ix.store.Root().ByteCount(),
		}).Info("indexing finished")
		close(ix.done)
		return nil
	}
	ix.cursor.Backtrack(ix.top())
	return nil
}

func (ix *Indexer) top() string { return ix.stack[len(ix.stack)-1] }
