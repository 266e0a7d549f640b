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

	"chonk/internal/common"
)

// Cursor is the single-writer walk state over a TreeStore. One cursor
// exists per walk; all six operations run on the writer goroutine.
//
// The expected call order for a directory D with children C1..Cn:
//
//	ChildrenBegin(n)
//	for each Ci: e := ChildInit(); fill e; ChildFinish()
//	ChildrenEnd()
//	for each directory Ci, in any order:
//	    RecurseInto(Ci.name) ... Backtrack(D.name)
//	Backtrack(parent-of-D.name)    // when returning to D's parent
//
// Size aggregation: non-directory children contribute to the current
// directory at ChildFinish; directory children contribute at Backtrack,
// once their own subtree total is complete. Each byte is therefore counted
// exactly once per ancestor.
//
// Mis-driven calls (wrong order, mismatched backtrack name) are programmer
// errors and panic; only capacity exhaustion and the sideways-step errors
// (ErrChildNotFound, ErrNotDirectory, ErrNameTooLong) are returned.
type Cursor struct {
	store *TreeStore

	cur       *Entry
	curIdx    uint32
	parent    *Entry
	parentIdx uint32

	// children is the slab bound to cur; nil while none is bound. bound
	// distinguishes an empty bound slab from no slab.
	children     []Entry
	childrenNext uint32
	bound        bool

	depth int
}

// newCursor positions a cursor at the root frame: cur and parent both
// reference the root, parentIdx carries the sentinel.
func newCursor(ts *TreeStore) *Cursor {
	root := ts.Root()
	return &Cursor{
		store:     ts,
		cur:       root,
		curIdx:    ts.RootIndex(),
		parent:    root,
		parentIdx: RootSentinel,
	}
}

// Depth returns the walk depth, root = 0.
func (c *Cursor) Depth() int { return c.depth }

// Current returns the entry the cursor points at.
func (c *Cursor) Current() *Entry { return c.cur }

// ChildrenBegin allocates the child slab for the current directory and
// binds it. ChildrenStart/ChildrenCount are assigned exactly once here and
// are immutable afterwards; every slab entry starts locked.
func (c *Cursor) ChildrenBegin(count uint32) error {
	if c.bound {
		panic("storage: children already begun")
	}
	if !c.cur.Locked() {
		panic("storage: children of a published directory")
	}
	if c.cur.ChildrenCount != 0 {
		panic("storage: children already assigned")
	}
	if count == 0 {
		c.bound = true
		c.children = nil
		c.childrenNext = 0
		return nil
	}
	start, err := c.store.pool.Alloc(count)
	if err != nil {
		return err
	}
	c.cur.ChildrenStart = start
	c.cur.ChildrenCount = count
	c.children = c.store.pool.Slice(start, count)
	c.childrenNext = 0
	c.bound = true
	for i := range c.children {
		c.children[i].lockInit()
	}
	return nil
}

// ChildInit returns the next slab entry for initialization with its parent
// index already set. The entry stays locked; the caller fills kind, name,
// sizes, then calls ChildFinish.
func (c *Cursor) ChildInit() *Entry {
	if !c.bound || c.childrenNext >= uint32(len(c.children)) {
		panic("storage: child init past slab end")
	}
	e := &c.children[c.childrenNext]
	e.Parent = c.curIdx
	return e
}

// ChildFinish commits the entry returned by the last ChildInit. Non-
// directory children publish here and contribute their sizes to the current
// directory; directory children stay locked until their own subtree is
// walked.
func (c *Cursor) ChildFinish() {
	e := &c.children[c.childrenNext]
	if e.Kind != KindDir {
		c.cur.addCounts(e.ByteCount(), e.BlockCount())
		e.tryPublish()
		c.store.filesIndexed.Add(1)
	}
	c.childrenNext++
}

// ChildrenEnd publishes the current directory once its slab is fully
// initialized. From this point readers can list its children.
func (c *Cursor) ChildrenEnd() {
	if !c.bound || c.childrenNext != uint32(len(c.children)) {
		panic("storage: children end before slab fully initialized")
	}
	if c.cur.tryPublish() {
		c.store.dirsIndexed.Add(1)
	}
}

// RecurseInto descends into the named child directory. The current slab
// must be fully initialized and ended. Directory entries are unique within
// a directory by filesystem contract, so the first match wins.
func (c *Cursor) RecurseInto(name string) error {
	if len(name) > MaxNameLen {
		return fmt.Errorf("recurse into %q: %w", name[:32]+"...", common.ErrNameTooLong)
	}
	if c.bound && c.childrenNext != uint32(len(c.children)) {
		panic("storage: recurse before children fully initialized")
	}
	for i := range c.children {
		e := &c.children[i]
		if !e.nameEquals(name) {
			continue
		}
		if e.Kind != KindDir {
			return fmt.Errorf("recurse into %q: %w", name, common.ErrNotDirectory)
		}
		idx := c.cur.ChildrenStart + uint32(i)
		c.parent = c.cur
		c.parentIdx = c.curIdx
		c.cur = e
		c.curIdx = idx
		c.loadChildrenView()
		c.depth++
		return nil
	}
	return fmt.Errorf("recurse into %q: %w", name, common.ErrChildNotFound)
}

// Backtrack pops the current frame: the finished directory's totals flow
// into its parent, the directory publishes if it never reached ChildrenEnd
// (entered and left with no child list, as the walker does for unvisited
// siblings when a walk is cancelled), and the cursor moves up. name must
// be the parent's name; a mismatch means the walk lost track of itself.
// Popping from depth 1 leaves the cursor at the root.
func (c *Cursor) Backtrack(name string) {
	if c.depth == 0 {
		panic("storage: backtrack at root")
	}
	if c.bound && c.childrenNext != uint32(len(c.children)) {
		panic("storage: backtrack before children fully enumerated")
	}
	if !c.parent.nameEquals(name) {
		panic(fmt.Sprintf("storage: backtrack to %q but parent is %q", name, c.parent.Name()))
	}
	if c.cur.tryPublish() {
		c.store.dirsIndexed.Add(1)
	}
	c.parent.addCounts(c.cur.ByteCount(), c.cur.BlockCount())

	c.cur = c.parent
	c.curIdx = c.parentIdx
	if c.cur.IsRoot() {
		c.parent = c.cur
		c.parentIdx = RootSentinel
	} else {
		c.parentIdx = c.cur.Parent
		c.parent = c.store.Entry(c.parentIdx)
	}
	c.loadChildrenView()
	c.depth--
}

// loadChildrenView rebinds the slab view after a cursor move. A directory
// whose children are already assigned comes back fully enumerated, so a
// sibling RecurseInto is immediately legal; an untouched directory starts
// with no slab bound.
func (c *Cursor) loadChildrenView() {
	if c.cur.ChildrenCount == 0 {
		c.children = nil
		c.childrenNext = 0
		c.bound = false
		return
	}
	c.children = c.store.pool.Slice(c.cur.ChildrenStart, c.cur.ChildrenCount)
	c.childrenNext = c.cur.ChildrenCount
	c.bound = true
}
