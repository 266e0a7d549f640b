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
	"context"
	"os"
	"syscall"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chonk/internal/storage"
)

// faultFS injects ReadDir failures for selected directories.
type faultFS struct {
	billy.Filesystem
	failures map[string]int // dir -> remaining failures
	errs     map[string]error
}

func (f *faultFS) ReadDir(dir string) ([]os.FileInfo, error) {
	if n := f.failures[dir]; n > 0 {
		f.failures[dir] = n - 1
		return nil, f.errs[dir]
	}
	return f.Filesystem.ReadDir(dir)
}

// eventLog records the visit stream for order assertions.
type eventLog struct {
	events []string
}

func (l *eventLog) EnterDir(name string) error {
	l.events = append(l.events, "enter "+name)
	return nil
}

func (l *eventLog) LeaveDir(name string) error {
	l.events = append(l.events, "leave "+name)
	return nil
}

func (l *eventLog) Children(children []ChildInfo) error {
	names := "children"
	for i := range children {
		names += " " + children[i].Name
	}
	l.events = append(l.events, names)
	return nil
}

func TestWalker_EventOrder(t *testing.T) {
	t.Parallel()

	fs := newMemTree(t, map[string]int{
		"sub/inner/f": 1,
		"sub/g":       1,
		"top":         1,
	})
	w := NewWalker(fs, WalkerOptions{RootName: "tree"})

	var l eventLog
	require.NoError(t, w.Walk(context.Background(), &l))

	assert.Equal(t, []string{
		"enter tree",
		"children sub top",
		"enter sub",
		"children g inner",
		"enter inner",
		"children f",
		"leave inner",
		"leave sub",
		"leave tree",
	}, l.events)
}

func TestWalker_TransientReadDirErrorIsRetried(t *testing.T) {
	t.Parallel()

	inner := newMemTree(t, map[string]int{"dir/file": 10})
	fs := &faultFS{
		Filesystem: inner,
		failures:   map[string]int{"dir": 1},
		errs:       map[string]error{"dir": syscall.EINTR},
	}
	store := newScanStore(t)

	require.NoError(t, Scan(context.Background(), store, fs, nil))

	rv := store.ReadView()
	var out []storage.ChildRecord
	require.Equal(t, storage.Ready, rv.ChildrenOf(rv.Root(), &out))
	require.Len(t, out, 1)

	var inDir []storage.ChildRecord
	assert.Equal(t, storage.Ready, rv.ChildrenOf(out[0].Ref, &inDir))
	assert.Len(t, inDir, 1, "retry recovered the EINTR")
}

func TestWalker_UnreadableDirectoryRecordsEmpty(t *testing.T) {
	t.Parallel()

	inner := newMemTree(t, map[string]int{
		"denied/secret": 100,
		"open/file":     10,
	})
	fs := &faultFS{
		Filesystem: inner,
		failures:   map[string]int{"denied": 1 << 30},
		errs:       map[string]error{"denied": syscall.EACCES},
	}
	store := newScanStore(t)

	require.NoError(t, Scan(context.Background(), store, fs, nil),
		"a permission failure must not abort the walk")

	rv := store.ReadView()
	var out []storage.ChildRecord
	require.Equal(t, storage.Ready, rv.ChildrenOf(rv.Root(), &out))
	require.Len(t, out, 2)

	byName := map[string]storage.ChildRecord{}
	for _, rec := range out {
		byName[rec.Name] = rec
	}
	assert.Equal(t, storage.KindDir, byName["denied"].Kind)
	assert.Zero(t, byName["denied"].ByteCount)
	assert.Equal(t, storage.Empty, rv.ChildrenOf(byName["denied"].Ref, &out))

	assert.Equal(t, uint64(10), store.Root().ByteCount(),
		"only the readable file counts")
}

func TestWalker_ChildrenAreSortedByName(t *testing.T) {
	t.Parallel()

	fs := newMemTree(t, map[string]int{"zz": 1, "aa": 1, "mm": 1})
	w := NewWalker(fs, WalkerOptions{RootName: "tree"})

	var l eventLog
	require.NoError(t, w.Walk(context.Background(), &l))
	assert.Equal(t, "children aa mm zz", l.events[1])
}
