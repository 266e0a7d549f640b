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
	"errors"
	"os"
	"path"
	"sort"

	"github.com/go-git/go-billy/v5"
	ignore "github.com/sabhiram/go-gitignore"
	log "github.com/sirupsen/logrus"

	"chonk/internal/scratch"
	"chonk/internal/storage"
	"chonk/internal/util"
)

// Walker enumerates a filesystem depth-first and emits visit events. The
// filesystem is abstracted behind billy so tests drive the walk over an
// in-memory tree; production hands it an osfs chrooted at the scan path.
//
// Symlinks are never followed: their lstat size (the target path length)
// is the link's byte count. Children whose classification fails are
// recorded as KindUnknown with zero sizes; a directory whose enumeration
// fails is recorded with an empty child list. Neither aborts the walk.
type Walker struct {
	fs       billy.Filesystem
	rootName string
	matcher  *ignore.GitIgnore

	// per-walk scratch, reset between runs
	infos scratch.Arena[ChildInfo]
	names scratch.Arena[string]
}

// WalkerOptions configures a Walker.
type WalkerOptions struct {
	// RootName is the display name of the walk root; typically the
	// basename of the scanned path.
	RootName string

	// IgnorePatterns are gitignore-style patterns; matching entries are
	// skipped entirely and never inserted into the tree.
	IgnorePatterns []string
}

// NewWalker builds a walker over fs, which must be rooted at the directory
// to scan.
func NewWalker(fs billy.Filesystem, opts WalkerOptions) *Walker {
	w := &Walker{fs: fs, rootName: opts.RootName}
	if len(opts.IgnorePatterns) > 0 {
		w.matcher = ignore.CompileIgnoreLines(opts.IgnorePatterns...)
	}
	return w
}

// Walk runs one depth-first traversal, feeding v. Cancellation is polled
// between directory events; on cancel the walk unwinds through LeaveDir so
// every directory on the active path still publishes, and ctx.Err() is
// returned. Visitor errors abort immediately.
func (w *Walker) Walk(ctx context.Context, v Visitor) error {
	w.infos.Reset()
	w.names.Reset()
	return w.walkDir(ctx, ".", w.rootName, v)
}

func (w *Walker) walkDir(ctx context.Context, dir, name string, v Visitor) error {
	if err := v.EnterDir(name); err != nil {
		return err
	}

	var walkErr error
	var fis []os.FileInfo
	err := util.Retry(ctx, func() error {
		var rerr error
		fis, rerr = w.fs.ReadDir(dir)
		return rerr
	})
	if err != nil {
		if ctx.Err() == nil {
			log.WithFields(log.Fields{"path": dir, "error": err}).Warn("unreadable directory")
		} else {
			// Cancelled before enumeration: publish empty, report after the unwind.
			walkErr = ctx.Err()
		}
		fis = nil
	}

	mark := w.infos.Mark()
	nmark := w.names.Mark()
	infos := w.collect(dir, fis)
	if err := v.Children(infos); err != nil {
		return err
	}

	// Child metadata is in the store now; keep only the subdirectory
	// names for the descent.
	ndirs := 0
	for i := range infos {
		if infos[i].Kind == storage.KindDir {
			ndirs++
		}
	}
	subdirs := w.names.Take(ndirs)
	j := 0
	for i := range infos {
		if infos[i].Kind == storage.KindDir {
			subdirs[j] = infos[i].Name
			j++
		}
	}
	w.infos.Release(mark)

	for _, sub := range subdirs {
		if walkErr == nil && ctx.Err() != nil {
			walkErr = ctx.Err()
		}
		switch {
		case walkErr == nil:
			if err := w.walkDir(ctx, path.Join(dir, sub), sub, v); err != nil {
				walkErr = err
			}
		case cancelled(walkErr):
			// Cancelled unwind: remaining siblings publish as
			// unprocessed subtree roots with no children.
			if err := v.EnterDir(sub); err != nil {
				return err
			}
			if err := v.LeaveDir(sub); err != nil {
				return err
			}
		default:
			// Visitor failure: the cursor may be mid-slab, so no
			// further events are legal.
			return walkErr
		}
	}
	w.names.Release(nmark)

	if walkErr != nil && !cancelled(walkErr) {
		return walkErr
	}
	if err := v.LeaveDir(name); err != nil {
		return err
	}
	return walkErr
}

func cancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// collect stats and classifies one directory's entries into arena-backed
// ChildInfo records, in a stable name order.
func (w *Walker) collect(dir string, fis []os.FileInfo) []ChildInfo {
	kept := fis[:0:len(fis)]
	for _, fi := range fis {
		if w.skip(dir, fi) {
			continue
		}
		kept = append(kept, fi)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Name() < kept[j].Name() })

	infos := w.infos.Take(len(kept))
	for i, fi := range kept {
		infos[i] = w.classify(fi)
	}
	return infos
}

func (w *Walker) skip(dir string, fi os.FileInfo) bool {
	if w.matcher == nil {
		return false
	}
	rel := path.Join(dir, fi.Name())
	if fi.IsDir() {
		rel += "/"
	}
	return w.matcher.MatchesPath(rel)
}

// classify builds the ChildInfo for one lstat result. Sizes come from the
// lstat the enumeration already did; platform stat details (block counts,
// hard-link detection) are filled by statDetail.
func (w *Walker) classify(fi os.FileInfo) ChildInfo {
	ci := ChildInfo{
		Name:  fi.Name(),
		Kind:  storage.KindFromMode(fi.Mode()),
		Mtime: uint64(fi.ModTime().Unix()),
	}
	if ci.Kind == storage.KindUnknown {
		// Sockets, devices, fifos, or a failed classification: recorded
		// by name only.
		return ci
	}
	if ci.Kind != storage.KindDir {
		ci.ByteCount = uint64(fi.Size())
		ci.BlockCount = (ci.ByteCount + 511) / 512
	}
	statDetail(fi, &ci)
	return ci
}
