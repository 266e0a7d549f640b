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

//go:build unix

package index

import (
	"os"
	"syscall"

	"chonk/internal/storage"
)

// statDetail refines a ChildInfo from the platform stat record: exact
// 512-byte block counts, the inode number, and hard-link detection for
// regular files with more than one name. Hard links are counted once per
// visited name; there is no deduplication. Filesystems that do not expose
// a Stat_t (in-memory test trees) keep the approximate values.
func statDetail(fi os.FileInfo, ci *ChildInfo) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok || st == nil {
		return
	}
	ci.Inode = uint32(st.Ino)
	if ci.Kind == storage.KindDir {
		return
	}
	ci.BlockCount = uint64(st.Blocks)
	if ci.Kind == storage.KindFile && st.Nlink > 1 {
		ci.Kind = storage.KindLinkHard
	}
}
