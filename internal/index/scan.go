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

	"github.com/go-git/go-billy/v5"

	"chonk/internal/common"
	"chonk/internal/storage"
)

// Scan runs one complete walk of fs into store. fs must be rooted at the
// store's root path. Readers may consume store.ReadView() concurrently the
// whole time. Returns ctx.Err() if cancelled; the already-published part of
// the tree stays readable either way.
func Scan(ctx context.Context, store *storage.TreeStore, fs billy.Filesystem, ignorePatterns []string) error {
	ix, err := NewIndexer(store)
	if err != nil {
		return err
	}
	w := NewWalker(fs, WalkerOptions{
		RootName:       common.RootName(store.RootPath()),
		IgnorePatterns: ignorePatterns,
	})
	return w.Walk(ctx, ix)
}
