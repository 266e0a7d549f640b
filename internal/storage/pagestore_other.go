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

//go:build !unix

package storage

// reserve allocates the whole range up front. The backing array never moves,
// which is all the index-stability contract needs; commit is bookkeeping
// only on this path.
func reserve(size uint64) ([]byte, error) {
	return make([]byte, size), nil
}

func commit(pages []byte) error { return nil }

func release(buf []byte) error { return nil }
