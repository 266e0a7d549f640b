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

package storage

import "golang.org/x/sys/unix"

// reserve maps an anonymous PROT_NONE range. Nothing is committed until
// commit flips page protections, so an 8 GiB reservation costs address
// space only.
func reserve(size uint64) ([]byte, error) {
	return unix.Mmap(-1, 0, int(size), unix.PROT_NONE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
}

// commit makes a page-aligned subrange readable and writable. Fresh
// anonymous pages are zero-filled by the kernel.
func commit(pages []byte) error {
	return unix.Mprotect(pages, unix.PROT_READ|unix.PROT_WRITE)
}

func release(buf []byte) error {
	return unix.Munmap(buf)
}
