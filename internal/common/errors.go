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

package common

import "errors"

var (
	// ErrOutOfCapacity is returned when the reserved address range is
	// exhausted. Already-published subtrees stay valid and readable.
	ErrOutOfCapacity = errors.New("out of capacity")

	// ErrAddressSpaceReservation is returned when the initial reservation
	// of the backing address range fails.
	ErrAddressSpaceReservation = errors.New("address space reservation failed")

	ErrNameTooLong   = errors.New("name too long")
	ErrNotDirectory  = errors.New("not a directory")
	ErrChildNotFound = errors.New("child not found")
	ErrNotSupported  = errors.New("not supported")
)
