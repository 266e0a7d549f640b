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
	"io/fs"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chonk/internal/common"
)

func TestEntry_RecordSize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uintptr(EntrySize), unsafe.Sizeof(Entry{}))

	// u64 counters must stay 8-aligned for the atomics.
	var e Entry
	assert.Zero(t, unsafe.Offsetof(e.byteCount)%8)
	assert.Zero(t, unsafe.Offsetof(e.blockCount)%8)
	assert.Zero(t, unsafe.Offsetof(e.Mtime)%8)
}

func TestEntry_SetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"simple", "hello.txt", nil},
		{"empty", "", nil},
		{"utf8", "héllo-wörld", nil},
		{"max_length", strings.Repeat("a", 255), nil},
		{"too_long", strings.Repeat("a", 256), common.ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var e Entry
			err := e.SetName(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, e.Name())
			assert.Equal(t, uint8(len(tt.input)), e.NameLen)
		})
	}
}

func TestEntry_PublishOnce(t *testing.T) {
	t.Parallel()

	var e Entry
	e.lockInit()
	require.True(t, e.Locked())

	assert.True(t, e.tryPublish(), "first publish performs the transition")
	assert.False(t, e.Locked())
	assert.False(t, e.tryPublish(), "second publish must be a no-op")
	assert.False(t, e.Locked())
}

func TestEntry_Counts(t *testing.T) {
	t.Parallel()

	var e Entry
	e.SetCounts(100, 1)
	e.addCounts(50, 2)
	assert.Equal(t, uint64(150), e.ByteCount())
	assert.Equal(t, uint64(3), e.BlockCount())
}

func TestKindFromMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode fs.FileMode
		want Kind
	}{
		{"file", 0644, KindFile},
		{"dir", fs.ModeDir | 0755, KindDir},
		{"symlink", fs.ModeSymlink | 0777, KindLinkSoft},
		{"socket", fs.ModeSocket, KindUnknown},
		{"device", fs.ModeDevice, KindUnknown},
		{"fifo", fs.ModeNamedPipe, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, KindFromMode(tt.mode))
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dir", KindDir.String())
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "symlink", KindLinkSoft.String())
	assert.Equal(t, "hardlink", KindLinkHard.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
