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

import (
	"path/filepath"
	"strings"
)

// RootName returns the display name of a scan root: the last element of the
// path, ignoring trailing slashes. The filesystem root names itself "/".
func RootName(rootPath string) string {
	if rootPath == "" {
		return ""
	}
	trimmed := strings.TrimRight(rootPath, "/")
	if trimmed == "" {
		return "/"
	}
	return filepath.Base(trimmed)
}
