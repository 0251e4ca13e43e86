/*
 * Copyright 2024 The Yorkie Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package document

import "strconv"

// Version is the number the sequencer gives to each accepted operation. A
// new document starts at InitialVersion.
type Version uint64

// InitialVersion is the version of a document before any edit.
const InitialVersion Version = 0

// Next returns the version after v.
func (v Version) Next() Version {
	return v + 1
}

// String returns the decimal form of the version.
func (v Version) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseVersion parses the decimal form of a version.
func ParseVersion(s string) (Version, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return Version(v), nil
}

// Snapshot is the content of a document at a version. Snapshots are never
// modified; a newer snapshot replaces an older one.
type Snapshot struct {
	Version Version `json:"version"`
	Content Content `json:"content"`
}

// Patch is an operation together with the version it leads to.
type Patch struct {
	Version   Version   `json:"version"`
	Operation Operation `json:"operation"`
}
