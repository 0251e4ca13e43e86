/*
 * Copyright 2022 The Yorkie Authors. All rights reserved.
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

package types

import (
	"fmt"
	"runtime"
)

// VersionInfo holds the versions of the otsync CLI and of the server it
// talks to. ServerVersion is nil when the server was not asked or could
// not be reached.
type VersionInfo struct {
	ClientVersion *VersionDetail `json:"clientVersion,omitempty" yaml:"clientVersion,omitempty"`
	ServerVersion *VersionDetail `json:"serverVersion,omitempty" yaml:"serverVersion,omitempty"`
}

// VersionDetail describes one otsync build.
type VersionDetail struct {
	OTSyncVersion string `json:"otsyncVersion" yaml:"otsyncVersion"`
	GoVersion     string `json:"goVersion" yaml:"goVersion"`
	BuildDate     string `json:"buildDate" yaml:"buildDate"`
}

// NewVersionDetail describes the running binary built as version on
// buildDate.
func NewVersionDetail(version, buildDate string) *VersionDetail {
	return &VersionDetail{
		OTSyncVersion: version,
		GoVersion:     runtime.Version(),
		BuildDate:     buildDate,
	}
}

// String returns the detail on one line, e.g. "0.1.0 (go1.21.5, 2024-03-01)".
func (d *VersionDetail) String() string {
	if d == nil {
		return "unknown"
	}
	buildDate := d.BuildDate
	if buildDate == "" {
		buildDate = "unknown build date"
	}
	return fmt.Sprintf("%s (%s, %s)", d.OTSyncVersion, d.GoVersion, buildDate)
}

// Compatible reports whether a client of version d can talk to server.
// Builds agree when their major versions do, and a missing detail is
// taken as compatible.
func (d *VersionDetail) Compatible(server *VersionDetail) bool {
	if d == nil || server == nil {
		return true
	}
	return majorOf(d.OTSyncVersion) == majorOf(server.OTSyncVersion)
}

func majorOf(version string) string {
	for i, r := range version {
		if r == '.' {
			return version[:i]
		}
	}
	return version
}
