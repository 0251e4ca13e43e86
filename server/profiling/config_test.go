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

package profiling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/server/profiling"
)

func TestConfig(t *testing.T) {
	scenarios := []struct {
		name     string
		config   *profiling.Config
		expected error
	}{
		{name: "negative port", config: &profiling.Config{Port: -1}, expected: profiling.ErrInvalidProfilingPort},
		{name: "zero port", config: &profiling.Config{Port: 0}, expected: profiling.ErrInvalidProfilingPort},
		{name: "port too large", config: &profiling.Config{Port: 65536}, expected: profiling.ErrInvalidProfilingPort},
		{name: "default path", config: &profiling.Config{Port: 8081}, expected: nil},
		{name: "custom path", config: &profiling.Config{Port: 8081, MetricsPath: "/otsync/metrics"}, expected: nil},
		{name: "relative path", config: &profiling.Config{Port: 8081, MetricsPath: "metrics"}, expected: profiling.ErrInvalidMetricsPath},
		{name: "root path", config: &profiling.Config{Port: 8081, MetricsPath: "/"}, expected: profiling.ErrInvalidMetricsPath},
		{
			name:     "pprof path",
			config:   &profiling.Config{Port: 8081, EnablePprof: true, MetricsPath: "/debug/pprof/metrics"},
			expected: profiling.ErrInvalidMetricsPath,
		},
	}
	for _, scenario := range scenarios {
		t.Run(scenario.name+" test", func(t *testing.T) {
			assert.ErrorIs(t, scenario.config.Validate(), scenario.expected, "provided config: %#v", scenario.config)
		})
	}
}
