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

// Package profiling serves the metrics of the otsync server and, when
// enabled, the runtime profiles of pprof.
package profiling

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMetricsPath is where metrics are served when no path is set.
const DefaultMetricsPath = "/metrics"

var (
	// ErrInvalidProfilingPort occurs when the port in the config is invalid.
	ErrInvalidProfilingPort = errors.New("invalid port number for profiling server")

	// ErrInvalidMetricsPath occurs when metrics cannot be served at the
	// configured path.
	ErrInvalidMetricsPath = errors.New("invalid metrics path")
)

// Config is the configuration of the profiling server.
type Config struct {
	Port        int    `yaml:"Port"`
	EnablePprof bool   `yaml:"EnablePprof"`
	MetricsPath string `yaml:"MetricsPath"`
}

// metricsPath returns the path metrics are served at.
func (c *Config) metricsPath() string {
	if c.MetricsPath == "" {
		return DefaultMetricsPath
	}
	return c.MetricsPath
}

// Validate checks the port and the metrics path. The path must be absolute
// and must not shadow the pprof handlers.
func (c *Config) Validate() error {
	if c.Port < 1 || 65535 < c.Port {
		return fmt.Errorf("must be between 1 and 65535, given %d: %w", c.Port, ErrInvalidProfilingPort)
	}

	path := c.metricsPath()
	if !strings.HasPrefix(path, "/") || path == "/" {
		return fmt.Errorf("%q is not an absolute path: %w", path, ErrInvalidMetricsPath)
	}
	if strings.HasPrefix(path, httpPrefixPProf) {
		return fmt.Errorf("%q is reserved for pprof: %w", path, ErrInvalidMetricsPath)
	}

	return nil
}
