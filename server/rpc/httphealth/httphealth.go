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

// Package httphealth uses http GET to provide a health check for the server.
package httphealth

import (
	"context"
	"encoding/json"
	"net/http"
)

// HealthPath is the path the health check is served on.
const HealthPath = "/healthz"

// Status is the serving status of the server.
type Status string

const (
	// StatusServing means the server accepts requests.
	StatusServing Status = "SERVING"

	// StatusNotServing means the server is shutting down or not ready.
	StatusNotServing Status = "NOT_SERVING"
)

// Checker reports the serving status of the server.
type Checker interface {
	Check(ctx context.Context) Status
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) Status

// Check calls f.
func (f CheckerFunc) Check(ctx context.Context) Status {
	return f(ctx)
}

// CheckResponse represents the response structure for health checks.
type CheckResponse struct {
	Status Status `json:"status"`
}

// NewHandler creates a new HTTP handler for health checks.
func NewHandler(checker Checker) (string, http.Handler) {
	check := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		status := checker.Check(r.Context())
		resp, err := json.Marshal(CheckResponse{Status: status})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if status == StatusServing {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if r.Method == http.MethodGet {
			_, _ = w.Write(resp)
		}
	})
	return HealthPath, check
}
