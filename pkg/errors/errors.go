/*
 * Copyright 2025 The Yorkie Authors. All rights reserved.
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

package errors

import (
	"errors"
)

// StatusError represents an error that carries an error status.
type StatusError interface {
	error
	Status() StatusCode
}

type errorWithStatus struct {
	err    error
	status StatusCode
}

// Error returns the error message.
func (e errorWithStatus) Error() string {
	return e.err.Error()
}

// Status returns the error status.
func (e errorWithStatus) Status() StatusCode {
	return e.status
}

// Unwrap returns the underlying error for error chain compatibility.
func (e errorWithStatus) Unwrap() error {
	return e.err
}

// WithStatus attaches a status to err. errors.Is and errors.As keep seeing
// through to err.
func WithStatus(err error, status StatusCode) error {
	if err == nil {
		return nil
	}
	return errorWithStatus{err: err, status: status}
}

// NotFound creates a new "not found" error.
func NotFound(message string) StatusError {
	return errorWithStatus{err: errors.New(message), status: ErrCodeNotFound}
}

// InvalidArgument creates a new "invalid argument" error.
func InvalidArgument(message string) StatusError {
	return errorWithStatus{err: errors.New(message), status: ErrCodeInvalidArgument}
}

// AlreadyExists creates a new "already exists" error.
func AlreadyExists(message string) StatusError {
	return errorWithStatus{err: errors.New(message), status: ErrCodeAlreadyExists}
}

// FailedPrecond creates a new "failed precondition" error.
func FailedPrecond(message string) StatusError {
	return errorWithStatus{err: errors.New(message), status: ErrCodeFailedPrecondition}
}

// Internal creates a new "internal" error.
func Internal(message string) StatusError {
	return errorWithStatus{err: errors.New(message), status: ErrCodeInternal}
}

// Unavailable creates a new "unavailable" error.
func Unavailable(message string) StatusError {
	return errorWithStatus{err: errors.New(message), status: ErrCodeUnavailable}
}

// StatusOf extracts the error status from an error, looking through wrapped
// errors. It returns 0 when no status is found.
func StatusOf(err error) StatusCode {
	if err == nil {
		return 0
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status()
	}
	return 0
}

// IsStatus checks if the given error has the specified error status.
func IsStatus(err error, code StatusCode) bool {
	return StatusOf(err) == code
}
