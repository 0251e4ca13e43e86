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
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode_String(t *testing.T) {
	tests := []struct {
		name string
		code StatusCode
		want string
	}{
		{"InvalidArgument", ErrCodeInvalidArgument, "invalid_argument"},
		{"NotFound", ErrCodeNotFound, "not_found"},
		{"AlreadyExists", ErrCodeAlreadyExists, "already_exists"},
		{"FailedPrecondition", ErrCodeFailedPrecondition, "failed_precondition"},
		{"Internal", ErrCodeInternal, "internal"},
		{"Unavailable", ErrCodeUnavailable, "unavailable"},
		{"Unknown", StatusCode(999), "code_999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
		})
	}
}

func TestParseStatusCode(t *testing.T) {
	for _, code := range []StatusCode{
		ErrCodeInvalidArgument,
		ErrCodeNotFound,
		ErrCodeAlreadyExists,
		ErrCodeFailedPrecondition,
		ErrCodeInternal,
		ErrCodeUnavailable,
	} {
		assert.Equal(t, code, ParseStatusCode(code.String()))
	}
	assert.Equal(t, ErrCodeInternal, ParseStatusCode("bogus"))
}

func TestStatusCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code StatusCode
		want int
	}{
		{ErrCodeInvalidArgument, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeFailedPrecondition, http.StatusConflict},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeUnavailable, http.StatusServiceUnavailable},
		{StatusCode(0), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		err    StatusError
		status StatusCode
		client bool
	}{
		{NotFound("session not found"), ErrCodeNotFound, true},
		{InvalidArgument("invalid input"), ErrCodeInvalidArgument, true},
		{AlreadyExists("session exists"), ErrCodeAlreadyExists, true},
		{FailedPrecond("not ready"), ErrCodeFailedPrecondition, true},
		{Internal("server error"), ErrCodeInternal, false},
		{Unavailable("shutting down"), ErrCodeUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status())
			assert.Equal(t, tt.client, tt.err.Status().IsClientError())
		})
	}
}

func TestWithStatus(t *testing.T) {
	errSentinel := errors.New("version not found")

	err := WithStatus(fmt.Errorf("get patch: %w", errSentinel), ErrCodeNotFound)
	assert.ErrorIs(t, err, errSentinel)
	assert.Equal(t, "get patch: version not found", err.Error())
	assert.True(t, IsStatus(err, ErrCodeNotFound))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, ErrCodeNotFound, StatusOf(wrapped))
	assert.ErrorIs(t, wrapped, errSentinel)

	assert.NoError(t, WithStatus(nil, ErrCodeInternal))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, StatusOf(NotFound("test error")))
	assert.Equal(t, ErrCodeNotFound, StatusOf(fmt.Errorf("wrapped: %w", NotFound("base"))))
	assert.Equal(t, StatusCode(0), StatusOf(errors.New("standard error")))
	assert.Equal(t, StatusCode(0), StatusOf(nil))

	assert.True(t, IsStatus(NotFound("x"), ErrCodeNotFound))
	assert.False(t, IsStatus(NotFound("x"), ErrCodeInvalidArgument))
	assert.False(t, IsStatus(nil, ErrCodeNotFound))
}
