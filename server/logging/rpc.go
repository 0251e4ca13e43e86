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

package logging

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	pkgerrors "github.com/yorkie-team/otsync/pkg/errors"
)

// RPCLogLevel represents the severity level for RPC logging
type RPCLogLevel int

const (
	RPCLogDebug RPCLogLevel = iota
	RPCLogInfo
	RPCLogWarn
	RPCLogError
)

// String returns the string representation of RPCLogLevel
func (l RPCLogLevel) String() string {
	switch l {
	case RPCLogDebug:
		return "debug"
	case RPCLogInfo:
		return "info"
	case RPCLogError:
		return "error"
	}
	return "warn"
}

// toRPCLogLevel determines the log level of a failed request from the status
// its error carries.
func toRPCLogLevel(err error) RPCLogLevel {
	if err == nil {
		return RPCLogDebug
	}

	// Clients going away is expected.
	if errors.Is(err, context.Canceled) {
		return RPCLogDebug
	}

	switch pkgerrors.StatusOf(err) {
	case pkgerrors.ErrCodeInvalidArgument, pkgerrors.ErrCodeNotFound, pkgerrors.ErrCodeAlreadyExists:
		return RPCLogInfo
	case pkgerrors.ErrCodeFailedPrecondition:
		return RPCLogWarn
	case pkgerrors.ErrCodeInternal, pkgerrors.ErrCodeUnavailable:
		return RPCLogError
	}

	return RPCLogWarn
}

// LogRPCError logs a failed request with the level its error calls for.
func LogRPCError(logger *zap.SugaredLogger, route string, duration time.Duration, err error) {
	const template = "RPC : %q %s => %q"

	switch toRPCLogLevel(err) {
	case RPCLogDebug:
		logger.Debugf(template, route, duration, err)
	case RPCLogInfo:
		logger.Infof(template, route, duration, err)
	case RPCLogError:
		logger.Errorf(template, route, duration, err)
	default:
		logger.Warnf(template, route, duration, err)
	}
}

// LogRPCSuccess logs successful requests at debug level.
func LogRPCSuccess(logger *zap.SugaredLogger, route string, duration time.Duration) {
	logger.Debugf("RPC : %q %s", route, duration)
}
