/*
 * Copyright 2021 The Yorkie Authors. All rights reserved.
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

package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/yorkie-team/otsync/api/types"
	pkgerrors "github.com/yorkie-team/otsync/pkg/errors"
	"github.com/yorkie-team/otsync/server/logging"
	"github.com/yorkie-team/otsync/server/profiling/prometheus"
)

// handlerFunc is a handler that reports failures instead of writing them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type reqID int32

func (c *reqID) next() string {
	next := atomic.AddInt32((*int32)(c), 1)
	return "r" + strconv.Itoa(int(next))
}

// interceptor gives every request its own logger, and logs and counts the
// result of the request.
type interceptor struct {
	reqID   reqID
	metrics *prometheus.Metrics
}

func newInterceptor(metrics *prometheus.Metrics) *interceptor {
	return &interceptor{metrics: metrics}
}

// wrap turns h into an http.Handler. Errors returned by h are written as
// JSON with the HTTP status their code maps to. A panic in h is reported
// as an internal error.
func (i *interceptor) wrap(route string, h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logging.With(r.Context(), logging.New(i.reqID.next()))
		r = r.WithContext(logging.WithSession(ctx, mux.Vars(r)["id"]))
		reqLogger := logging.From(r.Context())

		err := serve(reqLogger, h, w, r)
		if err != nil {
			writeError(w, err)
			logging.LogRPCError(reqLogger, route, time.Since(start), err)
			i.metrics.AddServerHandledCounter(route, statusOf(err).String())
			return
		}

		logging.LogRPCSuccess(reqLogger, route, time.Since(start))
		i.metrics.AddServerHandledCounter(route, "ok")
	})
}

// serve runs h and turns a panic into an internal error.
func serve(reqLogger logging.Logger, h handlerFunc, w http.ResponseWriter, r *http.Request) (err error) {
	defer func() {
		if p := recover(); p != nil {
			reqLogger.Errorf("panic: %v\n%s", p, debug.Stack())
			err = pkgerrors.Internal(fmt.Sprintf("panic: %v", p))
		}
	}()

	return h(w, r)
}

func statusOf(err error) pkgerrors.StatusCode {
	if status := pkgerrors.StatusOf(err); status != 0 {
		return status
	}
	return pkgerrors.ErrCodeInternal
}

// writeError writes err as an ErrorResponse.
func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	writeJSON(w, status.HTTPStatus(), &types.ErrorResponse{
		Code:    status.String(),
		Message: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.DefaultLogger().Warnf("write response: %v", err)
	}
}
