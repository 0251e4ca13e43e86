/*
 * Copyright 2023 The Yorkie Authors. All rights reserved.
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

package prometheus_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/yorkie-team/otsync/pkg/document"
	"github.com/yorkie-team/otsync/server/profiling/prometheus"
)

func TestMetrics(t *testing.T) {
	metrics, err := prometheus.NewMetrics()
	assert.NoError(t, err)

	metrics.AddSessionsCreated("host", document.KindText)
	metrics.AddModifyAccepted("host", document.KindText, 3)
	metrics.AddModifyAccepted("host", document.KindLines, 0)
	metrics.AddServerHandledCounter("GetPatch", "ok")

	expected := `
# HELP otsync_sequencer_accepted_operations_total The total number of operations accepted by sequencers.
# TYPE otsync_sequencer_accepted_operations_total counter
otsync_sequencer_accepted_operations_total{document_kind="lines",hostname="host"} 1
otsync_sequencer_accepted_operations_total{document_kind="text",hostname="host"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(
		metrics.Registry(),
		strings.NewReader(expected),
		"otsync_sequencer_accepted_operations_total",
	))

	count, err := testutil.GatherAndCount(metrics.Registry(), "otsync_session_created_total", "otsync_rpc_server_handled_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}
