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

// Package prometheus provides a Prometheus metrics exporter.
package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yorkie-team/otsync/internal/version"
	"github.com/yorkie-team/otsync/pkg/document"
)

const (
	namespace           = "otsync"
	kindLabel           = "document_kind"
	hostnameLabel       = "hostname"
	taskTypeLabel       = "task_type"
	sessionEventLabel   = "session_event_type"
	routeLabel          = "route"
	codeLabel           = "code"
	versionLabel        = "server_version"
	rebaseBucketsFactor = 2
)

// Metrics manages the metric information that otsync is trying to measure.
type Metrics struct {
	registry *prometheus.Registry

	serverVersion        *prometheus.GaugeVec
	serverHandledCounter *prometheus.CounterVec

	sessionsCreatedTotal *prometheus.CounterVec
	sessionsLoadedTotal  *prometheus.CounterVec

	modifyResponseSeconds    prometheus.Histogram
	modifyAcceptedTotal      *prometheus.CounterVec
	modifyRebaseDistance     prometheus.Histogram
	patchSentVersionsTotal   *prometheus.CounterVec
	persistenceFailuresTotal *prometheus.CounterVec

	backgroundGoroutinesTotal *prometheus.GaugeVec
	backgroundPanicsTotal     *prometheus.CounterVec

	watchSessionConnectionsTotal *prometheus.GaugeVec
	watchSessionEventsTotal      *prometheus.CounterVec
}

// NewMetrics creates a new instance of Metrics.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("register process collector: %w", err)
	}
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("register go collector: %w", err)
	}

	metrics := &Metrics{
		registry: reg,
		serverVersion: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "version",
			Help:      "Which version is running. 1 for 'server_version' label with current version.",
		}, []string{versionLabel}),
		serverHandledCounter: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "server_handled_total",
			Help:      "Total number of requests completed on the server, regardless of success or failure.",
		}, []string{routeLabel, codeLabel}),
		sessionsCreatedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "created_total",
			Help:      "The total number of sessions created.",
		}, []string{kindLabel, hostnameLabel}),
		sessionsLoadedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "loaded_total",
			Help:      "The total number of sessions loaded from the database into memory.",
		}, []string{kindLabel, hostnameLabel}),
		modifyResponseSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "modify_response_seconds",
			Help:      "The response time of Modify.",
		}),
		modifyAcceptedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "accepted_operations_total",
			Help:      "The total number of operations accepted by sequencers.",
		}, []string{kindLabel, hostnameLabel}),
		modifyRebaseDistance: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "rebase_distance_versions",
			Help:      "The number of versions an accepted operation was rebased over.",
			Buckets:   prometheus.ExponentialBuckets(1, rebaseBucketsFactor, 10),
		}),
		patchSentVersionsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequencer",
			Name:      "patch_sent_versions_total",
			Help:      "The total number of versions composed into patches sent to clients.",
		}, []string{kindLabel, hostnameLabel}),
		persistenceFailuresTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "persistence_failures_total",
			Help:      "The total number of sessions that could not be written to the database.",
		}, []string{hostnameLabel}),
		backgroundGoroutinesTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "goroutines_total",
			Help:      "The total number of goroutines attached by a particular background task.",
		}, []string{taskTypeLabel}),
		backgroundPanicsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "panics_total",
			Help:      "The total number of background tasks that panicked.",
		}, []string{taskTypeLabel}),
		watchSessionConnectionsTotal: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "watch_session_stream_connections_total",
			Help:      "The total number of session watch stream connections.",
		}, []string{hostnameLabel}),
		watchSessionEventsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "watch_session_events_total",
			Help:      "The total number of events in session watch stream connections.",
		}, []string{hostnameLabel, sessionEventLabel}),
	}

	metrics.serverVersion.With(prometheus.Labels{
		versionLabel: version.Version,
	}).Set(1)

	return metrics, nil
}

// AddServerHandledCounter adds the number of requests completed on the server.
func (m *Metrics) AddServerHandledCounter(route, code string) {
	m.serverHandledCounter.With(prometheus.Labels{
		routeLabel: route,
		codeLabel:  code,
	}).Inc()
}

// AddSessionsCreated adds the number of sessions created.
func (m *Metrics) AddSessionsCreated(hostname string, kind document.Kind) {
	m.sessionsCreatedTotal.With(prometheus.Labels{
		kindLabel:     string(kind),
		hostnameLabel: hostname,
	}).Inc()
}

// AddSessionsLoaded adds the number of sessions loaded from the database.
func (m *Metrics) AddSessionsLoaded(hostname string, kind document.Kind) {
	m.sessionsLoadedTotal.With(prometheus.Labels{
		kindLabel:     string(kind),
		hostnameLabel: hostname,
	}).Inc()
}

// ObserveModifyResponseSeconds adds an observation for response time of
// Modify.
func (m *Metrics) ObserveModifyResponseSeconds(seconds float64) {
	m.modifyResponseSeconds.Observe(seconds)
}

// AddModifyAccepted adds an accepted operation and the number of versions
// it was rebased over.
func (m *Metrics) AddModifyAccepted(hostname string, kind document.Kind, rebased int) {
	m.modifyAcceptedTotal.With(prometheus.Labels{
		kindLabel:     string(kind),
		hostnameLabel: hostname,
	}).Inc()
	m.modifyRebaseDistance.Observe(float64(rebased))
}

// AddPatchSentVersions adds the number of versions composed into a patch.
func (m *Metrics) AddPatchSentVersions(hostname string, kind document.Kind, count int) {
	m.patchSentVersionsTotal.With(prometheus.Labels{
		kindLabel:     string(kind),
		hostnameLabel: hostname,
	}).Add(float64(count))
}

// AddPersistenceFailures adds the number of failed session writes.
func (m *Metrics) AddPersistenceFailures(hostname string) {
	m.persistenceFailuresTotal.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Inc()
}

// AddBackgroundGoroutines adds the number of goroutines attached by a particular background task.
func (m *Metrics) AddBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// RemoveBackgroundGoroutines removes the number of goroutines attached by a particular background task.
func (m *Metrics) RemoveBackgroundGoroutines(taskType string) {
	m.backgroundGoroutinesTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Dec()
}

// AddBackgroundPanics adds the number of panicked background tasks.
func (m *Metrics) AddBackgroundPanics(taskType string) {
	m.backgroundPanicsTotal.With(prometheus.Labels{
		taskTypeLabel: taskType,
	}).Inc()
}

// AddWatchSessionConnections adds the number of session watch stream connection.
func (m *Metrics) AddWatchSessionConnections(hostname string) {
	m.watchSessionConnectionsTotal.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Inc()
}

// RemoveWatchSessionConnections removes the number of session watch stream connection.
func (m *Metrics) RemoveWatchSessionConnections(hostname string) {
	m.watchSessionConnectionsTotal.With(prometheus.Labels{
		hostnameLabel: hostname,
	}).Dec()
}

// AddWatchSessionEvents adds the number of events in session watch stream connections.
func (m *Metrics) AddWatchSessionEvents(hostname string, eventType string) {
	m.watchSessionEventsTotal.With(prometheus.Labels{
		hostnameLabel:     hostname,
		sessionEventLabel: eventType,
	}).Inc()
}

// Registry returns the registry of this metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
