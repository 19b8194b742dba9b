// Copyright 2023 TiKV Project Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import "github.com/prometheus/client_golang/prometheus"

type serverMetrics struct {
	serverInfo            *prometheus.GaugeVec
	serviceAuditHistogram *prometheus.HistogramVec
	randomBatchCounter    *prometheus.CounterVec
}

func newServerMetrics(reg prometheus.Registerer) (*serverMetrics, error) {
	m := &serverMetrics{
		serverInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mwtree",
				Subsystem: "server",
				Name:      "info",
				Help:      "Indicate the mwtree server info, and the value is the start timestamp (s).",
			}, []string{"version", "hash"}),
		serviceAuditHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mwtree",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Bucketed histogram of the handling time (s) of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 100us ~ 3.3s
			}, []string{"route", "component"}),
		randomBatchCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mwtree",
				Subsystem: "server",
				Name:      "random_batch_keys_total",
				Help:      "Counter of keys touched by random batches.",
			}, []string{"type"}),
	}
	for _, c := range []prometheus.Collector{m.serverInfo, m.serviceAuditHistogram, m.randomBatchCounter} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
