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

// Package audit records finished HTTP requests to the log and to prometheus.
package audit

import (
	"net/http"

	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tikv/mwtree/pkg/utils/logutil"
	"github.com/tikv/mwtree/pkg/utils/requestutil"
	"go.uber.org/zap"
)

const (
	// PrometheusHistogram is the label of PrometheusHistogramBackend.
	PrometheusHistogram = "prometheus-histogram"
	// LocalLogLabel is the label of LocalLogBackend.
	LocalLogLabel = "local-log"
)

// BackendLabels lists the backends a route is audited by.
type BackendLabels struct {
	Labels []string
}

// LabelMatcher is embedded by backends to implement Match.
type LabelMatcher struct {
	backendLabel string
}

// Match reports whether labels select the backend.
func (m *LabelMatcher) Match(labels *BackendLabels) bool {
	if labels == nil {
		return false
	}
	for _, item := range labels.Labels {
		if m.backendLabel == item {
			return true
		}
	}
	return false
}

// Backend consumes a request once its handler has returned.
type Backend interface {
	// ProcessHTTPRequest reports whether the request carried enough
	// information to be recorded.
	ProcessHTTPRequest(req *http.Request) bool
	Match(*BackendLabels) bool
}

// PrometheusHistogramBackend observes the handling time of each request.
// histogramVec must take the labels route and component.
type PrometheusHistogramBackend struct {
	*LabelMatcher
	histogramVec *prometheus.HistogramVec
}

// NewPrometheusHistogramBackend returns a PrometheusHistogramBackend.
func NewPrometheusHistogramBackend(histogramVec *prometheus.HistogramVec) Backend {
	return &PrometheusHistogramBackend{
		LabelMatcher: &LabelMatcher{backendLabel: PrometheusHistogram},
		histogramVec: histogramVec,
	}
}

// ProcessHTTPRequest implements Backend.
func (b *PrometheusHistogramBackend) ProcessHTTPRequest(req *http.Request) bool {
	requestInfo, ok := requestutil.RequestInfoFrom(req.Context())
	if !ok {
		return false
	}
	endTime, ok := requestutil.EndTimeFrom(req.Context())
	if !ok {
		return false
	}
	b.histogramVec.WithLabelValues(requestInfo.ServiceLabel, requestInfo.Component).
		Observe(endTime.Sub(requestInfo.StartTime).Seconds())
	return true
}

// LocalLogBackend writes one log line per request through pingcap/log.
type LocalLogBackend struct {
	*LabelMatcher
}

// NewLocalLogBackend returns a LocalLogBackend.
func NewLocalLogBackend() Backend {
	return &LocalLogBackend{
		LabelMatcher: &LabelMatcher{backendLabel: LocalLogLabel},
	}
}

// ProcessHTTPRequest implements Backend.
func (l *LocalLogBackend) ProcessHTTPRequest(r *http.Request) bool {
	requestInfo, ok := requestutil.RequestInfoFrom(r.Context())
	if !ok {
		return false
	}
	// The path and the query both carry user keys.
	requestInfo.Method = logutil.RedactString(requestInfo.Method)
	requestInfo.URLParam = logutil.RedactString(requestInfo.URLParam)
	fields := []zap.Field{zap.String("service-info", requestInfo.String())}
	if endTime, ok := requestutil.EndTimeFrom(r.Context()); ok {
		fields = append(fields, zap.Duration("duration", endTime.Sub(requestInfo.StartTime)))
	}
	log.Info("audit log", fields...)
	return true
}
