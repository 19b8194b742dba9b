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

package audit

import (
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tikv/mwtree/pkg/utils/logutil"
	"github.com/tikv/mwtree/pkg/utils/requestutil"
)

func TestLabelMatcher(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	matcher := &LabelMatcher{"testSuccess"}
	re.True(matcher.Match(&BackendLabels{Labels: []string{"testFail", "testSuccess"}}))
	re.False(matcher.Match(&BackendLabels{Labels: []string{"testFail"}}))
	re.False(matcher.Match(nil))
}

func TestPrometheusHistogramBackend(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	histogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mwtree",
			Subsystem: "http",
			Name:      "audit_handling_seconds_test",
			Help:      "Bucketed histogram of request handling time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "component"})
	reg := prometheus.NewRegistry()
	reg.MustRegister(histogram)

	backend := NewPrometheusHistogramBackend(histogram)
	re.True(backend.Match(&BackendLabels{Labels: []string{PrometheusHistogram}}))
	req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:2479/test?test=test", nil)
	re.False(backend.ProcessHTTPRequest(req))

	info := requestutil.GetRequestInfo(req)
	info.ServiceLabel = "GetKey"
	info.Component = "user1"
	req = req.WithContext(requestutil.WithRequestInfo(req.Context(), info))
	re.False(backend.ProcessHTTPRequest(req))

	req = req.WithContext(requestutil.WithEndTime(req.Context(), info.StartTime.Add(20*time.Millisecond)))
	re.True(backend.ProcessHTTPRequest(req))
	re.True(backend.ProcessHTTPRequest(req))

	info.Component = "user2"
	req = req.WithContext(requestutil.WithRequestInfo(req.Context(), info))
	re.True(backend.ProcessHTTPRequest(req))

	re.Equal(2, testutil.CollectAndCount(histogram))
}

func TestLocalLogBackendUsingFile(t *testing.T) {
	re := require.New(t)
	backend := NewLocalLogBackend()
	fname := initLog(t)
	req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:2479/test?test=test", nil)
	re.False(backend.ProcessHTTPRequest(req))
	info := requestutil.GetRequestInfo(req)
	req = req.WithContext(requestutil.WithRequestInfo(req.Context(), info))
	req = req.WithContext(requestutil.WithEndTime(req.Context(), info.StartTime.Add(time.Second)))
	re.True(backend.ProcessHTTPRequest(req))
	re.NoError(log.Sync())
	b, err := os.ReadFile(fname)
	re.NoError(err)
	output := string(b)
	re.Contains(output, `["audit log"]`)
	re.Contains(output, "Method:HTTP/1.1/GET:/test")
	re.Contains(output, "Component:anonymous")
	re.True(strings.Contains(output, "duration="), output)
}

func TestLocalLogBackendRedact(t *testing.T) {
	re := require.New(t)
	logutil.SetRedactLog(true)
	defer logutil.SetRedactLog(false)
	backend := NewLocalLogBackend()
	fname := initLog(t)
	req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:2479/mwtree/api/v1/keys/424242?key=424242", nil)
	info := requestutil.GetRequestInfo(req)
	re.Equal(`{"key":["424242"]}`, info.URLParam)
	req = req.WithContext(requestutil.WithRequestInfo(req.Context(), info))
	re.True(backend.ProcessHTTPRequest(req))
	re.NoError(log.Sync())
	b, err := os.ReadFile(fname)
	re.NoError(err)
	output := string(b)
	re.Contains(output, `["audit log"]`)
	re.Contains(output, "Component:anonymous")
	re.Contains(output, "URLParam:?")
	re.NotContains(output, "424242")
}

func initLog(t *testing.T) string {
	cfg := &log.Config{}
	fname := t.TempDir() + "/audit.log"
	cfg.File.Filename = fname
	cfg.Level = "info"
	lg, p, _ := log.InitLogger(cfg)
	log.ReplaceGlobals(lg, p)
	return fname
}
