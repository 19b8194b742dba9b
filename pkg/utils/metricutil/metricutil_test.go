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

package metricutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/tikv/mwtree/pkg/utils/testutil"
	"github.com/tikv/mwtree/pkg/utils/typeutil"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, testutil.LeakOptions...)
}

func TestCamelCaseToSnakeCase(t *testing.T) {
	t.Parallel()
	re := require.New(t)
	inputs := []struct {
		name    string
		newName string
	}{
		{"a", "a"},
		{"snake", "snake"},
		{"A", "a"},
		{"ID", "id"},
		{"Snake", "snake"},
		{"SnakeTest", "snake_test"},
		{"SnakeID", "snake_id"},
		{"AscendRange", "ascend_range"},
		{"OMGWTFBBQ", "omgwtfbbq"},
		{"omg_wtf_bbq", "omg_wtf_bbq"},
		{"aBCd", "a_b_cd"},
		{"ABc", "a_bc"},
	}

	for _, input := range inputs {
		re.Equal(input.newName, CamelCaseToSnakeCase(input.name))
	}
}

func newTestGatherer(re *require.Assertions) prometheus.Gatherer {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "mwtree_test_total", Help: "test"})
	re.NoError(reg.Register(c))
	c.Inc()
	return reg
}

func newTestGateway(pushes *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/metrics/job/bench") {
			atomic.AddInt32(pushes, 1)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestPushOnce(t *testing.T) {
	re := require.New(t)
	var pushes int32
	gw := newTestGateway(&pushes)
	defer gw.Close()

	g := newTestGatherer(re)
	re.NoError(PushOnce(&MetricConfig{}, g))
	re.Equal(int32(0), atomic.LoadInt32(&pushes))
	re.NoError(PushOnce(&MetricConfig{PushJob: "bench", PushAddress: gw.URL}, g))
	re.Equal(int32(1), atomic.LoadInt32(&pushes))
}

func TestPush(t *testing.T) {
	re := require.New(t)
	var pushes int32
	gw := newTestGateway(&pushes)
	defer gw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g := newTestGatherer(re)
	// Disabled: no interval.
	Push(ctx, &MetricConfig{PushJob: "bench", PushAddress: gw.URL}, g)
	Push(ctx, &MetricConfig{
		PushJob:      "bench",
		PushAddress:  gw.URL,
		PushInterval: typeutil.NewDuration(10 * time.Millisecond),
	}, g)
	testutil.Eventually(re, func() bool {
		return atomic.LoadInt32(&pushes) >= 2
	}, testutil.WithTickInterval(5*time.Millisecond))
	cancel()
}
