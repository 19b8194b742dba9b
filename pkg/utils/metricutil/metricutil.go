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
	"os"
	"time"
	"unicode"

	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/utils/typeutil"
	"go.uber.org/zap"
)

const zeroDuration = time.Duration(0)

// MetricConfig is the metric configuration.
type MetricConfig struct {
	PushJob      string            `toml:"job" json:"job"`
	PushAddress  string            `toml:"address" json:"address"`
	PushInterval typeutil.Duration `toml:"interval" json:"interval"`
}

func runesHasLowerNeighborAt(runes []rune, idx int) bool {
	if idx > 0 && unicode.IsLower(runes[idx-1]) {
		return true
	}
	if idx+1 < len(runes) && unicode.IsLower(runes[idx+1]) {
		return true
	}
	return false
}

// CamelCaseToSnakeCase turns a Go identifier such as AscendRange into a
// metric label value such as ascend_range.
func CamelCaseToSnakeCase(str string) string {
	runes := []rune(str)
	length := len(runes)

	var ret []rune
	for i := 0; i < length; i++ {
		if i > 0 && unicode.IsUpper(runes[i]) && runesHasLowerNeighborAt(runes, i) {
			ret = append(ret, '_')
		}
		ret = append(ret, unicode.ToLower(runes[i]))
	}

	return string(ret)
}

func newPusher(cfg *MetricConfig, g prometheus.Gatherer) *push.Pusher {
	return push.New(cfg.PushAddress, cfg.PushJob).
		Gatherer(g).
		Grouping("instance", instanceName())
}

// prometheusPushClient pushes metrics to Prometheus Pushgateway until ctx is
// done.
func prometheusPushClient(ctx context.Context, pusher *push.Pusher, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := pusher.Push(); err != nil {
			log.Error("could not push metrics to Prometheus Pushgateway", errs.ZapError(errs.ErrPrometheusPushMetrics, err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Push metrics gathered from g in background until ctx is done.
func Push(ctx context.Context, cfg *MetricConfig, g prometheus.Gatherer) {
	if cfg.PushInterval.Duration == zeroDuration || len(cfg.PushAddress) == 0 {
		log.Info("disable Prometheus push client")
		return
	}

	log.Info("start Prometheus push client",
		zap.String("address", cfg.PushAddress),
		zap.Duration("interval", cfg.PushInterval.Duration))

	go prometheusPushClient(ctx, newPusher(cfg, g), cfg.PushInterval.Duration)
}

// PushOnce pushes metrics gathered from g a single time. It is a no-op when
// no push address is configured.
func PushOnce(cfg *MetricConfig, g prometheus.Gatherer) error {
	if len(cfg.PushAddress) == 0 {
		return nil
	}
	if err := newPusher(cfg, g).Push(); err != nil {
		return errs.ErrPrometheusPushMetrics.Wrap(err).GenWithStackByCause()
	}
	return nil
}

func instanceName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
