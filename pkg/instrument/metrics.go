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

package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tikv/mwtree/pkg/errs"
)

const namespace = "mwtree"

// Metrics holds the collectors shared by every Recorder built on them.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	items      *prometheus.GaugeVec
	height     *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg. constLabels
// are attached to every series, so several trees can share one registry
// under different labels.
func NewMetrics(reg prometheus.Registerer, constLabels prometheus.Labels) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "tree",
				Name:        "operations_total",
				Help:        "Counter of tree operations.",
				ConstLabels: constLabels,
			}, []string{"op", "kind", "variant"}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "tree",
				Name:        "operation_duration_seconds",
				Help:        "Bucketed histogram of tree operation duration.",
				ConstLabels: constLabels,
				Buckets:     prometheus.ExponentialBuckets(0.0000001, 4, 14), // 100ns ~ 6.7s
			}, []string{"op", "variant"}),
		items: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "tree",
				Name:        "items",
				Help:        "Number of keys stored in the tree.",
				ConstLabels: constLabels,
			}, []string{"variant"}),
		height: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "tree",
				Name:        "height",
				Help:        "Number of levels of the tree.",
				ConstLabels: constLabels,
			}, []string{"variant"}),
	}
	for _, c := range []prometheus.Collector{m.operations, m.duration, m.items, m.height} {
		if err := reg.Register(c); err != nil {
			return nil, errs.ErrRegisterMetrics.Wrap(err).GenWithStackByCause()
		}
	}
	return m, nil
}
