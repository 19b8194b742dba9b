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
	"time"

	"github.com/tikv/mwtree/pkg/mwtree"
	"github.com/tikv/mwtree/pkg/utils/metricutil"
	"golang.org/x/exp/constraints"
)

type opKind string

const (
	kindRead  opKind = "read"
	kindWrite opKind = "write"
)

// Operation names, as reported in the op label after snake casing.
const (
	OpInsert      = "Insert"
	OpGet         = "Get"
	OpHas         = "Has"
	OpDelete      = "Delete"
	OpMin         = "Min"
	OpMax         = "Max"
	OpIter        = "Iter"
	OpSeek        = "Seek"
	OpAscend      = "Ascend"
	OpAscendRange = "AscendRange"
	OpSnapshot    = "Snapshot"
	OpVerify      = "Verify"
	OpClear       = "Clear"
)

var opLabels = func() map[string]string {
	labels := make(map[string]string)
	for _, op := range []string{
		OpInsert, OpGet, OpHas, OpDelete, OpMin, OpMax, OpIter, OpSeek,
		OpAscend, OpAscendRange, OpSnapshot, OpVerify, OpClear,
	} {
		labels[op] = metricutil.CamelCaseToSnakeCase(op)
	}
	return labels
}()

// Stats counts the operations seen by a Recorder since it was created or
// last reset.
type Stats struct {
	Reads   uint64        `json:"reads"`
	Writes  uint64        `json:"writes"`
	Elapsed time.Duration `json:"elapsed"`
}

// Recorder wraps a Tree, timing every operation and counting it as a read or
// a write. It adds no locking of its own.
type Recorder[K constraints.Ordered, V any] struct {
	tree    mwtree.Tree[K, V]
	metrics *Metrics
	stats   Stats
	latency *LatencyWindow
}

var _ mwtree.Tree[int, struct{}] = (*Recorder[int, struct{}])(nil)

// NewRecorder wraps t. A nil m records Stats only.
func NewRecorder[K constraints.Ordered, V any](t mwtree.Tree[K, V], m *Metrics) *Recorder[K, V] {
	r := &Recorder[K, V]{
		tree:    t,
		metrics: m,
		latency: NewLatencyWindow(defaultLatencyWindow),
	}
	r.updateGauges()
	return r
}

// Unwrap returns the wrapped tree.
func (r *Recorder[K, V]) Unwrap() mwtree.Tree[K, V] {
	return r.tree
}

// Swap replaces the wrapped tree, keeping the counters.
func (r *Recorder[K, V]) Swap(t mwtree.Tree[K, V]) {
	if r.metrics != nil {
		variant := r.tree.Variant().String()
		r.metrics.items.DeleteLabelValues(variant)
		r.metrics.height.DeleteLabelValues(variant)
	}
	r.tree = t
	r.updateGauges()
}

// Stats returns a copy of the counters.
func (r *Recorder[K, V]) Stats() Stats {
	return r.stats
}

// ResetStats zeroes the counters. Prometheus collectors are not touched.
func (r *Recorder[K, V]) ResetStats() {
	r.stats = Stats{}
	r.latency.Reset()
}

// Latency returns the window of recent operation durations.
func (r *Recorder[K, V]) Latency() *LatencyWindow {
	return r.latency
}

func (r *Recorder[K, V]) observe(op string, kind opKind, n int, start time.Time) {
	elapsed := time.Since(start)
	r.stats.Elapsed += elapsed
	switch kind {
	case kindRead:
		r.stats.Reads += uint64(n)
	case kindWrite:
		r.stats.Writes += uint64(n)
	}
	r.latency.Add(elapsed)
	if r.metrics == nil {
		return
	}
	variant := r.tree.Variant().String()
	label := opLabels[op]
	r.metrics.operations.WithLabelValues(label, string(kind), variant).Add(float64(n))
	r.metrics.duration.WithLabelValues(label, variant).Observe(elapsed.Seconds())
	if kind == kindWrite {
		r.updateGauges()
	}
}

func (r *Recorder[K, V]) updateGauges() {
	if r.metrics == nil {
		return
	}
	variant := r.tree.Variant().String()
	r.metrics.items.WithLabelValues(variant).Set(float64(r.tree.Len()))
	r.metrics.height.WithLabelValues(variant).Set(float64(r.tree.Height()))
}

// Insert implements mwtree.Tree.
func (r *Recorder[K, V]) Insert(key K, value V) error {
	defer r.observe(OpInsert, kindWrite, 1, time.Now())
	return r.tree.Insert(key, value)
}

// Get implements mwtree.Tree.
func (r *Recorder[K, V]) Get(key K) (V, bool) {
	defer r.observe(OpGet, kindRead, 1, time.Now())
	return r.tree.Get(key)
}

// Has implements mwtree.Tree.
func (r *Recorder[K, V]) Has(key K) bool {
	defer r.observe(OpHas, kindRead, 1, time.Now())
	return r.tree.Has(key)
}

// Delete implements mwtree.Tree.
func (r *Recorder[K, V]) Delete(key K) (V, bool) {
	defer r.observe(OpDelete, kindWrite, 1, time.Now())
	return r.tree.Delete(key)
}

// Min implements mwtree.Tree.
func (r *Recorder[K, V]) Min() (K, V, bool) {
	defer r.observe(OpMin, kindRead, 1, time.Now())
	return r.tree.Min()
}

// Max implements mwtree.Tree.
func (r *Recorder[K, V]) Max() (K, V, bool) {
	defer r.observe(OpMax, kindRead, 1, time.Now())
	return r.tree.Max()
}

// Len implements mwtree.Tree.
func (r *Recorder[K, V]) Len() int { return r.tree.Len() }

// Height implements mwtree.Tree.
func (r *Recorder[K, V]) Height() int { return r.tree.Height() }

// Order implements mwtree.Tree.
func (r *Recorder[K, V]) Order() int { return r.tree.Order() }

// Variant implements mwtree.Tree.
func (r *Recorder[K, V]) Variant() mwtree.Variant { return r.tree.Variant() }

// Iter implements mwtree.Tree. Only positioning the iterator is timed.
func (r *Recorder[K, V]) Iter() *mwtree.Iterator[K, V] {
	defer r.observe(OpIter, kindRead, 1, time.Now())
	return r.tree.Iter()
}

// Seek implements mwtree.Tree. Only positioning the iterator is timed.
func (r *Recorder[K, V]) Seek(start K) *mwtree.Iterator[K, V] {
	defer r.observe(OpSeek, kindRead, 1, time.Now())
	return r.tree.Seek(start)
}

// Ascend implements mwtree.Tree.
func (r *Recorder[K, V]) Ascend(fn mwtree.ItemIterator[K, V]) {
	defer r.observe(OpAscend, kindRead, 1, time.Now())
	r.tree.Ascend(fn)
}

// AscendRange implements mwtree.Tree.
func (r *Recorder[K, V]) AscendRange(greaterOrEqual, lessThan K, fn mwtree.ItemIterator[K, V]) {
	defer r.observe(OpAscendRange, kindRead, 1, time.Now())
	r.tree.AscendRange(greaterOrEqual, lessThan, fn)
}

// Snapshot implements mwtree.Tree.
func (r *Recorder[K, V]) Snapshot() *mwtree.Snapshot[K] {
	defer r.observe(OpSnapshot, kindRead, 1, time.Now())
	return r.tree.Snapshot()
}

// Verify implements mwtree.Tree.
func (r *Recorder[K, V]) Verify() error {
	defer r.observe(OpVerify, kindRead, 1, time.Now())
	return r.tree.Verify()
}

// Clear implements mwtree.Tree.
func (r *Recorder[K, V]) Clear() {
	defer r.observe(OpClear, kindWrite, 1, time.Now())
	r.tree.Clear()
}
