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
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/mwtree"
	utiltestutil "github.com/tikv/mwtree/pkg/utils/testutil"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, utiltestutil.LeakOptions...)
}

func newRecorder(re *require.Assertions, reg prometheus.Registerer, v mwtree.Variant) (*Recorder[int, string], *Metrics) {
	tr, err := mwtree.New[int, string](mwtree.NewConfig(mwtree.WithVariant(v)))
	re.NoError(err)
	m, err := NewMetrics(reg, prometheus.Labels{"tree": "test"})
	re.NoError(err)
	return NewRecorder(tr, m), m
}

func TestRecorderCounts(t *testing.T) {
	re := require.New(t)
	reg := prometheus.NewRegistry()
	r, m := newRecorder(re, reg, mwtree.VariantBPlusTree)
	for i := 0; i < 20; i++ {
		re.NoError(r.Insert(i, "v"))
	}
	for i := 0; i < 5; i++ {
		_, ok := r.Get(i)
		re.True(ok)
	}
	r.Delete(3)
	r.AscendRange(0, 10, func(int, string) bool { return true })

	stats := r.Stats()
	re.Equal(uint64(6), stats.Reads)
	re.Equal(uint64(21), stats.Writes)
	re.Positive(stats.Elapsed)
	re.Equal(27, r.Latency().Len())

	re.Equal(float64(20), testutil.ToFloat64(m.operations.WithLabelValues("insert", "write", "bplustree")))
	re.Equal(float64(5), testutil.ToFloat64(m.operations.WithLabelValues("get", "read", "bplustree")))
	re.Equal(float64(1), testutil.ToFloat64(m.operations.WithLabelValues("ascend_range", "read", "bplustree")))
	re.Equal(float64(19), testutil.ToFloat64(m.items.WithLabelValues("bplustree")))
	re.Equal(float64(r.Height()), testutil.ToFloat64(m.height.WithLabelValues("bplustree")))
	re.Equal(4, testutil.CollectAndCount(m.operations))

	r.ResetStats()
	re.Equal(Stats{}, r.Stats())
	re.Equal(0, r.Latency().Len())
}

func TestRecorderPassThrough(t *testing.T) {
	re := require.New(t)
	r, _ := newRecorder(re, prometheus.NewRegistry(), mwtree.VariantBTree)
	for _, k := range []int{10, 20, 5, 6, 12, 30, 7, 17} {
		re.NoError(r.Insert(k, "v"))
	}
	re.NoError(r.Verify())
	re.Equal(2, r.Height())
	re.Equal(mwtree.VariantBTree, r.Variant())
	re.Equal(3, r.Order())
	re.Equal([]int{5, 6, 7, 10, 12, 17, 20, 30}, mwtree.Keys[int, string](r))
	k, _, ok := r.Min()
	re.True(ok)
	re.Equal(5, k)
	it := r.Seek(11)
	re.True(it.Next())
	re.Equal(12, it.Key())
	re.Equal(8, r.Snapshot().Len)
	r.Clear()
	re.Equal(0, r.Len())
}

func TestRecorderSwap(t *testing.T) {
	re := require.New(t)
	r, m := newRecorder(re, prometheus.NewRegistry(), mwtree.VariantBTree)
	re.NoError(r.Insert(1, "v"))
	prev := r.Unwrap()
	tr, err := mwtree.New[int, string](mwtree.NewConfig(mwtree.WithVariant(mwtree.VariantBPlusTree)))
	re.NoError(err)
	r.Swap(tr)
	re.Same(tr, r.Unwrap())
	re.Equal(mwtree.VariantBTree, prev.Variant())
	re.Equal(1, prev.Len())
	re.Equal(mwtree.VariantBPlusTree, r.Variant())
	re.Equal(0, r.Len())
	re.Equal(uint64(1), r.Stats().Writes)
	re.Equal(1, testutil.CollectAndCount(m.items))
}

func TestRecorderWithoutMetrics(t *testing.T) {
	re := require.New(t)
	tr, err := mwtree.New[int, string](nil)
	re.NoError(err)
	r := NewRecorder(tr, nil)
	re.NoError(r.Insert(1, "v"))
	re.True(r.Has(1))
	re.Equal(Stats{Reads: 1, Writes: 1, Elapsed: r.Stats().Elapsed}, r.Stats())
}

func TestDuplicateRegistration(t *testing.T) {
	re := require.New(t)
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg, nil)
	re.NoError(err)
	_, err = NewMetrics(reg, nil)
	re.Error(err)
	re.True(errs.ErrRegisterMetrics.Equal(err))
}

func TestLatencyWindow(t *testing.T) {
	re := require.New(t)
	w := NewLatencyWindow(3)
	re.Equal(time.Duration(0), w.Median())
	re.Equal(time.Duration(0), w.Max())
	w.Add(5 * time.Millisecond)
	w.Add(time.Millisecond)
	re.Equal(2, w.Len())
	re.Equal(5*time.Millisecond, w.Max())
	w.Add(3 * time.Millisecond)
	re.Equal(3*time.Millisecond, w.Median())
	// Evicts 5ms.
	w.Add(2 * time.Millisecond)
	re.Equal(3, w.Len())
	re.Equal(3*time.Millisecond, w.Max())
	re.Equal(2*time.Millisecond, w.Median())
	w.Reset()
	re.Equal(0, w.Len())
}

func TestRateOverTime(t *testing.T) {
	re := require.New(t)
	r := NewRateOverTime(2 * time.Second)
	re.Equal(0.0, r.Get())
	r.Add(100, time.Second)
	re.Equal(100.0, r.Get())
	r.Add(300, time.Second)
	re.Equal(200.0, r.Get())
	// The first second falls out of the window.
	r.Add(500, time.Second)
	re.Equal(400.0, r.Get())
	r.Add(10, 0)
	re.Equal(400.0, r.Get())
	r.Clear()
	re.Equal(0.0, r.Get())
}
