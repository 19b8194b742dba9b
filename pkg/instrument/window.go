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

	"github.com/elliotchance/pie/v2"
	"github.com/phf/go-queue/queue"
)

const defaultLatencyWindow = 1024

// LatencyWindow keeps the last size durations added to it.
type LatencyWindow struct {
	records []float64
	size    uint64
	count   uint64
}

// NewLatencyWindow returns an empty window of the given size.
func NewLatencyWindow(size int) *LatencyWindow {
	return &LatencyWindow{
		records: make([]float64, size),
		size:    uint64(size),
	}
}

// Add records a duration, evicting the oldest one once the window is full.
func (w *LatencyWindow) Add(d time.Duration) {
	w.records[w.count%w.size] = float64(d)
	w.count++
}

func (w *LatencyWindow) filled() []float64 {
	if w.count < w.size {
		return w.records[:w.count]
	}
	return w.records
}

// Len returns the number of durations currently in the window.
func (w *LatencyWindow) Len() int {
	return len(w.filled())
}

// Median returns the median duration in the window, 0 when it is empty.
func (w *LatencyWindow) Median() time.Duration {
	if w.count == 0 {
		return 0
	}
	// Median may reorder its input.
	return time.Duration(pie.Median(append([]float64(nil), w.filled()...)))
}

// Max returns the largest duration in the window, 0 when it is empty.
func (w *LatencyWindow) Max() time.Duration {
	if w.count == 0 {
		return 0
	}
	return time.Duration(pie.Max(w.filled()))
}

// Reset empties the window.
func (w *LatencyWindow) Reset() {
	w.count = 0
}

type countWithInterval struct {
	count    float64
	interval time.Duration
}

// RateOverTime takes operation counts with the interval they happened in and
// reports the rate over the most recent span of at least avgInterval.
type RateOverTime struct {
	que         *queue.Queue // countWithInterval, oldest first
	countSum    float64
	intervalSum time.Duration
	avgInterval time.Duration
}

// NewRateOverTime returns a RateOverTime averaging over interval.
func NewRateOverTime(interval time.Duration) *RateOverTime {
	return &RateOverTime{
		que:         queue.New(),
		avgInterval: interval,
	}
}

// Add records count operations done within interval.
func (r *RateOverTime) Add(count float64, interval time.Duration) {
	if interval <= 0 {
		return
	}
	r.que.PushBack(countWithInterval{count, interval})
	r.countSum += count
	r.intervalSum += interval
	for r.que.Len() > 1 {
		oldest := r.que.Front().(countWithInterval)
		if r.intervalSum-oldest.interval < r.avgInterval {
			break
		}
		r.que.PopFront()
		r.countSum -= oldest.count
		r.intervalSum -= oldest.interval
	}
}

// Get returns operations per second, 0 when nothing was added.
func (r *RateOverTime) Get() float64 {
	if r.intervalSum <= 0 {
		return 0
	}
	return r.countSum / r.intervalSum.Seconds()
}

// Clear drops all recorded counts.
func (r *RateOverTime) Clear() {
	for r.que.Len() > 0 {
		r.que.PopFront()
	}
	r.countSum = 0
	r.intervalSum = 0
}
