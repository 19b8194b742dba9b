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

import (
	"fmt"
	"time"

	"github.com/pingcap/log"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/instrument"
	"github.com/tikv/mwtree/pkg/mwtree"
	"go.uber.org/zap"
)

// Handler is a helper to export methods to handle API requests. Every method
// holds the server lock for its whole duration.
type Handler struct {
	s *Server
}

func newHandler(s *Server) *Handler {
	return &Handler{s: s}
}

// Entry is one key-value pair.
// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type Entry struct {
	Key   int64  `json:"key"`
	Value string `json:"value"`
}

// TreeInfo describes the served tree.
// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type TreeInfo struct {
	Variant   string           `json:"variant"`
	Order     int              `json:"order"`
	MaxOrder  int              `json:"max-order"`
	Duplicate string           `json:"duplicate"`
	Len       int              `json:"len"`
	Height    int              `json:"height"`
	Stats     instrument.Stats `json:"stats"`
}

// StatsInfo is the operation counters of the served tree.
// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type StatsInfo struct {
	instrument.Stats
	MedianLatency string `json:"median-latency"`
	MaxLatency    string `json:"max-latency"`
}

// BatchResult is the outcome of a random insert or delete batch.
// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type BatchResult struct {
	Requested int    `json:"requested"`
	Applied   int    `json:"applied"`
	Len       int    `json:"len"`
	Elapsed   string `json:"elapsed"`
}

// RandomValue is the value stored for key by random inserts.
func RandomValue(key int64) string {
	return fmt.Sprintf("Valor %d", key)
}

// TreeInfo returns the shape and config of the tree.
func (h *Handler) TreeInfo() TreeInfo {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	return h.treeInfoLocked()
}

func (h *Handler) treeInfoLocked() TreeInfo {
	cfg := h.s.treeCfg
	return TreeInfo{
		Variant:   cfg.Variant.String(),
		Order:     cfg.Order,
		MaxOrder:  cfg.MaxOrder,
		Duplicate: cfg.Duplicate.String(),
		Len:       h.s.tree.Len(),
		Height:    h.s.tree.Height(),
		Stats:     h.s.tree.Stats(),
	}
}

// Put stores value under key following the duplicate policy of the tree.
func (h *Handler) Put(key int64, value string) error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.tree.Insert(key, value)
}

// Get returns the value under key, or ErrKeyNotFound.
func (h *Handler) Get(key int64) (string, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	value, ok := h.s.tree.Get(key)
	if !ok {
		return "", errs.ErrKeyNotFound.FastGenByArgs(key)
	}
	return value, nil
}

// Delete removes key and returns its value, or ErrKeyNotFound.
func (h *Handler) Delete(key int64) (string, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	value, ok := h.s.tree.Delete(key)
	if !ok {
		return "", errs.ErrKeyNotFound.FastGenByArgs(key)
	}
	return value, nil
}

// Scan returns the entries with keys in [start, end) in ascending order. A
// nil end scans to the last key, a non-positive limit returns everything.
func (h *Handler) Scan(start int64, end *int64, limit int) []Entry {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	entries := make([]Entry, 0)
	collect := func(key int64, value string) bool {
		entries = append(entries, Entry{Key: key, Value: value})
		return limit <= 0 || len(entries) < limit
	}
	if end != nil {
		h.s.tree.AscendRange(start, *end, collect)
		return entries
	}
	it := h.s.tree.Seek(start)
	for it.Next() {
		if !collect(it.Key(), it.Value()) {
			break
		}
	}
	return entries
}

// Snapshot returns a copy of the tree structure.
func (h *Handler) Snapshot() *mwtree.Snapshot[int64] {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.tree.Snapshot()
}

// Verify checks the structural invariants of the tree.
func (h *Handler) Verify() error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return h.s.tree.Verify()
}

// Stats returns the operation counters.
func (h *Handler) Stats() StatsInfo {
	h.s.mu.RLock()
	defer h.s.mu.RUnlock()
	latency := h.s.tree.Latency()
	return StatsInfo{
		Stats:         h.s.tree.Stats(),
		MedianLatency: latency.Median().String(),
		MaxLatency:    latency.Max().String(),
	}
}

// ResetStats zeroes the operation counters.
func (h *Handler) ResetStats() {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.tree.ResetStats()
}

// ResetTree replaces the tree with an empty one. An empty variant keeps the
// current variant. A zero order keeps the current order, unless the variant
// changes, in which case the new variant's default order is used.
func (h *Handler) ResetTree(variant string, order int) (TreeInfo, error) {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	cfg := *h.s.treeCfg
	if variant != "" {
		v, err := mwtree.ParseVariant(variant)
		if err != nil {
			return TreeInfo{}, err
		}
		if v != cfg.Variant {
			cfg.Variant, cfg.Order = v, 0
		}
	}
	if order != 0 {
		cfg.Order = order
	}
	cfg.Adjust()
	tree, err := mwtree.New[int64, string](&cfg)
	if err != nil {
		return TreeInfo{}, err
	}
	prev := h.s.tree.Unwrap()
	h.s.tree.Swap(tree)
	h.s.treeCfg = &cfg
	log.Info("tree is reset",
		zap.String("variant", cfg.Variant.String()),
		zap.Int("order", cfg.Order),
		zap.String("prev-variant", prev.Variant().String()),
		zap.Int("prev-len", prev.Len()))
	return h.treeInfoLocked(), nil
}

func (h *Handler) checkBatchCount(count int) error {
	if count < 1 || count > h.s.cfg.MaxBatch {
		return errs.ErrInvalidBatch.FastGenByArgs(fmt.Sprintf("count %d is out of [1, %d]", count, h.s.cfg.MaxBatch))
	}
	return nil
}

// RandomInsert inserts count keys drawn uniformly from [minKey, maxKey].
// Keys drawn twice are overwritten or skipped depending on the duplicate
// policy.
func (h *Handler) RandomInsert(count int, minKey, maxKey int64) (BatchResult, error) {
	if err := h.checkBatchCount(count); err != nil {
		return BatchResult{}, err
	}
	if minKey > maxKey {
		return BatchResult{}, errs.ErrInvalidBatch.FastGenByArgs(fmt.Sprintf("min %d is greater than max %d", minKey, maxKey))
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	start := time.Now()
	before := h.s.tree.Len()
	// span is zero when the range covers every int64.
	span := uint64(maxKey) - uint64(minKey) + 1
	for i := 0; i < count; i++ {
		n := h.s.rnd.Uint64()
		if span != 0 {
			n %= span
		}
		key := int64(uint64(minKey) + n)
		if err := h.s.tree.Insert(key, RandomValue(key)); err != nil && !errs.ErrDuplicateKey.Equal(err) {
			return BatchResult{}, err
		}
	}
	res := BatchResult{
		Requested: count,
		Applied:   h.s.tree.Len() - before,
		Len:       h.s.tree.Len(),
		Elapsed:   time.Since(start).String(),
	}
	h.s.metrics.randomBatchCounter.WithLabelValues("insert").Add(float64(res.Applied))
	return res, nil
}

// RandomDelete deletes up to count keys chosen uniformly among the stored
// ones.
func (h *Handler) RandomDelete(count int) (BatchResult, error) {
	if err := h.checkBatchCount(count); err != nil {
		return BatchResult{}, err
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	start := time.Now()
	keys := mwtree.Keys[int64, string](h.s.tree)
	h.s.rnd.Shuffle(len(keys), func(i, j int) {
		keys[i], keys[j] = keys[j], keys[i]
	})
	if count < len(keys) {
		keys = keys[:count]
	}
	for _, key := range keys {
		h.s.tree.Delete(key)
	}
	res := BatchResult{
		Requested: count,
		Applied:   len(keys),
		Len:       h.s.tree.Len(),
		Elapsed:   time.Since(start).String(),
	}
	h.s.metrics.randomBatchCounter.WithLabelValues("delete").Add(float64(res.Applied))
	return res, nil
}
