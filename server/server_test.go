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
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/server/config"
)

func newTestConfig(re *require.Assertions, variant string, order int) *config.Config {
	cfg := config.NewConfig()
	cfg.Name = "test"
	cfg.Addr = "127.0.0.1:0"
	cfg.Tree.Variant = variant
	cfg.Tree.Order = order
	re.NoError(cfg.Adjust(nil))
	return cfg
}

func mustCreateServer(re *require.Assertions, variant string, order int) *Server {
	svr, err := CreateServer(context.Background(), newTestConfig(re, variant, order), nil)
	re.NoError(err)
	return svr
}

func TestCreateServerInvalidTree(t *testing.T) {
	re := require.New(t)
	cfg := newTestConfig(re, "btree", 3)
	cfg.Tree.Order = 42
	_, err := CreateServer(context.Background(), cfg, nil)
	re.True(errs.ErrInvalidOrder.Equal(err))
}

func TestHandlerKeys(t *testing.T) {
	re := require.New(t)
	h := mustCreateServer(re, "bplustree", 3).GetHandler()

	_, err := h.Get(1)
	re.True(errs.ErrKeyNotFound.Equal(err))
	for _, key := range []int64{5, 1, 9, 3, 7} {
		re.NoError(h.Put(key, RandomValue(key)))
	}
	value, err := h.Get(9)
	re.NoError(err)
	re.Equal("Valor 9", value)

	value, err = h.Delete(3)
	re.NoError(err)
	re.Equal("Valor 3", value)
	_, err = h.Delete(3)
	re.True(errs.ErrKeyNotFound.Equal(err))

	info := h.TreeInfo()
	re.Equal("bplustree", info.Variant)
	re.Equal(3, info.Order)
	re.Equal(4, info.Len)
	re.NoError(h.Verify())
}

func TestHandlerScan(t *testing.T) {
	re := require.New(t)
	h := mustCreateServer(re, "btree", 3).GetHandler()
	for key := int64(0); key < 20; key++ {
		re.NoError(h.Put(key*2, RandomValue(key*2)))
	}
	end := int64(11)
	entries := h.Scan(3, &end, 0)
	re.Equal([]Entry{{4, "Valor 4"}, {6, "Valor 6"}, {8, "Valor 8"}, {10, "Valor 10"}}, entries)

	entries = h.Scan(33, nil, 0)
	re.Len(entries, 3)
	re.Equal(int64(34), entries[0].Key)

	entries = h.Scan(0, nil, 2)
	re.Equal([]Entry{{0, "Valor 0"}, {2, "Valor 2"}}, entries)

	re.Empty(h.Scan(100, nil, 0))
}

func TestHandlerDuplicateReject(t *testing.T) {
	re := require.New(t)
	cfg := newTestConfig(re, "btree", 3)
	cfg.Tree.Duplicate = "reject"
	svr, err := CreateServer(context.Background(), cfg, nil)
	re.NoError(err)
	h := svr.GetHandler()
	re.NoError(h.Put(1, "a"))
	re.True(errs.ErrDuplicateKey.Equal(h.Put(1, "b")))

	// Duplicates drawn by a random batch are skipped.
	res, err := h.RandomInsert(50, 1, 5)
	re.NoError(err)
	re.Equal(50, res.Requested)
	re.LessOrEqual(res.Applied, 4)
	re.LessOrEqual(res.Len, 5)
	value, err := h.Get(1)
	re.NoError(err)
	re.Equal("a", value)
}

func TestHandlerRandomBatches(t *testing.T) {
	re := require.New(t)
	svr := mustCreateServer(re, "bplustree", 4)
	h := svr.GetHandler()

	res, err := h.RandomInsert(500, -1000, 1000)
	re.NoError(err)
	re.Equal(500, res.Requested)
	re.Equal(res.Len, res.Applied)
	re.NotEmpty(res.Elapsed)
	re.NoError(h.Verify())
	for _, e := range h.Scan(-1000, nil, 0) {
		re.GreaterOrEqual(e.Key, int64(-1000))
		re.LessOrEqual(e.Key, int64(1000))
		re.Equal(RandomValue(e.Key), e.Value)
	}

	before := res.Len
	res, err = h.RandomDelete(100)
	re.NoError(err)
	re.Equal(100, res.Applied)
	re.Equal(before-100, res.Len)
	re.NoError(h.Verify())

	res, err = h.RandomDelete(h.TreeInfo().Len + 10)
	re.NoError(err)
	re.Equal(0, res.Len)
	re.NoError(h.Verify())

	re.Equal(float64(before), testutil.ToFloat64(svr.metrics.randomBatchCounter.WithLabelValues("insert")))
	re.Equal(float64(before), testutil.ToFloat64(svr.metrics.randomBatchCounter.WithLabelValues("delete")))
	re.Equal(uint64(500+before), h.Stats().Writes)
}

func TestHandlerRandomBatchValidation(t *testing.T) {
	re := require.New(t)
	h := mustCreateServer(re, "btree", 3).GetHandler()
	_, err := h.RandomInsert(0, 1, 10)
	re.True(errs.ErrInvalidBatch.Equal(err))
	_, err = h.RandomInsert(10, 10, 1)
	re.True(errs.ErrInvalidBatch.Equal(err))
	_, err = h.RandomDelete(h.s.cfg.MaxBatch + 1)
	re.True(errs.ErrInvalidBatch.Equal(err))

	// The full int64 range draws without overflow.
	res, err := h.RandomInsert(100, -1<<63, 1<<63-1)
	re.NoError(err)
	re.Equal(100, res.Requested)
	re.NoError(h.Verify())
}

func TestHandlerResetTree(t *testing.T) {
	re := require.New(t)
	h := mustCreateServer(re, "btree", 4).GetHandler()
	re.NoError(h.Put(1, "a"))

	info, err := h.ResetTree("", 0)
	re.NoError(err)
	re.Equal("btree", info.Variant)
	re.Equal(4, info.Order)
	re.Equal(0, info.Len)

	info, err = h.ResetTree("bplustree", 0)
	re.NoError(err)
	re.Equal("bplustree", info.Variant)
	re.Equal(5, info.Order)

	info, err = h.ResetTree("", 7)
	re.NoError(err)
	re.Equal("bplustree", info.Variant)
	re.Equal(7, info.Order)

	_, err = h.ResetTree("", 99)
	re.True(errs.ErrInvalidOrder.Equal(err))
	_, err = h.ResetTree("skiplist", 0)
	re.True(errs.ErrUnknownVariant.Equal(err))
	re.Equal(7, h.TreeInfo().Order)
}

func TestHandlerStats(t *testing.T) {
	re := require.New(t)
	h := mustCreateServer(re, "btree", 3).GetHandler()
	re.NoError(h.Put(1, "a"))
	re.NoError(h.Put(2, "b"))
	_, err := h.Get(1)
	re.NoError(err)

	stats := h.Stats()
	re.Equal(uint64(2), stats.Writes)
	re.Equal(uint64(1), stats.Reads)
	re.NotEmpty(stats.MedianLatency)
	re.NotEmpty(stats.MaxLatency)

	h.ResetStats()
	re.Zero(h.Stats().Writes)
	re.Zero(h.Stats().Reads)
}

func TestServerRunAndClose(t *testing.T) {
	re := require.New(t)
	builder := func(_ context.Context, s *Server) (http.Handler, error) {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, s.Name())
		}), nil
	}
	svr, err := CreateServer(context.Background(), newTestConfig(re, "btree", 3), builder)
	re.NoError(err)
	re.True(svr.IsClosed())
	re.NoError(svr.Run())
	re.False(svr.IsClosed())

	resp, err := http.Get("http://" + svr.GetAddr())
	re.NoError(err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	re.NoError(err)
	re.Equal("test", string(body))

	svr.Close()
	re.True(svr.IsClosed())
	// Closing twice is a no-op.
	svr.Close()
}

func TestServerRunWithoutHandler(t *testing.T) {
	re := require.New(t)
	svr := mustCreateServer(re, "btree", 3)
	re.True(errs.ErrStartHTTPServer.Equal(svr.Run()))
}
