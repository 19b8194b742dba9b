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

package bench

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/docker/go-units"
	"github.com/elliotchance/pie/v2"
	"github.com/google/btree"
	"github.com/pingcap/log"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/instrument"
	"github.com/tikv/mwtree/pkg/mwtree"
	"github.com/tikv/mwtree/pkg/render"
	"github.com/tikv/mwtree/tools/tree-bench/config"
	"go.uber.org/zap"
)

const oracleDegree = 32

type entry struct {
	key   int64
	value string
}

func entryLess(a, b entry) bool {
	return a.key < b.key
}

// Result summarizes one finished run.
type Result struct {
	Variant   string              `json:"variant"`
	Order     int                 `json:"order"`
	Ops       int                 `json:"ops"`
	Inserts   int                 `json:"inserts"`
	Deletes   int                 `json:"deletes"`
	Gets      int                 `json:"gets"`
	Verifies  int                 `json:"verifies"`
	Len       int                 `json:"len"`
	Height    int                 `json:"height"`
	Elapsed   time.Duration       `json:"elapsed"`
	Stats     instrument.Stats    `json:"stats"`
	Occupancy []render.LevelStats `json:"occupancy"`
}

// Driver runs random operations against one tree and a reference model,
// failing on the first disagreement.
type Driver struct {
	cfg     *config.Config
	variant string
	rnd     *rand.Rand
	tree    *instrument.Recorder[int64, string]
	oracle  *btree.BTreeG[entry]
	rate    *instrument.RateOverTime
	result  Result
}

// NewDriver creates a driver for variant. Drivers sharing m must run different
// variants, since the tree gauges are labeled by variant only.
func NewDriver(cfg *config.Config, variant string, m *instrument.Metrics) (*Driver, error) {
	treeCfg, err := cfg.TreeConfig(variant)
	if err != nil {
		return nil, err
	}
	t, err := mwtree.New[int64, string](treeCfg)
	if err != nil {
		return nil, err
	}
	return &Driver{
		cfg:     cfg,
		variant: t.Variant().String(),
		rnd:     rand.New(rand.NewSource(cfg.Seed)),
		tree:    instrument.NewRecorder(t, m),
		oracle:  btree.NewG(oracleDegree, entryLess),
		rate:    instrument.NewRateOverTime(cfg.ReportInterval.Duration),
		result: Result{
			Variant: t.Variant().String(),
			Order:   t.Order(),
		},
	}, nil
}

// Run executes cfg.Ops operations, or fewer if ctx is canceled first.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	log.Info("start bench",
		zap.String("variant", d.variant),
		zap.Int("order", d.result.Order),
		zap.Int("ops", d.cfg.Ops),
		zap.Int64("key-range", d.cfg.KeyRange),
		zap.Int64("seed", d.cfg.Seed))

	start := time.Now()
	lastReport, lastOps := start, 0
	for op := 1; op <= d.cfg.Ops; op++ {
		select {
		case <-ctx.Done():
			log.Warn("bench canceled", zap.String("variant", d.variant), zap.Int("done", d.result.Ops))
			return d.finish(start)
		default:
		}
		if err := d.step(op); err != nil {
			return nil, err
		}
		d.result.Ops++
		if d.cfg.VerifyEvery > 0 && op%d.cfg.VerifyEvery == 0 {
			if err := d.verify(op); err != nil {
				return nil, err
			}
		}
		if now := time.Now(); now.Sub(lastReport) >= d.cfg.ReportInterval.Duration {
			d.rate.Add(float64(op-lastOps), now.Sub(lastReport))
			d.report()
			lastReport, lastOps = now, op
		}
	}
	if err := d.verify(d.cfg.Ops); err != nil {
		return nil, err
	}
	return d.finish(start)
}

func (d *Driver) step(op int) error {
	key := d.rnd.Int63n(d.cfg.KeyRange)
	p := d.rnd.Float64()
	switch {
	case p < d.cfg.InsertRatio:
		d.result.Inserts++
		value := fmt.Sprintf("Valor %d", key)
		if err := d.tree.Insert(key, value); err != nil {
			return err
		}
		d.oracle.ReplaceOrInsert(entry{key: key, value: value})
	case p < d.cfg.InsertRatio+d.cfg.DeleteRatio:
		d.result.Deletes++
		got, found := d.tree.Delete(key)
		want, wantFound := d.oracle.Delete(entry{key: key})
		if found != wantFound || got != want.value {
			return errs.ErrOracleMismatch.FastGenByArgs(op,
				fmt.Sprintf("delete %d returned (%q, %v), want (%q, %v)", key, got, found, want.value, wantFound))
		}
	default:
		d.result.Gets++
		got, found := d.tree.Get(key)
		want, wantFound := d.oracle.Get(entry{key: key})
		if found != wantFound || got != want.value {
			return errs.ErrOracleMismatch.FastGenByArgs(op,
				fmt.Sprintf("get %d returned (%q, %v), want (%q, %v)", key, got, found, want.value, wantFound))
		}
	}
	if d.tree.Len() != d.oracle.Len() {
		return errs.ErrOracleMismatch.FastGenByArgs(op,
			fmt.Sprintf("length is %d, want %d", d.tree.Len(), d.oracle.Len()))
	}
	return nil
}

// verify checks the tree invariants and compares the full key order with
// the reference model.
func (d *Driver) verify(op int) error {
	d.result.Verifies++
	if err := d.tree.Verify(); err != nil {
		return err
	}
	want := make([]int64, 0, d.oracle.Len())
	d.oracle.Ascend(func(e entry) bool {
		want = append(want, e.key)
		return true
	})
	if got := mwtree.Keys[int64, string](d.tree); !pie.Equals(got, want) {
		return errs.ErrOracleMismatch.FastGenByArgs(op,
			fmt.Sprintf("keys %v, want %v", pie.Top(got, 10), pie.Top(want, 10)))
	}
	return nil
}

func (d *Driver) report() {
	latency := d.tree.Latency()
	log.Info("bench progress",
		zap.String("variant", d.variant),
		zap.Int("ops", d.result.Ops),
		zap.Int("len", d.tree.Len()),
		zap.Int("height", d.tree.Height()),
		zap.String("ops-per-second", fmt.Sprintf("%.1f", d.rate.Get())),
		zap.Duration("median-latency", latency.Median()),
		zap.Duration("max-latency", latency.Max()))
}

func (d *Driver) finish(start time.Time) (*Result, error) {
	d.result.Elapsed = time.Since(start)
	d.result.Len = d.tree.Len()
	d.result.Height = d.tree.Height()
	d.result.Stats = d.tree.Stats()
	d.result.Occupancy = render.Occupancy(d.tree.Snapshot())
	log.Info("bench finished",
		zap.String("variant", d.variant),
		zap.Int("ops", d.result.Ops),
		zap.Int("inserts", d.result.Inserts),
		zap.Int("deletes", d.result.Deletes),
		zap.Int("gets", d.result.Gets),
		zap.Int("len", d.result.Len),
		zap.Int("height", d.result.Height),
		zap.String("elapsed", units.HumanDuration(d.result.Elapsed)))
	r := d.result
	return &r, nil
}
