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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/utils/typeutil"
)

func TestDefaults(t *testing.T) {
	re := require.New(t)
	cfg := NewConfig()
	re.NoError(cfg.Parse(nil))
	re.Equal(typeutil.StringSlice{"btree", "bplustree"}, cfg.Variants)
	re.Equal(defaultOrder, cfg.Order)
	re.Equal(defaultOps, cfg.Ops)
	re.Equal(int64(defaultKeyRange), cfg.KeyRange)
	re.Equal(defaultInsertRatio, cfg.InsertRatio)
	re.Equal(defaultDeleteRatio, cfg.DeleteRatio)
	re.Equal(defaultVerifyEvery, cfg.VerifyEvery)
	re.Equal(defaultReportInterval, cfg.ReportInterval.Duration)
	re.Equal("tree-bench", cfg.Metric.PushJob)
	re.Equal("text", cfg.Log.Format)
	re.NotZero(cfg.Seed)
	re.Empty(cfg.WarningMsgs)
}

func TestParseFileAndFlags(t *testing.T) {
	re := require.New(t)
	path := filepath.Join(t.TempDir(), "bench.toml")
	re.NoError(os.WriteFile(path, []byte(`
variants = "bplustree"
order = 5
ops = 20
key-range = 50
insert-ratio = 0.6
delete-ratio = 0.0
verify-every = 0
seed = 42
report-interval = "1s"
typo = true

[metric]
address = "127.0.0.1:9091"
`), 0o600))

	cfg := NewConfig()
	re.NoError(cfg.Parse([]string{"--config", path, "--ops=30", "--variants=btree,bplustree"}))
	re.Equal(typeutil.StringSlice{"btree", "bplustree"}, cfg.Variants)
	re.Equal(5, cfg.Order)
	re.Equal(30, cfg.Ops)
	re.Equal(int64(50), cfg.KeyRange)
	re.Equal(0.6, cfg.InsertRatio)
	// Explicit zeroes in the file are kept.
	re.Zero(cfg.DeleteRatio)
	re.Zero(cfg.VerifyEvery)
	re.Equal(int64(42), cfg.Seed)
	re.Equal(time.Second, cfg.ReportInterval.Duration)
	re.Equal("127.0.0.1:9091", cfg.Metric.PushAddress)
	re.Len(cfg.WarningMsgs, 1)
	re.Contains(cfg.WarningMsgs[0], "typo")
}

func TestParseErrors(t *testing.T) {
	re := require.New(t)
	err := NewConfig().Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")})
	re.True(errs.ErrLoadConfig.Equal(err))

	re.Error(NewConfig().Parse([]string{"extra"}))

	err = NewConfig().Parse([]string{"--variants=trie"})
	re.True(errs.ErrUnknownVariant.Equal(err))

	err = NewConfig().Parse([]string{"--order=11"})
	re.True(errs.ErrInvalidOrder.Equal(err))
}

func TestValidate(t *testing.T) {
	re := require.New(t)
	cfg := NewConfig()
	re.NoError(cfg.Adjust(nil))

	cfg.InsertRatio, cfg.DeleteRatio = 0.7, 0.5
	re.True(errs.ErrConfigItem.Equal(cfg.Validate()))
	cfg.InsertRatio, cfg.DeleteRatio = 0.5, 0.5
	re.NoError(cfg.Validate())

	cfg.KeyRange = -1
	re.True(errs.ErrConfigItem.Equal(cfg.Validate()))
	cfg.KeyRange = 1

	cfg.VerifyEvery = -1
	re.True(errs.ErrConfigItem.Equal(cfg.Validate()))
}
