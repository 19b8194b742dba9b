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
	"fmt"
	"os"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/mwtree"
	"github.com/tikv/mwtree/pkg/utils/testutil"
	"github.com/tikv/mwtree/pkg/utils/typeutil"
)

func newFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flagSet.StringP("config", "", "", "config file")
	flagSet.StringP("log-level", "L", "info", "log level")
	flagSet.StringP("name", "", "", "human-readable name for this server")
	flagSet.StringP("addr", "", "", "listen address")
	flagSet.StringP("variant", "", "", "tree variant")
	flagSet.IntP("order", "", 0, "tree order")
	return flagSet
}

func TestAdjustDefaults(t *testing.T) {
	re := require.New(t)
	cfg := NewConfig()
	re.NoError(cfg.Adjust(nil))

	host, err := os.Hostname()
	re.NoError(err)
	re.Equal(fmt.Sprintf("%s-%s", defaultName, host), cfg.Name)
	re.Equal(defaultAddr, cfg.Addr)
	re.Equal(cfg.Name, cfg.Metric.PushJob)
	re.Equal(defaultMetricsPushInterval, cfg.Metric.PushInterval.Duration)
	re.Equal(defaultMaxBodySize, cfg.MaxBodySize)
	re.Equal(defaultMaxBatch, cfg.MaxBatch)
	re.Equal(defaultLogFormat, cfg.Log.Format)
	re.True(cfg.Log.DisableErrorVerbose)

	treeCfg, err := cfg.Tree.TreeConfig()
	re.NoError(err)
	re.Equal(mwtree.VariantBPlusTree, treeCfg.Variant)
	re.Equal(5, treeCfg.Order)
	re.Equal(mwtree.DefaultMaxOrder, treeCfg.MaxOrder)
	re.Equal(mwtree.DuplicateOverwrite, treeCfg.Duplicate)
}

func TestAdjustFromFile(t *testing.T) {
	re := require.New(t)
	cfgData := `
name = "tree-1"
max-body-size = "4KiB"
unknown-item = 1

[tree]
variant = "btree"
order = 4
duplicate = "reject"

[log]
disable-error-verbose = false
`
	cfg := NewConfig()
	meta, err := toml.Decode(cfgData, cfg)
	re.NoError(err)
	re.NoError(cfg.Adjust(&meta))

	re.Equal("tree-1", cfg.Name)
	re.Equal(typeutil.ByteSize(4<<10), cfg.MaxBodySize)
	re.False(cfg.Log.DisableErrorVerbose)
	re.Len(cfg.WarningMsgs, 1)
	re.Contains(cfg.WarningMsgs[0], "unknown-item")

	treeCfg, err := cfg.Tree.TreeConfig()
	re.NoError(err)
	re.Equal(mwtree.VariantBTree, treeCfg.Variant)
	re.Equal(4, treeCfg.Order)
	re.Equal(mwtree.DuplicateReject, treeCfg.Duplicate)
}

func TestParseCommandLineOverridesFile(t *testing.T) {
	re := require.New(t)
	path := testutil.MustWriteFile(re, t.TempDir(), "server.toml", `
name = "from-file"
addr = "127.0.0.1:9000"
[tree]
variant = "btree"
order = 3
`)
	flagSet := newFlagSet()
	re.NoError(flagSet.Parse([]string{"--config", path, "--name", "from-flag", "--order", "6"}))
	cfg := NewConfig()
	re.NoError(cfg.Parse(flagSet))

	re.Equal("from-flag", cfg.Name)
	re.Equal("127.0.0.1:9000", cfg.Addr)
	re.Equal("btree", cfg.Tree.Variant)
	re.Equal(6, cfg.Tree.Order)
}

func TestParseMissingFile(t *testing.T) {
	re := require.New(t)
	flagSet := newFlagSet()
	re.NoError(flagSet.Parse([]string{"--config", "/nonexistent/server.toml"}))
	err := NewConfig().Parse(flagSet)
	re.Error(err)
	re.True(errs.ErrLoadConfig.Equal(err))
}

func TestValidation(t *testing.T) {
	re := require.New(t)
	cfg := NewConfig()
	re.NoError(cfg.Adjust(nil))

	bad := cfg.Clone()
	bad.Tree.Order = 11
	re.True(errs.ErrInvalidOrder.Equal(bad.Validate()))

	bad = cfg.Clone()
	bad.Tree.Variant = "trie"
	re.True(errs.ErrUnknownVariant.Equal(bad.Validate()))

	bad = cfg.Clone()
	bad.Tree.Duplicate = "append"
	re.True(errs.ErrUnknownDuplicatePolicy.Equal(bad.Validate()))

	bad = cfg.Clone()
	bad.MaxBatch = -1
	re.True(errs.ErrConfigItem.Equal(bad.Validate()))
}

func TestConfigClone(t *testing.T) {
	re := require.New(t)
	cfg := NewConfig()
	re.NoError(cfg.Adjust(nil))
	re.Equal(cfg, cfg.Clone())
	re.Contains(cfg.String(), `"variant": "bplustree"`)
}
