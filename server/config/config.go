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
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/pflag"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/mwtree"
	"github.com/tikv/mwtree/pkg/utils/configutil"
	"github.com/tikv/mwtree/pkg/utils/metricutil"
	"github.com/tikv/mwtree/pkg/utils/typeutil"
	"go.uber.org/zap"
)

// Config is the mwtree server configuration.
// NOTE: This type is exported by HTTP API. Please pay more attention when modifying it.
type Config struct {
	Name string `toml:"name" json:"name"`
	Addr string `toml:"addr" json:"addr"`

	Tree TreeConfig `toml:"tree" json:"tree"`

	// Log related config.
	Log log.Config `toml:"log" json:"log"`

	Metric metricutil.MetricConfig `toml:"metric" json:"metric"`

	Security configutil.SecurityConfig `toml:"security" json:"security"`

	// MaxBodySize limits the size of a value written through the HTTP API.
	MaxBodySize typeutil.ByteSize `toml:"max-body-size" json:"max-body-size"`

	// MaxBatch limits the count of a single random insert or delete batch.
	MaxBatch int `toml:"max-batch" json:"max-batch"`

	// WarningMsgs contains all info and warning messages during loading the config.
	WarningMsgs []string `json:"-"`

	Logger   *zap.Logger        `json:"-"`
	LogProps *log.ZapProperties `json:"-"`
}

// TreeConfig selects the tree served by the server.
type TreeConfig struct {
	Variant   string `toml:"variant" json:"variant"`
	Order     int    `toml:"order" json:"order"`
	MaxOrder  int    `toml:"max-order" json:"max-order"`
	Duplicate string `toml:"duplicate" json:"duplicate"`
}

const (
	defaultName      = "mwtree"
	defaultAddr      = "127.0.0.1:2479"
	defaultVariant   = "bplustree"
	defaultDuplicate = "overwrite"
	defaultLogFormat = "text"
	defaultMaxBatch  = 100000

	defaultMetricsPushInterval = 15 * time.Second

	defaultMaxBodySize         = typeutil.ByteSize(1 << 20) // 1MiB
	defaultDisableErrorVerbose = true
)

// NewConfig creates a new config.
func NewConfig() *Config {
	return &Config{}
}

// Parse parses flag definitions from the argument list.
func (c *Config) Parse(flagSet *pflag.FlagSet) error {
	// Load config file if specified.
	var (
		meta *toml.MetaData
		err  error
	)
	if configFile, _ := flagSet.GetString("config"); configFile != "" {
		meta, err = configutil.ConfigFromFile(c, configFile)
		if err != nil {
			return errs.ErrLoadConfig.Wrap(err).GenWithStackByArgs(configFile)
		}
	}

	// ignore the error check here
	configutil.AdjustCommandlineString(flagSet, &c.Log.Level, "log-level")
	configutil.AdjustCommandlineString(flagSet, &c.Log.File.Filename, "log-file")
	configutil.AdjustCommandlineString(flagSet, &c.Name, "name")
	configutil.AdjustCommandlineString(flagSet, &c.Addr, "addr")
	configutil.AdjustCommandlineString(flagSet, &c.Metric.PushAddress, "metrics-addr")
	configutil.AdjustCommandlineString(flagSet, &c.Tree.Variant, "variant")
	configutil.AdjustCommandlineInt(flagSet, &c.Tree.Order, "order")
	configutil.AdjustCommandlineString(flagSet, &c.Tree.Duplicate, "duplicate")

	return c.Adjust(meta)
}

// Adjust fills the fields that are neither in the config file nor on the
// command line with defaults, then validates the result.
func (c *Config) Adjust(meta *toml.MetaData) error {
	configMetaData := configutil.NewConfigMetadata(meta)
	if err := configMetaData.CheckUndecoded(); err != nil {
		c.WarningMsgs = append(c.WarningMsgs, err.Error())
	}

	if c.Name == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return errors.WithStack(err)
		}
		configutil.AdjustString(&c.Name, fmt.Sprintf("%s-%s", defaultName, hostname))
	}
	configutil.AdjustString(&c.Addr, defaultAddr)
	configutil.AdjustString(&c.Metric.PushJob, c.Name)
	configutil.AdjustDuration(&c.Metric.PushInterval, defaultMetricsPushInterval)
	configutil.AdjustInt(&c.MaxBatch, defaultMaxBatch)
	if !configMetaData.IsDefined("max-body-size") {
		configutil.AdjustByteSize(&c.MaxBodySize, defaultMaxBodySize)
	}

	c.Tree.adjust()
	c.adjustLog(configMetaData.Child("log"))

	return c.Validate()
}

func (t *TreeConfig) adjust() {
	configutil.AdjustString(&t.Variant, defaultVariant)
	configutil.AdjustString(&t.Duplicate, defaultDuplicate)
	configutil.AdjustInt(&t.MaxOrder, mwtree.DefaultMaxOrder)
}

func (c *Config) adjustLog(meta *configutil.ConfigMetaData) {
	if !meta.IsDefined("disable-error-verbose") {
		c.Log.DisableErrorVerbose = defaultDisableErrorVerbose
	}
	if len(c.Log.Format) == 0 {
		c.Log.Format = defaultLogFormat
	}
}

// Validate is used to validate if some configurations are right.
func (c *Config) Validate() error {
	if c.MaxBatch <= 0 {
		return errs.ErrConfigItem.Wrap(errors.Errorf("max-batch must be positive, got %d", c.MaxBatch)).GenWithStackByCause()
	}
	if c.MaxBodySize == 0 {
		return errs.ErrConfigItem.Wrap(errors.New("max-body-size must be positive")).GenWithStackByCause()
	}
	_, err := c.Tree.TreeConfig()
	return err
}

// TreeConfig translates the section into a tree config. A zero order picks
// the default order of the variant.
func (t *TreeConfig) TreeConfig() (*mwtree.Config, error) {
	variant, err := mwtree.ParseVariant(t.Variant)
	if err != nil {
		return nil, err
	}
	dup, err := mwtree.ParseDuplicatePolicy(t.Duplicate)
	if err != nil {
		return nil, err
	}
	cfg := mwtree.NewConfig(
		mwtree.WithVariant(variant),
		mwtree.WithOrder(t.Order),
		mwtree.WithMaxOrder(t.MaxOrder),
		mwtree.WithDuplicatePolicy(dup),
	)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a cloned configuration.
func (c *Config) Clone() *Config {
	cfg := *c
	return &cfg
}

func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "<nil>"
	}
	return string(data)
}
