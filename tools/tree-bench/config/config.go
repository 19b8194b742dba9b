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
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	flag "github.com/spf13/pflag"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/mwtree"
	"github.com/tikv/mwtree/pkg/utils/configutil"
	"github.com/tikv/mwtree/pkg/utils/metricutil"
	"github.com/tikv/mwtree/pkg/utils/typeutil"
	"go.uber.org/zap"
)

const (
	defaultOrder          = 3
	defaultOps            = 100000
	defaultKeyRange       = 10000
	defaultInsertRatio    = 0.5
	defaultDeleteRatio    = 0.3
	defaultVerifyEvery    = 1000
	defaultReportInterval = 5 * time.Second
	defaultPushJob        = "tree-bench"

	defaultLogFormat = "text"
)

var defaultVariants = typeutil.StringSlice{"btree", "bplustree"}

// Config is the tree-bench configuration.
type Config struct {
	flagSet    *flag.FlagSet
	configFile string
	variants   string

	Log      log.Config `toml:"log" json:"log"`
	Logger   *zap.Logger
	LogProps *log.ZapProperties

	Metric metricutil.MetricConfig `toml:"metric" json:"metric"`

	// Variants are run one after another, each on a fresh tree.
	Variants typeutil.StringSlice `toml:"variants" json:"variants"`
	Order    int                  `toml:"order" json:"order"`
	Ops      int                  `toml:"ops" json:"ops"`
	// Keys are drawn from [0, KeyRange).
	KeyRange    int64   `toml:"key-range" json:"key-range"`
	InsertRatio float64 `toml:"insert-ratio" json:"insert-ratio"`
	DeleteRatio float64 `toml:"delete-ratio" json:"delete-ratio"`
	// Seed 0 picks a seed from the clock.
	Seed           int64             `toml:"seed" json:"seed"`
	VerifyEvery    int               `toml:"verify-every" json:"verify-every"`
	ReportInterval typeutil.Duration `toml:"report-interval" json:"report-interval"`
	ChartFile      string            `toml:"chart-file" json:"chart-file"`

	WarningMsgs []string
}

// NewConfig return a set of settings.
func NewConfig() *Config {
	cfg := &Config{}
	cfg.flagSet = flag.NewFlagSet("tree-bench", flag.ContinueOnError)
	fs := cfg.flagSet
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.StringVar(&cfg.configFile, "config", "", "config file")
	fs.IntVar(&cfg.Order, "order", 0, "tree order")
	fs.IntVar(&cfg.Ops, "ops", 0, "number of operations per variant")
	fs.Int64Var(&cfg.KeyRange, "key-range", 0, "keys are drawn from [0, key-range)")
	fs.Int64Var(&cfg.Seed, "seed", 0, "random seed, 0 picks one from the clock")
	fs.StringVar(&cfg.ChartFile, "chart-file", "", "write an occupancy chart to this html file")
	fs.StringVar(&cfg.Metric.PushAddress, "metrics-addr", "", "prometheus pushgateway address")
	fs.StringVar(&cfg.Log.Level, "log-level", "", "log level")
	fs.StringVar(&cfg.variants, "variants", "", "comma separated tree variants to run")

	return cfg
}

// Parse parses flag definitions from the argument list.
func (c *Config) Parse(arguments []string) error {
	// Parse first to get config file.
	err := c.flagSet.Parse(arguments)
	if err != nil {
		return errors.WithStack(err)
	}

	// Load config file if specified.
	var meta *toml.MetaData
	if c.configFile != "" {
		meta, err = configutil.ConfigFromFile(c, c.configFile)
		if err != nil {
			return errs.ErrLoadConfig.Wrap(err).GenWithStackByArgs(c.configFile)
		}
	}

	// Parse again to replace with command line options.
	err = c.flagSet.Parse(arguments)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(c.flagSet.Args()) != 0 {
		return errors.Errorf("'%s' is an invalid flag", c.flagSet.Arg(0))
	}
	if c.variants != "" {
		c.Variants = strings.Split(c.variants, ",")
	}

	return c.Adjust(meta)
}

// Adjust is used to adjust configurations
func (c *Config) Adjust(meta *toml.MetaData) error {
	configMeta := configutil.NewConfigMetadata(meta)
	if err := configMeta.CheckUndecoded(); err != nil {
		c.WarningMsgs = append(c.WarningMsgs, err.Error())
	}

	if len(c.Log.Format) == 0 {
		c.Log.Format = defaultLogFormat
	}
	if len(c.Variants) == 0 {
		c.Variants = append(typeutil.StringSlice(nil), defaultVariants...)
	}
	configutil.AdjustInt(&c.Order, defaultOrder)
	configutil.AdjustInt(&c.Ops, defaultOps)
	configutil.AdjustInt64(&c.KeyRange, defaultKeyRange)
	if !configMeta.IsDefined("insert-ratio") {
		configutil.AdjustFloat64(&c.InsertRatio, defaultInsertRatio)
	}
	if !configMeta.IsDefined("delete-ratio") {
		configutil.AdjustFloat64(&c.DeleteRatio, defaultDeleteRatio)
	}
	if !configMeta.IsDefined("verify-every") {
		configutil.AdjustInt(&c.VerifyEvery, defaultVerifyEvery)
	}
	configutil.AdjustDuration(&c.ReportInterval, defaultReportInterval)
	configutil.AdjustString(&c.Metric.PushJob, defaultPushJob)
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c.Validate()
}

// Validate checks the ranges of the settings.
func (c *Config) Validate() error {
	for _, v := range c.Variants {
		cfg, err := c.TreeConfig(v)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	switch {
	case c.Ops < 0:
		return errs.ErrConfigItem.Wrap(errors.New("ops must not be negative")).GenWithStackByCause()
	case c.KeyRange <= 0:
		return errs.ErrConfigItem.Wrap(errors.New("key-range must be positive")).GenWithStackByCause()
	case c.InsertRatio < 0 || c.DeleteRatio < 0 || c.InsertRatio+c.DeleteRatio > 1:
		return errs.ErrConfigItem.Wrap(errors.New("insert-ratio and delete-ratio must be non-negative and sum to at most 1")).GenWithStackByCause()
	case c.VerifyEvery < 0:
		return errs.ErrConfigItem.Wrap(errors.New("verify-every must not be negative")).GenWithStackByCause()
	}
	return nil
}

// TreeConfig builds the tree config of one variant.
func (c *Config) TreeConfig(variant string) (*mwtree.Config, error) {
	v, err := mwtree.ParseVariant(variant)
	if err != nil {
		return nil, err
	}
	return mwtree.NewConfig(mwtree.WithVariant(v), mwtree.WithOrder(c.Order)), nil
}
