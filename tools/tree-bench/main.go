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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/instrument"
	"github.com/tikv/mwtree/pkg/utils/logutil"
	"github.com/tikv/mwtree/pkg/utils/metricutil"
	"github.com/tikv/mwtree/tools/tree-bench/bench"
	"github.com/tikv/mwtree/tools/tree-bench/config"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()
	err := cfg.Parse(os.Args[1:])
	defer logutil.LogPanic()

	switch errors.Cause(err) {
	case nil:
	case pflag.ErrHelp:
		exit(0)
	default:
		log.Fatal("parse cmd flags error", errs.ZapError(err))
	}

	// New zap logger
	err = logutil.SetupLogger(cfg.Log, &cfg.Logger, &cfg.LogProps)
	if err == nil {
		log.ReplaceGlobals(cfg.Logger, cfg.LogProps)
	} else {
		log.Fatal("initialize logger error", errs.ZapError(err))
	}
	for _, msg := range cfg.WarningMsgs {
		log.Warn(msg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		sig := <-sc
		log.Info("got signal to exit", zap.String("signal", sig.String()))
		cancel()
	}()

	reg := prometheus.NewRegistry()
	metrics, err := instrument.NewMetrics(reg, nil)
	if err != nil {
		log.Fatal("register metrics failed", errs.ZapError(err))
	}

	var results []*bench.Result
	for _, variant := range cfg.Variants {
		d, err := bench.NewDriver(cfg, variant, metrics)
		if err != nil {
			log.Fatal("create bench driver failed", zap.String("variant", variant), errs.ZapError(err))
		}
		res, err := d.Run(ctx)
		if err != nil {
			log.Error("bench failed", zap.String("variant", variant), errs.ZapError(err))
			exit(1)
		}
		results = append(results, res)
		if ctx.Err() != nil {
			break
		}
	}

	if err := metricutil.PushOnce(&cfg.Metric, reg); err != nil {
		log.Warn("push metrics failed", errs.ZapError(err))
	}
	if cfg.ChartFile != "" {
		if err := bench.WriteChart(cfg.ChartFile, results); err != nil {
			log.Error("write chart failed", errs.ZapError(err))
			exit(1)
		}
		log.Info("occupancy chart written", zap.String("file", cfg.ChartFile))
	}
	exit(0)
}

func exit(code int) {
	log.Sync()
	os.Exit(code)
}
