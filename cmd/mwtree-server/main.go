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

	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"github.com/tikv/mwtree/pkg/errs"
	"github.com/tikv/mwtree/pkg/utils/configutil"
	"github.com/tikv/mwtree/pkg/utils/logutil"
	"github.com/tikv/mwtree/pkg/utils/metricutil"
	"github.com/tikv/mwtree/pkg/versioninfo"
	"github.com/tikv/mwtree/server"
	"github.com/tikv/mwtree/server/api"
	"github.com/tikv/mwtree/server/config"
	"go.uber.org/zap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mwtree-server",
		Short: "Multiway search tree server",
		Run:   createServerWrapper,
	}

	addFlags(rootCmd)

	rootCmd.SetOutput(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		rootCmd.Println(err)
		os.Exit(1)
	}
}

func addFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("version", "V", false, "print version information and exit")
	cmd.Flags().StringP("config", "", "", "config file")
	cmd.Flags().BoolP("config-check", "", false, "check config file validity and exit")
	cmd.Flags().StringP("name", "", "", "human-readable name for this server")
	cmd.Flags().StringP("addr", "", "", "listen address for the HTTP API (default '127.0.0.1:2479')")
	cmd.Flags().StringP("variant", "", "", "tree variant: btree or bplustree (default 'bplustree')")
	cmd.Flags().IntP("order", "", 0, "tree order, the minimum degree of a btree or the fanout of a bplustree")
	cmd.Flags().StringP("duplicate", "", "", "duplicate key policy: overwrite or reject (default 'overwrite')")
	cmd.Flags().StringP("metrics-addr", "", "", "prometheus pushgateway address, leaves it empty will disable prometheus push")
	cmd.Flags().StringP("log-level", "L", "info", "log level: debug, info, warn, error, fatal (default 'info')")
	cmd.Flags().StringP("log-file", "", "", "log file path")
}

func createServerWrapper(cmd *cobra.Command, args []string) {
	start(cmd, args)
}

func start(cmd *cobra.Command, args []string) {
	cfg := config.NewConfig()
	flagSet := cmd.Flags()
	flagSet.Parse(args)
	err := cfg.Parse(flagSet)
	defer logutil.LogPanic()

	if err != nil {
		cmd.Println(err)
		return
	}

	if printVersion, err := flagSet.GetBool("version"); err != nil {
		cmd.Println(err)
		return
	} else if printVersion {
		versioninfo.Print()
		exit(0)
	}

	if configCheck, err := flagSet.GetBool("config-check"); err != nil {
		cmd.Println(err)
		return
	} else if configCheck {
		configutil.PrintConfigCheckMsg(os.Stdout, cfg.WarningMsgs)
		exit(0)
	}

	// New zap logger
	err = logutil.SetupLogger(cfg.Log, &cfg.Logger, &cfg.LogProps, cfg.Security.RedactInfoLog)
	if err == nil {
		log.ReplaceGlobals(cfg.Logger, cfg.LogProps)
	} else {
		log.Fatal("initialize logger error", errs.ZapError(err))
	}
	// Flushing any buffered log entries
	defer log.Sync()

	versioninfo.Log("mwtree server")

	for _, msg := range cfg.WarningMsgs {
		log.Warn(msg)
	}

	// Creates server.
	ctx, cancel := context.WithCancel(context.Background())
	svr, err := server.CreateServer(ctx, cfg, api.NewHandler)
	if err != nil {
		log.Fatal("create server failed", errs.ZapError(err))
	}

	metricutil.Push(ctx, &cfg.Metric, svr.GetRegistry())

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	var sig os.Signal
	go func() {
		sig = <-sc
		cancel()
	}()

	if err := svr.Run(); err != nil {
		log.Fatal("run server failed", errs.ZapError(err))
	}

	<-ctx.Done()
	log.Info("got signal to exit", zap.String("signal", sig.String()))

	svr.Close()
	switch sig {
	case syscall.SIGTERM:
		exit(0)
	default:
		exit(1)
	}
}

func exit(code int) {
	log.Sync()
	os.Exit(code)
}
