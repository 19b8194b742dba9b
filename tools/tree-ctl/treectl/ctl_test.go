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

package treectl

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	tu "github.com/tikv/mwtree/pkg/utils/testutil"
	"github.com/tikv/mwtree/server"
	"github.com/tikv/mwtree/server/api"
	"github.com/tikv/mwtree/server/config"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, tu.LeakOptions...)
}

func newCommand(usage, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   usage,
		Short: short,
	}
	return cmd
}

func TestGenCompleter(t *testing.T) {
	re := require.New(t)
	rootCmd := newCommand("roottest", "test root cmd")
	scan := newCommand("scan", "test scan command")
	scan.Flags().Int64("limit", 0, "limit")
	rootCmd.AddCommand(newCommand("get <key>", "test get command"), scan)

	pc := genCompleter(rootCmd)
	re.Len(pc, 2)
	names := make([]string, 0, len(pc))
	for _, v := range pc {
		names = append(names, strings.TrimSpace(string(v.GetName())))
	}
	re.ElementsMatch([]string{"get", "scan"}, names)
	for _, v := range pc {
		if strings.TrimSpace(string(v.GetName())) == "scan" {
			re.Len(v.GetChildren(), 1)
			re.Equal("--limit", strings.TrimSpace(string(v.GetChildren()[0].GetName())))
		}
	}
}

func newTestServer(t *testing.T, re *require.Assertions) string {
	cfg := config.NewConfig()
	cfg.Name = "ctl-test"
	cfg.Tree.Variant = "bplustree"
	cfg.Tree.Order = 3
	re.NoError(cfg.Adjust(nil))
	ctx := context.Background()
	svr, err := server.CreateServer(ctx, cfg, api.NewHandler)
	re.NoError(err)
	handler, err := api.NewHandler(ctx, svr)
	re.NoError(err)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts.URL
}

func run(re *require.Assertions, addr string, args ...string) string {
	cmd := GetRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOutput(buf)
	cmd.SetArgs(append([]string{"-u", addr}, args...))
	re.NoError(cmd.Execute())
	return buf.String()
}

func TestKeyCommands(t *testing.T) {
	re := require.New(t)
	addr := newTestServer(t, re)

	out := run(re, addr, "insert", "7", "lucky", "seven")
	re.Contains(out, `"value": "lucky seven"`)
	out = run(re, addr, "get", "7")
	re.Contains(out, `"key": 7`)
	re.Contains(out, `"value": "lucky seven"`)

	out = run(re, addr, "get", "8")
	re.Contains(out, "Failed!")
	re.Contains(out, "[404] missing")

	out = run(re, addr, "get", "seven")
	re.Contains(out, `key "seven" is not a valid int64`)

	out = run(re, addr, "insert", "8")
	re.Contains(out, "Usage:")

	out = run(re, addr, "delete", "7")
	re.Contains(out, `"value": "lucky seven"`)
	out = run(re, addr, "delete", "7")
	re.Contains(out, "[404] missing")
}

func TestScanAndShowCommands(t *testing.T) {
	re := require.New(t)
	addr := newTestServer(t, re)
	for i := 1; i <= 4; i++ {
		run(re, addr, "insert", fmt.Sprint(i), fmt.Sprintf("v%d", i))
	}

	out := run(re, addr, "scan", "--start=2", "--end=4")
	re.Contains(out, `"key": 2`)
	re.Contains(out, `"key": 3`)
	re.NotContains(out, `"key": 4`)
	re.NotContains(out, `"key": 1`)

	out = run(re, addr, "scan", "--limit=1")
	re.Contains(out, `"key": 1`)
	re.NotContains(out, `"key": 2`)

	out = run(re, addr, "show")
	re.Contains(out, "[1, 2] [3, 4]")
	out = run(re, addr, "show", "--format=html")
	re.Contains(out, "margin-left: 20px")
	out = run(re, addr, "show", "--format=svg")
	re.Contains(out, "[400]")

	out = run(re, addr, "snapshot")
	re.Contains(out, `"variant": "bplustree"`)
	out = run(re, addr, "verify")
	re.NotContains(out, "Failed!")
}

func TestTreeCommands(t *testing.T) {
	re := require.New(t)
	addr := newTestServer(t, re)

	out := run(re, addr, "tree")
	re.Contains(out, `"variant": "bplustree"`)
	re.Contains(out, `"order": 3`)

	out = run(re, addr, "random", "insert", "--count=20", "--min=1", "--max=1000")
	re.Contains(out, `"requested": 20`)
	out = run(re, addr, "random", "delete", "--count=5")
	re.Contains(out, `"requested": 5`)
	out = run(re, addr, "stats")
	re.Contains(out, `"median-latency"`)
	out = run(re, addr, "stats", "reset")
	re.NotContains(out, "Failed!")

	out = run(re, addr, "reset", "--variant=btree", "--order=4")
	re.Contains(out, `"variant": "btree"`)
	re.Contains(out, `"len": 0`)
	out = run(re, addr, "reset", "--order=11")
	re.Contains(out, "[400]")

	out = run(re, addr, "version")
	re.Contains(out, `"version"`)
	re.Contains(out, "compatible with server")
}

func TestRunLine(t *testing.T) {
	re := require.New(t)
	addr := newTestServer(t, re)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("addr", "u", "", "")
	re.NoError(flags.Set("addr", addr))

	buf := &bytes.Buffer{}
	re.NoError(runLine(flags, `insert 5 "five and a half"`, buf))
	re.Contains(buf.String(), `"value": "five and a half"`)

	buf.Reset()
	re.NoError(runLine(flags, "", buf))
	re.Empty(buf.String())

	re.Error(runLine(flags, `insert 5 "unterminated`, buf))
}
