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

package command

import (
	"net/http"

	"github.com/spf13/cobra"
)

var (
	randomInsertPrefix = apiPrefix + "/random/insert"
	randomDeletePrefix = apiPrefix + "/random/delete"
	statsPrefix        = apiPrefix + "/stats"
	statsResetPrefix   = apiPrefix + "/stats/reset"
)

// NewRandomCommand returns a random subcommand of rootCmd
func NewRandomCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "random <subcommand>",
		Short: "insert or delete a batch of random keys",
	}
	c.AddCommand(newRandomInsertCommand(), newRandomDeleteCommand())
	return c
}

func newRandomInsertCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "insert [--count=<n>] [--min=<key>] [--max=<key>]",
		Short: "insert count random keys drawn from [min, max]",
		Run:   randomInsertCommandFunc,
	}
	c.Flags().Int64("count", 10, "number of keys to draw")
	c.Flags().Int64("min", 1, "smallest key that may be drawn")
	c.Flags().Int64("max", 100, "largest key that may be drawn")
	return c
}

func newRandomDeleteCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "delete [--count=<n>]",
		Short: "delete up to count randomly chosen keys",
		Run:   randomDeleteCommandFunc,
	}
	c.Flags().Int64("count", 10, "number of keys to delete")
	return c
}

func randomInsertCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		cmd.Println(cmd.UsageString())
		return
	}
	printRequest(cmd, withQuery(cmd, randomInsertPrefix, "count", "min", "max"), http.MethodPost)
}

func randomDeleteCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		cmd.Println(cmd.UsageString())
		return
	}
	printRequest(cmd, withQuery(cmd, randomDeletePrefix, "count"), http.MethodPost)
}

// NewStatsCommand returns a stats subcommand of rootCmd
func NewStatsCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "stats",
		Short: "show the read and write counters of the tree",
		Run:   simpleCommandFunc(statsPrefix, http.MethodGet),
	}
	c.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "zero the read and write counters",
		Run:   simpleCommandFunc(statsResetPrefix, http.MethodPost),
	})
	return c
}
