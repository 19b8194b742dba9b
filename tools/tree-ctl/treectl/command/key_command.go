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
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

var (
	keysPrefix = apiPrefix + "/keys/%d"
	scanPrefix = apiPrefix + "/scan"
)

// NewInsertCommand returns an insert subcommand of rootCmd
func NewInsertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <key> <value>",
		Short: "insert a key, the remaining arguments are joined into its value",
		Run:   insertCommandFunc,
	}
}

// NewGetCommand returns a get subcommand of rootCmd
func NewGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "show the value of a key",
		Run:   getCommandFunc,
	}
}

// NewDeleteCommand returns a delete subcommand of rootCmd
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "delete a key",
		Run:   deleteCommandFunc,
	}
}

// NewScanCommand returns a scan subcommand of rootCmd
func NewScanCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "scan [--start=<key>] [--end=<key>] [--limit=<n>]",
		Short: "list the keys in [start, end) in ascending order",
		Run:   scanCommandFunc,
	}
	c.Flags().Int64("start", 0, "first key to include, defaults to the smallest key")
	c.Flags().Int64("end", 0, "first key to exclude, defaults to no upper bound")
	c.Flags().Int64("limit", 0, "max number of entries, 0 means no limit")
	return c
}

func insertCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) < 2 {
		cmd.Println(cmd.UsageString())
		return
	}
	key, err := parseKey(args[0])
	if err != nil {
		cmd.Println(err)
		return
	}
	value := strings.Join(args[1:], " ")
	printRequest(cmd, fmt.Sprintf(keysPrefix, key), http.MethodPut, WithBody(strings.NewReader(value)))
}

func getCommandFunc(cmd *cobra.Command, args []string) {
	keyCommandFunc(cmd, args, http.MethodGet)
}

func deleteCommandFunc(cmd *cobra.Command, args []string) {
	keyCommandFunc(cmd, args, http.MethodDelete)
}

func keyCommandFunc(cmd *cobra.Command, args []string, method string) {
	if len(args) != 1 {
		cmd.Println(cmd.UsageString())
		return
	}
	key, err := parseKey(args[0])
	if err != nil {
		cmd.Println(err)
		return
	}
	printRequest(cmd, fmt.Sprintf(keysPrefix, key), method)
}

func scanCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		cmd.Println(cmd.UsageString())
		return
	}
	printRequest(cmd, withQuery(cmd, scanPrefix, "start", "end", "limit"), http.MethodGet)
}
