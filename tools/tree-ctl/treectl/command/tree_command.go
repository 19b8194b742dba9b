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
	treePrefix     = apiPrefix + "/tree"
	resetPrefix    = apiPrefix + "/reset"
	verifyPrefix   = apiPrefix + "/verify"
	renderPrefix   = apiPrefix + "/render"
	snapshotPrefix = apiPrefix + "/snapshot"
)

// NewTreeCommand returns a tree subcommand of rootCmd
func NewTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "show the variant, order, length and height of the tree",
		Run:   simpleCommandFunc(treePrefix, http.MethodGet),
	}
}

// NewVerifyCommand returns a verify subcommand of rootCmd
func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "check the structural invariants of the tree",
		Run:   simpleCommandFunc(verifyPrefix, http.MethodGet),
	}
}

// NewSnapshotCommand returns a snapshot subcommand of rootCmd
func NewSnapshotCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "show the level order snapshot of the tree as JSON",
		Run:   simpleCommandFunc(snapshotPrefix, http.MethodGet),
	}
}

// NewShowCommand returns a show subcommand of rootCmd
func NewShowCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show [--format=text|levels|html]",
		Short: "render the tree",
		Run:   showCommandFunc,
	}
	c.Flags().String("format", "text", "output format: text, levels or html")
	return c
}

// NewResetCommand returns a reset subcommand of rootCmd
func NewResetCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "reset [--variant=btree|bplustree] [--order=<n>]",
		Short: "drop every key and rebuild the tree, optionally with another variant or order",
		Run:   resetCommandFunc,
	}
	c.Flags().String("variant", "", "tree variant, keeps the current one when empty")
	c.Flags().Int("order", 0, "tree order, keeps the current one when 0")
	return c
}

func simpleCommandFunc(prefix, method string) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if len(args) != 0 {
			cmd.Println(cmd.UsageString())
			return
		}
		printRequest(cmd, prefix, method)
	}
}

func showCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		cmd.Println(cmd.UsageString())
		return
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		cmd.Println(err)
		return
	}
	printRequest(cmd, renderPrefix+"?format="+format, http.MethodGet)
}

func resetCommandFunc(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		cmd.Println(cmd.UsageString())
		return
	}
	printRequest(cmd, withQuery(cmd, resetPrefix, "variant", "order"), http.MethodPost)
}
