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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tikv/mwtree/pkg/versioninfo"
	"github.com/tikv/mwtree/tools/tree-ctl/treectl/command"
)

func init() {
	cobra.EnablePrefixMatching = true
}

// GetRootCmd is exposed for integration tests. But it can be embedded into another suite, too.
func GetRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tree-ctl",
		Short: "Multiway search tree control",
	}

	rootCmd.PersistentFlags().StringP("addr", "u", "http://127.0.0.1:2479", "address of the mwtree server")

	rootCmd.AddCommand(
		command.NewInsertCommand(),
		command.NewGetCommand(),
		command.NewDeleteCommand(),
		command.NewScanCommand(),
		command.NewShowCommand(),
		command.NewSnapshotCommand(),
		command.NewResetCommand(),
		command.NewTreeCommand(),
		command.NewVerifyCommand(),
		command.NewRandomCommand(),
		command.NewStatsCommand(),
		command.NewVersionCommand(),
		command.NewExitCommand(),
	)

	rootCmd.Flags().ParseErrorsWhitelist.UnknownFlags = true
	rootCmd.SilenceErrors = true
	return rootCmd
}

// MainStart start main command
func MainStart(args []string) {
	rootCmd := GetRootCmd()

	rootCmd.Flags().BoolP("interact", "i", false, "Run tree-ctl with readline.")
	rootCmd.Flags().BoolP("version", "V", false, "Print version information and exit.")

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		if v, err := cmd.Flags().GetBool("version"); err == nil && v {
			versioninfo.Print()
			return
		}
		if v, err := cmd.Flags().GetBool("interact"); err == nil && v {
			readlineCompleter := readline.NewPrefixCompleter(genCompleter(cmd)...)
			loop(cmd.PersistentFlags(), readlineCompleter)
			return
		}
		cmd.Help()
	}

	rootCmd.SetArgs(args)
	rootCmd.ParseFlags(args)
	rootCmd.SetOutput(os.Stdout)

	if err := rootCmd.Execute(); err != nil {
		rootCmd.Println(err)
		os.Exit(1)
	}
}

func loop(persistentFlags *pflag.FlagSet, readlineCompleter readline.AutoCompleter) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            "\033[32mmwtree»\033[0m ",
		HistoryFile:       "/tmp/tree-ctl-readline.tmp",
		AutoComplete:      readlineCompleter,
		InterruptPrompt:   "^C",
		EOFPrompt:         "^D",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()

	for {
		line, err := l.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				break
			}
			continue
		}
		if strings.TrimSpace(line) == "exit" {
			os.Exit(0)
		}
		if err := runLine(persistentFlags, line, os.Stdout); err != nil {
			fmt.Println(err)
		}
	}
}

// runLine executes one interactive line on a fresh command tree that
// inherits the persistent flags changed on the command line.
func runLine(persistentFlags *pflag.FlagSet, line string, out io.Writer) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		return fmt.Errorf("parse command err: %v", err)
	}
	if len(args) == 0 {
		return nil
	}
	rootCmd := GetRootCmd()
	persistentFlags.VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			rootCmd.PersistentFlags().Set(flag.Name, flag.Value.String())
		}
	})
	rootCmd.LocalFlags().MarkHidden("addr")
	rootCmd.SetOutput(out)
	rootCmd.SetArgs(args)
	rootCmd.ParseFlags(args)
	if err := rootCmd.Execute(); err != nil {
		rootCmd.Println(err)
	}
	return nil
}

func genCompleter(cmd *cobra.Command) []readline.PrefixCompleterInterface {
	pc := []readline.PrefixCompleterInterface{}

	for _, v := range cmd.Commands() {
		if v.HasFlags() {
			flagsPc := []readline.PrefixCompleterInterface{}
			flagUsages := strings.Split(strings.Trim(v.Flags().FlagUsages(), " "), "\n")
			for i := 0; i < len(flagUsages)-1; i++ {
				flagsPc = append(flagsPc, readline.PcItem(strings.Split(strings.Trim(flagUsages[i], " "), " ")[0]))
			}
			flagsPc = append(flagsPc, genCompleter(v)...)
			pc = append(pc, readline.PcItem(strings.Split(v.Use, " ")[0], flagsPc...))
		} else {
			pc = append(pc, readline.PcItem(strings.Split(v.Use, " ")[0], genCompleter(v)...))
		}
	}
	return pc
}
